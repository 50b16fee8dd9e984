// Package notify delivers customer emails about order lifecycle events.
package notify

import (
	"context"
	"net/mail"
	"strings"
)

// Recipient is an addressee of a notification.
type Recipient struct {
	Name  string
	Email string
}

// Address renders the recipient as an RFC 5322 address.
func (r Recipient) Address() string {
	addr := mail.Address{Name: strings.TrimSpace(r.Name), Address: strings.TrimSpace(r.Email)}
	return addr.String()
}

// Message is a rendered notification.
type Message struct {
	Subject  string
	HTMLBody string
}

// Dispatcher sends an HTML message to a set of recipients. Send returns only
// after the transport has accepted or rejected the message.
type Dispatcher interface {
	Send(ctx context.Context, recipients []Recipient, subject, htmlBody string) error
}
