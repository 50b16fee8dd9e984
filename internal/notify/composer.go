package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"storefront/internal/model"
)

//go:embed templates/*.html
var templateFiles embed.FS

type templateData struct {
	CustomerName     string
	OrderCode        string
	Link             string
	Total            string
	MinutesRemaining int
	From             string
	To               string
}

// Composer renders notification messages for orders.
type Composer struct {
	baseURL   string
	templates map[string]*template.Template
}

// NewComposer parses the message templates. baseURL is the storefront root
// used to build order deep links.
func NewComposer(baseURL string) (*Composer, error) {
	c := &Composer{
		baseURL:   strings.TrimRight(baseURL, "/"),
		templates: make(map[string]*template.Template),
	}

	for _, name := range []string{"deadline_warning", "status_update", "review_request"} {
		tmpl, err := template.ParseFS(templateFiles, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		c.templates[name] = tmpl
	}

	return c, nil
}

// OrderLink returns the customer-facing deep link for an order.
func (c *Composer) OrderLink(orderCode string) string {
	return c.baseURL + "/orders/" + url.PathEscape(orderCode)
}

// DeadlineWarning renders the "edit window closing" message.
func (c *Composer) DeadlineWarning(order *model.Order, minutesRemaining int) (Message, error) {
	data := c.data(order)
	data.MinutesRemaining = minutesRemaining

	subject := fmt.Sprintf("Order %s: %d minutes left to make changes", order.OrderCode, minutesRemaining)
	if minutesRemaining == 1 {
		subject = fmt.Sprintf("Order %s: 1 minute left to make changes", order.OrderCode)
	}
	return c.render("deadline_warning", subject, data)
}

// StatusUpdate renders the status change message.
func (c *Composer) StatusUpdate(order *model.Order, from, to model.Status) (Message, error) {
	data := c.data(order)
	data.From = from.String()
	data.To = to.String()

	return c.render("status_update", fmt.Sprintf("Order %s is now %s", order.OrderCode, to), data)
}

// ReviewRequest renders the post-delivery review request.
func (c *Composer) ReviewRequest(order *model.Order) (Message, error) {
	return c.render("review_request", fmt.Sprintf("How was your order %s?", order.OrderCode), c.data(order))
}

func (c *Composer) data(order *model.Order) templateData {
	return templateData{
		CustomerName: order.CustomerName,
		OrderCode:    order.OrderCode,
		Link:         c.OrderLink(order.OrderCode),
		Total:        order.TotalAmount.StringFixed(2),
	}
}

func (c *Composer) render(name, subject string, data templateData) (Message, error) {
	var buf bytes.Buffer
	if err := c.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s message: %w", name, err)
	}
	return Message{Subject: subject, HTMLBody: buf.String()}, nil
}
