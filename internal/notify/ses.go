package notify

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"
)

const charset = "UTF-8"

// SESClient is the subset of the SES v2 API used for sending.
type SESClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESDispatcher sends notifications through Amazon SES.
type SESDispatcher struct {
	client SESClient
	from   string
	logger zerolog.Logger
}

// NewSESClient builds an SES v2 client from the default AWS credential chain.
func NewSESClient(ctx context.Context, region string) (*sesv2.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return sesv2.NewFromConfig(cfg), nil
}

// NewSESDispatcher creates a dispatcher sending from the given address.
func NewSESDispatcher(client SESClient, from string, logger zerolog.Logger) *SESDispatcher {
	return &SESDispatcher{
		client: client,
		from:   from,
		logger: logger.With().Str("dispatcher", "ses").Logger(),
	}
}

// Send delivers one email addressed to every recipient.
func (d *SESDispatcher) Send(ctx context.Context, recipients []Recipient, subject, htmlBody string) error {
	if len(recipients) == 0 {
		return model.ErrMissingRecipient
	}

	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		to = append(to, r.Address())
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(d.from),
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String(charset)},
				},
			},
		},
	}

	out, err := d.client.SendEmail(ctx, input)
	if err != nil {
		d.logger.Error().Err(err).Strs("to", to).Str("subject", subject).Msg("failed to send email")
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	d.logger.Info().
		Str("message_id", aws.ToString(out.MessageId)).
		Int("recipients", len(to)).
		Str("subject", subject).
		Msg("email sent")

	return nil
}
