package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"
)

// Config holds the sender identity for outbound mail. An empty FromEmail
// disables sending; reset links are then logged instead of mailed, which is
// the expected mode for local development.
type Config struct {
	Region    string
	FromEmail string
	FromName  string
}

// SESMailer sends transactional mail through Amazon SES.
type SESMailer struct {
	client  *sesv2.Client
	from    string
	enabled bool
	log     zerolog.Logger
}

func NewSESMailer(ctx context.Context, cfg Config, log zerolog.Logger) (*SESMailer, error) {
	if cfg.FromEmail == "" {
		log.Warn().Msg("mailer disabled: no sender address configured")
		return &SESMailer{enabled: false, log: log}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}

	return &SESMailer{
		client:  sesv2.NewFromConfig(awsCfg),
		from:    from,
		enabled: true,
		log:     log,
	}, nil
}

// SendPasswordReset mails the reset link to the address. The link embeds a
// single-use token, so the message body stays deliberately short.
func (m *SESMailer) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	if !m.enabled {
		m.log.Info().Str("to", toEmail).Str("url", resetURL).Msg("mailer disabled, reset link logged")
		return nil
	}

	subject := "Reset your password"
	htmlBody := fmt.Sprintf(
		`<p>We received a request to reset your password.</p>
<p><a href="%s">Choose a new password</a></p>
<p>The link expires in one hour. If you did not ask for this, ignore this message.</p>`,
		resetURL,
	)
	textBody := fmt.Sprintf(
		"We received a request to reset your password.\n\n%s\n\nThe link expires in one hour. If you did not ask for this, ignore this message.\n",
		resetURL,
	)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
					Text: &types.Content{Data: aws.String(textBody)},
				},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	m.log.Info().Str("to", toEmail).Msg("password reset email sent")
	return nil
}
