package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"teambooking/internal/domain"
)

// SESConfig holds the AWS SES transport settings.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// MailerConfig selects and configures the transport for the booking
// notification emails.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
}

// NewMailer builds the notification mailer. Provider "ses" sends through AWS
// SES; "noop" (the default) logs and drops mail, for local development.
func NewMailer(logger *slog.Logger, config MailerConfig) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		return newSESMailer(logger, config)
	case "", "noop":
		return &noopMailer{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", config.Provider)
	}
}

type sesMailer struct {
	client *ses.Client
	source string
	logger *slog.Logger
}

func newSESMailer(logger *slog.Logger, config MailerConfig) (*sesMailer, error) {
	sc := config.SES
	if sc.Region == "" {
		return nil, errors.New("ses region is required")
	}
	if sc.InsecureSkipVerify {
		logger.Warn("ses tls certificate verification disabled")
	}
	awsCfg := aws.Config{
		Region: sc.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(sc.AccessKeyID, sc.SecretAccessKey, ""),
		),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sc.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		},
	}
	return &sesMailer{
		client: ses.NewFromConfig(awsCfg),
		source: formatSource(config.FromName, config.FromAddress),
		logger: logger,
	}, nil
}

// formatSource builds the From header, with the display name when one is
// configured.
func formatSource(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

func (s *sesMailer) Send(to, subject, html, text string) error {
	input := &ses.SendEmailInput{
		Source:      aws.String(s.source),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: sesContent(subject),
			Body:    sesBody(html, text),
		},
	}
	result, err := s.client.SendEmail(context.Background(), input)
	if err != nil {
		return fmt.Errorf("send email via ses: %w", err)
	}
	s.logger.Info("notification email sent", "to", to, "message_id", aws.ToString(result.MessageId))
	return nil
}

func sesContent(data string) *types.Content {
	return &types.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}

func sesBody(html, text string) *types.Body {
	body := &types.Body{}
	if html != "" {
		body.Html = sesContent(html)
	}
	if text != "" {
		body.Text = sesContent(text)
	}
	return body
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(to, subject, html, text string) error {
	n.logger.Info("email suppressed by noop mailer", "to", to, "subject", subject)
	return nil
}
