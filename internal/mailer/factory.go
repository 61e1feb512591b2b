package mailer

import (
	"context"
	"fmt"

	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
)

// Factory turns a stored integration into a transport
type Factory interface {
	For(ctx context.Context, integration *models.Integration) (Transport, error)
}

// ProviderFactory builds the concrete transport for each integration type.
// Endpoint holds the API base for Mailgun (empty means MailgunAPIBase), the
// region for SES and host:port for SMTP.
type ProviderFactory struct {
	MailgunAPIBase string
}

// NewFactory creates a ProviderFactory
func NewFactory(mailgunAPIBase string) *ProviderFactory {
	return &ProviderFactory{MailgunAPIBase: mailgunAPIBase}
}

// For returns the transport matching the integration type
func (f *ProviderFactory) For(ctx context.Context, in *models.Integration) (Transport, error) {
	switch in.Type {
	case models.IntegrationMailgun:
		base := in.Endpoint
		if base == "" {
			base = f.MailgunAPIBase
		}
		return NewMailgun(base, in.APIKey, nil), nil
	case models.IntegrationSES:
		t, err := NewSES(ctx, SESConfig{
			Region:          in.Endpoint,
			AccessKeyID:     in.Username,
			SecretAccessKey: in.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return t, nil
	case models.IntegrationSMTP:
		return NewSMTP(SMTPConfig{
			Addr:     in.Endpoint,
			Username: in.Username,
			Password: in.APIKey,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported integration type %q", in.Type)
	}
}
