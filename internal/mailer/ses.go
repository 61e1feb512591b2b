package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
)

// sesMaxRetries bounds attempts after the first failed SendEmail call
const sesMaxRetries = 2

// SendEmailAPI is the slice of the SES v2 client the transport uses.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig holds the credentials of a team's SES integration
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SESTransport sends raw MIME through AWS SES v2
type SESTransport struct {
	client     SendEmailAPI
	retryDelay time.Duration
}

// NewSES loads an AWS config for the region. Static credentials are used
// when both keys are present, otherwise the default chain applies.
func NewSES(ctx context.Context, cfg SESConfig) (*SESTransport, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESWithClient(sesv2.NewFromConfig(awsCfg)), nil
}

// NewSESWithClient wraps an existing client
func NewSESWithClient(client SendEmailAPI) *SESTransport {
	return &SESTransport{client: client, retryDelay: time.Second}
}

// Name returns the provider name.
func (t *SESTransport) Name() string {
	return string(models.IntegrationSES)
}

// Send submits the message as raw MIME. SES replaces the Message-Id header
// with one derived from the id it returns, so that id is reported.
func (t *SESTransport) Send(ctx context.Context, msg *Message) (string, error) {
	raw, err := BuildMIME(msg)
	if err != nil {
		return "", err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses:  msg.To,
			CcAddresses:  msg.Cc,
			BccAddresses: msg.Bcc,
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= sesMaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, backoffDelay(t.retryDelay, attempt)); err != nil {
				return "", deliveryError(t.Name(), err)
			}
		}

		out, err := t.client.SendEmail(ctx, input)
		if err == nil {
			if out == nil || out.MessageId == nil || *out.MessageId == "" {
				return "", deliveryError(t.Name(), fmt.Errorf("response carried no message id"))
			}
			return fmt.Sprintf("<%s@email.amazonses.com>", *out.MessageId), nil
		}

		lastErr = err
		slog.Warn("SES API error", "attempt", attempt, "error", err)
	}

	return "", deliveryError(t.Name(), fmt.Errorf("failed after %d retries: %w", sesMaxRetries, lastErr))
}
