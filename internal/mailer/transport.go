// Package mailer delivers outbound messages through a team's provider.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
)

// Attachment is a file sent along with an outgoing message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a fully addressed outgoing email
type Message struct {
	From        string
	FromName    string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	HTML        string
	Text        string
	MessageID   string
	InReplyTo   string
	References  []string
	Date        time.Time
	Attachments []Attachment
}

// Recipients returns every envelope recipient
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Transport hands a message to a provider and reports the message id the
// provider will use on the wire.
type Transport interface {
	Send(ctx context.Context, msg *Message) (string, error)
	Name() string
}

// NewMessageID generates an RFC 5322 message id on the sender's domain
func NewMessageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

// deliveryError tags a provider failure so handlers answer 502
func deliveryError(provider string, err error) error {
	return apperrors.NewAppError(
		fmt.Errorf("%s: %w: %v", provider, apperrors.ErrDeliveryFailed, err),
		fmt.Sprintf("%s rejected the message", provider),
		apperrors.CodeDeliveryFailed,
	)
}

// backoffDelay returns the exponential backoff delay for the given attempt number.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// sleepWithContext waits for the specified duration or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
