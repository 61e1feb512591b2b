package mailer

import (
	"bytes"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
)

const defaultSubject = "(no subject)"

// BuildMIME renders the message as RFC 5322 bytes. Bcc recipients are left
// out of the headers and must be passed to the envelope separately.
func BuildMIME(msg *Message) ([]byte, error) {
	subject := msg.Subject
	if strings.TrimSpace(subject) == "" {
		subject = defaultSubject
	}
	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}

	b := enmime.Builder().
		From(msg.FromName, msg.From).
		Subject(subject).
		Date(date).
		ToAddrs(toMailAddrs(msg.To)).
		CCAddrs(toMailAddrs(msg.Cc)).
		BCCAddrs(toMailAddrs(msg.Bcc))

	if msg.Text != "" {
		b = b.Text([]byte(msg.Text))
	}
	if msg.HTML != "" {
		b = b.HTML([]byte(msg.HTML))
	}
	if msg.MessageID != "" {
		b = b.Header("Message-Id", msg.MessageID)
	}
	if msg.InReplyTo != "" {
		b = b.Header("In-Reply-To", msg.InReplyTo)
	}
	if len(msg.References) > 0 {
		b = b.Header("References", strings.Join(msg.References, " "))
	}
	for _, att := range msg.Attachments {
		ct := att.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		b = b.AddAttachment(att.Data, ct, att.Filename)
	}

	root, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}
	var buf bytes.Buffer
	if err := root.Encode(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return buf.Bytes(), nil
}

func toMailAddrs(list []string) []mail.Address {
	out := make([]mail.Address, 0, len(list))
	for _, a := range list {
		out = append(out, mail.Address{Address: a})
	}
	return out
}
