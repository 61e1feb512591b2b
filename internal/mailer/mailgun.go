package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
)

// MailgunTransport posts messages to the Mailgun HTTP API
type MailgunTransport struct {
	apiBase string
	apiKey  string
	client  *http.Client
}

// NewMailgun builds a transport against apiBase (for example
// https://api.mailgun.net/v3). The sending domain is taken from each
// message's From address.
func NewMailgun(apiBase, apiKey string, client *http.Client) *MailgunTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MailgunTransport{
		apiBase: strings.TrimRight(apiBase, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Name returns the provider name.
func (t *MailgunTransport) Name() string {
	return string(models.IntegrationMailgun)
}

type mailgunResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send submits the message and returns the id Mailgun assigned to it
func (t *MailgunTransport) Send(ctx context.Context, msg *Message) (string, error) {
	domain := msg.From[strings.LastIndex(msg.From, "@")+1:]

	body, contentType, err := mailgunForm(msg)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/messages", t.apiBase, domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to create mailgun request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth("api", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", deliveryError(t.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", deliveryError(t.Name(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", deliveryError(t.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var out mailgunResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", deliveryError(t.Name(), fmt.Errorf("unreadable response: %w", err))
	}
	if out.ID == "" {
		return "", deliveryError(t.Name(), fmt.Errorf("response carried no message id"))
	}
	return models.NormalizeMessageID(out.ID), nil
}

func mailgunForm(msg *Message) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}
	fields := [][2]string{{"from", from}, {"subject", msg.Subject}}
	for _, a := range msg.To {
		fields = append(fields, [2]string{"to", a})
	}
	for _, a := range msg.Cc {
		fields = append(fields, [2]string{"cc", a})
	}
	for _, a := range msg.Bcc {
		fields = append(fields, [2]string{"bcc", a})
	}
	if msg.HTML != "" {
		fields = append(fields, [2]string{"html", msg.HTML})
	}
	if msg.Text != "" {
		fields = append(fields, [2]string{"text", msg.Text})
	}
	if msg.InReplyTo != "" {
		fields = append(fields, [2]string{"h:In-Reply-To", msg.InReplyTo})
	}
	if len(msg.References) > 0 {
		fields = append(fields, [2]string{"h:References", strings.Join(msg.References, " ")})
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}
	for _, att := range msg.Attachments {
		part, err := w.CreateFormFile("attachment", att.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to add attachment: %w", err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return nil, "", fmt.Errorf("failed to add attachment: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
