package inbound

import (
	"encoding/json"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
	"github.com/welldanyogia/webrana-teammail-backend/internal/validator"
)

// ParseMailgun decodes a Mailgun inbound route delivery. values are the
// form fields, files the uploaded attachment-N parts. A raw body-mime field,
// when present, fills whatever the structured fields left out.
func ParseMailgun(values map[string][]string, files map[string][]*multipart.FileHeader) (*Message, Envelope, error) {
	get := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	env := Envelope{
		Timestamp: get("timestamp"),
		Token:     get("token"),
		Signature: get("signature"),
	}

	headers, err := parseHeaderPairs(get("message-headers"))
	if err != nil {
		return nil, env, malformed("message-headers is not a JSON list of pairs")
	}

	msg := &Message{
		Subject:    firstNonEmpty(get("subject"), headers.Get("Subject")),
		Text:       firstNonEmpty(get("body-plain"), get("stripped-text")),
		HTML:       firstNonEmpty(get("body-html"), get("stripped-html")),
		MessageID:  models.NormalizeMessageID(firstNonEmpty(get("Message-Id"), get("message-id"), headers.Get("Message-Id"))),
		InReplyTo:  firstMessageID(firstNonEmpty(get("In-Reply-To"), headers.Get("In-Reply-To"))),
		References: ParseReferences(firstNonEmpty(get("References"), headers.Get("References"))),
		To:         lenientAddresses(firstNonEmpty(get("To"), headers.Get("To"))),
		Cc:         lenientAddresses(firstNonEmpty(get("Cc"), headers.Get("Cc"))),
	}
	msg.FromName, msg.From = ParseFrom(firstNonEmpty(get("from"), headers.Get("From"), get("sender")))
	if d, err := mail.ParseDate(headers.Get("Date")); err == nil {
		msg.Date = d
	}
	msg.Attachments = attachmentParts(files)

	if raw := get("body-mime"); raw != "" {
		parsed, err := ParseMIME(strings.NewReader(raw))
		if err != nil {
			return nil, env, malformed("body-mime could not be parsed")
		}
		msg.fill(parsed)
	}

	recipients, err := validator.ParseAddressList(get("recipient"))
	if err != nil {
		return nil, env, malformed("recipient is not a valid address list")
	}
	msg.Recipients = recipients

	switch {
	case len(msg.Recipients) == 0:
		return nil, env, malformed("recipient is required")
	case msg.From == "":
		return nil, env, malformed("sender is required")
	case msg.MessageID == "":
		return nil, env, malformed("Message-Id is required")
	}

	if len(msg.To) == 0 {
		msg.To = msg.Recipients
	}
	return msg, env, nil
}

// parseHeaderPairs decodes [["Name","value"],...] into a MIME header
func parseHeaderPairs(raw string) (textproto.MIMEHeader, error) {
	headers := textproto.MIMEHeader{}
	if raw == "" {
		return headers, nil
	}

	var pairs [][]string
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, err
	}
	for _, p := range pairs {
		if len(p) == 2 {
			headers.Add(p[0], p[1])
		}
	}
	return headers, nil
}

// attachmentParts orders attachment-1..N numerically
func attachmentParts(files map[string][]*multipart.FileHeader) []storage.Upload {
	type numbered struct {
		n  int
		fh *multipart.FileHeader
	}
	var parts []numbered
	for key, fhs := range files {
		if !strings.HasPrefix(key, "attachment-") || len(fhs) == 0 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(key, "attachment-"))
		if err != nil {
			continue
		}
		parts = append(parts, numbered{n, fhs[0]})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].n < parts[j].n })

	uploads := make([]storage.Upload, 0, len(parts))
	for _, p := range parts {
		uploads = append(uploads, storage.FileUpload(p.fh))
	}
	return uploads
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func malformed(reason string) error {
	return apperrors.NewAppError(apperrors.ErrPayloadMalformed, reason, apperrors.CodePayloadMalformed)
}
