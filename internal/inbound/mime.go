package inbound

import (
	"io"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
)

// SummaryLength caps the stored preview in runes
const SummaryLength = 255

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>|<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	fromRe        = regexp.MustCompile(`^(?:"?([^"<]*)"?\s*)?<?([^<>\s]+@[^<>\s]+)>?$`)
	messageIDRe   = regexp.MustCompile(`<[^<>\s]+>`)
)

// ParseMIME reads a raw RFC 5322 message
func ParseMIME(r io.Reader) (*Message, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Subject:    env.GetHeader("Subject"),
		Text:       env.Text,
		HTML:       env.HTML,
		MessageID:  models.NormalizeMessageID(env.GetHeader("Message-Id")),
		InReplyTo:  firstMessageID(env.GetHeader("In-Reply-To")),
		References: ParseReferences(env.GetHeader("References")),
	}
	msg.FromName, msg.From = ParseFrom(env.GetHeader("From"))
	msg.To = lenientAddresses(env.GetHeader("To"))
	msg.Cc = lenientAddresses(env.GetHeader("Cc"))
	if d, err := env.Date(); err == nil {
		msg.Date = d
	}

	for _, parts := range [][]*enmime.Part{env.Attachments, env.Inlines} {
		for _, p := range parts {
			if p.FileName == "" {
				continue
			}
			msg.Attachments = append(msg.Attachments, storage.BytesUpload(p.FileName, p.ContentType, p.Content))
		}
	}
	return msg, nil
}

// ParseFrom splits a From header into display name and lowercased address
func ParseFrom(from string) (name, address string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Name, strings.ToLower(a.Address)
	}

	if m := fromRe.FindStringSubmatch(from); len(m) >= 3 {
		return strings.Trim(strings.TrimSpace(m[1]), `"`), strings.ToLower(strings.TrimSpace(m[2]))
	}
	return "", strings.ToLower(from)
}

// ParseReferences extracts the bracketed ids of a References header, oldest first
func ParseReferences(header string) []string {
	ids := messageIDRe.FindAllString(header, -1)
	if len(ids) == 0 {
		for _, f := range strings.Fields(strings.ReplaceAll(header, ",", " ")) {
			ids = append(ids, models.NormalizeMessageID(f))
		}
	}
	return ids
}

func firstMessageID(header string) string {
	if id := messageIDRe.FindString(header); id != "" {
		return id
	}
	return models.NormalizeMessageID(header)
}

// lenientAddresses parses an address header, skipping entries that do not parse
func lenientAddresses(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	if list, err := mail.ParseAddressList(header); err == nil {
		out := make([]string, 0, len(list))
		for _, a := range list {
			out = append(out, strings.ToLower(a.Address))
		}
		return out
	}

	var out []string
	for _, part := range strings.Split(header, ",") {
		if _, addr := ParseFrom(part); strings.Contains(addr, "@") {
			out = append(out, addr)
		}
	}
	return out
}

// Summarize builds a one-line preview from the plain body, else the HTML body
func Summarize(text, html string) string {
	if text == "" && html != "" {
		text = StripHTMLTags(html)
	}

	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > SummaryLength {
		runes := []rune(text)
		text = string(runes[:SummaryLength-3]) + "..."
	}
	return text
}

// StripHTMLTags removes tags, scripts and styles and decodes common entities
func StripHTMLTags(html string) string {
	html = scriptStyleRe.ReplaceAllString(html, "")
	html = tagRe.ReplaceAllString(html, " ")

	return strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	).Replace(html)
}
