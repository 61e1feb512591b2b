package inbound

import (
	"time"

	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
)

// Message is a provider-neutral inbound email
type Message struct {
	Recipients  []string
	From        string
	FromName    string
	To          []string
	Cc          []string
	Subject     string
	Text        string
	HTML        string
	MessageID   string
	InReplyTo   string
	References  []string
	Date        time.Time
	Attachments []storage.Upload
}

// fill copies every field of other that m is missing
func (m *Message) fill(other *Message) {
	if other == nil {
		return
	}
	if m.From == "" {
		m.From, m.FromName = other.From, other.FromName
	}
	if len(m.To) == 0 {
		m.To = other.To
	}
	if len(m.Cc) == 0 {
		m.Cc = other.Cc
	}
	if m.Subject == "" {
		m.Subject = other.Subject
	}
	if m.Text == "" {
		m.Text = other.Text
	}
	if m.HTML == "" {
		m.HTML = other.HTML
	}
	if m.MessageID == "" {
		m.MessageID = other.MessageID
	}
	if m.InReplyTo == "" {
		m.InReplyTo = other.InReplyTo
	}
	if len(m.References) == 0 {
		m.References = other.References
	}
	if m.Date.IsZero() {
		m.Date = other.Date
	}
	if len(m.Attachments) == 0 {
		m.Attachments = other.Attachments
	}
}

// Summary is the preview line stored with the email
func (m *Message) Summary() string {
	return Summarize(m.Text, m.HTML)
}
