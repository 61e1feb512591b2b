package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Direction tells whether an email arrived from outside or was sent by the team
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Email is a single stored message. Every email belongs to exactly one chain;
// a chain's id is the id of the message that started it.
type Email struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID     uint      `gorm:"not null;uniqueIndex:idx_emails_team_message;index:idx_emails_team_created" json:"team_id"`
	ChainID    string    `gorm:"not null;size:36;index" json:"chain_id"`
	From       string    `gorm:"column:from_address;not null;size:320" json:"from"`
	To         []string  `gorm:"serializer:json" json:"to"`
	Cc         []string  `gorm:"serializer:json" json:"cc"`
	Bcc        []string  `gorm:"serializer:json" json:"bcc,omitempty"`
	Recipient  string    `gorm:"size:320" json:"recipient,omitempty"`
	Subject    string    `json:"subject"`
	Summary    string    `gorm:"size:512" json:"summary"`
	HTML       string    `gorm:"column:html" json:"html"`
	Text       string    `json:"text,omitempty"`
	MessageID  string    `gorm:"not null;size:998;uniqueIndex:idx_emails_team_message" json:"message_id"`
	InReplyTo  string    `gorm:"size:998;index" json:"in_reply_to,omitempty"`
	References []string  `gorm:"serializer:json" json:"references,omitempty"`
	Direction  Direction `gorm:"not null;size:16" json:"direction"`
	IsRead     bool      `gorm:"not null" json:"is_read"`
	IsStarred  bool      `gorm:"not null" json:"is_starred"`
	CreatedAt  time.Time `gorm:"not null;index;index:idx_emails_team_created" json:"created_at"`

	// Relationships
	Attachments  []Attachment       `gorm:"foreignKey:EmailID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	Participants []EmailParticipant `gorm:"foreignKey:EmailID;constraint:OnDelete:CASCADE" json:"-"`

	// LabelIDs is filled by the repository when reading a chain
	LabelIDs []uint `gorm:"-" json:"label_ids,omitempty"`
}

// TableName returns the table name for Email
func (Email) TableName() string {
	return "emails"
}

// BeforeCreate assigns the id, chain and timestamp when the caller left them empty
func (e *Email) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ChainID == "" {
		e.ChainID = e.ID
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return nil
}

// AllAddresses returns the lowercased union of from, to, cc and bcc
func (e *Email) AllAddresses() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(list ...string) {
		for _, a := range list {
			a = NormalizeAddress(a)
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	add(e.From)
	add(e.To...)
	add(e.Cc...)
	add(e.Bcc...)
	return out
}

// BuildParticipants derives the participant rows indexed for this email
func (e *Email) BuildParticipants() []EmailParticipant {
	type key struct {
		addr string
		role ParticipantRole
	}
	seen := make(map[key]struct{})
	var rows []EmailParticipant
	add := func(role ParticipantRole, list ...string) {
		for _, a := range list {
			a = NormalizeAddress(a)
			if a == "" {
				continue
			}
			k := key{a, role}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			rows = append(rows, EmailParticipant{
				EmailID: e.ID,
				ChainID: e.ChainID,
				TeamID:  e.TeamID,
				Address: a,
				Role:    role,
			})
		}
	}
	add(RoleFrom, e.From)
	add(RoleTo, e.To...)
	add(RoleCc, e.Cc...)
	add(RoleBcc, e.Bcc...)
	return rows
}

// NormalizeAddress trims and lowercases a bare address
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// NormalizeMessageID trims a message id and wraps it in angle brackets
func NormalizeMessageID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return "<" + strings.Trim(id, "<>") + ">"
}

// ChainSummary is one row of a conversation list: the latest email of a chain
type ChainSummary struct {
	Email
	MessageCount int64 `gorm:"column:message_count" json:"message_count"`
}
