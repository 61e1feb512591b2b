package models

import "time"

// System label names seeded at migration time
const (
	LabelInbox = "inbox"
	LabelSent  = "sent"
)

// SystemLabelNames lists the labels shared by every team
var SystemLabelNames = []string{LabelInbox, LabelSent}

// Label tags emails. System labels have TeamID 0 and are visible to all teams.
type Label struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TeamID        uint      `gorm:"not null;index" json:"team_id"`
	OwnerMemberID uint      `gorm:"not null;index" json:"owner_member_id"`
	Name          string    `gorm:"not null;size:64" json:"name"`
	Color         string    `gorm:"size:16" json:"color,omitempty"`
	IsSystem      bool      `gorm:"not null" json:"is_system"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Label
func (Label) TableName() string {
	return "labels"
}

// EmailLabel joins an email to a label
type EmailLabel struct {
	EmailID   string    `gorm:"primaryKey;size:36" json:"email_id"`
	LabelID   uint      `gorm:"primaryKey;index" json:"label_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for EmailLabel
func (EmailLabel) TableName() string {
	return "email_labels"
}
