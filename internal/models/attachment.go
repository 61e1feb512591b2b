package models

import "time"

// AttachmentStatus records whether the attachment bytes reached storage
type AttachmentStatus string

const (
	AttachmentStored AttachmentStatus = "stored"
	AttachmentFailed AttachmentStatus = "failed"
)

// Attachment is the stored metadata of a file attached to an email
type Attachment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	EmailID     string           `gorm:"not null;size:36;index" json:"email_id"`
	Filename    string           `gorm:"size:255" json:"filename"`
	ContentType string           `gorm:"size:100" json:"content_type"`
	SizeBytes   int64            `json:"size_bytes"`
	FilePath    string           `gorm:"size:500" json:"-"`
	Status      AttachmentStatus `gorm:"not null;size:16" json:"status"`
	Error       string           `gorm:"size:500" json:"error,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`

	// URL is the access-guarded download link, projected on read
	URL string `gorm:"-" json:"url,omitempty"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
