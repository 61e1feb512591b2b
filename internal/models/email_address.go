package models

import (
	"time"

	"gorm.io/gorm"
)

// AddressStatus is the lifecycle state of a mailbox alias
type AddressStatus string

const (
	AddressActive   AddressStatus = "active"
	AddressInactive AddressStatus = "inactive"
	AddressPending  AddressStatus = "pending"
)

// IsValid reports whether s is a known address status
func (s AddressStatus) IsValid() bool {
	return s == AddressActive || s == AddressInactive || s == AddressPending
}

// AddressType distinguishes a member's primary address from aliases
type AddressType string

const (
	AddressTypePrimary AddressType = "primary"
	AddressTypeAlias   AddressType = "alias"
)

// EmailAddress is a team-member-owned mailbox alias. One local part exists
// per domain cluster-wide; a member may own many.
type EmailAddress struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	LocalPart    string        `gorm:"not null;size:64;uniqueIndex:idx_email_addresses_local_domain" json:"local_part"`
	DomainID     uint          `gorm:"not null;uniqueIndex:idx_email_addresses_local_domain;index" json:"domain_id"`
	TeamMemberID uint          `gorm:"not null;index" json:"team_member_id"`
	DisplayName  string        `gorm:"size:255" json:"display_name,omitempty"`
	Status       AddressStatus `gorm:"not null;size:16" json:"status"`
	Type         AddressType   `gorm:"not null;size:16" json:"type"`
	IsDefault    bool          `gorm:"not null" json:"is_default"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// FullAddress is projected from the live domain name on every read
	FullAddress string `gorm:"-" json:"full_address"`

	// Relationships
	Domain *Domain `gorm:"foreignKey:DomainID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName returns the table name for EmailAddress
func (EmailAddress) TableName() string {
	return "email_addresses"
}

// Project fills FullAddress from the loaded domain
func (a *EmailAddress) Project() {
	if a.Domain != nil {
		a.FullAddress = a.LocalPart + "@" + a.Domain.Name
	}
}

// AfterFind projects FullAddress whenever the domain was preloaded
func (a *EmailAddress) AfterFind(tx *gorm.DB) error {
	a.Project()
	return nil
}
