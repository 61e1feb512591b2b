package models

import (
	"time"
)

// DomainType describes how a sending domain was provisioned
type DomainType string

const (
	DomainTypeManual      DomainType = "manual"
	DomainTypePrimary     DomainType = "primary"
	DomainTypeSecondary   DomainType = "secondary"
	DomainTypeIntegration DomainType = "integration"
)

// IsValid reports whether t is a known domain type
func (t DomainType) IsValid() bool {
	switch t {
	case DomainTypeManual, DomainTypePrimary, DomainTypeSecondary, DomainTypeIntegration:
		return true
	}
	return false
}

// VerificationStatus is the provider-side verification state of a domain
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationFailed   VerificationStatus = "failed"
)

// Domain is a sending/receiving domain owned by a team
type Domain struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	TeamID             uint               `gorm:"not null;uniqueIndex:idx_domains_team_name" json:"team_id"`
	Name               string             `gorm:"not null;size:255;uniqueIndex:idx_domains_team_name" json:"name"`
	Type               DomainType         `gorm:"not null;size:16" json:"type"`
	VerificationStatus VerificationStatus `gorm:"not null;size:16" json:"verification_status"`
	IsActive           bool               `gorm:"not null" json:"is_active"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Domain
func (Domain) TableName() string {
	return "domains"
}
