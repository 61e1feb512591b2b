package models

import "time"

// IntegrationType names a mail provider
type IntegrationType string

const (
	IntegrationMailgun IntegrationType = "mailgun"
	IntegrationSES     IntegrationType = "ses"
	IntegrationSMTP    IntegrationType = "smtp"
)

// IsValid reports whether t is a supported provider
func (t IntegrationType) IsValid() bool {
	return t == IntegrationMailgun || t == IntegrationSES || t == IntegrationSMTP
}

// IntegrationStatus toggles a whole integration
type IntegrationStatus string

const (
	IntegrationActive   IntegrationStatus = "active"
	IntegrationDisabled IntegrationStatus = "disabled"
)

// Integration holds a team's credentials for one provider.
// Secrets never leave the service in JSON; use View for responses.
type Integration struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	TeamID            uint              `gorm:"not null;uniqueIndex:idx_integrations_team_type" json:"team_id"`
	Type              IntegrationType   `gorm:"not null;size:16;uniqueIndex:idx_integrations_team_type" json:"type"`
	APIKey            string            `gorm:"size:512" json:"-"`
	WebhookSigningKey string            `gorm:"size:512" json:"-"`
	Endpoint          string            `gorm:"size:255" json:"endpoint,omitempty"`
	Username          string            `gorm:"size:255" json:"username,omitempty"`
	InboundEnabled    bool              `gorm:"not null" json:"inbound_enabled"`
	OutboundEnabled   bool              `gorm:"not null" json:"outbound_enabled"`
	Status            IntegrationStatus `gorm:"not null;size:16" json:"status"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Integration
func (Integration) TableName() string {
	return "integrations"
}

// CanReceive reports whether inbound webhooks are accepted
func (i *Integration) CanReceive() bool {
	return i.Status == IntegrationActive && i.InboundEnabled
}

// CanSend reports whether outbound mail may use this integration
func (i *Integration) CanSend() bool {
	return i.Status == IntegrationActive && i.OutboundEnabled
}

// IntegrationView is the redacted shape returned by the API
type IntegrationView struct {
	Type                 IntegrationType   `json:"type"`
	Endpoint             string            `json:"endpoint,omitempty"`
	Username             string            `json:"username,omitempty"`
	InboundEnabled       bool              `json:"inbound_enabled"`
	OutboundEnabled      bool              `json:"outbound_enabled"`
	Status               IntegrationStatus `json:"status"`
	APIKeySet            bool              `json:"api_key_set"`
	WebhookSigningKeySet bool              `json:"webhook_signing_key_set"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// View returns the redacted form of the integration
func (i *Integration) View() IntegrationView {
	return IntegrationView{
		Type:                 i.Type,
		Endpoint:             i.Endpoint,
		Username:             i.Username,
		InboundEnabled:       i.InboundEnabled,
		OutboundEnabled:      i.OutboundEnabled,
		Status:               i.Status,
		APIKeySet:            i.APIKey != "",
		WebhookSigningKeySet: i.WebhookSigningKey != "",
		UpdatedAt:            i.UpdatedAt,
	}
}
