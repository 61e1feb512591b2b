package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail_BeforeCreate_AssignsIDAndChain(t *testing.T) {
	e := &Email{}
	require.NoError(t, e.BeforeCreate(nil))

	assert.Len(t, e.ID, 36)
	assert.Equal(t, e.ID, e.ChainID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestEmail_BeforeCreate_KeepsExistingChain(t *testing.T) {
	e := &Email{ID: "id-1", ChainID: "chain-1"}
	require.NoError(t, e.BeforeCreate(nil))

	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, "chain-1", e.ChainID)
}

func TestEmail_AllAddresses_DedupesCaseInsensitive(t *testing.T) {
	e := &Email{
		From: "Alice@Example.com",
		To:   []string{"bob@team.co", "alice@example.com"},
		Cc:   []string{" BOB@team.co "},
		Bcc:  []string{"carol@team.co", ""},
	}

	assert.Equal(t, []string{"alice@example.com", "bob@team.co", "carol@team.co"}, e.AllAddresses())
}

func TestEmail_BuildParticipants(t *testing.T) {
	e := &Email{
		ID:      "e1",
		ChainID: "c1",
		TeamID:  4,
		From:    "a@x.com",
		To:      []string{"B@team.co", "b@team.co"},
		Cc:      []string{"a@x.com"},
	}

	rows := e.BuildParticipants()
	require.Len(t, rows, 3)

	assert.Equal(t, EmailParticipant{EmailID: "e1", ChainID: "c1", TeamID: 4, Address: "a@x.com", Role: RoleFrom}, rows[0])
	assert.Equal(t, "b@team.co", rows[1].Address)
	assert.Equal(t, RoleTo, rows[1].Role)
	assert.Equal(t, RoleCc, rows[2].Role)
}

func TestEmailAddress_Project(t *testing.T) {
	a := &EmailAddress{LocalPart: "sales", Domain: &Domain{Name: "team.co"}}
	a.Project()
	assert.Equal(t, "sales@team.co", a.FullAddress)

	bare := &EmailAddress{LocalPart: "sales"}
	bare.Project()
	assert.Empty(t, bare.FullAddress)
}

func TestIntegration_ViewRedactsSecrets(t *testing.T) {
	i := &Integration{
		Type:            IntegrationMailgun,
		APIKey:          "key-123",
		Status:          IntegrationActive,
		InboundEnabled:  true,
		OutboundEnabled: false,
	}

	v := i.View()
	assert.True(t, v.APIKeySet)
	assert.False(t, v.WebhookSigningKeySet)
	assert.True(t, i.CanReceive())
	assert.False(t, i.CanSend())

	i.Status = IntegrationDisabled
	assert.False(t, i.CanReceive())
}

func TestTypeValidation(t *testing.T) {
	assert.True(t, DomainTypeIntegration.IsValid())
	assert.False(t, DomainType("custom").IsValid())
	assert.True(t, AddressPending.IsValid())
	assert.False(t, AddressStatus("deleted").IsValid())
	assert.True(t, IntegrationSES.IsValid())
	assert.False(t, IntegrationType("sendgrid").IsValid())
}

func TestNormalizeMessageID(t *testing.T) {
	assert.Equal(t, "<abc@mg.example.com>", NormalizeMessageID(" abc@mg.example.com "))
	assert.Equal(t, "<abc@mg.example.com>", NormalizeMessageID("<abc@mg.example.com>"))
	assert.Empty(t, NormalizeMessageID("  "))
}
