package services

import (
	"context"
	"errors"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
)

// UpsertIntegrationRequest replaces a team's provider settings. Nil secrets
// keep the stored value; an empty string clears it.
type UpsertIntegrationRequest struct {
	APIKey            *string                  `json:"api_key"`
	WebhookSigningKey *string                  `json:"webhook_signing_key"`
	Endpoint          string                   `json:"endpoint"`
	Username          string                   `json:"username"`
	InboundEnabled    bool                     `json:"inbound_enabled"`
	OutboundEnabled   bool                     `json:"outbound_enabled"`
	Status            models.IntegrationStatus `json:"status"`
}

// IntegrationService manages per-team provider credentials
type IntegrationService interface {
	Upsert(ctx context.Context, id Identity, kind models.IntegrationType, req UpsertIntegrationRequest) (*models.IntegrationView, error)
	Get(ctx context.Context, id Identity, kind models.IntegrationType) (*models.IntegrationView, error)
}

type integrationService struct {
	repo repository.IntegrationRepository
}

// NewIntegrationService creates an IntegrationService
func NewIntegrationService(repo repository.IntegrationRepository) IntegrationService {
	return &integrationService{repo: repo}
}

func requireOwner(id Identity) error {
	if !id.IsOwner() {
		return apperrors.NewAppError(apperrors.ErrForbidden, "owner role required", apperrors.CodeForbidden)
	}
	return nil
}

func (s *integrationService) Upsert(ctx context.Context, id Identity, kind models.IntegrationType, req UpsertIntegrationRequest) (*models.IntegrationView, error) {
	if err := requireOwner(id); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, apperrors.Invalid("unsupported integration type %q", kind)
	}
	status := req.Status
	if status == "" {
		status = models.IntegrationActive
	}
	if status != models.IntegrationActive && status != models.IntegrationDisabled {
		return nil, apperrors.Invalid("invalid integration status %q", req.Status)
	}

	integration := &models.Integration{
		TeamID:          id.TeamID,
		Type:            kind,
		Endpoint:        req.Endpoint,
		Username:        req.Username,
		InboundEnabled:  req.InboundEnabled,
		OutboundEnabled: req.OutboundEnabled,
		Status:          status,
	}

	existing, err := s.repo.Get(ctx, id.TeamID, kind)
	switch {
	case err == nil:
		integration.APIKey = existing.APIKey
		integration.WebhookSigningKey = existing.WebhookSigningKey
	case !errors.Is(err, apperrors.ErrIntegrationNotFound):
		return nil, err
	}
	if req.APIKey != nil {
		integration.APIKey = *req.APIKey
	}
	if req.WebhookSigningKey != nil {
		integration.WebhookSigningKey = *req.WebhookSigningKey
	}
	if integration.InboundEnabled && integration.WebhookSigningKey == "" {
		return nil, apperrors.Invalid("webhook_signing_key is required to receive mail")
	}
	if integration.OutboundEnabled && integration.APIKey == "" {
		return nil, apperrors.Invalid("api_key is required to send mail")
	}

	if err := s.repo.Upsert(ctx, integration); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, kind)
}

func (s *integrationService) Get(ctx context.Context, id Identity, kind models.IntegrationType) (*models.IntegrationView, error) {
	if err := requireOwner(id); err != nil {
		return nil, err
	}
	integration, err := s.repo.Get(ctx, id.TeamID, kind)
	if err != nil {
		return nil, err
	}
	view := integration.View()
	return &view, nil
}
