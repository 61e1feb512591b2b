package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IntegrationRepository defines the interface for provider credentials
type IntegrationRepository interface {
	Get(ctx context.Context, teamID uint, kind models.IntegrationType) (*models.Integration, error)
	FindOutbound(ctx context.Context, teamID uint) (*models.Integration, error)
	Upsert(ctx context.Context, integration *models.Integration) error
}

// integrationRepository implements IntegrationRepository using GORM
type integrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a new IntegrationRepository instance
func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

// Get retrieves the team's integration of one provider type
func (r *integrationRepository) Get(ctx context.Context, teamID uint, kind models.IntegrationType) (*models.Integration, error) {
	var integration models.Integration
	result := r.db.WithContext(ctx).Where("team_id = ? AND type = ?", teamID, kind).First(&integration)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIntegrationNotFound
		}
		return nil, fmt.Errorf("failed to get integration: %w", result.Error)
	}
	return &integration, nil
}

// FindOutbound returns the team's first active integration allowed to send
func (r *integrationRepository) FindOutbound(ctx context.Context, teamID uint) (*models.Integration, error) {
	var integration models.Integration
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND status = ? AND outbound_enabled = ?", teamID, models.IntegrationActive, true).
		Order("id ASC").
		First(&integration)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIntegrationDisabled
		}
		return nil, fmt.Errorf("failed to find outbound integration: %w", result.Error)
	}
	return &integration, nil
}

// Upsert inserts or replaces the integration for (team, type)
func (r *integrationRepository) Upsert(ctx context.Context, integration *models.Integration) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "team_id"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"api_key", "webhook_signing_key", "endpoint", "username",
			"inbound_enabled", "outbound_enabled", "status", "updated_at",
		}),
	}).Create(integration)
	if result.Error != nil {
		return fmt.Errorf("failed to save integration: %w", result.Error)
	}
	return nil
}
