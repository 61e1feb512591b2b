package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"gorm.io/gorm"
)

// DomainRepository defines the interface for domain data access.
// Every lookup is scoped to a team.
type DomainRepository interface {
	Create(ctx context.Context, domain *models.Domain) error
	GetByID(ctx context.Context, teamID, id uint) (*models.Domain, error)
	GetByName(ctx context.Context, teamID uint, name string) (*models.Domain, error)
	List(ctx context.Context, teamID uint, activeOnly bool) ([]models.Domain, error)
	SetActive(ctx context.Context, teamID, id uint, active bool) error
	Delete(ctx context.Context, teamID, id uint) error
}

// domainRepository implements DomainRepository using GORM
type domainRepository struct {
	db *gorm.DB
}

// NewDomainRepository creates a new DomainRepository instance
func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &domainRepository{db: db}
}

// Create creates a new domain
func (r *domainRepository) Create(ctx context.Context, domain *models.Domain) error {
	result := r.db.WithContext(ctx).Create(domain)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("domain with name '%s' already exists: %w", domain.Name, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create domain: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a team's domain by its ID
func (r *domainRepository) GetByID(ctx context.Context, teamID, id uint) (*models.Domain, error) {
	var domain models.Domain
	result := r.db.WithContext(ctx).Where("team_id = ?", teamID).First(&domain, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to get domain by ID: %w", result.Error)
	}
	return &domain, nil
}

// GetByName retrieves a team's domain by its name
func (r *domainRepository) GetByName(ctx context.Context, teamID uint, name string) (*models.Domain, error) {
	var domain models.Domain
	result := r.db.WithContext(ctx).Where("team_id = ? AND name = ?", teamID, name).First(&domain)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDomainNotFound
		}
		return nil, fmt.Errorf("failed to get domain by name: %w", result.Error)
	}
	return &domain, nil
}

// List retrieves a team's domains, optionally filtering by active status
func (r *domainRepository) List(ctx context.Context, teamID uint, activeOnly bool) ([]models.Domain, error) {
	var domains []models.Domain
	query := r.db.WithContext(ctx).Where("team_id = ?", teamID)

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	result := query.Order("name ASC").Find(&domains)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list domains: %w", result.Error)
	}
	return domains, nil
}

// SetActive toggles activation, the only mutation a domain allows
func (r *domainRepository) SetActive(ctx context.Context, teamID, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.Domain{}).
		Where("id = ? AND team_id = ?", id, teamID).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update domain: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrDomainNotFound
	}
	return nil
}

// Delete removes a domain that no email address references
func (r *domainRepository) Delete(ctx context.Context, teamID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.EmailAddress{}).Where("domain_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count domain references: %w", err)
		}
		if refs > 0 {
			return apperrors.ErrDomainInUse
		}

		result := tx.Where("team_id = ?", teamID).Delete(&models.Domain{}, id)
		if result.Error != nil {
			if isForeignKeyError(result.Error) {
				return apperrors.ErrDomainInUse
			}
			return fmt.Errorf("failed to delete domain: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrDomainNotFound
		}
		return nil
	})
}
