package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"gorm.io/gorm"
)

// EmailAddressRepository defines the interface for mailbox alias data access.
// Team scoping goes through the owning domain.
type EmailAddressRepository interface {
	Create(ctx context.Context, address *models.EmailAddress) error
	GetByID(ctx context.Context, teamID, id uint) (*models.EmailAddress, error)
	FindActive(ctx context.Context, teamID uint, localPart, domainName string) (*models.EmailAddress, error)
	ListByTeam(ctx context.Context, teamID uint) ([]models.EmailAddress, error)
	ListByMember(ctx context.Context, teamID, memberID uint) ([]models.EmailAddress, error)
	CountByMember(ctx context.Context, teamID, memberID uint) (int64, error)
	SetDefault(ctx context.Context, teamID, memberID, id uint) error
	Delete(ctx context.Context, teamID, id uint) error
}

// emailAddressRepository implements EmailAddressRepository using GORM
type emailAddressRepository struct {
	db *gorm.DB
}

// NewEmailAddressRepository creates a new EmailAddressRepository instance
func NewEmailAddressRepository(db *gorm.DB) EmailAddressRepository {
	return &emailAddressRepository{db: db}
}

const joinDomains = "JOIN domains ON domains.id = email_addresses.domain_id"

func (r *emailAddressRepository) scoped(ctx context.Context, teamID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Domain").
		Joins(joinDomains).
		Where("domains.team_id = ?", teamID)
}

// Create creates a new email address
func (r *emailAddressRepository) Create(ctx context.Context, address *models.EmailAddress) error {
	result := r.db.WithContext(ctx).Omit("Domain").Create(address)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return fmt.Errorf("local part '%s' is taken on this domain: %w", address.LocalPart, ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create email address: %w", result.Error)
	}
	return nil
}

// GetByID retrieves an address belonging to the team
func (r *emailAddressRepository) GetByID(ctx context.Context, teamID, id uint) (*models.EmailAddress, error) {
	var address models.EmailAddress
	result := r.scoped(ctx, teamID).Where("email_addresses.id = ?", id).First(&address)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEmailAddressNotFound
		}
		return nil, fmt.Errorf("failed to get email address by ID: %w", result.Error)
	}
	return &address, nil
}

// FindActive looks up an active address on an active team domain
func (r *emailAddressRepository) FindActive(ctx context.Context, teamID uint, localPart, domainName string) (*models.EmailAddress, error) {
	var address models.EmailAddress
	result := r.scoped(ctx, teamID).
		Where("email_addresses.local_part = ? AND domains.name = ?", strings.ToLower(localPart), strings.ToLower(domainName)).
		Where("email_addresses.status = ? AND domains.is_active = ?", models.AddressActive, true).
		First(&address)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEmailAddressNotFound
		}
		return nil, fmt.Errorf("failed to find email address: %w", result.Error)
	}
	return &address, nil
}

// ListByTeam lists every address on the team's domains
func (r *emailAddressRepository) ListByTeam(ctx context.Context, teamID uint) ([]models.EmailAddress, error) {
	var addresses []models.EmailAddress
	result := r.scoped(ctx, teamID).
		Order("email_addresses.team_member_id ASC, email_addresses.id ASC").
		Find(&addresses)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list email addresses: %w", result.Error)
	}
	return addresses, nil
}

// ListByMember lists the addresses a member owns, default first
func (r *emailAddressRepository) ListByMember(ctx context.Context, teamID, memberID uint) ([]models.EmailAddress, error) {
	var addresses []models.EmailAddress
	result := r.scoped(ctx, teamID).
		Where("email_addresses.team_member_id = ?", memberID).
		Order("email_addresses.is_default DESC, email_addresses.id ASC").
		Find(&addresses)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list member email addresses: %w", result.Error)
	}
	return addresses, nil
}

// CountByMember counts the addresses a member owns
func (r *emailAddressRepository) CountByMember(ctx context.Context, teamID, memberID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.EmailAddress{}).
		Joins(joinDomains).
		Where("domains.team_id = ?", teamID).
		Where("email_addresses.team_member_id = ?", memberID).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count member email addresses: %w", result.Error)
	}
	return count, nil
}

// SetDefault makes id the member's default, clearing the others in one transaction
func (r *emailAddressRepository) SetDefault(ctx context.Context, teamID, memberID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.EmailAddress
		err := tx.Joins(joinDomains).
			Where("domains.team_id = ? AND email_addresses.id = ? AND email_addresses.team_member_id = ?", teamID, id, memberID).
			First(&target).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrEmailAddressNotFound
			}
			return fmt.Errorf("failed to get email address: %w", err)
		}

		if err := tx.Model(&models.EmailAddress{}).
			Where("team_member_id = ? AND id <> ?", memberID, id).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default addresses: %w", err)
		}
		if err := tx.Model(&models.EmailAddress{}).
			Where("id = ?", id).
			Update("is_default", true).Error; err != nil {
			return fmt.Errorf("failed to set default address: %w", err)
		}
		return nil
	})
}

// Delete removes an address. Historical emails keep their plain address copies.
func (r *emailAddressRepository) Delete(ctx context.Context, teamID, id uint) error {
	if _, err := r.GetByID(ctx, teamID, id); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&models.EmailAddress{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete email address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrEmailAddressNotFound
	}
	return nil
}
