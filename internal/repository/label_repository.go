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

// LabelRepository defines the interface for labels and their email links
type LabelRepository interface {
	Create(ctx context.Context, label *models.Label) error
	GetByID(ctx context.Context, teamID, id uint) (*models.Label, error)
	GetSystem(ctx context.Context, name string) (*models.Label, error)
	ListVisible(ctx context.Context, teamID, memberID uint) ([]models.Label, error)
	Update(ctx context.Context, label *models.Label) error
	Delete(ctx context.Context, teamID, id uint) error
	Attach(ctx context.Context, emailID string, labelID uint) error
	Detach(ctx context.Context, emailID string, labelID uint) error
}

// labelRepository implements LabelRepository using GORM
type labelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new LabelRepository instance
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepository{db: db}
}

// Create creates a new label
func (r *labelRepository) Create(ctx context.Context, label *models.Label) error {
	if err := r.db.WithContext(ctx).Create(label).Error; err != nil {
		return fmt.Errorf("failed to create label: %w", err)
	}
	return nil
}

// GetByID retrieves a team label or a system label
func (r *labelRepository) GetByID(ctx context.Context, teamID, id uint) (*models.Label, error) {
	var label models.Label
	result := r.db.WithContext(ctx).
		Where("team_id = ? OR is_system = ?", teamID, true).
		First(&label, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLabelNotFound
		}
		return nil, fmt.Errorf("failed to get label by ID: %w", result.Error)
	}
	return &label, nil
}

// GetSystem retrieves a seeded system label by name
func (r *labelRepository) GetSystem(ctx context.Context, name string) (*models.Label, error) {
	var label models.Label
	result := r.db.WithContext(ctx).Where("is_system = ? AND name = ?", true, name).First(&label)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLabelNotFound
		}
		return nil, fmt.Errorf("failed to get system label: %w", result.Error)
	}
	return &label, nil
}

// ListVisible lists system labels followed by the member's own labels
func (r *labelRepository) ListVisible(ctx context.Context, teamID, memberID uint) ([]models.Label, error) {
	var labels []models.Label
	result := r.db.WithContext(ctx).
		Where("is_system = ? OR (team_id = ? AND owner_member_id = ?)", true, teamID, memberID).
		Order("is_system DESC, name ASC").
		Find(&labels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list labels: %w", result.Error)
	}
	return labels, nil
}

// Update saves name and color of a label
func (r *labelRepository) Update(ctx context.Context, label *models.Label) error {
	result := r.db.WithContext(ctx).Model(&models.Label{}).
		Where("id = ? AND team_id = ? AND is_system = ?", label.ID, label.TeamID, false).
		Updates(map[string]interface{}{"name": label.Name, "color": label.Color})
	if result.Error != nil {
		return fmt.Errorf("failed to update label: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrLabelNotFound
	}
	return nil
}

// Delete removes a team label and its email links
func (r *labelRepository) Delete(ctx context.Context, teamID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", id).Delete(&models.EmailLabel{}).Error; err != nil {
			return fmt.Errorf("failed to unlink label: %w", err)
		}
		result := tx.Where("team_id = ? AND is_system = ?", teamID, false).Delete(&models.Label{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete label: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrLabelNotFound
		}
		return nil
	})
}

// Attach links a label to an email; linking twice is a no-op
func (r *labelRepository) Attach(ctx context.Context, emailID string, labelID uint) error {
	link := models.EmailLabel{EmailID: emailID, LabelID: labelID}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
	if result.Error != nil {
		return fmt.Errorf("failed to attach label: %w", result.Error)
	}
	return nil
}

// Detach unlinks a label from an email; unlinking twice is a no-op
func (r *labelRepository) Detach(ctx context.Context, emailID string, labelID uint) error {
	result := r.db.WithContext(ctx).
		Where("email_id = ? AND label_id = ?", emailID, labelID).
		Delete(&models.EmailLabel{})
	if result.Error != nil {
		return fmt.Errorf("failed to detach label: %w", result.Error)
	}
	return nil
}
