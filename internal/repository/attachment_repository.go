package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"gorm.io/gorm"
)

// AttachmentRepository defines the interface for attachment data access
type AttachmentRepository interface {
	GetByID(ctx context.Context, teamID, id uint) (*models.Attachment, *models.Email, error)
	ListByEmail(ctx context.Context, emailID string) ([]models.Attachment, error)
	ListFailed(ctx context.Context, limit int) ([]models.Attachment, error)
}

// attachmentRepository implements AttachmentRepository using GORM
type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository instance
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

// GetByID retrieves an attachment together with the team email that owns it
func (r *attachmentRepository) GetByID(ctx context.Context, teamID, id uint) (*models.Attachment, *models.Email, error) {
	var attachment models.Attachment
	result := r.db.WithContext(ctx).First(&attachment, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrAttachmentNotFound
		}
		return nil, nil, fmt.Errorf("failed to get attachment by ID: %w", result.Error)
	}

	var email models.Email
	result = r.db.WithContext(ctx).
		Select("id", "team_id", "chain_id").
		Where("id = ? AND team_id = ?", attachment.EmailID, teamID).
		First(&email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrAttachmentNotFound
		}
		return nil, nil, fmt.Errorf("failed to get attachment email: %w", result.Error)
	}
	return &attachment, &email, nil
}

// ListByEmail retrieves all attachments for an email
func (r *attachmentRepository) ListByEmail(ctx context.Context, emailID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	result := r.db.WithContext(ctx).Where("email_id = ?", emailID).Order("id ASC").Find(&attachments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", result.Error)
	}
	return attachments, nil
}

// ListFailed returns parts whose storage failed, oldest first, for retry
func (r *attachmentRepository) ListFailed(ctx context.Context, limit int) ([]models.Attachment, error) {
	var attachments []models.Attachment
	result := r.db.WithContext(ctx).
		Where("status = ?", models.AttachmentFailed).
		Order("id ASC").
		Limit(limit).
		Find(&attachments)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list failed attachments: %w", result.Error)
	}
	return attachments, nil
}
