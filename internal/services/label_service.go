package services

import (
	"context"
	"strings"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
	"github.com/welldanyogia/webrana-teammail-backend/internal/validator"
)

// LabelRequest names and colors a label
type LabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// LabelService manages member labels and their links to emails
type LabelService interface {
	Create(ctx context.Context, id Identity, req LabelRequest) (*models.Label, error)
	List(ctx context.Context, id Identity) ([]models.Label, error)
	Update(ctx context.Context, id Identity, labelID uint, req LabelRequest) (*models.Label, error)
	Delete(ctx context.Context, id Identity, labelID uint) error
	// AddLabel and RemoveLabel are idempotent and guarded by chain access
	AddLabel(ctx context.Context, id Identity, emailID string, labelID uint) error
	RemoveLabel(ctx context.Context, id Identity, emailID string, labelID uint) error
}

type labelService struct {
	labels repository.LabelRepository
	emails repository.EmailRepository
	guard  AccessGuard
}

// NewLabelService creates a LabelService
func NewLabelService(labels repository.LabelRepository, emails repository.EmailRepository, guard AccessGuard) LabelService {
	return &labelService{labels: labels, emails: emails, guard: guard}
}

func validateLabel(req LabelRequest) (string, error) {
	name := validator.SanitizeString(req.Name, 64)
	if name == "" {
		return "", apperrors.Invalid("label name is required")
	}
	for _, system := range models.SystemLabelNames {
		if strings.EqualFold(name, system) {
			return "", apperrors.Invalid("%q is a reserved label name", name)
		}
	}
	if err := validator.ValidateColor(req.Color); err != nil {
		return "", apperrors.Invalid("color must look like #1a2b3c")
	}
	return name, nil
}

var errSystemLabel = apperrors.NewAppError(apperrors.ErrForbidden, "system labels cannot be changed", apperrors.CodeForbidden)

func (s *labelService) Create(ctx context.Context, id Identity, req LabelRequest) (*models.Label, error) {
	name, err := validateLabel(req)
	if err != nil {
		return nil, err
	}
	label := &models.Label{
		TeamID:        id.TeamID,
		OwnerMemberID: id.MemberID,
		Name:          name,
		Color:         req.Color,
	}
	if err := s.labels.Create(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *labelService) List(ctx context.Context, id Identity) ([]models.Label, error) {
	return s.labels.ListVisible(ctx, id.TeamID, id.MemberID)
}

// ownLabel loads a label the member may edit
func (s *labelService) ownLabel(ctx context.Context, id Identity, labelID uint) (*models.Label, error) {
	label, err := s.labels.GetByID(ctx, id.TeamID, labelID)
	if err != nil {
		return nil, err
	}
	if label.IsSystem {
		return nil, errSystemLabel
	}
	if label.OwnerMemberID != id.MemberID {
		return nil, apperrors.ErrLabelNotFound
	}
	return label, nil
}

func (s *labelService) Update(ctx context.Context, id Identity, labelID uint, req LabelRequest) (*models.Label, error) {
	label, err := s.ownLabel(ctx, id, labelID)
	if err != nil {
		return nil, err
	}
	name, err := validateLabel(req)
	if err != nil {
		return nil, err
	}
	label.Name = name
	label.Color = req.Color
	if err := s.labels.Update(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *labelService) Delete(ctx context.Context, id Identity, labelID uint) error {
	if _, err := s.ownLabel(ctx, id, labelID); err != nil {
		return err
	}
	return s.labels.Delete(ctx, id.TeamID, labelID)
}

// usableLabel checks the member can see the email and apply the label.
// System labels are applied only by ingestion and sending.
func (s *labelService) usableLabel(ctx context.Context, id Identity, emailID string, labelID uint) error {
	email, err := s.emails.GetByID(ctx, id.TeamID, emailID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(ctx, id, email.ChainID); err != nil {
		return err
	}
	_, err = s.ownLabel(ctx, id, labelID)
	return err
}

func (s *labelService) AddLabel(ctx context.Context, id Identity, emailID string, labelID uint) error {
	if err := s.usableLabel(ctx, id, emailID, labelID); err != nil {
		return err
	}
	return s.labels.Attach(ctx, emailID, labelID)
}

func (s *labelService) RemoveLabel(ctx context.Context, id Identity, emailID string, labelID uint) error {
	if err := s.usableLabel(ctx, id, emailID, labelID); err != nil {
		return err
	}
	return s.labels.Detach(ctx, emailID, labelID)
}
