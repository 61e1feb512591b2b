package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
	"github.com/welldanyogia/webrana-teammail-backend/internal/validator"
)

// CreateDomainRequest is the input for registering a team domain
type CreateDomainRequest struct {
	Name string            `json:"name"`
	Type models.DomainType `json:"type"`
}

// DomainRegistry manages the domains a team receives mail on
type DomainRegistry interface {
	Create(ctx context.Context, id Identity, req CreateDomainRequest) (*models.Domain, error)
	List(ctx context.Context, teamID uint) ([]models.Domain, error)
	Get(ctx context.Context, teamID, domainID uint) (*models.Domain, error)
	// SetActive is the only mutation a domain allows
	SetActive(ctx context.Context, id Identity, domainID uint, active bool) (*models.Domain, error)
	// Delete refuses with ErrDomainInUse while addresses reference the domain
	Delete(ctx context.Context, id Identity, domainID uint) error
}

type domainRegistry struct {
	repo repository.DomainRepository
}

// NewDomainRegistry creates a DomainRegistry
func NewDomainRegistry(repo repository.DomainRepository) DomainRegistry {
	return &domainRegistry{repo: repo}
}

func (s *domainRegistry) Create(ctx context.Context, id Identity, req CreateDomainRequest) (*models.Domain, error) {
	if err := requireManager(id); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(strings.ToLower(req.Name))
	if err := validator.ValidateDomain(name); err != nil {
		return nil, apperrors.Invalid("invalid domain name %q", req.Name)
	}
	kind := req.Type
	if kind == "" {
		kind = models.DomainTypeManual
	}
	if !kind.IsValid() {
		return nil, apperrors.Invalid("invalid domain type %q", req.Type)
	}

	domain := &models.Domain{
		TeamID:             id.TeamID,
		Name:               name,
		Type:               kind,
		VerificationStatus: models.VerificationPending,
		IsActive:           true,
	}
	if err := s.repo.Create(ctx, domain); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, apperrors.NewAppError(apperrors.ErrDuplicateEntry,
				fmt.Sprintf("domain %s already exists", name), apperrors.CodeDuplicateEntry)
		}
		return nil, err
	}
	return domain, nil
}

func (s *domainRegistry) List(ctx context.Context, teamID uint) ([]models.Domain, error) {
	return s.repo.List(ctx, teamID, false)
}

func (s *domainRegistry) Get(ctx context.Context, teamID, domainID uint) (*models.Domain, error) {
	return s.repo.GetByID(ctx, teamID, domainID)
}

func (s *domainRegistry) SetActive(ctx context.Context, id Identity, domainID uint, active bool) (*models.Domain, error) {
	if err := requireManager(id); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id.TeamID, domainID, active); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id.TeamID, domainID)
}

func (s *domainRegistry) Delete(ctx context.Context, id Identity, domainID uint) error {
	if err := requireManager(id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id.TeamID, domainID)
}
