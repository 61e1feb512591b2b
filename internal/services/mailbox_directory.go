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

// CreateAddressRequest is the input for provisioning a mailbox alias
type CreateAddressRequest struct {
	LocalPart    string               `json:"local_part"`
	DomainID     uint                 `json:"domain_id"`
	TeamMemberID uint                 `json:"team_member_id"`
	DisplayName  string               `json:"display_name"`
	Type         models.AddressType   `json:"type"`
	Status       models.AddressStatus `json:"status"`
}

// MailboxDirectory maps addresses to the members who own them
type MailboxDirectory interface {
	Create(ctx context.Context, id Identity, req CreateAddressRequest) (*models.EmailAddress, error)
	ListByMember(ctx context.Context, teamID, memberID uint) ([]models.EmailAddress, error)
	ListByTeam(ctx context.Context, teamID uint) ([]models.EmailAddress, error)
	Delete(ctx context.Context, id Identity, addressID uint) error
	SetDefault(ctx context.Context, id Identity, addressID uint) (*models.EmailAddress, error)
	// ResolveRecipients returns the active mailboxes among recipients
	ResolveRecipients(ctx context.Context, teamID uint, recipients []string) ([]models.EmailAddress, error)
	OwnedAddresses(ctx context.Context, teamID, memberID uint) ([]string, error)
	// FindOwnedSender returns the active mailbox the member sends from
	FindOwnedSender(ctx context.Context, id Identity, from string) (*models.EmailAddress, error)
}

type mailboxDirectory struct {
	addresses repository.EmailAddressRepository
	domains   repository.DomainRepository
}

// NewMailboxDirectory creates a MailboxDirectory
func NewMailboxDirectory(addresses repository.EmailAddressRepository, domains repository.DomainRepository) MailboxDirectory {
	return &mailboxDirectory{addresses: addresses, domains: domains}
}

func (s *mailboxDirectory) Create(ctx context.Context, id Identity, req CreateAddressRequest) (*models.EmailAddress, error) {
	if err := requireManager(id); err != nil {
		return nil, err
	}

	local := strings.TrimSpace(strings.ToLower(req.LocalPart))
	if err := validator.ValidateLocalPart(local); err != nil {
		return nil, apperrors.Invalid("invalid local part %q", req.LocalPart)
	}
	if req.TeamMemberID == 0 {
		return nil, apperrors.Invalid("team_member_id is required")
	}
	kind := req.Type
	if kind == "" {
		kind = models.AddressTypePrimary
	}
	if kind != models.AddressTypePrimary && kind != models.AddressTypeAlias {
		return nil, apperrors.Invalid("invalid address type %q", req.Type)
	}
	status := req.Status
	if status == "" {
		status = models.AddressActive
	}
	if !status.IsValid() {
		return nil, apperrors.Invalid("invalid address status %q", req.Status)
	}

	domain, err := s.domains.GetByID(ctx, id.TeamID, req.DomainID)
	if err != nil {
		return nil, err
	}
	if !domain.IsActive {
		return nil, apperrors.NewAppError(apperrors.ErrDomainNotActive,
			fmt.Sprintf("domain %s is not active", domain.Name), apperrors.CodeDomainNotActive)
	}

	count, err := s.addresses.CountByMember(ctx, id.TeamID, req.TeamMemberID)
	if err != nil {
		return nil, err
	}

	address := &models.EmailAddress{
		LocalPart:    local,
		DomainID:     domain.ID,
		TeamMemberID: req.TeamMemberID,
		DisplayName:  validator.SanitizeString(req.DisplayName, 255),
		Status:       status,
		Type:         kind,
		IsDefault:    count == 0,
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, apperrors.NewAppError(apperrors.ErrDuplicateEntry,
				fmt.Sprintf("%s@%s is already taken", local, domain.Name), apperrors.CodeDuplicateEntry)
		}
		return nil, err
	}
	address.Domain = domain
	address.Project()
	return address, nil
}

func (s *mailboxDirectory) ListByMember(ctx context.Context, teamID, memberID uint) ([]models.EmailAddress, error) {
	return s.addresses.ListByMember(ctx, teamID, memberID)
}

func (s *mailboxDirectory) ListByTeam(ctx context.Context, teamID uint) ([]models.EmailAddress, error) {
	return s.addresses.ListByTeam(ctx, teamID)
}

func (s *mailboxDirectory) Delete(ctx context.Context, id Identity, addressID uint) error {
	if err := requireManager(id); err != nil {
		return err
	}
	return s.addresses.Delete(ctx, id.TeamID, addressID)
}

// SetDefault lets a member choose among their own addresses; managers may
// change anyone's.
func (s *mailboxDirectory) SetDefault(ctx context.Context, id Identity, addressID uint) (*models.EmailAddress, error) {
	address, err := s.addresses.GetByID(ctx, id.TeamID, addressID)
	if err != nil {
		return nil, err
	}
	if address.TeamMemberID != id.MemberID && !id.CanManage() {
		return nil, apperrors.NewAppError(apperrors.ErrMailboxNotOwned, "email address is not yours", apperrors.CodeMailboxNotOwned)
	}
	if err := s.addresses.SetDefault(ctx, id.TeamID, address.TeamMemberID, address.ID); err != nil {
		return nil, err
	}
	address.IsDefault = true
	return address, nil
}

func (s *mailboxDirectory) ResolveRecipients(ctx context.Context, teamID uint, recipients []string) ([]models.EmailAddress, error) {
	seen := make(map[uint]struct{})
	var out []models.EmailAddress
	for _, r := range recipients {
		local, domain, err := validator.SplitAddress(r)
		if err != nil {
			continue
		}
		address, err := s.addresses.FindActive(ctx, teamID, local, domain)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if _, ok := seen[address.ID]; ok {
			continue
		}
		seen[address.ID] = struct{}{}
		out = append(out, *address)
	}
	return out, nil
}

func (s *mailboxDirectory) OwnedAddresses(ctx context.Context, teamID, memberID uint) ([]string, error) {
	return ownedAddresses(ctx, s.addresses, teamID, memberID)
}

func (s *mailboxDirectory) FindOwnedSender(ctx context.Context, id Identity, from string) (*models.EmailAddress, error) {
	from = models.NormalizeAddress(from)
	rows, err := s.addresses.ListByMember(ctx, id.TeamID, id.MemberID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].FullAddress != from {
			continue
		}
		if rows[i].Status != models.AddressActive || rows[i].Domain == nil || !rows[i].Domain.IsActive {
			return nil, apperrors.NewAppError(apperrors.ErrForbidden,
				fmt.Sprintf("%s cannot send right now", from), apperrors.CodeForbidden)
		}
		return &rows[i], nil
	}
	return nil, apperrors.NewAppError(apperrors.ErrMailboxNotOwned,
		fmt.Sprintf("%s is not one of your addresses", from), apperrors.CodeMailboxNotOwned)
}
