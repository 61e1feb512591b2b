package services

import (
	"context"

	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
)

// AccessGuard decides whether a member may see or act on a chain
type AccessGuard interface {
	// CanAccessChain is true when the member owns one of the chain's
	// participant addresses. ErrChainNotFound when the chain is empty.
	CanAccessChain(ctx context.Context, teamID, memberID uint, chainID string) (bool, error)
	// Authorize is CanAccessChain turned into ErrForbidden
	Authorize(ctx context.Context, id Identity, chainID string) error
}

type accessGuard struct {
	emails    repository.EmailRepository
	addresses repository.EmailAddressRepository
	security  *logger.SecurityLogger
}

// NewAccessGuard creates an AccessGuard
func NewAccessGuard(emails repository.EmailRepository, addresses repository.EmailAddressRepository, security *logger.SecurityLogger) AccessGuard {
	if security == nil {
		security = logger.NewSecurityLogger(nil)
	}
	return &accessGuard{emails: emails, addresses: addresses, security: security}
}

func (g *accessGuard) CanAccessChain(ctx context.Context, teamID, memberID uint, chainID string) (bool, error) {
	exists, err := g.emails.ChainExists(ctx, teamID, chainID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperrors.ErrChainNotFound
	}

	owned, err := ownedAddresses(ctx, g.addresses, teamID, memberID)
	if err != nil {
		return false, err
	}
	return g.emails.ChainHasParticipant(ctx, teamID, chainID, owned)
}

func (g *accessGuard) Authorize(ctx context.Context, id Identity, chainID string) error {
	ok, err := g.CanAccessChain(ctx, id.TeamID, id.MemberID, chainID)
	if err != nil {
		return err
	}
	if !ok {
		g.security.AccessDenied(id.TeamID, id.MemberID, "chain", chainID)
		return apperrors.NewAppError(apperrors.ErrForbidden, "no access to this conversation", apperrors.CodeForbidden)
	}
	return nil
}

// ownedAddresses lists the full addresses a member owns, whatever their status
func ownedAddresses(ctx context.Context, repo repository.EmailAddressRepository, teamID, memberID uint) ([]string, error) {
	rows, err := repo.ListByMember(ctx, teamID, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, a := range rows {
		if a.FullAddress != "" {
			out = append(out, a.FullAddress)
		}
	}
	return out, nil
}
