package services

import (
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
)

// Role is a member's standing within a team
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleManager || r == RoleMember
}

// Identity is the acting member, asserted by the gateway in front of the API
type Identity struct {
	TeamID   uint
	MemberID uint
	Role     Role
}

// CanManage reports whether the member may provision domains and mailboxes
func (i Identity) CanManage() bool {
	return i.Role == RoleOwner || i.Role == RoleManager
}

// IsOwner reports whether the member owns the team
func (i Identity) IsOwner() bool {
	return i.Role == RoleOwner
}

func requireManager(id Identity) error {
	if !id.CanManage() {
		return apperrors.NewAppError(apperrors.ErrForbidden, "owner or manager role required", apperrors.CodeForbidden)
	}
	return nil
}
