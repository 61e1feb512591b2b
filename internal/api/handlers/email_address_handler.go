package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/response"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// EmailAddressHandler handles the team's mailbox aliases
type EmailAddressHandler struct {
	directory services.MailboxDirectory
}

// NewEmailAddressHandler creates a new EmailAddressHandler
func NewEmailAddressHandler(directory services.MailboxDirectory) *EmailAddressHandler {
	return &EmailAddressHandler{directory: directory}
}

// Create handles POST /teams/:teamId/email-addresses
func (h *EmailAddressHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req services.CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.LocalPart == "" || req.DomainID == 0 {
		return response.BadRequest(c, "local_part and domain_id are required")
	}

	address, err := h.directory.Create(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, address)
}

// List handles GET /teams/:teamId/email-addresses
func (h *EmailAddressHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	addresses, err := h.directory.ListByTeam(c.Request().Context(), id.TeamID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, addresses)
}

// ListByMember handles GET /teams/:teamId/members/:memberId/email-addresses
func (h *EmailAddressHandler) ListByMember(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	memberID, err := uintParam(c, "memberId")
	if err != nil {
		return response.Error(c, err)
	}
	addresses, err := h.directory.ListByMember(c.Request().Context(), id.TeamID, memberID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, addresses)
}

// Delete handles DELETE /teams/:teamId/email-addresses/:addressId
func (h *EmailAddressHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	addressID, err := uintParam(c, "addressId")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.directory.Delete(c.Request().Context(), id, addressID); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}

// SetDefault handles PATCH /teams/:teamId/email-addresses/:addressId/default
func (h *EmailAddressHandler) SetDefault(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	addressID, err := uintParam(c, "addressId")
	if err != nil {
		return response.Error(c, err)
	}
	address, err := h.directory.SetDefault(c.Request().Context(), id, addressID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, address)
}
