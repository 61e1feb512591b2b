package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/response"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// DomainHandler handles domain-related HTTP requests
type DomainHandler struct {
	domains services.DomainRegistry
}

// NewDomainHandler creates a new DomainHandler
func NewDomainHandler(domains services.DomainRegistry) *DomainHandler {
	return &DomainHandler{domains: domains}
}

// ActiveRequest toggles whether a domain sends and receives
type ActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// Create handles POST /teams/:teamId/domains
func (h *DomainHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req services.CreateDomainRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	domain, err := h.domains.Create(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, domain)
}

// List handles GET /teams/:teamId/domains
func (h *DomainHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	domains, err := h.domains.List(c.Request().Context(), id.TeamID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, domains)
}

// Get handles GET /teams/:teamId/domains/:domainId
func (h *DomainHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	domainID, err := uintParam(c, "domainId")
	if err != nil {
		return response.Error(c, err)
	}
	domain, err := h.domains.Get(c.Request().Context(), id.TeamID, domainID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, domain)
}

// SetActive handles PATCH /teams/:teamId/domains/:domainId/active
func (h *DomainHandler) SetActive(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	domainID, err := uintParam(c, "domainId")
	if err != nil {
		return response.Error(c, err)
	}
	var req ActiveRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return response.BadRequest(c, "is_active must be a boolean")
	}

	domain, err := h.domains.SetActive(c.Request().Context(), id, domainID, *req.IsActive)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, domain)
}

// Delete handles DELETE /teams/:teamId/domains/:domainId
func (h *DomainHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	domainID, err := uintParam(c, "domainId")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.domains.Delete(c.Request().Context(), id, domainID); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}
