package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/response"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// IntegrationHandler manages provider credentials. Responses never carry
// secrets, only whether they are set.
type IntegrationHandler struct {
	integrations services.IntegrationService
	security     *logger.SecurityLogger
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(integrations services.IntegrationService, security *logger.SecurityLogger) *IntegrationHandler {
	if security == nil {
		security = logger.NewSecurityLogger(nil)
	}
	return &IntegrationHandler{integrations: integrations, security: security}
}

// Get handles GET /teams/:teamId/integrations/:type
func (h *IntegrationHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	view, err := h.integrations.Get(c.Request().Context(), id, models.IntegrationType(c.Param("type")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

// Put handles PUT /teams/:teamId/integrations/:type
func (h *IntegrationHandler) Put(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req services.UpsertIntegrationRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	kind := models.IntegrationType(c.Param("type"))
	view, err := h.integrations.Upsert(c.Request().Context(), id, kind, req)
	if err != nil {
		return response.Error(c, err)
	}

	h.security.SecurityEvent("integration_updated", c.RealIP(), map[string]string{
		"team_id":          c.Param("teamId"),
		"type":             string(kind),
		"api_key_set":      strconv.FormatBool(view.APIKeySet),
		"signing_key_set":  strconv.FormatBool(view.WebhookSigningKeySet),
		"outbound_enabled": strconv.FormatBool(view.OutboundEnabled),
	})
	return response.Success(c, view)
}
