package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/response"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// DefaultWebhookTimeout bounds one delivery end to end
const DefaultWebhookTimeout = 10 * time.Second

// WebhookHandler receives provider inbound deliveries. It is not behind the
// API key; every request is authenticated by its signature.
type WebhookHandler struct {
	processor services.InboundProcessor
	security  *logger.SecurityLogger
	timeout   time.Duration
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(processor services.InboundProcessor, security *logger.SecurityLogger, timeout time.Duration) *WebhookHandler {
	if security == nil {
		security = logger.NewSecurityLogger(nil)
	}
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &WebhookHandler{processor: processor, security: security, timeout: timeout}
}

// Receive handles POST /webhooks/:provider/:teamId
func (h *WebhookHandler) Receive(c echo.Context) error {
	provider := models.IntegrationType(c.Param("provider"))
	teamID, err := strconv.ParseUint(c.Param("teamId"), 10, 32)
	if err != nil || teamID == 0 {
		return response.BadRequest(c, "invalid team ID")
	}

	values, files, err := readForm(c)
	if err != nil {
		return response.Error(c, apperrors.NewAppError(apperrors.ErrPayloadMalformed,
			"body is not a form", apperrors.CodePayloadMalformed))
	}
	if form := c.Request().MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.processor.Ingest(ctx, uint(teamID), provider, services.InboundPayload{
		Values: values,
		Files:  files,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrSignatureInvalid) {
			h.security.WebhookRejected(c.RealIP(), string(provider), uint(teamID), err.Error())
		} else if !errors.Is(err, apperrors.ErrPayloadMalformed) && !errors.Is(err, apperrors.ErrInvalidInput) {
			h.security.GetLogger().Error("inbound delivery failed",
				slog.Uint64("team_id", teamID),
				slog.String("provider", string(provider)),
				slog.String("error", err.Error()),
			)
		}
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
