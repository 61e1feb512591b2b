package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/response"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// LabelHandler handles a member's labels
type LabelHandler struct {
	labels services.LabelService
}

// NewLabelHandler creates a new LabelHandler
func NewLabelHandler(labels services.LabelService) *LabelHandler {
	return &LabelHandler{labels: labels}
}

// List handles GET /teams/:teamId/labels
func (h *LabelHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	labels, err := h.labels.List(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, labels)
}

// Create handles POST /teams/:teamId/labels
func (h *LabelHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req services.LabelRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	label, err := h.labels.Create(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, label)
}

// Update handles PUT /teams/:teamId/labels/:labelId
func (h *LabelHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	labelID, err := uintParam(c, "labelId")
	if err != nil {
		return response.Error(c, err)
	}
	var req services.LabelRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	label, err := h.labels.Update(c.Request().Context(), id, labelID, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, label)
}

// Delete handles DELETE /teams/:teamId/labels/:labelId
func (h *LabelHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	labelID, err := uintParam(c, "labelId")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.labels.Delete(c.Request().Context(), id, labelID); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}
