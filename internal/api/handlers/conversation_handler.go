package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/response"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// ConversationHandler serves the mailbox views
type ConversationHandler struct {
	query services.ConversationQuery
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(query services.ConversationQuery) *ConversationHandler {
	return &ConversationHandler{query: query}
}

// List handles GET /teams/:teamId/members/:memberId/conversations
func (h *ConversationHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	memberID, err := uintParam(c, "memberId")
	if err != nil {
		return response.Error(c, err)
	}

	filter := services.ConversationFilter{
		Search:       c.QueryParam("search"),
		Status:       c.QueryParam("status"),
		EmailAddress: c.QueryParam("emailAddress"),
		LabelID:      uint(max(intQuery(c, "labelId"), 0)),
	}
	if filter.IsStarred, err = boolQuery(c, "isStarred"); err != nil {
		return response.Error(c, err)
	}
	if filter.IsRead, err = boolQuery(c, "isRead"); err != nil {
		return response.Error(c, err)
	}

	page, err := h.query.List(c.Request().Context(), id, memberID, filter, intQuery(c, "page"), intQuery(c, "limit"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Paginated(c, page.Items, page.Total, page.Page, page.Limit)
}

// Chain handles GET /teams/:teamId/mailing/:chainId
func (h *ConversationHandler) Chain(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	view, err := h.query.GetChain(c.Request().Context(), id, c.Param("chainId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

// ChainEmails handles GET /teams/:teamId/mailing/:chainId/emails
func (h *ConversationHandler) ChainEmails(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	view, err := h.query.GetChainForAddress(c.Request().Context(), id, c.Param("chainId"), c.QueryParam("emailAddress"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}
