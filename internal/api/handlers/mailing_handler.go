package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/response"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
	"github.com/welldanyogia/webrana-teammail-backend/internal/validator"
)

// MailingHandler handles sending and per-message actions
type MailingHandler struct {
	dispatcher services.OutboundDispatcher
	messages   services.MessageService
	labels     services.LabelService
	security   *logger.SecurityLogger
}

// NewMailingHandler creates a new MailingHandler
func NewMailingHandler(
	dispatcher services.OutboundDispatcher,
	messages services.MessageService,
	labels services.LabelService,
	security *logger.SecurityLogger,
) *MailingHandler {
	if security == nil {
		security = logger.NewSecurityLogger(nil)
	}
	return &MailingHandler{dispatcher: dispatcher, messages: messages, labels: labels, security: security}
}

// FlagRequest sets a boolean flag on an email
type FlagRequest struct {
	Value *bool `json:"value"`
}

// Send handles POST /teams/:teamId/mailing/send
func (h *MailingHandler) Send(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}

	values, files, err := readForm(c)
	if err != nil {
		return response.BadRequest(c, "invalid form body")
	}
	if form := c.Request().MultipartForm; form != nil {
		defer form.RemoveAll()
	}

	req := services.SendRequest{
		From:      values.Get("from"),
		To:        formList(values, "to"),
		Cc:        formList(values, "cc"),
		Bcc:       formList(values, "bcc"),
		Subject:   values.Get("subject"),
		HTML:      values.Get("html"),
		Text:      values.Get("text"),
		InReplyTo: values.Get("inReplyTo"),
	}
	for _, key := range []string{"attachments", "attachments[]"} {
		for _, fh := range files[key] {
			name := validator.SanitizeFilename(fh.Filename)
			if err := storage.ValidateFile(name, fh.Size); err != nil {
				h.security.BlockedFileUpload(c.RealIP(), name, err.Error())
				return response.BadRequest(c, "attachment "+name+" rejected: "+err.Error())
			}
			upload := storage.FileUpload(fh)
			upload.Filename = name
			req.Attachments = append(req.Attachments, upload)
		}
	}

	email, err := h.dispatcher.Send(c.Request().Context(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, email)
}

func (h *MailingHandler) flag(c echo.Context, set func(services.Identity, string, bool) (interface{}, error)) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	var req FlagRequest
	if err := c.Bind(&req); err != nil || req.Value == nil {
		return response.BadRequest(c, "value must be a boolean")
	}
	email, err := set(id, c.Param("emailId"), *req.Value)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, email)
}

// MarkRead handles PATCH /teams/:teamId/mailing/emails/:emailId/read
func (h *MailingHandler) MarkRead(c echo.Context) error {
	return h.flag(c, func(id services.Identity, emailID string, v bool) (interface{}, error) {
		return h.messages.MarkRead(c.Request().Context(), id, emailID, v)
	})
}

// Star handles PATCH /teams/:teamId/mailing/emails/:emailId/star
func (h *MailingHandler) Star(c echo.Context) error {
	return h.flag(c, func(id services.Identity, emailID string, v bool) (interface{}, error) {
		return h.messages.SetStarred(c.Request().Context(), id, emailID, v)
	})
}

// AddLabel handles POST /teams/:teamId/mailing/emails/:emailId/labels/:labelId
func (h *MailingHandler) AddLabel(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	labelID, err := uintParam(c, "labelId")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.labels.AddLabel(c.Request().Context(), id, c.Param("emailId"), labelID); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}

// RemoveLabel handles DELETE /teams/:teamId/mailing/emails/:emailId/labels/:labelId
func (h *MailingHandler) RemoveLabel(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	labelID, err := uintParam(c, "labelId")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.labels.RemoveLabel(c.Request().Context(), id, c.Param("emailId"), labelID); err != nil {
		return response.Error(c, err)
	}
	return response.NoContent(c)
}

// DownloadAttachment handles GET /teams/:teamId/mailing/attachments/:attachmentId/download
func (h *MailingHandler) DownloadAttachment(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return response.Error(c, err)
	}
	attachmentID, err := uintParam(c, "attachmentId")
	if err != nil {
		return response.Error(c, err)
	}

	attachment, body, err := h.messages.OpenAttachment(c.Request().Context(), id, attachmentID)
	if err != nil {
		return response.Error(c, err)
	}
	defer body.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": attachment.Filename}))
	if attachment.SizeBytes > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(attachment.SizeBytes, 10))
	}
	return c.Stream(http.StatusOK, attachment.ContentType, body)
}
