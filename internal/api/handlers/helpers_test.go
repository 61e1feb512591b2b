package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/response"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

var (
	memberIdentity  = services.Identity{TeamID: 1, MemberID: 10, Role: services.RoleMember}
	managerIdentity = services.Identity{TeamID: 1, MemberID: 2, Role: services.RoleManager}
	ownerIdentity   = services.Identity{TeamID: 1, MemberID: 1, Role: services.RoleOwner}
)

// newJSONContext builds a context carrying a JSON body and the given identity
func newJSONContext(e *echo.Echo, method, path, body string, id *services.Identity) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != nil {
		middleware.WithIdentity(c, *id)
	}
	return c, rec
}

// formFile is one file part of a multipart body
type formFile struct {
	field, name, content string
}

// multipartBody encodes fields and files the way a browser form would
func multipartBody(fields map[string][]string, files ...formFile) (io.Reader, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			_ = w.WriteField(name, v)
		}
	}
	for _, f := range files {
		part, _ := w.CreateFormFile(f.field, f.name)
		_, _ = part.Write([]byte(f.content))
	}
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func newSecurityLogger() (*logger.SecurityLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logger.NewSecurityLoggerWithHandler(slog.NewJSONHandler(buf, nil)), buf
}

func setParams(c echo.Context, names []string, values []string) {
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

// parseAPIResponse parses the API response from the recorder
func parseAPIResponse(rec *httptest.ResponseRecorder) (*response.APIResponse, error) {
	var resp response.APIResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	return &resp, err
}

// parseErrorResponse parses the error response from the recorder
func parseErrorResponse(rec *httptest.ResponseRecorder) (*response.ErrorResponse, error) {
	var resp response.ErrorResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	return &resp, err
}
