package handlers

import (
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/middleware"
	apperrors "github.com/welldanyogia/webrana-teammail-backend/internal/errors"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// maxMemoryForm is how much of a multipart body is kept in memory before
// spilling parts to temporary files
const maxMemoryForm = 32 << 20

func identity(c echo.Context) (services.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return services.Identity{}, apperrors.ErrUnauthorized
	}
	return id, nil
}

func uintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, apperrors.Invalid("invalid %s", name)
	}
	return uint(v), nil
}

func intQuery(c echo.Context, name string) int {
	v, _ := strconv.Atoi(c.QueryParam(name))
	return v
}

func boolQuery(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Invalid("%s must be true or false", name)
	}
	return &v, nil
}

// readForm returns the fields and files of a multipart or urlencoded body
func readForm(c echo.Context) (url.Values, map[string][]*multipart.FileHeader, error) {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := req.ParseMultipartForm(maxMemoryForm); err != nil {
			return nil, nil, err
		}
		return url.Values(req.MultipartForm.Value), req.MultipartForm.File, nil
	}
	values, err := c.FormParams()
	if err != nil {
		return nil, nil, err
	}
	return values, nil, nil
}

// formList collects a repeated field sent as name or name[]
func formList(values url.Values, name string) []string {
	out := append([]string{}, values[name]...)
	return append(out, values[name+"[]"]...)
}
