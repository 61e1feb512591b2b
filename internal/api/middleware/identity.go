package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
)

// Identity headers asserted by the gateway
const (
	HeaderTeamID   = "X-Team-ID"
	HeaderMemberID = "X-Team-Member-ID"
	HeaderRole     = "X-Team-Role"
)

const identityKey = "identity"

// TeamIdentity reads the acting member from the gateway headers and rejects
// requests whose :teamId path parameter names another team.
func TeamIdentity(security *logger.SecurityLogger) echo.MiddlewareFunc {
	if security == nil {
		security = logger.NewSecurityLogger(nil)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			teamID, teamErr := strconv.ParseUint(h.Get(HeaderTeamID), 10, 64)
			memberID, memberErr := strconv.ParseUint(h.Get(HeaderMemberID), 10, 64)
			role := services.Role(strings.ToLower(strings.TrimSpace(h.Get(HeaderRole))))

			if teamErr != nil || memberErr != nil || teamID == 0 || memberID == 0 || !role.IsValid() {
				security.AuthFailure(c.RealIP(), c.Path(), "missing_identity")
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
					"error": "missing or invalid identity headers",
					"code":  "UNAUTHORIZED",
				})
			}

			if raw := c.Param("teamId"); raw != "" && raw != strconv.FormatUint(teamID, 10) {
				security.AccessDenied(uint(teamID), uint(memberID), "team", raw)
				return echo.NewHTTPError(http.StatusForbidden, map[string]string{
					"error": "identity does not belong to this team",
					"code":  "FORBIDDEN",
				})
			}

			c.Set(identityKey, services.Identity{
				TeamID:   uint(teamID),
				MemberID: uint(memberID),
				Role:     role,
			})
			return next(c)
		}
	}
}

// IdentityFrom returns the identity TeamIdentity stored on the context
func IdentityFrom(c echo.Context) (services.Identity, bool) {
	id, ok := c.Get(identityKey).(services.Identity)
	return id, ok
}

// WithIdentity stores id on the context; handler tests use it in place of
// the headers.
func WithIdentity(c echo.Context, id services.Identity) {
	c.Set(identityKey, id)
}
