package middleware // middleware provides reusable HTTP middleware functions

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-session-booking/internal/model"
	"github.com/iliyamo/event-session-booking/internal/utils"
)

// identityKey is the context key under which the resolved identity is
// stored for handlers.
const identityKey = "identity"

// IdentityResolver resolves the (role, id) pair embedded in a verified
// token to a live identity. The repository implementation looks the row
// up in the matching partition; tests substitute fakes.
type IdentityResolver interface {
	Resolve(ctx context.Context, role model.Role, id uint64) (model.Identity, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer identity
// token and injects the resolved identity into the request context. The
// token encodes which partition it authenticates against; an identity
// whose row no longer exists is rejected the same as a bad token. Expired
// and invalid tokens get distinct 401 bodies so clients can tell whether
// to re-login or to fix their request.
func JWTAuth(secret string, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			role, id, err := utils.ParseIdentityToken(secret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			ident, err := resolver.Resolve(ctx, role, id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "identity not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authorization failed"})
			}

			c.Set(identityKey, ident)
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by JWTAuth. The boolean is
// false on routes that skipped the middleware.
func CurrentIdentity(c echo.Context) (model.Identity, bool) {
	ident, ok := c.Get(identityKey).(model.Identity)
	return ident, ok
}
