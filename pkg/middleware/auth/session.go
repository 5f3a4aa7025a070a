package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dp_pos/pkg/logging"
	"github.com/Skotchmaster/dp_pos/pkg/session"
	"github.com/Skotchmaster/dp_pos/pkg/tokens"
)

// SessionStore reports whether a login session (by jti) is still open.
type SessionStore interface {
	SessionActive(ctx context.Context, jti string) (bool, error)
}

type SessionMiddleware struct {
	JWTSecret []byte
	Store     SessionStore
}

func NewSessionMiddleware(secret []byte, store SessionStore) *SessionMiddleware {
	return &SessionMiddleware{JWTSecret: secret, Store: store}
}

type validatorFunc func(s session.Session) error

func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, nil)
}

func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(s session.Session) error {
		if !s.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *SessionMiddleware) require(next echo.HandlerFunc, validator validatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		raw := bearerOrCookie(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if m.Store != nil {
			active, err := m.Store.SessionActive(ctx, claims.ID)
			if err != nil {
				l.Error("session_lookup_failed", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot verify session")
			}
			if !active {
				c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
				return echo.NewHTTPError(http.StatusUnauthorized, "session closed")
			}
		}

		s := session.Session{
			ID:     claims.ID,
			UserID: userID,
			Role:   claims.Role,
			Branch: claims.Branch,
		}
		if validator != nil {
			if err := validator(s); err != nil {
				return err
			}
		}

		c.Set("session", s)
		c.SetRequest(c.Request().WithContext(session.IntoContext(ctx, s)))
		return next(c)
	}
}

func bearerOrCookie(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}
