package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dp_pos/internal/service"
	"github.com/Skotchmaster/dp_pos/internal/transport"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
	"github.com/Skotchmaster/dp_pos/pkg/session"
	"github.com/Skotchmaster/dp_pos/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

// Register is the public sign-up; it never creates admins.
func (h *AuthHTTP) Register(c echo.Context) error {
	return h.register(c, false)
}

// CreateUser lets an admin add operators of either role.
func (h *AuthHTTP) CreateUser(c echo.Context) error {
	return h.register(c, true)
}

func (h *AuthHTTP) register(c echo.Context, allowAdmin bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bind(l, "register_error", c, &req); err != nil {
		return err
	}
	user, err := h.Svc.Register(ctx, req, allowAdmin)
	if err != nil {
		return fail(l, "register_error", err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(l, "login_error", c, &req); err != nil {
		return err
	}
	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	l.Info("login_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": res.AccessToken,
		"expiresAt":   res.AccessExp,
		"user":        res.User,
		"is_admin":    res.User.Role == session.RoleAdmin,
		"alert":       res.Alert,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Logout(ctx, sess); err != nil {
		c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
		return fail(l, "logout_failed", err)
	}
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
