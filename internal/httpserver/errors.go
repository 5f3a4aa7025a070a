package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dp_pos/internal/service"
	"github.com/Skotchmaster/dp_pos/pkg/session"
)

// statusFor maps service errors to HTTP statuses. Sentinels win over the
// step that produced them, except an incomplete rollback, which always
// surfaces.
func statusFor(err error) (int, string) {
	var se *service.StepError
	if errors.Is(err, service.ErrCompensationFailed) {
		step := "unknown"
		if errors.As(err, &se) {
			step = se.Step
		}
		return http.StatusInternalServerError, "step " + step + " failed and rollback is incomplete, manual reconciliation needed"
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrTimeout):
		return http.StatusGatewayTimeout, err.Error()
	}
	if errors.As(err, &se) {
		return http.StatusBadGateway, "step " + se.Step + " failed, changes were rolled back"
	}
	return http.StatusInternalServerError, "internal error"
}

func fail(l *slog.Logger, event string, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg)
}

func currentSession(c echo.Context) (session.Session, error) {
	s, ok := session.FromContext(c.Request().Context())
	if !ok {
		return session.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}
	return s, nil
}

func parseID(l *slog.Logger, event string, c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn(event, "status", 400, "reason", "id not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}
	return id, nil
}

// bind decodes and validates a request body.
func bind(l *slog.Logger, event string, c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	if err := c.Validate(req); err != nil {
		l.Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
