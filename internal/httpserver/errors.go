package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"

	"github.com/Skotchmaster/storefront/internal/service"
)

const headerIdempotencyKey = "Idempotency-Key"

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail logs the outcome of op and converts err into the HTTP error echo renders as {"message": ...}.
// Internal failures never leak their text to the client.
func fail(l *slog.Logger, op string, err error) error {
	status := statusFor(err)

	msg := http.StatusText(status)
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}

	if status >= http.StatusInternalServerError {
		l.Error(op+"_failed", "status", status, "reason", msg, "error", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	} else {
		l.Warn(op+"_failed", "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg)
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_failed", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

// requester reads the identity the auth middleware stored on the context.
func requester(c echo.Context) (service.Requester, error) {
	s, ok := c.Get(middleware.CtxUserID).(string)
	if !ok || s == "" {
		return service.Requester{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return service.Requester{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return service.Requester{ID: id, Role: role}, nil
}
