package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc *service.AuthService

	// SecureCookie marks the access cookie Secure; disable only for plain-http development.
	SecureCookie bool
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login", err)
	}

	c.SetCookie(h.accessCookie(res.AccessToken, res.AccessExp))
	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExp.Unix(),
		User:        res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(h.accessCookie("", time.Unix(0, 0)))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) accessCookie(value string, exp time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}
