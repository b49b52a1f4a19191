package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{SkipPaths: []string{"/api/auth/login"}}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/api/orders", ok)
	e.POST("/api/orders", ok)
	e.POST("/api/auth/login", ok)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	e := newServer()

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	var issued *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "XSRF-TOKEN" {
			issued = ck
		}
	}
	require.NotNil(t, issued)
	assert.Equal(t, token, issued.Value)

	session := &http.Cookie{Name: "accessToken", Value: "jwt"}

	t.Run("cookie session without header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.AddCookie(session)
		req.AddCookie(issued)
		assert.Equal(t, http.StatusForbidden, serve(e, req).Code)
	})

	t.Run("cookie session with matching header passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.AddCookie(session)
		req.AddCookie(issued)
		req.Header.Set("X-CSRF-Token", token)
		assert.Equal(t, http.StatusNoContent, serve(e, req).Code)
	})

	t.Run("mismatched header is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.AddCookie(session)
		req.AddCookie(issued)
		req.Header.Set("X-CSRF-Token", "forged")
		assert.Equal(t, http.StatusForbidden, serve(e, req).Code)
	})

	t.Run("bearer requests are not checked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer jwt")
		assert.Equal(t, http.StatusNoContent, serve(e, req).Code)
	})

	t.Run("skipped path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.AddCookie(session)
		assert.Equal(t, http.StatusNoContent, serve(e, req).Code)
	})
}
