package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	}, Auth("secret"))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

	token, err := utils.GenerateJWT("secret", "user-7")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	assert.Equal(t, "user-7", rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(2, logger.Discard())
	e.POST("/contact", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, rl.Middleware())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.Header.Set("X-Real-IP", ip)
		return serve(e, req).Code
	}
	assert.Equal(t, http.StatusNoContent, send("1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, send("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1"))
	assert.Equal(t, http.StatusNoContent, send("2.2.2.2"))

	rl.Reset()
	assert.Equal(t, http.StatusNoContent, send("1.1.1.1"))
}
