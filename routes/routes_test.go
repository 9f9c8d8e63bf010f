package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/localmart/localmart-backend-go/cart"
	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/handlers"
	"github.com/localmart/localmart-backend-go/helpcenter"
	"github.com/localmart/localmart-backend-go/kvstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/localmart/localmart-backend-go/messaging"
	customMiddleware "github.com/localmart/localmart-backend-go/middleware"
	"github.com/localmart/localmart-backend-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	store := docstore.NewMemoryStore()
	log := logger.Discard()
	msgs := messaging.NewService(store, log)
	help, err := helpcenter.Default()
	require.NoError(t, err)
	h := &handlers.Handler{
		Store:     store,
		JWTSecret: "routes-secret",
		Carts:     cart.NewStore(kvstore.NewMemoryStore(), log),
		Messages:  msgs,
		Help:      help,
		Contact:   helpcenter.NewContactService(store, msgs, "support", log),
		Log:       log,
	}
	e := echo.New()
	SetupRoutes(e, h, customMiddleware.NewRateLimiter(1, log))
	return e
}

func serve(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPublicRoutes(t *testing.T) {
	e := newServer(t)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/help", "", "").Code)

	rec := serve(e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAPIRequiresToken(t *testing.T) {
	e := newServer(t)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/api/cart", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/api/cart", "", "not-a-token").Code)

	token, err := utils.GenerateJWT("routes-secret", "buyer")
	require.NoError(t, err)
	rec := serve(e, http.MethodGet, "/api/cart", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"count":0,"totals":{}}`, rec.Body.String())
}

func TestContactIsRateLimited(t *testing.T) {
	e := newServer(t)
	body := `{"name":"Bea","email":"bea@example.com","subject":"Help","message":"Hello"}`

	assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/help/contact", body, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/help/contact", body, "").Code)
}
