package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	appidentity "github.com/plfog/backoffice/internal/application/identity"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/plfog/backoffice/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DBName = ":memory:"
	cfg.JWT.Secret = "test-secret-that-is-long-enough-for-hs256"
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func request(h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNew_LocalBackends(t *testing.T) {
	a := newApp(t, testConfig())

	assert.False(t, a.Services.Invoices.StripeEnabled())
	assert.Nil(t, a.Caches.Redis())
	assert.NotEmpty(t, a.Registry.Models())
	_, ok := a.Registry.Get("guild")
	assert.True(t, ok)
}

func TestNew_RejectsBadStripeKey(t *testing.T) {
	cfg := testConfig()
	cfg.Stripe.LiveMode = true
	cfg.Stripe.LiveSecretKey = "sk_test_not_live"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestEngine_PublicRoutes(t *testing.T) {
	engine := newApp(t, testConfig()).Engine()

	w := request(engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = request(engine, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database"`)

	w = request(engine, http.MethodGet, "/api/v1/system/info", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(engine, http.MethodGet, "/api/v1/push/vapid-key", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(engine, http.MethodGet, "/api/v1/spaces/revenue", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEngine_LoginThenAdmin(t *testing.T) {
	a := newApp(t, testConfig())
	engine := a.Engine()

	_, err := a.Services.Users.Create(context.Background(), appidentity.CreateUserInput{
		Username:  "admin",
		Email:     "admin@example.org",
		Password:  "correct-horse",
		Superuser: true,
	})
	require.NoError(t, err)

	w := request(engine, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		dto.Response
		Data struct {
			Token struct {
				AccessToken string `json:"access_token"`
			} `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp.Data.Token.AccessToken
	require.NotEmpty(t, token)

	w = request(engine, http.MethodGet, "/api/v1/admin", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guild"`)

	w = request(engine, http.MethodPost, "/api/v1/admin/guild", token, map[string]any{"name": "Glass Guild"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(engine, http.MethodGet, "/api/v1/admin/guild?q=glass", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "glass-guild")

	w = request(engine, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = request(engine, http.MethodGet, "/api/v1/admin", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduler(t *testing.T) {
	cfg := testConfig()
	s, err := newApp(t, cfg).Scheduler()
	require.NoError(t, err)
	assert.Nil(t, s)

	cfg = testConfig()
	cfg.Scheduler.Enabled = true
	s, err = newApp(t, cfg).Scheduler()
	require.NoError(t, err)
	require.NotNil(t, s)
	_, ok := s.Next(BillTabsJob)
	assert.True(t, ok)

	cfg = testConfig()
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.BillTabsSchedule = "every tuesday"
	_, err = newApp(t, cfg).Scheduler()
	assert.Error(t, err)
}
