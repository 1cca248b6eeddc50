package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/infrastructure/auth"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/plfog/backoffice/internal/infrastructure/persistence"
	"github.com/plfog/backoffice/internal/interfaces/http/dto"
	"github.com/plfog/backoffice/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-at-least-32-bytes",
		AccessTokenExpiration: time.Hour,
		Issuer:                "plfog-test",
	})
}

func createUser(t *testing.T, db *gorm.DB, username, password string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, username+"@example.com", "", "")
	require.NoError(t, err)
	if password != "" {
		require.NoError(t, u.SetPassword(password))
	}
	require.NoError(t, persistence.NewGormUserRepository(db).Save(context.Background(), u))
	return u
}

// asUser installs claims the way JWTAuth would
func asUser(u *identity.User, permissions ...string) gin.HandlerFunc {
	claims := &auth.Claims{
		UserID:      u.ID.String(),
		Username:    u.Username,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		Permissions: permissions,
	}
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, claims)
		c.Set(middleware.JWTUserIDKey, claims.UserID)
		c.Set(middleware.JWTUsernameKey, claims.Username)
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	if buf.Len() > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decode unwraps a Response and decodes its data into out when given
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var resp struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp.Response
}
