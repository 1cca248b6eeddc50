package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/infrastructure/auth"
	"github.com/plfog/backoffice/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

// withClaims injects claims the way Authenticate does
func withClaims(claims *auth.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(JWTClaimsKey, claims)
			c.Set(JWTUserIDKey, claims.UserID)
		}
		c.Next()
	}
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"holds permission", &auth.Claims{UserID: "u1", Permissions: []string{"view_lease"}}, http.StatusOK},
		{"lacks permission", &auth.Claims{UserID: "u1", Permissions: []string{"view_member"}}, http.StatusForbidden},
		{"superuser", &auth.Claims{UserID: "u1", IsSuperuser: true}, http.StatusOK},
		{"anonymous", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(withClaims(tt.claims))
			router.GET("/leases", RequirePermission("view_lease"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := serve(router, http.MethodGet, "/leases")
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
			}
		})
	}
}

func TestRequireStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for claims, want := range map[*auth.Claims]int{
		{UserID: "u1", IsStaff: true}:     http.StatusOK,
		{UserID: "u2", IsSuperuser: true}: http.StatusOK,
		{UserID: "u3"}:                    http.StatusForbidden,
	} {
		router := gin.New()
		router.Use(withClaims(claims))
		router.GET("/staff", RequireStaff(), func(c *gin.Context) { c.Status(http.StatusOK) })
		assert.Equal(t, want, serve(router, http.MethodGet, "/staff").Code, claims.UserID)
	}
}

func TestRequireModelPermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(withClaims(&auth.Claims{UserID: "u1", Permissions: []string{"view_guild", "add_guild", "delete_space"}}))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	perm := RequireModelPermission("model")
	router.GET("/admin/:model", perm, ok)
	router.POST("/admin/:model", perm, ok)
	router.PUT("/admin/:model/:id", perm, ok)
	router.DELETE("/admin/:model/:id", perm, ok)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/admin/guild", http.StatusOK},
		{http.MethodGet, "/admin/Guild", http.StatusOK},
		{http.MethodPost, "/admin/guild", http.StatusOK},
		{http.MethodPut, "/admin/guild/1", http.StatusForbidden},
		{http.MethodDelete, "/admin/space/1", http.StatusOK},
		{http.MethodGet, "/admin/space", http.StatusForbidden},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, serve(router, tt.method, tt.path).Code, tt.method+" "+tt.path)
	}
}

func TestMethodToAction(t *testing.T) {
	tests := map[string]string{
		http.MethodGet:     "view",
		http.MethodHead:    "view",
		http.MethodPost:    "add",
		http.MethodPut:     "change",
		http.MethodPatch:   "change",
		http.MethodDelete:  "delete",
		http.MethodOptions: "view",
	}
	for method, want := range tests {
		assert.Equal(t, want, MethodToAction(method), method)
	}
}

func TestHasPermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, HasPermission(c, "view_lease"))

	c.Set(JWTClaimsKey, &auth.Claims{Permissions: []string{"view_lease"}})
	assert.True(t, HasPermission(c, "view_lease"))
	assert.False(t, HasPermission(c, "delete_lease"))
}
