package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/application/admin"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/infrastructure/persistence"
	"github.com/plfog/backoffice/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAdminEnv(t *testing.T, permissions ...string) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := newTestDB(t)
	registry := admin.NewRegistry(db)
	_, _, err := registry.RegisterAll(persistence.AllModels())
	require.NoError(t, err)
	h := NewAdminHandler(admin.NewService(db, registry, zap.NewNop()))
	user := createUser(t, db, "staffer", "")

	router := gin.New()
	g := router.Group("/admin", asUser(user, permissions...))
	g.GET("", h.Index)
	g.GET("/:model", h.List)
	g.POST("/:model", h.Create)
	g.GET("/:model/:id", h.Get)
	g.PUT("/:model/:id", h.Update)
	g.DELETE("/:model/:id", h.Delete)
	return db, router
}

func saveSpace(t *testing.T, db *gorm.DB, id, name string, status membership.SpaceStatus) *membership.Space {
	t.Helper()
	s, err := membership.NewSpace(id, name, membership.SpaceTypeStudio)
	require.NoError(t, err)
	s.Status = status
	require.NoError(t, persistence.NewGormSpaceRepository(db).Save(context.Background(), s))
	return s
}

func TestAdminHandler_IndexFiltersByViewPermission(t *testing.T) {
	_, router := newAdminEnv(t, identity.Codename(identity.ActionView, "space"), identity.Codename(identity.ActionAdd, "guild"))

	w := doJSON(router, http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var models []admin.Model
	decode(t, w, &models)
	require.Len(t, models, 1)
	assert.Equal(t, "space", models[0].Name)
	assert.Equal(t, "membership", models[0].Group)
	assert.Contains(t, models[0].Display, "space_id")
}

func TestAdminHandler_List(t *testing.T) {
	db, router := newAdminEnv(t)
	saveSpace(t, db, "A1", "Woodshop Corner", membership.SpaceStatusOccupied)
	saveSpace(t, db, "A2", "Glass Studio", membership.SpaceStatusAvailable)
	saveSpace(t, db, "A3", "Print Studio", membership.SpaceStatusAvailable)

	w := doJSON(router, http.MethodGet, "/admin/space?q=studio&status=available&order_by=space_id&order_dir=desc&page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []admin.Row
	resp := decode(t, w, &rows)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	require.Len(t, rows, 1)
	assert.Equal(t, "A3", rows[0]["space_id"])

	w = doJSON(router, http.MethodGet, "/admin/space?name=Glass", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decode(t, w, nil).Error.Code)

	w = doJSON(router, http.MethodGet, "/admin/user", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_CRUD(t *testing.T) {
	_, router := newAdminEnv(t)

	w := doJSON(router, http.MethodPost, "/admin/guild", map[string]any{"name": "Ceramics Guild", "is_active": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created membership.Guild
	decode(t, w, &created)
	assert.Equal(t, "ceramics-guild", created.Slug)
	path := "/admin/guild/" + created.ID.String()

	w = doJSON(router, http.MethodPut, path, map[string]any{"intro": "Wheel and kiln"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got membership.Guild
	decode(t, w, &got)
	assert.Equal(t, "Ceramics Guild", got.Name)
	assert.Equal(t, "Wheel and kiln", got.Intro)

	w = doJSON(router, http.MethodPost, "/admin/guild", map[string]any{"name": "Ceramics Guild"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_BadRequests(t *testing.T) {
	_, router := newAdminEnv(t)

	w := doJSON(router, http.MethodGet, "/admin/guild/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/admin/guild", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body is required", decode(t, w, nil).Error.Message)

	w = doJSON(router, http.MethodPost, "/admin/space", `{"space_id": "Z1", "space_type": "castle"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/admin/guild/"+uuid.NewString(), map[string]any{"intro": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListQuery(t *testing.T) {
	c, _ := newTestContext()
	c.Request.URL.RawQuery = "q=glass&page=2&page_size=5&order_by=name&order_dir=desc&status=available&is_active=true"

	q := listQuery(c)
	assert.Equal(t, "glass", q.Search)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.PageSize)
	assert.Equal(t, "name", q.OrderBy)
	assert.Equal(t, "desc", q.OrderDir)
	assert.Equal(t, map[string]string{"status": "available", "is_active": "true"}, q.Filters)
}
