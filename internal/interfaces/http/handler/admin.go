package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/application/admin"
	"github.com/plfog/backoffice/internal/domain/identity"
)

// AdminHandler exposes generic CRUD over every registered model
type AdminHandler struct {
	BaseHandler
	service *admin.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service *admin.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// Index handles GET /api/v1/admin. Only models the caller may view are
// listed.
func (h *AdminHandler) Index(c *gin.Context) {
	models := h.service.Registry().Models()
	out := make([]*admin.Model, 0, len(models))
	for _, m := range models {
		if hasPermission(c, identity.Codename(identity.ActionView, m.Name)) {
			out = append(out, m)
		}
	}
	h.Success(c, out)
}

// List handles GET /api/v1/admin/:model
func (h *AdminHandler) List(c *gin.Context) {
	m, ok := h.model(c)
	if !ok {
		return
	}
	q := listQuery(c)
	rows, total, err := h.service.List(c.Request.Context(), m, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	h.SuccessWithMeta(c, rows, total, page, size)
}

// Get handles GET /api/v1/admin/:model/:id
func (h *AdminHandler) Get(c *gin.Context) {
	m, ok := h.model(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	v, err := h.service.Get(c.Request.Context(), m, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Create handles POST /api/v1/admin/:model
func (h *AdminHandler) Create(c *gin.Context) {
	m, ok := h.model(c)
	if !ok {
		return
	}
	body, ok := h.body(c)
	if !ok {
		return
	}
	v, err := h.service.Create(c.Request.Context(), m, body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, v)
}

// Update handles PUT and PATCH /api/v1/admin/:model/:id. Fields missing
// from the body keep their stored values.
func (h *AdminHandler) Update(c *gin.Context) {
	m, ok := h.model(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	body, ok := h.body(c)
	if !ok {
		return
	}
	v, err := h.service.Update(c.Request.Context(), m, id, body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, v)
}

// Delete handles DELETE /api/v1/admin/:model/:id
func (h *AdminHandler) Delete(c *gin.Context) {
	m, ok := h.model(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), m, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *AdminHandler) model(c *gin.Context) (*admin.Model, bool) {
	m, err := h.service.Model(c.Param("model"))
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return m, true
}

func (h *AdminHandler) body(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	if len(body) == 0 {
		h.BadRequest(c, "Request body is required")
		return nil, false
	}
	return body, true
}

// listQuery splits the query string into the reserved list parameters and
// filter values
func listQuery(c *gin.Context) admin.ListQuery {
	q := admin.ListQuery{Filters: map[string]string{}}
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		v := values[0]
		switch key {
		case admin.ParamSearch:
			q.Search = v
		case admin.ParamPage:
			q.Page, _ = strconv.Atoi(v)
		case admin.ParamPageSize:
			q.PageSize, _ = strconv.Atoi(v)
		case admin.ParamOrderBy:
			q.OrderBy = v
		case admin.ParamOrderDir:
			q.OrderDir = v
		default:
			q.Filters[key] = v
		}
	}
	return q
}
