// Package router assembles the API route tree out of prefixed groups
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router mounts groups under /api/<version>
type Router struct {
	engine  *gin.Engine
	version string
	chain   gin.HandlersChain
	groups  []*Group
}

type Option func(*Router)

// WithAPIVersion sets the version segment of the API root, "v1" by default
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.version = version }
}

func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware that runs for every API route
func (r *Router) Use(handlers ...gin.HandlerFunc) *Router {
	r.chain = append(r.chain, handlers...)
	return r
}

func (r *Router) Register(groups ...*Group) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// BasePath is the API root, e.g. "/api/v1"
func (r *Router) BasePath() string {
	return "/api/" + r.version
}

// Setup mounts every registered group on the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath(), r.chain...)
	for _, g := range r.groups {
		g.mount(api)
	}
}

type route struct {
	method   string
	path     string
	handlers gin.HandlersChain
}

// Group collects routes below a prefix. Nothing reaches gin until the
// owning Router runs Setup.
type Group struct {
	prefix string
	chain  gin.HandlersChain
	routes []route
	subs   []*Group
}

func NewGroup(prefix string) *Group {
	return &Group{prefix: prefix}
}

// Use adds middleware for the group and its subgroups
func (g *Group) Use(handlers ...gin.HandlerFunc) *Group {
	g.chain = append(g.chain, handlers...)
	return g
}

func (g *Group) Handle(method, path string, handlers ...gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method, path, handlers})
	return g
}

func (g *Group) GET(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, path, h...)
}

func (g *Group) POST(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, path, h...)
}

func (g *Group) PUT(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPut, path, h...)
}

func (g *Group) PATCH(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPatch, path, h...)
}

func (g *Group) DELETE(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodDelete, path, h...)
}

// Sub opens a nested group that inherits this group's prefix and
// middleware
func (g *Group) Sub(prefix string) *Group {
	sub := NewGroup(prefix)
	g.subs = append(g.subs, sub)
	return sub
}

func (g *Group) mount(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.chain...)
	for _, rt := range g.routes {
		rg.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, sub := range g.subs {
		sub.mount(rg)
	}
}
