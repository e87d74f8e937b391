package router

import (
	"net/http"
	"strings"

	"github.com/callbridge/backend/internal/interfaces/http/dto"
	"github.com/callbridge/backend/internal/interfaces/http/handler"
	"github.com/callbridge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine      *gin.Engine
	registrars  []RouteRegistrar
	metricsPath string
	metrics     http.Handler
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithMetricsHandler exposes a scrape handler at path
func WithMetricsHandler(path string, h http.Handler) RouterOption {
	return func(r *Router) {
		r.metricsPath = path
		r.metrics = h
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	root := r.engine.Group("")
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(root)
	}

	if r.metrics != nil && r.metricsPath != "" {
		r.engine.GET(r.metricsPath, gin.WrapH(r.metrics))
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Resource not found", middleware.GetRequestID(c)))
	})
}

// DomainGroup collects the routes of one area of the API
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:       name,
		prefix:     prefix,
		routes:     make([]routeDefinition, 0),
		middleware: make([]gin.HandlerFunc, 0),
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) add(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// RegisterRoutes implements RouteRegistrar. A path ending in a slash is
// also served without it, since dialer integrations send both forms.
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
		if alias := strings.TrimSuffix(route.path, "/"); alias != route.path && alias != "" {
			group.Handle(route.method, alias, route.handlers...)
		}
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// CallCenterRoutes groups the dialer-facing endpoints
func CallCenterRoutes(h *handler.CallCenterHandler) *DomainGroup {
	return NewDomainGroup("call-center", "").
		GET(handler.PathPreCall, h.FetchPreCallProfile).
		POST(handler.PathPostCall, h.ApplyPostCallOutcome)
}

// SystemRoutes groups health, statistics and the index
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "").
		GET("/", h.Index).
		GET(handler.PathHealth, h.Health).
		GET(handler.PathAPIHealth, h.APIHealth).
		GET(handler.PathDashboardStats, h.DashboardStats)
}
