// Package router assembles the gin engine and mounts the API routes.
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ikkasa/orderhub/internal/infrastructure/logger"
	"github.com/ikkasa/orderhub/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// EngineConfig configures the middleware chain of the engine
type EngineConfig struct {
	// Mode is the gin mode: debug, release or test
	Mode           string
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string
	TrustedProxies []string
	// Auth guards every route when set; see middleware.JWTAuth
	Auth   gin.HandlerFunc
	Logger *zap.Logger
}

// NewEngine creates a gin engine with the standard middleware chain:
// request id, tracing, access log, recovery, security headers, CORS and the
// optional auth guard.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanEnricher(),
		logger.GinMiddleware(cfg.Logger, logger.WithQuietPaths("/health", "/api/v1/health")),
		logger.Recovery(cfg.Logger),
		middleware.Secure(),
		middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)),
	)
	if cfg.Auth != nil {
		engine.Use(cfg.Auth)
	}
	return engine, nil
}

type registration struct {
	registrar  RouteRegistrar
	middleware []gin.HandlerFunc
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	api        []registration
	root       []registration
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register mounts registrar under /api/<version>, behind mw
func (r *Router) Register(registrar RouteRegistrar, mw ...gin.HandlerFunc) *Router {
	r.api = append(r.api, registration{registrar: registrar, middleware: mw})
	return r
}

// RegisterRoot mounts registrar at the engine root, behind mw
func (r *Router) RegisterRoot(registrar RouteRegistrar, mw ...gin.HandlerFunc) *Router {
	r.root = append(r.root, registration{registrar: registrar, middleware: mw})
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, reg := range r.api {
		reg.registrar.RegisterRoutes(api.Group("", reg.middleware...))
	}
	for _, reg := range r.root {
		reg.registrar.RegisterRoutes(r.engine.Group("", reg.middleware...))
	}
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
