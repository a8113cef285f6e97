package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/shiftforge/roster/internal/auth"
	"github.com/shiftforge/roster/internal/ratelimit"
	"github.com/shiftforge/roster/internal/storage"
)

// Server is the rosterd HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	handlers   *Handlers
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
// Optional fields (nil-safe): MCPServer, UIFS, OpenAPISpec, RateLimiter.
type ServerConfig struct {
	// Required dependencies.
	DB     *storage.DB
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	// Optional dependencies (nil = disabled).
	MCPServer   *mcpserver.MCPServer
	RateLimiter *ratelimit.Limiter

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
	CORSAllowedOrigins  []string // Allowed origins for CORS; ["*"] permits all.

	// Optional embedded assets.
	UIFS        fs.FS  // Embedded UI filesystem (SPA).
	OpenAPISpec []byte // Embedded OpenAPI YAML.
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		DB:                  cfg.DB,
		JWTMgr:              cfg.JWTMgr,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		OpenAPISpec:         cfg.OpenAPISpec,
	})

	mux := http.NewServeMux()

	// Auth endpoint (no auth required — exchanges an API key for a JWT).
	mux.Handle("POST /auth/token", http.HandlerFunc(h.HandleAuthToken))
	mux.Handle("POST /auth/refresh", http.HandlerFunc(h.HandleAuthToken))

	// Solve (scheduler+).
	schedulerRole := requireRole(auth.RoleScheduler)
	mux.Handle("POST /v1/solve", schedulerRole(http.HandlerFunc(h.HandleSolve)))

	// Solution retrieval, diffing, and export (viewer+).
	viewerRole := requireRole(auth.RoleViewer)
	mux.Handle("GET /v1/solutions/{id}", viewerRole(http.HandlerFunc(h.HandleGetSolution)))
	mux.Handle("GET /v1/solutions/{id}/diff/{other_id}", viewerRole(http.HandlerFunc(h.HandleDiffSolutions)))
	mux.Handle("GET /v1/solutions/{id}/export/{format}", viewerRole(http.HandlerFunc(h.HandleExportSolution)))

	// MCP StreamableHTTP transport (auth required, viewer+).
	if cfg.MCPServer != nil {
		mcpHTTP := mcpserver.NewStreamableHTTPServer(cfg.MCPServer)
		mux.Handle("/mcp", viewerRole(mcpHTTP))
	}

	// OpenAPI spec (no auth).
	mux.HandleFunc("GET /openapi.yaml", h.HandleOpenAPISpec)

	// Config (no auth — feature flags for UI).
	mux.HandleFunc("GET /config", h.HandleConfig)

	// Health (no auth).
	mux.HandleFunc("GET /health", h.HandleHealth)

	// SPA: serve the embedded UI at the root path.
	// Registered last so all API routes take priority via the mux's longest-match rule.
	if cfg.UIFS != nil {
		mux.Handle("/", newSPAHandler(cfg.UIFS))
		cfg.Logger.Info("ui enabled, serving SPA at /")
	}

	// Middleware chain (outermost executes first):
	// request ID → security headers → CORS → tracing → logging → baggage → auth → recovery → rateLimit → handler.
	var handler http.Handler = mux
	if cfg.RateLimiter != nil {
		rule := ratelimit.Rule{Prefix: "http", Limit: 100, Window: time.Minute}
		reqIDFunc := func(r *http.Request) string { return RequestIDFromContext(r.Context()) }
		handler = ratelimit.MiddlewareWithRequestID(cfg.RateLimiter, rule, ratelimit.IPKeyFunc, reqIDFunc)(handler)
	}
	handler = recoveryMiddleware(cfg.Logger, handler)
	handler = authMiddleware(cfg.JWTMgr, cfg.DB, handler)
	handler = baggageMiddleware(handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = corsMiddleware(cfg.CORSAllowedOrigins, handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  2 * cfg.ReadTimeout, // Prevent accumulation of idle connections.
		},
		handler:  handler,
		handlers: h,
		logger:   cfg.Logger,
	}
}

// Handlers returns the underlying Handlers.
func (s *Server) Handlers() *Handlers {
	return s.handlers
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
