// Package api provides the HTTP server for akipsinv's serve mode. It uses
// the Echo framework to expose the resolved inventory as read-only JSON
// endpoints, plus a refresh endpoint that forces recomputation.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"akipsinv/internal/auth"
	"akipsinv/internal/config"
	"akipsinv/internal/inventory"
)

// InventoryProvider resolves snapshots for the HTTP handlers. It is the
// resolution service; tests substitute a fake.
type InventoryProvider interface {
	Inventory(ctx context.Context, opts inventory.ResolveOptions) (*inventory.Snapshot, error)
	Fingerprint() string
}

// Server represents the akipsinv HTTP server.
type Server struct {
	echo       *echo.Echo
	service    InventoryProvider
	config     *config.Config
	authMiddle *auth.Middleware
}

// New creates a new server instance.
func New(cfg *config.Config, service InventoryProvider) *Server {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler

	server := &Server{
		echo:       e,
		service:    service,
		config:     cfg,
		authMiddle: auth.NewMiddleware(cfg),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))

	s.echo.Use(middleware.Recover())

	s.echo.Use(SecurityHeaders)

	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	s.echo.Use(middleware.RequestID())

	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/", s.healthCheck)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/inventory", s.getInventory, s.authMiddle.RequireRead)
	v1.GET("/hosts", s.listHosts, s.authMiddle.RequireRead)
	v1.GET("/hosts/:name", s.getHost, s.authMiddle.RequireRead)
	v1.GET("/groups", s.listGroups, s.authMiddle.RequireRead)
	v1.GET("/groups/:name/hosts", s.getGroupHosts, s.authMiddle.RequireRead)
	v1.POST("/refresh", s.refresh, s.authMiddle.RequireWrite)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	fmt.Printf("Starting akipsinv inventory server\n")
	fmt.Printf("   Address: http://%s\n", addr)
	fmt.Printf("   AKiPS:   %s\n", s.config.Akips.Host)
	fmt.Printf("   Debug:   %v\n", s.config.Server.Debug)
	fmt.Println()

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	if s.config.Server.TLSEnabled {
		return s.echo.StartTLS(addr, s.config.Server.TLSCert, s.config.Server.TLSKey)
	}
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying Echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
