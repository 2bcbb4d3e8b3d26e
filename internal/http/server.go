// Package http provides the HTTP server and route wiring.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogHTTP "github.com/denis-papin/doka.one/internal/catalog/http"
	customerHTTP "github.com/denis-papin/doka.one/internal/customer/http"
	filestoreHTTP "github.com/denis-papin/doka.one/internal/filestore/http"
	tokenHTTP "github.com/denis-papin/doka.one/internal/token/http"
)

// Handlers groups the route handlers mounted on the server.
type Handlers struct {
	Login      *customerHTTP.LoginHandler
	Customer   *customerHTTP.CustomerHandler
	AdminToken *tokenHTTP.AdminTokenHandler
	Item       *catalogHTTP.ItemHandler
	Tag        *catalogHTTP.TagHandler
	File       *filestoreHTTP.FileHandler
}

// Options carries the cross-cutting middleware mounted on the router.
// Nil entries are skipped.
type Options struct {
	// Session authenticates requests via session tokens. Required for the
	// protected route groups.
	Session gin.HandlerFunc

	// RequireAdmin restricts the management routes to admin identities.
	RequireAdmin gin.HandlerFunc

	// LoginRateLimit throttles the unauthenticated login endpoint per IP.
	LoginRateLimit gin.HandlerFunc

	// CORS handles cross-origin requests.
	CORS gin.HandlerFunc

	// Metrics records HTTP request metrics.
	Metrics gin.HandlerFunc
}

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
	handlers Handlers,
	opts Options,
) *Server {
	s := &Server{
		db:     db,
		logger: logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics)
	}
	if opts.CORS != nil {
		router.Use(opts.CORS)
	}

	// Health and readiness endpoints
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	s.registerRoutes(router, handlers, opts)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// registerRoutes mounts the API routes.
func (s *Server) registerRoutes(router *gin.Engine, handlers Handlers, opts Options) {
	v1 := router.Group("/v1")

	// Login is the only unauthenticated API endpoint.
	if handlers.Login != nil {
		login := v1.Group("")
		if opts.LoginRateLimit != nil {
			login.Use(opts.LoginRateLimit)
		}
		login.POST("/login", handlers.Login.LoginHandler)
	}

	if opts.Session == nil {
		return
	}

	// Routes for any authenticated identity.
	authed := v1.Group("")
	authed.Use(opts.Session)

	if handlers.Login != nil {
		authed.GET("/sessions/current", handlers.Login.CurrentSessionHandler)
		authed.DELETE("/sessions/current", handlers.Login.LogoutHandler)
	}
	if handlers.Item != nil {
		authed.POST("/items", handlers.Item.CreateItemHandler)
		authed.GET("/items", handlers.Item.ListItemsHandler)
		authed.GET("/items/:id", handlers.Item.GetItemHandler)
		authed.DELETE("/items/:id", handlers.Item.DeleteItemHandler)
	}
	if handlers.Tag != nil {
		authed.POST("/tags", handlers.Tag.CreateTagHandler)
		authed.GET("/tags", handlers.Tag.ListTagsHandler)
	}
	if handlers.File != nil {
		authed.POST("/files", handlers.File.UploadFileHandler)
		authed.GET("/files", handlers.File.ListFilesHandler)
		authed.GET("/files/:id", handlers.File.DownloadFileHandler)
		authed.GET("/files/:id/info", handlers.File.FileInfoHandler)
		authed.DELETE("/files/:id", handlers.File.DeleteFileHandler)
	}

	// Management routes restricted to admin identities.
	if opts.RequireAdmin == nil {
		return
	}

	admin := v1.Group("")
	admin.Use(opts.Session, opts.RequireAdmin)

	if handlers.Customer != nil {
		admin.POST("/customers", handlers.Customer.CreateCustomerHandler)
		admin.GET("/customers/:code", handlers.Customer.GetCustomerHandler)
		admin.DELETE("/customers/:code", handlers.Customer.DeleteCustomerHandler)
	}
	if handlers.AdminToken != nil {
		admin.POST("/admin/tokens", handlers.AdminToken.IssueAdminTokenHandler)
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	status := "ready"
	code := http.StatusOK

	if s.db == nil {
		components["database"] = "error"
		status = "not_ready"
		code = http.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			components["database"] = "error"
			status = "not_ready"
			code = http.StatusServiceUnavailable
		} else {
			components["database"] = "ok"
		}
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": components,
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
