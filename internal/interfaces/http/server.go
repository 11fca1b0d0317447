// Package http is the gin host of the bills pages: it builds a controller
// per request, renders into a buffered document and translates navigation
// into redirects. It also serves the JSON API backing remote stores.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/views"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// HealthChecker reports overall health and per-component details
type HealthChecker func(ctx context.Context) (bool, interface{})

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Deps are the components the handlers are built from
type Deps struct {
	// Store backs the pages
	Store port.BillStore

	// Service enables the JSON API when set
	Service service.BillService

	// Files enables receipt serving when set
	Files port.FileStorage

	Sessions port.KeyValueStore
	Export   service.ExportService
	Renderer *views.Renderer
	Health   HealthChecker

	FileURLPrefix string
	PreviewWidth  int
	CookieName    string
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server with the given components
func NewServer(config ServerConfig, deps Deps, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	if deps.FileURLPrefix == "" {
		deps.FileURLPrefix = "/files/"
	}
	if deps.CookieName == "" {
		deps.CookieName = "billed_sid"
	}

	router := gin.New()
	router.MaxMultipartMemory = 16 << 20

	server := &Server{
		config:   config,
		router:   router,
		handlers: NewHandlers(deps, logger),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes(deps)

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes(deps Deps) {
	h := s.handlers

	s.router.GET("/health", h.HealthCheck)
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, PathBills)
	})

	pages := s.router.Group("/", h.visitorMiddleware())
	{
		pages.POST("/session", h.SetSession)

		pages.GET(PathBills, h.BillsPage)
		pages.GET(PathBills+"/new-bill", h.ClickNewBill)
		pages.GET(PathBills+"/preview", h.ReceiptPreview)
		pages.GET(PathBills+"/export.xlsx", h.ExportBills)

		pages.GET(PathNewBill, h.NewBillPage)
		pages.POST(PathNewBill, h.SubmitNewBill)
	}

	if deps.Service != nil {
		api := s.router.Group("/api")
		{
			api.GET("/bills", h.ListBills)
			api.POST("/bills", h.CreateBill)
			api.PUT("/bills/:id", h.UpdateBill)
			api.POST("/files", h.UploadFile)
		}
	}

	if deps.Files != nil {
		s.router.GET(strings.TrimSuffix(deps.FileURLPrefix, "/")+"/*filepath", h.ServeFile)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
