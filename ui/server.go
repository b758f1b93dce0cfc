package ui

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"loanlens/internal"
	"loanlens/internal/charts"
	"loanlens/internal/content"
	"loanlens/internal/dashboard"
	"loanlens/internal/errors"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Server is the dashboard web server: the two pages, the JSON API and the
// PNG chart endpoints
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	service    *dashboard.Service
	charts     *charts.Builder
	png        *charts.PNG
	content    *content.Content
	templates  *template.Template
	logger     *internal.Logger
}

// Config holds web server settings
type Config struct {
	Port    string
	GinMode string
}

// NewServer wires routes, middleware and templates around a dashboard service
func NewServer(cfg Config, service *dashboard.Service, builder *charts.Builder, text *content.Content, logger *internal.Logger) (*Server, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if text == nil {
		text = content.Default()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		charts:    builder,
		png:       charts.NewPNG(),
		content:   text,
		templates: tmpl,
		logger:    logger,
	}

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) setupMiddleware() error {
	s.router.Use(requestID(), accessLog(s.logger), s.recovery())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return errors.Wrap(err, "failed to open static assets")
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleOverview)
	s.router.GET("/performance", s.handlePerformance)
	s.router.GET("/charts/:file", s.handleChartPNG)

	api := s.router.Group("/api/v1")
	api.GET("/dataset", s.handleDataset)
	api.GET("/summary", s.handleSummary)
	api.GET("/trends/count", s.handleTrendsCount)
	api.GET("/trends/amount", s.handleTrendsAmount)
	api.GET("/weekdays", s.handleWeekdays)
	api.GET("/conditions", s.handleConditions)
	api.GET("/grades", s.handleGrades)
	api.GET("/distribution", s.handleDistribution)

	s.router.NoRoute(func(c *gin.Context) {
		s.fail(c, errors.NotFound(c.Request.URL.Path))
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("[UI] dashboard listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "dashboard server failed")
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
