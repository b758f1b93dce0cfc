package ui

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"loanlens/internal"
	"loanlens/internal/errors"
)

// Readiness reports whether a dataset has been loaded
type Readiness interface {
	Ready() bool
	LastError() error
}

// AdminConfig holds admin listener settings. Profiling mounts pprof under
// /debug; it is off unless asked for.
type AdminConfig struct {
	Host      string
	Port      string
	Profiling bool
}

// AdminServer serves health, readiness and optionally pprof on a separate port
type AdminServer struct {
	router     *chi.Mux
	httpServer *http.Server
	readiness  Readiness
	logger     *internal.Logger
}

// NewAdminServer creates the admin server
func NewAdminServer(cfg AdminConfig, readiness Readiness, logger *internal.Logger) *AdminServer {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	a := &AdminServer{
		router:    chi.NewRouter(),
		readiness: readiness,
		logger:    logger,
	}

	a.setupMiddleware()
	a.setupRoutes(cfg.Profiling)

	a.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a
}

func (a *AdminServer) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
}

func (a *AdminServer) setupRoutes(profiling bool) {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/readyz", a.handleReady)
	if profiling {
		a.router.Mount("/debug", middleware.Profiler())
	}
}

// Handler exposes the router, mainly for tests
func (a *AdminServer) Handler() http.Handler {
	return a.router
}

func (a *AdminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady answers 503 until the first dataset load succeeds
func (a *AdminServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.readiness != nil && a.readiness.Ready() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	body := map[string]string{"status": "not ready"}
	if a.readiness != nil {
		if err := a.readiness.LastError(); err != nil {
			body["code"] = errors.GetCode(err)
			body["error"] = err.Error()
		}
	}
	writeJSON(w, http.StatusServiceUnavailable, body)
}

// Start serves until Shutdown is called
func (a *AdminServer) Start() error {
	a.logger.Info("[Admin] listening on %s", a.httpServer.Addr)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "admin server failed")
	}
	return nil
}

// Shutdown stops the admin server
func (a *AdminServer) Shutdown(ctx context.Context) error {
	return a.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
