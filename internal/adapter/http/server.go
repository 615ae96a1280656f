package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/field-telemetry-service/internal/domain"
	"github.com/couchcryptid/field-telemetry-service/internal/observability"
	"github.com/couchcryptid/field-telemetry-service/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// Fetcher builds a telemetry bundle by name.
type Fetcher interface {
	Fetch(ctx context.Context, bundle string, req domain.FetchRequest) (any, error)
}

// FieldCatalog lists and registers fields.
type FieldCatalog interface {
	List() []domain.Field
	Get(id string) (domain.Field, error)
	Add(name, location, defaultLocation string) (domain.Field, error)
}

// API bundles the dependencies of the /api routes.
type API struct {
	Telemetry Fetcher
	Fields    FieldCatalog
	Sessions  *session.Tracker
	Metrics   *observability.Metrics
}

// Server exposes the telemetry API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	api        API
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, ready ReadinessChecker, api API, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		api:    api,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/fields", s.handleListFields)
	mux.HandleFunc("POST /api/fields", s.handleAddField)
	mux.HandleFunc("GET /api/fields/{fieldID}/{bundle}", s.handleBundle)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
