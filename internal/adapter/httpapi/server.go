// Package httpapi exposes the risk engine over HTTP, alongside health,
// readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
	"github.com/couchcryptid/parametric-risk-engine/internal/risk"
	"github.com/couchcryptid/parametric-risk-engine/internal/service"
)

// Engine is the service surface the HTTP layer consumes.
type Engine interface {
	Products() []domain.Product
	Series(ctx context.Context, region domain.Region, weatherType domain.WeatherType, r domain.TimeRange) ([]domain.DataPoint, domain.DataType, error)
	DailySeries(ctx context.Context, region domain.Region, weatherType domain.WeatherType, r domain.TimeRange) ([]domain.DataPoint, domain.DataType, error)
	EvaluateProduct(ctx context.Context, productID string, region domain.Region, r domain.TimeRange) (service.EvaluationResult, error)
	Analysis(ctx context.Context, productID string, region domain.Region, r domain.TimeRange) (risk.Analysis, error)
	ClearCaches(pattern string) int
	CheckReadiness() error
}

// Server exposes the engine API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	engine     Engine
	logger     *slog.Logger
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(addr string, engine Engine, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: engine,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/products", s.handleProducts)
	mux.HandleFunc("GET /api/v1/series", s.handleSeries)
	mux.HandleFunc("GET /api/v1/risk/events", s.handleRiskEvents)
	mux.HandleFunc("GET /api/v1/risk/analysis", s.handleRiskAnalysis)
	mux.HandleFunc("DELETE /api/v1/cache", s.handleClearCache)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if err := s.engine.CheckReadiness(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": s.engine.Products()})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	region, timeRange, err := parseRegionAndRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	weatherType := domain.WeatherType(r.URL.Query().Get("weather_type"))
	if !weatherType.Valid() {
		writeError(w, http.StatusBadRequest, errors.New("unknown or missing weather_type"))
		return
	}

	granularity := r.URL.Query().Get("granularity")
	var (
		points   []domain.DataPoint
		dataType domain.DataType
	)
	switch granularity {
	case "", "hourly":
		points, dataType, err = s.engine.Series(r.Context(), region, weatherType, timeRange)
	case "daily":
		points, dataType, err = s.engine.DailySeries(r.Context(), region, weatherType, timeRange)
	default:
		writeError(w, http.StatusBadRequest, errors.New("granularity must be hourly or daily"))
		return
	}
	if err != nil {
		s.serveFailure(w, "series", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"region":    region,
		"data_type": dataType,
		"points":    points,
	})
}

func (s *Server) handleRiskEvents(w http.ResponseWriter, r *http.Request) {
	region, timeRange, err := parseRegionAndRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		writeError(w, http.StatusBadRequest, errors.New("product_id is required"))
		return
	}

	result, err := s.engine.EvaluateProduct(r.Context(), productID, region, timeRange)
	if err != nil {
		s.serveFailure(w, "risk events", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRiskAnalysis(w http.ResponseWriter, r *http.Request) {
	region, timeRange, err := parseRegionAndRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		writeError(w, http.StatusBadRequest, errors.New("product_id is required"))
		return
	}

	analysis, err := s.engine.Analysis(r.Context(), productID, region, timeRange)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		s.serveFailure(w, "risk analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	removed := s.engine.ClearCaches(r.URL.Query().Get("pattern"))
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) serveFailure(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, err)
}

// parseRegionAndRange reads the region and time range every data route
// shares. Dates accept RFC 3339 instants or plain YYYY-MM-DD.
func parseRegionAndRange(r *http.Request) (domain.Region, domain.TimeRange, error) {
	q := r.URL.Query()
	region := domain.Region{
		Country:  q.Get("country"),
		Province: q.Get("province"),
		District: q.Get("district"),
	}
	if region.District == "" {
		return domain.Region{}, domain.TimeRange{}, errors.New("district is required")
	}

	from, err := parseTime(q.Get("from"))
	if err != nil {
		return domain.Region{}, domain.TimeRange{}, errors.New("invalid from")
	}
	to, err := parseTime(q.Get("to"))
	if err != nil {
		return domain.Region{}, domain.TimeRange{}, errors.New("invalid to")
	}

	startHour, err := parseHour(q.Get("start_hour"), 0)
	if err != nil {
		return domain.Region{}, domain.TimeRange{}, err
	}
	endHour, err := parseHour(q.Get("end_hour"), 23)
	if err != nil {
		return domain.Region{}, domain.TimeRange{}, err
	}

	timeRange := domain.TimeRange{From: from, To: to, StartHour: startHour, EndHour: endHour}
	if err := timeRange.Validate(); err != nil {
		return domain.Region{}, domain.TimeRange{}, err
	}
	return region, timeRange, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseHour(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 23 {
		return 0, errors.New("hours must be integers in [0,23]")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // best-effort response body
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
