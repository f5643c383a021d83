// Package http provides the HTTP surface for the request guard.
package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/slavayosome/seriously-ai-sub000/adapters/metrics"
	"github.com/slavayosome/seriously-ai-sub000/app"
	_ "github.com/slavayosome/seriously-ai-sub000/docs/swagger" // swagger docs
)

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
	Service string `json:"service" example:"guard"`
}

// GuardHandler evaluates incoming requests against the protection pipeline
// and either forwards them to the protected application or answers with the
// protective redirect or error itself.
type GuardHandler struct {
	guard      *app.Guard
	cookieName string
	logger     zerolog.Logger
	metrics    *metrics.Collector
}

// NewGuardHandler creates a guard handler.
func NewGuardHandler(guard *app.Guard, cookieName string, logger zerolog.Logger) *GuardHandler {
	return &GuardHandler{
		guard:      guard,
		cookieName: cookieName,
		logger:     logger,
	}
}

// SetMetrics attaches a Prometheus collector.
func (h *GuardHandler) SetMetrics(m *metrics.Collector) {
	h.metrics = m
}

// Middleware wraps next with the protection pipeline. Allowed requests pass
// through with X-User-Id and X-Request-Id set; everything else is answered
// here.
func (h *GuardHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verdict := h.evaluate(r)
		if !verdict.Allow {
			h.writeResponse(w, verdict)
			return
		}
		if verdict.UserID != "" {
			r.Header.Set("X-User-Id", verdict.UserID)
		}
		r.Header.Set("X-Request-Id", verdict.RequestID)
		next.ServeHTTP(w, r)
	})
}

// Check answers with the guard's decision without forwarding, for callers
// that enforce the verdict themselves (edge proxies, frontends).
//
//	@Summary		Evaluate a request against the protection pipeline
//	@Description	Classifies the path, validates the session, and checks credits and plan entitlements
//	@Tags			Guard
//	@Produce		json
//	@Param			path	query		string	true	"Request path to evaluate"
//	@Success		200		{object}	CheckResponse	"Decision"
//	@Router			/internal/check [get]
func (h *GuardHandler) Check(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	verdict := h.guard.Evaluate(r.Context(), app.GuardRequest{
		Method:       r.Method,
		Path:         path,
		SessionToken: h.sessionToken(r),
	})
	h.observe(verdict)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CheckResponse{
		Allow:     verdict.Allow,
		Level:     string(verdict.Level),
		UserID:    verdict.UserID,
		RequestID: verdict.RequestID,
		Location:  verdict.Response.Location,
		Reason:    string(verdict.Response.Reason),
	})
}

// CheckResponse is the decision document returned by Check.
type CheckResponse struct {
	Allow     bool   `json:"allow"`
	Level     string `json:"level" example:"paid"`
	UserID    string `json:"userId,omitempty"`
	RequestID string `json:"requestId"`
	Location  string `json:"location,omitempty"`
	Reason    string `json:"reason,omitempty" example:"unauthenticated"`
}

func (h *GuardHandler) evaluate(r *http.Request) app.Verdict {
	start := time.Now()
	if h.metrics != nil {
		h.metrics.ActiveRequests.Inc()
		defer h.metrics.ActiveRequests.Dec()
	}

	verdict := h.guard.Evaluate(r.Context(), app.GuardRequest{
		Method:       r.Method,
		Path:         r.URL.Path,
		Query:        r.URL.RawQuery,
		SessionToken: h.sessionToken(r),
	})
	h.observe(verdict)

	event := h.logger.Debug()
	if !verdict.Allow {
		event = h.logger.Info()
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("level", string(verdict.Level)).
		Bool("allow", verdict.Allow).
		Str("reason", string(verdict.Response.Reason)).
		Str("request_id", verdict.RequestID).
		Dur("duration", time.Since(start)).
		Msg("guard decision")

	if h.metrics != nil {
		h.metrics.RequestDuration.WithLabelValues(string(verdict.Level)).
			Observe(time.Since(start).Seconds())
	}
	return verdict
}

func (h *GuardHandler) observe(verdict app.Verdict) {
	if h.metrics == nil {
		return
	}
	outcome := "allow"
	switch {
	case verdict.Allow:
	case verdict.Response.IsRedirect():
		outcome = "redirect"
		h.metrics.RedirectsTotal.WithLabelValues(string(verdict.Response.Reason)).Inc()
	default:
		outcome = "error"
	}
	h.metrics.DecisionsTotal.WithLabelValues(string(verdict.Level), outcome).Inc()
}

func (h *GuardHandler) writeResponse(w http.ResponseWriter, verdict app.Verdict) {
	for k, v := range verdict.Response.Headers {
		w.Header().Set(k, v)
	}
	if verdict.Response.IsRedirect() {
		w.Header().Set("Location", verdict.Response.Location)
		w.WriteHeader(verdict.Response.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(verdict.Response.Status)
	if len(verdict.Response.Body) > 0 {
		if _, err := w.Write(verdict.Response.Body); err != nil {
			h.logger.Error().Err(err).Msg("failed to write response body")
		}
	}
}

// sessionToken extracts the session token from the cookie or, for API
// clients, a Bearer Authorization header.
func (h *GuardHandler) sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// MonitoringHandler exposes the performance monitor.
type MonitoringHandler struct {
	monitor *app.Monitor
}

// NewMonitoringHandler creates a monitoring handler.
func NewMonitoringHandler(monitor *app.Monitor) *MonitoringHandler {
	return &MonitoringHandler{monitor: monitor}
}

// Snapshot returns the current monitoring snapshot.
//
//	@Summary		Performance snapshot
//	@Description	Aggregate request statistics, threshold alerts and process info
//	@Tags			Monitoring
//	@Produce		json
//	@Success		200	{object}	app.Snapshot	"Monitoring snapshot"
//	@Router			/internal/monitoring [get]
func (h *MonitoringHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.monitor.Export())
}

// Reset clears recorded metrics.
//
//	@Summary		Reset performance metrics
//	@Tags			Monitoring
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status: ok"
//	@Router			/internal/monitoring/reset [post]
func (h *MonitoringHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.monitor.Reset()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// Pinger reports backing-store reachability for readiness checks.
type Pinger interface {
	Ping() error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a health handler. store may be nil when the
// guard runs on in-memory stores.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness returns a simple liveness check.
//
//	@Summary		Liveness check
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status: ok"
//	@Router			/healthz [get]
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// Readiness checks if the backing store is reachable.
//
//	@Summary		Readiness check
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse		"status: ok"
//	@Failure		503	{object}	map[string]string	"status: unhealthy"
//	@Router			/healthz/ready [get]
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// Version returns the service version.
//
//	@Summary		Get service version
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	VersionResponse	"Version information"
//	@Router			/version [get]
func Version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(VersionResponse{
		Version: "dev",
		Service: "guard",
	})
}

// RouterConfig holds optional configuration for the router.
type RouterConfig struct {
	Metrics       *metrics.Collector
	Monitoring    *MonitoringHandler
	EnableOpenAPI bool
	Protected     http.Handler // Application handler behind the guard
}

// NewRouter creates the main HTTP router. Observability endpoints sit in
// front of the guard middleware; everything else flows through it.
func NewRouter(guardHandler *GuardHandler, healthHandler *HealthHandler, logger zerolog.Logger, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health endpoints (never gated)
	r.Get("/healthz", healthHandler.Liveness)
	r.Get("/healthz/ready", healthHandler.Readiness)

	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	if cfg.Monitoring != nil {
		r.Get("/internal/monitoring", cfg.Monitoring.Snapshot)
		r.Post("/internal/monitoring/reset", cfg.Monitoring.Reset)
	}
	r.Get("/internal/check", guardHandler.Check)

	if cfg.EnableOpenAPI {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Get("/version", Version)

	// Everything else is gated
	protected := cfg.Protected
	if protected == nil {
		protected = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"status": "allowed",
				"path":   r.URL.Path,
				"userId": r.Header.Get("X-User-Id"),
			})
		})
	}
	gated := guardHandler.Middleware(protected)
	r.NotFound(gated.ServeHTTP)

	return r
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if strings.HasPrefix(r.URL.Path, "/healthz") || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
