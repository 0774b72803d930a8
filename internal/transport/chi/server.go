package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogdash/internal/domain"
	domproduct "github.com/kailas-cloud/catalogdash/internal/domain/product"
	dashboarduc "github.com/kailas-cloud/catalogdash/internal/usecase/dashboard"
	healthuc "github.com/kailas-cloud/catalogdash/internal/usecase/health"
)

// FetchErrorMessage is the only text clients see when products could not be fetched.
const FetchErrorMessage = "There was an error fetching the data!"

// Dashboard session identification. A client without an id is assigned a new one,
// returned in both the header and the cookie.
const (
	SessionHeader = "X-Dashboard-Session"
	SessionCookie = "dashboard_session"

	maxSessionIDLen = 128
)

// ProductFetcher returns product records in backend order.
type ProductFetcher interface {
	Fetch(ctx context.Context) ([]domproduct.Record, error)
}

// DashboardSession refreshes and exposes one dashboard view.
type DashboardSession interface {
	Refresh(ctx context.Context) (dashboarduc.Dashboard, error)
	Latest() dashboarduc.Dashboard
}

// DashboardSessions resolves the dashboard session of one client.
type DashboardSessions interface {
	Session(id string) DashboardSession
}

// SessionLookup adapts a lookup function, such as dashboard.Sessions.Get, to DashboardSessions.
type SessionLookup func(id string) *dashboarduc.Session

// Session implements DashboardSessions.
func (f SessionLookup) Session(id string) DashboardSession { return f(id) }

// HealthProber normalizes backend health.
type HealthProber interface {
	Probe(ctx context.Context) healthuc.Status
}

// errorHandler maps a domain error to an HTTP status. Returns false if not matched.
type errorHandler func(err error) (int, bool)

// Server serves the dashboard HTTP API on a chi router.
type Server struct {
	products      ProductFetcher
	sessions      DashboardSessions
	health        HealthProber
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. A nil health prober makes /health answer 500.
func NewServer(products ProductFetcher, sessions DashboardSessions, health HealthProber, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		products:  products,
		sessions:  sessions,
		health:    health,
		logger:    logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrSuperseded, http.StatusConflict),
			sentinelHandler(domain.ErrFetchFailed, http.StatusBadGateway),
			sentinelHandler(domain.ErrHealthUnavailable, http.StatusInternalServerError),
		},
	}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/products/_search", s.SearchProducts)
	r.Get("/dashboard", s.GetDashboard)
	r.Get("/metrics", s.Metrics)
}

type healthResponse struct {
	Status healthuc.State `json:"status"`
}

// HealthCheck handles GET /health. Every normalized status is a 200; only a bridge
// that cannot run at all produces a 500.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	st, err := s.checkHealth(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: st.State})
}

func (s *Server) checkHealth(ctx context.Context) (st healthuc.Status, err error) {
	if s.health == nil {
		return healthuc.Status{}, fmt.Errorf("health prober not configured: %w", domain.ErrHealthUnavailable)
	}
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("health prober panic: %v: %w", rvr, domain.ErrHealthUnavailable)
		}
	}()
	return s.health.Probe(ctx), nil
}

type productHit struct {
	ID     string            `json:"_id"`
	Source domproduct.Record `json:"_source"`
}

type productSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []productHit `json:"hits"`
	} `json:"hits"`
}

// SearchProducts handles GET /products/_search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	records, err := s.products.Fetch(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var resp productSearchResponse
	resp.Hits.Total.Value = len(records)
	resp.Hits.Hits = make([]productHit, len(records))
	for i, rec := range records {
		resp.Hits.Hits[i] = productHit{ID: rec.ID, Source: rec}
	}
	writeJSON(w, http.StatusOK, resp)
}

type dashboardErrorResponse struct {
	Error     string                `json:"error"`
	Dashboard dashboarduc.Dashboard `json:"dashboard"`
}

// GetDashboard handles GET /dashboard. Each client refreshes its own session, so only
// a newer refresh from the same client supersedes a running one. On failure the
// previously published dashboard is returned next to the error so clients keep their
// last view.
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	session := s.sessions.Session(id)

	d, err := session.Refresh(r.Context())
	if err != nil {
		status, msg := s.classify(r, err)
		writeJSON(w, status, dashboardErrorResponse{Error: msg, Dashboard: session.Latest()})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// sessionID reads the client session id from the header, then the cookie. A missing
// or oversized id is replaced by a new one that is echoed back to the client.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	if id == "" || len(id) > maxSessionIDLen {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(SessionHeader, id)
	return id
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrFetchFailed):
		return FetchErrorMessage
	case errors.Is(err, domain.ErrSuperseded):
		return domain.ErrSuperseded.Error()
	case errors.Is(err, domain.ErrHealthUnavailable):
		return domain.ErrHealthUnavailable.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(err error) (int, bool) {
		if !errors.Is(err, sentinel) {
			return 0, false
		}
		return status, true
	}
}

func (s *Server) classify(r *http.Request, err error) (int, string) {
	for _, h := range s.errorHandlers {
		if status, ok := h(err); ok {
			s.logger.Warn("domain error", zap.Error(err), zap.Int("status", status))
			return status, safeDomainMessage(err)
		}
	}
	s.logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
	return http.StatusInternalServerError, "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := s.classify(r, err)
	writeError(w, status, msg)
}
