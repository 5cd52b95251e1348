// Package api provides the HTTP API for querying rhythm forecasts.
// GET endpoints are public (read-only).
// POST and DELETE endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/ritmxoid/internal/clock"
	"github.com/talgya/ritmxoid/internal/forecast"
	"github.com/talgya/ritmxoid/internal/persistence"
	"github.com/talgya/ritmxoid/internal/rhythm"
	"github.com/talgya/ritmxoid/internal/roster"
)

// MetaTarget is the meta key holding the last navigated target. Empty means
// the target follows real time.
const MetaTarget = "target"

// Store is the profile storage the server reads and writes.
type Store interface {
	Profiles() ([]roster.Profile, error)
	Profile(id string) (roster.Profile, error)
	SaveProfile(p roster.Profile) error
	DeleteProfile(id string) error
	SetMeta(key, value string) error
}

// Server serves rhythm forecasts over HTTP.
type Server struct {
	Forecast *forecast.Forecaster
	Clock    *clock.Clock
	DB       Store
	Port     int
	AdminKey string // Bearer token for POST/DELETE endpoints. Empty = admin disabled.

	CORSOrigins   []string
	CalendarLimit int           // calendar requests per window per IP
	LimitWindow   time.Duration // rate limit window

	metrics *metrics
}

// Start binds the listen port and serves the HTTP API in a goroutine. A bind
// failure is returned before anything is served. The returned server is used
// for graceful shutdown; its Addr holds the bound address.
func (s *Server) Start() (*http.Server, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.Port, err)
	}
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv, nil
}

// Handler builds the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	limit, window := s.CalendarLimit, s.LimitWindow
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Hour
	}
	calendarLimiter := NewRateLimiter(limit, window)

	reg := prometheus.NewRegistry()
	s.metrics = newMetrics(reg, s.Forecast)

	mux := http.NewServeMux()

	// Public endpoints.
	s.route(mux, "GET /api/v1/status", s.handleStatus)
	s.route(mux, "GET /api/v1/profiles", s.handleProfiles)
	s.route(mux, "GET /api/v1/profile/{id}", s.handleSnapshot)
	s.route(mux, "GET /api/v1/profile/{id}/chart", s.handleChart)
	s.route(mux, "GET /api/v1/profile/{id}/calendar", RateLimitMiddleware(calendarLimiter, s.handleCalendar))
	s.route(mux, "GET /api/v1/ranking", s.handleRanking)
	s.route(mux, "GET /api/v1/arena", s.handleArena)
	s.route(mux, "GET /api/v1/compat", s.handleCompat)

	// Admin endpoints.
	s.route(mux, "POST /api/v1/profiles", s.adminOnly(s.handleCreateProfile))
	s.route(mux, "DELETE /api/v1/profile/{id}", s.adminOnly(s.handleDeleteProfile))
	s.route(mux, "POST /api/v1/target", s.adminOnly(s.handleTarget))

	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return corsMiddleware(s.CORSOrigins, mux)
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.metrics.instrument(pattern, h))
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on mutating requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no RITMXOID_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// targetAt returns ?at= when given, otherwise the clock's target.
func (s *Server) targetAt(r *http.Request) (time.Time, error) {
	at := r.URL.Query().Get("at")
	if at == "" {
		return s.Clock.Target(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid at %q: want RFC3339", at)
	}
	return rhythm.Target(t), nil
}

// loadProfile fetches {id} and writes the error response itself on failure.
func (s *Server) loadProfile(w http.ResponseWriter, id string) (roster.Profile, time.Time, bool) {
	p, err := s.DB.Profile(id)
	if err != nil {
		writeError(w, err)
		return roster.Profile{}, time.Time{}, false
	}
	origin, err := p.Origin()
	if err != nil {
		writeError(w, err)
		return roster.Profile{}, time.Time{}, false
	}
	return p, origin, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	target := s.Clock.Target()
	profiles, err := s.DB.Profiles()
	if err != nil {
		writeError(w, err)
		return
	}
	hits, misses := s.Forecast.CacheStats()
	moon := rhythm.MoonAngle(target)

	writeJSON(w, map[string]any{
		"name":         "Ritmxoid",
		"target":       target,
		"running":      s.Clock.Running(),
		"zone":         rhythm.AppZone.String(),
		"profiles":     len(profiles),
		"day_of_year":  rhythm.DayOfYear(target),
		"season":       rhythm.SeasonWindow(rhythm.DayOfYear(target)).String(),
		"moon_angle":   moon,
		"lunar_window": rhythm.LunarWindow(moon),
		"cache_hits":   hits,
		"cache_misses": misses,
	})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.DB.Profiles()
	if err != nil {
		writeError(w, err)
		return
	}
	if profiles == nil {
		profiles = []roster.Profile{}
	}
	writeJSON(w, profiles)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	target, err := s.targetAt(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, origin, ok := s.loadProfile(w, r.PathValue("id"))
	if !ok {
		return
	}

	writeJSON(w, map[string]any{
		"profile":  p,
		"snapshot": s.Forecast.Snapshot(origin, target),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	span := 14
	if v := r.URL.Query().Get("span"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid span", http.StatusBadRequest)
			return
		}
		span = n
	}
	target, err := s.targetAt(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, origin, ok := s.loadProfile(w, r.PathValue("id"))
	if !ok {
		return
	}

	bars, err := forecast.Chart(origin, target, span)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, bars)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year := s.Clock.Target().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 9999 {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		year = n
	}
	_, origin, ok := s.loadProfile(w, r.PathValue("id"))
	if !ok {
		return
	}

	cal, err := s.Forecast.Year(r.Context(), origin, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, cal)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	target, err := s.targetAt(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	profiles, err := s.DB.Profiles()
	if err != nil {
		writeError(w, err)
		return
	}

	ranking, err := roster.Rank(r.Context(), s.Forecast, profiles, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, ranking)
}

func (s *Server) handleArena(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := roster.ParseMode(q.Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	target, err := s.targetAt(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	profiles, err := s.DB.Profiles()
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := roster.Arena(profiles, q["group"], q["id"], mode, target)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []roster.Entry{}
	}
	writeJSON(w, map[string]any{
		"mode":    mode.String(),
		"entries": entries,
	})
}

func (s *Server) handleCompat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("a") == "" || q.Get("b") == "" {
		http.Error(w, "a and b are required", http.StatusBadRequest)
		return
	}
	target, err := s.targetAt(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := s.DB.Profile(q.Get("a"))
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := s.DB.Profile(q.Get("b"))
	if err != nil {
		writeError(w, err)
		return
	}

	compat, err := roster.Compare(a, b, target)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"a":      a,
		"b":      b,
		"compat": compat,
	})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Birth    string `json:"birthDate"`
		Team     string `json:"teamName"`
		IsMaster bool   `json:"isMaster"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	p, err := roster.NewProfile(req.Name, req.Birth, req.Team)
	if err != nil {
		writeError(w, err)
		return
	}
	p.IsMaster = req.IsMaster
	if err := s.DB.SaveProfile(p); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("profile created", "id", p.ID, "name", p.Name)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, p)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.DB.DeleteProfile(id); err != nil {
		writeError(w, err)
		return
	}
	slog.Info("profile deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleTarget navigates the clock. Exactly one of step_days, step_months,
// at or reset is honoured, in that order.
func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StepDays   int    `json:"step_days"`
		StepMonths int    `json:"step_months"`
		At         string `json:"at"`
		Reset      bool   `json:"reset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var (
		target time.Time
		err    error
		pinned = true
	)
	switch {
	case req.StepDays != 0:
		target, err = s.Clock.StepDays(req.StepDays)
	case req.StepMonths != 0:
		target, err = s.Clock.StepMonths(req.StepMonths)
	case req.At != "":
		var at time.Time
		at, err = time.Parse(time.RFC3339, req.At)
		if err == nil {
			target = s.Clock.Set(at)
		}
	case req.Reset:
		target = s.Clock.Reset(s.Clock.Now())
		pinned = false
	default:
		err = clock.ErrBadStep
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// A reset target follows real time again, so nothing is stored.
	stored := ""
	if pinned {
		stored = target.Format(time.RFC3339)
	}
	if err := s.DB.SetMeta(MetaTarget, stored); err != nil {
		slog.Warn("persist target failed", "error", err)
	}
	slog.Info("target moved", "target", target.Format(time.RFC3339))
	writeJSON(w, map[string]any{"target": target})
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, roster.ErrEmptyName),
		errors.Is(err, roster.ErrBadBirth),
		errors.Is(err, roster.ErrNeedTwoProfiles),
		errors.Is(err, forecast.ErrBadSpan):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing to write.
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response", "error", err)
	}
}
