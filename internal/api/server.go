// Package api provides the HTTP API for generated systems.
// GET endpoints are public (read-only observation).
// POST and DELETE endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/talgya/planetgen/internal/body"
	"github.com/talgya/planetgen/internal/builder"
	"github.com/talgya/planetgen/internal/engine"
	"github.com/talgya/planetgen/internal/observability"
	"github.com/talgya/planetgen/internal/persistence"
	"github.com/talgya/planetgen/internal/scale"
	"github.com/talgya/planetgen/internal/system"
)

const (
	defaultMaxStreams = 8
	defaultListLimit  = 50
	maxListLimit      = 500
)

// Server serves generated systems over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Builder  *builder.Builder
	DB       *persistence.DB              // optional
	Metrics  *observability.GenCollector // optional
	Addr     string
	AdminKey string // Bearer token for POST/DELETE endpoints. Empty = disabled.

	// GenerateLimiter throttles POST /api/v1/systems per client.
	GenerateLimiter *RateLimiter
	MaxStreams      int32

	streams atomic.Int32
	started time.Time
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	if s.GenerateLimiter == nil {
		s.GenerateLimiter = NewRateLimiter(30, time.Hour)
	}
	if s.MaxStreams == 0 {
		s.MaxStreams = defaultMaxStreams
	}

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/systems", s.handleSystems)
	mux.HandleFunc("GET /api/v1/systems/{id}", s.handleSystemDetail)
	mux.HandleFunc("GET /api/v1/systems/{id}/bodies", s.handleBodies)
	mux.HandleFunc("GET /api/v1/systems/{id}/bodies/{name}", s.handleBodyDetail)
	mux.HandleFunc("GET /api/v1/systems/{id}/stream", s.handleStream)

	// Admin endpoints.
	mux.HandleFunc("POST /api/v1/systems", s.adminOnly(RateLimitMiddleware(s.GenerateLimiter, s.handleGenerate)))
	mux.HandleFunc("DELETE /api/v1/systems/{id}", s.adminOnly(s.handleDelete))
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	return corsMiddleware(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "", "storage", s.DB != nil)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("HTTP API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
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

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no PLANETGEN_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":         "planetgen",
		"systems_live": s.Sim.Len(),
		"tick":         s.Sim.CurrentTick(),
		"started":      humanize.Time(s.started),
		"storage":      s.DB != nil,
	}
	if s.Eng != nil {
		status["sim_time"] = engine.SimTime(s.Eng.Tick(), s.Eng.StepSeconds())
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	writeJSON(w, http.StatusOK, status)
}

// systemSummary is the list view of a system.
type systemSummary struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Seed         int64             `json:"seed"`
	Star         string            `json:"star"`
	SpectralType string            `json:"spectral_type"`
	Planets      int               `json:"planets"`
	Moons        int               `json:"moons"`
	Bodies       int               `json:"bodies"`
	Spacing      system.SpacingLaw `json:"spacing"`
}

func summarize(sys *system.System) systemSummary {
	sum := systemSummary{
		ID:      sys.ID,
		Name:    sys.Name,
		Seed:    sys.Seed,
		Planets: len(sys.Planets()),
		Bodies:  sys.Len(),
		Spacing: sys.Spacing,
	}
	sum.Moons = sum.Bodies - 1 - sum.Planets
	if root, err := sys.RootBody(); err == nil {
		sum.Star = root.Name
		sum.SpectralType = root.Star.SpectralType
	}
	return sum
}

// handleSystems lists live systems, or stored ones with ?source=stored.
func (s *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	if r.URL.Query().Get("source") == "stored" {
		if s.DB == nil {
			http.Error(w, "storage disabled", http.StatusNotFound)
			return
		}
		stored, err := s.DB.ListSystems(limit)
		if err != nil {
			slog.Error("list stored systems", "error", err)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		type storedView struct {
			persistence.Summary
			Created string `json:"created"`
		}
		out := make([]storedView, len(stored))
		for i, sum := range stored {
			out[i] = storedView{Summary: sum, Created: humanize.Time(sum.Created())}
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	var out []systemSummary
	for _, id := range s.Sim.IDs() {
		s.Sim.View(id, func(sys *system.System) {
			out = append(out, summarize(sys))
		})
		if len(out) >= limit {
			break
		}
	}
	if out == nil {
		out = []systemSummary{}
	}
	writeJSON(w, http.StatusOK, out)
}

// lookup resolves the {id} path value to a live system, loading it from
// storage into the simulation when it is not live.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid system id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	if s.Sim.View(id, func(*system.System) {}) {
		return id, true
	}
	if s.DB != nil {
		sys, err := s.DB.LoadSystem(id)
		switch {
		case err == nil:
			s.Sim.Add(sys)
			s.Metrics.SetLive(s.Sim.Len())
			slog.Info("system loaded from storage", "system", sys.Name, "id", id)
			return id, true
		case !errors.Is(err, persistence.ErrNotFound):
			slog.Error("load system", "id", id, "error", err)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return uuid.Nil, false
		}
	}
	http.Error(w, "system not found", http.StatusNotFound)
	return uuid.Nil, false
}

func (s *Server) handleSystemDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	type detail struct {
		systemSummary
		Root    bodyView   `json:"root"`
		Planets []bodyView `json:"planets"`
	}
	var d detail
	s.Sim.View(id, func(sys *system.System) {
		d.systemSummary = summarize(sys)
		if root, err := sys.RootBody(); err == nil {
			d.Root = viewBody(sys, root)
		}
		for _, p := range sys.Planets() {
			d.Planets = append(d.Planets, viewBody(sys, p))
		}
	})
	writeJSON(w, http.StatusOK, d)
}

// bodyView is the API projection of a body.
type bodyView struct {
	body.DisplayFields
	ID         body.ID              `json:"id"`
	Parent     string               `json:"parent,omitempty"`
	Satellites []string             `json:"satellites,omitempty"`
	Position   body.PolarCoordinate `json:"position"`
	Retrograde bool                 `json:"retrograde"`
	Habitable  bool                 `json:"habitable"`
	MassHuman  string               `json:"mass_human"`
	Scene      sceneView            `json:"scene"`
}

// sceneView carries display-scaled sizes for renderers.
type sceneView struct {
	Radius   float64 `json:"radius"`
	Distance float64 `json:"distance"`
	Speed    float64 `json:"speed"` // radians per simulated day
}

func viewBody(sys *system.System, b *body.Body) bodyView {
	v := bodyView{
		DisplayFields: b.Display(),
		ID:            b.ID,
		Position:      b.Position,
		MassHuman:     humanize.SIWithDigits(b.Mass, 3, "kg"),
		Scene:         sceneView{Radius: scale.Radius(b.Radius)},
	}
	if p := sys.Parent(b.ID); p != nil {
		v.Parent = p.Name
	}
	for _, sat := range sys.Satellites(b.ID) {
		v.Satellites = append(v.Satellites, sat.Name)
	}
	if b.Planet != nil {
		v.Retrograde = b.Planet.Retrograde
		v.Habitable = b.Planet.Habitable
		v.Scene.Distance = scale.Distance(b.Planet.OrbitalDistance)
		v.Scene.Speed = scale.PeriodSpeed(b.Planet.OrbitalPeriod)
	}
	return v
}

func (s *Server) handleBodies(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	kindFilter := r.URL.Query().Get("kind")
	var out []bodyView
	s.Sim.View(id, func(sys *system.System) {
		for _, b := range sys.Bodies() {
			if kindFilter != "" && !strings.EqualFold(b.Kind.String(), kindFilter) {
				continue
			}
			out = append(out, viewBody(sys, b))
		}
	})
	if out == nil {
		out = []bodyView{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBodyDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")

	type detail struct {
		bodyView
		Star   *body.StarData   `json:"star,omitempty"`
		Planet *body.PlanetData `json:"planet,omitempty"`
	}
	var d detail
	var found bool
	s.Sim.View(id, func(sys *system.System) {
		b, ok := sys.Body(name)
		if !ok {
			return
		}
		found = true
		d = detail{bodyView: viewBody(sys, b), Star: b.Star, Planet: b.Planet}
	})
	if !found {
		http.Error(w, "body not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleGenerate generates, registers and optionally stores a new system.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Seed int64  `json:"seed"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	}

	ctx, span := observability.Tracer().Start(r.Context(), "api.generate",
		trace.WithAttributes(attribute.String("system.name", req.Name), attribute.Int64("seed", req.Seed)))
	defer span.End()

	start := time.Now()
	sys, stats, err := s.Builder.GenerateWithStats(req.Name, req.Seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		slog.Error("generation failed", "name", req.Name, "seed", req.Seed, "error", err)
		http.Error(w, "generation failed", http.StatusInternalServerError)
		return
	}
	s.Metrics.Observe(sys, stats, time.Since(start))
	span.SetAttributes(
		attribute.String("system.id", sys.ID.String()),
		attribute.Int("system.bodies", sys.Len()),
		attribute.Int64("seed.used", stats.Seed),
	)

	if s.DB != nil {
		_, saveSpan := observability.Tracer().Start(ctx, "persistence.save")
		err := s.DB.SaveSystem(sys)
		saveSpan.End()
		if err != nil {
			slog.Error("save system", "system", sys.Name, "error", err)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
	}

	s.Sim.Add(sys)
	s.Metrics.SetLive(s.Sim.Len())

	writeJSON(w, http.StatusCreated, map[string]any{
		"system": summarize(sys),
		"stats":  stats,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid system id", http.StatusBadRequest)
		return
	}
	live := s.Sim.View(id, func(*system.System) {})
	s.Sim.Remove(id)
	s.Metrics.SetLive(s.Sim.Len())

	stored := false
	if s.DB != nil {
		switch err := s.DB.DeleteSystem(id); {
		case err == nil:
			stored = true
		case !errors.Is(err, persistence.ErrNotFound):
			slog.Error("delete system", "id", id, "error", err)
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
	}
	if !live && !stored {
		http.Error(w, "system not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not running", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 1000 {
		http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
		return
	}
	s.Eng.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)

	writeJSON(w, http.StatusOK, map[string]float64{"speed": s.Eng.Speed()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
