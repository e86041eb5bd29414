package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/talgya/planetgen/internal/builder"
	"github.com/talgya/planetgen/internal/engine"
	"github.com/talgya/planetgen/internal/observability"
	"github.com/talgya/planetgen/internal/persistence"
	"github.com/talgya/planetgen/internal/system"
)

const testKey = "secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		Sim:      engine.NewSimulation(1),
		Eng:      engine.NewEngine(),
		Builder:  builder.New(builder.SmallTestConfig(), nil),
		AdminKey: testKey,
	}
}

func addSystem(t *testing.T, s *Server, seed int64) *system.System {
	t.Helper()
	sys, err := s.Builder.Generate("Fixture", seed)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s.Sim.Add(sys)
	return sys
}

func do(t *testing.T, h http.Handler, method, target, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if admin {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// ==================================================================
// Read endpoints
// ==================================================================

func TestStatus(t *testing.T) {
	s := newTestServer(t)
	addSystem(t, s, 3)
	rec := do(t, s.Handler(), "GET", "/api/v1/status", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string]any
	decode(t, rec, &got)
	if got["systems_live"] != float64(1) {
		t.Errorf("systems_live = %v, want 1", got["systems_live"])
	}
	if got["sim_time"] != "Year 1 Day 1.0" {
		t.Errorf("sim_time = %v", got["sim_time"])
	}
}

func TestSystemsListAndDetail(t *testing.T) {
	s := newTestServer(t)
	sys := addSystem(t, s, 5)
	h := s.Handler()

	rec := do(t, h, "GET", "/api/v1/systems", "", false)
	var list []systemSummary
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != sys.ID {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Bodies != sys.Len() || list[0].Planets+list[0].Moons+1 != sys.Len() {
		t.Errorf("counts = %+v, system has %d bodies", list[0], sys.Len())
	}

	rec = do(t, h, "GET", "/api/v1/systems/"+sys.ID.String(), "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rec.Code)
	}
	var detail struct {
		systemSummary
		Root    bodyView   `json:"root"`
		Planets []bodyView `json:"planets"`
	}
	decode(t, rec, &detail)
	root, _ := sys.RootBody()
	if detail.Root.Name != root.Name {
		t.Errorf("root = %q, want %q", detail.Root.Name, root.Name)
	}
	if len(detail.Planets) != len(sys.Planets()) {
		t.Errorf("planets = %d, want %d", len(detail.Planets), len(sys.Planets()))
	}
	for _, p := range detail.Planets {
		if p.Parent != root.Name {
			t.Errorf("%s parent = %q, want %q", p.Name, p.Parent, root.Name)
		}
		if p.Scene.Distance <= 0 || p.Scene.Radius <= 0 {
			t.Errorf("%s scene = %+v", p.Name, p.Scene)
		}
	}
}

func TestSystemsLookupErrors(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"bad id", "/api/v1/systems/not-a-uuid", http.StatusBadRequest},
		{"unknown id", "/api/v1/systems/" + uuid.NewString(), http.StatusNotFound},
		{"bad limit", "/api/v1/systems?limit=-2", http.StatusBadRequest},
		{"stored without db", "/api/v1/systems?source=stored", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, "GET", tt.target, "", false); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBodies(t *testing.T) {
	s := newTestServer(t)
	sys := addSystem(t, s, 8)
	h := s.Handler()
	base := "/api/v1/systems/" + sys.ID.String() + "/bodies"

	rec := do(t, h, "GET", base, "", false)
	var all []bodyView
	decode(t, rec, &all)
	if len(all) != sys.Len() {
		t.Errorf("bodies = %d, want %d", len(all), sys.Len())
	}

	root, _ := sys.RootBody()
	rec = do(t, h, "GET", base+"?kind="+url.QueryEscape(root.Kind.String()), "", false)
	var stars []bodyView
	decode(t, rec, &stars)
	if len(stars) != 1 || stars[0].Name != root.Name {
		t.Errorf("kind filter = %+v", stars)
	}

	rec = do(t, h, "GET", base+"/"+url.PathEscape(root.Name), "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("body detail status = %d", rec.Code)
	}
	var detail map[string]any
	decode(t, rec, &detail)
	if detail["star"] == nil {
		t.Error("star data missing from root detail")
	}

	if rec := do(t, h, "GET", base+"/Nowhere", "", false); rec.Code != http.StatusNotFound {
		t.Errorf("missing body status = %d, want 404", rec.Code)
	}
}

// ==================================================================
// Admin endpoints
// ==================================================================

func TestGenerate_Auth(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		admin bool
		want  int
	}{
		{"disabled", "", true, http.StatusForbidden},
		{"missing token", testKey, false, http.StatusUnauthorized},
		{"valid token", testKey, true, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.AdminKey = tt.key
			rec := do(t, s.Handler(), "POST", "/api/v1/systems", `{"name":"Auth","seed":4}`, tt.admin)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGenerate_RegistersAndRecords(t *testing.T) {
	s := newTestServer(t)
	reg := prometheus.NewRegistry()
	m, err := observability.NewGenCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	s.Metrics = m
	h := s.Handler()

	rec := do(t, h, "POST", "/api/v1/systems", `{"name":"Vega","seed":12}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		System systemSummary `json:"system"`
		Stats  builder.Stats `json:"stats"`
	}
	decode(t, rec, &resp)
	if resp.System.Name != "Vega" || resp.System.Seed != 12 {
		t.Errorf("system = %+v", resp.System)
	}
	if !s.Sim.View(resp.System.ID, func(*system.System) {}) {
		t.Error("generated system not live")
	}

	rec = do(t, h, "GET", "/metrics", "", false)
	if !strings.Contains(rec.Body.String(), "planetgen_systems_generated_total 1") {
		t.Errorf("metrics missing generation counter:\n%s", rec.Body.String())
	}
}

func TestGenerate_BadJSON(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s.Handler(), "POST", "/api/v1/systems", `{"name":`, true); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerate_RateLimited(t *testing.T) {
	s := newTestServer(t)
	s.GenerateLimiter = NewRateLimiter(2, time.Hour)
	h := s.Handler()

	for i := range 2 {
		if rec := do(t, h, "POST", "/api/v1/systems", "", true); rec.Code != http.StatusCreated {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, h, "POST", "/api/v1/systems", "", true)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestGenerate_ForwardedHeaderDoesNotResetQuota(t *testing.T) {
	s := newTestServer(t)
	s.GenerateLimiter = NewRateLimiter(1, time.Hour)
	h := s.Handler()

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest("POST", "/api/v1/systems", nil)
		req.Header.Set("Authorization", "Bearer "+testKey)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Errorf("statuses = %v, want [201 429 429]", codes)
	}
}

func TestDelete(t *testing.T) {
	s := newTestServer(t)
	sys := addSystem(t, s, 2)
	h := s.Handler()
	target := "/api/v1/systems/" + sys.ID.String()

	if rec := do(t, h, "DELETE", target, "", true); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if s.Sim.Len() != 0 {
		t.Errorf("live systems = %d, want 0", s.Sim.Len())
	}
	if rec := do(t, h, "DELETE", target, "", true); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestSpeed(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	tests := []struct {
		body string
		want int
	}{
		{`{"speed":5}`, http.StatusOK},
		{`{"speed":-1}`, http.StatusBadRequest},
		{`{"speed":5000}`, http.StatusBadRequest},
		{`nope`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			if rec := do(t, h, "POST", "/api/v1/speed", tt.body, true); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if s.Eng.Speed() != 5 {
		t.Errorf("engine speed = %v, want 5", s.Eng.Speed())
	}
}

// ==================================================================
// Storage
// ==================================================================

func TestSpeed_WhileEngineRuns(t *testing.T) {
	s := newTestServer(t)
	s.Eng.Interval = time.Millisecond
	s.Eng.OnTick = s.Sim.TickOrbits
	addSystem(t, s, 4)
	h := s.Handler()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Eng.Run(ctx); close(done) }()

	for i := 0; i < 20; i++ {
		body := fmt.Sprintf(`{"speed":%d}`, i%5+1)
		if rec := do(t, h, "POST", "/api/v1/speed", body, true); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
		if rec := do(t, h, "GET", "/api/v1/status", "", false); rec.Code != http.StatusOK {
			t.Fatalf("status request %d = %d", i, rec.Code)
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if got := s.Eng.Speed(); got != 5 {
		t.Errorf("final speed = %v, want 5", got)
	}
}

func TestStoredSystems(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	s := newTestServer(t)
	s.DB = db
	h := s.Handler()

	rec := do(t, h, "POST", "/api/v1/systems", `{"name":"Kept","seed":21}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate status = %d", rec.Code)
	}
	var resp struct {
		System systemSummary `json:"system"`
	}
	decode(t, rec, &resp)

	rec = do(t, h, "GET", "/api/v1/systems?source=stored", "", false)
	var stored []map[string]any
	decode(t, rec, &stored)
	if len(stored) != 1 || stored[0]["name"] != "Kept" {
		t.Fatalf("stored = %+v", stored)
	}

	// Evict from the simulation; lookup reloads it from storage.
	s.Sim.Remove(resp.System.ID)
	rec = do(t, h, "GET", "/api/v1/systems/"+resp.System.ID.String(), "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d", rec.Code)
	}
	if s.Sim.Len() != 1 {
		t.Errorf("live systems after reload = %d, want 1", s.Sim.Len())
	}
}

// ==================================================================
// Streaming
// ==================================================================

func TestStream(t *testing.T) {
	s := newTestServer(t)
	sys := addSystem(t, s, 6)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/systems/" + sys.ID.String() + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first engine.Frame
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if first.System != sys.ID || len(first.Phases) != sys.Len()-1 {
		t.Errorf("snapshot = %+v", first)
	}

	s.Sim.TickOrbits(1, 86400)
	var next engine.Frame
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read tick frame: %v", err)
	}
	if next.Tick != 1 {
		t.Errorf("tick = %d, want 1", next.Tick)
	}
}

func TestStream_Limit(t *testing.T) {
	s := newTestServer(t)
	s.MaxStreams = 1
	sys := addSystem(t, s, 6)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/systems/" + sys.ID.String() + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f engine.Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("second stream accepted past the limit")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("second stream response = %v", resp)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	if got := clientIP(r, true); got != "10.0.0.7" {
		t.Errorf("clientIP = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(r, false); got != "10.0.0.7" {
		t.Errorf("untrusted XFF used: %q", got)
	}
	if got := clientIP(r, true); got != "203.0.113.9" {
		t.Errorf("clientIP with trusted XFF = %q", got)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	now := time.Unix(1_000_000, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") {
		t.Fatal("first request rejected")
	}
	if rl.Allow("a") {
		t.Fatal("second request allowed inside the window")
	}
	if !rl.Allow("b") {
		t.Error("quota shared between clients")
	}
	if got := rl.RetryAfter("a"); got != 61 {
		t.Errorf("RetryAfter = %d, want 61", got)
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("request rejected after the window reset")
	}

	now = now.Add(3 * time.Minute)
	rl.sweep()
	rl.mu.Lock()
	n := len(rl.clients)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("%d clients left after sweep", n)
	}
}
