package api_test

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/baltix/meteostation/internal/api"
	"github.com/baltix/meteostation/internal/solar"
	"github.com/baltix/meteostation/internal/station"
	"github.com/baltix/meteostation/internal/store"
	"github.com/baltix/meteostation/internal/wind"
)

type fixedSampler struct {
	snap station.Snapshot
}

func (f *fixedSampler) Snapshot() station.Snapshot { return f.snap }

func liveSnapshot() station.Snapshot {
	return station.Snapshot{
		Time:          time.Now(),
		Temperature:   25.08,
		PressureHPa:   1006.399,
		PressureValid: true,
		Humidity:      42.49,
		HumidityTemp:  21.44,
		Sun:           solar.Angles{SunLevel: 512},
		Wind:          wind.State{Speed: 10, Direction: 1},
		WindName:      "NE",
		EphemerisOK:   true,
	}
}

func setupTestStore(t *testing.T) (*store.Store, *time.Location) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	loc := time.UTC
	s := store.New(db, loc)
	if err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	return s, loc
}

func TestCurrentEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(&fixedSampler{snap: liveSnapshot()}, s, "8080", loc)

	req := httptest.NewRequest("GET", "/api/current", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snap station.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if snap.PressureHPa != 1006.399 {
		t.Errorf("PressureHPa = %v, want 1006.399", snap.PressureHPa)
	}
	if snap.WindName != "NE" {
		t.Errorf("WindName = %q, want NE", snap.WindName)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)

	snap := liveSnapshot()
	snap.Time = time.Now().Add(-time.Hour)
	if err := s.InsertSnapshot(snap); err != nil {
		t.Fatal(err)
	}

	srv := api.NewServer(&fixedSampler{snap: liveSnapshot()}, s, "8080", loc)

	req := httptest.NewRequest("GET", "/api/history?hours=2", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snapshots []station.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snapshots); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("len(snapshots) = %d, want 1", len(snapshots))
	}
}

func TestHistoryEndpoint_InvalidHours(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(&fixedSampler{snap: liveSnapshot()}, s, "8080", loc)

	for _, q := range []string{"hours=0", "hours=-3", "hours=abc", "hours=100000"} {
		req := httptest.NewRequest("GET", "/api/history?"+q, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if w.Code != 400 {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(&fixedSampler{snap: liveSnapshot()}, s, "8080", loc)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("expected ok status, got %s", w.Body.String())
	}
}

func TestHealthEndpoint_StaleCycle(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)

	snap := liveSnapshot()
	snap.Time = time.Now().Add(-10 * time.Minute)
	srv := api.NewServer(&fixedSampler{snap: snap}, s, "8080", loc)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 503 {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"degraded"`) {
		t.Errorf("expected degraded status, got %s", w.Body.String())
	}
}

func TestDisplayEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(&fixedSampler{snap: liveSnapshot()}, s, "8080", loc)

	req := httptest.NewRequest("GET", "/display", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, sub := range []string{"Temperature:", "Pressure:", "Wind: NE"} {
		if !strings.Contains(body, sub) {
			t.Errorf("display output missing %q", sub)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	s, loc := setupTestStore(t)
	srv := api.NewServer(&fixedSampler{snap: liveSnapshot()}, s, "8080", loc)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_") {
		t.Error("expected prometheus metrics output")
	}
}
