package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baltix/meteostation/internal/display"
	"github.com/baltix/meteostation/internal/station"
	"github.com/baltix/meteostation/internal/store"
)

// SnapshotSource supplies the live snapshot. Satisfied by *station.Sampler.
type SnapshotSource interface {
	Snapshot() station.Snapshot
}

type Server struct {
	sampler SnapshotSource
	store   *store.Store
	port    string
	loc     *time.Location
}

func NewServer(sampler SnapshotSource, store *store.Store, port string, loc *time.Location) *Server {
	return &Server{
		sampler: sampler,
		store:   store,
		port:    port,
		loc:     loc,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/current", s.handleCurrent)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/day", s.handleDay)
	mux.HandleFunc("/display", s.handleDisplay)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	snap := s.sampler.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if h := r.URL.Query().Get("hours"); h != "" {
		parsed, err := strconv.Atoi(h)
		if err != nil || parsed < 1 || parsed > 24*31 {
			http.Error(w, "invalid hours", http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	end := time.Now()
	start := end.Add(-time.Duration(hours) * time.Hour)

	snapshots, err := s.store.GetSnapshots(start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshots)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date := time.Now().In(s.loc)
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, s.loc)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	stats, err := s.store.GetDayStats(date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	snap := s.sampler.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(display.Render(snap))); err != nil {
		log.Printf("api: write display: %v", err)
	}
}

type HealthStatus struct {
	Status        string    `json:"status"`
	LastCycle     time.Time `json:"last_cycle"`
	AgeSeconds    int       `json:"age_seconds"`
	Stale         bool      `json:"stale"`
	PressureValid bool      `json:"pressure_valid"`
	HumidityFault bool      `json:"rh_fault"`
	EphemerisOK   bool      `json:"ephemeris_ok"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.sampler.Snapshot()

	staleThreshold := 60 * time.Second
	now := time.Now()

	health := HealthStatus{
		Status:        "ok",
		LastCycle:     snap.Time,
		PressureValid: snap.PressureValid,
		HumidityFault: snap.HumidityFault,
		EphemerisOK:   snap.EphemerisOK,
	}
	if snap.Time.IsZero() {
		health.Stale = true
		health.AgeSeconds = -1
	} else {
		health.AgeSeconds = int(now.Sub(snap.Time).Seconds())
		health.Stale = now.Sub(snap.Time) > staleThreshold
	}

	if health.Stale || !health.PressureValid {
		health.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("api: write health response: %v", err)
	}
}
