package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bus-telemetry-dashboard/internal/dataset"
	"bus-telemetry-dashboard/internal/db"
	"bus-telemetry-dashboard/internal/models"
	"bus-telemetry-dashboard/internal/render"
	"bus-telemetry-dashboard/internal/session"
	"bus-telemetry-dashboard/internal/views"

	"github.com/gorilla/mux"
)

// Server represents the API server
type Server struct {
	ds       *dataset.Store
	db       *db.Database
	sessions *session.Manager
	router   *mux.Router
}

// NewServer creates a new API server
func NewServer(ds *dataset.Store, database *db.Database, sessions *session.Manager) *Server {
	s := &Server{
		ds:       ds,
		db:       database,
		sessions: sessions,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(loggingMiddleware)
	s.router.Handle("/health", jsonMiddleware(http.HandlerFunc(s.handleHealth))).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(jsonMiddleware)

	// Dataset endpoints
	api.HandleFunc("/dataset", s.handleDataset).Methods("GET")
	api.HandleFunc("/summary", s.handleSummary).Methods("GET")
	api.HandleFunc("/drivers", s.handleDrivers).Methods("GET")
	api.HandleFunc("/bindings", s.handleBindings).Methods("GET")

	// Stateless view endpoints
	api.HandleFunc("/views/{view}", s.handleView).Methods("GET")
	api.HandleFunc("/views/{view}/png", s.handleViewPNG).Methods("GET")

	// Session endpoints
	api.HandleFunc("/sessions", s.handleStartSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleEndSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/controls/{control}", s.handleControlChange).Methods("POST")
	api.HandleFunc("/sessions/{id}/views/{view}", s.handleSessionView).Methods("GET")
	api.HandleFunc("/sessions/{id}/views/{view}/png", s.handleSessionViewPNG).Methods("GET")

	// Stats endpoint
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
}

// ServeStatic serves the files under dir at the root path. Static files
// keep the content type the file server detects.
func (s *Server) ServeStatic(dir string) {
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(dir)))
}

// Router returns the configured router
func (s *Server) Router() *mux.Router {
	return s.router
}

// Middleware
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Response helpers
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Meta    *meta       `json:"meta,omitempty"`
}

type meta struct {
	Total   int   `json:"total,omitempty"`
	QueryMs int64 `json:"query_ms,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}

func respondWithMeta(w http.ResponseWriter, data interface{}, m *meta) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data, Meta: m})
}

// respondFailure maps an error onto a status code and error kind
func respondFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := session.KindInternal
	switch {
	case errors.Is(err, views.ErrDayNotFound):
		status, kind = http.StatusNotFound, session.KindNotFound
	case errors.Is(err, db.ErrSessionNotFound), errors.Is(err, views.ErrUnknownView),
		errors.Is(err, render.ErrNotRenderable):
		status, kind = http.StatusNotFound, session.KindNotFound
	case errors.Is(err, views.ErrInvalidControl), errors.Is(err, session.ErrUnknownControl):
		status, kind = http.StatusBadRequest, session.KindInvalidControl
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: err.Error(), Kind: kind})
}

func respondPNG(w http.ResponseWriter, view interface{}) {
	var buf bytes.Buffer
	if err := render.PNG(&buf, view); err != nil {
		respondFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// stateFromQuery overlays query parameters on the default control state
func (s *Server) stateFromQuery(r *http.Request) (models.ControlState, error) {
	state := s.sessions.DefaultState()
	q := r.URL.Query()

	if v := q.Get("day"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil {
			return state, fmt.Errorf("%w: day must be an integer", views.ErrInvalidControl)
		}
		state.Day = day
	}
	if v := q.Get("driver"); v != "" {
		state.Driver = v
	}
	hd, hv := q.Get("hover_driver"), q.Get("hover_vehicle")
	if (hd == "") != (hv == "") {
		return state, fmt.Errorf("%w: hover needs both driver and vehicle", views.ErrInvalidControl)
	}
	if hd != "" {
		state.Hover = &models.DriverVehicle{Driver: hd, Vehicle: hv}
	}
	if _, ok := q["hours"]; ok {
		state.Hours = []string{}
		for _, v := range q["hours"] {
			for _, tag := range strings.Split(v, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					state.Hours = append(state.Hours, tag)
				}
			}
		}
	}
	return state, nil
}

// Handlers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"counts":      s.ds.Counts(),
		"fingerprint": s.ds.Fingerprint(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	table := views.SummaryTable(s.ds)
	respondWithMeta(w, table, &meta{Total: len(table.Rows)})
}

func (s *Server) handleDrivers(w http.ResponseWriter, r *http.Request) {
	opts := views.Drivers(s.ds)
	opts.Default = s.sessions.DefaultState().Driver
	respondWithMeta(w, opts, &meta{Total: len(opts.Drivers)})
}

func (s *Server) handleBindings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, session.Bindings)
}

func (s *Server) computeStateless(r *http.Request) (interface{}, error) {
	name, err := views.ParseName(mux.Vars(r)["view"])
	if err != nil {
		return nil, err
	}
	state, err := s.stateFromQuery(r)
	if err != nil {
		return nil, err
	}
	return views.Compute(s.ds, name, state, s.sessions.Options())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	view, err := s.computeStateless(r)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondWithMeta(w, view, &meta{QueryMs: time.Since(start).Milliseconds()})
}

func (s *Server) handleViewPNG(w http.ResponseWriter, r *http.Request) {
	view, err := s.computeStateless(r)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondPNG(w, view)
}

type sessionResponse struct {
	Session *models.Session  `json:"session"`
	Updates []session.Update `json:"updates,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	sess, updates, err := s.sessions.Start()
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sessionResponse{Session: sess, Updates: updates})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.End(mux.Vars(r)["id"]); err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

type controlChange struct {
	Value json.RawMessage `json:"value"`
}

func (s *Server) handleControlChange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	control, err := session.ParseControl(vars["control"])
	if err != nil {
		respondFailure(w, err)
		return
	}

	var req controlChange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Value) == 0 {
		req.Value = json.RawMessage("null")
	}

	sess, updates, err := s.sessions.Change(vars["id"], control, req.Value)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{Session: sess, Updates: updates})
}

func (s *Server) computeForSession(r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	name, err := views.ParseName(vars["view"])
	if err != nil {
		return nil, err
	}
	return s.sessions.Render(vars["id"], name)
}

func (s *Server) handleSessionView(w http.ResponseWriter, r *http.Request) {
	view, err := s.computeForSession(r)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSessionViewPNG(w http.ResponseWriter, r *http.Request) {
	view, err := s.computeForSession(r)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondPNG(w, view)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats["events"] = s.ds.Counts().Events
	respondJSON(w, http.StatusOK, stats)
}
