// Package server exposes the catalog over HTTP: the public query API, the
// featured curation surface, health, and metrics.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mbertelsen/citypulse/internal/calendar"
	"github.com/mbertelsen/citypulse/internal/catalog"
	"github.com/mbertelsen/citypulse/internal/event"
	"github.com/mbertelsen/citypulse/internal/store"
)

// Server wires the HTTP surface.
type Server struct {
	catalog *catalog.Service
	store   *store.Store
	log     zerolog.Logger
	now     func() time.Time
}

// New creates a Server.
func New(cat *catalog.Service, st *store.Store, log zerolog.Logger) *Server {
	return &Server{
		catalog: cat,
		store:   st,
		log:     log.With().Str("component", "server").Logger(),
		now:     time.Now,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", s.handleListEvents)
		r.Get("/events/{eventID}/calendar.ics", s.handleEventICS)
		r.Get("/featured", s.handleListFeatured)
		r.Post("/featured", s.handleAddFeatured)
		r.Delete("/featured/{eventID}", s.handleRemoveFeatured)
		r.Put("/featured/order", s.handleReorderFeatured)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type eventsResponse struct {
	Events []event.Event `json:"events"`
	Count  int           `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encoding response")
	}
}

// writeStoreError maps store failures onto the API contract: a down store is
// 503; anything else is an internal error.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		return
	}
	s.log.Error().Err(err).Msg("request failed")
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListEvents serves the catalog. No filters means the full corpus;
// a reachable store with no matches is an empty, valid result.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		City:     q.Get("city"),
		Category: q.Get("category"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from must be RFC 3339"})
			return
		}
		f.DateFrom = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to must be RFC 3339"})
			return
		}
		f.DateTo = t
	}

	events, err := s.catalog.List(r.Context(), f)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	s.writeJSON(w, http.StatusOK, eventsResponse{Events: events, Count: len(events)})
}

func (s *Server) handleEventICS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")
	evt, err := s.store.GetEvent(id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
		return
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="event.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(calendar.GenerateICS(evt, s.now())))
}

func (s *Server) handleListFeatured(w http.ResponseWriter, r *http.Request) {
	events, err := s.catalog.Featured(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	s.writeJSON(w, http.StatusOK, eventsResponse{Events: events, Count: len(events)})
}

func (s *Server) handleAddFeatured(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.EventID == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "eventId is required"})
		return
	}

	err := s.catalog.Feature(body.EventID, s.now())
	switch {
	case errors.Is(err, store.ErrFeaturedCapacity):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
	case err != nil:
		s.writeStoreError(w, err)
	default:
		s.writeJSON(w, http.StatusCreated, map[string]string{"eventId": body.EventID})
	}
}

func (s *Server) handleRemoveFeatured(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Unfeature(chi.URLParam(r, "eventID")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorderFeatured(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EventIDs []string `json:"eventIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.EventIDs) == 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "eventIds is required"})
		return
	}
	if err := s.catalog.Reorder(body.EventIDs); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			s.writeStoreError(w, err)
			return
		}
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
