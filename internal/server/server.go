// Package server exposes the read API over the holiday store.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/safarihq/sikukuu/internal/metrics"
	"github.com/safarihq/sikukuu/internal/model"
	"github.com/safarihq/sikukuu/internal/store"
)

const dateLayout = "2006-01-02"

// Reader is the subset of the store the API needs.
type Reader interface {
	ListHolidays(ctx context.Context, countryCode string, f store.Filter) ([]model.Record, error)
	FindByObservedDate(ctx context.Context, countryCode string, date time.Time) (*model.Record, error)
	Ping(ctx context.Context) error
}

// Server serves the holiday read API.
type Server struct {
	store       Reader
	countryCode string
}

// New creates a Server over the given store.
func New(st Reader, countryCode string) *Server {
	return &Server{store: st, countryCode: countryCode}
}

// Router builds the HTTP routes. An empty corsOrigin allows any origin.
func (s *Server) Router(corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	origin := corsOrigin
	if origin == "" {
		origin = "*"
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/holidays", s.handleListHolidays)
		r.Get("/is-holiday", s.handleIsHoliday)
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}

type holidayPayload struct {
	Date          string  `json:"date"`
	ObservedDate  string  `json:"observedDate"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Source        string  `json:"source"`
	SourceURL     string  `json:"sourceUrl,omitempty"`
	PublishedDate *string `json:"publishedDate"`
}

func toPayload(rec model.Record) holidayPayload {
	p := holidayPayload{
		Date:         rec.Date.Format(dateLayout),
		ObservedDate: rec.ObservedDate.Format(dateLayout),
		Name:         rec.Name,
		Type:         string(rec.Kind),
		Source:       rec.Source,
		SourceURL:    rec.SourceURL,
	}
	if rec.PublishedDate != nil {
		published := rec.PublishedDate.Format(dateLayout)
		p.PublishedDate = &published
	}
	return p
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListHolidays serves GET /v1/holidays. Callers pass either ?year= or a
// ?from=&to= range, never both.
func (s *Server) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	yearParam := q.Get("year")
	fromParam, toParam := q.Get("from"), q.Get("to")

	var f store.Filter
	switch {
	case yearParam != "" && (fromParam != "" || toParam != ""):
		writeError(w, http.StatusBadRequest, "pass either year or from/to, not both")
		return
	case yearParam != "":
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		f.Year = year
	case fromParam != "" && toParam != "":
		from, err := time.ParseInLocation(dateLayout, fromParam, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return
		}
		to, err := time.ParseInLocation(dateLayout, toParam, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return
		}
		f.From, f.To = from, to
	default:
		writeError(w, http.StatusBadRequest, "pass year or a from/to range")
		return
	}

	holidays, err := s.store.ListHolidays(r.Context(), s.countryCode, f)
	if err != nil {
		zap.L().Error("server: list holidays", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	payload := make([]holidayPayload, 0, len(holidays))
	for _, rec := range holidays {
		payload = append(payload, toPayload(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"country":  s.countryCode,
		"holidays": payload,
	})
}

// handleIsHoliday serves GET /v1/is-holiday?date=YYYY-MM-DD and matches on the
// observed date.
func (s *Server) handleIsHoliday(w http.ResponseWriter, r *http.Request) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.ParseInLocation(dateLayout, dateParam, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	rec, err := s.store.FindByObservedDate(r.Context(), s.countryCode, date)
	if err != nil {
		zap.L().Error("server: find by observed date", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	resp := map[string]any{
		"date":      dateParam,
		"isHoliday": rec != nil,
		"holiday":   nil,
	}
	if rec != nil {
		resp["holiday"] = toPayload(*rec)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
