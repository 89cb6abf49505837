// Package api exposes the aggregator over a localhost HTTP surface consumed
// by the screensaver UI.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/terrasaver/terrasaver/internal/feed"
	"github.com/terrasaver/terrasaver/internal/stats"
	"github.com/terrasaver/terrasaver/internal/store"
)

// NewsFetcher fetches normalized news for a country.
type NewsFetcher interface {
	FetchNews(ctx context.Context, countryCode string) feed.Result
}

// StatsFetcher fetches a country statistics snapshot.
type StatsFetcher interface {
	CountryStats(ctx context.Context, iso3, iso2 string) (stats.CountryStats, error)
}

// Server holds the dependencies for the HTTP API. The store is optional;
// without it every request goes straight to the upstream fetchers.
type Server struct {
	news     NewsFetcher
	stats    StatsFetcher
	store    *store.Store
	newsTTL  time.Duration
	statsTTL time.Duration
	logger   *slog.Logger
}

// NewServer creates an API server. st may be nil to disable caching.
func NewServer(news NewsFetcher, statsFetcher StatsFetcher, st *store.Store, newsTTL, statsTTL time.Duration) *Server {
	return &Server{
		news:     news,
		stats:    statsFetcher,
		store:    st,
		newsTTL:  newsTTL,
		statsTTL: statsTTL,
		logger:   slog.Default(),
	}
}

// Routes returns the configured handler with middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/news/{country}", s.handleNews)
	mux.HandleFunc("GET /api/stats/{iso3}/{iso2}", s.handleStats)

	return requestID(logging(s.logger, recovery(s.logger, mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNews serves a news result for one country. Upstream failures arrive
// as a Result with status "error", so the response code is always 200 and the
// UI decides how to render the empty state.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	country := r.PathValue("country")
	if !isAlpha(country, 2) {
		respondError(w, http.StatusBadRequest, "country must be an ISO-2 code")
		return
	}

	if payload, ok := s.cachedNews(r.Context(), country); ok {
		respondRaw(w, http.StatusOK, payload)
		return
	}

	result := s.news.FetchNews(r.Context(), country)
	if s.store != nil && result.Status == feed.StatusOK {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.store.PutNews(r.Context(), country, payload); err != nil {
				s.logger.Warn("news snapshot not cached", "country", country, "error", err)
			}
		}
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	iso3 := r.PathValue("iso3")
	iso2 := r.PathValue("iso2")
	if !isAlpha(iso3, 3) || !isAlpha(iso2, 2) {
		respondError(w, http.StatusBadRequest, "expected ISO-3 and ISO-2 codes")
		return
	}

	if s.store != nil {
		if payload, ok, err := s.store.GetStats(r.Context(), iso3, s.statsTTL); err == nil && ok {
			respondRaw(w, http.StatusOK, payload)
			return
		}
	}

	snapshot, err := s.stats.CountryStats(r.Context(), iso3, iso2)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	if s.store != nil {
		if payload, err := json.Marshal(snapshot); err == nil {
			if err := s.store.PutStats(r.Context(), iso3, payload); err != nil {
				s.logger.Warn("stats snapshot not cached", "iso3", iso3, "error", err)
			}
		}
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) cachedNews(ctx context.Context, country string) ([]byte, bool) {
	if s.store == nil {
		return nil, false
	}
	payload, ok, err := s.store.GetNews(ctx, country, s.newsTTL)
	if err != nil {
		s.logger.Warn("news snapshot read failed", "country", country, "error", err)
		return nil, false
	}
	return payload, ok
}

func isAlpha(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
