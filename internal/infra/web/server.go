// File: internal/infra/web/server.go
package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"anonchat-telegram-bot/internal/usecase"
)

const sessionTTL = 30 * time.Minute

// Server exposes the read-only admin API: login, stats, health, metrics.
type Server struct {
	stats  usecase.StatsUseCase
	apiKey string
	auth   *AuthManager
	log    *zerolog.Logger
}

func NewServer(stats usecase.StatsUseCase, apiKey string, secureCookies bool, logger *zerolog.Logger) *Server {
	return &Server{
		stats:  stats,
		apiKey: apiKey,
		auth:   NewAuthManager(apiKey, secureCookies, sessionTTL),
		log:    logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/api/v1/login", s.loginHandler)
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/api/v1/stats", s.statsHandler)
	})
	return r
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" {
		s.log.Error().Msg("admin api key is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(s.apiKey)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats.Summary(r.Context())); err != nil {
		s.log.Error().Err(err).Msg("failed to encode stats")
	}
}
