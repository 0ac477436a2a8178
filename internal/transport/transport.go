// Package transport implements the HTTP surface: map listing, join,
// player state queries, movement, manual ticking and the leaderboard,
// all mounted under /api/v1. It maps the core's
// typed errors onto HTTP status codes and never touches game state
// directly — every handler calls into internal/app.Application.
package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/openmohaa/stats-api/internal/app"
)

// Config bundles the collaborators a Handler needs, mirroring the
// teacher's handlers.Config/New(cfg) constructor shape.
type Config struct {
	App            *app.Application
	Logger         *zap.Logger
	AllowedOrigins []string
}

// Handler serves every /api/v1 route.
type Handler struct {
	app    *app.Application
	logger *zap.SugaredLogger
}

var validate = validator.New()

func New(cfg Config) *Handler {
	return &Handler{app: cfg.App, logger: cfg.Logger.Sugar()}
}

// Router builds the chi mux for the whole API surface, plus health and
// metrics endpoints. wwwRoot, when non-empty, is served as a static
// file tree at "/".
func Router(cfg Config, wwwRoot string, metricsHandler http.Handler) chi.Router {
	h := New(cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/maps", h.ListMaps)
		r.Head("/maps", h.ListMaps)
		r.Get("/maps/{id}", h.GetMap)
		r.Head("/maps/{id}", h.GetMap)

		r.Post("/game/join", h.JoinGame)

		r.Group(func(r chi.Router) {
			r.Use(h.requireToken)
			r.Get("/game/players", h.ListPlayers)
			r.Head("/game/players", h.ListPlayers)
			r.Get("/game/state", h.GameState)
			r.Head("/game/state", h.GameState)
			r.Post("/game/player/action", h.PlayerAction)
		})

		r.Post("/game/tick", h.Tick)
		r.Get("/game/records", h.Records)
	})

	if wwwRoot != "" {
		fs := http.FileServer(http.Dir(wwwRoot))
		r.Handle("/*", fs)
	}

	return r
}

// Health is a bare liveness probe; it never touches game state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := writeJSON(w, data); err != nil && h.logger != nil {
		h.logger.Warnw("failed to encode response body", "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, code, message string) {
	h.jsonResponse(w, status, map[string]string{"error": code, "message": message})
}
