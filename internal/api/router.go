package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vpepe/twentyq/internal/agent"
	"github.com/vpepe/twentyq/internal/config"
)

// App holds the router and the game session registry.
type App struct {
	Router *chi.Mux
	Games  *GameHandler
}

func NewApp(newAgent func() *agent.Agent, logger *zap.Logger) *App {
	games := NewGameHandler(newAgent, logger)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(rateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/games", func(r chi.Router) {
		r.Post("/", games.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/turn", games.Turn)
			r.Delete("/", games.Delete)
		})
	})

	return &App{Router: r, Games: games}
}
