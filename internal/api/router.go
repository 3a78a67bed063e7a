package api

import (
	"flight-market-service/internal/api/handlers"
	"flight-market-service/internal/ports"
	"flight-market-service/internal/services"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the dependencies the HTTP layer is composed from.
type RouterConfig struct {
	Coordinator    *services.Coordinator
	Repo           ports.FlightRepository
	Analyzer       *services.Analyzer
	Narrator       *services.Narrator
	DefaultLimit   int
	DefaultAirport string
	CORSOrigins    []string
	// CollectRateLimit is requests per minute per client IP; 0 disables it.
	CollectRateLimit int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(cfg.CORSOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	collectHandler := &handlers.CollectHandler{
		Coordinator:    cfg.Coordinator,
		Repo:           cfg.Repo,
		DefaultLimit:   cfg.DefaultLimit,
		DefaultAirport: cfg.DefaultAirport,
	}
	analyzeHandler := &handlers.AnalyzeHandler{Analyzer: cfg.Analyzer}
	flightsHandler := &handlers.FlightsHandler{
		Coordinator:  cfg.Coordinator,
		Narrator:     cfg.Narrator,
		DefaultLimit: cfg.DefaultLimit,
	}

	r.HandleFunc("/health", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.CollectRateLimit > 0 {
				r.Use(httprate.LimitByIP(cfg.CollectRateLimit, time.Minute))
			}
			r.HandleFunc("/collect-data", collectHandler.Collect)
		})
		r.HandleFunc("/analyze-trends", analyzeHandler.Trends)
		r.HandleFunc("/visualizations", analyzeHandler.Visualizations)
		r.HandleFunc("/market-trends", analyzeHandler.MarketTrends)
		r.HandleFunc("/flights/{airport}", flightsHandler.Airport)
	})

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
