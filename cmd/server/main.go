package main

import (
	"context"
	"database/sql"
	"errors"
	"flight-market-service/internal/adapters/cache"
	"flight-market-service/internal/adapters/llm"
	"flight-market-service/internal/adapters/repositories"
	"flight-market-service/internal/adapters/sources"
	"flight-market-service/internal/api"
	"flight-market-service/internal/config"
	"flight-market-service/internal/domain"
	"flight-market-service/internal/logging"
	"flight-market-service/internal/platform/db"
	"flight-market-service/internal/ports"
	"flight-market-service/internal/services"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

// main is the application composition root.
// It wires concrete adapters (SQL store, flight sources, LLM) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	if envErr != nil {
		logging.Info().Msg("no .env file found (using environment variables)")
	}

	conn, dialect, err := db.Open(cfg.Store.Location)
	if err != nil {
		logging.Fatal().Err(err).Msg("open store")
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := repositories.NewSQLFlightRepository(conn, dialect)
	if err := initAndSeed(ctx, conn, repo, cfg.Store.SeedPath); err != nil {
		logging.Fatal().Err(err).Msg("prepare store")
	}

	coord := services.NewCoordinator(buildSources(cfg)...)
	narrator := services.NewNarrator(buildGenerator(cfg), cache.NewSQLInsightCache(conn, dialect))
	analyzer := services.NewAnalyzer(repo, cache.NewSQLTrendCache(conn, dialect), narrator)

	router := api.NewRouter(api.RouterConfig{
		Coordinator:      coord,
		Repo:             repo,
		Analyzer:         analyzer,
		Narrator:         narrator,
		DefaultLimit:     cfg.Collect.DefaultLimit,
		DefaultAirport:   cfg.Collect.DefaultAirport,
		CORSOrigins:      cfg.Server.CORSOrigins,
		CollectRateLimit: cfg.Server.CollectRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("dialect", string(dialect)).
			Strs("sources", provenanceNames(coord.SourceNames())).
			Bool("external_api_key", cfg.HasExternalAPIKey()).
			Bool("llm", narrator.UsesLLM()).
			Msg("server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// buildSources returns the fallback chain in priority order: paid API, the two
// scrapers when enabled, then the synthetic generator which never comes back empty.
func buildSources(cfg *config.Config) []ports.FlightSource {
	chain := []ports.FlightSource{
		sources.NewAviationstackSource(sources.AviationstackConfig{
			APIKey:  cfg.Sources.ExternalAPIKey,
			BaseURL: cfg.Sources.AviationstackURL,
			Timeout: cfg.Sources.RequestTimeout,
		}),
	}

	if cfg.Sources.ScrapeEnabled {
		scrapeCfg := sources.ScrapeConfig{
			UserAgent: cfg.Sources.UserAgent,
			Timeout:   cfg.Sources.RequestTimeout,
			Interval:  cfg.Sources.ScrapeInterval,
			Location:  cfg.Location(),
		}
		chain = append(chain,
			sources.NewScrapeSource(sources.AirportSiteTarget(cfg.Sources.AirportSiteURLs), scrapeCfg),
			sources.NewScrapeSource(sources.FlightBoardTarget(cfg.Sources.FlightBoardURLs), scrapeCfg),
		)
	}

	return append(chain, sources.NewSyntheticSource(0))
}

// buildGenerator returns nil without a credential so the narrator stays rule-based.
func buildGenerator(cfg *config.Config) ports.InsightGenerator {
	if !cfg.HasLLMKey() {
		return nil
	}
	gen, err := llm.NewOpenAIGenerator(llm.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	})
	if err != nil {
		logging.Warn().Err(err).Msg("llm disabled")
		return nil
	}
	return gen
}

func provenanceNames(names []domain.Provenance) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, string(n))
	}
	return out
}

func initAndSeed(ctx context.Context, conn *sql.DB, repo ports.FlightRepository, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if seedPath == "" {
		return nil
	}

	n, err := repositories.SeedFromJSON(ctx, repo, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	logging.Info().Int("flights", n).Str("path", seedPath).Msg("seeded store")

	return nil
}
