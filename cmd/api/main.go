package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"wrapgen/internal/adapter/repo"
	"wrapgen/internal/http/handlers"
	"wrapgen/internal/http/httpapi"
	"wrapgen/internal/infra"
	"wrapgen/internal/pipeline"
	"wrapgen/internal/printexport"
	"wrapgen/internal/providers/artgen"
	"wrapgen/internal/providers/vision"
	"wrapgen/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	orch, err := buildOrchestrator(cfg, pool, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	app := &handlers.App{
		Orchestrator: orch.orchestrator,
		Jobs:         orch.jobs,
		Store:        store,
		SQL:          infra.NewSQLRunner(pool, logger),
		Logger:       logger,
	}
	router := httpapi.NewRouter(app, cfg.AllowedOrigins, store.BasePath())
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

type wiring struct {
	orchestrator *pipeline.Orchestrator
	jobs         *repo.DesignJobRepositoryPG
}

func buildOrchestrator(cfg *infra.Config, pool *pgxpool.Pool, store *storage.FileStore, logger infra.Logger) (*wiring, error) {
	httpClient := &http.Client{Timeout: 60 * time.Second}

	var analyzer vision.Analyzer
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		client, err := vision.NewClient(vision.Options{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		analyzer = client
	} else {
		logger.Warn().Msg("gemini api key missing, brand analysis will use fallback prompts")
	}

	provider, err := artgen.NewClient(artgen.Options{
		APIKey:     cfg.ArtGenAPIKey,
		BaseURL:    cfg.ArtGenBaseURL,
		Model:      cfg.ArtGenModel,
		HTTPClient: httpClient,
		Logger:     &logger,
	})
	if err != nil {
		return nil, err
	}

	jobs := repo.NewDesignJobRepository(pool)
	health := repo.NewHealthLogRepository(pool)

	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorOptions{
		Jobs:           jobs,
		Health:         health,
		Analysis:       pipeline.NewAnalysisStage(analyzer, store, logger),
		Artwork:        pipeline.NewArtworkStage(provider, cfg.ArtworkFanOut, logger),
		Composite:      pipeline.NewCompositeStage(store, logger),
		Polish:         pipeline.NewPolishStage(provider, store, logger),
		Exporter:       printexport.NewExporter(store, logger),
		Provider:       provider,
		Logger:         logger,
		PolishFallback: cfg.PolishFallback,
	})
	return &wiring{orchestrator: orchestrator, jobs: jobs}, nil
}
