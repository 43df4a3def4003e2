package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wrapgen/internal/adapter/repo"
	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/pipeline"
	"wrapgen/internal/printexport"
	"wrapgen/internal/providers/artgen"
	"wrapgen/internal/providers/vision"
	"wrapgen/internal/sqlinline"
	"wrapgen/internal/storage"
)

const (
	queuePollInterval = 2 * time.Second
	requeueInterval   = 5 * time.Minute

	queueStatusDone   = "DONE"
	queueStatusFailed = "FAILED"
)

var errNoJobAvailable = errors.New("no job available")

type queueItem struct {
	ID     string
	Inputs json.RawMessage
}

type designWorker struct {
	ctx          context.Context
	runner       *infra.SQLRunner
	orchestrator *pipeline.Orchestrator
	logger       infra.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

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
			logger.Fatal().Err(err).Msg("worker: failed to configure vision client")
		}
		analyzer = client
	} else {
		logger.Warn().Msg("worker: gemini api key missing, brand analysis will use fallback prompts")
	}

	provider, err := artgen.NewClient(artgen.Options{
		APIKey:     cfg.ArtGenAPIKey,
		BaseURL:    cfg.ArtGenBaseURL,
		Model:      cfg.ArtGenModel,
		HTTPClient: httpClient,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure generation client")
	}

	jobs := repo.NewDesignJobRepository(pool)
	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorOptions{
		Jobs:           jobs,
		Health:         repo.NewHealthLogRepository(pool),
		Analysis:       pipeline.NewAnalysisStage(analyzer, store, logger),
		Artwork:        pipeline.NewArtworkStage(provider, cfg.ArtworkFanOut, logger),
		Composite:      pipeline.NewCompositeStage(store, logger),
		Polish:         pipeline.NewPolishStage(provider, store, logger),
		Exporter:       printexport.NewExporter(store, logger),
		Provider:       provider,
		Logger:         logger,
		PolishFallback: cfg.PolishFallback,
	})

	worker := &designWorker{
		ctx:          ctx,
		runner:       infra.NewSQLRunner(pool, logger),
		orchestrator: orchestrator,
		logger:       logger,
	}
	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *designWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	lastRequeue := time.Now()
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		if time.Since(lastRequeue) > requeueInterval {
			if _, err := w.runner.Exec(w.ctx, sqlinline.QRequeueStaleItems); err != nil {
				w.logger.Error().Err(err).Msg("worker: requeue stale items failed")
			}
			lastRequeue = time.Now()
		}

		item, err := w.claim()
		if err != nil {
			if !errors.Is(err, errNoJobAvailable) {
				w.logger.Error().Err(err).Msg("worker: failed to claim queue item")
			}
			select {
			case <-w.ctx.Done():
				return w.ctx.Err()
			case <-time.After(queuePollInterval):
			}
			continue
		}

		w.handle(item)
	}
}

func (w *designWorker) claim() (queueItem, error) {
	row := w.runner.QueryRow(w.ctx, sqlinline.QClaimDesignJob)
	var item queueItem
	if err := row.Scan(&item.ID, &item.Inputs); err != nil {
		if infra.IsNoRows(err) {
			return queueItem{}, errNoJobAvailable
		}
		return queueItem{}, err
	}
	item.Inputs = append(json.RawMessage(nil), item.Inputs...)
	return item, nil
}

func (w *designWorker) handle(item queueItem) {
	w.logger.Info().Str("queue_id", item.ID).Msg("worker: picked design brief")

	var inputs domain.BrandInputs
	if err := json.Unmarshal(item.Inputs, &inputs); err != nil {
		w.logger.Error().Err(err).Str("queue_id", item.ID).Msg("worker: undecodable brief")
		w.finish(item.ID, queueStatusFailed, "")
		return
	}

	result, err := w.orchestrator.Run(w.ctx, inputs)
	if err != nil {
		w.logger.Error().Err(err).Str("queue_id", item.ID).Msg("worker: pipeline run failed")
		w.finish(item.ID, queueStatusFailed, "")
		return
	}

	status := queueStatusDone
	if result.Status == domain.JobStatusFailed {
		status = queueStatusFailed
	}
	w.finish(item.ID, status, result.JobID)
	w.logger.Info().
		Str("queue_id", item.ID).
		Str("job_id", result.JobID).
		Str("status", string(result.Status)).
		Msg("worker: design brief finished")
}

func (w *designWorker) finish(queueID, status, jobID string) {
	var job any
	if jobID != "" {
		job = jobID
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QFinishQueueItem, queueID, status, job); err != nil {
		w.logger.Error().Err(err).Str("queue_id", queueID).Msg("worker: finish queue item failed")
	}
}
