// Command enqueue queues a design brief for the background worker without
// going through the HTTP API. Useful for smoke tests and backfills.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/sqlinline"
)

func main() {
	var (
		fileFlag  string
		brandFlag string
	)
	flag.StringVar(&fileFlag, "file", "", "path to a brand brief JSON file")
	flag.StringVar(&brandFlag, "brand", "", "brand name (used when no file is given)")
	flag.Parse()

	inputs, err := loadInputs(fileFlag, brandFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "enqueue: %v\n", err)
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "enqueue: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "enqueue: connect database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	payload, err := json.Marshal(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "enqueue: encode brief: %v\n", err)
		os.Exit(1)
	}

	runner := infra.NewSQLRunner(pool, logger)
	var queueID string
	if err := runner.QueryRow(ctx, sqlinline.QEnqueueDesignJob, payload).Scan(&queueID); err != nil {
		fmt.Fprintf(os.Stderr, "enqueue: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("queued %s for %s\n", queueID, inputs.BrandName)
}

func loadInputs(file, brand string) (domain.BrandInputs, error) {
	var inputs domain.BrandInputs
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return inputs, fmt.Errorf("read brief: %w", err)
		}
		if err := json.Unmarshal(data, &inputs); err != nil {
			return inputs, fmt.Errorf("decode brief: %w", err)
		}
	} else {
		inputs.BrandName = brand
	}
	if strings.TrimSpace(inputs.BrandName) == "" {
		return inputs, fmt.Errorf("brand name is required (use -file or -brand)")
	}
	return inputs, nil
}
