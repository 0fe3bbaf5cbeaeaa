// Command ingest is the one-shot batch job that replaces a college's
// survey collection with freshly embedded documents from a CSV export.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeecollege/collegerag/internal/config"
	dbRedis "github.com/jeecollege/collegerag/internal/db/redis"
	logpkg "github.com/jeecollege/collegerag/internal/logger"
	"github.com/jeecollege/collegerag/internal/metrics"
	collectionrepo "github.com/jeecollege/collegerag/internal/repository/collection"
	documentrepo "github.com/jeecollege/collegerag/internal/repository/document"
	openaiTransport "github.com/jeecollege/collegerag/internal/transport/openai"
	"github.com/jeecollege/collegerag/internal/usecase/ingest"
	"github.com/jeecollege/collegerag/internal/version"
)

func main() {
	var (
		csvPath   = flag.String("csv", "", "path to the survey CSV export (required)")
		college   = flag.String("college", "", "college slug from the configured registry (required)")
		ignore    = flag.String("ignore", "Timestamp,Email address", "comma-separated columns to skip")
		env       = flag.String("env", config.GetEnv(), "config environment (local, dev, prod)")
		batchSize = flag.Int("batch", 64, "embedding batch size")
	)
	flag.Parse()

	if *csvPath == "" || *college == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logpkg.New(*env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if _, ok := cfg.Colleges[*college]; !ok {
		logger.Fatal("Unknown college slug; add it to the colleges registry first",
			zap.String("college", *college))
	}

	logger.Info("Starting survey ingestion",
		zap.String("version", version.Version),
		zap.String("college", *college),
		zap.String("csv", *csvPath),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("vector_dim", cfg.Embedding.Dimensions),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterEmbeddingMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	svc := ingest.New(
		collectionrepo.New(store, cfg.Storage.KeyPrefix),
		documentrepo.New(store, cfg.Storage.KeyPrefix),
		embedder,
		cfg.Embedding.Model,
		cfg.Embedding.Dimensions,
		logger,
	).WithBatchSize(*batchSize)

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatal("Failed to open CSV", zap.String("path", *csvPath), zap.Error(err))
	}
	defer f.Close()

	start := time.Now()
	report, err := svc.Ingest(ctx, ingest.Source{
		Reader:        f,
		CollegeSlug:   *college,
		IgnoreColumns: splitIgnore(*ignore),
	})
	if err != nil {
		logger.Fatal("Ingestion failed", zap.String("college", *college), zap.Error(err))
	}

	logger.Info("Ingestion complete",
		zap.String("college", *college),
		zap.Int("documents", report.Documents),
		zap.Int("rows", report.Rows),
		zap.Int("columns", report.Columns),
		zap.Duration("took", time.Since(start)),
	)
}

func splitIgnore(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
