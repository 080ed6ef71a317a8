package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rag-ingestor/app/cfg"
	"rag-ingestor/app/corpus"
	"rag-ingestor/app/feed"
	"rag-ingestor/app/pipeline"
	"rag-ingestor/app/retry"
	"rag-ingestor/app/store"
	"rag-ingestor/app/vector"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return 0
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting RAG ingestor", "version", appCfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "error", err)
		return 1
	}
	slog.Info("Feed configurations loaded", "count", configCache.GetConfigCount())

	kv, err := store.OpenBadger(filepath.Join(appCfg.DataDir, "store"), false)
	if err != nil {
		slog.Error("Failed to open item store", "error", err)
		return 1
	}
	defer kv.Close()

	httpClient := &http.Client{}

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, retry.DefaultPolicy())

	corpusClient := corpus.NewClient(httpClient, corpus.ClientConfig{
		BaseURL:      appCfg.CorpusEndpoint,
		Corpus:       appCfg.CorpusName,
		Token:        appCfg.CorpusToken,
		UserAgent:    appCfg.UserAgent,
		ChunkSize:    appCfg.ChunkSize,
		ChunkOverlap: appCfg.ChunkOverlap,
	}, retry.ImportPolicy(), retry.DefaultPolicy())

	poller := corpus.NewPoller(corpusClient,
		time.Duration(appCfg.PollInterval)*time.Second, appCfg.PollAttempts)

	embedder, err := vector.NewEmbedder(appCfg.EmbeddingHost, appCfg.EmbeddingToken,
		appCfg.EmbeddingModel, retry.DefaultPolicy())
	if err != nil {
		slog.Error("Failed to initialize embedder", "error", err)
		return 1
	}

	index := vector.NewIndex(httpClient, appCfg.VectorEndpoint, appCfg.VectorIndexID,
		appCfg.VectorToken, appCfg.UserAgent, retry.DefaultPolicy())

	deps := pipeline.Deps{
		Fetcher:       fetcher,
		Parser:        feed.NewParser(),
		Filterer:      feed.NewFilterer(),
		Extractor:     feed.NewContentExtractor(),
		Processed:     store.NewProcessedStore(kv, retry.DefaultPolicy()),
		Artifacts:     store.NewArtifactSink(kv, retry.DefaultPolicy()),
		Importer:      corpusClient,
		Waiter:        poller,
		Embedder:      embedder,
		Index:         index,
		MinTextLength: appCfg.MinTextLength,
		Throttle:      time.Duration(appCfg.ImportThrottle) * time.Second,
	}

	runner := pipeline.NewRunner(configCache, deps, time.Duration(appCfg.Interval)*time.Second)

	if err := runner.Run(ctx); err != nil {
		if ctx.Err() != nil {
			slog.Info("Shutting down", "reason", ctx.Err())
			return 0
		}
		slog.Error("Ingestion finished with errors", "error", err)
		return 1
	}

	slog.Info("Ingestion complete")
	return 0
}
