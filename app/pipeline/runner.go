package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"rag-ingestor/app/feed"
)

// ConfigSource yields the feed configurations a pass should cover.
type ConfigSource interface {
	GetEnabledConfigs() map[string]*feed.Config
}

// Runner drives ingestion passes over every enabled feed. Feeds run
// sequentially so corpus imports never compete with each other; a failed
// feed does not stop the remaining ones.
type Runner struct {
	configs  ConfigSource
	deps     Deps
	interval time.Duration
}

func NewRunner(configs ConfigSource, deps Deps, interval time.Duration) *Runner {
	return &Runner{
		configs:  configs,
		deps:     deps,
		interval: interval,
	}
}

// Run executes one pass, or a pass every interval when one is configured.
// In interval mode it only returns when the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return r.RunPass(ctx)
	}

	slog.Info("Running in interval mode", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.RunPass(ctx); err != nil {
			slog.Error("Ingestion pass finished with errors", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunPass runs every enabled feed once, in stable name order. Feed-level
// failures are collected and joined; the pass itself always runs to the end
// of the feed list.
func (r *Runner) RunPass(ctx context.Context) error {
	configs := r.configs.GetEnabledConfigs()

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	slog.Info("Starting ingestion pass", "feeds", len(names))

	var errs []error
	for _, name := range names {
		select {
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			return errors.Join(errs...)
		default:
		}

		task := NewIngestFeedTask(name, configs[name], r.deps)
		if err := task.Execute(ctx); err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", name, err))
			slog.Error("Feed ingestion failed", "feed", name, "error", err)
		}
	}

	slog.Info("Ingestion pass complete", "feeds", len(names), "failed", len(errs))

	return errors.Join(errs...)
}
