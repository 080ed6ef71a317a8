package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rag-ingestor/app/feed"
	"rag-ingestor/app/store"
)

// Deps bundles the collaborators a feed pass needs.
type Deps struct {
	Fetcher   Fetcher
	Parser    *feed.Parser
	Filterer  *feed.Filterer
	Extractor *feed.ContentExtractor
	Processed ProcessedStore
	Artifacts ArtifactSink
	Importer  Importer
	Waiter    ImportWaiter
	Embedder  Embedder
	Index     VectorIndex

	MinTextLength int
	Throttle      time.Duration
}

// IngestFeedTask runs one full ingestion pass for a single feed: fetch and
// parse the feed, compute the new-item delta against the processed set, and
// drive each new item through extraction, artifact persistence, corpus
// import, embedding and vector upsert. Item failures stay contained to the
// item; only feed-level failures (fetch, parse, processed-set load) abort the
// pass.
type IngestFeedTask struct {
	Task
	FeedConfig *feed.Config
	deps       Deps
}

func NewIngestFeedTask(feedName string, feedConfig *feed.Config, deps Deps) *IngestFeedTask {
	return &IngestFeedTask{
		Task:       NewTask(TaskTypeIngestFeed, feedName),
		FeedConfig: feedConfig,
		deps:       deps,
	}
}

func (t *IngestFeedTask) Execute(ctx context.Context) error {
	t.Start()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	timeout := time.Duration(t.FeedConfig.Settings.Timeout) * time.Second

	data, err := t.deps.Fetcher.Fetch(ctx, t.FeedConfig.URL, timeout)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	items, err := t.deps.Parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}
	slog.Info("Feed parsed", "feed", t.FeedName, "items", len(items))

	processedSet, err := t.deps.Processed.Load(ctx, t.FeedConfig.Folder)
	if err != nil {
		return fmt.Errorf("failed to load processed ids: %w", err)
	}
	slog.Info("Loaded processed ids", "feed", t.FeedName, "count", processedSet.Len())

	kept := t.deps.Filterer.Run(items, t.FeedConfig)
	newItems := t.newItems(kept, processedSet)
	slog.Info("Computed new-item delta", "feed", t.FeedName, "total", len(items), "kept", len(kept), "new", len(newItems))

	processedCount := 0
	skippedCount := 0
	errorCount := 0

	for _, item := range newItems {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		itemID, err := t.processItem(ctx, item, timeout)
		if err != nil {
			var validation *ValidationError
			if errors.As(err, &validation) {
				skippedCount++
				slog.Warn("Item abandoned", "feed", t.FeedName, "item_id", validation.ItemID, "reason", validation.Reason)
				continue
			}
			errorCount++
			slog.Error("Error processing item", "feed", t.FeedName, "item_id", itemID, "identity", item.Identity(), "error", err)
			continue
		}

		processedSet.Append(itemID)
		processedCount++
		slog.Info("Item processing complete", "feed", t.FeedName, "item_id", itemID)
	}

	if processedCount > 0 {
		if err := t.deps.Processed.Save(ctx, t.FeedConfig.Folder, processedSet); err != nil {
			// Already-ingested items are not rolled back: downstream writes
			// are idempotent, so reprocessing on the next run converges.
			slog.Error("Failed to save processed ids, next run may reprocess", "feed", t.FeedName, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(items),
		"new", len(newItems),
		"processed", processedCount,
		"skipped", skippedCount,
		"errors", errorCount)

	return nil
}

// newItems computes the set-difference between the feed's items and the
// processed set, by identity key. Items whose identity is already recorded
// never reappear, even if their remote content changed. Items with no
// identity at all cannot be tracked and are left out.
func (t *IngestFeedTask) newItems(items []feed.Item, processedSet *store.ProcessedSet) []feed.Item {
	var result []feed.Item
	for _, item := range items {
		identity := item.Identity()
		if identity == "" {
			continue
		}
		if processedSet.Contains(feed.NormalizeItemID(identity)) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// processItem drives one item through the full state machine. The first
// failed step ends the item; the returned error is classified by the caller.
func (t *IngestFeedTask) processItem(ctx context.Context, item feed.Item, timeout time.Duration) (string, error) {
	itemID := feed.NormalizeItemID(item.Identity())
	folder := t.FeedConfig.Folder

	slog.Info("Processing item", "feed", t.FeedName, "item_id", itemID, "title", truncate(item.Title, 100))

	if _, err := t.deps.Artifacts.Store(ctx, folder, itemID, store.KindRawSource, feed.ItemXML(item)); err != nil {
		return itemID, err
	}

	if item.Link == "" {
		return itemID, &ValidationError{ItemID: itemID, Reason: "item has no article link"}
	}

	html, err := t.deps.Fetcher.FetchHTML(ctx, item.Link, timeout)
	if err != nil {
		return itemID, fmt.Errorf("failed to fetch article: %w", err)
	}

	if _, err := t.deps.Artifacts.Store(ctx, folder, itemID, store.KindRawRendered, html); err != nil {
		return itemID, err
	}

	meta := feed.Metadata{
		Title:       item.Title,
		Link:        item.Link,
		PublishedAt: item.PublishedAt,
		Feed:        t.FeedName,
		ItemID:      itemID,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}

	text, err := t.deps.Extractor.Run(html, meta)
	if err != nil {
		return itemID, fmt.Errorf("failed to extract content: %w", err)
	}

	if minLength := t.minTextLength(); len(strings.TrimSpace(text)) < minLength {
		return itemID, &ValidationError{ItemID: itemID, Reason: fmt.Sprintf("extracted text below minimum length (%d < %d)", len(strings.TrimSpace(text)), minLength)}
	}

	textKey, err := t.deps.Artifacts.Store(ctx, folder, itemID, store.KindExtractedText, []byte(text))
	if err != nil {
		return itemID, err
	}

	op, err := t.deps.Importer.Import(ctx, textKey)
	if err != nil {
		return itemID, fmt.Errorf("failed to submit corpus import: %w", err)
	}

	result, err := t.deps.Waiter.Wait(ctx, op)
	if err != nil {
		return itemID, err
	}
	slog.Info("Corpus import complete", "feed", t.FeedName, "item_id", itemID, "imported", result.ImportedCount, "skipped", result.SkippedCount)

	// A short pause between imports reduces contention on the shared corpus,
	// which rejects submissions while another operation is running.
	if t.deps.Throttle > 0 {
		select {
		case <-time.After(t.deps.Throttle):
		case <-ctx.Done():
			return itemID, ctx.Err()
		}
	}

	vector, err := t.deps.Embedder.EmbedText(ctx, text)
	if err != nil {
		return itemID, fmt.Errorf("failed to embed text: %w", err)
	}

	if err := t.deps.Index.Upsert(ctx, itemID, vector, meta); err != nil {
		return itemID, fmt.Errorf("failed to upsert vector: %w", err)
	}

	return itemID, nil
}

func (t *IngestFeedTask) minTextLength() int {
	if t.FeedConfig.Settings.MinTextLength > 0 {
		return t.FeedConfig.Settings.MinTextLength
	}
	return t.deps.MinTextLength
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
