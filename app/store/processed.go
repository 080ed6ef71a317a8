package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"rag-ingestor/app/retry"
)

const processedFileName = "processed_ids.json"

// ProcessedSet is the per-feed record of item ids already fully ingested.
// It only ever grows: an id is appended after the item has completed every
// downstream step, and the set is persisted once at the end of a feed's pass.
type ProcessedSet struct {
	ids   []string
	index map[string]struct{}
}

func NewProcessedSet(ids []string) *ProcessedSet {
	set := &ProcessedSet{
		ids:   make([]string, 0, len(ids)),
		index: make(map[string]struct{}, len(ids)),
	}
	for _, id := range ids {
		set.Append(id)
	}
	return set
}

func (s *ProcessedSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *ProcessedSet) Append(id string) {
	if s.Contains(id) {
		return
	}
	s.ids = append(s.ids, id)
	s.index[id] = struct{}{}
}

func (s *ProcessedSet) IDs() []string {
	return s.ids
}

func (s *ProcessedSet) Len() int {
	return len(s.ids)
}

type processedRecord struct {
	IDs []string `json:"ids"`
}

// ProcessedStore loads and saves per-feed ProcessedSets from the durable
// store. Load-modify-save with no merge semantics: exactly one pass is
// expected to own a feed at a time.
type ProcessedStore struct {
	store  Store
	policy retry.Policy
}

func NewProcessedStore(store Store, policy retry.Policy) *ProcessedStore {
	return &ProcessedStore{store: store, policy: policy}
}

// Load returns the feed's processed set, or an empty set when no record
// exists yet.
func (p *ProcessedStore) Load(ctx context.Context, folder string) (*ProcessedSet, error) {
	key := processedKey(folder)

	var data []byte
	err := p.policy.Do(ctx, "load_processed", func() error {
		var err error
		data, err = p.store.Get(key)
		if errors.Is(err, ErrNotFound) {
			data = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load processed ids: %w", err)
	}

	if data == nil {
		slog.Debug("No processed ids record, starting empty", "key", key)
		return NewProcessedSet(nil), nil
	}

	var record processedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode processed ids at %s: %w", key, err)
	}

	return NewProcessedSet(record.IDs), nil
}

// Save overwrites the feed's processed set record.
func (p *ProcessedStore) Save(ctx context.Context, folder string, set *ProcessedSet) error {
	data, err := json.MarshalIndent(processedRecord{IDs: set.IDs()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode processed ids: %w", err)
	}

	key := processedKey(folder)
	err = p.policy.Do(ctx, "save_processed", func() error {
		return p.store.Put(key, data, "application/json")
	})
	if err != nil {
		return fmt.Errorf("failed to save processed ids: %w", err)
	}

	return nil
}

func processedKey(folder string) string {
	return folder + "/" + processedFileName
}
