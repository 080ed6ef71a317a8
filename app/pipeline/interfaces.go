package pipeline

import (
	"context"
	"time"

	"rag-ingestor/app/corpus"
	"rag-ingestor/app/feed"
	"rag-ingestor/app/store"
)

// Collaborator contracts the pipeline consumes. Declared here so feed passes
// can be exercised against fakes without any of the real backends.

type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
	FetchHTML(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

type Importer interface {
	Import(ctx context.Context, sourceURI string) (*corpus.Operation, error)
}

type ImportWaiter interface {
	Wait(ctx context.Context, op *corpus.Operation) (*corpus.ImportResult, error)
}

type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, meta feed.Metadata) error
}

type ProcessedStore interface {
	Load(ctx context.Context, folder string) (*store.ProcessedSet, error)
	Save(ctx context.Context, folder string, set *store.ProcessedSet) error
}

type ArtifactSink interface {
	Store(ctx context.Context, folder, itemID string, kind store.Kind, data []byte) (string, error)
}
