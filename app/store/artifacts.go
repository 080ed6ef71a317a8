package store

import (
	"context"
	"fmt"
	"log/slog"

	"rag-ingestor/app/retry"
)

// Kind names a per-item artifact class. Each kind maps to its own namespace
// under the feed's folder, so repeated writes for the same item overwrite in
// place and stay idempotent.
type Kind string

const (
	KindRawSource     Kind = "raw-source"     // the feed entry as received
	KindRawRendered   Kind = "raw-rendered"   // the fetched article page
	KindExtractedText Kind = "extracted-text" // readable text after extraction
)

func (k Kind) subdir() string {
	switch k {
	case KindRawSource:
		return "raw_xml"
	case KindRawRendered:
		return "raw_html"
	case KindExtractedText:
		return "clean"
	default:
		return "misc"
	}
}

func (k Kind) extension() string {
	switch k {
	case KindRawSource:
		return ".xml"
	case KindRawRendered:
		return ".html"
	case KindExtractedText:
		return ".txt"
	default:
		return ""
	}
}

// ContentType returns the MIME type inferred for the kind.
func (k Kind) ContentType() string {
	switch k {
	case KindRawSource:
		return "application/xml"
	case KindRawRendered:
		return "text/html"
	case KindExtractedText:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// ArtifactSink persists per-item artifacts to the durable store. Writes are
// full overwrites keyed by (folder, itemID, kind).
type ArtifactSink struct {
	store  Store
	policy retry.Policy
}

func NewArtifactSink(store Store, policy retry.Policy) *ArtifactSink {
	return &ArtifactSink{store: store, policy: policy}
}

// Store writes one artifact and returns its key, which doubles as the source
// reference handed to the corpus import service.
func (a *ArtifactSink) Store(ctx context.Context, folder, itemID string, kind Kind, data []byte) (string, error) {
	key := ArtifactKey(folder, itemID, kind)

	err := a.policy.Do(ctx, "store_artifact", func() error {
		return a.store.Put(key, data, kind.ContentType())
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %s artifact: %w", kind, err)
	}

	slog.Debug("Artifact stored", "key", key, "kind", string(kind), "bytes", len(data))
	return key, nil
}

// ArtifactKey builds the store key for an item artifact.
func ArtifactKey(folder, itemID string, kind Kind) string {
	return fmt.Sprintf("%s/%s/%s%s", folder, kind.subdir(), itemID, kind.extension())
}
