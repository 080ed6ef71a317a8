package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"rag-ingestor/app/retry"
)

// Embedder generates vector embeddings through an OpenAI-compatible
// embedding API.
type Embedder struct {
	embedder embeddings.Embedder
	policy   retry.Policy
}

// NewEmbedder creates an embedder against the given host and model. The
// token may be "none" for local services that skip authentication.
func NewEmbedder(host, token, model string, policy retry.Policy) (*Embedder, error) {
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &Embedder{
		embedder: embedder,
		policy:   policy,
	}, nil
}

// EmbedText generates the embedding vector for one text.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var vector []float32

	err := e.policy.Do(ctx, "embed", func() error {
		vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
		if err != nil {
			// The client folds network and HTTP failures into one error;
			// classify them all as transport so they retry.
			return &retry.TransportError{Op: "embed", URL: "embedding service", Err: err}
		}
		if len(vectors) == 0 {
			return fmt.Errorf("no embeddings returned from model")
		}
		vector = vectors[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Embedding generated", "dimensions", len(vector), "text_length", len(text))
	return vector, nil
}
