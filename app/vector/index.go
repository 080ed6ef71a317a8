package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"rag-ingestor/app/feed"
	"rag-ingestor/app/retry"
)

type upsertRequest struct {
	Datapoints []datapoint `json:"datapoints"`
}

type datapoint struct {
	ID       string        `json:"id"`
	Vector   []float32     `json:"vector"`
	Metadata feed.Metadata `json:"metadata"`
}

// Index upserts embedding vectors into a similarity-search index over its
// streaming update endpoint.
type Index struct {
	httpClient *http.Client
	baseURL    string
	indexID    string
	token      string
	userAgent  string
	policy     retry.Policy
}

func NewIndex(httpClient *http.Client, baseURL, indexID, token, userAgent string, policy retry.Policy) *Index {
	return &Index{
		httpClient: httpClient,
		baseURL:    baseURL,
		indexID:    indexID,
		token:      token,
		userAgent:  userAgent,
		policy:     policy,
	}
}

// Upsert inserts or replaces the vector record for id. Repeating an upsert
// for the same id is harmless, which is what lets reprocessing after a
// partial failure converge.
func (i *Index) Upsert(ctx context.Context, id string, vector []float32, meta feed.Metadata) error {
	body, err := json.Marshal(upsertRequest{
		Datapoints: []datapoint{{ID: id, Vector: vector, Metadata: meta}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode upsert request: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s:upsertDatapoints", i.baseURL, i.indexID)

	err = i.policy.Do(ctx, "vector_upsert", func() error {
		return i.post(ctx, url, body)
	})
	if err != nil {
		return err
	}

	slog.Debug("Vector upserted", "id", id, "dimensions", len(vector))
	return nil
}

func (i *Index) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", i.userAgent)
	req.Header.Set("Content-Type", "application/json")
	if i.token != "" {
		req.Header.Set("Authorization", "Bearer "+i.token)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return &retry.TransportError{Op: "vector_upsert", URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			return &retry.TransportError{Op: "vector_upsert", URL: url, StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("upsert rejected: %d - %s", resp.StatusCode, respBody)
	}

	return nil
}
