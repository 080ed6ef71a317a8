package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"rag-ingestor/app/retry"
)

// Operation is the handle for an asynchronous corpus import. The service
// exposes no push notification; completion is observed only by polling.
type Operation struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Error    *OperationError `json:"error,omitempty"`
	Response *ImportResult   `json:"response,omitempty"`
}

type OperationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ImportResult struct {
	ImportedCount int `json:"importedDocumentsCount"`
	SkippedCount  int `json:"skippedDocumentsCount"`
}

type importRequest struct {
	Source   importSource   `json:"source"`
	Chunking chunkingConfig `json:"chunking"`
}

type importSource struct {
	URIs []string `json:"uris"`
}

type chunkingConfig struct {
	ChunkSizeWords    int `json:"chunkSizeWords"`
	ChunkOverlapWords int `json:"chunkOverlapWords"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// IsConcurrentOperation reports whether an import rejection means another
// operation is already running on the corpus. The service exposes no
// structured code for this, so the check matches its error message; kept as a
// named predicate so it can be swapped if that ever changes.
func IsConcurrentOperation(statusCode int, body []byte) bool {
	if statusCode != http.StatusBadRequest {
		return false
	}
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(resp.Error.Message), "other operations running")
}

type ClientConfig struct {
	BaseURL      string
	Corpus       string
	Token        string
	UserAgent    string
	ChunkSize    int
	ChunkOverlap int
}

// Client submits corpus imports and reads back operation status.
type Client struct {
	httpClient    *http.Client
	config        ClientConfig
	importPolicy  retry.Policy
	requestPolicy retry.Policy
}

func NewClient(httpClient *http.Client, config ClientConfig, importPolicy, requestPolicy retry.Policy) *Client {
	return &Client{
		httpClient:    httpClient,
		config:        config,
		importPolicy:  importPolicy,
		requestPolicy: requestPolicy,
	}
}

// Import submits a bulk import of the stored artifact at sourceURI and
// returns the resulting operation handle. Concurrent-operation rejections are
// retried with the import policy's extended backoff.
func (c *Client) Import(ctx context.Context, sourceURI string) (*Operation, error) {
	body, err := json.Marshal(importRequest{
		Source: importSource{URIs: []string{sourceURI}},
		Chunking: chunkingConfig{
			ChunkSizeWords:    c.config.ChunkSize,
			ChunkOverlapWords: c.config.ChunkOverlap,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode import request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/documents:import", c.config.BaseURL, c.config.Corpus)

	var op *Operation
	err = c.importPolicy.Do(ctx, "corpus_import", func() error {
		var err error
		op, err = c.submitImport(ctx, url, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Import operation started", "operation", op.Name, "source", sourceURI)
	return op, nil
}

func (c *Client) submitImport(ctx context.Context, url string, body []byte) (*Operation, error) {
	status, respBody, err := c.do(ctx, "POST", url, body)
	if err != nil {
		return nil, err
	}

	if IsConcurrentOperation(status, respBody) {
		var resp errorResponse
		_ = json.Unmarshal(respBody, &resp)
		return nil, &ConcurrentOperationError{Message: resp.Error.Message}
	}

	if status < 200 || status >= 300 {
		if status >= 500 {
			return nil, &retry.TransportError{Op: "corpus_import", URL: url, StatusCode: status}
		}
		return nil, fmt.Errorf("import rejected: %d - %s", status, respBody)
	}

	var op Operation
	if err := json.Unmarshal(respBody, &op); err != nil {
		return nil, fmt.Errorf("failed to decode import response: %w", err)
	}
	if op.Name == "" {
		return nil, fmt.Errorf("no operation name in import response: %s", respBody)
	}

	return &op, nil
}

// GetOperation reads the current state of an import operation.
func (c *Client) GetOperation(ctx context.Context, name string) (*Operation, error) {
	url := c.config.BaseURL + "/" + name

	var op Operation
	err := c.requestPolicy.Do(ctx, "operation_status", func() error {
		status, respBody, err := c.do(ctx, "GET", url, nil)
		if err != nil {
			return err
		}
		if status < 200 || status >= 300 {
			if status >= 500 {
				return &retry.TransportError{Op: "operation_status", URL: url, StatusCode: status}
			}
			return fmt.Errorf("failed to poll operation: %d - %s", status, respBody)
		}
		return json.Unmarshal(respBody, &op)
	})
	if err != nil {
		return nil, err
	}

	return &op, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &retry.TransportError{Op: "corpus", URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &retry.TransportError{Op: "corpus", URL: url, Err: err}
	}

	return resp.StatusCode, respBody, nil
}
