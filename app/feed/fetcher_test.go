package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rag-ingestor/app/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, MaxAttempts: 3}
}

func TestFetcherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Expected user agent 'test-agent', got: %s", r.Header.Get("User-Agent"))
		}
		w.Write([]byte("<rss></rss>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test-agent", testPolicy())
	data, err := fetcher.Fetch(context.Background(), server.URL, 5*time.Second)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != "<rss></rss>" {
		t.Errorf("Expected body '<rss></rss>', got: %s", data)
	}
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test-agent", testPolicy())
	data, err := fetcher.Fetch(context.Background(), server.URL, 5*time.Second)

	if err != nil {
		t.Fatalf("Expected success after retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
	if string(data) != "ok" {
		t.Errorf("Expected body 'ok', got: %s", data)
	}
}

func TestFetcherExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test-agent", testPolicy())
	_, err := fetcher.Fetch(context.Background(), server.URL, 5*time.Second)

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}

	var transport *retry.TransportError
	if !errors.As(err, &transport) {
		t.Errorf("Expected transport error, got: %v", err)
	}
	if transport.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got: %d", transport.StatusCode)
	}
}

func TestFetchHTMLRejectsNonHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "test-agent", testPolicy())
	_, err := fetcher.FetchHTML(context.Background(), server.URL, 5*time.Second)

	if err == nil {
		t.Error("Expected error for non-HTML content type")
	}
	if retry.IsRetryable(err) {
		t.Error("Expected content-type mismatch to be permanent, not retryable")
	}
}
