package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	excessSpaces   = regexp.MustCompile(` {2,}`)
)

// ContentExtractor turns raw article markup into readable plain text with a
// metadata header. Extraction is deterministic for identical input.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Run extracts the readable article text from data and prepends a metadata
// header so the publication date and source survive chunking downstream.
func (e *ContentExtractor) Run(data []byte, meta Metadata) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	pageURL, _ := url.Parse(meta.Link)

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = excessSpaces.ReplaceAllString(text, " ")

	if header := metadataHeader(meta); header != "" {
		text = header + text
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(text))

	return text, nil
}

func metadataHeader(meta Metadata) string {
	var parts []string
	if meta.PublishedAt != "" {
		parts = append(parts, "Publication Date: "+meta.PublishedAt)
	}
	if meta.Title != "" {
		parts = append(parts, "Title: "+meta.Title)
	}
	if meta.Feed != "" {
		parts = append(parts, "Source: "+meta.Feed)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n") + "\n\n---\n\n"
}
