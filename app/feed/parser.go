package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed data and returns normalized items.
func (p *Parser) Run(data []byte) ([]Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, p.normalizeItem(entry))
	}

	slog.Debug("Feed parsed", "title", parsed.Title, "items", len(items))
	return items, nil
}

func (p *Parser) normalizeItem(entry *gofeed.Item) Item {
	return Item{
		Title:       strings.TrimSpace(entry.Title),
		Link:        strings.TrimSpace(entry.Link),
		GUID:        strings.TrimSpace(coalesce(entry.GUID, entry.Link)),
		PublishedAt: strings.TrimSpace(coalesce(entry.Published, entry.Updated)),
		Description: strings.TrimSpace(entry.Description),
	}
}

// coalesce returns the first non-empty string from the provided values
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
