package feed

// Feed processing types

// Item is one feed entry as parsed from the source, before any ingestion.
// PublishedAt is the feed-supplied string, kept raw: feeds disagree on date
// formats and the value is only carried along as metadata.
type Item struct {
	Title       string
	Link        string
	GUID        string
	PublishedAt string
	Description string
}

// Identity returns the deduplication key for the item: GUID, falling back to
// the link when the feed supplies none.
func (i Item) Identity() string {
	if i.GUID != "" {
		return i.GUID
	}
	return i.Link
}

// Metadata is the per-item envelope attached to the extracted text and to the
// vector record.
type Metadata struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	PublishedAt string `json:"pubDate"`
	Feed        string `json:"feed"`
	ItemID      string `json:"item_id"`
	ProcessedAt string `json:"processed_at"`
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Folder   string         `yaml:"folder"` // Storage namespace, defaults to the feed name
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled       bool `yaml:"enabled"`
	Timeout       int  `yaml:"timeout"`         // seconds
	MinTextLength int  `yaml:"min_text_length"` // overrides the global minimum when set
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
