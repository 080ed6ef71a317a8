package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DataDir  string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for the durable item store"`
	FeedsDir string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`

	// Corpus import configuration
	CorpusEndpoint string `long:"corpus-endpoint" env:"CORPUS_ENDPOINT" description:"Base URL of the corpus import service (required)" required:"true"`
	CorpusName     string `long:"corpus-name" env:"CORPUS_NAME" description:"Corpus resource name, e.g. corpora/tech-blog (required)" required:"true"`
	CorpusToken    string `long:"corpus-token" env:"CORPUS_TOKEN" description:"Bearer token for the corpus import service"`
	ChunkSize      int    `long:"chunk-size" env:"CHUNK_SIZE" default:"768" description:"Import chunk size in words"`
	ChunkOverlap   int    `long:"chunk-overlap" env:"CHUNK_OVERLAP" default:"128" description:"Import chunk overlap in words"`
	ImportThrottle int    `long:"import-throttle" env:"IMPORT_THROTTLE" default:"2" description:"Pause in seconds after each successful corpus import"`
	PollInterval   int    `long:"poll-interval" env:"POLL_INTERVAL" default:"5" description:"Seconds between import operation status checks"`
	PollAttempts   int    `long:"poll-attempts" env:"POLL_ATTEMPTS" default:"120" description:"Maximum import operation status checks before giving up"`

	// Embedding and vector index configuration
	EmbeddingHost  string `long:"embedding-host" env:"EMBEDDING_HOST" default:"http://localhost:8081/v1" description:"Base URL of the OpenAI-compatible embedding service"`
	EmbeddingModel string `long:"embedding-model" env:"EMBEDDING_MODEL" default:"text-multilingual-embedding-002" description:"Embedding model name"`
	EmbeddingToken string `long:"embedding-token" env:"EMBEDDING_TOKEN" default:"none" description:"Token for the embedding service"`
	VectorEndpoint string `long:"vector-endpoint" env:"VECTOR_ENDPOINT" description:"Base URL of the vector index service (required)" required:"true"`
	VectorIndexID  string `long:"vector-index-id" env:"VECTOR_INDEX_ID" description:"Vector index identifier (required)" required:"true"`
	VectorToken    string `long:"vector-token" env:"VECTOR_TOKEN" description:"Bearer token for the vector index service"`

	// Processing configuration
	MinTextLength int `long:"min-text-length" env:"MIN_TEXT_LENGTH" default:"300" description:"Minimum extracted text length for ingestion"`
	Interval      int `long:"interval" env:"INTERVAL" default:"0" description:"Re-run interval in seconds (0 runs a single pass and exits)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RAG Ingestor/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DataDir:        raw.DataDir,
		FeedsDir:       raw.FeedsDir,
		CorpusEndpoint: raw.CorpusEndpoint,
		CorpusName:     raw.CorpusName,
		CorpusToken:    raw.CorpusToken,
		ChunkSize:      raw.ChunkSize,
		ChunkOverlap:   raw.ChunkOverlap,
		ImportThrottle: raw.ImportThrottle,
		PollInterval:   raw.PollInterval,
		PollAttempts:   raw.PollAttempts,
		EmbeddingHost:  raw.EmbeddingHost,
		EmbeddingModel: raw.EmbeddingModel,
		EmbeddingToken: raw.EmbeddingToken,
		VectorEndpoint: raw.VectorEndpoint,
		VectorIndexID:  raw.VectorIndexID,
		VectorToken:    raw.VectorToken,
		MinTextLength:  raw.MinTextLength,
		Interval:       raw.Interval,
		UserAgent:      raw.UserAgent,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
