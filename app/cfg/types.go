package cfg

type Cfg struct {
	// Storage configuration
	DataDir  string
	FeedsDir string

	// Corpus import configuration
	CorpusEndpoint string
	CorpusName     string
	CorpusToken    string
	ChunkSize      int
	ChunkOverlap   int
	ImportThrottle int
	PollInterval   int
	PollAttempts   int

	// Embedding and vector index configuration
	EmbeddingHost  string
	EmbeddingModel string
	EmbeddingToken string
	VectorEndpoint string
	VectorIndexID  string
	VectorToken    string

	// Processing configuration
	MinTextLength int
	Interval      int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
