package config

// DefaultExcludes are glob patterns excluded from batch ingestion by default.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"*.tmp",
	"*.partial",
	".DS_Store",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: ".finsift",
		BaseURL: "http://localhost:8080",

		VisionModel:     "gpt-4o",
		ClassifierModel: "gpt-4o-mini",
		ExtractionModel: "gpt-4o",
		EmbeddingModel:  "text-embedding-3-small",
		SummaryModel:    "gpt-4o-mini",

		Chunking: ChunkingConfig{
			MaxChunkSize: 1000,
			Overlap:      200,
			BatchSize:    100,
		},
		Search: SearchConfig{
			ScoreThreshold: 0.3,
			TopK:           20,
			Summarize:      false,
		},
		Queue: QueueConfig{
			UploadTimeoutSec:  30,
			ExtractTimeoutSec: 60,
		},
		Server: ServerConfig{
			Port:         8080,
			AllowAllCORS: false,
		},
		Ingest: IngestConfig{
			Include:     []string{"**"},
			Exclude:     DefaultExcludes,
			MaxFileSize: 20 << 20,
		},
	}
}
