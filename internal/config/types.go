package config

// Config is the top-level finsift configuration, corresponding to .finsift.yml.
type Config struct {
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
	BaseURL string `yaml:"base_url" koanf:"base_url"`

	VisionModel     string `yaml:"vision_model" koanf:"vision_model"`
	ClassifierModel string `yaml:"classifier_model" koanf:"classifier_model"`
	ExtractionModel string `yaml:"extraction_model" koanf:"extraction_model"`
	EmbeddingModel  string `yaml:"embedding_model" koanf:"embedding_model"`
	SummaryModel    string `yaml:"summary_model" koanf:"summary_model"`

	Chunking ChunkingConfig `yaml:"chunking" koanf:"chunking"`
	Search   SearchConfig   `yaml:"search" koanf:"search"`
	Queue    QueueConfig    `yaml:"queue" koanf:"queue"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Ingest   IngestConfig   `yaml:"ingest" koanf:"ingest"`
}

// ChunkingConfig controls how extracted text is split before embedding.
type ChunkingConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size" koanf:"max_chunk_size"`
	Overlap      int `yaml:"overlap" koanf:"overlap"`
	BatchSize    int `yaml:"batch_size" koanf:"batch_size"`
}

// SearchConfig controls similarity ranking defaults.
type SearchConfig struct {
	ScoreThreshold float64 `yaml:"score_threshold" koanf:"score_threshold"`
	TopK           int     `yaml:"top_k" koanf:"top_k"`
	Summarize      bool    `yaml:"summarize" koanf:"summarize"`
}

// QueueConfig holds per-phase deadlines for the upload queue worker.
type QueueConfig struct {
	UploadTimeoutSec  int `yaml:"upload_timeout_sec" koanf:"upload_timeout_sec"`
	ExtractTimeoutSec int `yaml:"extract_timeout_sec" koanf:"extract_timeout_sec"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int    `yaml:"port" koanf:"port"`
	AllowAllCORS  bool   `yaml:"allow_all_cors" koanf:"allow_all_cors"`
	SigningSecret string `yaml:"signing_secret" koanf:"signing_secret"`
}

// IngestConfig controls batch ingestion via `finsift process`.
type IngestConfig struct {
	Include     []string `yaml:"include" koanf:"include"`
	Exclude     []string `yaml:"exclude" koanf:"exclude"`
	MaxFileSize int64    `yaml:"max_file_size" koanf:"max_file_size"`
}
