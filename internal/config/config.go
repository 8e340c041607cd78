package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FINSIFT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: FINSIFT_DATA_DIR -> data_dir, etc.
	// Double underscores map to nested keys: FINSIFT_SERVER__PORT -> server.port.
	if err := k.Load(env.Provider("FINSIFT_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "FINSIFT_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}

	if c.Chunking.MaxChunkSize <= 0 {
		return fmt.Errorf("chunking.max_chunk_size must be positive")
	}

	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must be non-negative")
	}

	if c.Chunking.BatchSize <= 0 {
		return fmt.Errorf("chunking.batch_size must be positive")
	}

	if c.Search.ScoreThreshold < -1 || c.Search.ScoreThreshold > 1 {
		return fmt.Errorf("search.score_threshold must be within [-1, 1]")
	}

	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be positive")
	}

	if c.Queue.UploadTimeoutSec <= 0 || c.Queue.ExtractTimeoutSec <= 0 {
		return fmt.Errorf("queue timeouts must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port")
	}

	return nil
}

// APIKeyEnvVar is the environment variable holding the OpenAI API key used
// for vision OCR, classification, extraction, and embeddings.
const APIKeyEnvVar = "OPENAI_API_KEY"

// APIKey returns the configured OpenAI API key, or an error if unset.
func APIKey() (string, error) {
	key := os.Getenv(APIKeyEnvVar)
	if key == "" {
		return "", fmt.Errorf("%s is not set", APIKeyEnvVar)
	}
	return key, nil
}
