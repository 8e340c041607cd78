package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard interactively builds a configuration and writes it to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to finsift! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Data directory.
	dataDirPrompt := promptui.Prompt{
		Label:   "Data directory (database and stored uploads)",
		Default: cfg.DataDir,
	}
	dataDir, err := dataDirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	cfg.DataDir = dataDir

	// 2. Extraction quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select extraction quality",
		Items: []string{
			"standard: gpt-4o extraction, gpt-4o-mini classification",
			"economy: gpt-4o-mini everywhere",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	if qualityIdx == 1 {
		cfg.VisionModel = "gpt-4o-mini"
		cfg.ExtractionModel = "gpt-4o-mini"
	}

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: fmt.Sprintf("%d", cfg.Server.Port),
		Validate: func(s string) error {
			var p int
			if _, err := fmt.Sscanf(s, "%d", &p); err != nil || p <= 0 || p > 65535 {
				return fmt.Errorf("enter a valid TCP port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	fmt.Sscanf(portStr, "%d", &cfg.Server.Port)
	cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	// 4. Answer summarization.
	summarizePrompt := promptui.Select{
		Label: "Generate short answers from search results",
		Items: []string{"yes", "no"},
	}
	summarizeIdx, _, err := summarizePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("summarization selection: %w", err)
	}
	cfg.Search.Summarize = summarizeIdx == 0

	// 5. Extra exclude patterns for batch ingest.
	excludePrompt := promptui.Prompt{
		Label:   "Extra ingest exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Ingest.Exclude = append(cfg.Ingest.Exclude, splitAndTrim(excludeStr)...)
	}

	// Signed file URLs need a stable secret across restarts.
	cfg.Server.SigningSecret = randomSecret()

	if os.Getenv(APIKeyEnvVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before processing documents.\n", APIKeyEnvVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace,
// dropping empty entries.
func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back
		// to an obviously weak but functional value.
		return "insecure-default-secret"
	}
	return hex.EncodeToString(buf)
}
