package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/finsift/finsift/internal/config"
	"github.com/finsift/finsift/internal/db"
	"github.com/finsift/finsift/internal/document"
	"github.com/finsift/finsift/internal/embeddings"
	"github.com/finsift/finsift/internal/extraction"
	"github.com/finsift/finsift/internal/ocr"
	"github.com/finsift/finsift/internal/pipeline"
	"github.com/finsift/finsift/internal/queue"
	"github.com/finsift/finsift/internal/rag"
	"github.com/finsift/finsift/internal/storage"
)

// localOwner is the identity the CLI operates as. The HTTP server can
// serve other owners via the X-Owner-ID header, but every command-line
// operation works on the local corpus.
const localOwner = "local"

// stack holds the wired application dependencies shared by the serve,
// process, search, and mcp commands.
type stack struct {
	cfg       *config.Config
	db        *db.DB
	store     *document.Store
	blobs     *storage.Local
	embedder  embeddings.Embedder
	processor *pipeline.Processor
	queue     *queue.UploadQueue
	searcher  *rag.Searcher
}

// loadConfig loads and validates the config with a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `finsift init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildStack wires the full processing stack from configuration. It
// needs OPENAI_API_KEY for OCR, extraction, and embeddings.
func buildStack(cfg *config.Config) (*stack, error) {
	apiKey, err := config.APIKey()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "finsift.db"))
	if err != nil {
		return nil, err
	}

	blobs, err := storage.NewLocal(filepath.Join(cfg.DataDir, "objects"), cfg.BaseURL, cfg.Server.SigningSecret)
	if err != nil {
		database.Close()
		return nil, err
	}

	store := document.NewStore(database)
	client := openai.NewClient(apiKey)
	embedder := embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel), cfg.Chunking.BatchSize)
	completer := extraction.NewOpenAICompleter(apiKey)

	processor := pipeline.NewProcessor(
		store,
		blobs,
		ocr.NewVisionOCR(client, cfg.VisionModel),
		extraction.NewClassifier(completer, cfg.ClassifierModel),
		extraction.NewExtractor(completer, cfg.ExtractionModel),
		embedder,
		cfg.Chunking.MaxChunkSize,
	)

	uploads := queue.New(processor,
		time.Duration(cfg.Queue.UploadTimeoutSec)*time.Second,
		time.Duration(cfg.Queue.ExtractTimeoutSec)*time.Second)

	var summarizer rag.Summarizer
	if cfg.Search.Summarize {
		summarizer = rag.NewOpenAISummarizer(apiKey, cfg.SummaryModel)
	}
	searcher := rag.NewSearcher(embedder, store, summarizer, cfg.Search.ScoreThreshold, cfg.Search.TopK)

	return &stack{
		cfg:       cfg,
		db:        database,
		store:     store,
		blobs:     blobs,
		embedder:  embedder,
		processor: processor,
		queue:     uploads,
		searcher:  searcher,
	}, nil
}

// close releases the stack's resources, draining the queue worker first.
func (s *stack) close() {
	s.queue.Close()
	s.db.Close()
}
