// Package pipeline turns an uploaded file into a classified, indexed
// document. Processing is strictly one-directional: a document that
// reaches a terminal state is never retried automatically.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finsift/finsift/internal/document"
	"github.com/finsift/finsift/internal/embeddings"
	"github.com/finsift/finsift/internal/extraction"
	"github.com/finsift/finsift/internal/ocr"
	"github.com/finsift/finsift/internal/rag"
	"github.com/finsift/finsift/internal/storage"
)

// signedURLTTL is how long the vision model gets to fetch an image.
const signedURLTTL = time.Hour

// Classifier assigns a document type to recovered text.
type Classifier interface {
	Classify(ctx context.Context, ocrText string) extraction.Classification
}

// FieldExtractor recovers structured fields from text.
type FieldExtractor interface {
	Extract(ctx context.Context, ocrText string, docType extraction.DocumentType) ([]extraction.Field, error)
}

// UploadRequest is one file handed to the pipeline.
type UploadRequest struct {
	OwnerID       string
	ApplicationID string
	Filename      string
	MimeType      string
	Data          []byte
}

// Result summarizes a completed processing run.
type Result struct {
	DocumentID      string                  `json:"document_id"`
	DocType         extraction.DocumentType `json:"document_type"`
	Confidence      float64                 `json:"classification_confidence"`
	FieldsExtracted int                     `json:"fields_extracted"`
	ChunksIndexed   int                     `json:"chunks_indexed"`
}

// Processor runs the upload and extraction phases of the document
// lifecycle against the blob store and the database.
type Processor struct {
	store      *document.Store
	blobs      storage.Storage
	vision     ocr.ImageRecognizer
	classifier Classifier
	extractor  FieldExtractor
	embedder   embeddings.Embedder
	chunkSize  int

	// extractPDF is swappable for tests.
	extractPDF func([]byte) (string, error)
	now        func() time.Time
}

// NewProcessor wires a Processor. chunkSize <= 0 selects the default.
func NewProcessor(store *document.Store, blobs storage.Storage, vision ocr.ImageRecognizer,
	classifier Classifier, extractor FieldExtractor, embedder embeddings.Embedder, chunkSize int) *Processor {
	if chunkSize <= 0 {
		chunkSize = rag.DefaultChunkSize
	}
	return &Processor{
		store:      store,
		blobs:      blobs,
		vision:     vision,
		classifier: classifier,
		extractor:  extractor,
		embedder:   embedder,
		chunkSize:  chunkSize,
		extractPDF: ocr.ExtractPDFText,
		now:        time.Now,
	}
}

// Upload persists the raw file and creates the document row in the
// processing state. A storage failure leaves no document behind.
func (p *Processor) Upload(ctx context.Context, req UploadRequest) (*document.Document, error) {
	key := storage.BuildKey(req.OwnerID, req.ApplicationID, req.Filename, p.now())
	storedPath, err := p.blobs.Put(ctx, key, req.Data)
	if err != nil {
		return nil, fmt.Errorf("storing upload %s: %w", req.Filename, err)
	}

	doc := &document.Document{
		ID:            uuid.New().String(),
		OwnerID:       req.OwnerID,
		ApplicationID: req.ApplicationID,
		Filename:      req.Filename,
		FilePath:      storedPath,
		FileSize:      int64(len(req.Data)),
		MimeType:      req.MimeType,
		Status:        document.StatusProcessing,
	}
	if err := p.store.Upsert(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Process recovers the document's text, classifies it, extracts fields,
// and indexes its chunks. Any failure marks the document as errored
// with the captured message.
func (p *Processor) Process(ctx context.Context, doc *document.Document) (*Result, error) {
	text, err := p.recoverText(ctx, doc)
	if err != nil {
		return nil, p.fail(doc.ID, err)
	}

	classification := p.classifier.Classify(ctx, text)

	fields, err := p.extractor.Extract(ctx, text, classification.Type)
	if err != nil {
		// Extraction is best-effort: a document with no recoverable
		// fields still gets classified and indexed.
		log.Printf("field extraction for %s: %v", doc.ID, err)
		fields = nil
	}
	if err := p.store.ReplaceFields(ctx, doc.ID, toStoredFields(fields)); err != nil {
		return nil, p.fail(doc.ID, err)
	}

	chunks, err := p.index(ctx, doc.ID, text)
	if err != nil {
		return nil, p.fail(doc.ID, err)
	}

	if err := p.store.Complete(ctx, doc.ID, string(classification.Type), classification.Confidence, text); err != nil {
		return nil, p.fail(doc.ID, err)
	}

	return &Result{
		DocumentID:      doc.ID,
		DocType:         classification.Type,
		Confidence:      classification.Confidence,
		FieldsExtracted: len(fields),
		ChunksIndexed:   len(chunks),
	}, nil
}

// recoverText picks the extraction path by file type. Digital PDFs and
// plain text are read from storage; everything else goes through the
// vision model via a signed URL.
func (p *Processor) recoverText(ctx context.Context, doc *document.Document) (string, error) {
	switch {
	case ocr.IsPDF(doc.MimeType, doc.Filename):
		data, err := p.blobs.Get(ctx, doc.FilePath)
		if err != nil {
			return "", fmt.Errorf("reading stored pdf: %w", err)
		}
		return p.extractPDF(data)

	case isPlainText(doc.MimeType, doc.Filename):
		data, err := p.blobs.Get(ctx, doc.FilePath)
		if err != nil {
			return "", fmt.Errorf("reading stored text: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", ocr.ErrNoText
		}
		return text, nil

	default:
		url, err := p.blobs.SignedURL(ctx, doc.FilePath, signedURLTTL)
		if err != nil {
			return "", fmt.Errorf("signing url for ocr: %w", err)
		}
		return p.vision.ExtractImageText(ctx, url)
	}
}

// index chunks the text, embeds every chunk, and persists the vectors.
func (p *Processor) index(ctx context.Context, documentID, text string) ([]document.Chunk, error) {
	pieces := rag.ChunkByStructure(text, p.chunkSize)
	if len(pieces) == 0 {
		return nil, ocr.ErrNoText
	}

	texts := make([]string, len(pieces))
	for i, c := range pieces {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(pieces), err)
	}

	chunks := make([]document.Chunk, len(pieces))
	for i, c := range pieces {
		chunks[i] = document.Chunk{
			DocumentID: documentID,
			Index:      c.Index,
			Text:       c.Text,
			Embedding:  vectors[i],
		}
	}
	if err := p.store.ReplaceChunks(ctx, documentID, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// fail records the error on the document and returns it. The status
// write uses a fresh context so a deadline that killed the phase does
// not also swallow the error record.
func (p *Processor) fail(documentID string, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.SetError(ctx, documentID, cause.Error()); err != nil {
		log.Printf("recording error for document %s: %v", documentID, err)
	}
	return cause
}

func toStoredFields(fields []extraction.Field) []document.ExtractedField {
	out := make([]document.ExtractedField, len(fields))
	for i, f := range fields {
		out[i] = document.ExtractedField{
			Key:        f.Key,
			Value:      f.Value,
			Confidence: f.Confidence,
		}
	}
	return out
}

func isPlainText(mimeType, filename string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".txt")
}
