package extraction

import (
	"context"
	"encoding/json"
	"fmt"
)

// Extractor pulls structured fields out of OCR text using the prompt
// matching the document's classified type.
type Extractor struct {
	completer Completer
	model     string
}

// NewExtractor creates an extractor using the given model.
func NewExtractor(completer Completer, model string) *Extractor {
	return &Extractor{completer: completer, model: model}
}

// Extract returns the fields the model found in ocrText. A document
// that genuinely contains none of the prompted fields yields an empty
// slice, not an error.
func (e *Extractor) Extract(ctx context.Context, ocrText string, docType DocumentType) ([]Field, error) {
	content, err := e.completer.CompleteJSON(ctx, e.model, PromptFor(docType), ocrText)
	if err != nil {
		return nil, fmt.Errorf("field extraction failed: %w", err)
	}

	var payload struct {
		Fields []Field `json:"fields"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("parsing extraction response: %w", err)
	}
	return payload.Fields, nil
}
