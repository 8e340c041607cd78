package extraction

import (
	"context"
	"encoding/json"
	"log"
	"unicode/utf8"
)

// classifyInputLimit caps how much OCR text is sent for classification.
// The opening characters of a document are enough to identify its type.
const classifyInputLimit = 3000

// Classifier assigns a document type to OCR text.
type Classifier struct {
	completer Completer
	model     string
}

// NewClassifier creates a classifier using the given model.
func NewClassifier(completer Completer, model string) *Classifier {
	return &Classifier{completer: completer, model: model}
}

// Classify returns the document type and the model's confidence in it.
// Classification is best-effort: a failed request degrades to
// TypeUnknown with zero confidence, and a malformed or out-of-set
// verdict normalizes to TypeUnknown with confidence 0.5. Processing
// continues either way with the generic extraction prompt.
func (c *Classifier) Classify(ctx context.Context, ocrText string) Classification {
	content, err := c.completer.CompleteJSON(ctx, c.model, classifySystemPrompt, truncate(ocrText, classifyInputLimit))
	if err != nil {
		log.Printf("document classification failed: %v", err)
		return Classification{Type: TypeUnknown, Confidence: 0}
	}

	var result Classification
	if err := json.Unmarshal([]byte(content), &result); err != nil || !result.Type.IsValid() {
		return Classification{Type: TypeUnknown, Confidence: 0.5}
	}
	if result.Confidence == 0 {
		result.Confidence = 0.5
	}
	return result
}

// truncate cuts s to at most limit bytes without splitting a UTF-8
// sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
