// Package ocr extracts text from uploaded documents. Digital PDFs are
// parsed directly; images go through a vision model.
package ocr

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrNoText is returned when a document yields no usable text. A blank
// document cannot be classified or indexed, so this is a hard failure.
var ErrNoText = errors.New("no text extracted from document")

// ImageRecognizer extracts text from an image reachable at a URL.
type ImageRecognizer interface {
	ExtractImageText(ctx context.Context, imageURL string) (string, error)
}

// IsPDF reports whether the file should take the PDF extraction path.
func IsPDF(mimeType, filename string) bool {
	if mimeType == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
