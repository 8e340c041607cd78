package document

import "time"

// Status is the lifecycle state of a document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// ValidationStatus marks whether an extracted field needs human review.
type ValidationStatus string

const (
	ValidationValid  ValidationStatus = "valid"
	ValidationReview ValidationStatus = "review"
)

// ReviewThreshold is the extraction confidence above which a field is
// considered valid without review.
const ReviewThreshold = 0.8

// Document is one ingested file and everything recovered from it.
type Document struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	ApplicationID string    `json:"application_id"`
	Filename      string    `json:"filename"`
	FilePath      string    `json:"file_path"`
	FileSize      int64     `json:"file_size"`
	MimeType      string    `json:"mime_type"`
	Status        Status    `json:"status"`
	DocType       string    `json:"doc_type,omitempty"`
	DocTypeConf   float64   `json:"doc_type_confidence,omitempty"`
	OCRText       string    `json:"ocr_text,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ExtractedField is one key/value pair recovered from a document.
// Fields are written in bulk once per extraction and never patched.
type ExtractedField struct {
	ID         string           `json:"id"`
	DocumentID string           `json:"document_id"`
	Key        string           `json:"field_key"`
	Value      *string          `json:"field_value"`
	Confidence float64          `json:"confidence"`
	Validation ValidationStatus `json:"validation_status"`
}

// ValidationFor derives the validation status from an extraction confidence.
func ValidationFor(confidence float64) ValidationStatus {
	if confidence > ReviewThreshold {
		return ValidationValid
	}
	return ValidationReview
}

// Chunk is a bounded slice of a document's extracted text together with
// its embedding vector.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Index      int       `json:"chunk_index"`
	Text       string    `json:"chunk_text"`
	Embedding  []float32 `json:"-"`
}
