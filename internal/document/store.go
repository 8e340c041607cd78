package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsift/finsift/internal/db"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Store persists documents, extracted fields, and chunks in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Upsert inserts the document, or replaces the stored row when the id
// already exists. UpdatedAt is always refreshed.
func (s *Store) Upsert(ctx context.Context, doc *Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, application_id, filename, file_path, file_size, mime_type,
			status, doc_type, doc_type_confidence, ocr_text, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			application_id = excluded.application_id,
			filename = excluded.filename,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			mime_type = excluded.mime_type,
			status = excluded.status,
			doc_type = excluded.doc_type,
			doc_type_confidence = excluded.doc_type_confidence,
			ocr_text = excluded.ocr_text,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at`,
		doc.ID, doc.OwnerID, doc.ApplicationID, doc.Filename, doc.FilePath, doc.FileSize, doc.MimeType,
		string(doc.Status), nullIfEmpty(doc.DocType), doc.DocTypeConf, nullIfEmpty(doc.OCRText),
		nullIfEmpty(doc.ErrorMessage), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", doc.ID, err)
	}
	return nil
}

// Get returns the document with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, application_id, filename, file_path, file_size, mime_type,
			status, doc_type, doc_type_confidence, ocr_text, error_message, created_at, updated_at
		FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", id, err)
	}
	return doc, nil
}

// ListByOwner returns all documents belonging to the owner, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, application_id, filename, file_path, file_size, mime_type,
			status, doc_type, doc_type_confidence, ocr_text, error_message, created_at, updated_at
		FROM documents WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing documents for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// SetError marks the document as failed with the given message.
func (s *Store) SetError(ctx context.Context, id, message string) error {
	return s.setStatus(ctx, id, StatusError, message)
}

// SetProcessing marks the document as being processed.
func (s *Store) SetProcessing(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusProcessing, "")
}

func (s *Store) setStatus(ctx context.Context, id string, status Status, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), nullIfEmpty(message), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating document %s status: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete records the classification outcome and full text, and marks
// the document completed.
func (s *Store) Complete(ctx context.Context, id, docType string, confidence float64, text string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET status = ?, doc_type = ?, doc_type_confidence = ?, ocr_text = ?, error_message = NULL, updated_at = ?
		WHERE id = ?`,
		string(StatusCompleted), docType, confidence, text, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("completing document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document; fields and chunks cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceFields writes the extraction batch for a document in a single
// transaction, replacing any previous batch. All-or-nothing: a failed
// insert rolls back the whole batch.
func (s *Store) ReplaceFields(ctx context.Context, documentID string, fields []ExtractedField) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning field transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM extracted_fields WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clearing fields for %s: %w", documentID, err)
	}

	for i := range fields {
		f := &fields[i]
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		f.DocumentID = documentID
		f.Validation = ValidationFor(f.Confidence)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO extracted_fields (id, document_id, field_key, field_value, confidence, validation_status)
			VALUES (?, ?, ?, ?, ?, ?)`,
			f.ID, f.DocumentID, f.Key, f.Value, f.Confidence, string(f.Validation))
		if err != nil {
			return fmt.Errorf("inserting field %s: %w", f.Key, err)
		}
	}

	return tx.Commit()
}

// FieldsByDocument returns the extraction batch for a document.
func (s *Store) FieldsByDocument(ctx context.Context, documentID string) ([]ExtractedField, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, field_key, field_value, confidence, validation_status
		FROM extracted_fields WHERE document_id = ? ORDER BY field_key`, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading fields for %s: %w", documentID, err)
	}
	defer rows.Close()

	var fields []ExtractedField
	for rows.Next() {
		var f ExtractedField
		var validation string
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Key, &f.Value, &f.Confidence, &validation); err != nil {
			return nil, fmt.Errorf("scanning field row: %w", err)
		}
		f.Validation = ValidationStatus(validation)
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// ReplaceChunks writes the chunk set for a document in a single
// transaction, replacing any previous set.
func (s *Store) ReplaceChunks(ctx context.Context, documentID string, chunks []Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clearing chunks for %s: %w", documentID, err)
	}

	for i := range chunks {
		c := &chunks[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.DocumentID = documentID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO document_chunks (id, document_id, chunk_index, chunk_text, embedding)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.DocumentID, c.Index, c.Text, vectorToBytes(c.Embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.Index, err)
		}
	}

	return tx.Commit()
}

// ChunksByOwner returns every indexed chunk belonging to the owner's
// completed documents, in document insertion order then chunk order.
// These are the similarity-search candidates.
func (s *Store) ChunksByOwner(ctx context.Context, ownerID string) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.chunk_index, c.chunk_text, c.embedding
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.owner_id = ? AND d.status = 'completed'
		ORDER BY d.created_at, c.chunk_index`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading chunks for %s: %w", ownerID, err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		vec, err := bytesToVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding for chunk %s: %w", c.ID, err)
		}
		c.Embedding = vec
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Stats summarizes an owner's corpus for search diagnostics.
type Stats struct {
	TotalDocuments     int
	CompletedDocuments int
	IndexedChunks      int
}

// CorpusStats reports how much of the owner's corpus is searchable.
func (s *Store) CorpusStats(ctx context.Context, ownerID string) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM documents WHERE owner_id = ?`, ownerID).Scan(&st.TotalDocuments, &st.CompletedDocuments)
	if err != nil {
		return st, fmt.Errorf("counting documents for %s: %w", ownerID, err)
	}
	// Count only chunks ChunksByOwner would serve, so the diagnostics
	// agree with the candidate set.
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM document_chunks c JOIN documents d ON d.id = c.document_id
		WHERE d.owner_id = ? AND d.status = 'completed'`, ownerID).Scan(&st.IndexedChunks)
	if err != nil {
		return st, fmt.Errorf("counting chunks for %s: %w", ownerID, err)
	}
	return st, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var status string
	var docType, ocrText, errMsg sql.NullString
	var conf sql.NullFloat64
	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.ApplicationID, &doc.Filename, &doc.FilePath,
		&doc.FileSize, &doc.MimeType, &status, &docType, &conf, &ocrText, &errMsg,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	doc.Status = Status(status)
	doc.DocType = docType.String
	doc.DocTypeConf = conf.Float64
	doc.OCRText = ocrText.String
	doc.ErrorMessage = errMsg.String
	return &doc, nil
}
