// Package ledger implements the duplicate-identifier ledger. It provides
// types, data access, and the atomic insert-if-absent operation that decides
// whether an assessment-notice identifier has been seen before.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// IdentifierRecord represents one known assessment-notice identifier.
// It mirrors the identifier_records table schema. Auxiliary fields are
// nullable; only the identifier itself is required and unique.
type IdentifierRecord struct {
	ID             uuid.UUID  `json:"id"`
	Identifier     string     `json:"identifier"`
	SINFragment    *string    `json:"sin_fragment"`
	DisplayName    *string    `json:"display_name"`
	IssueDate      *time.Time `json:"issue_date"`
	DocumentHash   string     `json:"document_hash"`
	SourceFileName string     `json:"source_file_name"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DuplicateEvent records one detection of an already-known identifier.
type DuplicateEvent struct {
	ID                      uuid.UUID `json:"id"`
	Identifier              string    `json:"identifier"`
	DuplicateSourceFileName string    `json:"duplicate_source_file_name"`
	DetectedAt              time.Time `json:"detected_at"`
}

// InsertCommand carries the data for an insert-if-absent attempt.
type InsertCommand struct {
	Identifier     string     `json:"identifier"`
	SINFragment    *string    `json:"sin_fragment,omitempty"`
	DisplayName    *string    `json:"display_name,omitempty"`
	IssueDate      *time.Time `json:"issue_date,omitempty"`
	DocumentHash   string     `json:"document_hash"`
	SourceFileName string     `json:"source_file_name"`
	UploadedAt     time.Time  `json:"uploaded_at"`
}

// Outcome is the result of an insert-if-absent attempt. When Inserted is
// false, Record holds the pre-existing record that won the identifier.
type Outcome struct {
	Inserted bool             `json:"inserted"`
	Record   IdentifierRecord `json:"record"`
}
