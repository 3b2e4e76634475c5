package ledger

import (
	"net/url"

	"github.com/lendguard/lendguard/pkg/query"
	"github.com/lendguard/lendguard/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "identifier_records", "ir").
	Project("id", "ID").
	Project("identifier", "Identifier").
	Project("sin_fragment", "SINFragment").
	Project("display_name", "DisplayName").
	Project("issue_date", "IssueDate").
	Project("document_hash", "DocumentHash").
	Project("source_file_name", "SourceFileName").
	Project("uploaded_at", "UploadedAt").
	Project("created_at", "CreatedAt")

var duplicateProjection = query.
	NewProjectionMap("public", "duplicate_events", "de").
	Project("id", "ID").
	Project("identifier", "Identifier").
	Project("duplicate_source_file_name", "DuplicateSourceFileName").
	Project("detected_at", "DetectedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

var duplicateDefaultSort = query.SortField{
	Field:      "DetectedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for record queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	Identifier   *string `json:"identifier,omitempty"`
	DocumentHash *string `json:"document_hash,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Identifier", f.Identifier).
		WhereEquals("DocumentHash", f.DocumentHash)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if i := values.Get("identifier"); i != "" {
		f.Identifier = &i
	}

	if h := values.Get("document_hash"); h != "" {
		f.DocumentHash = &h
	}

	return f
}

// DuplicateFilters contains optional filtering criteria for duplicate
// event queries.
type DuplicateFilters struct {
	Identifier *string `json:"identifier,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f DuplicateFilters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("Identifier", f.Identifier)
}

// DuplicateFiltersFromQuery extracts filter values from URL query parameters.
func DuplicateFiltersFromQuery(values url.Values) DuplicateFilters {
	var f DuplicateFilters

	if i := values.Get("identifier"); i != "" {
		f.Identifier = &i
	}

	return f
}

func scanRecord(s repository.Scanner) (IdentifierRecord, error) {
	var r IdentifierRecord

	err := s.Scan(
		&r.ID,
		&r.Identifier,
		&r.SINFragment,
		&r.DisplayName,
		&r.IssueDate,
		&r.DocumentHash,
		&r.SourceFileName,
		&r.UploadedAt,
		&r.CreatedAt,
	)

	return r, err
}

func scanDuplicate(s repository.Scanner) (DuplicateEvent, error) {
	var d DuplicateEvent

	err := s.Scan(
		&d.ID,
		&d.Identifier,
		&d.DuplicateSourceFileName,
		&d.DetectedAt,
	)

	return d, err
}
