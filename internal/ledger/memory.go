package ledger

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lendguard/lendguard/pkg/pagination"
)

// memory is an in-process System backed by a mutex-guarded map. It serves
// single-node deployments without a database and the concurrency tests for
// the insert-if-absent contract.
type memory struct {
	mu         sync.Mutex
	records    map[string]IdentifierRecord
	duplicates []DuplicateEvent
	logger     *slog.Logger
	pagination pagination.Config
}

// NewMemory creates an in-memory ledger System.
func NewMemory(logger *slog.Logger, pagination pagination.Config) System {
	return &memory{
		records:    make(map[string]IdentifierRecord),
		logger:     logger.With("system", "ledger"),
		pagination: pagination,
	}
}

func (m *memory) Handler() *Handler {
	return NewHandler(m, m.logger, m.pagination)
}

func (m *memory) InsertIfAbsent(_ context.Context, cmd InsertCommand) (*Outcome, error) {
	if cmd.Identifier == "" {
		return nil, ErrEmptyIdentifier
	}
	if cmd.UploadedAt.IsZero() {
		cmd.UploadedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.records[cmd.Identifier]; ok {
		return &Outcome{Inserted: false, Record: existing}, nil
	}

	rec := IdentifierRecord{
		ID:             uuid.New(),
		Identifier:     cmd.Identifier,
		SINFragment:    cmd.SINFragment,
		DisplayName:    cmd.DisplayName,
		IssueDate:      cmd.IssueDate,
		DocumentHash:   cmd.DocumentHash,
		SourceFileName: cmd.SourceFileName,
		UploadedAt:     cmd.UploadedAt,
		CreatedAt:      time.Now().UTC(),
	}
	m.records[cmd.Identifier] = rec

	return &Outcome{Inserted: true, Record: rec}, nil
}

func (m *memory) RecordDuplicate(_ context.Context, identifier, sourceFileName string) (*DuplicateEvent, error) {
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}

	event := DuplicateEvent{
		ID:                      uuid.New(),
		Identifier:              identifier,
		DuplicateSourceFileName: sourceFileName,
		DetectedAt:              time.Now().UTC(),
	}

	m.mu.Lock()
	m.duplicates = append(m.duplicates, event)
	m.mu.Unlock()

	return &event, nil
}

func (m *memory) List(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[IdentifierRecord], error) {
	page.Normalize(m.pagination)

	m.mu.Lock()
	all := make([]IdentifierRecord, 0, len(m.records))
	for _, rec := range m.records {
		all = append(all, rec)
	}
	m.mu.Unlock()

	matched := all[:0]
	for _, rec := range all {
		if filters.Identifier != nil && rec.Identifier != *filters.Identifier {
			continue
		}
		if filters.DocumentHash != nil && rec.DocumentHash != *filters.DocumentHash {
			continue
		}
		if page.Search != nil && *page.Search != "" &&
			!contains(rec.Identifier, *page.Search) &&
			!contains(rec.SourceFileName, *page.Search) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	result := pagination.NewPageResult(
		slicePage(matched, page),
		len(matched),
		page.Page,
		page.PageSize,
	)
	return &result, nil
}

func (m *memory) Find(_ context.Context, id uuid.UUID) (*IdentifierRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.records {
		if rec.ID == id {
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memory) FindByIdentifier(_ context.Context, identifier string) (*IdentifierRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.records[identifier]; ok {
		return &rec, nil
	}
	return nil, ErrNotFound
}

func (m *memory) ListDuplicates(
	_ context.Context,
	page pagination.PageRequest,
	filters DuplicateFilters,
) (*pagination.PageResult[DuplicateEvent], error) {
	page.Normalize(m.pagination)

	m.mu.Lock()
	all := make([]DuplicateEvent, len(m.duplicates))
	copy(all, m.duplicates)
	m.mu.Unlock()

	matched := all[:0]
	for _, d := range all {
		if filters.Identifier != nil && d.Identifier != *filters.Identifier {
			continue
		}
		if page.Search != nil && *page.Search != "" &&
			!contains(d.Identifier, *page.Search) &&
			!contains(d.DuplicateSourceFileName, *page.Search) {
			continue
		}
		matched = append(matched, d)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].DetectedAt.After(matched[j].DetectedAt)
	})

	result := pagination.NewPageResult(
		slicePage(matched, page),
		len(matched),
		page.Page,
		page.PageSize,
	)
	return &result, nil
}

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func slicePage[T any](items []T, page pagination.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
