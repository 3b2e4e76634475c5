package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/lendguard/lendguard/pkg/pagination"
)

// System defines the public contract for ledger domain operations.
// InsertIfAbsent is the concurrency-critical operation: for any identifier,
// exactly one concurrent caller observes Inserted and every other caller
// observes the winning record.
type System interface {
	Handler() *Handler

	InsertIfAbsent(ctx context.Context, cmd InsertCommand) (*Outcome, error)
	RecordDuplicate(ctx context.Context, identifier, sourceFileName string) (*DuplicateEvent, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[IdentifierRecord], error)

	Find(ctx context.Context, id uuid.UUID) (*IdentifierRecord, error)
	FindByIdentifier(ctx context.Context, identifier string) (*IdentifierRecord, error)

	ListDuplicates(
		ctx context.Context,
		page pagination.PageRequest,
		filters DuplicateFilters,
	) (*pagination.PageResult[DuplicateEvent], error)
}
