package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lendguard/lendguard/pkg/pagination"
	"github.com/lendguard/lendguard/pkg/query"
	"github.com/lendguard/lendguard/pkg/repository"
)

const (
	maxAttempts  = 3
	retryBackoff = 50 * time.Millisecond
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a ledger repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "ledger"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

const insertQ = `
	INSERT INTO identifier_records(
		identifier, sin_fragment, display_name, issue_date,
		document_hash, source_file_name, uploaded_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (identifier) DO NOTHING
	RETURNING id, identifier, sin_fragment, display_name, issue_date,
			  document_hash, source_file_name, uploaded_at, created_at`

// InsertIfAbsent attempts to claim an identifier. A single INSERT with
// ON CONFLICT DO NOTHING guarantees exactly one winner under concurrency;
// losers read back the winning row. Transient connection and serialization
// faults are retried before surfacing.
func (r *repo) InsertIfAbsent(ctx context.Context, cmd InsertCommand) (*Outcome, error) {
	if cmd.Identifier == "" {
		return nil, ErrEmptyIdentifier
	}
	if cmd.UploadedAt.IsZero() {
		cmd.UploadedAt = time.Now().UTC()
	}

	args := []any{
		cmd.Identifier,
		cmd.SINFragment,
		cmd.DisplayName,
		cmd.IssueDate,
		cmd.DocumentHash,
		cmd.SourceFileName,
		cmd.UploadedAt,
	}

	var outcome *Outcome
	err := r.retry(ctx, func() error {
		rec, err := repository.QueryOne(ctx, r.db, insertQ, args, scanRecord)
		if err == nil {
			outcome = &Outcome{Inserted: true, Record: rec}
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("insert identifier record: %w", err)
		}

		// conflict: the identifier is already claimed, read the winner
		existing, err := r.FindByIdentifier(ctx, cmd.Identifier)
		if err != nil {
			return fmt.Errorf("read existing record: %w", err)
		}
		outcome = &Outcome{Inserted: false, Record: *existing}
		return nil
	})

	if err != nil {
		return nil, err
	}

	if outcome.Inserted {
		r.logger.Info("identifier recorded",
			"id", outcome.Record.ID,
			"identifier", outcome.Record.Identifier,
			"source", outcome.Record.SourceFileName,
		)
	}
	return outcome, nil
}

func (r *repo) RecordDuplicate(ctx context.Context, identifier, sourceFileName string) (*DuplicateEvent, error) {
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}

	duplicateQ := `
		INSERT INTO duplicate_events(identifier, duplicate_source_file_name)
		VALUES ($1, $2)
		RETURNING id, identifier, duplicate_source_file_name, detected_at`

	var event DuplicateEvent
	err := r.retry(ctx, func() error {
		d, err := repository.QueryOne(ctx, r.db, duplicateQ, []any{identifier, sourceFileName}, scanDuplicate)
		if err != nil {
			return fmt.Errorf("insert duplicate event: %w", err)
		}
		event = d
		return nil
	})

	if err != nil {
		return nil, mapDuplicateInsertError(err)
	}

	r.logger.Warn("duplicate identifier detected",
		"identifier", event.Identifier,
		"source", event.DuplicateSourceFileName,
	)
	return &event, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[IdentifierRecord], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Identifier", "SourceFileName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count identifier records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query identifier records: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*IdentifierRecord, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) FindByIdentifier(ctx context.Context, identifier string) (*IdentifierRecord, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Identifier", identifier)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) ListDuplicates(
	ctx context.Context,
	page pagination.PageRequest,
	filters DuplicateFilters,
) (*pagination.PageResult[DuplicateEvent], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(duplicateProjection, duplicateDefaultSort).
		WhereSearch(page.Search, "Identifier", "DuplicateSourceFileName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count duplicate events: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDuplicate)
	if err != nil {
		return nil, fmt.Errorf("query duplicate events: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

// retry runs fn up to maxAttempts times, backing off between attempts on
// transient faults. Non-transient errors surface immediately.
func (r *repo) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}

		r.logger.Warn("transient ledger fault",
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

// mapDuplicateInsertError translates duplicate-event insert failures to
// domain errors. A foreign-key violation (23503) means no identifier record
// exists for the event, which callers see as ErrNotFound.
func mapDuplicateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

// isTransient reports whether a database error is worth retrying:
// connection faults (class 08), serialization failures (40001), and
// deadlocks (40P01).
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "40001" ||
			pgErr.Code == "40P01"
	}
	return errors.Is(err, sql.ErrConnDone)
}
