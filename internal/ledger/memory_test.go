package ledger_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lendguard/lendguard/internal/ledger"
	"github.com/lendguard/lendguard/pkg/pagination"
)

func newMemory() ledger.System {
	return ledger.NewMemory(slog.Default(), pagination.Config{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	})
}

func insertCmd(identifier, source string) ledger.InsertCommand {
	return ledger.InsertCommand{
		Identifier:     identifier,
		DocumentHash:   "deadbeef",
		SourceFileName: source,
		UploadedAt:     time.Now().UTC(),
	}
}

func TestInsertIfAbsentFirstWins(t *testing.T) {
	sys := newMemory()
	ctx := context.Background()

	first, err := sys.InsertIfAbsent(ctx, insertCmd("5X4YR5JX", "NOA_1.pdf"))
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !first.Inserted {
		t.Fatal("first insert: Inserted = false, want true")
	}

	second, err := sys.InsertIfAbsent(ctx, insertCmd("5X4YR5JX", "NOA_2.pdf"))
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if second.Inserted {
		t.Fatal("second insert: Inserted = true, want false")
	}
	if second.Record.SourceFileName != "NOA_1.pdf" {
		t.Errorf("winning record source = %q, want NOA_1.pdf", second.Record.SourceFileName)
	}
	if second.Record.ID != first.Record.ID {
		t.Error("second insert returned a different record than the winner")
	}
}

func TestInsertIfAbsentExactlyOneWinner(t *testing.T) {
	sys := newMemory()
	ctx := context.Background()

	const workers = 50

	outcomes := make([]*ledger.Outcome, workers)
	errs := make([]error, workers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(workers)

	for i := 0; i < workers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			outcomes[i], errs[i] = sys.InsertIfAbsent(
				ctx,
				insertCmd("5X4YR5JX", fmt.Sprintf("upload-%d.pdf", i)),
			)
		}(i)
	}

	start.Done()
	done.Wait()

	winners := 0
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if outcomes[i].Inserted {
			winners++
		}
	}

	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	winner, err := sys.FindByIdentifier(ctx, "5X4YR5JX")
	if err != nil {
		t.Fatalf("find winner: %v", err)
	}
	for i, o := range outcomes {
		if o.Record.ID != winner.ID {
			t.Errorf("worker %d observed record %s, want winning record %s", i, o.Record.ID, winner.ID)
		}
	}
}

func TestInsertIfAbsentEmptyIdentifier(t *testing.T) {
	sys := newMemory()

	_, err := sys.InsertIfAbsent(context.Background(), insertCmd("", "NOA_1.pdf"))
	if err != ledger.ErrEmptyIdentifier {
		t.Errorf("error = %v, want ErrEmptyIdentifier", err)
	}
}

func TestRecordDuplicateRoundTrip(t *testing.T) {
	sys := newMemory()
	ctx := context.Background()

	if _, err := sys.InsertIfAbsent(ctx, insertCmd("5X4YR5JX", "NOA_1.pdf")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	event, err := sys.RecordDuplicate(ctx, "5X4YR5JX", "NOA_2.pdf")
	if err != nil {
		t.Fatalf("record duplicate: %v", err)
	}
	if event.DuplicateSourceFileName != "NOA_2.pdf" {
		t.Errorf("duplicate source = %q, want NOA_2.pdf", event.DuplicateSourceFileName)
	}

	page, err := sys.ListDuplicates(ctx, pagination.PageRequest{}, ledger.DuplicateFilters{})
	if err != nil {
		t.Fatalf("list duplicates: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("Total = %d, want 1", page.Total)
	}
	if page.Data[0].Identifier != "5X4YR5JX" {
		t.Errorf("event identifier = %q, want 5X4YR5JX", page.Data[0].Identifier)
	}
}

func TestListFiltersAndPagination(t *testing.T) {
	sys := newMemory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cmd := insertCmd(fmt.Sprintf("5X4YR5J%d", i), fmt.Sprintf("NOA_%d.pdf", i))
		if _, err := sys.InsertIfAbsent(ctx, cmd); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	t.Run("identifier filter", func(t *testing.T) {
		id := "5X4YR5J2"
		page, err := sys.List(ctx, pagination.PageRequest{}, ledger.Filters{Identifier: &id})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.Total != 1 {
			t.Fatalf("Total = %d, want 1", page.Total)
		}
		if page.Data[0].Identifier != id {
			t.Errorf("identifier = %q, want %q", page.Data[0].Identifier, id)
		}
	})

	t.Run("search by source file", func(t *testing.T) {
		page, err := sys.List(ctx, pagination.PageRequest{Search: ptr("noa_3")}, ledger.Filters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.Total != 1 {
			t.Fatalf("Total = %d, want 1", page.Total)
		}
	})

	t.Run("page size", func(t *testing.T) {
		page, err := sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 2}, ledger.Filters{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page.Data) != 2 {
			t.Errorf("len(Data) = %d, want 2", len(page.Data))
		}
		if page.Total != 5 {
			t.Errorf("Total = %d, want 5", page.Total)
		}
		if page.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", page.TotalPages)
		}
	})
}

func TestFindNotFound(t *testing.T) {
	sys := newMemory()

	_, err := sys.FindByIdentifier(context.Background(), "MISSING1")
	if err != ledger.ErrNotFound {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func ptr(s string) *string { return &s }
