package ledger_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/lendguard/lendguard/internal/ledger"
)

func TestRiskForOutcomeNew(t *testing.T) {
	result := ledger.RiskForOutcome(&ledger.Outcome{
		Inserted: true,
		Record:   ledger.IdentifierRecord{Identifier: "5X4YR5JX"},
	})

	if !result.Applicable {
		t.Error("Applicable = false, want true")
	}
	if result.RiskScore != 0 {
		t.Errorf("RiskScore = %v, want 0", result.RiskScore)
	}
	if len(result.Flags) != 1 || result.Flags[0] != "new identifier recorded" {
		t.Errorf("Flags = %v, want [new identifier recorded]", result.Flags)
	}
}

func TestRiskForOutcomeDuplicate(t *testing.T) {
	uploaded := time.Date(2024, 2, 12, 9, 30, 0, 0, time.UTC)

	result := ledger.RiskForOutcome(&ledger.Outcome{
		Inserted: false,
		Record: ledger.IdentifierRecord{
			Identifier:     "5X4YR5JX",
			SourceFileName: "NOA_1.pdf",
			UploadedAt:     uploaded,
		},
	})

	if !result.Applicable {
		t.Error("Applicable = false, want true")
	}
	if result.RiskScore != 100 {
		t.Errorf("RiskScore = %v, want 100", result.RiskScore)
	}
	if len(result.Flags) != 1 {
		t.Fatalf("Flags = %v, want one flag", result.Flags)
	}

	flag := result.Flags[0]
	for _, want := range []string{"5X4YR5JX", "NOA_1.pdf", "2024-02-12T09:30:00Z"} {
		if !strings.Contains(flag, want) {
			t.Errorf("flag %q missing %q", flag, want)
		}
	}
}

func TestRiskUnextracted(t *testing.T) {
	result := ledger.RiskUnextracted()

	if !result.Applicable {
		t.Error("Applicable = false, want true")
	}
	if result.RiskScore != 30 {
		t.Errorf("RiskScore = %v, want 30", result.RiskScore)
	}
	if len(result.Flags) != 1 || result.Flags[0] != "identifier could not be extracted" {
		t.Errorf("Flags = %v, want [identifier could not be extracted]", result.Flags)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ledger.ErrNotFound, http.StatusNotFound},
		{"duplicate", ledger.ErrDuplicate, http.StatusConflict},
		{"empty identifier", ledger.ErrEmptyIdentifier, http.StatusBadRequest},
		{"wrapped not found", errors.Join(errors.New("lookup"), ledger.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ledger.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
