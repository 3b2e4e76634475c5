package ledger

import (
	"fmt"
	"time"

	"github.com/lendguard/lendguard/internal/forensics"
)

// Risk scores assigned by the identifier check.
const (
	scoreNew         = 0.0
	scoreDuplicate   = 100.0
	scoreUnextracted = 30.0
)

// RiskForOutcome converts an insert-if-absent outcome into the identifier
// check result. A fresh identifier is clean; a duplicate is conclusive fraud
// evidence and scores the maximum.
func RiskForOutcome(outcome *Outcome) forensics.CheckResult {
	if outcome.Inserted {
		return forensics.CheckResult{
			RiskScore:  scoreNew,
			Flags:      []string{"new identifier recorded"},
			Applicable: true,
		}
	}

	return forensics.CheckResult{
		RiskScore: scoreDuplicate,
		Flags: []string{fmt.Sprintf(
			"duplicate identifier %s: first seen in %s at %s",
			outcome.Record.Identifier,
			outcome.Record.SourceFileName,
			outcome.Record.UploadedAt.Format(time.RFC3339),
		)},
		Applicable: true,
	}
}

// RiskUnextracted is the identifier check result when OCR ran but no
// identifier could be read. Unreadable codes are suspicious on their own,
// but far from conclusive.
func RiskUnextracted() forensics.CheckResult {
	return forensics.CheckResult{
		RiskScore:  scoreUnextracted,
		Flags:      []string{"identifier could not be extracted"},
		Applicable: true,
	}
}
