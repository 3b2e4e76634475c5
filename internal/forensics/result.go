// Package forensics implements the signal extractors and aggregation policy
// of the forensic risk-scoring engine. Each check is a pure function over an
// extracted document representation that yields a bounded risk score with
// explanatory flags; the aggregator folds check results into a single
// overall score and discrete risk level.
package forensics

// Check names used as keys in a Report.
const (
	CheckAlignment    = "alignment"
	CheckFonts        = "fonts"
	CheckMetadata     = "metadata"
	CheckNumbers      = "numbers"
	CheckImageQuality = "image_quality"
	CheckIdentifier   = "identifier"
)

// Level is the discrete risk tier derived from the overall score.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// CheckResult is the outcome of a single check. It is immutable once
// produced. If Error is set, RiskScore holds its default (0) and Applicable
// records whether the check was attempted at all.
type CheckResult struct {
	RiskScore  float64  `json:"risk_score"`
	Flags      []string `json:"flags"`
	Applicable bool     `json:"applicable"`
	Error      string   `json:"error,omitempty"`
}

// Failed creates a CheckResult for a check that was attempted but errored.
func Failed(err error) CheckResult {
	return CheckResult{Applicable: false, Error: err.Error()}
}

// Inapplicable creates a CheckResult for a check that did not apply to the
// document, with an optional explanatory flag.
func Inapplicable(flags ...string) CheckResult {
	return CheckResult{Applicable: false, Flags: flags}
}

// Report is the consolidated result of one document analysis. It is created
// once per invocation and never mutated afterwards; the caller owns it.
type Report struct {
	Checks       map[string]CheckResult `json:"checks"`
	OverallScore float64                `json:"overall_score"`
	RiskLevel    Level                  `json:"risk_level"`
}
