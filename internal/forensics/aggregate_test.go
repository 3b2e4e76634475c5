package forensics_test

import (
	"errors"
	"testing"

	"github.com/lendguard/lendguard/internal/forensics"
)

func applicable(score float64) forensics.CheckResult {
	return forensics.CheckResult{RiskScore: score, Applicable: true}
}

func TestAggregateMean(t *testing.T) {
	report := forensics.Aggregate(map[string]forensics.CheckResult{
		forensics.CheckAlignment: applicable(20),
		forensics.CheckFonts:     applicable(30),
		forensics.CheckMetadata:  applicable(40),
	})

	if report.OverallScore != 30 {
		t.Errorf("OverallScore = %v, want 30", report.OverallScore)
	}
	if report.RiskLevel != forensics.LevelMedium {
		t.Errorf("RiskLevel = %v, want MEDIUM", report.RiskLevel)
	}
}

func TestAggregateExcludesInapplicable(t *testing.T) {
	report := forensics.Aggregate(map[string]forensics.CheckResult{
		forensics.CheckAlignment:    applicable(60),
		forensics.CheckFonts:        forensics.Inapplicable("no font information"),
		forensics.CheckImageQuality: forensics.Failed(errors.New("render failed")),
	})

	if report.OverallScore != 60 {
		t.Errorf("OverallScore = %v, want 60 (inapplicable checks excluded)", report.OverallScore)
	}
}

func TestAggregateNothingAttempted(t *testing.T) {
	report := forensics.Aggregate(map[string]forensics.CheckResult{
		forensics.CheckAlignment: forensics.Inapplicable(),
		forensics.CheckFonts:     forensics.Inapplicable(),
	})

	if report.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want 0", report.OverallScore)
	}
	if report.RiskLevel != forensics.LevelLow {
		t.Errorf("RiskLevel = %v, want LOW", report.RiskLevel)
	}
}

func TestAggregateAllClean(t *testing.T) {
	report := forensics.Aggregate(map[string]forensics.CheckResult{
		forensics.CheckAlignment:    applicable(0),
		forensics.CheckFonts:        applicable(0),
		forensics.CheckMetadata:     applicable(0),
		forensics.CheckNumbers:      applicable(0),
		forensics.CheckImageQuality: applicable(0),
	})

	if report.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want 0", report.OverallScore)
	}
	if report.RiskLevel != forensics.LevelLow {
		t.Errorf("RiskLevel = %v, want LOW", report.RiskLevel)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  forensics.Level
	}{
		{0, forensics.LevelLow},
		{29.9, forensics.LevelLow},
		{30, forensics.LevelMedium},
		{59.9, forensics.LevelMedium},
		{60, forensics.LevelHigh},
		{100, forensics.LevelHigh},
	}

	for _, tt := range tests {
		if got := forensics.LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
