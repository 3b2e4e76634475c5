package forensics

// Aggregate folds check results into a Report. The overall score is the
// unweighted mean over checks that were attempted (Applicable=true);
// inapplicable checks are excluded from the denominator, so skipping a check
// never moves the score. Tiers: <30 LOW, <60 MEDIUM, otherwise HIGH.
func Aggregate(checks map[string]CheckResult) Report {
	var sum float64
	attempted := 0

	for _, c := range checks {
		if !c.Applicable {
			continue
		}
		sum += c.RiskScore
		attempted++
	}

	var overall float64
	if attempted > 0 {
		overall = sum / float64(attempted)
	}

	return Report{
		Checks:       checks,
		OverallScore: overall,
		RiskLevel:    LevelFor(overall),
	}
}

// LevelFor maps an overall score to its risk tier.
func LevelFor(score float64) Level {
	switch {
	case score < 30:
		return LevelLow
	case score < 60:
		return LevelMedium
	default:
		return LevelHigh
	}
}
