package forensics

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lendguard/lendguard/internal/extraction"
)

const (
	// rowTolerance is the vertical gap (points) that separates two rows.
	rowTolerance = 3.0
	// alignmentThreshold is the within-row top-coordinate spread (points)
	// beyond which a row counts as misaligned.
	alignmentThreshold = 1.5
)

// DefaultDenylist names consumer editing tools whose appearance in the
// producer or creator metadata of a government form is a forgery signal.
var DefaultDenylist = []string{
	"Word", "LibreOffice", "Google Docs",
	"Smallpdf", "iLovePDF", "CorelDRAW",
	"Photoshop", "Illustrator", "Canva", "Inkscape",
}

// CheckAlignmentResult inspects the vertical alignment of text rows. Words
// are clustered into rows by proximity of their top coordinates; a row of
// two or more words whose tops spread beyond the threshold is an issue.
func CheckAlignmentResult(layout *extraction.TextLayout) CheckResult {
	if layout == nil || countWords(layout) == 0 {
		return Inapplicable("no extractable text lines")
	}

	issues := 0
	for _, page := range layout.Pages {
		for _, row := range clusterRows(page.Words) {
			if len(row) < 2 {
				continue
			}
			minTop, maxTop := row[0].Top, row[0].Top
			for _, w := range row[1:] {
				minTop = min(minTop, w.Top)
				maxTop = max(maxTop, w.Top)
			}
			if maxTop-minTop > alignmentThreshold {
				issues++
			}
		}
	}

	var score float64
	var flags []string
	switch {
	case issues > 10:
		score = 80
		flags = append(flags, fmt.Sprintf("severe text misalignment (%d rows)", issues))
	case issues > 5:
		score = 50
		flags = append(flags, fmt.Sprintf("notable text misalignment (%d rows)", issues))
	case issues > 0:
		score = 20
		flags = append(flags, fmt.Sprintf("minor text misalignment (%d rows)", issues))
	}

	return CheckResult{RiskScore: score, Flags: flags, Applicable: true}
}

// clusterRows groups words into rows: sorted by top coordinate, a new row
// starts whenever the gap to the previous word exceeds rowTolerance.
func clusterRows(words []extraction.Word) [][]extraction.Word {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]extraction.Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })

	rows := [][]extraction.Word{{sorted[0]}}
	for _, w := range sorted[1:] {
		last := rows[len(rows)-1]
		if w.Top-last[len(last)-1].Top > rowTolerance {
			rows = append(rows, []extraction.Word{w})
			continue
		}
		rows[len(rows)-1] = append(last, w)
	}

	return rows
}

func countWords(layout *extraction.TextLayout) int {
	n := 0
	for _, page := range layout.Pages {
		n += len(page.Words)
	}
	return n
}

// CheckFontsResult scores font sprawl. Professionally generated forms embed
// few fonts; consumer editors introduce many.
func CheckFontsResult(layout *extraction.TextLayout) CheckResult {
	if layout == nil || len(layout.Fonts) == 0 {
		return Inapplicable("no font information")
	}

	distinct := make(map[string]struct{}, len(layout.Fonts))
	for _, f := range layout.Fonts {
		distinct[f.Name] = struct{}{}
	}
	count := len(distinct)

	var score float64
	var flags []string
	switch {
	case count > 15:
		score = 80
		flags = append(flags, fmt.Sprintf("very high font variation (%d fonts)", count))
	case count > 10:
		score = 60
		flags = append(flags, fmt.Sprintf("high font variation (%d fonts)", count))
	case count > 6:
		score = 30
		flags = append(flags, fmt.Sprintf("moderate font variation (%d fonts)", count))
	}

	return CheckResult{RiskScore: score, Flags: flags, Applicable: true}
}

// CheckMetadataResult inspects the metadata dictionary against a denylist of
// consumer editing tools. Each match adds 35; a modification date differing
// from the creation date adds 15; total bounded at 100. A document with no
// metadata at all scores 30.
func CheckMetadataResult(info *extraction.DocumentInfo, denylist []string) CheckResult {
	if info == nil || !info.Present {
		return CheckResult{
			RiskScore:  30,
			Flags:      []string{"no metadata found"},
			Applicable: true,
		}
	}

	if len(denylist) == 0 {
		denylist = DefaultDenylist
	}

	var score float64
	var flags []string

	producer := strings.ToLower(info.Producer)
	creator := strings.ToLower(info.Creator)
	for _, tool := range denylist {
		needle := strings.ToLower(tool)
		if strings.Contains(producer, needle) || strings.Contains(creator, needle) {
			flags = append(flags, fmt.Sprintf("created with consumer tool: %s", tool))
			score += 35
		}
	}

	if info.CreationDate != "" && info.ModDate != "" && info.CreationDate != info.ModDate {
		flags = append(flags, "document modified after creation")
		score += 15
	}

	return CheckResult{RiskScore: min(score, 100), Flags: flags, Applicable: true}
}

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// CheckNumbersResult scores numeric formatting consistency. Numeric tokens
// are classified by decimal precision (integer, one decimal, two decimals,
// or more); legitimate financial forms use one dominant convention.
func CheckNumbersResult(text string) CheckResult {
	tokens := numberPattern.FindAllString(text, -1)
	if len(tokens) == 0 {
		return Inapplicable("no numeric tokens")
	}

	classes := make(map[string]int)
	for _, tok := range tokens {
		classes[precisionClass(tok)]++
	}

	var score float64
	var flags []string
	switch {
	case len(classes) >= 4:
		score = 40
		flags = append(flags, fmt.Sprintf("high precision variation (%d classes)", len(classes)))
	case len(classes) == 3:
		score = 20
		flags = append(flags, fmt.Sprintf("moderate precision variation (%d classes)", len(classes)))
	}

	return CheckResult{RiskScore: score, Flags: flags, Applicable: true}
}

func precisionClass(token string) string {
	_, frac, found := strings.Cut(token, ".")
	if !found {
		return "integer"
	}
	switch len(frac) {
	case 1:
		return "one-decimal"
	case 2:
		return "two-decimal"
	default:
		return "other"
	}
}
