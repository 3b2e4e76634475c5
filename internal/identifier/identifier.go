// Package identifier extracts the unique assessment-notice identifier and
// auxiliary fields (masked-SIN fragment, issue date) from the first page of
// a document via cropped-region OCR. Extraction is best effort: ambiguity
// and OCR noise degrade to "not extracted", never to a fault.
package identifier

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lendguard/lendguard/internal/extraction"
)

// MinDPI is the lowest raster resolution at which the small identifier
// typeface OCRs reliably.
const MinDPI = 300

// region is a crop rectangle in page fractions, tuned to the assessment
// notice layout.
type region struct {
	left, top, right, bottom float64
}

var (
	// the identifier block sits in the upper-right band of page one
	codeRegion = region{left: 0.50, top: 0.05, right: 1.00, bottom: 0.35}
	// masked SIN and notice date appear across the upper band
	headerRegion = region{left: 0.00, top: 0.05, right: 1.00, bottom: 0.35}
)

var (
	// primary: the identifier starts with a digit, eight characters total
	codePrimary = regexp.MustCompile(`\b[0-9][A-Z0-9]{7}\b`)
	// secondary: any eight-character alphanumeric token
	codeSecondary = regexp.MustCompile(`\b[A-Z0-9]{8}\b`)
	// last resort: tolerate one dropped or added character
	codeLoose = regexp.MustCompile(`\b[A-Z0-9]{7,9}\b`)

	sinPattern  = regexp.MustCompile(`[X*]{3}\s?[X*]{2}\d\s?\d{3}`)
	datePattern = regexp.MustCompile(`(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}`)

	digitsOnly = regexp.MustCompile(`\d`)
)

// Confusion is one character substitution applied during OCR cleanup. The
// table is data, not code: it encodes observed OCR failure patterns for the
// identifier typeface and is overridable through configuration.
type Confusion struct {
	From string
	To   string
}

// DefaultCorrections holds the documented confusion pairs. They are applied
// only when the primary pattern fails to match, so legitimate letters in a
// well-read code are never rewritten.
var DefaultCorrections = []Confusion{
	{From: "O", To: "0"},
	{From: "S", To: "5"},
	{From: "I", To: "1"},
	{From: "B", To: "8"},
}

// Extraction is the result of one identifier pass. Every field is
// independently optional; a zero Identifier means extraction failed.
type Extraction struct {
	Identifier  string
	SINFragment string
	IssueDate   *time.Time
}

// Extractor performs OCR-based identifier extraction using the injected
// rasterization and OCR capabilities.
type Extractor struct {
	raster      extraction.Rasterizer
	ocr         extraction.OCRProvider
	dpi         int
	corrections []Confusion
}

// New creates an Extractor. A dpi below MinDPI is raised to MinDPI; a nil
// corrections slice selects DefaultCorrections.
func New(raster extraction.Rasterizer, ocr extraction.OCRProvider, dpi int, corrections []Confusion) *Extractor {
	if dpi < MinDPI {
		dpi = MinDPI
	}
	if corrections == nil {
		corrections = DefaultCorrections
	}
	return &Extractor{
		raster:      raster,
		ocr:         ocr,
		dpi:         dpi,
		corrections: corrections,
	}
}

// Extract rasterizes page one, crops the identifier and header regions, and
// runs sparse-text OCR over each. It returns extraction.ErrUnavailable
// unwrapped when a required capability is missing so callers can take the
// designed degradation path.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*Extraction, error) {
	pages, err := e.raster.Render(ctx, data, e.dpi, 1)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("render first page: %w", extraction.ErrNoOutput)
	}

	result := &Extraction{}

	codeText, err := e.readRegion(ctx, pages[0].PNG, codeRegion)
	if err != nil {
		return nil, err
	}
	result.Identifier = FindIdentifier(codeText, e.corrections)

	// auxiliary fields are opportunistic: a failed header read loses them
	// without losing the identifier
	headerText, err := e.readRegion(ctx, pages[0].PNG, headerRegion)
	if err == nil {
		result.SINFragment = findSINFragment(headerText)
		result.IssueDate = findIssueDate(headerText)
	}

	return result, nil
}

func (e *Extractor) readRegion(ctx context.Context, png []byte, r region) (string, error) {
	cropped, err := crop(png, r)
	if err != nil {
		return "", fmt.Errorf("crop region: %w", err)
	}
	return e.ocr.Recognize(ctx, cropped, extraction.ModeSparse)
}

// FindIdentifier locates the identifier in OCR output. The cascade: primary
// pattern on the normalized text; then the leading-insertion rule (a
// nine-character token whose trailing eight characters match the primary
// pattern); then the confusion table followed by a primary retry; then the
// secondary and loose patterns. More than one distinct candidate is
// ambiguity and yields no identifier.
func FindIdentifier(text string, corrections []Confusion) string {
	normalized := normalize(text)

	if id := single(codePrimary.FindAllString(normalized, -1)); id != "" {
		return id
	}

	var trimmed []string
	for tok := range strings.FieldsSeq(normalized) {
		if len(tok) == 9 && codePrimary.MatchString(tok[1:]) {
			trimmed = append(trimmed, tok[1:])
		}
	}
	if id := single(trimmed); id != "" {
		return id
	}

	corrected := normalized
	for _, c := range corrections {
		corrected = strings.ReplaceAll(corrected, c.From, c.To)
	}
	if id := single(codePrimary.FindAllString(corrected, -1)); id != "" {
		return id
	}

	if id := single(withDigits(codeSecondary.FindAllString(normalized, -1))); id != "" {
		return id
	}
	return single(withDigits(codeLoose.FindAllString(normalized, -1)))
}

func findSINFragment(text string) string {
	m := sinPattern.FindString(normalize(text))
	if m == "" {
		return ""
	}
	return strings.Join(digitsOnly.FindAllString(m, -1), "")
}

func findIssueDate(text string) *time.Time {
	m := datePattern.FindString(text)
	if m == "" {
		return nil
	}
	t, err := time.Parse("January 2, 2006", m)
	if err != nil {
		return nil
	}
	return &t
}

func normalize(text string) string {
	return strings.ToUpper(strings.Join(strings.Fields(text), " "))
}

// single returns the sole distinct candidate, or "" when there are none or
// several (extraction ambiguity).
func single(candidates []string) string {
	distinct := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		distinct[c] = struct{}{}
	}
	if len(distinct) != 1 {
		return ""
	}
	return candidates[0]
}

// withDigits drops candidates without any digit; the identifier always
// carries at least one, and the filter keeps uppercase words out of the
// looser patterns.
func withDigits(candidates []string) []string {
	kept := candidates[:0]
	for _, c := range candidates {
		if digitsOnly.MatchString(c) {
			kept = append(kept, c)
		}
	}
	return kept
}
