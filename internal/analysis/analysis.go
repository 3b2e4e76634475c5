// Package analysis implements the forensic orchestrator. It fans the signal
// extractors out over an uploaded document, gates identifier extraction on
// document type, consults the duplicate ledger, and folds everything into a
// single risk report.
package analysis

import "time"

// DocType identifies the declared document type of an upload.
type DocType string

const (
	// DocTypeNOA is a notice of assessment. It carries a unique identifier
	// and is the only type gated through the ledger.
	DocTypeNOA DocType = "noa"
	// DocTypeT1 is a T1 income tax return.
	DocTypeT1 DocType = "t1"
	// DocTypeUnknown covers undeclared or unrecognized types.
	DocTypeUnknown DocType = "unknown"
)

// ParseDocType normalizes a declared document type. Unrecognized values
// degrade to DocTypeUnknown rather than erroring; type-specific checks are
// simply skipped.
func ParseDocType(s string) DocType {
	switch DocType(s) {
	case DocTypeNOA, DocTypeT1:
		return DocType(s)
	default:
		return DocTypeUnknown
	}
}

// Request carries one document through analysis.
type Request struct {
	Data        []byte
	Filename    string
	ContentType string
	DocType     DocType
}

// Options tunes orchestrator behavior. Zero values select the defaults.
type Options struct {
	// CheckTimeout bounds each signal extractor individually.
	CheckTimeout time.Duration
	// IdentifierTimeout bounds the OCR identifier pass, which rasterizes
	// at high resolution and is the slowest stage.
	IdentifierTimeout time.Duration
	// QualityDPI is the raster resolution for the image quality check.
	QualityDPI int
	// IdentifierDPI is the raster resolution for identifier OCR.
	IdentifierDPI int
	// Denylist overrides the consumer-tool producer denylist.
	Denylist []string
}

func (o Options) withDefaults() Options {
	if o.CheckTimeout <= 0 {
		o.CheckTimeout = 30 * time.Second
	}
	if o.IdentifierTimeout <= 0 {
		o.IdentifierTimeout = 60 * time.Second
	}
	if o.QualityDPI <= 0 {
		o.QualityDPI = 150
	}
	if o.IdentifierDPI <= 0 {
		o.IdentifierDPI = 300
	}
	return o
}
