package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lendguard/lendguard/internal/extraction"
	"github.com/lendguard/lendguard/internal/forensics"
	"github.com/lendguard/lendguard/internal/identifier"
	"github.com/lendguard/lendguard/internal/ledger"
	"github.com/lendguard/lendguard/pkg/metrics"
	"github.com/lendguard/lendguard/pkg/storage"
)

// Analyzer orchestrates one forensic analysis per call. It is stateless
// apart from the injected collaborators and safe for concurrent use.
type Analyzer struct {
	caps    *extraction.Capabilities
	ledger  ledger.System
	archive storage.System
	metrics *metrics.Metrics
	logger  *slog.Logger
	opts    Options
}

// New creates an Analyzer. The archive system may be nil to disable
// best-effort blob archival; metrics may be nil to disable instrumentation.
func New(
	caps *extraction.Capabilities,
	ldg ledger.System,
	archive storage.System,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts Options,
) *Analyzer {
	return &Analyzer{
		caps:    caps,
		ledger:  ldg,
		archive: archive,
		metrics: m,
		logger:  logger.With("system", "analysis"),
		opts:    opts.withDefaults(),
	}
}

// Analyze runs the full forensic pipeline over one document and returns its
// risk report. Signal extractors run concurrently and degrade individually;
// only an unreadable document short-circuits the pipeline, and even then a
// report is returned alongside the error.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*forensics.Report, error) {
	start := time.Now()

	pageCount, err := extraction.Preflight(req.Data, req.ContentType)
	if err != nil {
		report := a.unreadableReport(err)
		a.observe(req.DocType, report, start)
		return report, fmt.Errorf("preflight %s: %w", req.Filename, err)
	}

	checks := a.runChecks(ctx, req)

	if req.DocType == DocTypeNOA {
		checks[forensics.CheckIdentifier] = a.checkIdentifier(ctx, req)
	}

	report := forensics.Aggregate(checks)

	a.logger.Info("analysis complete",
		"file", req.Filename,
		"document_type", req.DocType,
		"pages", pageCount,
		"score", report.OverallScore,
		"risk_level", report.RiskLevel,
		"duration", time.Since(start),
	)

	a.observe(req.DocType, &report, start)
	a.archiveDocument(ctx, req)

	return &report, nil
}

// runChecks fans the five signal extractors out concurrently. Each check is
// isolated: a panic or error degrades that check alone. Layout extraction is
// shared across the three checks that need it.
func (a *Analyzer) runChecks(ctx context.Context, req Request) map[string]forensics.CheckResult {
	isPDF := extraction.IsPDF(req.ContentType)

	layout := sync.OnceValues(func() (*extraction.TextLayout, error) {
		lctx, cancel := context.WithTimeout(ctx, a.opts.CheckTimeout)
		defer cancel()
		return a.caps.Layout.Layout(lctx, req.Data)
	})

	var (
		mu      sync.Mutex
		results = make(map[string]forensics.CheckResult, 5)
	)

	record := func(name string, result forensics.CheckResult) {
		if result.Error != "" {
			a.metrics.IncrementCheckFailure(name)
			a.logger.Warn("check degraded", "check", name, "error", result.Error)
		}
		mu.Lock()
		results[name] = result
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	run := func(name string, fn func(context.Context) forensics.CheckResult) {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, a.opts.CheckTimeout)
			defer cancel()

			defer func() {
				if r := recover(); r != nil {
					record(name, forensics.Failed(fmt.Errorf("check panic: %v", r)))
				}
			}()

			record(name, fn(cctx))
			return nil
		})
	}

	run(forensics.CheckAlignment, func(cctx context.Context) forensics.CheckResult {
		if !isPDF {
			return forensics.Inapplicable("alignment analysis requires a pdf document")
		}
		l, err := layout()
		if err != nil {
			return degraded(err)
		}
		return forensics.CheckAlignmentResult(l)
	})

	run(forensics.CheckFonts, func(cctx context.Context) forensics.CheckResult {
		if !isPDF {
			return forensics.Inapplicable("font analysis requires a pdf document")
		}
		l, err := layout()
		if err != nil {
			return degraded(err)
		}
		return forensics.CheckFontsResult(l)
	})

	run(forensics.CheckNumbers, func(cctx context.Context) forensics.CheckResult {
		if !isPDF {
			return forensics.Inapplicable("number analysis requires a pdf document")
		}
		l, err := layout()
		if err != nil {
			return degraded(err)
		}
		return forensics.CheckNumbersResult(l.Text)
	})

	run(forensics.CheckMetadata, func(cctx context.Context) forensics.CheckResult {
		if !isPDF {
			return forensics.Inapplicable("metadata analysis requires a pdf document")
		}
		info, err := a.caps.Layout.Metadata(cctx, req.Data)
		if err != nil {
			return degraded(err)
		}
		return forensics.CheckMetadataResult(info, a.opts.Denylist)
	})

	run(forensics.CheckImageQuality, func(cctx context.Context) forensics.CheckResult {
		pages, err := a.caps.Raster.Render(cctx, req.Data, a.opts.QualityDPI, forensics.QualityPageLimit)
		if err != nil {
			return degraded(err)
		}
		return forensics.CheckImageQualityResult(pages)
	})

	g.Wait()
	return results
}

// checkIdentifier runs the gated OCR identifier pass and maps the ledger
// outcome to the identifier check result.
func (a *Analyzer) checkIdentifier(ctx context.Context, req Request) forensics.CheckResult {
	ictx, cancel := context.WithTimeout(ctx, a.opts.IdentifierTimeout)
	defer cancel()

	ext := identifier.New(a.caps.Raster, a.caps.OCR, a.opts.IdentifierDPI, nil)

	extracted, err := ext.Extract(ictx, req.Data)
	if err != nil {
		return degraded(err)
	}
	if extracted.Identifier == "" {
		return ledger.RiskUnextracted()
	}

	hash := sha256.Sum256(req.Data)
	cmd := ledger.InsertCommand{
		Identifier:     extracted.Identifier,
		SINFragment:    optional(extracted.SINFragment),
		IssueDate:      extracted.IssueDate,
		DocumentHash:   hex.EncodeToString(hash[:]),
		SourceFileName: req.Filename,
		UploadedAt:     time.Now().UTC(),
	}

	outcome, err := a.ledger.InsertIfAbsent(ctx, cmd)
	if err != nil {
		return forensics.Failed(fmt.Errorf("ledger insert: %w", err))
	}

	if !outcome.Inserted {
		a.metrics.IncrementDuplicate()
		if _, err := a.ledger.RecordDuplicate(ctx, extracted.Identifier, req.Filename); err != nil {
			a.logger.Error("record duplicate event", "identifier", extracted.Identifier, "error", err)
		}
	}

	return ledger.RiskForOutcome(outcome)
}

// unreadableReport builds the report for a document that failed preflight:
// every check carries the shared error.
func (a *Analyzer) unreadableReport(err error) *forensics.Report {
	checks := make(map[string]forensics.CheckResult, 5)
	for _, name := range []string{
		forensics.CheckAlignment,
		forensics.CheckFonts,
		forensics.CheckMetadata,
		forensics.CheckNumbers,
		forensics.CheckImageQuality,
	} {
		checks[name] = forensics.Failed(err)
	}

	report := forensics.Aggregate(checks)
	return &report
}

func (a *Analyzer) observe(docType DocType, report *forensics.Report, start time.Time) {
	a.metrics.ObserveAnalysis(string(docType), string(report.RiskLevel), time.Since(start))
}

// degraded maps a capability or timeout error to an inapplicable check
// result so missing tools and deadlines never fail the analysis.
func degraded(err error) forensics.CheckResult {
	switch {
	case errors.Is(err, extraction.ErrUnavailable):
		return forensics.CheckResult{Applicable: false, Error: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return forensics.CheckResult{Applicable: false, Error: "timed out"}
	default:
		return forensics.Failed(err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
