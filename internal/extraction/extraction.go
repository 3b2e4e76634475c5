// Package extraction defines the capability contracts the forensic engine
// depends on (text/layout extraction, page rasterization, and OCR) along
// with implementations backed by the poppler, ImageMagick, and tesseract
// command-line tools. Capabilities are resolved once at startup; a missing
// tool yields an unavailable implementation whose methods return
// ErrUnavailable so dependent checks can degrade instead of failing the
// whole analysis.
package extraction

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
)

var (
	// ErrUnavailable indicates the backing system capability is not installed.
	ErrUnavailable = errors.New("capability unavailable")
	// ErrNoOutput indicates the backing tool produced no usable output.
	ErrNoOutput = errors.New("no output produced")
)

// Word is a single extracted word with its bounding box in page points.
type Word struct {
	Text   string
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// PageText holds the positioned words of one page.
type PageText struct {
	Number int
	Width  float64
	Height float64
	Words  []Word
}

// FontUsage describes one font referenced by the document.
type FontUsage struct {
	Name     string
	Type     string
	Embedded bool
}

// TextLayout is the full text/layout representation of a document:
// positioned words per page, the font-usage table, and the plain text.
type TextLayout struct {
	Pages []PageText
	Fonts []FontUsage
	Text  string
}

// DocumentInfo is the document metadata dictionary. Present is false when
// the document carries no metadata at all.
type DocumentInfo struct {
	Present      bool
	Producer     string
	Creator      string
	CreationDate string
	ModDate      string
}

// Page is a single rasterized page image.
type Page struct {
	Number int
	PNG    []byte
}

// TextMode selects the OCR page-segmentation behavior.
type TextMode int

const (
	// ModeBlock assumes a uniform block of text.
	ModeBlock TextMode = iota
	// ModeSparse finds text in no particular order; suited to cropped
	// regions containing isolated labels and codes.
	ModeSparse
)

// LayoutExtractor produces the text/layout representation and metadata
// dictionary of a document.
type LayoutExtractor interface {
	Layout(ctx context.Context, data []byte) (*TextLayout, error)
	Metadata(ctx context.Context, data []byte) (*DocumentInfo, error)
}

// Rasterizer renders document pages to images at a target resolution.
type Rasterizer interface {
	Render(ctx context.Context, data []byte, dpi, maxPages int) ([]Page, error)
}

// OCRProvider recognizes text in a rasterized image region.
type OCRProvider interface {
	Recognize(ctx context.Context, png []byte, mode TextMode) (string, error)
}

// Capabilities bundles the resolved capability set injected into the
// orchestrator. Every field is non-nil; missing tools are represented by
// unavailable implementations.
type Capabilities struct {
	Layout LayoutExtractor
	Raster Rasterizer
	OCR    OCRProvider
}

// Resolve probes the required external tools once and returns the resulting
// capability set. Absent tools are logged and replaced with unavailable
// implementations.
func Resolve(logger *slog.Logger) *Capabilities {
	logger = logger.With("system", "extraction")
	caps := &Capabilities{
		Layout: unavailableLayout{},
		Raster: unavailableRaster{},
		OCR:    unavailableOCR{},
	}

	if path, err := exec.LookPath(popplerTextTool); err == nil {
		caps.Layout = &popplerExtractor{}
		logger.Info("layout extractor resolved", "tool", path)
	} else {
		logger.Warn("layout extraction unavailable", "tool", popplerTextTool)
	}

	if path, err := exec.LookPath(magickTool); err == nil {
		caps.Raster = &magickRasterizer{}
		logger.Info("rasterizer resolved", "tool", path)
	} else {
		logger.Warn("rasterization unavailable", "tool", magickTool)
	}

	if path, err := exec.LookPath(tesseractTool); err == nil {
		caps.OCR = &tesseractOCR{}
		logger.Info("ocr provider resolved", "tool", path)
	} else {
		logger.Warn("ocr unavailable", "tool", tesseractTool)
	}

	return caps
}

type unavailableLayout struct{}

func (unavailableLayout) Layout(context.Context, []byte) (*TextLayout, error) {
	return nil, ErrUnavailable
}

func (unavailableLayout) Metadata(context.Context, []byte) (*DocumentInfo, error) {
	return nil, ErrUnavailable
}

type unavailableRaster struct{}

func (unavailableRaster) Render(context.Context, []byte, int, int) ([]Page, error) {
	return nil, ErrUnavailable
}

type unavailableOCR struct{}

func (unavailableOCR) Recognize(context.Context, []byte, TextMode) (string, error) {
	return "", ErrUnavailable
}
