package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const magickTool = "magick"

// magickRasterizer implements Rasterizer by invoking ImageMagick with an
// explicit density. It handles both PDF and single-image inputs; ImageMagick
// delegates PDF rendering to its ghostscript coder.
type magickRasterizer struct{}

func (m *magickRasterizer) Render(ctx context.Context, data []byte, dpi, maxPages int) ([]Page, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid dpi %d", dpi)
	}
	if maxPages <= 0 {
		maxPages = 1
	}

	dir, err := os.MkdirTemp("", "lendguard-raster-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "source")
	if err := os.WriteFile(src, data, 0600); err != nil {
		return nil, fmt.Errorf("write temp source: %w", err)
	}

	// frame range syntax limits rendering to the first maxPages pages
	input := fmt.Sprintf("%s[0-%d]", src, maxPages-1)
	pattern := filepath.Join(dir, "page-%d.png")

	_, err = runTool(ctx, magickTool,
		"-density", strconv.Itoa(dpi),
		"-units", "PixelsPerInch",
		input,
		"-background", "white",
		"-alpha", "remove",
		pattern,
	)
	if err != nil {
		return nil, err
	}

	return collectPages(dir)
}

func collectPages(dir string) ([]Page, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}

	// single-frame inputs produce page.png without a frame index
	if len(matches) == 0 {
		single := filepath.Join(dir, "page.png")
		if _, statErr := os.Stat(single); statErr == nil {
			matches = []string{single}
		}
	}

	if len(matches) == 0 {
		return nil, ErrNoOutput
	}

	sort.Slice(matches, func(i, j int) bool {
		return pageIndex(matches[i]) < pageIndex(matches[j])
	})

	pages := make([]Page, 0, len(matches))
	for i, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		pages = append(pages, Page{Number: i + 1, PNG: data})
	}

	return pages, nil
}

func pageIndex(path string) int {
	base := filepath.Base(path)
	var n int
	if _, err := fmt.Sscanf(base, "page-%d.png", &n); err != nil {
		return 0
	}
	return n
}
