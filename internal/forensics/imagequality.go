package forensics

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/lendguard/lendguard/internal/extraction"
)

const (
	// SharpnessFloor is the Laplacian-variance value below which a page is
	// considered blurry.
	SharpnessFloor = 100.0
	// sharpnessRatioLimit is the max/min per-page sharpness ratio beyond
	// which scan quality is considered inconsistent across pages.
	sharpnessRatioLimit = 3.0
	// QualityPageLimit caps how many pages the quality check rasterizes.
	QualityPageLimit = 3
)

// CheckImageQualityResult scores scan quality over rasterized pages. Each
// page's sharpness is the variance of its Laplacian; a page below the floor
// contributes base risk 30, and a wide spread between the sharpest and
// blurriest page adds 25 as evidence of pasted content.
func CheckImageQualityResult(pages []extraction.Page) CheckResult {
	if len(pages) == 0 {
		return Inapplicable("no page rasters available")
	}

	sharpness := make([]float64, 0, len(pages))
	for _, p := range pages {
		img, err := png.Decode(bytes.NewReader(p.PNG))
		if err != nil {
			return Failed(fmt.Errorf("decode page %d raster: %w", p.Number, err))
		}
		sharpness = append(sharpness, laplacianVariance(toGray(img)))
	}

	var score float64
	var flags []string

	lo, hi := sharpness[0], sharpness[0]
	for _, s := range sharpness[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}

	if lo < SharpnessFloor {
		flags = append(flags, fmt.Sprintf("low sharpness (%.1f)", lo))
		score = 30
	}

	if len(sharpness) > 1 && lo > 0 && hi/lo > sharpnessRatioLimit {
		flags = append(flags, fmt.Sprintf("inconsistent sharpness across pages (%.1fx)", hi/lo))
		score += 25
	}

	return CheckResult{RiskScore: min(score, 100), Flags: flags, Applicable: true}
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// laplacianVariance applies the 4-neighbor Laplacian kernel and returns the
// variance of the response. Low variance means few edges: a blurry page.
func laplacianVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	var sum, sumSq float64
	n := 0

	at := func(x, y int) float64 {
		return float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			sum += v
			sumSq += v * v
			n++
		}
	}

	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}
