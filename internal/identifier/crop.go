package identifier

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// crop cuts a fractional region out of a PNG page and re-encodes it.
func crop(data []byte, r region) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	bounds := img.Bounds()
	rect := image.Rect(
		bounds.Min.X+int(float64(bounds.Dx())*r.left),
		bounds.Min.Y+int(float64(bounds.Dy())*r.top),
		bounds.Min.X+int(float64(bounds.Dx())*r.right),
		bounds.Min.Y+int(float64(bounds.Dy())*r.bottom),
	)

	sub, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("decode page: %T does not support cropping", img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("encode region: %w", err)
	}
	return buf.Bytes(), nil
}
