package extraction

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrUnreadable indicates the document bytes could not be read as either a
// PDF or a supported image; the whole analysis fails with this error.
var ErrUnreadable = errors.New("document unreadable")

// Preflight verifies that the document bytes are structurally readable and
// returns the page count (1 for images). This is the only fatal gate in an
// analysis: everything downstream is fault-isolated per check.
func Preflight(data []byte, contentType string) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty document", ErrUnreadable)
	}

	if IsPDF(contentType) {
		count, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		return count, nil
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return 1, nil
}

// IsPDF reports whether the content type names a PDF document.
func IsPDF(contentType string) bool {
	return strings.HasPrefix(contentType, "application/pdf")
}
