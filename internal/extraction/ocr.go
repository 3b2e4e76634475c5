package extraction

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const tesseractTool = "tesseract"

// tesseractOCR implements OCRProvider by piping the image through the
// tesseract CLI. ModeSparse maps to page segmentation mode 11 (sparse text),
// ModeBlock to mode 6 (uniform block).
type tesseractOCR struct{}

func (t *tesseractOCR) Recognize(ctx context.Context, png []byte, mode TextMode) (string, error) {
	psm := "6"
	if mode == ModeSparse {
		psm = "11"
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, tesseractTool, "stdin", "stdout", "--psm", psm)
	cmd.Stdin = bytes.NewReader(png)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s: %w: %s", tesseractTool, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
