package analysis

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// archiveDocument uploads the analyzed bytes to blob storage for later
// review. Archival is best effort: failures are logged and never affect the
// returned report.
func (a *Analyzer) archiveDocument(ctx context.Context, req Request) {
	if a.archive == nil {
		return
	}

	key := archiveKey(req.DocType, req.Filename)
	if err := a.archive.Upload(ctx, key, bytes.NewReader(req.Data), req.ContentType); err != nil {
		a.logger.Warn("archive upload failed", "key", key, "error", err)
		return
	}

	a.logger.Info("document archived", "key", key)
}

func archiveKey(docType DocType, filename string) string {
	return fmt.Sprintf(
		"analyses/%s/%s/%s-%s",
		docType,
		time.Now().UTC().Format("2006-01-02"),
		uuid.NewString(),
		sanitizeFilename(filename),
	)
}

// sanitizeFilename keeps archive keys within the storage key constraints.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "document"
	}
	return name
}
