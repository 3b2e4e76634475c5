package analysis

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lendguard/lendguard/internal/extraction"
	"github.com/lendguard/lendguard/pkg/handlers"
	"github.com/lendguard/lendguard/pkg/routes"
)

// Handler errors surfaced to clients.
var (
	ErrInvalidFile  = errors.New("a file upload is required")
	ErrFileTooLarge = errors.New("uploaded file exceeds the size limit")
)

// Handler provides the HTTP endpoint for forensic analysis.
type Handler struct {
	analyzer      *Analyzer
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given analyzer, logger, and upload size limit.
func NewHandler(analyzer *Analyzer, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		analyzer:      analyzer,
		logger:        logger.With("handler", "forensics"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for analysis endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/forensics",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Analyze},
		},
	}
}

// Analyze processes a multipart form upload containing a file and its
// declared document type, and returns the forensic risk report.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	req := Request{
		Data:        data,
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		DocType:     ParseDocType(r.FormValue("document_type")),
	}

	report, err := h.analyzer.Analyze(r.Context(), req)
	if err != nil {
		if errors.Is(err, extraction.ErrUnreadable) {
			handlers.RespondError(w, h.logger, http.StatusUnprocessableEntity, err)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
