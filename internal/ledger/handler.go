package ledger

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/lendguard/lendguard/pkg/handlers"
	"github.com/lendguard/lendguard/pkg/pagination"
	"github.com/lendguard/lendguard/pkg/routes"
)

// Handler provides HTTP endpoints for ledger operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "ledger"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for ledger endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/ledger",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/records", Handler: h.List},
			{Method: "GET", Pattern: "/records/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/records/identifier/{identifier}", Handler: h.FindByIdentifier},
			{Method: "POST", Pattern: "/records/search", Handler: h.Search},
			{Method: "GET", Pattern: "/duplicates", Handler: h.ListDuplicates},
		},
	}
}

// List returns a paginated list of identifier records with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single identifier record by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// FindByIdentifier returns the record for the identifier path parameter.
func (h *Handler) FindByIdentifier(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("identifier")
	if identifier == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyIdentifier)
		return
	}

	rec, err := h.sys.FindByIdentifier(r.Context(), identifier)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching records.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ListDuplicates returns a paginated list of duplicate detection events.
func (h *Handler) ListDuplicates(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := DuplicateFiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListDuplicates(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
