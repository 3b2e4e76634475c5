package ledger

import (
	"errors"
	"net/http"
)

// Domain errors for ledger operations.
var (
	ErrNotFound        = errors.New("identifier record not found")
	ErrDuplicate       = errors.New("identifier record already exists")
	ErrEmptyIdentifier = errors.New("identifier must not be empty")
)

// MapHTTPStatus maps ledger domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyIdentifier) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
