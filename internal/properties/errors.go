package properties

import (
	"errors"
	"net/http"
)

// Domain errors for property operations.
var (
	ErrValidation  = errors.New("invalid property request")
	ErrNotFound    = errors.New("property not found")
	ErrStorageIO   = errors.New("image storage failure")
	ErrPersistence = errors.New("property store failure")
)

// MapHTTPStatus maps property domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
