package swapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid swapi configuration")
	// ErrEmptyID indicates a lookup without an identifier
	ErrEmptyID = errors.New("empty identifier")
)

// FetchError is returned when SWAPI answers with a non-2xx status
type FetchError struct {
	Status     int
	StatusText string
	URL        string
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch: %s", e.StatusText)
}

// IsNotFound checks if the error indicates a not found response
func (e *FetchError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsNotFound reports whether err wraps a 404 FetchError
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.IsNotFound()
}
