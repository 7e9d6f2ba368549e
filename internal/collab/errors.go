package collab

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the collaborator API answers 404.
var ErrNotFound = errors.New("collab: not found")

// APIError is a non-2xx answer. Message is the server's {error} field and
// may be empty. A 404 matches ErrNotFound.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("collab: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("collab: status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Message extracts the server-provided message from err, if any.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
