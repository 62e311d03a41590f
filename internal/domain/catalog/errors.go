package catalog

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist upstream.
var ErrNotFound = errors.New("product not found")

// TransportError wraps connectivity-level failures (DNS, dial, timeout,
// truncated body). Retryable by the caller.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a non-2xx HTTP response from the catalog API.
type ProtocolError struct {
	StatusCode int
	Status     string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
}

// Is makes a 404 protocol error match ErrNotFound, so callers can use
// errors.Is without inspecting status codes.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// IsNotFound reports whether err represents a missing upstream resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
