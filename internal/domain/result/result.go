// Package result provides the tagged result type used for every asynchronous
// catalog call: a value is always in exactly one of four states, and consumers
// are expected to switch exhaustively on State.
package result

// State enumerates the four result variants.
type State uint8

const (
	// StateLoading is the sentinel initial state: a call is in flight and no
	// payload exists yet.
	StateLoading State = iota
	// StateSuccess carries a non-empty payload.
	StateSuccess
	// StateEmpty marks a successful call that produced zero items. It is kept
	// distinct from StateSuccess so consumers can render "nothing here"
	// instead of an empty list.
	StateEmpty
	// StateError carries a human-readable message, an optional status code,
	// and the underlying cause for diagnostics.
	StateError
)

// String returns the lowercase variant name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is a discriminated union over T. The zero value is Loading.
type Result[T any] struct {
	state   State
	data    T
	message string
	code    int
	cause   error
}

// Loading returns the in-flight sentinel.
func Loading[T any]() Result[T] {
	return Result[T]{state: StateLoading}
}

// Success wraps a non-empty payload. Callers are responsible for mapping
// zero-item payloads to Empty instead.
func Success[T any](data T) Result[T] {
	return Result[T]{state: StateSuccess, data: data}
}

// Empty marks a successful call with zero items.
func Empty[T any]() Result[T] {
	return Result[T]{state: StateEmpty}
}

// Error wraps a failure. The cause is retained for logging only and must not
// be required for control flow.
func Error[T any](message string, cause error) Result[T] {
	return Result[T]{state: StateError, message: message, cause: cause}
}

// ErrorCode wraps a protocol-level failure carrying an HTTP status code.
func ErrorCode[T any](message string, cause error, code int) Result[T] {
	return Result[T]{state: StateError, message: message, cause: cause, code: code}
}

// State reports which variant this result holds.
func (r Result[T]) State() State { return r.state }

// Data returns the payload. Meaningful only for StateSuccess; other states
// return the zero value.
func (r Result[T]) Data() T { return r.data }

// Message returns the human-readable error message, or "" outside StateError.
func (r Result[T]) Message() string { return r.message }

// StatusCode returns the HTTP status code of a protocol-level failure.
// The second return is false when no code applies (transport or unexpected
// failures, or non-error states).
func (r Result[T]) StatusCode() (int, bool) {
	return r.code, r.code != 0
}

// Cause returns the underlying error for diagnostics, or nil.
func (r Result[T]) Cause() error { return r.cause }
