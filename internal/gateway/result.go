package gateway

// Result is the outcome of one backend call: either a value or a failure
// carrying the empty-shaped default that callers render instead.
type Result[T any] struct {
	value    T
	fallback T
	err      *FetchError
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a failure with the value to use in its place.
func Fail[T any](err *FetchError, fallback T) Result[T] {
	return Result[T]{fallback: fallback, err: err}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// FetchErr returns the typed failure, or nil.
func (r Result[T]) FetchErr() *FetchError {
	return r.err
}

// OrDefault returns the value, or the empty-shaped default on failure.
func (r Result[T]) OrDefault() T {
	if r.err != nil {
		return r.fallback
	}
	return r.value
}
