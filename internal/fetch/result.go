package fetch

// Result is either a decoded value of type T or a fetch failure.
// The zero Result is a success holding the zero value of T.
type Result[T any] struct {
	value T
	err   *Error
}

// Success returns a successful Result holding v.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure returns a failed Result. err must not be nil.
func Failure[T any](err *Error) Result[T] {
	return Result[T]{err: err}
}

// IsSuccess reports whether the Result holds a value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the decoded value, or the zero value of T on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// Kind returns the failure kind, or zero on success.
func (r Result[T]) Kind() ErrorKind {
	if r.err == nil {
		return 0
	}
	return r.err.Kind
}

// Get returns the value and the failure in the usual Go shape.
func (r Result[T]) Get() (T, error) {
	return r.value, r.Err()
}
