// Package result provides a tagged Ok/Err outcome for boundaries that need
// to carry an operation's outcome as a single value.
package result

// Result holds either a value (Ok) or an error (Err), selected by the tag.
// The zero value is an Ok holding the zero T.
type Result[T any] struct {
	err   error
	value T
	isErr bool
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{value: v} }

// Err wraps a failure. A nil error is kept as is: the tag, not the error
// value, decides the variant.
func Err[T any](err error) Result[T] { return Result[T]{err: err, isErr: true} }

// Of lifts a conventional (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}

// IsOk reports whether r is the Ok variant.
func (r Result[T]) IsOk() bool { return !r.isErr }

// IsErr reports whether r is the Err variant.
func (r Result[T]) IsErr() bool { return r.isErr }

// Value returns the Ok value; ok is false for Err.
func (r Result[T]) Value() (v T, ok bool) {
	if r.isErr {
		return v, false
	}
	return r.value, true
}

// Failure returns the Err error; ok is false for Ok.
func (r Result[T]) Failure() (err error, ok bool) {
	if !r.isErr {
		return nil, false
	}
	return r.err, true
}

// Unpack converts back to a (value, error) pair.
func (r Result[T]) Unpack() (T, error) {
	var zero T
	if r.isErr {
		return zero, r.err
	}
	return r.value, nil
}

// Match calls exactly one of the handlers, depending on the variant.
func Match[T, R any](r Result[T], onOk func(T) R, onErr func(error) R) R {
	if r.isErr {
		return onErr(r.err)
	}
	return onOk(r.value)
}

// AndThen chains a fallible step; an Err short-circuits unchanged.
func AndThen[T, U any](r Result[T], next func(T) Result[U]) Result[U] {
	if r.isErr {
		return Err[U](r.err)
	}
	return next(r.value)
}

// Map transforms the Ok value.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.isErr {
		return Err[U](r.err)
	}
	return Ok(f(r.value))
}
