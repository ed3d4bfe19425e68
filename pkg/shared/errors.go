package shared

import "github.com/pkg/errors"

// FatalError marks errors the client cannot recover from within the
// current connection, e.g. a dead socket. Everything else degrades to
// "skip this one operation and continue".
type FatalError struct {
	err error
}

func (e FatalError) Error() string { return e.err.Error() }

func (e FatalError) Unwrap() error { return e.err }

// FatalErr wraps err as fatal. Wrapping nil returns nil.
func FatalErr(err error) error {
	if err == nil {
		return nil
	}
	return FatalError{err: err}
}

func IsFatal(err error) bool {
	var fe FatalError
	return errors.As(err, &fe)
}
