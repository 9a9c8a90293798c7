package neterr

import "errors"

// Is and Unwrap re-export the standard errors helpers so callers
// matching a result against this package's sentinel errors do not
// need a second import.

func Is(err error, target error) bool {
	return errors.Is(err, target)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}
