// multierr combines multiple errors into one, primarily for deferred
// cleanup paths where a close failure must not clobber the original error.
package multierr

import "errors"

// Join returns an error wrapping the given errors, discarding any nil
// values. Returns nil if every error is nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
