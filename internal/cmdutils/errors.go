package cmdutils

import (
	"github.com/pkg/errors"
)

// SilentError wraps an error which was already reported to the user.
// main still exits non-zero on it but doesn't print it again.
type SilentError struct {
	err error
}

func (e *SilentError) Error() string {
	return e.err.Error()
}

func (e *SilentError) Unwrap() error {
	return e.err
}

func WrapSilentError(err error) error {
	return &SilentError{err: err}
}

func IsSilentError(err error) bool {
	var silentErr *SilentError
	return errors.As(err, &silentErr)
}

// IncorrectUsageError indicates that the command was invoked with an
// invalid argument or flag combination. It is reported before any work
// is performed, together with the command's usage message.
type IncorrectUsageError struct {
	err error
}

func (e *IncorrectUsageError) Error() string {
	return e.err.Error()
}

func (e *IncorrectUsageError) Unwrap() error {
	return e.err
}

func WrapIncorrectUsageError(err error) error {
	return &IncorrectUsageError{err: err}
}

func NewIncorrectUsageError(format string, args ...any) error {
	return &IncorrectUsageError{err: errors.Errorf(format, args...)}
}

func IsIncorrectUsageError(err error) bool {
	var usageErr *IncorrectUsageError
	return errors.As(err, &usageErr)
}
