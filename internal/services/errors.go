package services

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the analysis pipeline. Permanent errors fail a
// job immediately; transient errors are retried until the budget runs
// out.
var (
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrCorruptDocument      = errors.New("corrupt document")
	ErrTransient            = errors.New("transient resource unavailable")
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
)

// Transient wraps err so that IsTransient reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// IsPermanent reports whether err should terminate the job without
// further retries.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrCorruptDocument)
}

// IsTransient reports whether err is eligible for retry. Anything that
// is not classified permanent is treated as transient, so unknown
// failures get the retry budget rather than an instant terminal state.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !IsPermanent(err)
}
