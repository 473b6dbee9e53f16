package deploy

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every input error the user can correct by
// retrying. The session keeps its state when one of these is returned.
var ErrValidation = errors.New("invalid input")

var (
	ErrEmptyName       = fmt.Errorf("%w: site name is empty", ErrValidation)
	ErrEmptySlug       = fmt.Errorf("%w: slug is empty", ErrValidation)
	ErrNothingStaged   = fmt.Errorf("%w: no files staged", ErrValidation)
	ErrFileTooLarge    = fmt.Errorf("%w: file exceeds the size limit", ErrValidation)
	ErrNotArchive      = fmt.Errorf("%w: archive uploads must be a .zip file", ErrValidation)
	ErrNoActiveSession = fmt.Errorf("%w: no active upload session", ErrValidation)
	ErrUnexpectedFile  = fmt.Errorf("%w: not expecting a file right now", ErrValidation)
	ErrUnexpectedInput = fmt.Errorf("%w: not expecting text right now", ErrValidation)
	ErrUnknownMode     = fmt.Errorf("%w: unknown upload mode", ErrValidation)
)

// ErrUnauthorized is returned when a non-admin starts an admin action.
var ErrUnauthorized = errors.New("not authorized")

// RecordError means the site went live but its record could not be saved.
type RecordError struct {
	Slug string
	URL  string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("deployment %s is live but was not recorded: %v", e.Slug, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
