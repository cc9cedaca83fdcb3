package workflow

import (
	"errors"
	"fmt"

	"github.com/kiranshivaraju/hireflow/internal/store"
)

// Error taxonomy. Every failure returned by this package wraps exactly one
// of these so handlers can branch with errors.Is.
var (
	ErrUnauthorized      = errors.New("caller lacks the required role")
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConflict          = errors.New("already applied to this job")
	ErrDependencyFailure = errors.New("file storage unavailable")
	ErrInternal          = errors.New("internal error")
)

// ErrNoResume is a NotFound for applications submitted without a resume.
var ErrNoResume = fmt.Errorf("%w: application has no resume", ErrNotFound)

// storeError translates a persistence error into the taxonomy. what names
// the entity for NotFound messages.
func storeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, store.ErrDuplicateKey):
		return ErrConflict
	case isTaxonomy(err):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", ErrInternal, what, err)
	}
}

func isTaxonomy(err error) bool {
	for _, e := range []error{ErrUnauthorized, ErrNotFound, ErrInvalidArgument, ErrConflict, ErrDependencyFailure, ErrInternal} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
