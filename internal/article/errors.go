package article

import (
	"errors"
	"fmt"
)

// Every failure leaving the service is one of these kinds; test with
// errors.Is. Backend causes are wrapped underneath the kind.
var (
	// ErrNotFound: the identifier matched no article by id or slug.
	ErrNotFound = errors.New("article not found")
	// ErrRetrieval: a read reached the backend and failed.
	ErrRetrieval = errors.New("article retrieval failed")
	// ErrValidation: a local precondition failed before any write.
	ErrValidation = errors.New("validation rejected")
	// ErrMutation: a write was sent and the backend rejected it.
	ErrMutation = errors.New("mutation failed")
	// ErrUnauthorized: the operation needs an operator session.
	ErrUnauthorized = errors.New("session required")
)

var (
	ErrEmptyComment   = fmt.Errorf("%w: comment text is empty", ErrValidation)
	ErrAlreadyLiked   = fmt.Errorf("%w: article already liked", ErrValidation)
	ErrUnknownVisitor = fmt.Errorf("%w: visitor unknown", ErrValidation)
	ErrMissingTitle   = fmt.Errorf("%w: title is required", ErrValidation)
	ErrMissingBody    = fmt.Errorf("%w: description is required", ErrValidation)
	ErrMissingProject = fmt.Errorf("%w: project link is required", ErrValidation)
)

func wrap(kind, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}
