package feed

import (
	"errors"
	"fmt"

	"github.com/reelworks/feedcache/pkg/cache"
)

// Common errors returned by the service.
var (
	// ErrLanguageRequired is returned when a page request carries no language.
	ErrLanguageRequired = errors.New("language is required")

	// ErrCategoryRequired is returned when a category page request carries no category.
	ErrCategoryRequired = errors.New("category is required")
)

// GenerationError wraps a recommendation engine failure with the batch it
// was generating. On the foreground path it propagates to the caller; on the
// prefetch path it is logged and dropped.
type GenerationError struct {
	Owner cache.Owner
	Batch int64
	Err   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("batch generation failed (owner %s, batch %d): %v",
		e.Owner, e.Batch, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *GenerationError) Unwrap() error {
	return e.Err
}
