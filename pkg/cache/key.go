package cache

import (
	"fmt"
	"strings"
)

// Scope selects the feed surface a batch belongs to.
type Scope string

const (
	// ScopeMain is the primary per-user feed.
	ScopeMain Scope = "main"

	// ScopeCategory is a feed restricted to one content category.
	ScopeCategory Scope = "category"
)

// Key identifies one cached batch of ranked content IDs.
type Key struct {
	// Owner is the user (or anonymous) identity the batch was generated for.
	Owner Owner

	// Scope is the feed surface (main or category).
	Scope Scope

	// Language is the requested content language (e.g., "en").
	Language string

	// Category is the content category; only set for ScopeCategory.
	Category string

	// Batch is the zero-based batch number within the logical feed.
	Batch int64
}

// String generates a deterministic store key string.
// Format: feed:main:{owner}:lang:{lang}:batch:{n}
// or:     feed:category:{category}:{owner}:lang:{lang}:batch:{n}
//
// Language and category are always part of the key so batches for different
// dimensions can never alias each other.
func (k Key) String() string {
	parts := []string{"feed", string(k.Scope)}

	if k.Scope == ScopeCategory {
		parts = append(parts, k.Category)
	}

	parts = append(parts,
		k.Owner.String(),
		"lang", k.Language,
		"batch", fmt.Sprintf("%d", k.Batch),
	)

	return strings.Join(parts, ":")
}

// Next returns the key for the batch following this one.
func (k Key) Next() Key {
	k.Batch++
	return k
}

// ownerPatterns returns the SCAN match patterns covering every batch key of
// an owner, across all languages, categories, and batch numbers.
func ownerPatterns(owner Owner) []string {
	o := owner.String()
	return []string{
		fmt.Sprintf("feed:%s:%s:lang:*", ScopeMain, o),
		fmt.Sprintf("feed:%s:*:%s:lang:*", ScopeCategory, o),
	}
}
