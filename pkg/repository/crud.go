package repository

import (
	"context"
	"errors"

	"github.com/HarshaM0211/jira-software/pkg/query"
)

// ErrNotFound is returned by ports when no entity has the requested key.
var ErrNotFound = errors.New("entity not found")

// Reader provides read operations for entities keyed by K.
type Reader[K comparable, E any] interface {
	// Read returns ErrNotFound when the key is absent.
	Read(ctx context.Context, id K) (*E, error)
	// ReadAll returns the entities that exist; missing keys are simply absent.
	ReadAll(ctx context.Context, ids []K) (map[K]*E, error)
	Count(ctx context.Context) (int64, error)
	CountMatching(ctx context.Context, criteria []query.Criteria) (int64, error)
	// Search returns the requested page of entities matching every criteria.
	// A zero page returns every match; a page past the end returns none.
	Search(ctx context.Context, criteria []query.Criteria, orderBy query.OrderBy, page query.Page) ([]*E, error)
}

// Writer provides write operations for entities keyed by K.
type Writer[K comparable, E any] interface {
	// Save persists a new entity and returns the key the port assigned.
	Save(ctx context.Context, entity *E) (K, error)
	// SaveAll persists entities as one unit where the backend allows it and
	// returns their keys in input order.
	SaveAll(ctx context.Context, entities []*E) ([]K, error)
	// Update replaces the stored state of id. Returns ErrNotFound when absent
	// and *OptimisticLockError on a stale Versioned entity.
	Update(ctx context.Context, id K, entity *E) error
	// Purge deletes id. Deleting an absent key is not an error.
	Purge(ctx context.Context, id K) error
	PurgeAll(ctx context.Context, ids []K) error
}

// Port is the persistence contract consumed by services.
type Port[K comparable, E any] interface {
	Reader[K, E]
	Writer[K, E]
}

// Identity reads and assigns the key of an entity.
type Identity[K comparable, E any] interface {
	GetID(entity *E) K
	SetID(entity *E, id K)
}

// IdentityFuncs adapts a pair of functions to Identity.
type IdentityFuncs[K comparable, E any] struct {
	Get func(entity *E) K
	Set func(entity *E, id K)
}

// GetID implements Identity.
func (f IdentityFuncs[K, E]) GetID(entity *E) K { return f.Get(entity) }

// SetID implements Identity.
func (f IdentityFuncs[K, E]) SetID(entity *E, id K) { f.Set(entity, id) }

// Accessor returns the value of a named property of an entity, used by ports
// that evaluate criteria in process.
type Accessor[E any] func(entity *E, property string) (any, bool)

// IsZeroKey reports whether id is the zero value of its type.
func IsZeroKey[K comparable](id K) bool {
	var zero K
	return id == zero
}

// UniqueKeys drops zero and duplicate keys, keeping first occurrences.
func UniqueKeys[K comparable](ids []K) []K {
	seen := make(map[K]struct{}, len(ids))
	out := make([]K, 0, len(ids))
	for _, id := range ids {
		if IsZeroKey(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
