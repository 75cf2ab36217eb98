// Package memory provides an in-process persistence port, used for tests and
// for running the service without a database.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
	"github.com/HarshaM0211/jira-software/pkg/query"
	"github.com/HarshaM0211/jira-software/pkg/repository"
)

// Port stores shallow copies of entities in a map. Criteria and ordering are
// evaluated with the query package through an Accessor. Without an explicit
// order, results come back in insertion order.
type Port[K comparable, E any] struct {
	mu       sync.RWMutex
	items    map[K]E
	order    []K
	identity repository.Identity[K, E]
	accessor repository.Accessor[E]
	keys     repository.KeyGenerator[K]
}

// NewPort creates an empty in-memory port.
func NewPort[K comparable, E any](
	identity repository.Identity[K, E],
	accessor repository.Accessor[E],
	keys repository.KeyGenerator[K],
) *Port[K, E] {
	return &Port[K, E]{
		items:    make(map[K]E),
		identity: identity,
		accessor: accessor,
		keys:     keys,
	}
}

// Save stores a copy of entity under a fresh key, or under its own key when
// it already carries one.
func (p *Port[K, E]) Save(_ context.Context, entity *E) (K, error) {
	var zero K
	if entity == nil {
		return zero, errors.New("entity cannot be nil")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.insert(entity)
}

// SaveAll stores every entity or none of them.
func (p *Port[K, E]) SaveAll(_ context.Context, entities []*E) ([]K, error) {
	for i, entity := range entities {
		if entity == nil {
			return nil, fmt.Errorf("entity %d of %d cannot be nil", i+1, len(entities))
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]K, 0, len(entities))
	for _, entity := range entities {
		id, err := p.insert(entity)
		if err != nil {
			p.remove(ids)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *Port[K, E]) insert(entity *E) (K, error) {
	id := p.identity.GetID(entity)
	if repository.IsZeroKey(id) {
		if p.keys == nil {
			return id, errors.New("entity has no key and no key generator is configured")
		}
		id = p.keys()
	}
	if _, exists := p.items[id]; exists {
		return id, apperror.Conflict(fmt.Sprint(id), fmt.Errorf("key %v already stored", id))
	}
	p.identity.SetID(entity, id)
	p.items[id] = *entity
	p.order = append(p.order, id)
	return id, nil
}

// Read returns a copy of the stored entity.
func (p *Port[K, E]) Read(_ context.Context, id K) (*E, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stored, ok := p.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &stored, nil
}

// ReadAll returns copies of the entities that exist.
func (p *Port[K, E]) ReadAll(_ context.Context, ids []K) (map[K]*E, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[K]*E, len(ids))
	for _, id := range repository.UniqueKeys(ids) {
		if stored, ok := p.items[id]; ok {
			out[id] = &stored
		}
	}
	return out, nil
}

// Update replaces the stored entity, checking versions on Versioned entities.
func (p *Port[K, E]) Update(_ context.Context, id K, entity *E) error {
	if entity == nil {
		return errors.New("entity cannot be nil")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	stored, ok := p.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if err := repository.CheckVersion(id, &stored, entity); err != nil {
		return err
	}
	repository.BumpVersion(entity)
	p.identity.SetID(entity, id)
	p.items[id] = *entity
	return nil
}

// Purge removes id if present.
func (p *Port[K, E]) Purge(_ context.Context, id K) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remove([]K{id})
	return nil
}

// PurgeAll removes every id that is present.
func (p *Port[K, E]) PurgeAll(_ context.Context, ids []K) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remove(repository.UniqueKeys(ids))
	return nil
}

func (p *Port[K, E]) remove(ids []K) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[K]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := p.items[id]; ok {
			delete(p.items, id)
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := p.order[:0]
	for _, id := range p.order {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	p.order = kept
}

// Count returns the number of stored entities.
func (p *Port[K, E]) Count(_ context.Context) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int64(len(p.items)), nil
}

// CountMatching counts entities matching every criteria.
func (p *Port[K, E]) CountMatching(_ context.Context, criteria []query.Criteria) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	matched, err := p.filter(criteria)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// Search filters, sorts and pages the stored entities.
func (p *Port[K, E]) Search(_ context.Context, criteria []query.Criteria, orderBy query.OrderBy, page query.Page) ([]*E, error) {
	p.mu.RLock()
	matched, err := p.filter(criteria)
	p.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if err := p.sort(matched, orderBy); err != nil {
		return nil, err
	}

	start, end := page.Slice(len(matched))
	out := make([]*E, 0, end-start)
	for i := start; i < end; i++ {
		entity := matched[i]
		out = append(out, &entity)
	}
	return out, nil
}

// filter returns copies of matching entities in insertion order. The caller
// holds the read lock.
func (p *Port[K, E]) filter(criteria []query.Criteria) ([]E, error) {
	if err := query.Validate(criteria); err != nil {
		return nil, err
	}
	out := make([]E, 0, len(p.order))
	if len(p.order) > 0 {
		sample := p.items[p.order[0]]
		if err := p.checkKnown(criteria, &sample); err != nil {
			return nil, err
		}
	}
	for _, id := range p.order {
		entity := p.items[id]
		ok, err := query.MatchAll(criteria, func(property string) (any, bool) {
			return p.accessor(&entity, property)
		})
		if err != nil {
			return nil, apperror.ValidationWithCode(apperror.CodeInvalidParameter,
				err.Error(), i18n.Params{"parameter": "criteria"}, err)
		}
		if ok {
			out = append(out, entity)
		}
	}
	return out, nil
}

// checkKnown rejects properties the accessor does not expose.
func (p *Port[K, E]) checkKnown(criteria []query.Criteria, entity *E) error {
	for _, c := range criteria {
		if _, ok := p.accessor(entity, c.Property()); !ok {
			return unknownProperty(c.Property())
		}
	}
	return nil
}

func (p *Port[K, E]) sort(entities []E, orderBy query.OrderBy) error {
	if orderBy.IsEmpty() || len(entities) < 2 {
		return nil
	}
	properties := orderBy.Properties()
	for _, property := range properties {
		if _, ok := p.accessor(&entities[0], property); !ok {
			return unknownProperty(property)
		}
	}

	var sortErr error
	sort.SliceStable(entities, func(i, j int) bool {
		for _, property := range properties {
			a, _ := p.accessor(&entities[i], property)
			b, _ := p.accessor(&entities[j], property)
			cmp, err := compareNullable(a, b)
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if orderBy.Ascending() {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	return sortErr
}

// compareNullable places missing values first.
func compareNullable(a, b any) (int, error) {
	aNil, bNil := a == nil, b == nil
	switch {
	case aNil && bNil:
		return 0, nil
	case aNil:
		return -1, nil
	case bNil:
		return 1, nil
	}
	return query.Compare(a, b)
}

func unknownProperty(property string) error {
	return apperror.ValidationWithCode(apperror.CodeUnknownProperty,
		fmt.Sprintf("unknown search property %s", property), i18n.Params{"property": property}, nil)
}
