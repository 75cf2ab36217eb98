package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
	"github.com/HarshaM0211/jira-software/pkg/query"
	"github.com/HarshaM0211/jira-software/pkg/repository"
)

const (
	// batchWriteLimit is the DynamoDB maximum number of requests per BatchWriteItem.
	batchWriteLimit = 25
	batchRetries    = 3
)

// ItemMapper converts entities to and from DynamoDB items. ToItem must
// include the key attribute and, for Versioned entities, a numeric "version".
type ItemMapper[K comparable, E any] interface {
	repository.Identity[K, E]
	KeyAttribute() string
	ToItem(entity *E) (map[string]types.AttributeValue, error)
	FromItem(item map[string]types.AttributeValue) (*E, error)
	// Attribute resolves a criteria or order property to an attribute name.
	Attribute(property string) (string, bool)
}

// DynamoPort is a Port over one DynamoDB table with a simple partition key.
//
// Cosa fa: CRUD con scritture condizionali e optimistic locking sulla versione.
// Cosa NON fa: non usa indici secondari; Search esegue uno Scan completo e
// ordina in memoria.
// Esempio minimo: port := document.NewDynamoPort(exec, "projects", mapper, accessor, keys)
type DynamoPort[K comparable, E any] struct {
	executor DynamoExecutor
	table    string
	mapper   ItemMapper[K, E]
	accessor repository.Accessor[E]
	keys     KeyFunc[K]
}

// NewDynamoPort creates a DynamoDB persistence port. accessor evaluates
// criteria the table scan cannot express.
func NewDynamoPort[K comparable, E any](executor DynamoExecutor, table string, mapper ItemMapper[K, E], accessor repository.Accessor[E], keys KeyFunc[K]) *DynamoPort[K, E] {
	return &DynamoPort[K, E]{executor: executor, table: table, mapper: mapper, accessor: accessor, keys: keys}
}

// Save writes entity under a fresh key. A key collision is a conflict.
func (p *DynamoPort[K, E]) Save(ctx context.Context, entity *E) (K, error) {
	var zero K
	if entity == nil {
		return zero, errors.New("entity cannot be nil")
	}
	id, err := p.assignKey(ctx, entity)
	if err != nil {
		return zero, err
	}
	item, err := p.mapper.ToItem(entity)
	if err != nil {
		return zero, fmt.Errorf("failed to map entity to item: %w", err)
	}
	err = p.executor.PutItem(ctx, p.table, item, &Condition{
		Expression: "attribute_not_exists(#pk)",
		Names:      map[string]string{"#pk": p.mapper.KeyAttribute()},
	})
	if errors.Is(err, ErrConditionFailed) {
		return zero, apperror.Conflict(p.table, fmt.Errorf("key %v already exists", id))
	}
	if err != nil {
		return zero, fmt.Errorf("failed to put item: %w", err)
	}
	return id, nil
}

// SaveAll writes entities with batched puts. Items written before a failure
// are deleted again.
func (p *DynamoPort[K, E]) SaveAll(ctx context.Context, entities []*E) ([]K, error) {
	ids := make([]K, 0, len(entities))
	requests := make([]types.WriteRequest, 0, len(entities))
	for i, entity := range entities {
		if entity == nil {
			return nil, fmt.Errorf("entity %d of %d cannot be nil", i+1, len(entities))
		}
		id, err := p.assignKey(ctx, entity)
		if err != nil {
			return nil, err
		}
		item, err := p.mapper.ToItem(entity)
		if err != nil {
			return nil, fmt.Errorf("failed to map entity to item: %w", err)
		}
		ids = append(ids, id)
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	if err := p.batchWrite(ctx, requests); err != nil {
		_ = p.PurgeAll(ctx, ids)
		return nil, err
	}
	return ids, nil
}

// Read returns the item with key id.
func (p *DynamoPort[K, E]) Read(ctx context.Context, id K) (*E, error) {
	key, err := p.key(id)
	if err != nil {
		return nil, err
	}
	item, err := p.executor.GetItem(ctx, p.table, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, repository.ErrNotFound
	}
	return p.mapper.FromItem(item)
}

// ReadAll returns the items whose keys exist.
func (p *DynamoPort[K, E]) ReadAll(ctx context.Context, ids []K) (map[K]*E, error) {
	ids = repository.UniqueKeys(ids)
	out := make(map[K]*E, len(ids))
	for _, id := range ids {
		entity, err := p.Read(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = entity
	}
	return out, nil
}

// Update overwrites an existing item. Versioned entities are written only
// when the stored version matches.
func (p *DynamoPort[K, E]) Update(ctx context.Context, id K, entity *E) error {
	if entity == nil {
		return errors.New("entity cannot be nil")
	}
	p.mapper.SetID(entity, id)

	cond := &Condition{
		Expression: "attribute_exists(#pk)",
		Names:      map[string]string{"#pk": p.mapper.KeyAttribute()},
	}
	versioned, isVersioned := versionOf(entity)
	var expected int64
	if isVersioned {
		expected = versioned.GetVersion()
		cond.Expression += " AND #ver = :expected"
		cond.Names["#ver"] = "version"
		cond.Values = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expected, 10)},
		}
		versioned.SetVersion(expected + 1)
	}

	item, err := p.mapper.ToItem(entity)
	if err == nil {
		err = p.executor.PutItem(ctx, p.table, item, cond)
		if err == nil {
			return nil
		}
	}
	if isVersioned {
		versioned.SetVersion(expected)
	}
	if !errors.Is(err, ErrConditionFailed) {
		return fmt.Errorf("failed to update item: %w", err)
	}

	stored, err := p.Read(ctx, id)
	if err != nil {
		return err
	}
	if current, ok := versionOf(stored); ok && isVersioned {
		return repository.NewOptimisticLockError(id, expected, current.GetVersion())
	}
	return fmt.Errorf("conditional update of %v rejected", id)
}

// Purge deletes the item with key id.
func (p *DynamoPort[K, E]) Purge(ctx context.Context, id K) error {
	key, err := p.key(id)
	if err != nil {
		return err
	}
	if err := p.executor.DeleteItem(ctx, p.table, key); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// PurgeAll deletes the given keys with batched deletes.
func (p *DynamoPort[K, E]) PurgeAll(ctx context.Context, ids []K) error {
	ids = repository.UniqueKeys(ids)
	requests := make([]types.WriteRequest, 0, len(ids))
	for _, id := range ids {
		key, err := p.key(id)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
	}
	return p.batchWrite(ctx, requests)
}

// Count returns the number of items in the table.
func (p *DynamoPort[K, E]) Count(ctx context.Context) (int64, error) {
	return p.CountMatching(ctx, nil)
}

// CountMatching counts items matching every criteria.
func (p *DynamoPort[K, E]) CountMatching(ctx context.Context, criteria []query.Criteria) (int64, error) {
	matched, err := p.scan(ctx, criteria)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// Search scans, sorts and pages the matching items.
func (p *DynamoPort[K, E]) Search(ctx context.Context, criteria []query.Criteria, orderBy query.OrderBy, page query.Page) ([]*E, error) {
	for _, property := range orderBy.Properties() {
		if _, ok := p.mapper.Attribute(property); !ok {
			return nil, unknownProperty(property)
		}
	}
	matched, err := p.scan(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if err := p.sort(matched, orderBy); err != nil {
		return nil, err
	}
	start, end := page.Slice(len(matched))
	return matched[start:end], nil
}

// scan reads every item passing the pushed-down filter and re-checks the
// full criteria in process.
func (p *DynamoPort[K, E]) scan(ctx context.Context, criteria []query.Criteria) ([]*E, error) {
	if err := query.Validate(criteria); err != nil {
		return nil, err
	}
	filter, err := p.filterExpression(criteria)
	if err != nil {
		return nil, err
	}

	var out []*E
	var startKey map[string]types.AttributeValue
	for {
		items, lastKey, err := p.executor.Scan(ctx, p.table, filter, startKey)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		for _, item := range items {
			entity, err := p.mapper.FromItem(item)
			if err != nil {
				return nil, fmt.Errorf("failed to decode item: %w", err)
			}
			ok, err := query.MatchAll(criteria, func(property string) (any, bool) {
				return p.accessor(entity, property)
			})
			if err != nil {
				return nil, apperror.ValidationWithCode(apperror.CodeInvalidParameter,
					err.Error(), i18n.Params{"parameter": "criteria"}, err)
			}
			if ok {
				out = append(out, entity)
			}
		}
		if len(lastKey) == 0 {
			return out, nil
		}
		startKey = lastKey
	}
}

// filterExpression pushes every criteria with a native attribute encoding
// down to the scan. Case-insensitive matches stay in process.
func (p *DynamoPort[K, E]) filterExpression(criteria []query.Criteria) (*Condition, error) {
	cond := &Condition{Names: map[string]string{}, Values: map[string]types.AttributeValue{}}
	for i, c := range criteria {
		attribute, ok := p.mapper.Attribute(c.Property())
		if !ok {
			return nil, unknownProperty(c.Property())
		}
		var operator string
		switch c := c.(type) {
		case query.Equals:
			if _, textual := c.Value().(string); textual && c.IgnoreCase() {
				continue
			}
			operator = "="
		case query.Min:
			operator = ">="
		case query.Max:
			operator = "<="
		default:
			continue
		}
		value, err := AttributeValue(c.Value())
		if err != nil {
			continue
		}
		name, placeholder := fmt.Sprintf("#a%d", i), fmt.Sprintf(":v%d", i)
		if cond.Expression != "" {
			cond.Expression += " AND "
		}
		cond.Expression += name + " " + operator + " " + placeholder
		cond.Names[name] = attribute
		cond.Values[placeholder] = value
	}
	if cond.Expression == "" {
		return nil, nil
	}
	return cond, nil
}

// sort orders by the requested properties, then by key ascending. Scan order
// is undefined so the key tiebreak is always applied.
func (p *DynamoPort[K, E]) sort(entities []*E, orderBy query.OrderBy) error {
	var sortErr error
	sort.SliceStable(entities, func(i, j int) bool {
		for _, property := range orderBy.Properties() {
			a, _ := p.accessor(entities[i], property)
			b, _ := p.accessor(entities[j], property)
			cmp, err := compareMissingFirst(a, b)
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
		cmp, err := query.Compare(p.mapper.GetID(entities[i]), p.mapper.GetID(entities[j]))
		if err != nil {
			sortErr = err
			return false
		}
		return cmp < 0
	})
	return sortErr
}

func compareMissingFirst(a, b any) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}
	return query.Compare(a, b)
}

func (p *DynamoPort[K, E]) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for start := 0; start < len(requests); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(requests) {
			end = len(requests)
		}
		pending := requests[start:end]
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == batchRetries {
				return fmt.Errorf("batch write left %d unprocessed requests", len(pending))
			}
			unprocessed, err := p.executor.BatchWriteItem(ctx, p.table, pending)
			if err != nil {
				return fmt.Errorf("failed to batch write items: %w", err)
			}
			pending = unprocessed
		}
	}
	return nil
}

func (p *DynamoPort[K, E]) assignKey(ctx context.Context, entity *E) (K, error) {
	id := p.mapper.GetID(entity)
	if !repository.IsZeroKey(id) {
		return id, nil
	}
	id, err := p.keys(ctx)
	if err != nil {
		return id, fmt.Errorf("failed to assign key: %w", err)
	}
	p.mapper.SetID(entity, id)
	return id, nil
}

func (p *DynamoPort[K, E]) key(id K) (map[string]types.AttributeValue, error) {
	value, err := AttributeValue(id)
	if err != nil {
		return nil, fmt.Errorf("unsupported key type: %w", err)
	}
	return map[string]types.AttributeValue{p.mapper.KeyAttribute(): value}, nil
}
