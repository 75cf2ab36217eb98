package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HarshaM0211/jira-software/pkg/query"
	"github.com/HarshaM0211/jira-software/pkg/repository"
)

// MongoMapper converts entities to and from BSON documents. ToDocument must
// encode the key as _id and, for Versioned entities, the version as "version".
type MongoMapper[K comparable, E any] interface {
	repository.Identity[K, E]
	ToDocument(entity *E) (interface{}, error)
	FromDocument(raw bson.Raw) (*E, error)
	// Field resolves a criteria or order property to a document field.
	Field(property string) (string, bool)
}

// MongoPort is a Port over one MongoDB collection.
type MongoPort[K comparable, E any] struct {
	executor   MongoExecutor
	collection string
	mapper     MongoMapper[K, E]
	keys       KeyFunc[K]
}

// NewMongoPort creates a MongoDB persistence port.
func NewMongoPort[K comparable, E any](executor MongoExecutor, collection string, mapper MongoMapper[K, E], keys KeyFunc[K]) *MongoPort[K, E] {
	return &MongoPort[K, E]{executor: executor, collection: collection, mapper: mapper, keys: keys}
}

// Save inserts entity under a fresh key.
func (p *MongoPort[K, E]) Save(ctx context.Context, entity *E) (K, error) {
	ids, err := p.SaveAll(ctx, []*E{entity})
	if err != nil {
		var zero K
		return zero, err
	}
	return ids[0], nil
}

// SaveAll inserts entities with one ordered InsertMany. Documents written
// before a failure are removed again.
func (p *MongoPort[K, E]) SaveAll(ctx context.Context, entities []*E) ([]K, error) {
	if len(entities) == 0 {
		return []K{}, nil
	}
	ids := make([]K, 0, len(entities))
	docs := make([]interface{}, 0, len(entities))
	for i, entity := range entities {
		if entity == nil {
			return nil, fmt.Errorf("entity %d of %d cannot be nil", i+1, len(entities))
		}
		id := p.mapper.GetID(entity)
		if repository.IsZeroKey(id) {
			next, err := p.keys(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to assign key: %w", err)
			}
			id = next
			p.mapper.SetID(entity, id)
		}
		doc, err := p.mapper.ToDocument(entity)
		if err != nil {
			return nil, fmt.Errorf("failed to map entity to document: %w", err)
		}
		ids = append(ids, id)
		docs = append(docs, doc)
	}

	if err := p.executor.InsertMany(ctx, p.collection, docs); err != nil {
		if len(ids) > 1 {
			_ = p.executor.DeleteMany(ctx, p.collection, byIDs(ids))
		}
		return nil, fmt.Errorf("failed to insert documents: %w", err)
	}
	return ids, nil
}

// Read returns the document with _id id.
func (p *MongoPort[K, E]) Read(ctx context.Context, id K) (*E, error) {
	raw, err := p.executor.FindOne(ctx, p.collection, bson.D{{Key: "_id", Value: id}})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return p.mapper.FromDocument(raw)
}

// ReadAll returns the documents whose keys exist.
func (p *MongoPort[K, E]) ReadAll(ctx context.Context, ids []K) (map[K]*E, error) {
	ids = repository.UniqueKeys(ids)
	out := make(map[K]*E, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	entities, err := p.find(ctx, byIDs(ids), FindOptions{})
	if err != nil {
		return nil, err
	}
	for _, entity := range entities {
		out[p.mapper.GetID(entity)] = entity
	}
	return out, nil
}

// Update replaces the document. Versioned entities are replaced only when the
// stored version matches.
func (p *MongoPort[K, E]) Update(ctx context.Context, id K, entity *E) error {
	if entity == nil {
		return errors.New("entity cannot be nil")
	}
	p.mapper.SetID(entity, id)

	filter := bson.D{{Key: "_id", Value: id}}
	versioned, isVersioned := versionOf(entity)
	var expected int64
	if isVersioned {
		expected = versioned.GetVersion()
		filter = append(filter, bson.E{Key: "version", Value: expected})
		versioned.SetVersion(expected + 1)
	}

	doc, err := p.mapper.ToDocument(entity)
	if err != nil {
		if isVersioned {
			versioned.SetVersion(expected)
		}
		return fmt.Errorf("failed to map entity to document: %w", err)
	}

	matched, err := p.executor.ReplaceOne(ctx, p.collection, filter, doc)
	if err == nil && matched > 0 {
		return nil
	}
	if isVersioned {
		versioned.SetVersion(expected)
	}
	if err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}

	stored, err := p.Read(ctx, id)
	if err != nil {
		return err
	}
	if current, ok := versionOf(stored); ok && isVersioned {
		return repository.NewOptimisticLockError(id, expected, current.GetVersion())
	}
	return nil
}

// Purge deletes the document with _id id.
func (p *MongoPort[K, E]) Purge(ctx context.Context, id K) error {
	if err := p.executor.DeleteMany(ctx, p.collection, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// PurgeAll deletes the documents with the given keys.
func (p *MongoPort[K, E]) PurgeAll(ctx context.Context, ids []K) error {
	ids = repository.UniqueKeys(ids)
	if len(ids) == 0 {
		return nil
	}
	if err := p.executor.DeleteMany(ctx, p.collection, byIDs(ids)); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (p *MongoPort[K, E]) Count(ctx context.Context) (int64, error) {
	return p.CountMatching(ctx, nil)
}

// CountMatching counts documents matching every criteria.
func (p *MongoPort[K, E]) CountMatching(ctx context.Context, criteria []query.Criteria) (int64, error) {
	filter, err := p.filter(criteria)
	if err != nil {
		return 0, err
	}
	count, err := p.executor.Count(ctx, p.collection, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Search returns a page of documents matching every criteria.
func (p *MongoPort[K, E]) Search(ctx context.Context, criteria []query.Criteria, orderBy query.OrderBy, page query.Page) ([]*E, error) {
	filter, err := p.filter(criteria)
	if err != nil {
		return nil, err
	}
	sort, err := p.sort(orderBy)
	if err != nil {
		return nil, err
	}
	opts := FindOptions{Sort: sort}
	if !page.IsZero() {
		opts.Skip = int64(page.Offset())
		opts.Limit = int64(page.Limit())
	}
	return p.find(ctx, filter, opts)
}

func (p *MongoPort[K, E]) find(ctx context.Context, filter bson.D, opts FindOptions) ([]*E, error) {
	raws, err := p.executor.Find(ctx, p.collection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	out := make([]*E, 0, len(raws))
	for _, raw := range raws {
		entity, err := p.mapper.FromDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		out = append(out, entity)
	}
	return out, nil
}

// filter renders criteria as a MongoDB query document.
func (p *MongoPort[K, E]) filter(criteria []query.Criteria) (bson.D, error) {
	if len(criteria) == 0 {
		return bson.D{}, nil
	}
	if err := query.Validate(criteria); err != nil {
		return nil, err
	}

	clauses := make(bson.A, 0, len(criteria))
	for _, c := range criteria {
		field, err := p.field(c.Property())
		if err != nil {
			return nil, err
		}
		var condition interface{}
		switch c := c.(type) {
		case query.Equals:
			if s, textual := c.Value().(string); textual && c.IgnoreCase() {
				condition = bson.D{
					{Key: "$regex", Value: "^" + regexp.QuoteMeta(s) + "$"},
					{Key: "$options", Value: "i"},
				}
			} else {
				condition = bson.D{{Key: "$eq", Value: c.Value()}}
			}
		case query.Min:
			condition = bson.D{{Key: "$gte", Value: c.Value()}}
		case query.Max:
			condition = bson.D{{Key: "$lte", Value: c.Value()}}
		default:
			return nil, fmt.Errorf("unsupported criteria %T", c)
		}
		clauses = append(clauses, bson.D{{Key: field, Value: condition}})
	}
	if len(clauses) == 1 {
		return clauses[0].(bson.D), nil
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}

func (p *MongoPort[K, E]) sort(orderBy query.OrderBy) (bson.D, error) {
	if orderBy.IsEmpty() {
		return bson.D{{Key: "_id", Value: 1}}, nil
	}
	direction := -1
	if orderBy.Ascending() {
		direction = 1
	}
	sort := bson.D{}
	for _, property := range orderBy.Properties() {
		field, err := p.field(property)
		if err != nil {
			return nil, err
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	return append(sort, bson.E{Key: "_id", Value: 1}), nil
}

func (p *MongoPort[K, E]) field(property string) (string, error) {
	field, ok := p.mapper.Field(property)
	if !ok || field == "" || strings.HasPrefix(field, "$") {
		return "", unknownProperty(property)
	}
	return field, nil
}

func byIDs[K comparable](ids []K) bson.D {
	values := make(bson.A, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: values}}}}
}
