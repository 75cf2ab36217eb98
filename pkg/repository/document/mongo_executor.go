package document

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongostore "github.com/HarshaM0211/jira-software/pkg/store/mongodb"
)

// FindOptions carries sort and window for MongoExecutor.Find. Zero Limit means no limit.
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// MongoExecutor defines the document execution contract for MongoDB-backed ports.
// FindOne returns mongo.ErrNoDocuments when nothing matches.
type MongoExecutor interface {
	InsertMany(ctx context.Context, collection string, docs []interface{}) error
	FindOne(ctx context.Context, collection string, filter bson.D) (bson.Raw, error)
	Find(ctx context.Context, collection string, filter bson.D, opts FindOptions) ([]bson.Raw, error)
	Count(ctx context.Context, collection string, filter bson.D) (int64, error)
	ReplaceOne(ctx context.Context, collection string, filter bson.D, doc interface{}) (matched int64, err error)
	DeleteMany(ctx context.Context, collection string, filter bson.D) error
	NextSequence(ctx context.Context, name string) (int64, error)
}

// MongoDBExecutor adapts store/mongodb adapter to the MongoExecutor contract.
type MongoDBExecutor struct {
	adapter  *mongostore.Adapter
	counters string
}

// NewMongoDBExecutor creates a new MongoDBExecutor instance. Sequences live in
// the "counters" collection.
func NewMongoDBExecutor(adapter *mongostore.Adapter) (*MongoDBExecutor, error) {
	if adapter == nil {
		return nil, fmt.Errorf("mongodb adapter is required")
	}
	return &MongoDBExecutor{adapter: adapter, counters: "counters"}, nil
}

func (e *MongoDBExecutor) InsertMany(ctx context.Context, collection string, docs []interface{}) error {
	_, err := e.adapter.InsertMany(ctx, collection, docs)
	return err
}

func (e *MongoDBExecutor) FindOne(ctx context.Context, collection string, filter bson.D) (bson.Raw, error) {
	return e.adapter.FindOne(ctx, collection, filter)
}

func (e *MongoDBExecutor) Find(ctx context.Context, collection string, filter bson.D, opts FindOptions) ([]bson.Raw, error) {
	find := options.Find()
	if len(opts.Sort) > 0 {
		find.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		find.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		find.SetLimit(opts.Limit)
	}
	return e.adapter.Find(ctx, collection, filter, find)
}

func (e *MongoDBExecutor) Count(ctx context.Context, collection string, filter bson.D) (int64, error) {
	return e.adapter.CountDocuments(ctx, collection, filter)
}

func (e *MongoDBExecutor) ReplaceOne(ctx context.Context, collection string, filter bson.D, doc interface{}) (int64, error) {
	result, err := e.adapter.ReplaceOne(ctx, collection, filter, doc)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (e *MongoDBExecutor) DeleteMany(ctx context.Context, collection string, filter bson.D) error {
	_, err := e.adapter.DeleteMany(ctx, collection, filter)
	return err
}

// NextSequence atomically increments and returns the named counter.
func (e *MongoDBExecutor) NextSequence(ctx context.Context, name string) (int64, error) {
	raw, err := e.adapter.FindOneAndUpdate(ctx, e.counters,
		bson.D{{Key: "_id", Value: name}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := bson.Unmarshal(raw, &counter); err != nil {
		return 0, fmt.Errorf("failed to decode sequence %s: %w", name, err)
	}
	return counter.Seq, nil
}

// MongoSequence returns a KeyFunc backed by a counter document.
func MongoSequence(executor MongoExecutor, name string) KeyFunc[int64] {
	return func(ctx context.Context) (int64, error) {
		return executor.NextSequence(ctx, name)
	}
}
