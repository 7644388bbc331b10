package document

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongostore "github.com/veilstore/veilstore/pkg/store/mongodb"
)

// MongoExecutor adapts the store/mongodb adapter to the Executor contract.
type MongoExecutor struct {
	adapter *mongostore.Adapter
}

// NewMongoExecutor creates a new MongoExecutor instance.
func NewMongoExecutor(adapter *mongostore.Adapter) (*MongoExecutor, error) {
	if adapter == nil {
		return nil, fmt.Errorf("mongodb adapter is required")
	}
	return &MongoExecutor{adapter: adapter}, nil
}

// InsertOne inserts a document and returns its store-assigned identifier.
func (e *MongoExecutor) InsertOne(ctx context.Context, collection string, doc map[string]interface{}) (interface{}, error) {
	result, err := e.adapter.InsertOne(ctx, collection, bson.M(doc))
	if err != nil {
		return nil, err
	}
	return result.InsertedID, nil
}

// InsertMany inserts all documents and returns their identifiers.
func (e *MongoExecutor) InsertMany(ctx context.Context, collection string, docs []map[string]interface{}) ([]interface{}, error) {
	payload := make([]interface{}, len(docs))
	for i, doc := range docs {
		payload[i] = bson.M(doc)
	}
	result, err := e.adapter.InsertMany(ctx, collection, payload)
	if err != nil {
		return nil, err
	}
	return result.InsertedIDs, nil
}

// FindOne finds a single document matching the filter.
func (e *MongoExecutor) FindOne(ctx context.Context, collection string, filter Filter) (map[string]interface{}, error) {
	out := bson.M{}
	if err := e.adapter.FindOne(ctx, collection, bson.M(filter), &out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return map[string]interface{}(out), nil
}

// Find returns all documents matching the filter, sorted and windowed per
// query.
func (e *MongoExecutor) Find(ctx context.Context, collection string, filter Filter, query FindQuery) ([]map[string]interface{}, error) {
	findOpts := options.Find()
	if len(query.Sort) > 0 {
		sortDoc := make(bson.D, 0, len(query.Sort))
		for _, s := range query.Sort {
			order := 1
			if s.Order == SortDesc {
				order = -1
			}
			sortDoc = append(sortDoc, bson.E{Key: s.Field, Value: order})
		}
		findOpts.SetSort(sortDoc)
	}
	if query.Skip > 0 {
		findOpts.SetSkip(query.Skip)
	}
	if query.Limit > 0 {
		findOpts.SetLimit(query.Limit)
	}

	var raw []bson.M
	if err := e.adapter.Find(ctx, collection, bson.M(filter), &raw, findOpts); err != nil {
		return nil, err
	}
	results := make([]map[string]interface{}, len(raw))
	for i, doc := range raw {
		results[i] = map[string]interface{}(doc)
	}
	return results, nil
}

// UpdateOne merges set into the first document matching the filter.
func (e *MongoExecutor) UpdateOne(ctx context.Context, collection string, filter Filter, set map[string]interface{}) (int64, error) {
	result, err := e.adapter.UpdateOne(ctx, collection, bson.M(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// UpdateMany merges set into every document matching the filter.
func (e *MongoExecutor) UpdateMany(ctx context.Context, collection string, filter Filter, set map[string]interface{}) (int64, error) {
	result, err := e.adapter.UpdateMany(ctx, collection, bson.M(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// DeleteOne physically deletes the first document matching the filter.
func (e *MongoExecutor) DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error) {
	result, err := e.adapter.DeleteOne(ctx, collection, bson.M(filter))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteMany physically deletes every document matching the filter.
func (e *MongoExecutor) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	result, err := e.adapter.DeleteMany(ctx, collection, bson.M(filter))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Count counts documents matching the filter as given.
func (e *MongoExecutor) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	return e.adapter.CountDocuments(ctx, collection, bson.M(filter))
}

// EnsureCollection creates the collection if absent.
func (e *MongoExecutor) EnsureCollection(ctx context.Context, name string) error {
	return e.adapter.EnsureCollection(ctx, name)
}
