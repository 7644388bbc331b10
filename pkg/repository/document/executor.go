package document

import "context"

// FindQuery carries ordering and windowing for multi-document reads. Sort is
// applied first, then Skip, then Limit.
type FindQuery struct {
	Sort  []Sort
	Skip  int64
	Limit int64
}

// Executor is the store-operation contract the repository is built on. Any
// document store exposing this set with the expected semantics (idempotent
// create-if-absent, partial-merge updates, filter+sort+skip+limit reads) can
// be substituted.
type Executor interface {
	InsertOne(ctx context.Context, collection string, doc map[string]interface{}) (interface{}, error)
	InsertMany(ctx context.Context, collection string, docs []map[string]interface{}) ([]interface{}, error)

	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, collection string, filter Filter) (map[string]interface{}, error)
	Find(ctx context.Context, collection string, filter Filter, query FindQuery) ([]map[string]interface{}, error)

	// UpdateOne and UpdateMany merge set into matching documents field by
	// field; they never replace whole documents.
	UpdateOne(ctx context.Context, collection string, filter Filter, set map[string]interface{}) (int64, error)
	UpdateMany(ctx context.Context, collection string, filter Filter, set map[string]interface{}) (int64, error)

	DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)

	Count(ctx context.Context, collection string, filter Filter) (int64, error)

	// EnsureCollection creates the collection when absent; an existing
	// collection is not an error.
	EnsureCollection(ctx context.Context, name string) error
}
