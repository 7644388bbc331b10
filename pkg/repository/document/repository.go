package document

import (
	"context"
	"fmt"

	"github.com/veilstore/veilstore/pkg/observability/logger"
	"github.com/veilstore/veilstore/pkg/schema"
)

// Repository is the CRUD façade over a document store. It enforces opt-in
// schema validation before writes, stamps the soft-delete marker on inserts,
// and hides soft-deleted documents from reads unless asked otherwise.
//
// Validation only happens when a schema is passed to a write operation; the
// schema returned by EnsureValidation is advisory and never looked up
// implicitly.
type Repository struct {
	exec    Executor
	schemas *schema.Store
	logger  logger.Logger
}

// New creates a Repository over the given executor and schema store.
func New(exec Executor, schemas *schema.Store, log logger.Logger) (*Repository, error) {
	if exec == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if schemas == nil {
		return nil, fmt.Errorf("schema store is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Repository{
		exec:    exec,
		schemas: schemas,
		logger:  log,
	}, nil
}

// EnsureValidation guarantees the collection exists and loads the schema the
// caller must pass to later writes for application-level enforcement.
// Creating a collection that already exists is the idempotent success path.
func (r *Repository) EnsureValidation(ctx context.Context, collection, schemaName string) (*schema.Schema, error) {
	if err := r.exec.EnsureCollection(ctx, collection); err != nil {
		return nil, err
	}

	s, err := r.schemas.Load(schemaName)
	if err != nil {
		return nil, err
	}
	r.logger.Warn("Schema validation is not supported in the database; validation is performed at the application level",
		"collection", collection, "schema", schemaName)
	return s, nil
}

// InsertOne validates doc when s is non-nil, stamps is_deleted=false, and
// persists. It returns the store-assigned identifier.
func (r *Repository) InsertOne(ctx context.Context, collection string, doc Document, s *schema.Schema) (interface{}, error) {
	if err := validate(doc, s); err != nil {
		r.logger.Error("Data validation failed", "collection", collection, "error", err)
		return nil, err
	}

	r.logger.Info("Inserting one document", "collection", collection)
	persisted := clone(doc)
	persisted[FieldDeleted] = false

	id, err := r.exec.InsertOne(ctx, collection, persisted)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Document inserted", "collection", collection, "id", id)
	return id, nil
}

// InsertMany validates every document before any write: one failing document
// aborts the whole batch. Each persisted document is stamped
// is_deleted=false. It returns the assigned identifiers in input order.
func (r *Repository) InsertMany(ctx context.Context, collection string, docs []Document, s *schema.Schema) ([]interface{}, error) {
	for _, doc := range docs {
		if err := validate(doc, s); err != nil {
			r.logger.Error("Data validation failed", "collection", collection, "error", err)
			return nil, err
		}
	}

	r.logger.Info("Inserting many documents", "collection", collection, "count", len(docs))
	persisted := make([]map[string]interface{}, len(docs))
	for i, doc := range docs {
		p := clone(doc)
		p[FieldDeleted] = false
		persisted[i] = p
	}

	ids, err := r.exec.InsertMany(ctx, collection, persisted)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Documents inserted", "collection", collection, "ids", ids)
	return ids, nil
}

// UpdateOne validates the update payload when s is non-nil and merges it
// into the first match of filter. The soft-delete filter is NOT applied to
// updates: a soft-deleted document matching filter is updated too. It
// returns the count of modified documents (0 or 1).
func (r *Repository) UpdateOne(ctx context.Context, collection string, filter Filter, update Document, s *schema.Schema) (int64, error) {
	if err := validate(update, s); err != nil {
		r.logger.Error("Data validation failed", "collection", collection, "error", err)
		return 0, err
	}

	r.logger.Info("Updating one document", "collection", collection, "filter", filter)
	modified, err := r.setFields(ctx, collection, filter, update, false)
	if err != nil {
		return 0, err
	}
	r.logger.Info("Update result", "collection", collection, "modified", modified)
	return modified, nil
}

// FindOne returns the first document matching filter, or ErrNotFound.
// Soft-deleted documents are excluded unless opts.IncludeDeleted is set.
func (r *Repository) FindOne(ctx context.Context, collection string, filter Filter, opts FindOptions) (Document, error) {
	r.logger.Info("Finding one document", "collection", collection, "filter", filter)

	result, err := r.exec.FindOne(ctx, collection, withVisibility(filter, opts.IncludeDeleted))
	if err != nil {
		return nil, err
	}
	return Document(result), nil
}

// FindMany returns every document matching filter, sorted, then skipped,
// then limited. Soft-deleted documents are excluded unless
// opts.IncludeDeleted is set. The result is a finite materialized slice.
func (r *Repository) FindMany(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	r.logger.Info("Finding many documents", "collection", collection, "filter", filter)

	raw, err := r.exec.Find(ctx, collection, withVisibility(filter, opts.IncludeDeleted), FindQuery{
		Sort:  opts.Sort,
		Skip:  opts.Skip,
		Limit: opts.Limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Document, len(raw))
	for i, doc := range raw {
		results[i] = Document(doc)
	}
	r.logger.Info("Find many result", "collection", collection, "count", len(results))
	return results, nil
}

// CountDocuments counts documents matching filter exactly as given. The
// soft-delete filter is NOT applied; callers wanting visible-only counts
// must add it themselves.
func (r *Repository) CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error) {
	r.logger.Info("Counting documents", "collection", collection, "filter", filter)
	return r.exec.Count(ctx, collection, filter)
}

// DeleteOne removes the first match of filter. By default this is a soft
// delete: the document stays in the store with is_deleted=true. With
// opts.Hard it is physically removed. It returns the affected count.
func (r *Repository) DeleteOne(ctx context.Context, collection string, filter Filter, opts DeleteOptions) (int64, error) {
	r.logger.Info("Deleting one document", "collection", collection, "filter", filter, "hard", opts.Hard)

	if opts.Hard {
		deleted, err := r.exec.DeleteOne(ctx, collection, filter)
		if err != nil {
			return 0, err
		}
		r.logger.Info("Physical delete result", "collection", collection, "deleted", deleted)
		return deleted, nil
	}

	modified, err := r.setFields(ctx, collection, filter, Document{FieldDeleted: true}, false)
	if err != nil {
		return 0, err
	}
	r.logger.Info("Soft delete result", "collection", collection, "modified", modified)
	return modified, nil
}

// DeleteMany removes every match of filter, soft by default as DeleteOne.
func (r *Repository) DeleteMany(ctx context.Context, collection string, filter Filter, opts DeleteOptions) (int64, error) {
	r.logger.Info("Deleting many documents", "collection", collection, "filter", filter, "hard", opts.Hard)

	if opts.Hard {
		deleted, err := r.exec.DeleteMany(ctx, collection, filter)
		if err != nil {
			return 0, err
		}
		r.logger.Info("Physical delete result", "collection", collection, "deleted", deleted)
		return deleted, nil
	}

	modified, err := r.setFields(ctx, collection, filter, Document{FieldDeleted: true}, true)
	if err != nil {
		return 0, err
	}
	r.logger.Info("Soft delete result", "collection", collection, "modified", modified)
	return modified, nil
}

// setFields is the single partial-update path. Both the public update
// operations and the soft deletes go through it, so the two can never drift
// in behavior.
func (r *Repository) setFields(ctx context.Context, collection string, filter Filter, fields Document, many bool) (int64, error) {
	if many {
		return r.exec.UpdateMany(ctx, collection, filter, fields)
	}
	return r.exec.UpdateOne(ctx, collection, filter, fields)
}

// validate checks doc against s when a schema was supplied. Validation is
// strictly opt-in.
func validate(doc Document, s *schema.Schema) error {
	if s == nil {
		return nil
	}
	return s.Validate(doc)
}

// withVisibility injects the soft-delete exclusion into a copy of filter.
// The caller's map is never mutated.
func withVisibility(filter Filter, includeDeleted bool) Filter {
	if includeDeleted {
		return filter
	}
	augmented := clone(filter)
	augmented[FieldDeleted] = false
	return augmented
}
