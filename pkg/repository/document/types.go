package document

// FieldDeleted is the reserved soft-delete marker carried by every persisted
// document. It is stamped false on insert and flipped to true by soft
// deletes; it is never removed.
const FieldDeleted = "is_deleted"

// Document is an open-ended mapping of field names to values. The structure
// is checked at runtime against a schema, not by the type system.
type Document map[string]interface{}

// Filter represents field-based filtering criteria for document queries.
type Filter map[string]interface{}

// Sort specifies field and direction for sorting results.
type Sort struct {
	Field string
	Order SortOrder
}

// SortOrder defines the direction of sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FindOptions controls read visibility, ordering, and windowing. The zero
// value excludes soft-deleted documents, applies no sort, and returns every
// match.
type FindOptions struct {
	// IncludeDeleted makes soft-deleted documents visible to the query.
	IncludeDeleted bool
	// Sort is applied before Skip and Limit.
	Sort []Sort
	// Skip drops the first n sorted matches. Zero skips nothing.
	Skip int64
	// Limit caps the result size. Zero means no limit.
	Limit int64
}

// DeleteOptions selects between soft and physical deletion. The zero value
// soft-deletes.
type DeleteOptions struct {
	// Hard physically removes matches instead of flagging them deleted.
	Hard bool
}

// clone returns a shallow copy so augmentation never mutates caller maps.
func clone(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
