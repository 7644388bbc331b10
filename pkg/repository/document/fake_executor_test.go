package document

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// fakeStore is an in-memory Executor used to test repository semantics
// without a running store. It honors the contract the repository relies on:
// partial-merge updates, filter equality matching, sort-then-skip-then-limit
// reads, and idempotent collection creation.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string][]map[string]interface{}
	nextID      int
	createCalls map[string]int
	failWith    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string][]map[string]interface{}),
		createCalls: make(map[string]int),
	}
}

// rawCount reports the physical document count, soft-deleted included.
func (f *fakeStore) rawCount(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections[collection])
}

// seed stores a document as-is, bypassing the repository.
func (f *fakeStore) seed(collection string, doc map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[collection] = append(f.collections[collection], doc)
}

func matches(doc map[string]interface{}, filter Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func compareValues(a, b interface{}) int {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	as := fmt.Sprintf("%v", a)
	bs := fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func (f *fakeStore) InsertOne(_ context.Context, collection string, doc map[string]interface{}) (interface{}, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	stored := make(map[string]interface{}, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	id := fmt.Sprintf("id-%d", f.nextID)
	stored["_id"] = id
	f.collections[collection] = append(f.collections[collection], stored)
	return id, nil
}

func (f *fakeStore) InsertMany(ctx context.Context, collection string, docs []map[string]interface{}) ([]interface{}, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	ids := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		id, err := f.InsertOne(ctx, collection, doc)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) FindOne(_ context.Context, collection string, filter Filter) (map[string]interface{}, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.collections[collection] {
		if matches(doc, filter) {
			return doc, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Find(_ context.Context, collection string, filter Filter, query FindQuery) ([]map[string]interface{}, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var results []map[string]interface{}
	for _, doc := range f.collections[collection] {
		if matches(doc, filter) {
			results = append(results, doc)
		}
	}

	if len(query.Sort) > 0 {
		sort.SliceStable(results, func(i, j int) bool {
			for _, s := range query.Sort {
				c := compareValues(results[i][s.Field], results[j][s.Field])
				if s.Order == SortDesc {
					c = -c
				}
				if c != 0 {
					return c < 0
				}
			}
			return false
		})
	}

	if query.Skip > 0 {
		if query.Skip >= int64(len(results)) {
			return nil, nil
		}
		results = results[query.Skip:]
	}
	if query.Limit > 0 && query.Limit < int64(len(results)) {
		results = results[:query.Limit]
	}
	return results, nil
}

func (f *fakeStore) UpdateOne(_ context.Context, collection string, filter Filter, set map[string]interface{}) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, doc := range f.collections[collection] {
		if matches(doc, filter) {
			for k, v := range set {
				doc[k] = v
			}
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) UpdateMany(_ context.Context, collection string, filter Filter, set map[string]interface{}) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var modified int64
	for _, doc := range f.collections[collection] {
		if matches(doc, filter) {
			for k, v := range set {
				doc[k] = v
			}
			modified++
		}
	}
	return modified, nil
}

func (f *fakeStore) DeleteOne(_ context.Context, collection string, filter Filter) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := f.collections[collection]
	for i, doc := range docs {
		if matches(doc, filter) {
			f.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) DeleteMany(_ context.Context, collection string, filter Filter) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []map[string]interface{}
	var deleted int64
	for _, doc := range f.collections[collection] {
		if matches(doc, filter) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	f.collections[collection] = kept
	return deleted, nil
}

func (f *fakeStore) Count(_ context.Context, collection string, filter Filter) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, doc := range f.collections[collection] {
		if matches(doc, filter) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) EnsureCollection(_ context.Context, name string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls[name]++
	if _, ok := f.collections[name]; !ok {
		f.collections[name] = nil
	}
	return nil
}
