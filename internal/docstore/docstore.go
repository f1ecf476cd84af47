// Package docstore is the boundary to the hosted document database: keyed
// documents grouped in collections, equality queries, and push-based
// subscriptions that deliver full snapshots.
package docstore

import "context"

// IDField filters on the document id instead of a field.
const IDField = "__name__"

// Document is one stored record. Fields hold JSON-compatible values.
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter is an equality match on a top-level field.
type Filter struct {
	Field string
	Value any
}

func Where(field string, value any) *Filter {
	return &Filter{Field: field, Value: value}
}

// ByID matches a single document.
func ByID(id string) *Filter {
	return &Filter{Field: IDField, Value: id}
}

// SnapshotFunc receives the full result set every time it changes.
type SnapshotFunc func(docs []Document)

// ErrorFunc receives a terminal subscription error. No further snapshots follow.
type ErrorFunc func(err error)

// Unsubscribe releases a subscription. Calling it more than once is safe.
type Unsubscribe func()

// Store is implemented by the postgres, firestore and memory backends.
type Store interface {
	// Get returns domain.ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set writes fields; with merge, fields not mentioned are kept.
	Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error
	// Update patches an existing document and returns domain.ErrNotFound otherwise.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Add stores a new document under a generated id.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Query returns matching documents ordered by id. A nil filter matches all.
	Query(ctx context.Context, collection string, filter *Filter) ([]Document, error)
	// Subscribe delivers an initial snapshot and one per change until the
	// returned handle is called or ctx ends.
	Subscribe(ctx context.Context, collection string, filter *Filter, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error)
	Close() error
}

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's clock at write time.
var ServerTimestamp any = serverTimestamp{}

// ArrayOp adds or removes values from an array field without reading it first.
type ArrayOp struct {
	Union  bool
	Values []any
}

func ArrayUnion(values ...any) ArrayOp {
	return ArrayOp{Union: true, Values: values}
}

func ArrayRemove(values ...any) ArrayOp {
	return ArrayOp{Values: values}
}
