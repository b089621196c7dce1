package store

import "context"

// Document is a raw document: its key plus the decoded field map. Domain
// packages convert to and from their own structs.
type Document struct {
	ID   string
	Data map[string]any
}

// Condition is a single field filter. Supported operators are "==", "in"
// (value is a []string or []any) and ">" (value is a time.Time or number).
type Condition struct {
	Field string
	Op    string
	Value any
}

func Where(field, op string, value any) Condition {
	return Condition{Field: field, Op: op, Value: value}
}

// Field transforms usable as values in Set/Update/batch payloads. The
// backend applies them server-side so concurrent writers don't clobber each
// other.
type (
	ArrayUnion  struct{ Values []any }
	ArrayRemove struct{ Values []any }
	Increment   struct{ Amount int64 }
)

func UnionStrings(values ...string) ArrayUnion {
	return ArrayUnion{Values: toAnySlice(values)}
}

func RemoveStrings(values ...string) ArrayRemove {
	return ArrayRemove{Values: toAnySlice(values)}
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// DocumentStore is the narrow slice of a hosted document database this
// service needs. Collection names may be slash-separated paths to address
// subcollections ("posts/{id}/likes").
//
// Get returns apperr.ErrNotFound for a missing document; Create returns
// apperr.ErrAlreadyExists when the key is taken. Every other failure is
// wrapped in *apperr.StoreError.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, conds ...Condition) ([]*Document, error)
	QueryPrefix(ctx context.Context, collection, field, prefix string, limit int) ([]*Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any) error
	Create(ctx context.Context, collection, id string, data map[string]any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error

	// RunTransaction executes fn atomically; all reads happen before any
	// write. The backend may retry fn on contention, so fn must be
	// side-effect free apart from its Tx calls.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	// RunBatch commits every operation queued on the Batch atomically.
	RunBatch(ctx context.Context, fn func(b Batch)) error
}

type Tx interface {
	Get(collection, id string) (*Document, error)
	Set(collection, id string, data map[string]any) error
	Update(collection, id string, fields map[string]any) error
	Delete(collection, id string) error
}

type Batch interface {
	Set(collection, id string, data map[string]any)
	Update(collection, id string, fields map[string]any)
	Delete(collection, id string)
}

// ObjectStorage is the managed bucket holding post photos and avatars.
type ObjectStorage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}
