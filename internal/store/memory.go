package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"tripTagAPI/internal/apperr"
)

// MemoryStore is an in-process DocumentStore for tests and local development.
// It applies the same transform markers and error mapping as the Firestore
// implementation. Query result order is unspecified, like the real thing.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(collection, id)
}

func (s *MemoryStore) getLocked(collection, id string) (*Document, error) {
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &Document{ID: id, Data: copyFields(doc)}, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, conds ...Condition) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Document
	for id, doc := range s.collections[collection] {
		ok := true
		for _, c := range conds {
			if !matches(doc[c.Field], c) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, &Document{ID: id, Data: copyFields(doc)})
		}
	}
	return out, nil
}

func (s *MemoryStore) QueryPrefix(ctx context.Context, collection, field, prefix string, limit int) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Document
	for id, doc := range s.collections[collection] {
		if v, ok := doc[field].(string); ok && strings.HasPrefix(v, prefix) {
			out = append(out, &Document{ID: id, Data: copyFields(doc)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		vi, _ := out[i].Data[field].(string)
		vj, _ := out[j].Data[field].(string)
		return vi < vj
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(collection, id, data)
}

func (s *MemoryStore) setLocked(collection, id string, data map[string]any) error {
	col := s.collections[collection]
	if col == nil {
		col = make(map[string]map[string]any)
		s.collections[collection] = col
	}
	doc := make(map[string]any, len(data))
	for k, v := range data {
		doc[k] = applyTransform(nil, v)
	}
	col[id] = doc
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.collections[collection][id]; exists {
		return apperr.ErrAlreadyExists
	}
	return s.setLocked(collection, id, data)
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(collection, id, fields)
}

func (s *MemoryStore) updateLocked(collection, id string, fields map[string]any) error {
	doc, ok := s.collections[collection][id]
	if !ok {
		return apperr.ErrNotFound
	}
	for k, v := range fields {
		doc[k] = applyTransform(doc[k], v)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Writes are staged and applied only if fn succeeds, so a failing
	// transaction leaves nothing behind.
	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, apply := range tx.writes {
		if err := apply(); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) RunBatch(ctx context.Context, fn func(b Batch)) error {
	b := &memoryBatch{}
	fn(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range b.ops {
		if err := op(s); err != nil {
			return err
		}
	}
	return nil
}

type memoryTx struct {
	store  *MemoryStore
	writes []func() error
}

func (tx *memoryTx) Get(collection, id string) (*Document, error) {
	return tx.store.getLocked(collection, id)
}

func (tx *memoryTx) Set(collection, id string, data map[string]any) error {
	tx.writes = append(tx.writes, func() error {
		return tx.store.setLocked(collection, id, data)
	})
	return nil
}

func (tx *memoryTx) Update(collection, id string, fields map[string]any) error {
	tx.writes = append(tx.writes, func() error {
		return tx.store.updateLocked(collection, id, fields)
	})
	return nil
}

func (tx *memoryTx) Delete(collection, id string) error {
	tx.writes = append(tx.writes, func() error {
		delete(tx.store.collections[collection], id)
		return nil
	})
	return nil
}

type memoryBatch struct {
	ops []func(*MemoryStore) error
}

func (b *memoryBatch) Set(collection, id string, data map[string]any) {
	b.ops = append(b.ops, func(s *MemoryStore) error {
		return s.setLocked(collection, id, data)
	})
}

func (b *memoryBatch) Update(collection, id string, fields map[string]any) {
	b.ops = append(b.ops, func(s *MemoryStore) error {
		return s.updateLocked(collection, id, fields)
	})
}

func (b *memoryBatch) Delete(collection, id string) {
	b.ops = append(b.ops, func(s *MemoryStore) error {
		delete(s.collections[collection], id)
		return nil
	})
}

func matches(have any, c Condition) bool {
	switch c.Op {
	case "==":
		return equalValues(have, c.Value)
	case "in":
		switch want := c.Value.(type) {
		case []string:
			for _, w := range want {
				if equalValues(have, w) {
					return true
				}
			}
		case []any:
			for _, w := range want {
				if equalValues(have, w) {
					return true
				}
			}
		}
		return false
	case ">":
		return greaterThan(have, c.Value)
	default:
		return false
	}
}

func equalValues(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if isNumber(a) && isNumber(b) {
		return toFloat(a) == toFloat(b)
	}
	return reflect.DeepEqual(a, b)
}

func greaterThan(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.After(bt)
	}
	if isNumber(a) && isNumber(b) {
		return toFloat(a) > toFloat(b)
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// applyTransform resolves a transform marker against the current field value;
// plain values pass through (with slices copied so callers can't alias the
// stored data).
func applyTransform(current, v any) any {
	switch tv := v.(type) {
	case ArrayUnion:
		out := anySlice(current)
		for _, e := range tv.Values {
			found := false
			for _, have := range out {
				if equalValues(have, e) {
					found = true
					break
				}
			}
			if !found {
				out = append(out, e)
			}
		}
		return out
	case ArrayRemove:
		var out []any
		for _, have := range anySlice(current) {
			keep := true
			for _, e := range tv.Values {
				if equalValues(have, e) {
					keep = false
					break
				}
			}
			if keep {
				out = append(out, have)
			}
		}
		if out == nil {
			out = []any{}
		}
		return out
	case Increment:
		var cur int64
		switch n := current.(type) {
		case int64:
			cur = n
		case int:
			cur = int64(n)
		case float64:
			cur = int64(n)
		}
		return cur + tv.Amount
	case []string:
		cp := make([]string, len(tv))
		copy(cp, tv)
		return cp
	case []any:
		cp := make([]any, len(tv))
		copy(cp, tv)
		return cp
	default:
		return v
	}
}

func anySlice(v any) []any {
	switch s := v.(type) {
	case []any:
		out := make([]any, len(s))
		copy(out, s)
		return out
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	default:
		return nil
	}
}

func copyFields(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = applyTransform(nil, v)
	}
	return out
}

// MemoryObjects is the test double for ObjectStorage.
type MemoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryObjects() *MemoryObjects {
	return &MemoryObjects{objects: make(map[string][]byte)}
}

func (m *MemoryObjects) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[path] = cp
	return fmt.Sprintf("mem://%s", path), nil
}

func (m *MemoryObjects) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *MemoryObjects) Object(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	return data, ok
}
