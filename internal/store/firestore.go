package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tripTagAPI/internal/apperr"
)

// FirestoreStore implements DocumentStore on top of a Firestore client
// obtained from the Firebase app in main.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Ping issues a cheap one-document read so /health can verify connectivity.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collection("challenges").Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return &apperr.StoreError{Op: "ping", Err: err}
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, &apperr.StoreError{Op: "get", Err: err}
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, conds ...Condition) ([]*Document, error) {
	q := s.client.Collection(collection).Query
	for _, c := range conds {
		q = q.Where(c.Field, c.Op, c.Value)
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, &apperr.StoreError{Op: "query", Err: err}
	}
	return toDocuments(snaps), nil
}

func (s *FirestoreStore) QueryPrefix(ctx context.Context, collection, field, prefix string, limit int) ([]*Document, error) {
	// Standard Firestore prefix trick: range from the prefix to the highest
	// code point appended to it.
	q := s.client.Collection(collection).
		OrderBy(field, firestore.Asc).
		StartAt(prefix).
		EndAt(prefix + "\uf8ff")
	if limit > 0 {
		q = q.Limit(limit)
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, &apperr.StoreError{Op: "query-prefix", Err: err}
	}
	return toDocuments(snaps), nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, translateValues(data)); err != nil {
		return &apperr.StoreError{Op: "set", Err: err}
	}
	return nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(id).Create(ctx, translateValues(data)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return apperr.ErrAlreadyExists
		}
		return &apperr.StoreError{Op: "create", Err: err}
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, toUpdates(fields)); err != nil {
		if status.Code(err) == codes.NotFound {
			return apperr.ErrNotFound
		}
		return &apperr.StoreError{Op: "update", Err: err}
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return &apperr.StoreError{Op: "delete", Err: err}
	}
	return nil
}

func (s *FirestoreStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	err := s.client.RunTransaction(ctx, func(_ context.Context, t *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, t: t})
	})
	if err != nil {
		if se, ok := err.(*apperr.StoreError); ok {
			return se
		}
		if err == apperr.ErrNotFound || err == apperr.ErrAlreadyExists {
			return err
		}
		return &apperr.StoreError{Op: "transaction", Err: err}
	}
	return nil
}

func (s *FirestoreStore) RunBatch(ctx context.Context, fn func(b Batch)) error {
	wb := s.client.Batch()
	fn(&firestoreBatch{client: s.client, b: wb})
	if _, err := wb.Commit(ctx); err != nil {
		return &apperr.StoreError{Op: "batch", Err: err}
	}
	return nil
}

type firestoreTx struct {
	client *firestore.Client
	t      *firestore.Transaction
}

func (tx *firestoreTx) Get(collection, id string) (*Document, error) {
	snap, err := tx.t.Get(tx.client.Collection(collection).Doc(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, apperr.ErrNotFound
		}
		return nil, &apperr.StoreError{Op: "tx-get", Err: err}
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (tx *firestoreTx) Set(collection, id string, data map[string]any) error {
	return tx.t.Set(tx.client.Collection(collection).Doc(id), translateValues(data))
}

func (tx *firestoreTx) Update(collection, id string, fields map[string]any) error {
	return tx.t.Update(tx.client.Collection(collection).Doc(id), toUpdates(fields))
}

func (tx *firestoreTx) Delete(collection, id string) error {
	return tx.t.Delete(tx.client.Collection(collection).Doc(id))
}

type firestoreBatch struct {
	client *firestore.Client
	b      *firestore.WriteBatch
}

func (fb *firestoreBatch) Set(collection, id string, data map[string]any) {
	fb.b.Set(fb.client.Collection(collection).Doc(id), translateValues(data))
}

func (fb *firestoreBatch) Update(collection, id string, fields map[string]any) {
	fb.b.Update(fb.client.Collection(collection).Doc(id), toUpdates(fields))
}

func (fb *firestoreBatch) Delete(collection, id string) {
	fb.b.Delete(fb.client.Collection(collection).Doc(id))
}

// translateValues maps the store's transform markers onto the SDK's.
func translateValues(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = translateValue(v)
	}
	return out
}

func translateValue(v any) any {
	switch tv := v.(type) {
	case ArrayUnion:
		return firestore.ArrayUnion(tv.Values...)
	case ArrayRemove:
		return firestore.ArrayRemove(tv.Values...)
	case Increment:
		return firestore.Increment(tv.Amount)
	default:
		return v
	}
}

func toUpdates(fields map[string]any) []firestore.Update {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: translateValue(v)})
	}
	return updates
}

func toDocuments(snaps []*firestore.DocumentSnapshot) []*Document {
	docs := make([]*Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, &Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs
}
