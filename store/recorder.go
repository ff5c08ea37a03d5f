package store

import (
	"sort"
)

// RecordingStore wraps a CacheableKVStore and remembers every key written
// through it, together with the last written value (nil for delete).
type RecordingStore struct {
	CacheableKVStore
	changes map[string][]byte
}

var _ CacheableKVStore = (*RecordingStore)(nil)

// NewRecordingStore starts recording writes to db.
func NewRecordingStore(db CacheableKVStore) *RecordingStore {
	return &RecordingStore{
		CacheableKVStore: db,
		changes:          make(map[string][]byte),
	}
}

// Set records the change while performing it.
func (r *RecordingStore) Set(key, value []byte) error {
	if err := r.CacheableKVStore.Set(key, value); err != nil {
		return err
	}
	r.changes[string(key)] = value
	return nil
}

// Delete records the change while performing it.
func (r *RecordingStore) Delete(key []byte) error {
	if err := r.CacheableKVStore.Delete(key); err != nil {
		return err
	}
	r.changes[string(key)] = nil
	return nil
}

// NewBatch makes sure all writes go through this store.
func (r *RecordingStore) NewBatch() Batch {
	return NewNonAtomicBatch(r)
}

// CacheWrap makes sure cached writes are recorded once written.
func (r *RecordingStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(r, r.NewBatch(), nil)
}

// KVPairs returns all recorded changes in key order.
func (r *RecordingStore) KVPairs() []Model {
	res := make([]Model, 0, len(r.changes))
	for k, v := range r.changes {
		res = append(res, Pair([]byte(k), v))
	}
	sort.Slice(res, func(i, j int) bool {
		return string(res[i].Key) < string(res[j].Key)
	})
	return res
}
