package namematch

import (
	"sort"
	"sync"
)

// NameIndexStore is the keyed store of spec.md §4.3: key name_hash,
// payloads (edit_distance, word_id, name_id). Typical fan-out per key
// is 1..10^3; IndexFanoutLimit (spec.md §7) is enforced by callers
// (the matcher), not by the store itself, since the cap is a
// query-time policy rather than a storage invariant.
type NameIndexStore interface {
	// PutMany appends payloads under hash. Build-time only.
	PutMany(hash uint64, entries []IndexEntry) error
	// Lookup returns all payloads for hash in a deterministic order.
	Lookup(hash uint64) ([]IndexEntry, error)
	// Scan streams every (hash, payloads) pair in deterministic
	// (ascending hash) order; stops early if yield returns false.
	Scan(yield func(hash uint64, entries []IndexEntry) bool) error
	// Len reports the number of distinct keys.
	Len() int
	Close() error
}

// NameIDIndexStore is the keyed store of spec.md §4.3: key name_id,
// one payload (entity_id, word_count).
type NameIDIndexStore interface {
	PutMany(recs []NameIDRec) error
	Lookup(nameID uint32) (NameIDRec, bool, error)
	Scan(yield func(NameIDRec) bool) error
	Len() int
	Close() error
}

// EntityIDIndexStore is the keyed store of spec.md §4.3: key
// entity_id, payloads (name_id, name_id_guid, full_name); multiple
// rows per entity_id are permitted (aliases).
type EntityIDIndexStore interface {
	PutMany(recs []EntityIDRec) error
	Lookup(entityID string) ([]EntityIDRec, error)
	Scan(yield func(EntityIDRec) bool) error
	Len() int
	Close() error
}

// memNameIndex is the in-memory NameIndexStore, map-backed behind a
// sync.RWMutex the way the teacher's SessionGenerator guards its edge
// map — readers (queries) take RLock, the one-shot builder writer
// takes Lock (spec.md §5: "index stores are read-only at query time;
// they may be opened once per process and shared across concurrent
// queries").
type memNameIndex struct {
	mu   sync.RWMutex
	data map[uint64][]IndexEntry
}

func newMemNameIndex() *memNameIndex {
	return &memNameIndex{data: make(map[uint64][]IndexEntry)}
}

func (m *memNameIndex) PutMany(hash uint64, entries []IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[hash] = append(m.data[hash], entries...)
	return nil
}

func (m *memNameIndex) Lookup(hash uint64) ([]IndexEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.data[hash]
	out := make([]IndexEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (m *memNameIndex) Scan(yield func(hash uint64, entries []IndexEntry) bool) error {
	m.mu.RLock()
	hashes := make([]uint64, 0, len(m.data))
	for h := range m.data {
		hashes = append(hashes, h)
	}
	m.mu.RUnlock()
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	for _, h := range hashes {
		m.mu.RLock()
		entries := append([]IndexEntry(nil), m.data[h]...)
		m.mu.RUnlock()
		if !yield(h, entries) {
			break
		}
	}
	return nil
}

func (m *memNameIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *memNameIndex) Close() error { return nil }

// memNameIDIndex is the in-memory NameIDIndexStore.
type memNameIDIndex struct {
	mu   sync.RWMutex
	data map[uint32]NameIDRec
}

func newMemNameIDIndex() *memNameIDIndex {
	return &memNameIDIndex{data: make(map[uint32]NameIDRec)}
}

func (m *memNameIDIndex) PutMany(recs []NameIDRec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		m.data[r.NameID] = r
	}
	return nil
}

func (m *memNameIDIndex) Lookup(nameID uint32) (NameIDRec, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.data[nameID]
	return r, ok, nil
}

func (m *memNameIDIndex) Scan(yield func(NameIDRec) bool) error {
	m.mu.RLock()
	ids := make([]uint32, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		m.mu.RLock()
		rec := m.data[id]
		m.mu.RUnlock()
		if !yield(rec) {
			break
		}
	}
	return nil
}

func (m *memNameIDIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *memNameIDIndex) Close() error { return nil }

// memEntityIDIndex is the in-memory EntityIDIndexStore.
type memEntityIDIndex struct {
	mu   sync.RWMutex
	data map[string][]EntityIDRec
}

func newMemEntityIDIndex() *memEntityIDIndex {
	return &memEntityIDIndex{data: make(map[string][]EntityIDRec)}
}

func (m *memEntityIDIndex) PutMany(recs []EntityIDRec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		m.data[r.EntityID] = append(m.data[r.EntityID], r)
	}
	return nil
}

func (m *memEntityIDIndex) Lookup(entityID string) ([]EntityIDRec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.data[entityID]
	out := make([]EntityIDRec, len(recs))
	copy(out, recs)
	return out, nil
}

func (m *memEntityIDIndex) Scan(yield func(EntityIDRec) bool) error {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	for _, k := range keys {
		m.mu.RLock()
		recs := append([]EntityIDRec(nil), m.data[k]...)
		m.mu.RUnlock()
		for _, r := range recs {
			if !yield(r) {
				return nil
			}
		}
	}
	return nil
}

func (m *memEntityIDIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *memEntityIDIndex) Close() error { return nil }
