package blob

import "sync"

// MemoryStore is a trivial in-process BlobStore implementation useful for
// tests, examples and single-process prototypes. It keeps all blobs in a map
// guarded by an RWMutex. Data is copied on save and load to avoid accidental
// external mutation of internal buffers.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// SaveBlob stores (or overwrites) the bytes for the given key. The input
// slice is copied before storage.
func (m *MemoryStore) SaveBlob(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = cp
	return nil
}

// LoadBlob returns a copy of the stored bytes and whether the key exists.
func (m *MemoryStore) LoadBlob(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

// DeleteBlob removes the key if present.
func (m *MemoryStore) DeleteBlob(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}
