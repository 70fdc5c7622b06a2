package pageserver

import "sync"

// memStore is an in-memory PageStore fake for tests.
type memStore struct {
	mu   sync.Mutex
	data []byte
}

func newMemStore(size int) *memStore { return &memStore{data: make([]byte, size)} }

func (m *memStore) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off >= int64(len(m.data)) {
		return 0, nil
	}
	n := copy(p, m.data[off:])
	return n, nil
}

func (m *memStore) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	return copy(m.data[off:], p), nil
}

func (m *memStore) Size() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data)), nil
}

func (m *memStore) Sync() error                        { return nil }
func (m *memStore) Discard(offset, length int64) error { return nil }
