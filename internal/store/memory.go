package store

import (
	"encoding/json"
	"sync"
)

// MemoryStore is the in-memory Store used by tests and as the fallback when
// no database is configured. The mutex makes every read-modify-write atomic,
// which the browser original never had.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string, out interface{}) error {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return ErrKeyNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *MemoryStore) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Update(key string, out interface{}, mutate func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if raw, ok := m.data[key]; ok {
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	if err := mutate(); err != nil {
		return err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}
