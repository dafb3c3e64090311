package store

import "sync"

type memoryTable struct {
	mu     sync.RWMutex
	values map[string]string
}

func newMemoryTable() *memoryTable {
	return &memoryTable{values: make(map[string]string)}
}

func (t *memoryTable) Get(key string) (string, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.values[key]
	return v, ok, nil
}

func (t *memoryTable) Set(key string, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.values[key] = value
	return nil
}

type MemoryCache struct {
	*memoryTable
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{newMemoryTable()}
}

type MemorySettings struct {
	*memoryTable
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{newMemoryTable()}
}

func (s *MemorySettings) EnsureDefault(key string, def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		return v, nil
	}

	s.values[key] = def
	return def, nil
}
