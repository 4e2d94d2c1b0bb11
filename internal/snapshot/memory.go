package snapshot

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string][]byte
}

// NewMemoryStore creates an in-memory snapshot store. Used in development
// mode and unit tests; state does not survive the process.
func NewMemoryStore() Store {
	return &memoryStore{tables: make(map[string]map[string][]byte)}
}

func (s *memoryStore) SaveTable(_ context.Context, table string, rows map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(map[string][]byte, len(rows))
	for key, data := range rows {
		buf := make([]byte, len(data))
		copy(buf, data)
		copied[key] = buf
	}
	s.tables[table] = copied
	return nil
}

func (s *memoryStore) LoadTable(_ context.Context, table string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make(map[string][]byte, len(s.tables[table]))
	for key, data := range s.tables[table] {
		buf := make([]byte, len(data))
		copy(buf, data)
		rows[key] = buf
	}
	return rows, nil
}
