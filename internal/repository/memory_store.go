package repository

import (
	"context"
	"sync"
)

// MemoryDocumentStore keeps documents in process memory. Used by tests and
// the "memory" driver. Setting Err makes every SaveAll fail with it.
type MemoryDocumentStore struct {
	mu    sync.Mutex
	docs  map[string][]byte
	Err   error
	Saves int
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[string][]byte)}
}

func (m *MemoryDocumentStore) Load(_ context.Context, coleccion string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[coleccion]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

func (m *MemoryDocumentStore) SaveAll(ctx context.Context, docs map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for col, doc := range docs {
		m.docs[col] = append([]byte(nil), doc...)
	}
	m.Saves++
	return nil
}

func (m *MemoryDocumentStore) Ping(context.Context) error { return nil }

// Put seeds a raw document, bypassing Err.
func (m *MemoryDocumentStore) Put(coleccion string, doc []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[coleccion] = doc
}
