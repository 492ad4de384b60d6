package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
)

// MemoryBackend keeps collections in process memory. It backs handler tests
// and lets the server run without a database.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]map[string]any)}
}

func cloneDoc(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// fieldLess compares two field values for ordering. Strings and numbers
// compare naturally, mixed or unknown types fall back to their string forms.
func fieldLess(a, b any) bool {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func (m *MemoryBackend) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]Document, 0, len(m.data[collection]))
	for id, data := range m.data[collection] {
		docs = append(docs, Document{ID: id, Data: cloneDoc(data)})
	}

	sort.Slice(docs, func(i, j int) bool {
		if opts.OrderBy != "" {
			vi, vj := docs[i].Data[opts.OrderBy], docs[j].Data[opts.OrderBy]
			if opts.Descending {
				vi, vj = vj, vi
			}
			if fieldLess(vi, vj) {
				return true
			}
			if fieldLess(vj, vi) {
				return false
			}
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func (m *MemoryBackend) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[collection][id]
	if !ok {
		return Document{}, common.ErrNotFound
	}
	return Document{ID: id, Data: cloneDoc(data)}, nil
}

func (m *MemoryBackend) Set(ctx context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[collection] == nil {
		m.data[collection] = make(map[string]map[string]any)
	}
	m.data[collection][id] = cloneDoc(data)
	return nil
}

func (m *MemoryBackend) Merge(ctx context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[collection] == nil {
		m.data[collection] = make(map[string]map[string]any)
	}
	existing, ok := m.data[collection][id]
	if !ok {
		existing = make(map[string]any)
	}
	merged := cloneDoc(existing)
	for k, v := range data {
		merged[k] = v
	}
	m.data[collection][id] = merged
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data[collection], id)
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
