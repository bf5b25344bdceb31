package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryKV keeps everything in process memory. It backs tests and the
// fallback used when the durable store is unavailable.
type MemoryKV struct {
	mu          sync.Mutex
	values      map[string]string
	completions []Completion
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := newMapTx(m.values)
	if err := fn(tx); err != nil {
		return err
	}
	m.values = tx.values
	return nil
}

func (m *MemoryKV) AppendCompletion(ctx context.Context, in Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = append(m.completions, in)
	return nil
}

func (m *MemoryKV) GetCompletion(ctx context.Context, id string) (Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.completions {
		if c.ID == id {
			return c, nil
		}
	}
	return Completion{}, ErrNotFound
}

func (m *MemoryKV) ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error) {
	m.mu.Lock()
	out := make([]Completion, 0, len(m.completions))
	for _, c := range m.completions {
		if filter.Since != nil && c.CompletedAt.Before(*filter.Since) {
			continue
		}
		out = append(out, c)
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []Completion{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MemoryKV) Close() error { return nil }

type mapTx struct {
	values map[string]string
}

func newMapTx(base map[string]string) *mapTx {
	staged := make(map[string]string, len(base))
	for k, v := range base {
		staged[k] = v
	}
	return &mapTx{values: staged}
}

func (t *mapTx) Get(key string) (string, bool, error) {
	v, ok := t.values[key]
	return v, ok, nil
}

func (t *mapTx) Set(key, value string) error {
	t.values[key] = value
	return nil
}
