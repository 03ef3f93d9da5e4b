package session

import (
	"context"
	"sync"
)

// Storage is the persistent key-value store behind a browser session. Values
// are grouped by session id; reads and writes of different keys are not
// transactional.
type Storage interface {
	Get(ctx context.Context, sid, key string) (string, bool, error)
	Set(ctx context.Context, sid string, values map[string]string) error
	Delete(ctx context.Context, sid string, keys ...string) error
	Ping(ctx context.Context) error
}

// MemoryStorage keeps sessions in process memory. Sessions are lost on restart.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, sid, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[sid][key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, sid string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[sid]
	if !ok {
		bucket = make(map[string]string, len(values))
		m.data[sid] = bucket
	}
	for k, v := range values {
		bucket[k] = v
	}
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, sid string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[sid]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(bucket, k)
	}
	if len(bucket) == 0 {
		delete(m.data, sid)
	}
	return nil
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }

// Snapshot returns a copy of everything stored for sid.
func (m *MemoryStorage) Snapshot(sid string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data[sid]))
	for k, v := range m.data[sid] {
		out[k] = v
	}
	return out
}
