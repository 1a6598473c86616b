package store

import (
	"context"
	"sync"
)

// MemoryKV is an in-memory KV for tests.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (s *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, nil
}

func (s *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// MemoryQueue is an in-memory FIFO queue for tests.
type MemoryQueue struct {
	mu    sync.Mutex
	items [][]byte
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Push(_ context.Context, item []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := make([]byte, len(item))
	copy(cp, item)
	q.items = append(q.items, cp)
	return nil
}

func (q *MemoryQueue) PushFront(_ context.Context, item []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := make([]byte, len(item))
	copy(cp, item)
	q.items = append([][]byte{cp}, q.items...)
	return nil
}

func (q *MemoryQueue) Pop(_ context.Context) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, ErrNotFound
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, nil
}

func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}
