// Package store abstracts the durable key-value slots and queues the exam
// engine depends on, so tests can substitute in-memory implementations.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key is absent or a queue is empty.
var ErrNotFound = errors.New("store: not found")

// KV is a durable key-value slot.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Queue is a durable FIFO list.
type Queue interface {
	// Push appends an item to the tail of the queue.
	Push(ctx context.Context, item []byte) error
	// PushFront puts an item back at the head of the queue.
	PushFront(ctx context.Context, item []byte) error
	// Pop removes and returns the head of the queue, or ErrNotFound.
	Pop(ctx context.Context) ([]byte, error)
	// Len returns the number of queued items.
	Len(ctx context.Context) (int64, error)
}
