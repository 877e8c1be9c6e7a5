package records

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository keeps records in process memory, in insertion order.
type MemoryRepository[T Owned] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

func NewMemoryRepository[T Owned](seed ...T) *MemoryRepository[T] {
	r := &MemoryRepository[T]{items: make(map[string]T)}
	for _, rec := range seed {
		if _, err := r.Create(context.Background(), rec); err != nil {
			panic(fmt.Sprintf("seeding memory repository: %v", err))
		}
	}
	return r
}

func (r *MemoryRepository[T]) Create(_ context.Context, rec T) (T, error) {
	id := rec.RecordID()
	if id == "" {
		var zero T
		return zero, ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	r.items[id] = rec
	r.order = append(r.order, id)
	return rec, nil
}

func (r *MemoryRepository[T]) Get(_ context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (r *MemoryRepository[T]) List(_ context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *MemoryRepository[T]) Update(_ context.Context, rec T) (T, error) {
	id := rec.RecordID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.items[id] = rec
	return rec, nil
}
