// Package operators keeps the set of operator chat ids that receive relayed
// submissions and may run management commands. Every change is written
// through to a Store.
package operators

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
)

var (
	ErrInvalidID    = errors.New("operator id must be numeric")
	ErrChatNotFound = errors.New("chat not found")
)

// ParseID accepts only a plain decimal number.
func ParseID(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidID
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidID
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return id, nil
}

// Registry is an insertion-ordered set of operator ids.
type Registry struct {
	mu    sync.RWMutex
	ids   []int64
	store Store
}

// Load reads the operator list from store. When the list was never saved
// the seed list is persisted and used instead. A list emptied by Remove
// stays empty.
func Load(ctx context.Context, store Store, seed []int64) (*Registry, error) {
	ids, saved, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load operators: %w", err)
	}
	r := &Registry{store: store}
	// старые базы без отметки, но со списком, тоже считаются записанными
	if !saved && len(ids) == 0 && len(seed) > 0 {
		r.ids = dedup(seed)
		if err := store.Save(ctx, r.ids); err != nil {
			return nil, fmt.Errorf("seed operators: %w", err)
		}
		return r, nil
	}
	r.ids = dedup(ids)
	return r, nil
}

func dedup(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (r *Registry) Contains(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.ids, id)
}

// List returns a snapshot in insertion order.
func (r *Registry) List() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.ids)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// Add returns false if id is already an operator. On a store failure the
// in-memory set is left unchanged.
func (r *Registry) Add(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.ids, id) {
		return false, nil
	}
	next := append(slices.Clone(r.ids), id)
	if err := r.store.Save(ctx, next); err != nil {
		return false, fmt.Errorf("save operators: %w", err)
	}
	r.ids = next
	return true, nil
}

// Remove returns false if id is not an operator.
func (r *Registry) Remove(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.ids, id)
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(r.ids), i, i+1)
	if err := r.store.Save(ctx, next); err != nil {
		return false, fmt.Errorf("save operators: %w", err)
	}
	r.ids = next
	return true, nil
}
