package screens

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned to a fetch whose result was discarded because a
// newer fetch started after it.
var ErrSuperseded = errors.New("screens: superseded by a newer load")

// Loader holds one screen list. Every Load takes a new generation and only
// the latest generation may write the state.
type Loader[T any] struct {
	mu      sync.Mutex
	gen     uint64
	loading bool
	items   []T
	err     error
}

func (l *Loader[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) ([]T, error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.loading = true
	l.mu.Unlock()

	items, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil, ErrSuperseded
	}
	l.loading = false
	if err != nil {
		l.err = err
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	l.items = items
	l.err = nil
	return items, nil
}

func (l *Loader[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Loader[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *Loader[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
