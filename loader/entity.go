package loader

import (
	"context"

	"github.com/rs/zerolog"
)

// FetchOne fetches a single entity by identifier
type FetchOne[T any] func(ctx context.Context, id string) (T, error)

// EntityState is the result shape of an Entity
type EntityState[T any] struct {
	Item    *T
	Loading bool
	Err     error
}

// Entity tracks one entity addressed by identifier. An empty identifier
// means there is nothing to fetch.
type Entity[T any] struct {
	engine *engine[string, *T]
}

// NewEntity creates an entity loader and starts fetching id right away
func NewEntity[T any](ctx context.Context, fetch FetchOne[T], id string, logger zerolog.Logger) *Entity[T] {
	e := &Entity[T]{
		engine: &engine[string, *T]{
			name:   "entity",
			parent: ctx,
			fetch: func(ctx context.Context, id string) (*T, error) {
				item, err := fetch(ctx, id)
				if err != nil {
					return nil, err
				}
				return &item, nil
			},
			skip:   func(id string) bool { return id == "" },
			same:   func(a, b string) bool { return a == b },
			logger: logger,
		},
	}
	e.engine.set(id)
	return e
}

// SetID switches to another identifier. The same identifier is a no-op.
func (e *Entity[T]) SetID(id string) {
	e.engine.set(id)
}

// ID returns the current identifier
func (e *Entity[T]) ID() string {
	return e.engine.currentInput()
}

// Refetch starts a new fetch cycle for the current identifier
func (e *Entity[T]) Refetch() {
	e.engine.refetch()
}

// State returns the current result
func (e *Entity[T]) State() EntityState[T] {
	return entityState(e.engine.snapshot())
}

// Wait blocks until the latest fetch cycle has settled
func (e *Entity[T]) Wait(ctx context.Context) (EntityState[T], error) {
	s, err := e.engine.wait(ctx)
	return entityState(s), err
}

// Close cancels any in-flight fetch
func (e *Entity[T]) Close() {
	e.engine.close()
}

func entityState[T any](s snapshot[*T]) EntityState[T] {
	return EntityState[T]{Item: s.value, Loading: s.loading, Err: s.err}
}
