package loader

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
)

// FetchMany resolves a list of reference URLs, all or nothing
type FetchMany[T any] func(ctx context.Context, urls []string) ([]T, error)

// CollectionState is the result shape of a Collection
type CollectionState[T any] struct {
	Items   []T
	Loading bool
	Err     error
}

// Collection tracks the entities behind a list of reference URLs. It is used
// the same way for residents, species, vehicles and films.
//
// URL lists are compared by content and order, so handing in a freshly built
// but equal slice does not start a new fetch. Order matters because Items
// follows the input order.
type Collection[T any] struct {
	engine *engine[[]string, []T]
}

// NewCollection creates a collection and starts fetching urls right away
func NewCollection[T any](ctx context.Context, fetch FetchMany[T], urls []string, logger zerolog.Logger) *Collection[T] {
	c := &Collection[T]{
		engine: &engine[[]string, []T]{
			name:   "collection",
			parent: ctx,
			fetch:  fetch,
			skip:   func(urls []string) bool { return len(urls) == 0 },
			same:   func(a, b []string) bool { return slices.Equal(a, b) },
			logger: logger,
		},
	}
	c.engine.set(slices.Clone(urls))
	return c
}

// SetURLs replaces the URL list. An equal list is a no-op.
func (c *Collection[T]) SetURLs(urls []string) {
	c.engine.set(slices.Clone(urls))
}

// URLs returns the current URL list
func (c *Collection[T]) URLs() []string {
	return slices.Clone(c.engine.currentInput())
}

// State returns the current result
func (c *Collection[T]) State() CollectionState[T] {
	return collectionState(c.engine.snapshot())
}

// Wait blocks until the latest fetch cycle has settled
func (c *Collection[T]) Wait(ctx context.Context) (CollectionState[T], error) {
	s, err := c.engine.wait(ctx)
	return collectionState(s), err
}

// Close cancels any in-flight fetch
func (c *Collection[T]) Close() {
	c.engine.close()
}

func collectionState[T any](s snapshot[[]T]) CollectionState[T] {
	items := s.value
	if items == nil {
		items = []T{}
	}
	return CollectionState[T]{Items: items, Loading: s.loading, Err: s.err}
}
