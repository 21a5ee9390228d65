package loader

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/s0up4200/holocron/swapi"
)

// PageSize is the number of results SWAPI returns per page
const PageSize = 10

// FetchPage fetches one page of a collection
type FetchPage[T any] func(ctx context.Context, search string, page int) (*swapi.Page[T], error)

// Query selects a page of a collection. Zero values are left out of the request.
type Query struct {
	Search string
	Page   int
}

// PageState is the result shape of a Paginated loader
type PageState[T any] struct {
	Items      []T
	Loading    bool
	Err        error
	TotalPages int
}

type pageValue[T any] struct {
	items      []T
	totalPages int
}

// PaginatedOption configures a Paginated loader
type PaginatedOption[T any] func(*Paginated[T])

// WithSortByName sorts each fetched page by name with a stable,
// locale-aware collation. Without it the upstream order is kept.
func WithSortByName[T any](nameOf func(T) string, tag language.Tag) PaginatedOption[T] {
	return func(p *Paginated[T]) {
		p.sort = func(items []T) {
			SortByName(items, nameOf, tag)
		}
	}
}

// Paginated tracks one page of a searchable collection
type Paginated[T any] struct {
	engine *engine[Query, pageValue[T]]
	sort   func([]T)
}

// NewPaginated creates a paginated loader and starts fetching query right away
func NewPaginated[T any](ctx context.Context, fetch FetchPage[T], query Query, logger zerolog.Logger, opts ...PaginatedOption[T]) *Paginated[T] {
	p := &Paginated[T]{}
	for _, opt := range opts {
		opt(p)
	}

	p.engine = &engine[Query, pageValue[T]]{
		name:   "paginated",
		parent: ctx,
		fetch: func(ctx context.Context, q Query) (pageValue[T], error) {
			page, err := fetch(ctx, q.Search, q.Page)
			if err != nil {
				return pageValue[T]{}, err
			}
			if page == nil {
				return pageValue[T]{items: []T{}}, nil
			}
			items := slices.Clone(page.Results)
			if p.sort != nil {
				p.sort(items)
			}
			return pageValue[T]{items: items, totalPages: TotalPages(page.Count)}, nil
		},
		same:   func(a, b Query) bool { return a == b },
		logger: logger,
	}
	p.engine.set(query)
	return p
}

// SetQuery changes search and page. An equal query is a no-op.
func (p *Paginated[T]) SetQuery(query Query) {
	p.engine.set(query)
}

// Query returns the current query
func (p *Paginated[T]) Query() Query {
	return p.engine.currentInput()
}

// Refetch starts a new fetch cycle for the current query
func (p *Paginated[T]) Refetch() {
	p.engine.refetch()
}

// State returns the current result
func (p *Paginated[T]) State() PageState[T] {
	return pageState(p.engine.snapshot())
}

// Wait blocks until the latest fetch cycle has settled
func (p *Paginated[T]) Wait(ctx context.Context) (PageState[T], error) {
	s, err := p.engine.wait(ctx)
	return pageState(s), err
}

// Close cancels any in-flight fetch
func (p *Paginated[T]) Close() {
	p.engine.close()
}

func pageState[T any](s snapshot[pageValue[T]]) PageState[T] {
	items := s.value.items
	if items == nil {
		items = []T{}
	}
	return PageState[T]{
		Items:      items,
		Loading:    s.loading,
		Err:        s.err,
		TotalPages: s.value.totalPages,
	}
}

// TotalPages derives the page count from a total result count
func TotalPages(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + PageSize - 1) / PageSize
}

// SortByName stably sorts items by name using the collation rules of tag
func SortByName[T any](items []T, nameOf func(T) string, tag language.Tag) {
	c := collate.New(tag, collate.IgnoreCase)
	slices.SortStableFunc(items, func(a, b T) int {
		return c.CompareString(nameOf(a), nameOf(b))
	})
}
