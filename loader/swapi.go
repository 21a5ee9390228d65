package loader

import (
	"context"

	"github.com/s0up4200/holocron/swapi"
)

// ManyFromClient binds swapi.FetchMany to a client
func ManyFromClient[T any](c *swapi.Client) FetchMany[T] {
	return func(ctx context.Context, urls []string) ([]T, error) {
		return swapi.FetchMany[T](ctx, c, urls)
	}
}

// OneFromClient fetches entities of resource by identifier
func OneFromClient[T any](c *swapi.Client, resource swapi.Resource) FetchOne[T] {
	return func(ctx context.Context, id string) (T, error) {
		return swapi.FetchOne[T](ctx, c, resource.Path()+"/"+id+"/")
	}
}

// PagesFromClient fetches pages of resource
func PagesFromClient[T any](c *swapi.Client, resource swapi.Resource) FetchPage[T] {
	return func(ctx context.Context, search string, page int) (*swapi.Page[T], error) {
		return swapi.FetchCollection[T](ctx, c, resource, search, page)
	}
}
