package swapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/holocron/fp"
)

// FetchOne fetches a single entity from endpoint
func FetchOne[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var out T
	if err := c.Get(ctx, endpoint, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// FetchByURL fetches the entity a reference URL points to
func FetchByURL[T any](ctx context.Context, c *Client, referenceURL string) (T, error) {
	return FetchOne[T](ctx, c, c.EndpointFor(referenceURL))
}

// FetchMany resolves every reference URL concurrently. Result i belongs to
// urls[i]. The batch is all-or-nothing: the first failure cancels the
// remaining requests and no partial result is returned.
func FetchMany[T any](ctx context.Context, c *Client, urls []string) ([]T, error) {
	if len(urls) == 0 {
		return []T{}, nil
	}

	results := make([]T, len(urls))
	g, ctx := errgroup.WithContext(ctx)

	for i, u := range urls {
		g.Go(func() error {
			item, err := FetchByURL[T](ctx, c, u)
			if err != nil {
				return err
			}
			results[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(results)).Msg("Resolved references")
	return results, nil
}

// FetchCollection fetches one page of a collection. Empty search and
// non-positive page are left out of the query entirely.
func FetchCollection[T any](ctx context.Context, c *Client, resource Resource, search string, page int) (*Page[T], error) {
	endpoint := BuildEndpoint(resource.Path(), BuildQuery(search, page))

	var out Page[T]
	if err := c.Get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		out.Results = []T{}
	}
	return &out, nil
}

// BuildQuery encodes the present collection parameters
func BuildQuery(search string, page int) string {
	pageParam := ""
	if page > 0 {
		pageParam = strconv.Itoa(page)
	}

	build := fp.Pipe(
		setIfPresent("search", search),
		setIfPresent("page", pageParam),
	)
	return build(url.Values{}).Encode()
}

// BuildEndpoint joins a path with an optional query string
func BuildEndpoint(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

func setIfPresent(key, value string) func(url.Values) url.Values {
	return func(v url.Values) url.Values {
		if value != "" {
			v.Set(key, value)
		}
		return v
	}
}

// ExtractID returns the last non-empty path segment of a reference URL,
// e.g. "https://swapi.dev/api/planets/1/" yields "1".
func ExtractID(referenceURL string) string {
	parts := strings.FieldsFunc(referenceURL, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// ResolveID accepts either a bare identifier or a reference URL and returns
// the identifier.
func ResolveID(idOrURL string) (string, error) {
	idOrURL = strings.TrimSpace(idOrURL)
	if idOrURL == "" {
		return "", ErrEmptyID
	}
	if !strings.Contains(idOrURL, "/") {
		return idOrURL, nil
	}
	id := ExtractID(idOrURL)
	if id == "" {
		return "", fmt.Errorf("no identifier in %q", idOrURL)
	}
	return id, nil
}
