// Package swapi provides a read-only client for the Star Wars API (SWAPI).
//
// Entities reference each other only through absolute URLs. This package
// fetches single entities, pages of a collection, and batches of references.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := swapi.NewClient("https://swapi.dev/api", logger,
//		swapi.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page, err := client.Planets(ctx, "tatoo", 1)
//	residents, err := swapi.FetchMany[swapi.Resident](ctx, client, page.Results[0].Residents)
//
// # Error Handling
//
// Non-2xx responses come back as *FetchError carrying the status code and
// text. FetchMany fails as a whole when any single reference fails.
package swapi
