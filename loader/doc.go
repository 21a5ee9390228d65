// Package loader keeps fetch state for the views: a list of references
// (Collection), a single entity (Entity), a searchable page (Paginated) and a
// resident with its species and vehicles (ResidentDetails).
//
// A loader is created with its initial input and starts fetching at once.
// Setters react to input changes; every change starts exactly one new fetch
// cycle, and results of superseded cycles are dropped. Errors never escape a
// loader: they are reported through the Err field of its state.
//
//	planets := loader.NewPaginated(ctx, loader.PagesFromClient[swapi.Planet](client, swapi.ResourcePlanets),
//		loader.Query{Search: "tat", Page: 1}, logger)
//	defer planets.Close()
//
//	state, err := planets.Wait(ctx)
package loader
