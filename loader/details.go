package loader

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/holocron/composite"
	"github.com/s0up4200/holocron/swapi"
)

// DetailsOptions selects which relations of a resident are resolved
type DetailsOptions struct {
	IncludeSpecies  bool
	IncludeVehicles bool
}

// DefaultDetailsOptions resolves both species and vehicles
var DefaultDetailsOptions = DetailsOptions{IncludeSpecies: true, IncludeVehicles: true}

// DetailsState is the result shape of ResidentDetails
type DetailsState struct {
	Resident   composite.Resident
	Loading    bool
	HasDetails bool
}

// ResidentDetails combines a resident with its species and vehicles. Each
// relation is backed by its own Collection; an excluded relation is fed an
// empty URL list and never hits the network.
type ResidentDetails struct {
	species  *Collection[swapi.Species]
	vehicles *Collection[swapi.Vehicle]

	mu       sync.Mutex
	resident swapi.Resident
	opts     DetailsOptions
}

// NewResidentDetails creates a details loader and starts fetching right away
func NewResidentDetails(
	ctx context.Context,
	species FetchMany[swapi.Species],
	vehicles FetchMany[swapi.Vehicle],
	resident swapi.Resident,
	opts DetailsOptions,
	logger zerolog.Logger,
) *ResidentDetails {
	logger = logger.With().Str("resident", resident.Name).Logger()
	return &ResidentDetails{
		species:  NewCollection(ctx, species, speciesURLs(resident, opts), logger),
		vehicles: NewCollection(ctx, vehicles, vehicleURLs(resident, opts), logger),
		resident: resident,
		opts:     opts,
	}
}

// Set switches to another resident or option set
func (d *ResidentDetails) Set(resident swapi.Resident, opts DetailsOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resident = resident
	d.opts = opts
	d.species.SetURLs(speciesURLs(resident, opts))
	d.vehicles.SetURLs(vehicleURLs(resident, opts))
}

// State returns the current composite result
func (d *ResidentDetails) State() DetailsState {
	d.mu.Lock()
	defer d.mu.Unlock()

	return merge(d.resident, d.opts,
		relationState[swapi.Species]{urls: d.species.URLs(), state: d.species.State()},
		relationState[swapi.Vehicle]{urls: d.vehicles.URLs(), state: d.vehicles.State()},
	)
}

// Wait blocks until both relations have settled
func (d *ResidentDetails) Wait(ctx context.Context) (DetailsState, error) {
	if _, err := d.species.Wait(ctx); err != nil {
		return d.State(), err
	}
	if _, err := d.vehicles.Wait(ctx); err != nil {
		return d.State(), err
	}
	return d.State(), nil
}

// Close cancels both relations' in-flight fetches
func (d *ResidentDetails) Close() {
	d.species.Close()
	d.vehicles.Close()
}

// relationState is a collection result together with the URLs it was loaded for
type relationState[T any] struct {
	urls  []string
	state CollectionState[T]
}

// belongsTo reports whether the result was loaded for exactly want
func (r relationState[T]) belongsTo(want []string) bool {
	return slices.Equal(r.urls, want)
}

// merge builds the composite. A relation that is still loading, failed, or
// was loaded for another resident's references is left out instead of being
// merged half-resolved.
func merge(
	resident swapi.Resident,
	opts DetailsOptions,
	speciesRel relationState[swapi.Species],
	vehiclesRel relationState[swapi.Vehicle],
) DetailsState {
	species, vehicles := speciesRel.state, vehiclesRel.state

	withSpecies := opts.IncludeSpecies && settled(species.Loading, species.Err) &&
		speciesRel.belongsTo(speciesURLs(resident, opts))
	withVehicles := opts.IncludeVehicles && settled(vehicles.Loading, vehicles.Err) &&
		vehiclesRel.belongsTo(vehicleURLs(resident, opts))

	var out composite.Resident
	switch {
	case withSpecies && withVehicles:
		out = composite.WithAll(resident, species.Items, vehicles.Items)
	case withSpecies:
		out = composite.WithSpecies(resident, species.Items)
	case withVehicles:
		out = composite.WithVehicles(resident, vehicles.Items)
	default:
		out = composite.Base(resident)
	}

	return DetailsState{
		Resident:   out,
		Loading:    species.Loading || vehicles.Loading,
		HasDetails: composite.HasSpeciesDetails(out) || composite.HasVehicleDetails(out),
	}
}

func settled(loading bool, err error) bool {
	return !loading && err == nil
}

func speciesURLs(r swapi.Resident, opts DetailsOptions) []string {
	if !opts.IncludeSpecies {
		return nil
	}
	return r.Species
}

func vehicleURLs(r swapi.Resident, opts DetailsOptions) []string {
	if !opts.IncludeVehicles {
		return nil
	}
	return r.Vehicles
}
