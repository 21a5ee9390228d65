// Package composite merges a resident with its resolved related entities.
//
// A relation is either Absent (never requested) or Resolved with the complete
// fetch result. A Resolved relation may hold zero items; for display purposes
// that is treated the same as having no details.
package composite

import "github.com/s0up4200/holocron/swapi"

// RelationState tells whether a relation's details were resolved
type RelationState int

const (
	// Absent means the relation was not requested
	Absent RelationState = iota
	// Resolved means Items holds the complete fetch result
	Resolved
)

// String returns the string representation of a RelationState
func (s RelationState) String() string {
	switch s {
	case Absent:
		return "absent"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Relation holds the resolved details of one relation kind
type Relation[T any] struct {
	State RelationState
	Items []T
}

// IsResolved reports whether the relation was resolved, even if empty
func (r Relation[T]) IsResolved() bool {
	return r.State == Resolved
}

// HasItems reports whether the relation was resolved to at least one item
func (r Relation[T]) HasItems() bool {
	return r.State == Resolved && len(r.Items) > 0
}

func resolved[T any](items []T) Relation[T] {
	return Relation[T]{State: Resolved, Items: items}
}

// Kind distinguishes a bare resident from an enriched one
type Kind int

const (
	// KindBase is a resident without any resolved relation
	KindBase Kind = iota
	// KindEnriched is a resident with at least one resolved relation
	KindEnriched
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindEnriched:
		return "enriched"
	default:
		return "unknown"
	}
}

// Resident is a resident together with its resolved species and vehicles
type Resident struct {
	swapi.Resident
	Species  Relation[swapi.Species]
	Vehicles Relation[swapi.Vehicle]
}

// Kind reports whether any relation was resolved
func (r Resident) Kind() Kind {
	if r.Species.IsResolved() || r.Vehicles.IsResolved() {
		return KindEnriched
	}
	return KindBase
}

// Base wraps a resident without resolving any relation
func Base(resident swapi.Resident) Resident {
	return Resident{Resident: resident}
}

// WithSpecies returns resident with its species set to exactly species
func WithSpecies(resident swapi.Resident, species []swapi.Species) Resident {
	return Resident{
		Resident: resident,
		Species:  resolved(species),
	}
}

// WithVehicles returns resident with its vehicles set to exactly vehicles
func WithVehicles(resident swapi.Resident, vehicles []swapi.Vehicle) Resident {
	return Resident{
		Resident: resident,
		Vehicles: resolved(vehicles),
	}
}

// WithAll returns resident with both species and vehicles resolved
func WithAll(resident swapi.Resident, species []swapi.Species, vehicles []swapi.Vehicle) Resident {
	return Resident{
		Resident: resident,
		Species:  resolved(species),
		Vehicles: resolved(vehicles),
	}
}

// HasSpeciesDetails reports whether species were resolved and non-empty
func HasSpeciesDetails(r Resident) bool {
	return r.Species.HasItems()
}

// HasVehicleDetails reports whether vehicles were resolved and non-empty
func HasVehicleDetails(r Resident) bool {
	return r.Vehicles.HasItems()
}

// Wrap converts plain residents into base composites
func Wrap(residents []swapi.Resident) []Resident {
	out := make([]Resident, len(residents))
	for i, r := range residents {
		out[i] = Base(r)
	}
	return out
}
