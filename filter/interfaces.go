package filter

import (
	"context"

	"github.com/s0up4200/holocron/swapi"
)

// Filter decides whether a planet is kept
type Filter interface {
	// Evaluate checks if a planet matches the filter criteria
	Evaluate(planet swapi.Planet) bool
}

// CompiledFilter is a filter compiled from an expression
type CompiledFilter interface {
	Filter

	// Expression returns the source expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler is a Compiler that keeps compiled programs around
type CachingCompiler interface {
	Compiler

	// Clear drops all cached programs
	Clear()

	// Size returns the number of cached programs
	Size() int
}

// Evaluator applies a filter to a list of planets, keeping their order
type Evaluator interface {
	Evaluate(ctx context.Context, filter CompiledFilter, planets []swapi.Planet) ([]swapi.Planet, error)
}

// WorkerPool runs submitted work with bounded concurrency
type WorkerPool interface {
	// Submit queues work, blocking while the pool is saturated
	Submit(ctx context.Context, work func()) error

	// Stop stops accepting work and waits for running work to finish
	Stop(ctx context.Context) error
}
