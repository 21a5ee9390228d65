package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/s0up4200/holocron/swapi"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the input size from which evaluation is chunked across workers
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.batchSize = size
	}
}

// ConcurrentEvaluator evaluates small inputs inline and splits large ones
// into ordered chunks run on a worker pool
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.workerCount = max(e.workerCount, 1)
	e.batchSize = max(e.batchSize, 1)
	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate returns the planets matching filter in input order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, planets []swapi.Planet) ([]swapi.Planet, error) {
	if len(planets) == 0 {
		return []swapi.Planet{}, nil
	}

	if len(planets) < e.batchSize {
		return evaluateSequential(filter, planets), nil
	}

	return e.evaluateConcurrent(ctx, filter, planets)
}

func evaluateSequential(filter Filter, planets []swapi.Planet) []swapi.Planet {
	matches := make([]swapi.Planet, 0, len(planets))
	for _, planet := range planets {
		if filter.Evaluate(planet) {
			matches = append(matches, planet)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, planets []swapi.Planet) ([]swapi.Planet, error) {
	chunkSize := max(len(planets)/e.workerCount, e.batchSize)
	chunks := (len(planets) + chunkSize - 1) / chunkSize

	// one slot per chunk keeps the merge in input order
	results := make([][]swapi.Planet, chunks)
	var wg sync.WaitGroup

	for idx := range chunks {
		start := idx * chunkSize
		end := min(start+chunkSize, len(planets))
		chunk := planets[start:end]

		wg.Add(1)
		err := e.pool.Submit(ctx, func() {
			defer wg.Done()

			if ctx.Err() != nil {
				return
			}
			results[idx] = evaluateSequential(filter, chunk)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}

	matches := make([]swapi.Planet, 0, total)
	for _, r := range results {
		matches = append(matches, r...)
	}

	return matches, nil
}

// Stop stops the evaluator's worker pool. It must not race with Evaluate.
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
