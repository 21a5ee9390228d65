package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// closedChan is handed out for cycles that settle synchronously
var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// engine runs fetch cycles for one loader instance. Every cycle gets a new
// generation and its own context; starting a cycle cancels the previous one,
// and a finishing cycle only writes state if its generation is still current.
type engine[I, V any] struct {
	name   string
	parent context.Context
	fetch  func(ctx context.Context, input I) (V, error)
	skip   func(input I) bool
	same   func(a, b I) bool
	logger zerolog.Logger

	mu      sync.Mutex
	input   I
	started bool
	closed  bool
	gen     uint64
	cancel  context.CancelFunc
	settled chan struct{}
	value   V
	loading bool
	err     error

	wg sync.WaitGroup
}

type snapshot[V any] struct {
	value   V
	loading bool
	err     error
}

// set records a new input and starts a cycle unless it equals the current one
func (e *engine[I, V]) set(input I) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started && e.same(e.input, input) {
		return
	}
	e.input = input
	e.started = true
	e.startLocked("input changed")
}

// refetch starts a new cycle with the current input
func (e *engine[I, V]) refetch() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.started = true
	e.startLocked("refetch")
}

func (e *engine[I, V]) startLocked(reason string) {
	if e.closed {
		return
	}

	e.gen++
	gen := e.gen
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	input := e.input
	if e.skip != nil && e.skip(input) {
		var zero V
		e.value = zero
		e.loading = false
		e.err = nil
		e.settled = closedChan
		e.logger.Debug().Str("loader", e.name).Uint64("generation", gen).Msg("Nothing to fetch")
		return
	}

	ctx, cancel := context.WithCancel(e.parent)
	settled := make(chan struct{})
	e.cancel = cancel
	e.settled = settled
	e.loading = true
	e.err = nil

	e.logger.Debug().
		Str("loader", e.name).
		Uint64("generation", gen).
		Str("reason", reason).
		Msg("Starting fetch cycle")

	e.wg.Add(1)
	go e.run(ctx, cancel, gen, input, settled)
}

func (e *engine[I, V]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, input I, settled chan struct{}) {
	defer e.wg.Done()
	defer close(settled)
	defer cancel()

	start := time.Now()
	value, err := e.safeFetch(ctx, input)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		e.logger.Debug().
			Str("loader", e.name).
			Uint64("generation", gen).
			Uint64("current", e.gen).
			Msg("Discarding superseded result")
		return
	}

	e.loading = false
	e.cancel = nil
	if err != nil {
		var zero V
		e.value = zero
		e.err = err
		e.logger.Debug().Err(err).Str("loader", e.name).Uint64("generation", gen).Msg("Fetch cycle failed")
		return
	}

	e.value = value
	e.logger.Debug().
		Str("loader", e.name).
		Uint64("generation", gen).
		Dur("took", time.Since(start)).
		Msg("Fetch cycle finished")
}

// safeFetch keeps a panicking fetch inside the loader boundary
func (e *engine[I, V]) safeFetch(ctx context.Context, input I) (value V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			value = zero
			err = fmt.Errorf("%s fetch panicked: %v", e.name, r)
		}
	}()
	return e.fetch(ctx, input)
}

func (e *engine[I, V]) snapshot() snapshot[V] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot[V]{value: e.value, loading: e.loading, err: e.err}
}

func (e *engine[I, V]) currentInput() I {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.input
}

// wait blocks until the latest cycle has settled
func (e *engine[I, V]) wait(ctx context.Context) (snapshot[V], error) {
	for {
		e.mu.Lock()
		settled := e.settled
		gen := e.gen
		e.mu.Unlock()

		if settled != nil {
			select {
			case <-settled:
			case <-ctx.Done():
				return e.snapshot(), ctx.Err()
			}
		}

		e.mu.Lock()
		if e.gen == gen {
			s := snapshot[V]{value: e.value, loading: e.loading, err: e.err}
			e.mu.Unlock()
			return s, nil
		}
		e.mu.Unlock()
	}
}

// close cancels any in-flight cycle and waits for it to exit
func (e *engine[I, V]) close() {
	e.mu.Lock()
	e.closed = true
	e.gen++
	e.loading = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.mu.Unlock()

	e.wg.Wait()
}
