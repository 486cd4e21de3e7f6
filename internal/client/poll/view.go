// Package poll implements the refresh loop shared by every list screen.
//
// A View fetches once when mounted, then on every tick of its interval until
// unmounted. Ticks do not wait for earlier fetches, so fetches may overlap;
// whichever result is delivered last wins. A failed fetch is logged and the
// previous value kept. Results that arrive after Unmount are dropped.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/logging"
)

var (
	ErrAlreadyMounted = errors.New("view already mounted")
	ErrBadInterval    = errors.New("poll interval must be positive")
)

// FetchFunc loads one snapshot of the view's data.
type FetchFunc[T any] func(ctx context.Context) (T, error)

type Option[T any] func(*View[T])

// OnUpdate registers a callback for every delivered value. Deliveries are
// serialized and fn must not call back into the View.
func OnUpdate[T any](fn func(T)) Option[T] {
	return func(v *View[T]) { v.onUpdate = fn }
}

// OnError registers a callback for failed fetches.
func OnError[T any](fn func(error)) Option[T] {
	return func(v *View[T]) { v.onError = fn }
}

type View[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]
	log      logging.Logger
	onUpdate func(T)
	onError  func(error)

	mu         sync.Mutex
	generation uint64
	mounted    bool
	stop       context.CancelFunc
	refetch    chan struct{}
	wg         sync.WaitGroup

	deliver sync.Mutex
	latest  T
	hasData bool
	fetches int
}

func New[T any](name string, interval time.Duration, fetch FetchFunc[T], log logging.Logger, opts ...Option[T]) *View[T] {
	v := &View[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		log:      log.With("component", "poll", "view", name),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *View[T]) Name() string { return v.name }

// Mount starts polling. Fetches run with ctx, so cancelling ctx also aborts
// requests in flight; Unmount does not.
func (v *View[T]) Mount(ctx context.Context) error {
	if v.interval <= 0 {
		return ErrBadInterval
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		return ErrAlreadyMounted
	}
	v.mounted = true
	v.generation++
	gen := v.generation
	v.refetch = make(chan struct{}, 1)

	loopCtx, stop := context.WithCancel(ctx)
	v.stop = stop

	v.wg.Add(1)
	go v.loop(loopCtx, ctx, gen, v.refetch)
	return nil
}

func (v *View[T]) loop(loopCtx, fetchCtx context.Context, gen uint64, refetch <-chan struct{}) {
	defer v.wg.Done()

	go v.run(fetchCtx, gen)

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			go v.run(fetchCtx, gen)
		case <-refetch:
			go v.run(fetchCtx, gen)
		}
	}
}

func (v *View[T]) run(ctx context.Context, gen uint64) {
	data, err := v.fetch(ctx)

	v.deliver.Lock()
	defer v.deliver.Unlock()

	if !v.current(gen) {
		return
	}
	v.fetches++
	if err != nil {
		v.log.Warn(ctx, "fetch failed, keeping last data", "error", err)
		if v.onError != nil {
			v.onError(err)
		}
		return
	}
	v.latest = data
	v.hasData = true
	if v.onUpdate != nil {
		v.onUpdate(data)
	}
}

func (v *View[T]) current(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted && v.generation == gen
}

// Refetch asks for one immediate extra fetch, e.g. after a filter change.
// Requests made while one is already pending are merged.
func (v *View[T]) Refetch() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	select {
	case v.refetch <- struct{}{}:
	default:
	}
}

// Unmount stops the ticker. Fetches still running finish but their results
// are discarded. Unmount is idempotent.
func (v *View[T]) Unmount() {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = false
	v.generation++
	stop := v.stop
	v.mu.Unlock()

	stop()
	v.wg.Wait()

	// wait out a delivery already past the generation check
	v.deliver.Lock()
	defer v.deliver.Unlock()
}

func (v *View[T]) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Latest returns the last delivered value and whether there is one.
func (v *View[T]) Latest() (T, bool) {
	v.deliver.Lock()
	defer v.deliver.Unlock()
	return v.latest, v.hasData
}

// Fetches counts completed fetches that were delivered, including failures.
func (v *View[T]) Fetches() int {
	v.deliver.Lock()
	defer v.deliver.Unlock()
	return v.fetches
}
