// Package lazy provides cancellable futures and lazily computed, cached
// values built on top of them.
package lazy

import (
	"context"
	"sync"

	"geepr/internal/pkg/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// Value caches the future of a single background computation.
//
// At most one computation is current at a time: concurrent Get calls on an
// empty value share one future. Drop, OverrideProcess and Dispose cancel
// the current computation; a result arriving after that is discarded.
type Value[T any] struct {
	name    string
	compute func(ctx context.Context) *Future[T]
	metrics metrics.Collector

	mu        sync.Mutex
	current   *Future[T]
	disposed  bool
	listeners map[int]func()
	nextID    int
}

type Option func(*valueOptions)

type valueOptions struct {
	name    string
	metrics metrics.Collector
}

func WithName(name string) Option {
	return func(o *valueOptions) { o.name = name }
}

func WithMetrics(c metrics.Collector) Option {
	return func(o *valueOptions) { o.metrics = c }
}

// New creates an empty value. compute is not called until the first Get.
func New[T any](compute func(ctx context.Context) *Future[T], opts ...Option) *Value[T] {
	o := &valueOptions{name: "value", metrics: metrics.Nop{}}
	for _, opt := range opts {
		opt(o)
	}

	return &Value[T]{
		name:      o.name,
		compute:   compute,
		metrics:   o.metrics,
		listeners: make(map[int]func()),
	}
}

func (v *Value[T]) Get() *Future[T] {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return Cancelled[T]()
	}
	if v.current != nil {
		f := v.current
		v.mu.Unlock()
		return f
	}

	// The proxy is published before compute runs so callers arriving
	// meanwhile join it instead of starting a second computation.
	proxy := newFuture[T]()
	v.current = proxy
	v.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	proxy.whenDone(cancel)
	v.watchCancellation(proxy)

	v.metrics.ComputationStarted(v.name)
	log.Debug().Str("value", v.name).Msg("computation started")

	if proxy.IsDone() {
		return proxy
	}

	src := v.compute(ctx)
	src.whenDone(func() {
		proxy.complete(src.Peek())
	})
	proxy.whenDone(func() {
		if proxy.isCancelled() {
			src.Cancel()
		}
	})

	return proxy
}

// Cached returns the current future without starting a computation.
func (v *Value[T]) Cached() *Future[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Drop cancels the current computation and empties the cache.
func (v *Value[T]) Drop() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	old := v.current
	v.current = nil
	v.mu.Unlock()

	if old != nil {
		old.Cancel()
	}

	log.Debug().Str("value", v.name).Msg("dropped")
	v.notify()
}

// OverrideProcess installs f as the current result, cancelling whatever
// was computing before.
func (v *Value[T]) OverrideProcess(f *Future[T]) {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		f.Cancel()
		return
	}
	old := v.current
	v.current = f
	v.mu.Unlock()

	if old != nil && old != f {
		old.Cancel()
	}
	v.watchCancellation(f)

	v.notify()
}

// CombineResult folds the result of other into the cached value once both
// complete. A failed other leaves the cached result as it was. An empty
// value stays empty: the next Get loads fresh state anyway.
func CombineResult[T, U any](v *Value[T], other *Future[U], combiner func(T, U) T) {
	v.mu.Lock()
	cur := v.current
	if v.disposed || cur == nil {
		v.mu.Unlock()
		return
	}

	combined := newFuture[T]()
	v.current = combined
	v.mu.Unlock()

	combined.whenDone(func() {
		if combined.isCancelled() {
			cur.Cancel()
		}
	})
	cur.whenDone(func() {
		base, err := cur.Peek()
		if err != nil {
			combined.complete(base, err)
			return
		}

		other.whenDone(func() {
			u, err := other.Peek()
			if err != nil {
				combined.complete(base, nil)
				return
			}

			combined.complete(combiner(base, u), nil)
		})
	})
	v.watchCancellation(combined)

	v.notify()
}

// AddListener registers fn to run synchronously after every drop or
// replacement of the cached result. The returned func unregisters it.
func (v *Value[T]) AddListener(fn func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.nextID
	v.nextID++
	v.listeners[id] = fn

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}

// Dispose cancels the current computation and turns every later Get into
// a cancelled future.
func (v *Value[T]) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.disposed = true
	old := v.current
	v.current = nil
	v.listeners = make(map[int]func())
	v.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
}

// watchCancellation empties the cache when f is cancelled while current.
func (v *Value[T]) watchCancellation(f *Future[T]) {
	f.whenDone(func() {
		if !f.isCancelled() {
			return
		}
		v.metrics.ComputationCancelled(v.name)

		v.mu.Lock()
		cleared := v.current == f
		if cleared {
			v.current = nil
		}
		v.mu.Unlock()

		if cleared {
			v.notify()
		}
	})
}

func (v *Value[T]) notify() {
	v.mu.Lock()
	ids := make([]int, 0, len(v.listeners))
	for id := range v.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, v.listeners[id])
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
