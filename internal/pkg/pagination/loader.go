package pagination

import (
	"context"
	"sync/atomic"
	"time"

	"geepr/internal/pkg/metrics"

	"github.com/rs/zerolog/log"
)

// loaderState is an immutable snapshot. Every commit and every reset
// installs a new pointer, which is what the compare-and-swap compares.
type loaderState struct {
	cursor Cursor
	// generation is cancelled by Reset so requests issued against an
	// abandoned cursor stop early.
	generation context.Context
	cancel     context.CancelFunc
}

func newLoaderState(c Cursor) *loaderState {
	ctx, cancel := context.WithCancel(context.Background())
	return &loaderState{cursor: c, generation: ctx, cancel: cancel}
}

// Loader iterates the pages of one list endpoint.
type Loader[T any] struct {
	name     string
	executor Executor
	fetcher  Fetcher[T]
	now      func() time.Time
	metrics  metrics.Collector

	state atomic.Pointer[loaderState]
}

type Option func(*loaderOptions)

type loaderOptions struct {
	name    string
	now     func() time.Time
	metrics metrics.Collector
}

func WithName(name string) Option {
	return func(o *loaderOptions) { o.name = name }
}

func WithClock(now func() time.Time) Option {
	return func(o *loaderOptions) { o.now = now }
}

func WithMetrics(c metrics.Collector) Option {
	return func(o *loaderOptions) { o.metrics = c }
}

func NewLoader[T any](executor Executor, fetcher Fetcher[T], opts ...Option) *Loader[T] {
	o := &loaderOptions{
		name:    "list",
		now:     time.Now,
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(o)
	}

	l := &Loader[T]{
		name:     o.name,
		executor: executor,
		fetcher:  fetcher,
		now:      o.now,
		metrics:  o.metrics,
	}
	l.state.Store(newLoaderState(InitialCursor()))

	return l
}

func (l *Loader[T]) HasNext() bool {
	return l.state.Load().cursor.HasNext
}

// Cursor returns the last committed cursor.
func (l *Loader[T]) Cursor() Cursor {
	return l.state.Load().cursor
}

func (l *Loader[T]) SupportsIncrementalUpdate() bool {
	_, ok := l.fetcher.(IncrementalFetcher[T])
	return ok
}

// LoadNext fetches one page and advances the cursor. It returns a nil page
// and no error when the mode's preconditions are not met, and also when
// the fetched page was overtaken by a concurrent call or a Reset; in both
// cases nothing is committed.
func (l *Loader[T]) LoadNext(ctx context.Context, mode UpdateMode) (*Page[T], error) {
	snapshot := l.state.Load()

	req, err := l.buildRequest(snapshot.cursor, mode)
	if err != nil || req == nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	callerCtx := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(snapshot.generation, cancel)
	defer stop()

	started := l.now()
	l.metrics.PageRequested(l.name)
	log.Debug().
		Str("loader", l.name).
		Str("mode", mode.String()).
		Str("token", snapshot.cursor.Token).
		Msg("requesting page")

	resp, err := l.executor.Execute(ctx, req)
	if err != nil {
		if snapshot.generation.Err() != nil {
			// Reset won the race; not a failure of the caller's request.
			l.metrics.PageDiscarded(l.name)
			return nil, nil
		}
		return nil, err
	}
	if resp.Request == nil {
		resp.Request = req
	}

	page, err := l.fetcher.ParseResponse(resp)
	if err != nil {
		return nil, err
	}

	// A caller that gave up while the response was on its way must not
	// move the cursor.
	if err := callerCtx.Err(); err != nil {
		l.metrics.PageDiscarded(l.name)
		return nil, err
	}

	next := page.Next
	next.AsOf = &started
	if !l.state.CompareAndSwap(snapshot, &loaderState{
		cursor:     next,
		generation: snapshot.generation,
		cancel:     snapshot.cancel,
	}) {
		l.metrics.PageDiscarded(l.name)
		log.Debug().
			Str("loader", l.name).
			Msg("discarding page, loader state changed while fetching")
		return nil, nil
	}

	log.Debug().
		Str("loader", l.name).
		Int("items", len(page.Items)).
		Bool("hasNext", next.HasNext).
		Msg("page committed")

	return &Page[T]{Items: page.Items, Next: next}, nil
}

func (l *Loader[T]) buildRequest(c Cursor, mode UpdateMode) (*Request, error) {
	switch mode {
	case UpdateModeIncremental:
		inc, ok := l.fetcher.(IncrementalFetcher[T])
		if !ok || c.HasNext || c.AsOf == nil {
			return nil, nil
		}

		return inc.BuildIncrementalRequest(c, *c.AsOf)
	default:
		if !c.HasNext {
			return nil, nil
		}

		return l.fetcher.BuildRequest(c)
	}
}

// Reset forgets all pagination progress and cancels requests still in
// flight for the previous cursor.
func (l *Loader[T]) Reset() {
	old := l.state.Swap(newLoaderState(InitialCursor()))
	old.cancel()
}
