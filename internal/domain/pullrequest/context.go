package pullrequest

import (
	"context"
	"sync"

	"geepr/internal/pkg/eventbus"
	"geepr/internal/pkg/lazy"
	"geepr/internal/pkg/metrics"

	"github.com/rs/zerolog/log"
)

type ProviderOption func(*providerOptions)

type providerOptions struct {
	run     lazy.Runner
	bus     *eventbus.EventBus
	metrics metrics.Collector
}

// WithRunner sets where computations run. Defaults to lazy.GoRunner.
func WithRunner(run lazy.Runner) ProviderOption {
	return func(o *providerOptions) { o.run = run }
}

func WithEventBus(bus *eventbus.EventBus) ProviderOption {
	return func(o *providerOptions) { o.bus = bus }
}

func WithMetrics(c metrics.Collector) ProviderOption {
	return func(o *providerOptions) { o.metrics = c }
}

// providerContext is what every provider of one pull request shares.
type providerContext struct {
	id      EntityID
	repo    Repository
	run     lazy.Runner
	bus     *eventbus.EventBus
	metrics metrics.Collector

	mu     sync.Mutex
	states map[Concern]LoadState
}

func newProviderContext(id EntityID, repo Repository, opts ...ProviderOption) *providerContext {
	o := &providerOptions{run: lazy.GoRunner, metrics: metrics.Nop{}}
	for _, opt := range opts {
		opt(o)
	}

	return &providerContext{
		id:      id,
		repo:    repo,
		run:     o.run,
		bus:     o.bus,
		metrics: o.metrics,
		states:  make(map[Concern]LoadState),
	}
}

func (c *providerContext) publish(name string, e *Event) {
	e.ID = c.id
	if c.bus == nil {
		return
	}
	c.bus.Publish(name, e)
}

func (c *providerContext) state(concern Concern) LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[concern]
}

func (c *providerContext) setState(concern Concern, s LoadState) {
	c.mu.Lock()
	c.states[concern] = s
	c.mu.Unlock()
}

// track follows f through Loading to Loaded or Failed. A cancelled load
// goes back to Idle and is not reported as a failure.
func track[T any](c *providerContext, concern Concern, f *lazy.Future[T]) {
	c.setState(concern, LoadStateLoading)
	f.OnComplete(func(_ T, err error) {
		switch {
		case err == nil:
			c.setState(concern, LoadStateLoaded)
		case lazy.IsCancelled(err):
			c.setState(concern, LoadStateIdle)
		default:
			c.setState(concern, LoadStateFailed)
			log.Debug().Err(err).Str("pr", string(c.id)).Str("concern", string(concern)).Msg("load failed")
			c.publish(EventLoadFailed, &Event{Concern: concern, Err: err})
		}
	})
}

// newValue builds the lazy value of one concern. onLoaded runs for every
// successful computation that was not cancelled first.
func newValue[T any](
	c *providerContext,
	concern Concern,
	fn func(ctx context.Context) (T, error),
	onLoaded func(T),
) *lazy.Value[T] {
	return lazy.New(func(ctx context.Context) *lazy.Future[T] {
		f := lazy.Start(c.run, ctx, fn)
		if onLoaded != nil {
			f = lazy.Then(f, func(v T) (T, error) {
				onLoaded(v)
				return v, nil
			})
		}
		track(c, concern, f)

		return f
	}, lazy.WithName(string(concern)), lazy.WithMetrics(c.metrics))
}

// mutate runs a server mutation. The returned future completes after
// onSuccess has run.
func mutate[T any](c *providerContext, ctx context.Context, fn func(ctx context.Context) (T, error), onSuccess func(T)) *lazy.Future[T] {
	f := lazy.Start(c.run, ctx, fn)
	f.OnComplete(func(_ T, err error) {
		if err != nil {
			log.Debug().Err(err).Str("pr", string(c.id)).Msg("mutation failed")
		}
	})

	return lazy.Then(f, func(v T) (T, error) {
		onSuccess(v)
		return v, nil
	})
}
