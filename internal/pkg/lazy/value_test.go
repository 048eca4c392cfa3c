package lazy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"geepr/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pending hands out futures that the test completes by hand.
type pending struct {
	mu       sync.Mutex
	calls    int32
	futures  []*Future[int]
	contexts []context.Context
}

func (p *pending) compute(ctx context.Context) *Future[int] {
	atomic.AddInt32(&p.calls, 1)
	f := newFuture[int]()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.futures = append(p.futures, f)
	p.contexts = append(p.contexts, ctx)

	return f
}

func (p *pending) count() int {
	return int(atomic.LoadInt32(&p.calls))
}

func (p *pending) last() (*Future[int], context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.futures[len(p.futures)-1], p.contexts[len(p.contexts)-1]
}

func TestValue_Get(t *testing.T) {
	t.Run("does not compute before the first access", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		assert.Nil(t, v.Cached())
		assert.Equal(t, 0, p.count())
	})

	t.Run("concurrent callers share one computation", func(t *testing.T) {
		p := &pending{}
		m := metrics.NewPrometheus()
		v := New(p.compute, WithName("details"), WithMetrics(m))

		const callers = 32
		results := make([]*Future[int], callers)
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				results[i] = v.Get()
			}(i)
		}
		close(start)
		wg.Wait()

		assert.Equal(t, 1, p.count())
		for _, f := range results {
			assert.Same(t, results[0], f)
		}
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Computations.WithLabelValues("details")))
	})

	t.Run("caches the completed result", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		f := v.Get()
		src, _ := p.last()
		src.complete(5, nil)

		res, err := v.Get().Peek()
		assert.NoError(t, err)
		assert.Equal(t, 5, res)
		assert.Same(t, f, v.Get())
		assert.Equal(t, 1, p.count())
	})

	t.Run("keeps a failure until dropped", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		v.Get()
		src, _ := p.last()
		src.complete(0, errors.New("502"))

		_, err := v.Get().Peek()
		assert.EqualError(t, err, "502")
		assert.Equal(t, 1, p.count())

		v.Drop()
		v.Get()
		assert.Equal(t, 2, p.count())
	})

	t.Run("an externally cancelled future empties the value", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		v.Get().Cancel()

		assert.Nil(t, v.Cached())
		v.Get()
		assert.Equal(t, 2, p.count())
	})
}

func TestValue_Drop(t *testing.T) {
	t.Run("cancels the in-flight computation and recomputes once", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		first := v.Get()
		src, ctx := p.last()

		v.Drop()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
		assert.True(t, src.IsDone())
		_, err := first.Peek()
		assert.True(t, IsCancelled(err))

		second := v.Get()
		third := v.Get()
		assert.Equal(t, 2, p.count())
		assert.NotSame(t, first, second)
		assert.Same(t, second, third)
	})

	t.Run("a late result of a dropped computation is discarded", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		v.Get()
		stale, _ := p.last()
		v.Drop()

		fresh := v.Get()
		stale.complete(1, nil)
		assert.False(t, fresh.IsDone())

		next, _ := p.last()
		next.complete(2, nil)
		res, err := v.Get().Peek()
		assert.NoError(t, err)
		assert.Equal(t, 2, res)
	})

	t.Run("notifies listeners synchronously", func(t *testing.T) {
		v := New((&pending{}).compute)
		calls := 0
		remove := v.AddListener(func() { calls++ })
		v.Get()
		v.Drop()
		assert.Equal(t, 1, calls)

		remove()
		v.Drop()
		assert.Equal(t, 1, calls)
	})

	t.Run("leaves a completed result's value intact for holders", func(t *testing.T) {
		v := New(func(context.Context) *Future[int] { return Resolved(9) })
		f := v.Get()
		v.Drop()

		res, err := f.Peek()
		assert.NoError(t, err)
		assert.Equal(t, 9, res)
		assert.Nil(t, v.Cached())
	})
}

func TestValue_OverrideProcess(t *testing.T) {
	t.Run("replaces the computation without recomputing", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		inflight := v.Get()

		notified := 0
		v.AddListener(func() { notified++ })
		v.OverrideProcess(Resolved(100))

		_, err := inflight.Peek()
		assert.True(t, IsCancelled(err))
		res, err := v.Get().Peek()
		assert.NoError(t, err)
		assert.Equal(t, 100, res)
		assert.Equal(t, 1, p.count())
		assert.Equal(t, 1, notified)
	})

	t.Run("works on an empty value", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		v.OverrideProcess(Resolved(3))
		res, _ := v.Get().Peek()
		assert.Equal(t, 3, res)
		assert.Equal(t, 0, p.count())
	})
}

func TestCombineResult(t *testing.T) {
	t.Run("folds the other result into the cached one", func(t *testing.T) {
		v := New(func(context.Context) *Future[[]string] {
			return Resolved([]string{"a"})
		})
		v.Get()

		CombineResult(v, Resolved("b"), func(cur []string, add string) []string {
			return append(append([]string{}, cur...), add)
		})

		res, err := v.Get().Peek()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, res)
	})

	t.Run("waits for both sides", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		v.Get()
		src, _ := p.last()
		other := newFuture[int]()

		CombineResult(v, other, func(a, b int) int { return a + b })
		combined := v.Get()
		src.complete(1, nil)
		assert.False(t, combined.IsDone())

		other.complete(10, nil)
		res, err := combined.Peek()
		assert.NoError(t, err)
		assert.Equal(t, 11, res)
	})

	t.Run("a failed mutation keeps the cached value", func(t *testing.T) {
		v := New(func(context.Context) *Future[int] { return Resolved(4) })
		v.Get()
		CombineResult(v, Failed[int](errors.New("denied")), func(a, b int) int { return a + b })

		res, err := v.Get().Peek()
		assert.NoError(t, err)
		assert.Equal(t, 4, res)
	})

	t.Run("is a no-op on an empty value", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		CombineResult(v, Resolved(1), func(a, b int) int { return a + b })
		assert.Nil(t, v.Cached())
		assert.Equal(t, 0, p.count())
	})

	t.Run("dropping the combined result cancels the base computation", func(t *testing.T) {
		p := &pending{}
		v := New(p.compute)
		v.Get()
		src, _ := p.last()
		CombineResult(v, Resolved(1), func(a, b int) int { return a + b })

		v.Drop()
		assert.True(t, src.IsDone())
		_, err := src.Peek()
		assert.True(t, IsCancelled(err))
	})
}

func TestValue_Dispose(t *testing.T) {
	p := &pending{}
	v := New(p.compute)
	v.Get()
	_, ctx := p.last()

	v.Dispose()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	_, err := v.Get().Peek()
	assert.True(t, IsCancelled(err))
	assert.Equal(t, 1, p.count())
}
