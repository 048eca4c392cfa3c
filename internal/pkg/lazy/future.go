package lazy

import (
	"context"
	"errors"
	"sync"
)

var ErrCancelled = errors.New("computation cancelled")

// IsCancelled tells a cancellation apart from a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// Runner schedules a task on a background worker.
type Runner func(task func())

// GoRunner runs every task on its own goroutine.
var GoRunner Runner = func(task func()) { go task() }

// ImmediateRunner runs the task on the calling goroutine.
var ImmediateRunner Runner = func(task func()) { task() }

// Future is the result of a computation that completes exactly once.
type Future[T any] struct {
	done chan struct{}

	mu        sync.Mutex
	completed bool
	value     T
	err       error
	callbacks []func()
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

func Failed[T any](err error) *Future[T] {
	var zero T
	f := newFuture[T]()
	f.complete(zero, err)
	return f
}

func Cancelled[T any]() *Future[T] {
	return Failed[T](ErrCancelled)
}

// Start runs fn through run. Cancelling the returned future cancels the
// context handed to fn.
func Start[T any](run Runner, ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := newFuture[T]()
	f.whenDone(cancel)

	run(func() {
		defer cancel()
		if ctx.Err() != nil {
			f.Cancel()
			return
		}

		v, err := fn(ctx)
		f.complete(v, err)
	})

	return f
}

// Then maps the result of f. Cancelling the mapped future cancels f.
func Then[T, R any](f *Future[T], fn func(T) (R, error)) *Future[R] {
	out := newFuture[R]()
	out.whenDone(func() {
		if out.isCancelled() {
			f.Cancel()
		}
	})

	f.whenDone(func() {
		if out.IsDone() {
			return
		}

		v, err := f.Peek()
		if err != nil {
			var zero R
			out.complete(zero, err)
			return
		}

		r, err := fn(v)
		out.complete(r, err)
	})

	return out
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future completes or ctx is done. Giving up on
// the wait does not cancel the computation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Peek()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the result without blocking. Before completion it returns
// the zero value and a nil error; use IsDone to tell the cases apart.
func (f *Future[T]) Peek() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Cancel completes the future with ErrCancelled. It has no effect on a
// future that already completed.
func (f *Future[T]) Cancel() bool {
	var zero T
	return f.complete(zero, ErrCancelled)
}

func (f *Future[T]) isCancelled() bool {
	_, err := f.Peek()
	return f.IsDone() && errors.Is(err, ErrCancelled)
}

func (f *Future[T]) complete(v T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}

	f.completed = true
	f.value = v
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}

	return true
}

// whenDone runs fn once the future completes, immediately if it already has.
func (f *Future[T]) whenDone(fn func()) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	fn()
}

// OnComplete registers fn to observe the result.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.whenDone(func() {
		fn(f.Peek())
	})
}
