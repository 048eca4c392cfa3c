package pullrequest

import (
	"context"

	"geepr/internal/pkg/lazy"
)

// ViewedStateProvider tracks which files of the pull request the user has
// marked as viewed. Gitee has no API for it, so the marks live in a
// local ViewedStore.
type ViewedStateProvider struct {
	c     *providerContext
	store ViewedStore
	value *lazy.Value[ViewedState]
}

func newViewedStateProvider(c *providerContext, store ViewedStore) *ViewedStateProvider {
	return &ViewedStateProvider{
		c:     c,
		store: store,
		value: newValue(c, ConcernViewed, func(context.Context) (ViewedState, error) {
			return store.GetViewed(c.id)
		}, nil),
	}
}

func (p *ViewedStateProvider) GetViewedState() *lazy.Future[ViewedState] {
	return p.value.Get()
}

// UpdateViewedState persists the mark and folds it into the cached state
// without reloading it.
func (p *ViewedStateProvider) UpdateViewedState(ctx context.Context, path string, viewed bool) *lazy.Future[struct{}] {
	f := mutate(p.c, ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, p.store.SetViewed(p.c.id, path, viewed)
	}, func(struct{}) {
		p.c.publish(EventViewedChanged, &Event{Concern: ConcernViewed, Path: path})
	})

	lazy.CombineResult(p.value, f, func(vs ViewedState, _ struct{}) ViewedState {
		return vs.With(path, viewed)
	})

	return f
}

func (p *ViewedStateProvider) State() LoadState {
	return p.c.state(ConcernViewed)
}

func (p *ViewedStateProvider) AddChangeListener(fn func()) func() {
	return p.value.AddListener(fn)
}
