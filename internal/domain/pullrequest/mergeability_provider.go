package pullrequest

import (
	"context"

	"geepr/internal/pkg/lazy"
)

type MergeabilityProvider struct {
	c       *providerContext
	value   *lazy.Value[*Mergeability]
	details *DetailsProvider
}

func newMergeabilityProvider(c *providerContext, details *DetailsProvider) *MergeabilityProvider {
	return &MergeabilityProvider{
		c:       c,
		details: details,
		value: newValue(c, ConcernMergeability, func(ctx context.Context) (*Mergeability, error) {
			return c.repo.GetMergeability(ctx, c.id)
		}, nil),
	}
}

func (p *MergeabilityProvider) LoadMergeability() *lazy.Future[*Mergeability] {
	return p.value.Get()
}

func (p *MergeabilityProvider) ReloadMergeability() *lazy.Future[*Mergeability] {
	p.value.Drop()
	return p.value.Get()
}

// Merge merges the pull request. On success both the details and the
// mergeability are dropped so the next access shows the merged state.
func (p *MergeabilityProvider) Merge(ctx context.Context, o *MergeOptions) *lazy.Future[struct{}] {
	return mutate(p.c, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.c.repo.Merge(ctx, p.c.id, o)
	}, func(struct{}) {
		p.details.value.Drop()
		p.value.Drop()
		p.c.publish(EventStateChanged, &Event{Concern: ConcernMergeability})
	})
}

func (p *MergeabilityProvider) State() LoadState {
	return p.c.state(ConcernMergeability)
}

func (p *MergeabilityProvider) AddChangeListener(fn func()) func() {
	return p.value.AddListener(fn)
}
