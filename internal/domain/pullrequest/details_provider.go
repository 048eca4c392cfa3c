package pullrequest

import (
	"context"

	"geepr/internal/pkg/lazy"
)

type DetailsProvider struct {
	c     *providerContext
	value *lazy.Value[*Details]
	// loaded is called with every fresh Details, loaded or overridden.
	loaded func(*Details)
}

func newDetailsProvider(c *providerContext, loaded func(*Details)) *DetailsProvider {
	p := &DetailsProvider{c: c, loaded: loaded}
	p.value = newValue(c, ConcernDetails, func(ctx context.Context) (*Details, error) {
		return c.repo.GetPullRequest(ctx, c.id)
	}, loaded)

	return p
}

func (p *DetailsProvider) LoadDetails() *lazy.Future[*Details] {
	return p.value.Get()
}

func (p *DetailsProvider) ReloadDetails() *lazy.Future[*Details] {
	p.value.Drop()
	return p.value.Get()
}

// Update patches the pull request and installs the server's answer as the
// cached details.
func (p *DetailsProvider) Update(ctx context.Context, o *UpdateOptions) *lazy.Future[*Details] {
	return mutate(p.c, ctx, func(ctx context.Context) (*Details, error) {
		return p.c.repo.UpdatePullRequest(ctx, p.c.id, o)
	}, func(d *Details) {
		p.value.OverrideProcess(lazy.Resolved(d))
		p.c.setState(ConcernDetails, LoadStateLoaded)
		p.loaded(d)

		if o.State != nil {
			p.c.publish(EventStateChanged, &Event{Concern: ConcernDetails})
		} else {
			p.c.publish(EventMetadataChanged, &Event{Concern: ConcernDetails})
		}
	})
}

func (p *DetailsProvider) State() LoadState {
	return p.c.state(ConcernDetails)
}

func (p *DetailsProvider) AddChangeListener(fn func()) func() {
	return p.value.AddListener(fn)
}
