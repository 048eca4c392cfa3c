package pullrequest

import (
	"context"

	"geepr/internal/pkg/lazy"
)

type ChangesProvider struct {
	c     *providerContext
	value *lazy.Value[*Changes]
}

func newChangesProvider(c *providerContext) *ChangesProvider {
	return &ChangesProvider{
		c: c,
		value: newValue(c, ConcernChanges, func(ctx context.Context) (*Changes, error) {
			commits, err := c.repo.GetCommits(ctx, c.id)
			if err != nil {
				return nil, err
			}

			files, err := c.repo.GetFiles(ctx, c.id)
			if err != nil {
				return nil, err
			}

			return &Changes{Commits: commits, Files: files}, nil
		}, nil),
	}
}

func (p *ChangesProvider) LoadChanges() *lazy.Future[*Changes] {
	return p.value.Get()
}

func (p *ChangesProvider) ReloadChanges() *lazy.Future[*Changes] {
	p.value.Drop()
	return p.value.Get()
}

func (p *ChangesProvider) State() LoadState {
	return p.c.state(ConcernChanges)
}

func (p *ChangesProvider) AddChangeListener(fn func()) func() {
	return p.value.AddListener(fn)
}
