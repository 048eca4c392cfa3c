package pullrequest

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// DataProvider is the per pull request facade over the lazily loaded
// details, changes, comments and viewed state.
//
// When freshly loaded details show that both the base and the head commit
// moved away from the previously known ones, the cached changes and
// mergeability are dropped. Comments and review threads are kept.
type DataProvider struct {
	ID           EntityID
	Details      *DetailsProvider
	Mergeability *MergeabilityProvider
	Changes      *ChangesProvider
	Comments     *CommentsProvider
	Reviews      *ReviewsProvider
	Viewed       *ViewedStateProvider

	c *providerContext

	mu       sync.Mutex
	baseHash string
	headHash string
	disposed bool
}

func NewDataProvider(id EntityID, repo Repository, store ViewedStore, opts ...ProviderOption) *DataProvider {
	c := newProviderContext(id, repo, opts...)
	p := &DataProvider{ID: id, c: c}

	p.Details = newDetailsProvider(c, p.detailsLoaded)
	p.Mergeability = newMergeabilityProvider(c, p.Details)
	p.Changes = newChangesProvider(c)
	p.Comments = newCommentsProvider(c)
	p.Reviews = newReviewsProvider(c)
	p.Viewed = newViewedStateProvider(c, store)

	return p
}

func (p *DataProvider) detailsLoaded(d *Details) {
	base, head := d.Destination.Hash, d.Source.Hash

	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	prevBase, prevHead := p.baseHash, p.headHash
	p.baseHash, p.headHash = base, head
	p.mu.Unlock()

	if prevBase == "" || prevHead == "" {
		return
	}
	if prevBase == base || prevHead == head {
		return
	}

	log.Debug().
		Str("pr", string(p.ID)).
		Str("base", base).
		Str("head", head).
		Msg("base and head moved, dropping changes")

	p.Changes.value.Drop()
	p.Mergeability.value.Drop()
}

// LoadState reports the state of the last load of a concern.
func (p *DataProvider) LoadState(concern Concern) LoadState {
	return p.c.state(concern)
}

// Dispose cancels every outstanding computation. Later loads return
// cancelled futures.
func (p *DataProvider) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	p.mu.Unlock()

	p.Details.value.Dispose()
	p.Mergeability.value.Dispose()
	p.Changes.value.Dispose()
	p.Comments.value.Dispose()
	p.Comments.loader.Reset()
	p.Reviews.value.Dispose()
	p.Reviews.loader.Reset()
	p.Viewed.value.Dispose()
}
