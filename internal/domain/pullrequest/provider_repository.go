package pullrequest

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type providerEntry struct {
	provider *DataProvider
	refs     int
}

// ProviderRepository hands out one DataProvider per pull request and
// disposes it when the last holder releases it.
type ProviderRepository struct {
	repo  Repository
	store ViewedStore
	opts  []ProviderOption

	mu      sync.Mutex
	entries map[EntityID]*providerEntry
}

func NewProviderRepository(repo Repository, store ViewedStore, opts ...ProviderOption) *ProviderRepository {
	return &ProviderRepository{
		repo:    repo,
		store:   store,
		opts:    opts,
		entries: make(map[EntityID]*providerEntry),
	}
}

// Get returns the provider of id. The caller must call release exactly
// once when done with it; extra calls are ignored.
func (r *ProviderRepository) Get(id EntityID) (*DataProvider, func()) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &providerEntry{provider: NewDataProvider(id, r.repo, r.store, r.opts...)}
		r.entries[id] = e
		log.Debug().Str("pr", string(id)).Msg("data provider created")
	}
	e.refs++
	r.mu.Unlock()

	var once sync.Once
	return e.provider, func() {
		once.Do(func() { r.release(id, e) })
	}
}

func (r *ProviderRepository) release(id EntityID, e *providerEntry) {
	r.mu.Lock()
	e.refs--
	last := e.refs == 0 && r.entries[id] == e
	if last {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if last {
		log.Debug().Str("pr", string(id)).Msg("data provider disposed")
		e.provider.Dispose()
	}
}

// Len is the number of live providers.
func (r *ProviderRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Dispose disposes every live provider regardless of holders.
func (r *ProviderRepository) Dispose() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[EntityID]*providerEntry)
	r.mu.Unlock()

	for _, e := range entries {
		e.provider.Dispose()
	}
}
