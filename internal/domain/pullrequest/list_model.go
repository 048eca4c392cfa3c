package pullrequest

import (
	"context"
	"sync"

	"geepr/internal/pkg/pagination"

	"github.com/rs/zerolog/log"
)

// ListModel accumulates the pull requests of a repository page by page.
type ListModel struct {
	loader *pagination.Loader[*Details]

	mu    sync.Mutex
	items []*Details
}

func NewListModel(repo Pager, o *ListOptions, opts ...pagination.Option) *ListModel {
	opts = append([]pagination.Option{pagination.WithName("pull_requests")}, opts...)

	return &ListModel{
		loader: pagination.NewLoader(repo, repo.PullRequestPages(o), opts...),
	}
}

func (m *ListModel) HasNext() bool {
	return m.loader.HasNext()
}

// Items returns a snapshot of the loaded pull requests.
func (m *ListModel) Items() []*Details {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Details, len(m.items))
	copy(out, m.items)
	return out
}

func (m *ListModel) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *ListModel) add(items []*Details) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append(m.items, items...)
	return len(m.items)
}

// LoadMore fetches the next page and returns its items. It returns nil
// when the list is complete or the page lost a race with another load.
func (m *ListModel) LoadMore(ctx context.Context) ([]*Details, error) {
	page, err := m.loader.LoadNext(ctx, pagination.UpdateModeNormal)
	if err != nil || page == nil {
		return nil, err
	}

	m.add(page.Items)

	return page.Items, nil
}

// LoadUpTo loads pages until at least max items are held and returns the
// first max of them. Unlike pagination.LoadUpTo the rest of the last page
// stays in the model: the cursor is already past that page, so dropping
// its tail would leave a gap before the next LoadMore.
func (m *ListModel) LoadUpTo(ctx context.Context, max int) ([]*Details, error) {
	if m.Len() < max {
		err := pagination.EachPage(ctx, m.loader, func(items []*Details) bool {
			return m.add(items) < max
		})
		if err != nil {
			return nil, err
		}
	}

	items := m.Items()
	if len(items) > max {
		items = items[:max]
	}

	return items, nil
}

// LoadAll loads every remaining page. Pages loaded before a failure stay
// in the model.
func (m *ListModel) LoadAll(ctx context.Context) ([]*Details, error) {
	err := pagination.EachPage(ctx, m.loader, func(items []*Details) bool {
		m.add(items)
		return true
	})
	if err != nil {
		return nil, err
	}

	return m.Items(), nil
}

// FindFirst looks through the loaded items, then keeps loading pages until
// pred matches or the list is complete. Every fetched page is kept whole.
func (m *ListModel) FindFirst(ctx context.Context, pred func(*Details) bool) (*Details, bool, error) {
	for _, d := range m.Items() {
		if pred(d) {
			return d, true, nil
		}
	}

	var found *Details
	err := pagination.EachPage(ctx, m.loader, func(items []*Details) bool {
		m.add(items)
		for _, d := range items {
			if pred(d) {
				found = d
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, false, err
	}

	return found, found != nil, nil
}

// Refresh brings the list up to date. Once every page has been loaded it
// asks only for pull requests changed since the last load: updated ones
// replace their entry, new ones are put in front in server order.
// Otherwise it starts over from the first page. It returns the number of
// changed items.
func (m *ListModel) Refresh(ctx context.Context) (int, error) {
	if m.loader.HasNext() || !m.loader.SupportsIncrementalUpdate() {
		m.Reset()
		items, err := m.LoadMore(ctx)
		return len(items), err
	}

	page, err := m.loader.LoadNext(ctx, pagination.UpdateModeIncremental)
	if err != nil || page == nil {
		return 0, err
	}
	updated := page.Items

	// A long list of changes comes in more than one page.
	for m.loader.HasNext() {
		page, err = m.loader.LoadNext(ctx, pagination.UpdateModeNormal)
		if err != nil || page == nil {
			break
		}
		updated = append(updated, page.Items...)
	}

	changed := m.merge(updated)
	log.Debug().Int("changed", changed).Msg("pull request list refreshed")

	return changed, err
}

func (m *ListModel) merge(updated []*Details) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := make(map[EntityID]int, len(m.items))
	for i, d := range m.items {
		index[d.ID] = i
	}

	fresh := []*Details{}
	freshIndex := map[EntityID]int{}
	for _, d := range updated {
		if i, ok := index[d.ID]; ok {
			m.items[i] = d
		} else if i, ok := freshIndex[d.ID]; ok {
			fresh[i] = d
		} else {
			freshIndex[d.ID] = len(fresh)
			fresh = append(fresh, d)
		}
	}
	m.items = append(fresh, m.items...)

	return len(updated)
}

// Reset forgets every loaded item and starts paging from the beginning.
func (m *ListModel) Reset() {
	m.loader.Reset()

	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
}
