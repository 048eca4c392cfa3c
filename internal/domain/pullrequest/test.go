package pullrequest

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"geepr/internal/pkg/pagination"
)

// MockRepository is an in-memory Repository. Every call is counted by
// name; Err, when set, fails every call.
type MockRepository struct {
	mu sync.Mutex

	PullRequests []*Details
	Mergeability *Mergeability
	Files        []*FileChange
	Commits      []*Commit
	Comments     []*Comment
	PerPage      int
	Err          error
	// Gate, when set, makes GetPullRequest wait for a value to return,
	// ignoring cancellation.
	Gate chan *Details

	calls  map[string]int
	nextID int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{PerPage: 2, calls: map[string]int{}, nextID: 1000}
}

func (m *MockRepository) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
	return m.Err
}

func (m *MockRepository) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockRepository) SetDetails(d *Details) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, pr := range m.PullRequests {
		if pr.ID == d.ID {
			m.PullRequests[i] = d
			return
		}
	}
	m.PullRequests = append(m.PullRequests, d)
}

func (m *MockRepository) Execute(ctx context.Context, req *pagination.Request) (*pagination.Response, error) {
	if err := m.record("Execute"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &pagination.Response{StatusCode: 200, Request: req}, nil
}

func (m *MockRepository) PullRequestPages(*ListOptions) pagination.Fetcher[*Details] {
	return &mockPages[*Details]{
		perPage: m.PerPage,
		items: func(since time.Time) []*Details {
			m.mu.Lock()
			defer m.mu.Unlock()
			out := []*Details{}
			for _, d := range m.PullRequests {
				if since.IsZero() || d.Updated.After(since) {
					out = append(out, d)
				}
			}
			return out
		},
	}
}

func (m *MockRepository) CommentPages(EntityID) pagination.Fetcher[*Comment] {
	return &mockPages[*Comment]{
		perPage: m.PerPage,
		items: func(time.Time) []*Comment {
			m.mu.Lock()
			defer m.mu.Unlock()
			return append([]*Comment{}, m.Comments...)
		},
	}
}

func (m *MockRepository) GetPullRequest(_ context.Context, id EntityID) (*Details, error) {
	if err := m.record("GetPullRequest"); err != nil {
		return nil, err
	}

	if m.Gate != nil {
		return <-m.Gate, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.PullRequests {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}

	return nil, context.DeadlineExceeded
}

func (m *MockRepository) GetMergeability(context.Context, EntityID) (*Mergeability, error) {
	if err := m.record("GetMergeability"); err != nil {
		return nil, err
	}
	return m.Mergeability, nil
}

func (m *MockRepository) GetFiles(context.Context, EntityID) ([]*FileChange, error) {
	if err := m.record("GetFiles"); err != nil {
		return nil, err
	}
	return m.Files, nil
}

func (m *MockRepository) GetCommits(context.Context, EntityID) ([]*Commit, error) {
	if err := m.record("GetCommits"); err != nil {
		return nil, err
	}
	return m.Commits, nil
}

func (m *MockRepository) UpdatePullRequest(ctx context.Context, id EntityID, o *UpdateOptions) (*Details, error) {
	if err := m.record("UpdatePullRequest"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.PullRequests {
		if d.ID != id {
			continue
		}
		if o.Title != nil {
			d.Title = *o.Title
		}
		if o.Body != nil {
			d.Body = *o.Body
		}
		if o.State != nil {
			d.State = *o.State
		}
		cp := *d
		return &cp, nil
	}

	return nil, context.DeadlineExceeded
}

func (m *MockRepository) Merge(context.Context, EntityID, *MergeOptions) error {
	return m.record("Merge")
}

func (m *MockRepository) CreateComment(_ context.Context, _ EntityID, o *CreateCommentOptions) (*Comment, error) {
	if err := m.record("CreateComment"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := &Comment{
		ID:       strconv.Itoa(m.nextID),
		Type:     CommentTypeGeneral,
		Body:     o.Body,
		Path:     o.Path,
		Line:     o.Line,
		CommitID: o.CommitID,
	}
	if o.Path != "" {
		c.Type = CommentTypeDiff
	}
	m.Comments = append(m.Comments, c)

	return c, nil
}

func (m *MockRepository) EditComment(_ context.Context, _ EntityID, commentID string, body string) (*Comment, error) {
	if err := m.record("EditComment"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Comments {
		if c.ID == commentID {
			c.Body = body
			cp := *c
			return &cp, nil
		}
	}

	return nil, context.DeadlineExceeded
}

func (m *MockRepository) DeleteComment(_ context.Context, _ EntityID, commentID string) error {
	if err := m.record("DeleteComment"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.Comments {
		if c.ID == commentID {
			m.Comments = append(m.Comments[:i], m.Comments[i+1:]...)
			break
		}
	}

	return nil
}

// mockPages serves a slice in pages, numbered in the page query value.
type mockPages[T any] struct {
	perPage int
	items   func(since time.Time) []T
}

// BuildRequest reads tokens of the form "page" or "page;since", so the
// pages after an incremental request keep the same filter.
func (p *mockPages[T]) BuildRequest(c pagination.Cursor) (*pagination.Request, error) {
	q := url.Values{"page": {"1"}}
	if c.Token != "" {
		page, since, _ := strings.Cut(c.Token, ";")
		q.Set("page", page)
		if since != "" {
			q.Set("since", since)
		}
	}
	return &pagination.Request{Method: "GET", URL: "mock://list", Query: q}, nil
}

func (p *mockPages[T]) BuildIncrementalRequest(_ pagination.Cursor, since time.Time) (*pagination.Request, error) {
	return &pagination.Request{
		Method: "GET",
		URL:    "mock://list",
		Query:  url.Values{"page": {"1"}, "since": {since.Format(time.RFC3339Nano)}},
	}, nil
}

func (p *mockPages[T]) ParseResponse(resp *pagination.Response) (*pagination.Page[T], error) {
	page, _ := strconv.Atoi(resp.Request.Query.Get("page"))
	var since time.Time
	if s := resp.Request.Query.Get("since"); s != "" {
		since, _ = time.Parse(time.RFC3339Nano, s)
	}

	all := p.items(since)
	start := (page - 1) * p.perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + p.perPage
	if end >= len(all) {
		return &pagination.Page[T]{Items: all[start:], Next: pagination.LastPage("")}, nil
	}

	token := strconv.Itoa(page + 1)
	if s := resp.Request.Query.Get("since"); s != "" {
		token += ";" + s
	}

	return &pagination.Page[T]{
		Items: all[start:end],
		Next:  pagination.Cursor{HasNext: true, Token: token},
	}, nil
}

// MockViewedStore keeps viewed marks in memory.
type MockViewedStore struct {
	mu     sync.Mutex
	Err    error
	viewed map[EntityID]ViewedState
}

func (s *MockViewedStore) GetViewed(id EntityID) (ViewedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := ViewedState{}
	for k, v := range s.viewed[id] {
		out[k] = v
	}
	return out, nil
}

func (s *MockViewedStore) SetViewed(id EntityID, path string, viewed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.viewed == nil {
		s.viewed = map[EntityID]ViewedState{}
	}
	s.viewed[id] = s.viewed[id].With(path, viewed)
	return nil
}
