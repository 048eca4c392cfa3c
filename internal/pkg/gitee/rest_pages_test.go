package gitee

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTPages(t *testing.T) {
	t.Run("walks 25 items in pages of 10, 10 and 5", func(t *testing.T) {
		fake := &fakeGitee{total: 25, sendHeaders: true}
		c, _ := newTestClient(t, fake)
		l := pagination.NewLoader(c, c.PullRequestPages(&pullrequest.ListOptions{State: pullrequest.StateOpen}))

		sizes := []int{}
		for l.HasNext() {
			page, err := l.LoadNext(context.Background(), pagination.UpdateModeNormal)
			require.NoError(t, err)
			require.NotNil(t, page)
			sizes = append(sizes, len(page.Items))
		}

		assert.Equal(t, []int{10, 10, 5}, sizes)
		assert.Equal(t, 3, fake.Requests())
		assert.False(t, l.HasNext())
	})

	t.Run("stops on a short page when totals are missing", func(t *testing.T) {
		fake := &fakeGitee{total: 15}
		c, _ := newTestClient(t, fake)
		l := pagination.NewLoader(c, c.PullRequestPages(nil))

		items, err := pagination.LoadAll(context.Background(), l)
		require.NoError(t, err)
		assert.Len(t, items, 15)
		assert.Equal(t, 2, fake.Requests())
		assert.Equal(t, pullrequest.EntityID("15"), items[14].ID)
	})

	t.Run("needs one extra request when the last page is exactly full", func(t *testing.T) {
		fake := &fakeGitee{total: 20}
		c, _ := newTestClient(t, fake)
		l := pagination.NewLoader(c, c.PullRequestPages(nil))

		items, err := pagination.LoadAll(context.Background(), l)
		require.NoError(t, err)
		assert.Len(t, items, 20)
		assert.Equal(t, 3, fake.Requests())
	})

	t.Run("sends since on an incremental refresh", func(t *testing.T) {
		fake := &fakeGitee{total: 3, sendHeaders: true}
		c, _ := newTestClient(t, fake)
		started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		l := pagination.NewLoader(c, c.PullRequestPages(nil), pagination.WithClock(func() time.Time { return started }))

		_, err := pagination.LoadAll(context.Background(), l)
		require.NoError(t, err)
		require.True(t, l.SupportsIncrementalUpdate())

		page, err := l.LoadNext(context.Background(), pagination.UpdateModeIncremental)
		require.NoError(t, err)
		require.NotNil(t, page)

		q := fake.lastQuery.Load().(url.Values)
		assert.Equal(t, "2024-05-01T12:00:00Z", q.Get("since"))
		assert.Equal(t, "1", q.Get("page"))
	})

	t.Run("rewrites only the page parameter", func(t *testing.T) {
		assert.Equal(t, "/pulls?page=3&per_page=10", withPage("/pulls?page=2&per_page=10", 3))
		assert.Equal(t, "/pulls?per_page=10&page=2", withPage("/pulls?per_page=10", 2))
		assert.Equal(t, "/pulls?page=2", withPage("/pulls", 2))
	})

	t.Run("rejects a non-array body", func(t *testing.T) {
		p := &RESTPages[*pullrequest.Details]{Path: "/pulls", Parse: parsePullRequest}
		_, err := p.ParseResponse(&pagination.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"message":"nope"}`),
			Request:    &pagination.Request{URL: "/pulls?page=1"},
		})
		assert.ErrorIs(t, err, ErrMalformedPage)
	})

	t.Run("rejects a garbled total header", func(t *testing.T) {
		p := &RESTPages[*pullrequest.Details]{Path: "/pulls", Parse: parsePullRequest}
		_, err := p.ParseResponse(&pagination.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Total_count": {"many"}},
			Body:       []byte(`[{"number":1}]`),
			Request:    &pagination.Request{URL: "/pulls?page=1"},
		})
		assert.ErrorIs(t, err, ErrMalformedPage)
	})
}
