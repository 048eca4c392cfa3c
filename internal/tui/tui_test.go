package tui

import (
	"context"
	"fmt"
	"testing"

	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/eventbus"
	"geepr/internal/pkg/lazy"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(n int) *pullrequest.MockRepository {
	repo := pullrequest.NewMockRepository()
	for i := 1; i <= n; i++ {
		repo.PullRequests = append(repo.PullRequests, &pullrequest.Details{
			ID:          pullrequest.EntityID(fmt.Sprint(i)),
			Title:       fmt.Sprintf("Pull request %d", i),
			State:       pullrequest.StateOpen,
			Source:      pullrequest.Branch{Name: "feature", Hash: "head"},
			Destination: pullrequest.Branch{Name: "master", Hash: "base"},
		})
	}
	repo.Mergeability = &pullrequest.Mergeability{Mergeable: true}
	repo.Files = []*pullrequest.FileChange{
		{Path: "cmd/geepr/main.go", Status: pullrequest.FileModified, Additions: 2, Deletions: 1},
		{Path: "README.md", Status: pullrequest.FileAdded, Additions: 5},
	}
	repo.Comments = []*pullrequest.Comment{
		{ID: "c1", Type: pullrequest.CommentTypeGeneral, Author: "bob", Body: "ship it"},
	}

	return repo
}

type testTui struct {
	*Tui
	repo      *pullrequest.MockRepository
	store     *pullrequest.MockViewedStore
	providers *pullrequest.ProviderRepository
}

func newTestTui(n int) *testTui {
	repo := newRepository(n)
	store := &pullrequest.MockViewedStore{}
	bus := eventbus.NewEventBus()
	providers := pullrequest.NewProviderRepository(
		repo, store,
		pullrequest.WithRunner(lazy.ImmediateRunner),
		pullrequest.WithEventBus(bus),
	)

	t := New(context.Background(), pullrequest.NewListModel(repo, &pullrequest.ListOptions{}), providers, bus)
	t.queue = func(fn func()) { fn() }
	t.run = lazy.ImmediateRunner

	return &testTui{Tui: t, repo: repo, store: store, providers: providers}
}

func cellText(tt *testTui, row, col int) string {
	return tt.table.View.GetCell(row, col).Text
}

func Test_Table(t *testing.T) {
	t.Run("lists the pull requests after the header", func(t *testing.T) {
		table := newPullRequestTable()
		table.SetItems(newRepository(2).PullRequests, false)

		assert.Equal(t, " 1", table.View.GetCell(1, 0).Text)
		assert.Equal(t, " Pull request 2", table.View.GetCell(2, 1).Text)
		assert.Equal(t, pullrequest.EntityID("2"), table.GetPullRequest(2).ID)
		assert.Equal(t, 3, table.View.GetRowCount())
	})

	t.Run("shows a footer while more pages exist", func(t *testing.T) {
		table := newPullRequestTable()
		table.SetItems(newRepository(2).PullRequests, true)

		assert.Equal(t, " More...", table.View.GetCell(3, 1).Text)
		assert.True(t, table.IsLastRow(3))
		assert.False(t, table.IsLastRow(1))
	})

	t.Run("filter hides rows and keeps applying to new items", func(t *testing.T) {
		table := newPullRequestTable()
		table.SetItems(newRepository(12).PullRequests, false)
		table.Filter("request 1")

		assert.Equal(t, pullrequest.EntityID("1"), table.GetPullRequest(1).ID)
		assert.Equal(t, pullrequest.EntityID("10"), table.GetPullRequest(2).ID)
		assert.Equal(t, 5, table.View.GetRowCount())

		table.SetItems(newRepository(3).PullRequests, false)
		assert.Equal(t, 2, table.View.GetRowCount())
	})

	t.Run("says so when empty", func(t *testing.T) {
		table := newPullRequestTable()
		table.SetItems(nil, false)

		assert.Equal(t, " No pull requests", table.View.GetCell(1, 1).Text)
		assert.Nil(t, table.SelectedPullRequest())
	})
}

func TestTui_loadMore(t *testing.T) {
	t.Run("appends a page to the table", func(t *testing.T) {
		tt := newTestTui(3)

		tt.loadMore()
		assert.Equal(t, " 2", cellText(tt, 2, 0))
		assert.Equal(t, " More...", cellText(tt, 3, 1))

		tt.loadMore()
		assert.Equal(t, " 3", cellText(tt, 3, 0))
		assert.Equal(t, 2, tt.repo.Calls("Execute"))
	})

	t.Run("reports failures in the status line", func(t *testing.T) {
		tt := newTestTui(3)
		tt.repo.Err = assert.AnError

		tt.loadMore()
		assert.Contains(t, tt.status.GetText(true), "loading pull requests failed")
	})
}

func TestTui_refresh(t *testing.T) {
	tt := newTestTui(3)
	tt.loadMore()

	tt.refresh()
	assert.Contains(t, tt.status.GetText(true), "2 pull request(s) updated")
	assert.Equal(t, " 1", cellText(tt, 1, 0))
}

func TestTui_details(t *testing.T) {
	t.Run("shows the loaded concerns", func(t *testing.T) {
		tt := newTestTui(1)
		tt.openDetails("1")
		defer tt.closeDetails()

		assert.Contains(t, tt.details.header.GetText(true), "#1 Pull request 1")
		assert.Contains(t, tt.details.header.GetText(true), "mergeable: true")
		assert.Contains(t, tt.details.conversation.GetText(true), "ship it")
		require.Equal(t, 3, tt.details.files.GetItemCount())
		main, _ := tt.details.files.GetItemText(0)
		assert.Equal(t, tview.Escape("[ ] A README.md +5 -0"), main)
		main, _ = tt.details.files.GetItemText(2)
		assert.Equal(t, tview.Escape("  [ ] M main.go +2 -1"), main)
	})

	t.Run("toggles the viewed mark of a file", func(t *testing.T) {
		tt := newTestTui(1)
		tt.subscribe()
		defer tt.unsubscribeAll()
		tt.openDetails("1")
		defer tt.closeDetails()

		tt.details.ToggleViewed(0)
		main, _ := tt.details.files.GetItemText(0)
		assert.Equal(t, tview.Escape("[x] A README.md +5 -0"), main)
		assert.Contains(t, tt.status.GetText(true), "README.md of #1 marked")

		vs, err := tt.store.GetViewed("1")
		require.NoError(t, err)
		assert.True(t, vs["README.md"])

		tt.details.ToggleViewed(0)
		main, _ = tt.details.files.GetItemText(0)
		assert.Equal(t, tview.Escape("[ ] A README.md +5 -0"), main)
	})

	t.Run("ignores directory lines", func(t *testing.T) {
		tt := newTestTui(1)
		tt.openDetails("1")
		defer tt.closeDetails()

		tt.details.ToggleViewed(1)
		vs, err := tt.store.GetViewed("1")
		require.NoError(t, err)
		assert.Empty(t, vs)
	})

	t.Run("reload fetches the details again", func(t *testing.T) {
		tt := newTestTui(1)
		tt.openDetails("1")
		defer tt.closeDetails()

		tt.repo.SetDetails(&pullrequest.Details{ID: "1", Title: "Renamed", State: pullrequest.StateOpen})
		tt.details.Reload()
		assert.Contains(t, tt.details.header.GetText(true), "#1 Renamed")
		assert.Equal(t, 2, tt.repo.Calls("GetPullRequest"))
	})

	t.Run("closing releases the provider", func(t *testing.T) {
		tt := newTestTui(1)
		tt.openDetails("1")
		assert.Equal(t, 1, tt.providers.Len())

		tt.closeDetails()
		assert.Equal(t, 0, tt.providers.Len())
	})

	t.Run("shows a failed concern", func(t *testing.T) {
		tt := newTestTui(1)
		tt.subscribe()
		defer tt.unsubscribeAll()
		tt.repo.Err = assert.AnError

		tt.openDetails("1")
		defer tt.closeDetails()

		assert.Contains(t, tt.details.header.GetText(true), "Loading details failed")
		assert.Contains(t, tt.status.GetText(true), "of #1 failed")
	})
}

func TestTui_mergeModal(t *testing.T) {
	tt := newTestTui(1)
	tt.subscribe()
	defer tt.unsubscribeAll()
	tt.openDetails("1")
	defer tt.closeDetails()

	mergeConfirmationCallback(tt.Tui, tt.details.provider)(1, "squash")
	assert.Equal(t, 1, tt.repo.Calls("Merge"))
	assert.Contains(t, tt.status.GetText(true), "#1 merged")

	mergeConfirmationCallback(tt.Tui, tt.details.provider)(len(mergeMethods), "Cancel")
	assert.Equal(t, 1, tt.repo.Calls("Merge"))
}

func Test_sendComment(t *testing.T) {
	tt := newTestTui(1)
	tt.openDetails("1")
	defer tt.closeDetails()

	sendComment(tt.Tui, tt.details.provider, "  ")
	assert.Equal(t, 0, tt.repo.Calls("CreateComment"))

	sendComment(tt.Tui, tt.details.provider, "thanks\n")
	assert.Equal(t, 1, tt.repo.Calls("CreateComment"))
	assert.Contains(t, tt.details.conversation.GetText(true), "thanks")
}

func TestFilesToTree(t *testing.T) {
	files := []*pullrequest.FileChange{
		{Path: "internal/pkg/lazy/value.go", Status: pullrequest.FileModified},
		{Path: "internal/pkg/lazy/future.go", Status: pullrequest.FileAdded},
		{Path: "go.mod", Status: pullrequest.FileModified},
	}

	lines := fileTreeLines(FilesToTree(files), pullrequest.ViewedState{"go.mod": true})
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}

	assert.Equal(t, []string{
		"[x] M go.mod +0 -0",
		"internal/pkg/lazy/",
		"  [ ] A future.go +0 -0",
		"  [ ] M value.go +0 -0",
	}, texts)
	assert.Nil(t, lines[1].File)
	assert.Equal(t, "internal/pkg/lazy/future.go", lines[2].File.Path)
}

func Test_renderConversation(t *testing.T) {
	threads := []*pullrequest.ReviewThread{{
		Path: "a.go",
		Line: 3,
		Comments: []*pullrequest.Comment{
			{ID: "1", Author: "bob", Body: "typo"},
			{ID: "2", Author: "alice", Body: "fixed"},
		},
	}, {
		Path:     "b.go",
		Outdated: true,
		Comments: []*pullrequest.Comment{{ID: "3", Author: "bob", Body: "old"}},
	}}

	out := renderConversation(
		section[[]*pullrequest.Comment]{Loading: true},
		section[[]*pullrequest.ReviewThread]{Value: threads},
	)

	assert.Contains(t, out, "Loading comments...")
	assert.Contains(t, out, "a.go:3")
	assert.Contains(t, out, topLeftSameLevelBorder+horizontalBorder+" [yellow]alice[-]")
	assert.Contains(t, out, "b.go [gray](outdated)[-]")
	assert.Contains(t, out, verticalBorder+" typo")
}
