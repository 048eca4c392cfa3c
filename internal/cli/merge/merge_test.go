package merge

import (
	"context"
	"testing"

	"geepr/internal/cli/paramutils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/errcodes"
	"geepr/internal/pkg/lazy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseParams(t *testing.T) {
	t.Run("defaults to a merge commit with confirmation", func(t *testing.T) {
		params, err := parseParams(&paramutils.MockFlagSet{}, []string{"5"})
		require.NoError(t, err)
		assert.Equal(t, &mergeCmdParams{
			ID:      "5",
			Options: pullrequest.MergeOptions{Method: pullrequest.MergeMethodMerge},
		}, params)
	})

	t.Run("reads every flag", func(t *testing.T) {
		params, err := parseParams(&paramutils.MockFlagSet{StringMap: map[string]interface{}{
			"method":      "squash",
			"title":       "t",
			"description": "d",
			"prune":       true,
			"yes":         true,
		}}, []string{"5"})
		require.NoError(t, err)
		assert.Equal(t, &mergeCmdParams{
			ID: "5",
			Options: pullrequest.MergeOptions{
				Method:            pullrequest.MergeMethodSquash,
				Title:             "t",
				Description:       "d",
				PruneSourceBranch: true,
			},
			Yes: true,
		}, params)
	})

	t.Run("rejects an unknown method", func(t *testing.T) {
		_, err := parseParams(&paramutils.MockFlagSet{StringMap: map[string]interface{}{
			"method": "octopus",
		}}, []string{"5"})
		assert.Equal(t, errcodes.ErrUnknownMergeMethod, err)
	})
}

func newProvider(t *testing.T, m *pullrequest.Mergeability) (*pullrequest.MockRepository, *pullrequest.DataProvider) {
	repo := pullrequest.NewMockRepository()
	repo.PullRequests = []*pullrequest.Details{{ID: "5", Title: "Feature", State: pullrequest.StateOpen}}
	repo.Mergeability = m

	p := pullrequest.NewDataProvider("5", repo, &pullrequest.MockViewedStore{}, pullrequest.WithRunner(lazy.ImmediateRunner))
	t.Cleanup(p.Dispose)

	return repo, p
}

func stubConfirm(t *testing.T, answer bool) *int {
	asked := 0
	old := confirm
	t.Cleanup(func() { confirm = old })
	confirm = func(string) (bool, error) {
		asked++
		return answer, nil
	}

	return &asked
}

func Test_execute(t *testing.T) {
	ctx := context.Background()
	mergeable := &pullrequest.Mergeability{Mergeable: true}

	t.Run("merges after confirmation and reloads the details", func(t *testing.T) {
		asked := stubConfirm(t, true)
		repo, p := newProvider(t, mergeable)
		// The server reports the new state on the next read.
		merged := pullrequest.StateMerged
		_, err := repo.UpdatePullRequest(ctx, "5", &pullrequest.UpdateOptions{State: &merged})
		require.NoError(t, err)

		d, err := execute(ctx, p, &mergeCmdParams{ID: "5"})
		require.NoError(t, err)
		assert.Equal(t, 1, *asked)
		assert.Equal(t, 1, repo.Calls("Merge"))
		assert.Equal(t, pullrequest.StateMerged, d.State)
		assert.Equal(t, 2, repo.Calls("GetPullRequest"))
	})

	t.Run("skips the question with --yes", func(t *testing.T) {
		asked := stubConfirm(t, false)
		repo, p := newProvider(t, mergeable)

		_, err := execute(ctx, p, &mergeCmdParams{ID: "5", Yes: true})
		require.NoError(t, err)
		assert.Equal(t, 0, *asked)
		assert.Equal(t, 1, repo.Calls("Merge"))
	})

	t.Run("aborts when not confirmed", func(t *testing.T) {
		stubConfirm(t, false)
		repo, p := newProvider(t, mergeable)

		_, err := execute(ctx, p, &mergeCmdParams{ID: "5"})
		assert.Equal(t, errcodes.ErrAborted, err)
		assert.Equal(t, 0, repo.Calls("Merge"))
	})

	t.Run("refuses a pull request missing approvals", func(t *testing.T) {
		stubConfirm(t, true)
		repo, p := newProvider(t, &pullrequest.Mergeability{Mergeable: true, ApprovalsRequired: 2, Approvals: 1})

		_, err := execute(ctx, p, &mergeCmdParams{ID: "5", Yes: true})
		assert.ErrorIs(t, err, errcodes.ErrNotMergeable)
		assert.Contains(t, err.Error(), "approvals 1/2")
		assert.Equal(t, 0, repo.Calls("Merge"))
	})
}
