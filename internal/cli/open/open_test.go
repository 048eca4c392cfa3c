package open

import (
	"bytes"
	"context"
	"testing"

	"geepr/internal/domain"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/errcodes"
	"geepr/internal/pkg/lazy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviders() *pullrequest.ProviderRepository {
	repo := pullrequest.NewMockRepository()
	repo.PullRequests = []*pullrequest.Details{
		{ID: "3", Title: "Fix", URL: "https://gitee.com/owner/repo/pulls/3"},
	}

	return pullrequest.NewProviderRepository(repo, &pullrequest.MockViewedStore{}, pullrequest.WithRunner(lazy.ImmediateRunner))
}

func Test_pullRequestsURL(t *testing.T) {
	repo := domain.GitRepository{Owner: "owner", Name: "repo"}
	assert.Equal(t, "https://gitee.com/owner/repo/pulls", pullRequestsURL("gitee.com", repo))
}

func Test_resolveURL(t *testing.T) {
	providers := newProviders()
	defer providers.Dispose()
	ctx := context.Background()

	t.Run("uses the list url without an id", func(t *testing.T) {
		url, err := resolveURL(ctx, providers, "https://gitee.com/owner/repo/pulls", nil)
		require.NoError(t, err)
		assert.Equal(t, "https://gitee.com/owner/repo/pulls", url)
	})

	t.Run("uses the pull request url", func(t *testing.T) {
		url, err := resolveURL(ctx, providers, "", []string{"#3"})
		require.NoError(t, err)
		assert.Equal(t, "https://gitee.com/owner/repo/pulls/3", url)
	})

	t.Run("fails for an invalid id", func(t *testing.T) {
		_, err := resolveURL(ctx, providers, "", []string{"abc"})
		assert.ErrorIs(t, err, errcodes.ErrMissingPullRequestID)
	})

	t.Run("releases the provider", func(t *testing.T) {
		assert.Equal(t, 0, providers.Len())
	})
}

func Test_execute(t *testing.T) {
	t.Run("prints the url", func(t *testing.T) {
		out := &bytes.Buffer{}
		err := execute("https://gitee.com/x", &openCmdParams{PrintOnly: true}, out)
		require.NoError(t, err)
		assert.Equal(t, "https://gitee.com/x\n", out.String())
	})

	t.Run("opens the browser", func(t *testing.T) {
		old := openInBrowser
		defer func() { openInBrowser = old }()

		var opened string
		openInBrowser = func(url string) error {
			opened = url
			return nil
		}

		err := execute("https://gitee.com/x", &openCmdParams{}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "https://gitee.com/x", opened)
	})
}
