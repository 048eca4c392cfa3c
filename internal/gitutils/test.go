package gitutils

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

type MockGoGitRepository struct {
	HeadValue    *plumbing.Reference
	Err          error
	RemotesValue []*git.Remote
}

func (r MockGoGitRepository) Head() (*plumbing.Reference, error) {
	return r.HeadValue, r.Err
}

func (r MockGoGitRepository) Remotes() ([]*git.Remote, error) {
	return r.RemotesValue, r.Err
}

type MockGitRepository struct {
	ErrorValue         error
	CurrentBranchValue string
	RemoteURLsValue    []string
}

func (r *MockGitRepository) GetCheckedOutBranchShortName() (string, error) {
	return r.CurrentBranchValue, r.ErrorValue
}

func (r *MockGitRepository) GetRemoteURLs() ([]string, error) {
	return r.RemoteURLsValue, r.ErrorValue
}
