package gitutils

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
)

type goGitRepository interface {
	Head() (*plumbing.Reference, error)
	Remotes() ([]*git.Remote, error)
}

type gitRepository interface {
	GetRemoteURLs() ([]string, error)
	GetCheckedOutBranchShortName() (string, error)
}

type repository struct {
	r goGitRepository
}

var openRepo = func(path string) (*git.Repository, error) {
	return openRepoRecursively(path)
}

// openRepoRecursively opens the repository containing input, walking up
// the directory tree.
func openRepoRecursively(input string) (*git.Repository, error) {
	dir := input
	for {
		repo, err := git.PlainOpen(dir)
		if err == nil {
			return repo, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir || parent == "." {
			break
		}
		dir = parent
	}

	return nil, errors.Errorf("could not find a repository at %s", input)
}

func (r *repository) GetRemoteURLs() ([]string, error) {
	var repoURLs []string
	remotes, err := r.r.Remotes()
	if err != nil {
		return nil, err
	}

	for _, re := range remotes {
		repoURLs = append(repoURLs, re.Config().URLs...)
	}

	return repoURLs, nil
}

func (r *repository) GetCheckedOutBranchShortName() (string, error) {
	headRef, err := r.r.Head()
	if err != nil {
		return "", err
	}

	return headRef.Name().Short(), nil
}
