package domain

import (
	"errors"
	"strings"
)

var ErrInvalidRepositoryName = errors.New("invalid repository name, expected owner/name")

// GitRepository identifies a repository on the hosting service.
type GitRepository struct {
	Owner string
	Name  string
}

func ParseGitRepository(s string) (GitRepository, error) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	s = strings.TrimSuffix(s, ".git")
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return GitRepository{}, ErrInvalidRepositoryName
	}

	return GitRepository{Owner: parts[0], Name: parts[1]}, nil
}

func (r GitRepository) FullName() string {
	return r.Owner + "/" + r.Name
}
