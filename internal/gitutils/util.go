package gitutils

import (
	"regexp"
	"strings"

	"geepr/internal/domain"
	"geepr/internal/pkg/fs"

	"github.com/pkg/errors"
)

const DefaultHost = "gitee.com"

var (
	ErrCannotGetLocalRepository         = errors.New("cannot get local repository")
	ErrUnableToParseRemoteRepositoryURI = errors.New("unable to parse remote repository URI")
	ErrNoMatchingRemote                 = errors.New("no remote points to the configured host")
)

var getWorkingDir = func(fs fs.Filesystem) (string, error) {
	return fs.Getwd()
}

var openLocalRepo = func() (gitRepository, error) {
	wd, err := getWorkingDir(fs.OS{})
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	r, err := openRepo(wd)
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	return &repository{r: r}, nil
}

func GetCurrentBranch() (string, error) {
	r, err := openLocalRepo()
	if err != nil {
		return "", err
	}

	return r.GetCheckedOutBranchShortName()
}

var (
	sshRemoteRegex  = regexp.MustCompile(`^(?:ssh://)?git@([^:/]+)[:/]([^/]+)/([^/]+?)(?:\.git)?/?$`)
	httpRemoteRegex = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/([^/]+?)(?:\.git)?/?$`)
)

var extractRepositoryTokens = func(uri string) ([]string, error) {
	for _, r := range []*regexp.Regexp{sshRemoteRegex, httpRemoteRegex} {
		if m := r.FindStringSubmatch(strings.TrimSpace(uri)); len(m) == 4 {
			return m[1:], nil
		}
	}

	return nil, ErrUnableToParseRemoteRepositoryURI
}

// parseRepositoryString returns the host and repository of a remote URL.
var parseRepositoryString = func(repoString string) (string, domain.GitRepository, error) {
	m, err := extractRepositoryTokens(repoString)
	if err != nil {
		return "", domain.GitRepository{}, err
	}

	return m[0], domain.GitRepository{Owner: m[1], Name: m[2]}, nil
}

var getRemoteInfoList = func(r gitRepository, host string) ([]domain.GitRepository, error) {
	repoURLs, err := r.GetRemoteURLs()
	if err != nil {
		return nil, err
	}

	var repos []domain.GitRepository
	for _, url := range repoURLs {
		h, repo, err := parseRepositoryString(url)
		if err != nil {
			continue
		}
		if h == host {
			repos = append(repos, repo)
		}
	}

	if len(repos) == 0 {
		return nil, ErrNoMatchingRemote
	}

	return repos, nil
}

// GetRemoteInfo returns the first remote of the local repository that
// points to host.
func GetRemoteInfo(host string) (domain.GitRepository, error) {
	r, err := openLocalRepo()
	if err != nil {
		return domain.GitRepository{}, err
	}

	repos, err := getRemoteInfoList(r, host)
	if err != nil {
		return domain.GitRepository{}, err
	}

	return repos[0], nil
}
