package paramutils

import (
	"os"
	"strconv"
	"strings"

	"geepr/internal/clientutils"
	"geepr/internal/configutils"
	"geepr/internal/domain"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/errcodes"
	"geepr/internal/gitutils"
	"geepr/internal/pkg/lazy"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	FlagRepository = "repository"
	FlagConfig     = "config"
	FlagDebug      = "debug"
)

type FlagRepo interface {
	GetStringOrDefault(flag, d string) string
	GetBoolOrDefault(flag string, d bool) bool
	GetIntOrDefault(flag string, d int) int
}

func NewFlagRepo(flags *pflag.FlagSet) FlagRepo {
	return &PFlagSetWrapper{Flags: flags}
}

type PFlagSetWrapper struct {
	Flags *pflag.FlagSet
}

func (fs *PFlagSetWrapper) GetStringOrDefault(flag, d string) string {
	return configutils.GetStringFlagOrDefault(fs.Flags, flag, d)
}

func (fs *PFlagSetWrapper) GetBoolOrDefault(flag string, d bool) bool {
	return configutils.GetBoolFlagOrDefault(fs.Flags, flag, d)
}

func (fs *PFlagSetWrapper) GetIntOrDefault(flag string, d int) int {
	return configutils.GetIntFlagOrDefault(fs.Flags, flag, d)
}

var (
	getWorkingDir     = os.Getwd
	getRemoteInfo     = gitutils.GetRemoteInfo
	loadConfigForPath = configutils.LoadConfigForPath
)

// LoadConfig merges the global configuration, the .geeprcfg of the
// working directory and the file given with --config, in that order.
func LoadConfig(flags FlagRepo) (*viper.Viper, error) {
	wd, err := getWorkingDir()
	if err != nil {
		return nil, err
	}

	v, err := loadConfigForPath(wd)
	if err != nil {
		return nil, err
	}

	if path := flags.GetStringOrDefault(FlagConfig, ""); path != "" {
		err = configutils.LoadConfigFile(v, path)
		if err != nil {
			return nil, err
		}
	}

	return v, nil
}

// ResolveRepository picks the repository from --repository, then the
// default.repository setting, then the Gitee remote of the working copy.
func ResolveRepository(flags FlagRepo, v *viper.Viper) (domain.GitRepository, error) {
	name := flags.GetStringOrDefault(FlagRepository, v.GetString(configutils.KeyDefaultRepository))
	if name != "" {
		r, err := domain.ParseGitRepository(name)
		if err != nil {
			return domain.GitRepository{}, errcodes.ErrRepositoryMustBeInFormOwnerRepo
		}

		return r, nil
	}

	r, err := getRemoteInfo(v.GetString(configutils.KeyHost))
	if err != nil {
		log.Debug().Err(err).Msg("no repository found in the working directory")
		return domain.GitRepository{}, errcodes.ErrMissingRepository
	}

	return r, nil
}

// ParseIDArg reads the pull request ID from the first argument. A leading
// '#' is accepted.
func ParseIDArg(args []string) (pullrequest.EntityID, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errcodes.ErrMissingPullRequestID
	}

	id := strings.TrimPrefix(args[0], "#")
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", errors.Wrapf(errcodes.ErrMissingPullRequestID, "invalid ID %q", args[0])
	}

	return pullrequest.EntityID(id), nil
}

func ParseState(s string) (pullrequest.State, error) {
	switch st := pullrequest.State(strings.ToLower(s)); st {
	case "":
		return pullrequest.StateOpen, nil
	case pullrequest.StateOpen, pullrequest.StateClosed, pullrequest.StateMerged, pullrequest.StateAll:
		return st, nil
	}

	return "", errcodes.ErrUnknownState
}

func ParseMergeMethod(s string) (pullrequest.MergeMethod, error) {
	switch m := pullrequest.MergeMethod(strings.ToLower(s)); m {
	case "":
		return pullrequest.MergeMethodMerge, nil
	case pullrequest.MergeMethodMerge, pullrequest.MergeMethodSquash, pullrequest.MergeMethodRebase:
		return m, nil
	}

	return "", errcodes.ErrUnknownMergeMethod
}

var newSession = clientutils.ClientFactory{}.NewSession

// OpenSession loads the configuration, resolves the repository and builds
// a session for it.
func OpenSession(flags FlagRepo, run lazy.Runner) (*clientutils.Session, error) {
	v, err := LoadConfig(flags)
	if err != nil {
		return nil, err
	}

	repo, err := ResolveRepository(flags, v)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("repository", repo.FullName()).Msg("using repository")

	return newSession(v, repo, run)
}
