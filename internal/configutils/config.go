package configutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"geepr/internal/pkg/fs"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ConfigDir       = "~/.config/geepr"
	LocalConfigName = ".geeprcfg"
)

// Configuration keys.
const (
	KeyToken             = "gitee.token"
	KeyURL               = "gitee.url"
	KeyGraphQLURL        = "gitee.graphql_url"
	KeyHost              = "gitee.host"
	KeyPerPage           = "gitee.per_page"
	KeyRateLimit         = "gitee.rate_limit"
	KeyDefaultRepository = "default.repository"
	KeyLogLevel          = "log.level"
	KeyViewedPath        = "viewed.path"
)

type FlagSet interface {
	GetString(string) (string, error)
	GetBool(string) (bool, error)
	GetInt(string) (int, error)
}

type configMerger interface {
	MergeConfig(io.Reader) error
}

var (
	ErrHomeDirNotFound = errors.New("unable to determine the home directory")
	ErrConfigFileIsDir = errors.New("configuration file is a directory")
)

var mergeConfig = func(in io.Reader, cm configMerger) error {
	err := cm.MergeConfig(in)
	if err != nil {
		return err
	}

	return nil
}

var fileExists = func(filename string, fs fs.Filesystem) error {
	info, err := fs.Stat(filename)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return ErrConfigFileIsDir
	}

	return nil
}

var loadFile = func(filename string, fs fs.Filesystem) (io.Reader, error) {
	err := fileExists(filename, fs)
	if err != nil {
		return nil, err
	}

	f, err := fs.Open(filename)
	if err != nil {
		return nil, err
	}

	return f, nil
}

var loadConfig = func(filename string, v *viper.Viper) error {
	f, err := loadFile(filename, fs.OS{})
	if err != nil {
		return err
	}

	return mergeConfig(f, v)
}

var getConfigDir = func() (string, error) {
	return homedir.Expand(ConfigDir)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyURL, "https://gitee.com/api/v5")
	v.SetDefault(KeyGraphQLURL, "https://gitee.com/api/graphql")
	v.SetDefault(KeyHost, "gitee.com")
	v.SetDefault(KeyPerPage, 20)
	v.SetDefault(KeyRateLimit, 0)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyViewedPath, filepath.Join(ConfigDir, "state"))
}

// MergeLocalConfig merges the .geeprcfg file found in path, if any.
func MergeLocalConfig(v *viper.Viper, path string) error {
	f := filepath.Join(path, LocalConfigName)
	if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	// Try for every supported file type
	filetypes := []string{"yaml", "json", "toml"}
	var err error
	for _, ft := range filetypes {
		v.SetConfigType(ft)
		err = loadConfig(f, v)
		if err == nil {
			return nil
		}
	}

	return errors.Wrapf(err, "could not load %s", f)
}

func LoadConfigForPath(path string) (*viper.Viper, error) {
	v, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	err = MergeLocalConfig(v, path)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// DefaultConfig loads the global configuration file. A missing file is
// not an error; the defaults and GEEPR_* environment variables still apply.
func DefaultConfig() (*viper.Viper, error) {
	cfgDir, err := getConfigDir()
	if err != nil {
		return nil, ErrHomeDirNotFound
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("geepr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	filetypes := []string{"yaml", "json", "toml"}
	for _, ft := range filetypes {
		f := filepath.Join(cfgDir, fmt.Sprintf("config.%s", ft))
		v.SetConfigType(ft)
		err = loadConfig(f, v)
		if err == nil {
			return v, nil
		}
		log.Debug().
			Err(err).
			Msgf("config loading failed for type %s, skipping to next filetype", ft)
	}

	return v, nil
}

// LoadConfigFile merges an explicitly given configuration file.
func LoadConfigFile(v *viper.Viper, filename string) error {
	v.SetConfigFile(filename)
	return errors.Wrap(v.MergeInConfig(), "could not load config")
}

func GetBoolFlagOrDefault(fs FlagSet, flag string, d bool) bool {
	v, err := fs.GetBool(flag)
	if err != nil {
		return d
	}

	return v
}

func GetStringFlagOrDefault(fs FlagSet, flag, d string) string {
	s, err := fs.GetString(flag)
	if err != nil || s == "" {
		return d
	}

	return s
}

func GetIntFlagOrDefault(fs FlagSet, flag string, d int) int {
	v, err := fs.GetInt(flag)
	if err != nil || v == 0 {
		return d
	}

	return v
}
