package configutils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geepr/internal/pkg/fs"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfigMerger struct {
	err error
}

func (m *mockConfigMerger) MergeConfig(in io.Reader) error {
	return m.err
}

type mockFlagSet struct {
	value     string
	boolValue bool
	intValue  int
	err       error
}

func (m *mockFlagSet) GetString(f string) (string, error) {
	return m.value, m.err
}

func (m *mockFlagSet) GetBool(f string) (bool, error) {
	return m.boolValue, m.err
}

func (m *mockFlagSet) GetInt(f string) (int, error) {
	return m.intValue, m.err
}

func Test_mergeConfig(t *testing.T) {
	t.Run("returns nil when merge succeeds", func(t *testing.T) {
		err := mergeConfig(nil, &mockConfigMerger{nil})
		assert.Equal(t, nil, err)
	})

	t.Run("returns error when merge fails", func(t *testing.T) {
		vErr := errors.New("mergeFailed")
		err := mergeConfig(nil, &mockConfigMerger{vErr})
		assert.EqualError(t, err, vErr.Error())
	})
}

func Test_fileExists(t *testing.T) {
	t.Run("returns nil if file exists", func(t *testing.T) {
		err := fileExists("", fs.MockFS{Info: fs.MockFileInfo{IsDirValue: false}})
		assert.Equal(t, nil, err)
	})

	t.Run("returns error if file does not exists", func(t *testing.T) {
		vErr := errors.New("file does not exist")
		err := fileExists("", fs.MockFS{Err: vErr})
		assert.EqualError(t, err, vErr.Error())
	})

	t.Run("returns error if file is a directory", func(t *testing.T) {
		err := fileExists("", fs.MockFS{Info: fs.MockFileInfo{IsDirValue: true}})
		assert.EqualError(t, err, ErrConfigFileIsDir.Error())
	})
}

func Test_loadFile(t *testing.T) {
	oldFileExists := fileExists
	defer func() { fileExists = oldFileExists }()

	t.Run("fails if file does not exist", func(t *testing.T) {
		vErr := errors.New("file err")
		fileExists = func(string, fs.Filesystem) error { return vErr }
		_, err := loadFile("", nil)
		assert.EqualError(t, err, vErr.Error())
	})

	t.Run("fails if file cannot be opened", func(t *testing.T) {
		vErr := errors.New("file err")
		fileExists = func(string, fs.Filesystem) error { return nil }
		_, err := loadFile("", fs.MockFS{Err: vErr})
		assert.EqualError(t, err, vErr.Error())
	})
}

func TestDefaultConfig(t *testing.T) {
	oldGetConfigDir := getConfigDir
	defer func() { getConfigDir = oldGetConfigDir }()

	t.Run("fails without a home directory", func(t *testing.T) {
		getConfigDir = func() (string, error) { return "", errors.New("no home") }
		_, err := DefaultConfig()
		assert.Equal(t, ErrHomeDirNotFound, err)
	})

	t.Run("falls back to defaults when no file exists", func(t *testing.T) {
		dir := t.TempDir()
		getConfigDir = func() (string, error) { return dir, nil }

		v, err := DefaultConfig()
		require.NoError(t, err)
		assert.Equal(t, 20, v.GetInt(KeyPerPage))
		assert.Equal(t, "https://gitee.com/api/v5", v.GetString(KeyURL))
	})

	t.Run("loads the first file type that parses", func(t *testing.T) {
		dir := t.TempDir()
		getConfigDir = func() (string, error) { return dir, nil }
		content := "[gitee]\ntoken = \"abc\"\nper_page = 50\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

		v, err := DefaultConfig()
		require.NoError(t, err)
		assert.Equal(t, "abc", v.GetString(KeyToken))
		assert.Equal(t, 50, v.GetInt(KeyPerPage))
	})

	t.Run("reads GEEPR_ environment variables", func(t *testing.T) {
		dir := t.TempDir()
		getConfigDir = func() (string, error) { return dir, nil }
		t.Setenv("GEEPR_GITEE_TOKEN", "from-env")

		v, err := DefaultConfig()
		require.NoError(t, err)
		assert.Equal(t, "from-env", v.GetString(KeyToken))
	})
}

func TestMergeLocalConfig(t *testing.T) {
	t.Run("ignores a missing local file", func(t *testing.T) {
		assert.NoError(t, MergeLocalConfig(viper.New(), t.TempDir()))
	})

	t.Run("overrides global values", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, LocalConfigName),
			[]byte("default:\n  repository: oschina/gitee\n"),
			0600,
		))

		v := viper.New()
		v.SetDefault(KeyDefaultRepository, "x/y")
		require.NoError(t, MergeLocalConfig(v, dir))
		assert.Equal(t, "oschina/gitee", v.GetString(KeyDefaultRepository))
	})

	t.Run("fails on an unparseable local file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, LocalConfigName), []byte("{[:"), 0600))

		err := MergeLocalConfig(viper.New(), dir)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), LocalConfigName))
	})
}

func TestGetStringFlagOrDefault(t *testing.T) {
	t.Run("returns flag value when defined", func(t *testing.T) {
		v := GetStringFlagOrDefault(&mockFlagSet{value: "value"}, "flag", "")
		assert.Equal(t, "value", v)
	})

	t.Run("returns default value on error", func(t *testing.T) {
		v := GetStringFlagOrDefault(&mockFlagSet{err: errors.New("error")}, "flag", "default")
		assert.Equal(t, "default", v)
	})

	t.Run("returns default value on empty string", func(t *testing.T) {
		v := GetStringFlagOrDefault(&mockFlagSet{}, "flag", "default")
		assert.Equal(t, "default", v)
	})
}

func TestGetBoolFlagOrDefault(t *testing.T) {
	t.Run("returns flag value when defined", func(t *testing.T) {
		v := GetBoolFlagOrDefault(&mockFlagSet{boolValue: false}, "flag", true)
		assert.Equal(t, false, v)
	})

	t.Run("returns default value on error", func(t *testing.T) {
		v := GetBoolFlagOrDefault(&mockFlagSet{boolValue: true, err: errors.New("error")}, "flag", false)
		assert.Equal(t, false, v)
	})
}

func TestGetIntFlagOrDefault(t *testing.T) {
	assert.Equal(t, 5, GetIntFlagOrDefault(&mockFlagSet{intValue: 5}, "flag", 1))
	assert.Equal(t, 1, GetIntFlagOrDefault(&mockFlagSet{}, "flag", 1))
	assert.Equal(t, 1, GetIntFlagOrDefault(&mockFlagSet{intValue: 5, err: errors.New("e")}, "flag", 1))
}
