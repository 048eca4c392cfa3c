package cli

import (
	"testing"

	"geepr/internal/cli/paramutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_newRootCmd(t *testing.T) {
	cmd := newRootCmd()

	t.Run("registers every subcommand", func(t *testing.T) {
		names := []string{}
		for _, c := range cmd.Commands() {
			names = append(names, c.Name())
		}

		assert.ElementsMatch(t, []string{"list", "find", "show", "comment", "merge", "viewed", "open", "close", "update"}, names)
	})

	t.Run("subcommands inherit the persistent flags", func(t *testing.T) {
		sub, _, err := cmd.Find([]string{"merge"})
		require.NoError(t, err)

		for _, name := range []string{paramutils.FlagRepository, paramutils.FlagConfig, paramutils.FlagDebug} {
			assert.NotNil(t, sub.InheritedFlags().Lookup(name), name)
		}
		assert.Equal(t, "r", cmd.PersistentFlags().Lookup(paramutils.FlagRepository).Shorthand)
	})

	t.Run("list accepts its paging flags", func(t *testing.T) {
		sub, _, err := cmd.Find([]string{"list"})
		require.NoError(t, err)

		require.NoError(t, sub.ParseFlags([]string{"--state", "merged", "-n", "5", "--all"}))
		flags := paramutils.NewFlagRepo(sub.Flags())
		assert.Equal(t, "merged", flags.GetStringOrDefault("state", ""))
		assert.Equal(t, 5, flags.GetIntOrDefault("limit", 0))
		assert.True(t, flags.GetBoolOrDefault("all", false))
	})
}
