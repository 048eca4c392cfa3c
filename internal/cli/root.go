package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	closecmd "geepr/internal/cli/close"
	commentcmd "geepr/internal/cli/comment"
	findcmd "geepr/internal/cli/find"
	listcmd "geepr/internal/cli/list"
	mergecmd "geepr/internal/cli/merge"
	opencmd "geepr/internal/cli/open"
	"geepr/internal/cli/paramutils"
	showcmd "geepr/internal/cli/show"
	updatecmd "geepr/internal/cli/update"
	"geepr/internal/cli/utils"
	viewedcmd "geepr/internal/cli/viewed"
	"geepr/internal/configutils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/lazy"
	"geepr/internal/systemcodes"
	"geepr/internal/tui"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func setupLogging(cmd *cobra.Command, _ []string) {
	flags := paramutils.NewFlagRepo(cmd.Flags())
	v, err := paramutils.LoadConfig(flags)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(systemcodes.ErrorCodeConfig)
	}

	err = utils.SetupLogging(
		cmd.ErrOrStderr(),
		flags.GetBoolOrDefault(paramutils.FlagDebug, false),
		v.GetString(configutils.KeyLogLevel),
	)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(systemcodes.ErrorCodeConfig)
	}
}

func runTui(cmd *cobra.Command, _ []string) error {
	flags := paramutils.NewFlagRepo(cmd.Flags())
	s, err := paramutils.OpenSession(flags, lazy.GoRunner)
	if err != nil {
		return err
	}
	defer s.Close()
	defer utils.LogMetrics(s.Metrics)

	list := s.ListModel(&pullrequest.ListOptions{State: pullrequest.StateOpen})

	return tui.New(cmd.Context(), list, s.Providers, s.Bus).Run()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:              "geepr",
		Short:            "geepr command-line utility for Gitee pull requests",
		Long:             `Browse, review and merge the pull requests of a Gitee repository from the terminal.`,
		Version:          fmt.Sprintf("%v, commit %v, built at %v", version, commit, date),
		Args:             cobra.NoArgs,
		PersistentPreRun: setupLogging,
		Run:              utils.RunCommandWrapper(runTui),
	}

	rootCmd.AddCommand(
		listcmd.New(),
		findcmd.New(),
		showcmd.New(),
		commentcmd.New(),
		mergecmd.New(),
		viewedcmd.New(),
		opencmd.New(),
		closecmd.New(),
		updatecmd.New(),
	)

	rootCmd.PersistentFlags().StringP(paramutils.FlagRepository, "r", "", "repository in form of owner/repo")
	rootCmd.PersistentFlags().String(paramutils.FlagConfig, "", "config path")
	rootCmd.PersistentFlags().Bool(paramutils.FlagDebug, false, "log debug output to stderr")

	return rootCmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}
