package find

import (
	"context"
	"fmt"
	"io"
	"strings"

	"geepr/internal/cli/paramutils"
	"geepr/internal/cli/utils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/errcodes"
	"geepr/internal/gitutils"
	"geepr/internal/pkg/lazy"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var getCurrentBranch = gitutils.GetCurrentBranch

type findCmdParams struct {
	State pullrequest.State
	// Text is matched against titles. When empty, Branch is matched
	// against source branches instead.
	Text   string
	Branch string
}

func parseParams(flags paramutils.FlagRepo, args []string) (*findCmdParams, error) {
	state, err := paramutils.ParseState(flags.GetStringOrDefault("state", ""))
	if err != nil {
		return nil, err
	}

	params := &findCmdParams{State: state, Text: strings.Join(args, " ")}
	if params.Text == "" {
		params.Branch, err = getCurrentBranch()
		if err != nil {
			return nil, err
		}
	}

	return params, nil
}

func (p *findCmdParams) matches(d *pullrequest.Details) bool {
	if p.Text != "" {
		return strings.Contains(strings.ToLower(d.Title), strings.ToLower(p.Text))
	}

	return d.Source.Name == p.Branch
}

func runCmd(cmd *cobra.Command, args []string) error {
	flags := paramutils.NewFlagRepo(cmd.Flags())
	params, err := parseParams(flags, args)
	if err != nil {
		return err
	}

	s, err := paramutils.OpenSession(flags, lazy.GoRunner)
	if err != nil {
		return err
	}
	defer s.Close()
	defer utils.LogMetrics(s.Metrics)

	m := s.ListModel(&pullrequest.ListOptions{State: params.State})

	return execute(cmd.Context(), m, params, cmd.OutOrStdout())
}

func execute(ctx context.Context, m *pullrequest.ListModel, params *findCmdParams, out io.Writer) error {
	d, ok, err := m.FindFirst(ctx, params.matches)
	if err != nil {
		return err
	}
	if !ok {
		return errcodes.ErrPullRequestNotFound
	}

	log.Debug().Int("scanned", m.Len()).Msg("pull request found")
	fmt.Fprintf(out, "#%s %s %s\n%s\n", d.ID, d.Title, utils.BranchDescription(d), d.URL)

	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [TEXT]",
		Short: "Find a pull request",
		Long: `Finds the first pull request whose title contains TEXT, loading pages only until it is found.
Without TEXT, finds the pull request of the checked out branch.`,
		Run: utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().StringP("state", "s", "open", "pull request state (open, closed, merged, all)")

	return cmd
}
