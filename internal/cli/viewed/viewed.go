package viewed

import (
	"context"
	"fmt"

	"geepr/internal/cli/paramutils"
	"geepr/internal/cli/utils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/errcodes"
	"geepr/internal/pkg/lazy"

	"github.com/spf13/cobra"
)

type viewedCmdParams struct {
	ID     pullrequest.EntityID
	Path   string
	Viewed bool
}

func parseParams(flags paramutils.FlagRepo, args []string) (*viewedCmdParams, error) {
	id, err := paramutils.ParseIDArg(args)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 || args[1] == "" {
		return nil, errcodes.ErrMissingPath
	}

	return &viewedCmdParams{
		ID:     id,
		Path:   args[1],
		Viewed: !flags.GetBoolOrDefault("unset", false),
	}, nil
}

// execute marks the file and returns how many files of the pull request
// are marked afterwards.
func execute(ctx context.Context, p *pullrequest.DataProvider, params *viewedCmdParams) (int, error) {
	_, err := p.Viewed.UpdateViewedState(ctx, params.Path, params.Viewed).Await(ctx)
	if err != nil {
		return 0, err
	}

	vs, err := p.Viewed.GetViewedState().Await(ctx)
	if err != nil {
		return 0, err
	}

	return len(vs), nil
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

	p, release := s.Providers.Get(params.ID)
	defer release()

	n, err := execute(cmd.Context(), p, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) of #%s marked as viewed\n", n, params.ID)

	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewed ID PATH",
		Short: "Mark a changed file as viewed",
		Args:  cobra.ExactArgs(2),
		Run:   utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().Bool("unset", false, "remove the viewed mark")

	return cmd
}
