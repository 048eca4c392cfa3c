package merge

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

var confirm = utils.Confirm

type mergeCmdParams struct {
	ID      pullrequest.EntityID
	Options pullrequest.MergeOptions
	Yes     bool
}

func parseParams(flags paramutils.FlagRepo, args []string) (*mergeCmdParams, error) {
	id, err := paramutils.ParseIDArg(args)
	if err != nil {
		return nil, err
	}

	method, err := paramutils.ParseMergeMethod(flags.GetStringOrDefault("method", ""))
	if err != nil {
		return nil, err
	}

	return &mergeCmdParams{
		ID: id,
		Options: pullrequest.MergeOptions{
			Method:            method,
			Title:             flags.GetStringOrDefault("title", ""),
			Description:       flags.GetStringOrDefault("description", ""),
			PruneSourceBranch: flags.GetBoolOrDefault("prune", false),
		},
		Yes: flags.GetBoolOrDefault("yes", false),
	}, nil
}

func execute(ctx context.Context, p *pullrequest.DataProvider, params *mergeCmdParams) (*pullrequest.Details, error) {
	d, err := p.Details.LoadDetails().Await(ctx)
	if err != nil {
		return nil, err
	}

	m, err := p.Mergeability.LoadMergeability().Await(ctx)
	if err != nil {
		return nil, err
	}
	if !m.CanMerge() {
		return nil, fmt.Errorf(
			"%w: approvals %d/%d, tests %d/%d",
			errcodes.ErrNotMergeable, m.Approvals, m.ApprovalsRequired, m.Tests, m.TestsRequired,
		)
	}

	if !params.Yes {
		ok, err := confirm(fmt.Sprintf(
			"%s #%s %s %s?", params.Options.Method, d.ID, d.Title, utils.BranchDescription(d),
		))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errcodes.ErrAborted
		}
	}

	_, err = p.Mergeability.Merge(ctx, &params.Options).Await(ctx)
	if err != nil {
		return nil, err
	}

	// Merge dropped the cached details, this loads the merged state.
	return p.Details.LoadDetails().Await(ctx)
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

	p, release := s.Providers.Get(params.ID)
	defer release()

	d, err := execute(cmd.Context(), p, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "#%s is %s\n", d.ID, d.State)

	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge ID",
		Short: "Merge a pull request",
		Args:  cobra.ExactArgs(1),
		Run:   utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().String("method", "merge", "merge method (merge, squash, rebase)")
	cmd.Flags().String("title", "", "title of the merge commit")
	cmd.Flags().String("description", "", "description of the merge commit")
	cmd.Flags().Bool("prune", false, "delete the source branch after merging")
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	return cmd
}
