package update

import (
	"context"
	"errors"
	"fmt"

	"geepr/internal/cli/paramutils"
	"geepr/internal/cli/utils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/errcodes"
	"geepr/internal/pkg/lazy"

	"github.com/spf13/cobra"
)

var ErrNothingToUpdate = errors.New("nothing to update, pass --title, --body or --state")

type FlagSet interface {
	paramutils.FlagRepo
	Changed(name string) bool
}

type flagSet struct {
	paramutils.FlagRepo
	cmd *cobra.Command
}

func (fs *flagSet) Changed(name string) bool {
	return fs.cmd.Flags().Changed(name)
}

type updateCmdParams struct {
	ID      pullrequest.EntityID
	Options pullrequest.UpdateOptions
}

func parseParams(flags FlagSet, args []string) (*updateCmdParams, error) {
	id, err := paramutils.ParseIDArg(args)
	if err != nil {
		return nil, err
	}

	params := &updateCmdParams{ID: id}
	if flags.Changed("title") {
		title := flags.GetStringOrDefault("title", "")
		params.Options.Title = &title
	}
	if flags.Changed("body") {
		body := flags.GetStringOrDefault("body", "")
		params.Options.Body = &body
	}
	if flags.Changed("state") {
		state, err := paramutils.ParseState(flags.GetStringOrDefault("state", ""))
		if err != nil {
			return nil, err
		}
		if state != pullrequest.StateOpen && state != pullrequest.StateClosed {
			return nil, errcodes.ErrUnknownState
		}
		params.Options.State = &state
	}

	o := params.Options
	if o.Title == nil && o.Body == nil && o.State == nil {
		return nil, ErrNothingToUpdate
	}

	return params, nil
}

// Execute applies o and returns the details the server answered with.
func Execute(ctx context.Context, p *pullrequest.DataProvider, o *pullrequest.UpdateOptions) (*pullrequest.Details, error) {
	return p.Details.Update(ctx, o).Await(ctx)
}

func runCmd(cmd *cobra.Command, args []string) error {
	flags := &flagSet{FlagRepo: paramutils.NewFlagRepo(cmd.Flags()), cmd: cmd}
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

	d, err := Execute(cmd.Context(), p, &params.Options)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "#%s %s (%s)\n", d.ID, d.Title, d.State)

	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a pull request",
		Long:  `Changes the title, description or state of a pull request. Only the given flags are sent.`,
		Args:  cobra.ExactArgs(1),
		Run:   utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().StringP("title", "t", "", "new title")
	cmd.Flags().StringP("body", "b", "", "new description")
	cmd.Flags().StringP("state", "s", "", "new state (open, closed)")

	return cmd
}
