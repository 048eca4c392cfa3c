package close

import (
	"fmt"

	"geepr/internal/cli/paramutils"
	"geepr/internal/cli/update"
	"geepr/internal/cli/utils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/lazy"

	"github.com/spf13/cobra"
)

var confirm = utils.Confirm

func runCmd(cmd *cobra.Command, args []string) error {
	flags := paramutils.NewFlagRepo(cmd.Flags())
	id, err := paramutils.ParseIDArg(args)
	if err != nil {
		return err
	}

	if !flags.GetBoolOrDefault("yes", false) {
		ok, err := confirm(fmt.Sprintf("Close pull request #%s?", id))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	s, err := paramutils.OpenSession(flags, lazy.GoRunner)
	if err != nil {
		return err
	}
	defer s.Close()

	p, release := s.Providers.Get(id)
	defer release()

	closed := pullrequest.StateClosed
	d, err := update.Execute(cmd.Context(), p, &pullrequest.UpdateOptions{State: &closed})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "#%s %s\n", d.ID, d.State)

	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "close ID",
		Aliases: []string{"decline"},
		Short:   "Close pull request",
		Long:    `Closes a pull request without merging it.`,
		Args:    cobra.ExactArgs(1),
		Run:     utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	return cmd
}
