package list

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"geepr/internal/cli/paramutils"
	"geepr/internal/cli/utils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/lazy"

	"github.com/gosuri/uilive"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

type listCmdParams struct {
	State pullrequest.State
	Limit int
	All   bool
}

func parseFlags(flags paramutils.FlagRepo) (*listCmdParams, error) {
	state, err := paramutils.ParseState(flags.GetStringOrDefault("state", ""))
	if err != nil {
		return nil, err
	}

	return &listCmdParams{
		State: state,
		Limit: flags.GetIntOrDefault("limit", 0),
		All:   flags.GetBoolOrDefault("all", false),
	}, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	flags := paramutils.NewFlagRepo(cmd.Flags())
	params, err := parseFlags(flags)
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

	return execute(cmd.Context(), m, params, os.Stdin, cmd.OutOrStdout())
}

func newTable() *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("#", "TITLE", "SRC/DEST", "URL")
	table.AddRow("-", "-----", "--------", "---")
	return table
}

func addRows(table *uitable.Table, prs []*pullrequest.Details) {
	for _, v := range prs {
		table.AddRow(
			v.ID,
			v.Title,
			fmt.Sprintf("%s -> %s", v.Source.Name, v.Destination.Name),
			v.URL,
		)
	}
}

func execute(
	ctx context.Context,
	m *pullrequest.ListModel,
	params *listCmdParams,
	in io.Reader,
	out io.Writer,
) error {
	var (
		prs []*pullrequest.Details
		err error
	)

	switch {
	case params.All:
		prs, err = m.LoadAll(ctx)
	case params.Limit > 0:
		prs, err = m.LoadUpTo(ctx, params.Limit)
	default:
		return page(ctx, m, in, out)
	}
	if err != nil {
		return err
	}

	table := newTable()
	addRows(table, prs)
	fmt.Fprintln(out, table.String())

	return nil
}

// page prints one page at a time and loads the next one when Enter is
// pressed.
func page(ctx context.Context, m *pullrequest.ListModel, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	writer := uilive.New()
	writer.Out = out
	writer.Start()
	defer writer.Stop()

	table := newTable()

	for m.HasNext() {
		prs, err := m.LoadMore(ctx)
		if err != nil {
			return err
		}

		addRows(table, prs)
		fmt.Fprintln(writer, table.String())

		if !m.HasNext() {
			break
		}

		fmt.Fprintln(writer.Newline(), "Press Enter to show more...")

		_, _, err = reader.ReadRune()
		if err != nil {
			break
		}

		// Clear the line left by the Enter key
		clearLine(writer.Out)

		fmt.Fprintln(writer, table.String())
		fmt.Fprintln(writer.Newline(), "Loading...")
	}

	return writer.Flush()
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pull requests",
		Long:    `Lists the pull requests of the Gitee repository, one page at a time unless --limit or --all is given.`,
		Args:    cobra.NoArgs,
		Run:     utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().StringP("state", "s", "open", "pull request state (open, closed, merged, all)")
	cmd.Flags().IntP("limit", "n", 0, "load at most N pull requests")
	cmd.Flags().Bool("all", false, "load every page")

	return cmd
}

func clearLine(out io.Writer) {
	var clear = fmt.Sprintf("%c[%dA%c[2K", 27, 1, 27)
	_, _ = fmt.Fprint(out, clear)
}
