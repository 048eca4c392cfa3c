package show

import (
	"context"
	"fmt"
	"io"
	"strings"

	"geepr/internal/cli/paramutils"
	"geepr/internal/cli/utils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/errcodes"
	"geepr/internal/pkg/lazy"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

type pullRequestView struct {
	Details      *pullrequest.Details
	Mergeability *pullrequest.Mergeability
	Changes      *pullrequest.Changes
	Comments     []*pullrequest.Comment
	Threads      []*pullrequest.ReviewThread
	Viewed       pullrequest.ViewedState
}

// load starts every concern at once and waits for all of them.
func load(ctx context.Context, p *pullrequest.DataProvider) (*pullRequestView, error) {
	details := p.Details.LoadDetails()
	mergeability := p.Mergeability.LoadMergeability()
	changes := p.Changes.LoadChanges()
	comments := p.Comments.LoadComments()
	threads := p.Reviews.LoadReviewThreads()
	viewed := p.Viewed.GetViewedState()

	var (
		v   = &pullRequestView{}
		err error
	)
	if v.Details, err = details.Await(ctx); err != nil {
		return nil, err
	}
	if v.Mergeability, err = mergeability.Await(ctx); err != nil {
		return nil, err
	}
	if v.Changes, err = changes.Await(ctx); err != nil {
		return nil, err
	}
	if v.Comments, err = comments.Await(ctx); err != nil {
		return nil, err
	}
	if v.Threads, err = threads.Await(ctx); err != nil {
		return nil, err
	}
	if v.Viewed, err = viewed.Await(ctx); err != nil {
		return nil, err
	}

	return v, nil
}

func render(out io.Writer, v *pullRequestView) {
	d := v.Details
	fmt.Fprintf(out, "#%s %s %s (%s)\n", d.ID, d.Title, utils.BranchDescription(d), d.State)
	fmt.Fprintf(out, "%s\n", d.URL)
	fmt.Fprintf(out, "by %s, updated %s\n", d.Author, d.Updated.Format("2006-01-02 15:04"))
	if d.Body != "" {
		fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(d.Body))
	}

	if m := v.Mergeability; m != nil {
		fmt.Fprintf(out, "\nMergeable: %t (approvals %d/%d, tests %d/%d)\n",
			m.CanMerge(), m.Approvals, m.ApprovalsRequired, m.Tests, m.TestsRequired)
	}

	if c := v.Changes; c != nil {
		fmt.Fprintf(out, "\nCommits (%d)\n", len(c.Commits))
		table := uitable.New()
		table.MaxColWidth = 72
		for _, cm := range c.Commits {
			table.AddRow(shortHash(cm.Hash), firstLine(cm.Message), cm.Author)
		}
		fmt.Fprintln(out, table.String())

		fmt.Fprintf(out, "\nFiles (%d)\n", len(c.Files))
		table = uitable.New()
		for _, f := range c.Files {
			mark := "[ ]"
			if v.Viewed[f.Path] {
				mark = "[x]"
			}
			table.AddRow(mark, f.Status, f.Path, fmt.Sprintf("+%d -%d", f.Additions, f.Deletions))
		}
		fmt.Fprintln(out, table.String())
	}

	fmt.Fprintf(out, "\nComments (%d)\n", len(v.Comments))
	for _, c := range v.Comments {
		fmt.Fprintf(out, "  %s (%s): %s\n", c.Author, c.Created.Format("2006-01-02 15:04"), firstLine(c.Body))
	}

	fmt.Fprintf(out, "\nReview threads (%d)\n", len(v.Threads))
	for _, t := range v.Threads {
		pos := fmt.Sprintf("%s:%d", t.Path, t.Line)
		if t.Outdated {
			pos = t.Path + " (outdated)"
		}
		fmt.Fprintf(out, "  %s\n", pos)
		for _, c := range t.Comments {
			fmt.Fprintf(out, "    [%s] %s: %s\n", c.ID, c.Author, firstLine(c.Body))
		}
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

var promptPullRequestSelect = utils.PromptPullRequestSelect

// selectID asks for a pull request among the first page when no ID was
// given.
func selectID(ctx context.Context, m *pullrequest.ListModel, args []string) (pullrequest.EntityID, error) {
	if len(args) > 0 {
		return paramutils.ParseIDArg(args)
	}

	prs, err := m.LoadMore(ctx)
	if err != nil {
		return "", err
	}
	if len(prs) == 0 {
		return "", errcodes.ErrPullRequestNotFound
	}

	selected, err := promptPullRequestSelect("Show pull request", prs)
	if err != nil {
		return "", err
	}
	if selected == nil {
		return "", errcodes.ErrAborted
	}

	return selected.ID, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	flags := paramutils.NewFlagRepo(cmd.Flags())
	s, err := paramutils.OpenSession(flags, lazy.GoRunner)
	if err != nil {
		return err
	}
	defer s.Close()
	defer utils.LogMetrics(s.Metrics)

	ctx := cmd.Context()
	id, err := selectID(ctx, s.ListModel(&pullrequest.ListOptions{State: pullrequest.StateOpen}), args)
	if err != nil {
		return err
	}

	p, release := s.Providers.Get(id)
	defer release()

	v, err := load(ctx, p)
	if err != nil {
		return err
	}

	render(cmd.OutOrStdout(), v)

	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [ID]",
		Short: "Show a pull request",
		Long:  `Shows the details, mergeability, changes, comments and review threads of a pull request.`,
		Args:  cobra.MaximumNArgs(1),
		Run:   utils.RunCommandWrapper(runCmd),
	}

	return cmd
}
