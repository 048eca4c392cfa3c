package comment

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

var promptText = utils.PromptText

type commentCmdParams struct {
	ID      pullrequest.EntityID
	Body    string
	Path    string
	Line    int
	ReplyTo string
}

func parseParams(flags paramutils.FlagRepo, args []string) (*commentCmdParams, error) {
	id, err := paramutils.ParseIDArg(args)
	if err != nil {
		return nil, err
	}

	params := &commentCmdParams{
		ID:      id,
		Body:    flags.GetStringOrDefault("message", ""),
		Path:    flags.GetStringOrDefault("path", ""),
		Line:    flags.GetIntOrDefault("line", 0),
		ReplyTo: flags.GetStringOrDefault("reply-to", ""),
	}

	return params, validate(params)
}

func validate(params *commentCmdParams) error {
	if params.ReplyTo != "" && (params.Path != "" || params.Line != 0) {
		return errcodes.ErrReplyWithPosition
	}

	if (params.Path == "") != (params.Line == 0) {
		return errcodes.ErrLineRequiresPath
	}

	return nil
}

func findThread(threads []*pullrequest.ReviewThread, commentID string) *pullrequest.ReviewThread {
	for _, t := range threads {
		for _, c := range t.Comments {
			if c.ID == commentID {
				return t
			}
		}
	}

	return nil
}

func execute(ctx context.Context, p *pullrequest.DataProvider, params *commentCmdParams) (*pullrequest.Comment, error) {
	if params.Body == "" {
		body, err := promptText("Comment")
		if err != nil {
			return nil, err
		}
		if body == "" {
			return nil, errcodes.ErrMissingCommentBody
		}
		params.Body = body
	}

	switch {
	case params.ReplyTo != "":
		threads, err := p.Reviews.LoadReviewThreads().Await(ctx)
		if err != nil {
			return nil, err
		}

		t := findThread(threads, params.ReplyTo)
		if t == nil {
			return nil, errcodes.ErrThreadNotFound
		}

		return p.Reviews.Reply(ctx, t, params.Body).Await(ctx)
	case params.Path != "":
		d, err := p.Details.LoadDetails().Await(ctx)
		if err != nil {
			return nil, err
		}

		return p.Reviews.AddReviewComment(ctx, &pullrequest.CreateCommentOptions{
			Body:     params.Body,
			Path:     params.Path,
			Line:     params.Line,
			CommitID: d.Source.Hash,
		}).Await(ctx)
	default:
		return p.Comments.AddComment(ctx, params.Body).Await(ctx)
	}
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

	c, err := execute(cmd.Context(), p, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Comment %s added to #%s\n", c.ID, params.ID)

	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment ID",
		Short: "Comment on a pull request",
		Long: `Adds a comment to a pull request. With --path and --line the comment is attached to a line of the diff,
with --reply-to it answers a review thread. Without --message the body is asked for.`,
		Args: cobra.ExactArgs(1),
		Run:  utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().StringP("message", "m", "", "comment body")
	cmd.Flags().String("path", "", "file to comment on")
	cmd.Flags().Int("line", 0, "line of the file to comment on")
	cmd.Flags().String("reply-to", "", "ID of a review comment to reply to")

	return cmd
}
