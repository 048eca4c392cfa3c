package pullrequest

import (
	"context"

	"geepr/internal/pkg/lazy"
	"geepr/internal/pkg/pagination"
)

// loadComments pages through every comment of the pull request. The loader
// is reset first, which also discards pages still in flight from a
// previous, dropped load.
func loadComments(ctx context.Context, l *pagination.Loader[*Comment], keep func(*Comment) bool) ([]*Comment, error) {
	l.Reset()
	all, err := pagination.LoadAll(ctx, l)
	if err != nil {
		return nil, err
	}

	out := make([]*Comment, 0, len(all))
	for _, c := range all {
		if keep(c) {
			out = append(out, c)
		}
	}

	return out, nil
}

func newCommentLoader(c *providerContext, concern Concern) *pagination.Loader[*Comment] {
	return pagination.NewLoader(
		c.repo,
		c.repo.CommentPages(c.id),
		pagination.WithName(string(concern)),
		pagination.WithMetrics(c.metrics),
	)
}

func isGeneralComment(c *Comment) bool {
	return c.Type != CommentTypeDiff
}

// CommentsProvider holds the conversation comments, the ones not attached
// to a line of the diff.
type CommentsProvider struct {
	c      *providerContext
	loader *pagination.Loader[*Comment]
	value  *lazy.Value[[]*Comment]
}

func newCommentsProvider(c *providerContext) *CommentsProvider {
	p := &CommentsProvider{c: c, loader: newCommentLoader(c, ConcernComments)}
	p.value = newValue(c, ConcernComments, func(ctx context.Context) ([]*Comment, error) {
		return loadComments(ctx, p.loader, isGeneralComment)
	}, nil)

	return p
}

func (p *CommentsProvider) LoadComments() *lazy.Future[[]*Comment] {
	return p.value.Get()
}

func (p *CommentsProvider) ReloadComments() *lazy.Future[[]*Comment] {
	p.value.Drop()
	return p.value.Get()
}

// AddComment posts a general comment and appends it to the cached list,
// unless a list load that finished after the post already holds it.
func (p *CommentsProvider) AddComment(ctx context.Context, body string) *lazy.Future[*Comment] {
	f := mutate(p.c, ctx, func(ctx context.Context) (*Comment, error) {
		return p.c.repo.CreateComment(ctx, p.c.id, &CreateCommentOptions{Body: body})
	}, func(c *Comment) {
		p.c.publish(EventCommentAdded, &Event{Concern: ConcernComments, Comment: c, CommentID: c.ID})
	})

	lazy.CombineResult(p.value, f, func(list []*Comment, c *Comment) []*Comment {
		for _, old := range list {
			if old.ID == c.ID {
				return list
			}
		}

		out := make([]*Comment, 0, len(list)+1)
		out = append(out, list...)
		return append(out, c)
	})

	return f
}

func (p *CommentsProvider) EditComment(ctx context.Context, commentID string, body string) *lazy.Future[*Comment] {
	f := mutate(p.c, ctx, func(ctx context.Context) (*Comment, error) {
		return p.c.repo.EditComment(ctx, p.c.id, commentID, body)
	}, func(c *Comment) {
		p.c.publish(EventCommentUpdated, &Event{Concern: ConcernComments, Comment: c, CommentID: commentID})
	})

	lazy.CombineResult(p.value, f, func(list []*Comment, c *Comment) []*Comment {
		out := make([]*Comment, len(list))
		for i, old := range list {
			if old.ID == commentID {
				out[i] = c
			} else {
				out[i] = old
			}
		}
		return out
	})

	return f
}

func (p *CommentsProvider) DeleteComment(ctx context.Context, commentID string) *lazy.Future[struct{}] {
	f := mutate(p.c, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.c.repo.DeleteComment(ctx, p.c.id, commentID)
	}, func(struct{}) {
		p.c.publish(EventCommentDeleted, &Event{Concern: ConcernComments, CommentID: commentID})
	})

	lazy.CombineResult(p.value, f, func(list []*Comment, _ struct{}) []*Comment {
		out := make([]*Comment, 0, len(list))
		for _, old := range list {
			if old.ID != commentID {
				out = append(out, old)
			}
		}
		return out
	})

	return f
}

func (p *CommentsProvider) State() LoadState {
	return p.c.state(ConcernComments)
}

func (p *CommentsProvider) AddChangeListener(fn func()) func() {
	return p.value.AddListener(fn)
}
