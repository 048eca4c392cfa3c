package pullrequest

import (
	"context"

	"geepr/internal/pkg/lazy"
	"geepr/internal/pkg/pagination"
)

// ReviewsProvider holds the diff comments grouped into threads.
type ReviewsProvider struct {
	c      *providerContext
	loader *pagination.Loader[*Comment]
	value  *lazy.Value[[]*ReviewThread]
}

func newReviewsProvider(c *providerContext) *ReviewsProvider {
	p := &ReviewsProvider{c: c, loader: newCommentLoader(c, ConcernReviews)}
	p.value = newValue(c, ConcernReviews, func(ctx context.Context) ([]*ReviewThread, error) {
		comments, err := loadComments(ctx, p.loader, func(cm *Comment) bool {
			return cm.Type == CommentTypeDiff
		})
		if err != nil {
			return nil, err
		}

		return BuildThreads(comments), nil
	}, nil)

	return p
}

// BuildThreads groups diff comments by the comment they reply to. A reply
// whose root is missing starts its own thread. Thread order follows the
// order of the root comments.
func BuildThreads(comments []*Comment) []*ReviewThread {
	threads := []*ReviewThread{}
	byID := map[string]*ReviewThread{}

	for _, c := range comments {
		if c.InReplyTo != "" {
			if t, ok := byID[c.InReplyTo]; ok {
				t.Comments = append(t.Comments, c)
				byID[c.ID] = t
				continue
			}
		}

		t := &ReviewThread{
			ID:       c.ID,
			Path:     c.Path,
			Line:     c.Line,
			CommitID: c.CommitID,
			Outdated: c.Line == 0,
			Comments: []*Comment{c},
		}
		threads = append(threads, t)
		byID[c.ID] = t
	}

	return threads
}

func (p *ReviewsProvider) LoadReviewThreads() *lazy.Future[[]*ReviewThread] {
	return p.value.Get()
}

func (p *ReviewsProvider) ResetReviewThreads() {
	p.value.Drop()
}

func (p *ReviewsProvider) commentMutation(
	ctx context.Context,
	event string,
	fn func(ctx context.Context) (*Comment, error),
) *lazy.Future[*Comment] {
	return mutate(p.c, ctx, fn, func(c *Comment) {
		p.value.Drop()
		p.c.publish(event, &Event{Concern: ConcernReviews, Comment: c, CommentID: c.ID})
	})
}

// AddReviewComment starts a new thread on a line of the diff.
func (p *ReviewsProvider) AddReviewComment(ctx context.Context, o *CreateCommentOptions) *lazy.Future[*Comment] {
	return p.commentMutation(ctx, EventCommentAdded, func(ctx context.Context) (*Comment, error) {
		return p.c.repo.CreateComment(ctx, p.c.id, o)
	})
}

// Reply posts a comment on the same line and commit as the thread.
func (p *ReviewsProvider) Reply(ctx context.Context, t *ReviewThread, body string) *lazy.Future[*Comment] {
	return p.AddReviewComment(ctx, &CreateCommentOptions{
		Body:     body,
		Path:     t.Path,
		Line:     t.Line,
		CommitID: t.CommitID,
	})
}

func (p *ReviewsProvider) EditComment(ctx context.Context, commentID string, body string) *lazy.Future[*Comment] {
	return p.commentMutation(ctx, EventCommentUpdated, func(ctx context.Context) (*Comment, error) {
		return p.c.repo.EditComment(ctx, p.c.id, commentID, body)
	})
}

func (p *ReviewsProvider) DeleteComment(ctx context.Context, commentID string) *lazy.Future[struct{}] {
	return mutate(p.c, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.c.repo.DeleteComment(ctx, p.c.id, commentID)
	}, func(struct{}) {
		p.value.Drop()
		p.c.publish(EventCommentDeleted, &Event{Concern: ConcernReviews, CommentID: commentID})
	})
}

func (p *ReviewsProvider) State() LoadState {
	return p.c.state(ConcernReviews)
}

func (p *ReviewsProvider) AddChangeListener(fn func()) func() {
	return p.value.AddListener(fn)
}
