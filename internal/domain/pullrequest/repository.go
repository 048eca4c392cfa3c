package pullrequest

import (
	"context"

	"geepr/internal/pkg/pagination"
)

type ListOptions struct {
	State     State
	Sort      string
	Direction string
}

type UpdateOptions struct {
	Title *string
	Body  *string
	State *State
}

type MergeMethod string

const (
	MergeMethodMerge  MergeMethod = "merge"
	MergeMethodSquash MergeMethod = "squash"
	MergeMethodRebase MergeMethod = "rebase"
)

type MergeOptions struct {
	Method            MergeMethod
	Title             string
	Description       string
	PruneSourceBranch bool
}

type CreateCommentOptions struct {
	Body     string
	Path     string
	Line     int
	CommitID string
}

type Pager interface {
	pagination.Executor
	PullRequestPages(o *ListOptions) pagination.Fetcher[*Details]
	CommentPages(id EntityID) pagination.Fetcher[*Comment]
}

type Reader interface {
	GetPullRequest(ctx context.Context, id EntityID) (*Details, error)
	GetMergeability(ctx context.Context, id EntityID) (*Mergeability, error)
	GetFiles(ctx context.Context, id EntityID) ([]*FileChange, error)
	GetCommits(ctx context.Context, id EntityID) ([]*Commit, error)
}

type Writer interface {
	UpdatePullRequest(ctx context.Context, id EntityID, o *UpdateOptions) (*Details, error)
	Merge(ctx context.Context, id EntityID, o *MergeOptions) error
	CreateComment(ctx context.Context, id EntityID, o *CreateCommentOptions) (*Comment, error)
	EditComment(ctx context.Context, id EntityID, commentID string, body string) (*Comment, error)
	DeleteComment(ctx context.Context, id EntityID, commentID string) error
}

// Repository is everything the data providers need from the server.
type Repository interface {
	Pager
	Reader
	Writer
}

// ViewedStore keeps the per-file viewed marks of a pull request.
type ViewedStore interface {
	GetViewed(id EntityID) (ViewedState, error)
	SetViewed(id EntityID, path string, viewed bool) error
}
