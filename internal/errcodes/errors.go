package errcodes

import "errors"

var (
	ErrMissingRepository               = errors.New("repository is missing, pass --repository or run inside a Gitee clone")
	ErrMissingPullRequestID            = errors.New("pull request ID is missing")
	ErrMissingCommentBody              = errors.New("comment body is missing")
	ErrMissingPath                     = errors.New("path is missing")
	ErrLineRequiresPath                = errors.New("--path and --line must be given together")
	ErrReplyWithPosition               = errors.New("--reply-to cannot be combined with --path or --line")
	ErrRepositoryMustBeInFormOwnerRepo = errors.New("repository must be in the form of 'owner/repo'")
	ErrUnknownState                    = errors.New("state must be one of open, closed, merged, all")
	ErrUnknownMergeMethod              = errors.New("merge method must be one of merge, squash, rebase")
	ErrPullRequestNotFound             = errors.New("no pull request matches")
	ErrThreadNotFound                  = errors.New("review thread not found")
	ErrNotMergeable                    = errors.New("pull request cannot be merged")
	ErrAborted                         = errors.New("aborted")
)
