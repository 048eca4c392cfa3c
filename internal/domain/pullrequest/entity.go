package pullrequest

import (
	"time"

	"github.com/sourcegraph/go-diff/diff"
)

type EntityID string

type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
	StateAll    State = "all"
)

type Branch struct {
	Name       string
	Hash       string
	Repository string
}

// Details is the metadata of a pull request as last loaded from the server.
type Details struct {
	ID          EntityID
	Title       string
	Body        string
	State       State
	Draft       bool
	Author      string
	URL         string
	Source      Branch
	Destination Branch
	Created     time.Time
	Updated     time.Time
}

type Mergeability struct {
	Mergeable         bool
	CanMergeCheck     bool
	HeadHash          string
	ApprovalsRequired int
	Approvals         int
	TestsRequired     int
	Tests             int
}

// CanMerge reports whether the server would accept a merge right now.
func (m *Mergeability) CanMerge() bool {
	if !m.Mergeable {
		return false
	}

	return m.Approvals >= m.ApprovalsRequired && m.Tests >= m.TestsRequired
}

type Commit struct {
	Hash    string
	Message string
	Author  string
	Created time.Time
}

type FileChangeStatus string

const (
	FileAdded    FileChangeStatus = "added"
	FileModified FileChangeStatus = "modified"
	FileRemoved  FileChangeStatus = "removed"
	FileRenamed  FileChangeStatus = "renamed"
)

type FileChange struct {
	Path         string
	PreviousPath string
	Status       FileChangeStatus
	Additions    int
	Deletions    int
	Hunks        []*diff.Hunk
}

type Changes struct {
	Commits []*Commit
	Files   []*FileChange
}

type CommentType int

const (
	CommentTypeUnknown CommentType = iota
	CommentTypeGeneral
	CommentTypeDiff
)

// ParseCommentType maps Gitee's comment_type discriminant. Values it does
// not know become CommentTypeUnknown instead of failing the whole page.
func ParseCommentType(s string) CommentType {
	switch s {
	case "pr_comment":
		return CommentTypeGeneral
	case "diff_comment":
		return CommentTypeDiff
	default:
		return CommentTypeUnknown
	}
}

func (t CommentType) String() string {
	switch t {
	case CommentTypeGeneral:
		return "pr_comment"
	case CommentTypeDiff:
		return "diff_comment"
	default:
		return "unknown"
	}
}

type Comment struct {
	ID        string
	Type      CommentType
	Body      string
	Author    string
	Path      string
	Line      int
	CommitID  string
	InReplyTo string
	Created   time.Time
	Updated   time.Time
}

type ReviewThread struct {
	ID       string
	Path     string
	Line     int
	CommitID string
	Outdated bool
	Comments []*Comment
}

// ViewedState maps a file path to whether the user marked it as viewed.
type ViewedState map[string]bool

func (vs ViewedState) With(path string, viewed bool) ViewedState {
	out := make(ViewedState, len(vs)+1)
	for k, v := range vs {
		out[k] = v
	}

	if viewed {
		out[path] = true
	} else {
		delete(out, path)
	}

	return out
}

type LoadState int

const (
	LoadStateIdle LoadState = iota
	LoadStateLoading
	LoadStateLoaded
	LoadStateFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadStateLoading:
		return "loading"
	case LoadStateLoaded:
		return "loaded"
	case LoadStateFailed:
		return "failed"
	default:
		return "idle"
	}
}
