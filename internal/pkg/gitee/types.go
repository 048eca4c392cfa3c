package gitee

import (
	"fmt"
	"strconv"

	"geepr/internal/domain/pullrequest"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/go-diff/diff"
	"github.com/tidwall/gjson"
)

func parsePullRequest(_, value gjson.Result) (*pullrequest.Details, error) {
	number := value.Get("number")
	if !number.Exists() {
		return nil, fmt.Errorf("%w: pull request without number", ErrMalformedPage)
	}

	state := pullrequest.State(value.Get("state").String())
	if value.Get("merged_at").String() != "" {
		state = pullrequest.StateMerged
	}

	author := value.Get("user.login").String()
	if author == "" {
		author = value.Get("user.name").String()
	}

	return &pullrequest.Details{
		ID:     pullrequest.EntityID(number.String()),
		Title:  value.Get("title").String(),
		Body:   value.Get("body").String(),
		State:  state,
		Draft:  value.Get("draft").Bool(),
		Author: author,
		URL:    value.Get("html_url").String(),
		Source: pullrequest.Branch{
			Name:       value.Get("head.ref").String(),
			Hash:       value.Get("head.sha").String(),
			Repository: value.Get("head.repo.full_name").String(),
		},
		Destination: pullrequest.Branch{
			Name:       value.Get("base.ref").String(),
			Hash:       value.Get("base.sha").String(),
			Repository: value.Get("base.repo.full_name").String(),
		},
		Created: value.Get("created_at").Time(),
		Updated: value.Get("updated_at").Time(),
	}, nil
}

func countAccepted(list gjson.Result) int {
	n := 0
	list.ForEach(func(_, v gjson.Result) bool {
		if v.Get("accept").Bool() {
			n++
		}
		return true
	})

	return n
}

func parseMergeability(value gjson.Result) *pullrequest.Mergeability {
	return &pullrequest.Mergeability{
		Mergeable:         value.Get("mergeable").Bool(),
		CanMergeCheck:     value.Get("can_merge_check").Bool(),
		HeadHash:          value.Get("head.sha").String(),
		ApprovalsRequired: int(value.Get("assignees_number").Int()),
		Approvals:         countAccepted(value.Get("assignees")),
		TestsRequired:     int(value.Get("testers_number").Int()),
		Tests:             countAccepted(value.Get("testers")),
	}
}

func parseFileStatus(value gjson.Result) pullrequest.FileChangeStatus {
	switch {
	case value.Get("patch.new_file").Bool():
		return pullrequest.FileAdded
	case value.Get("patch.deleted_file").Bool():
		return pullrequest.FileRemoved
	case value.Get("patch.renamed_file").Bool():
		return pullrequest.FileRenamed
	}

	switch s := value.Get("status").String(); s {
	case "added", "removed", "renamed":
		return pullrequest.FileChangeStatus(s)
	default:
		return pullrequest.FileModified
	}
}

func parseFile(_, value gjson.Result) (*pullrequest.FileChange, error) {
	path := value.Get("filename").String()
	if path == "" {
		path = value.Get("patch.new_path").String()
	}
	if path == "" {
		return nil, fmt.Errorf("%w: file change without a path", ErrMalformedPage)
	}

	fc := &pullrequest.FileChange{
		Path:      path,
		Status:    parseFileStatus(value),
		Additions: int(value.Get("additions").Int()),
		Deletions: int(value.Get("deletions").Int()),
	}
	if old := value.Get("patch.old_path").String(); old != "" && old != path {
		fc.PreviousPath = old
	}

	if patch := value.Get("patch.diff").String(); patch != "" {
		hunks, err := diff.ParseHunks([]byte(patch))
		if err != nil {
			// Binary and truncated patches come without parseable hunks.
			log.Debug().Err(err).Str("path", path).Msg("could not parse hunks")
		} else {
			fc.Hunks = hunks
		}
	}

	return fc, nil
}

func parseCommit(_, value gjson.Result) (*pullrequest.Commit, error) {
	sha := value.Get("sha").String()
	if sha == "" {
		return nil, fmt.Errorf("%w: commit without sha", ErrMalformedPage)
	}

	author := value.Get("author.login").String()
	if author == "" {
		author = value.Get("commit.author.name").String()
	}

	return &pullrequest.Commit{
		Hash:    sha,
		Message: value.Get("commit.message").String(),
		Author:  author,
		Created: value.Get("commit.author.date").Time(),
	}, nil
}

func parseComment(_, value gjson.Result) (*pullrequest.Comment, error) {
	id := value.Get("id")
	if !id.Exists() {
		return nil, fmt.Errorf("%w: comment without id", ErrMalformedPage)
	}

	line := value.Get("new_line").Int()
	if line == 0 {
		line = value.Get("position").Int()
	}

	c := &pullrequest.Comment{
		ID:       id.String(),
		Type:     pullrequest.ParseCommentType(value.Get("comment_type").String()),
		Body:     value.Get("body").String(),
		Author:   value.Get("user.login").String(),
		Path:     value.Get("path").String(),
		Line:     int(line),
		CommitID: value.Get("commit_id").String(),
		Created:  value.Get("created_at").Time(),
		Updated:  value.Get("updated_at").Time(),
	}
	if r := value.Get("in_reply_to_id").Int(); r != 0 {
		c.InReplyTo = strconv.FormatInt(r, 10)
	}

	return c, nil
}
