package gitee

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/pagination"

	"github.com/tidwall/gjson"
)

var _ pullrequest.Repository = (*Client)(nil)

func (c *Client) PullRequestPages(o *pullrequest.ListOptions) pagination.Fetcher[*pullrequest.Details] {
	q := url.Values{}
	if o != nil {
		if o.State != "" {
			q.Set("state", string(o.State))
		}
		if o.Sort != "" {
			q.Set("sort", o.Sort)
		}
		if o.Direction != "" {
			q.Set("direction", o.Direction)
		}
	}

	return &IncrementalRESTPages[*pullrequest.Details]{RESTPages[*pullrequest.Details]{
		Path:    c.repoPath("/pulls"),
		Query:   q,
		PerPage: c.perPage,
		Parse:   parsePullRequest,
	}}
}

func (c *Client) CommentPages(id pullrequest.EntityID) pagination.Fetcher[*pullrequest.Comment] {
	return &RESTPages[*pullrequest.Comment]{
		Path:    c.repoPath("/pulls/%s/comments", id),
		PerPage: c.perPage,
		Parse:   parseComment,
	}
}

func (c *Client) GetPullRequest(ctx context.Context, id pullrequest.EntityID) (*pullrequest.Details, error) {
	body, err := c.do(ctx, http.MethodGet, c.repoPath("/pulls/%s", id), nil)
	if err != nil {
		return nil, err
	}

	return parsePullRequest(gjson.Result{}, body)
}

func (c *Client) GetMergeability(ctx context.Context, id pullrequest.EntityID) (*pullrequest.Mergeability, error) {
	body, err := c.do(ctx, http.MethodGet, c.repoPath("/pulls/%s", id), nil)
	if err != nil {
		return nil, err
	}

	return parseMergeability(body), nil
}

func (c *Client) GetFiles(ctx context.Context, id pullrequest.EntityID) ([]*pullrequest.FileChange, error) {
	body, err := c.do(ctx, http.MethodGet, c.repoPath("/pulls/%s/files", id), nil)
	if err != nil {
		return nil, err
	}
	if !body.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of files", ErrMalformedPage)
	}

	return parseItems(body, parseFile)
}

func (c *Client) GetCommits(ctx context.Context, id pullrequest.EntityID) ([]*pullrequest.Commit, error) {
	body, err := c.do(ctx, http.MethodGet, c.repoPath("/pulls/%s/commits", id), nil)
	if err != nil {
		return nil, err
	}
	if !body.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of commits", ErrMalformedPage)
	}

	return parseItems(body, parseCommit)
}

func (c *Client) UpdatePullRequest(
	ctx context.Context,
	id pullrequest.EntityID,
	o *pullrequest.UpdateOptions,
) (*pullrequest.Details, error) {
	payload := map[string]interface{}{}
	if o.Title != nil {
		payload["title"] = *o.Title
	}
	if o.Body != nil {
		payload["body"] = *o.Body
	}
	if o.State != nil {
		payload["state"] = string(*o.State)
	}

	body, err := c.do(ctx, http.MethodPatch, c.repoPath("/pulls/%s", id), payload)
	if err != nil {
		return nil, err
	}

	return parsePullRequest(gjson.Result{}, body)
}

func (c *Client) Merge(ctx context.Context, id pullrequest.EntityID, o *pullrequest.MergeOptions) error {
	method := o.Method
	if method == "" {
		method = pullrequest.MergeMethodMerge
	}

	payload := map[string]interface{}{
		"merge_method":        string(method),
		"prune_source_branch": o.PruneSourceBranch,
	}
	if o.Title != "" {
		payload["title"] = o.Title
	}
	if o.Description != "" {
		payload["description"] = o.Description
	}

	_, err := c.do(ctx, http.MethodPut, c.repoPath("/pulls/%s/merge", id), payload)
	return err
}

func (c *Client) CreateComment(
	ctx context.Context,
	id pullrequest.EntityID,
	o *pullrequest.CreateCommentOptions,
) (*pullrequest.Comment, error) {
	payload := map[string]interface{}{"body": o.Body}
	if o.Path != "" {
		payload["path"] = o.Path
		payload["position"] = o.Line
		payload["commit_id"] = o.CommitID
	}

	body, err := c.do(ctx, http.MethodPost, c.repoPath("/pulls/%s/comments", id), payload)
	if err != nil {
		return nil, err
	}

	return parseComment(gjson.Result{}, body)
}

func (c *Client) EditComment(
	ctx context.Context,
	_ pullrequest.EntityID,
	commentID string,
	text string,
) (*pullrequest.Comment, error) {
	body, err := c.do(
		ctx,
		http.MethodPatch,
		c.repoPath("/pulls/comments/%s", commentID),
		map[string]interface{}{"body": text},
	)
	if err != nil {
		return nil, err
	}

	return parseComment(gjson.Result{}, body)
}

func (c *Client) DeleteComment(ctx context.Context, _ pullrequest.EntityID, commentID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.repoPath("/pulls/comments/%s", commentID), nil)
	return err
}
