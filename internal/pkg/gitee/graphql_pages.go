package gitee

import (
	"fmt"
	"net/http"
	"time"

	"geepr/internal/pkg/pagination"

	"github.com/tidwall/gjson"
)

// GraphQLPages walks a cursor-based connection. The query must accept
// $first and $after variables and select pageInfo { hasNextPage endCursor }
// and nodes on the connection found at ConnectionPath.
type GraphQLPages[T any] struct {
	URL            string
	Query          string
	Variables      map[string]interface{}
	ConnectionPath string
	PageSize       int
	Parse          func(key, value gjson.Result) (T, error)
}

func (p *GraphQLPages[T]) request(c pagination.Cursor, extra map[string]interface{}) *pagination.Request {
	vars := map[string]interface{}{}
	for k, v := range p.Variables {
		vars[k] = v
	}
	for k, v := range extra {
		vars[k] = v
	}

	size := p.PageSize
	if size <= 0 {
		size = DefaultPerPage
	}
	vars["first"] = size
	if c.Token != "" {
		vars["after"] = c.Token
	}

	return &pagination.Request{
		Method: http.MethodPost,
		URL:    p.URL,
		Body: map[string]interface{}{
			"query":     p.Query,
			"variables": vars,
		},
	}
}

func (p *GraphQLPages[T]) BuildRequest(c pagination.Cursor) (*pagination.Request, error) {
	return p.request(c, nil), nil
}

func (p *GraphQLPages[T]) ParseResponse(resp *pagination.Response) (*pagination.Page[T], error) {
	if err := graphQLErrors(resp.Body); err != nil {
		return nil, err
	}

	conn := gjson.GetBytes(resp.Body, p.ConnectionPath)
	if !conn.Exists() {
		return nil, fmt.Errorf("%w: no connection at %s", ErrMalformedPage, p.ConnectionPath)
	}

	info := conn.Get("pageInfo")
	if !info.Exists() {
		return nil, fmt.Errorf("%w: missing pageInfo", ErrMalformedPage)
	}

	items, err := parseItems(conn.Get("nodes"), p.Parse)
	if err != nil {
		return nil, err
	}

	if !info.Get("hasNextPage").Bool() {
		return &pagination.Page[T]{Items: items, Next: pagination.LastPage("")}, nil
	}

	end := info.Get("endCursor").String()
	if end == "" {
		return nil, fmt.Errorf("%w: hasNextPage without endCursor", ErrMalformedPage)
	}

	return &pagination.Page[T]{
		Items: items,
		Next:  pagination.Cursor{HasNext: true, Token: end},
	}, nil
}

// IncrementalGraphQLPages passes the refresh timestamp as $since.
type IncrementalGraphQLPages[T any] struct {
	GraphQLPages[T]
}

func (p *IncrementalGraphQLPages[T]) BuildIncrementalRequest(_ pagination.Cursor, since time.Time) (*pagination.Request, error) {
	return p.request(pagination.InitialCursor(), map[string]interface{}{
		"since": since.UTC().Format(time.RFC3339),
	}), nil
}
