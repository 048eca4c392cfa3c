package gitee

import (
	"fmt"
	"net/http"
	"net/url"

	"geepr/internal/pkg/pagination"

	"github.com/tidwall/gjson"
)

// LinkPages walks an envelope style list where the body carries the
// items and a link to the next page. The link is either absolute or rooted
// at the API base path, for example /api/v5/....
type LinkPages[T any] struct {
	URL       string
	Query     url.Values
	ItemsPath string
	NextPath  string
	Parse     func(key, value gjson.Result) (T, error)
}

func (p *LinkPages[T]) BuildRequest(c pagination.Cursor) (*pagination.Request, error) {
	if c.Token != "" {
		return &pagination.Request{Method: http.MethodGet, URL: c.Token}, nil
	}

	return &pagination.Request{Method: http.MethodGet, URL: p.URL, Query: p.Query}, nil
}

func (p *LinkPages[T]) ParseResponse(resp *pagination.Response) (*pagination.Page[T], error) {
	parsed := gjson.ParseBytes(resp.Body)

	itemsPath, nextPath := p.ItemsPath, p.NextPath
	if itemsPath == "" {
		itemsPath = "values"
	}
	if nextPath == "" {
		nextPath = "next"
	}

	list := parsed.Get(itemsPath)
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: no item list at %s", ErrMalformedPage, itemsPath)
	}

	items, err := parseItems(list, p.Parse)
	if err != nil {
		return nil, err
	}

	next := parsed.Get(nextPath).String()
	if next == "" {
		return &pagination.Page[T]{Items: items, Next: pagination.LastPage("")}, nil
	}

	u, err := url.Parse(next)
	if err != nil || (!u.IsAbs() && (len(next) == 0 || next[0] != '/')) {
		return nil, fmt.Errorf("%w: bad next link %q", ErrMalformedPage, next)
	}

	return &pagination.Page[T]{
		Items: items,
		Next:  pagination.Cursor{HasNext: true, Token: next},
	}, nil
}
