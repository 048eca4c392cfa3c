package gitee

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"geepr/internal/pkg/pagination"

	"github.com/tidwall/gjson"
)

const (
	totalCountHeader = "total_count"
	totalPageHeader  = "total_page"
)

var (
	ErrMalformedPage = errors.New("malformed page")

	pageParamRegex    = regexp.MustCompile(`([?&])page=(\d+)`)
	perPageParamRegex = regexp.MustCompile(`[?&]per_page=(\d+)`)
)

// RESTPages walks a Gitee v5 list endpoint. Page numbers travel in the
// page query parameter and the end of the list is detected from the
// total_page and total_count headers, or from a short page when the
// server sends neither.
type RESTPages[T any] struct {
	Path    string
	Query   url.Values
	PerPage int
	Parse   func(key, value gjson.Result) (T, error)
}

func (p *RESTPages[T]) perPage() int {
	if p.PerPage <= 0 {
		return DefaultPerPage
	}

	return p.PerPage
}

func (p *RESTPages[T]) firstPage(extra url.Values) *pagination.Request {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = append([]string{}, v...)
	}
	for k, v := range extra {
		q[k] = append([]string{}, v...)
	}
	q.Set("page", "1")
	q.Set("per_page", strconv.Itoa(p.perPage()))

	return &pagination.Request{Method: http.MethodGet, URL: p.Path, Query: q}
}

func (p *RESTPages[T]) BuildRequest(c pagination.Cursor) (*pagination.Request, error) {
	if c.Token != "" {
		return &pagination.Request{Method: http.MethodGet, URL: c.Token}, nil
	}

	return p.firstPage(nil), nil
}

func (p *RESTPages[T]) ParseResponse(resp *pagination.Response) (*pagination.Page[T], error) {
	parsed := gjson.ParseBytes(resp.Body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedPage)
	}

	items, err := parseItems(parsed, p.Parse)
	if err != nil {
		return nil, err
	}

	current := requestURL(resp.Request)
	page := 1
	if m := pageParamRegex.FindStringSubmatch(current); m != nil {
		page, _ = strconv.Atoi(m[2])
	}
	perPage := p.perPage()
	if m := perPageParamRegex.FindStringSubmatch(current); m != nil {
		perPage, _ = strconv.Atoi(m[1])
	}

	hasNext := len(items) > 0
	totalPage, hasTotalPage, err := intHeader(resp.Header, totalPageHeader)
	if err != nil {
		return nil, err
	}
	totalCount, hasTotalCount, err := intHeader(resp.Header, totalCountHeader)
	if err != nil {
		return nil, err
	}
	if hasTotalPage {
		hasNext = hasNext && page < totalPage
	}
	if hasTotalCount {
		hasNext = hasNext && (page-1)*perPage+len(items) < totalCount
	}
	if !hasTotalPage && !hasTotalCount {
		hasNext = hasNext && len(items) >= perPage
	}

	if !hasNext {
		return &pagination.Page[T]{Items: items, Next: pagination.LastPage("")}, nil
	}

	return &pagination.Page[T]{
		Items: items,
		Next:  pagination.Cursor{HasNext: true, Token: withPage(current, page+1)},
	}, nil
}

// IncrementalRESTPages is a RESTPages whose endpoint accepts a since
// parameter, so a finished list can be refreshed with changed items only.
type IncrementalRESTPages[T any] struct {
	RESTPages[T]
}

func (p *IncrementalRESTPages[T]) BuildIncrementalRequest(_ pagination.Cursor, since time.Time) (*pagination.Request, error) {
	return p.firstPage(url.Values{"since": {since.UTC().Format(time.RFC3339)}}), nil
}

func parseItems[T any](list gjson.Result, parse func(key, value gjson.Result) (T, error)) ([]T, error) {
	items := []T{}
	var parseErr error
	list.ForEach(func(key, value gjson.Result) bool {
		obj, err := parse(key, value)
		if err != nil {
			parseErr = err
			return false
		}

		items = append(items, obj)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return items, nil
}

func requestURL(req *pagination.Request) string {
	if req == nil {
		return ""
	}
	if len(req.Query) == 0 {
		return req.URL
	}

	sep := "?"
	if strings.Contains(req.URL, "?") {
		sep = "&"
	}

	return req.URL + sep + req.Query.Encode()
}

func withPage(u string, page int) string {
	if pageParamRegex.MatchString(u) {
		return pageParamRegex.ReplaceAllString(u, "${1}page="+strconv.Itoa(page))
	}

	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}

	return u + sep + "page=" + strconv.Itoa(page)
}

func intHeader(h http.Header, name string) (int, bool, error) {
	v := h.Get(name)
	if v == "" {
		return 0, false, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false, fmt.Errorf("%w: bad %s header %q", ErrMalformedPage, name, v)
	}

	return n, true, nil
}
