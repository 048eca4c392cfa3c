package pagination

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   interface{}
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Request    *Request
}

// Executor performs a single wire request. Implementations report
// transport and non-2xx failures as errors and never retry.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Fetcher translates between a cursor and one request/response pair.
// Implementations must not keep mutable state.
type Fetcher[T any] interface {
	BuildRequest(cursor Cursor) (*Request, error)
	ParseResponse(resp *Response) (*Page[T], error)
}

// IncrementalFetcher is implemented by fetchers whose backend can return
// only the items changed since a timestamp.
type IncrementalFetcher[T any] interface {
	Fetcher[T]
	BuildIncrementalRequest(cursor Cursor, since time.Time) (*Request, error)
}

type ExecutorFunc func(ctx context.Context, req *Request) (*Response, error)

func (f ExecutorFunc) Execute(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
