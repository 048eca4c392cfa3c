package gitee

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"geepr/internal/domain"
	"geepr/internal/pkg/pagination"

	"github.com/go-resty/resty/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultURL        = "https://gitee.com/api/v5"
	DefaultGraphQLURL = "https://gitee.com/api/graphql"
	DefaultPerPage    = 20
	MaxPerPage        = 100
)

var (
	ErrMissingToken      = errors.New("gitee token is missing")
	ErrMissingRepository = errors.New("gitee repository is missing, expected owner/name")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gitee: %s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Message)
}

// GraphQLError is returned when a GraphQL response carries an errors array,
// even with a 200 status.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "gitee graphql: " + strings.Join(e.Messages, "; ")
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	Repository domain.GitRepository
	baseURL    string
	graphqlURL string
	token      string
	perPage    int
	http       *resty.Client
	limiter    *rate.Limiter
}

type ClientOptions struct {
	Repository domain.GitRepository
	Token      string
	URL        string
	GraphQLURL string
	PerPage    int
	// RateLimit is the number of requests per second, zero disables limiting.
	RateLimit float64
	Logger    *logrus.Logger
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

func New(o *ClientOptions) (*Client, error) {
	if o.Repository.Owner == "" || o.Repository.Name == "" {
		return nil, ErrMissingRepository
	}

	c := &Client{
		Repository: o.Repository,
		baseURL:    strings.TrimRight(o.URL, "/"),
		graphqlURL: o.GraphQLURL,
		token:      o.Token,
		perPage:    o.PerPage,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultURL
	}
	if c.graphqlURL == "" {
		c.graphqlURL = DefaultGraphQLURL
	}
	if c.perPage <= 0 {
		c.perPage = DefaultPerPage
	}
	if c.perPage > MaxPerPage {
		c.perPage = MaxPerPage
	}

	if o.HTTPClient != nil {
		c.http = resty.NewWithClient(o.HTTPClient)
	} else {
		c.http = resty.New()
	}
	c.http.SetHeader("Accept", "application/json")

	logger := o.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	c.http.SetLogger(logger)
	c.http.SetDebug(logger.IsLevelEnabled(logrus.TraceLevel))

	if o.RateLimit > 0 {
		burst := int(o.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(o.RateLimit), burst)
	}

	return c, nil
}

func (c *Client) PerPage() int {
	return c.perPage
}

func (c *Client) GraphQLURL() string {
	return c.graphqlURL
}

func (c *Client) repoPath(format string, args ...interface{}) string {
	prefix := fmt.Sprintf("/repos/%s/%s", c.Repository.Owner, c.Repository.Name)
	return prefix + fmt.Sprintf(format, args...)
}

// resolve turns an API path into a full URL. Paths that already start
// with the API base path, like next links taken from a response body, are
// resolved against the host instead.
func (c *Client) resolve(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}

	base, err := url.Parse(c.baseURL)
	if err == nil && base.Path != "" && strings.HasPrefix(u, base.Path+"/") {
		if ref, err := url.Parse(u); err == nil {
			return base.ResolveReference(ref).String()
		}
	}

	return c.baseURL + "/" + strings.TrimLeft(u, "/")
}

// Execute sends a single request. It never retries.
func (c *Client) Execute(ctx context.Context, req *pagination.Request) (*pagination.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := c.resolve(req.URL)
	r := c.http.R().SetContext(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if c.token != "" {
		r.SetQueryParam("access_token", c.token)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(req.Body)
	}

	log.Debug().
		Str("method", req.Method).
		Str("url", target).
		Msg("gitee request")

	resp, err := r.Execute(req.Method, target)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, pkgerrors.Wrapf(err, "gitee %s %s", req.Method, req.URL)
	}

	if resp.IsError() {
		return nil, newAPIError(req.Method, req.URL, resp)
	}

	if target == c.graphqlURL {
		if err := graphQLErrors(resp.Body()); err != nil {
			return nil, err
		}
	}

	return &pagination.Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
		Request:    req,
	}, nil
}

func newAPIError(method, url string, resp *resty.Response) *APIError {
	msg := gjson.GetBytes(resp.Body(), "message").String()
	if msg == "" {
		msg = strings.TrimSpace(string(resp.Body()))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Method:     method,
		URL:        url,
		Message:    msg,
	}
}

func graphQLErrors(body []byte) error {
	errs := gjson.GetBytes(body, "errors")
	if !errs.IsArray() || len(errs.Array()) == 0 {
		return nil
	}

	msgs := []string{}
	errs.ForEach(func(_, value gjson.Result) bool {
		msgs = append(msgs, value.Get("message").String())
		return true
	})

	return &GraphQLError{Messages: msgs}
}

// do executes a single non-paged call and returns the parsed body.
func (c *Client) do(ctx context.Context, method, url string, body interface{}) (gjson.Result, error) {
	resp, err := c.Execute(ctx, &pagination.Request{
		Method: method,
		URL:    url,
		Body:   body,
	})
	if err != nil {
		return gjson.Result{}, err
	}

	return gjson.ParseBytes(resp.Body), nil
}
