package gitee

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"geepr/internal/domain"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeGitee serves a repository with a fixed number of pull requests
// through the v5 list endpoint.
type fakeGitee struct {
	total       int
	sendHeaders bool
	requests    int32
	lastQuery   atomic.Value
}

func (f *fakeGitee) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.requests, 1)
	f.lastQuery.Store(r.URL.Query())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	items := []map[string]interface{}{}
	for n := (page-1)*perPage + 1; n <= page*perPage && n <= f.total; n++ {
		items = append(items, pullRequestJSON(n))
	}

	if f.sendHeaders {
		w.Header().Set("total_count", strconv.Itoa(f.total))
		w.Header().Set("total_page", strconv.Itoa((f.total+perPage-1)/perPage))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (f *fakeGitee) Requests() int {
	return int(atomic.LoadInt32(&f.requests))
}

func pullRequestJSON(n int) map[string]interface{} {
	return map[string]interface{}{
		"number":   n,
		"title":    fmt.Sprintf("PR %d", n),
		"state":    "open",
		"html_url": fmt.Sprintf("https://gitee.com/o/r/pulls/%d", n),
		"user":     map[string]interface{}{"login": "alice"},
		"head":     map[string]interface{}{"ref": "feature", "sha": "h1"},
		"base":     map[string]interface{}{"ref": "master", "sha": "b1"},
	}
}

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c, err := New(&ClientOptions{
		Repository: domain.GitRepository{Owner: "o", Name: "r"},
		Token:      "secret",
		URL:        server.URL,
		GraphQLURL: server.URL + "/graphql",
		PerPage:    10,
	})
	require.NoError(t, err)

	return c, server
}

func gjsonParse(s string) (gjson.Result, gjson.Result) {
	return gjson.Result{}, gjson.Parse(s)
}
