package gitee

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"geepr/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const pullRequestsQuery = `query($owner: String!, $name: String!, $first: Int!, $after: String) {
  repository(owner: $owner, name: $name) {
    pullRequests(first: $first, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes { number title }
    }
  }
}`

type titled struct {
	Number int64
	Title  string
}

func parseTitled(_, v gjson.Result) (titled, error) {
	return titled{Number: v.Get("number").Int(), Title: v.Get("title").String()}, nil
}

func TestGraphQLPages(t *testing.T) {
	newPages := func(c *Client) *GraphQLPages[titled] {
		return &GraphQLPages[titled]{
			URL:            c.GraphQLURL(),
			Query:          pullRequestsQuery,
			Variables:      map[string]interface{}{"owner": "o", "name": "r"},
			ConnectionPath: "data.repository.pullRequests",
			PageSize:       2,
			Parse:          parseTitled,
		}
	}

	t.Run("stops at the first match after two requests", func(t *testing.T) {
		var requests int32
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requests, 1)

			var body struct {
				Variables map[string]interface{} `json:"variables"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)

			start := 1
			if after, ok := body.Variables["after"].(string); ok {
				_, _ = fmt.Sscanf(after, "c%d", &start)
			}
			fmt.Fprintf(w, `{"data":{"repository":{"pullRequests":{
				"pageInfo":{"hasNextPage":true,"endCursor":"c%d"},
				"nodes":[{"number":%d,"title":"PR %d"},{"number":%d,"title":"PR %d"}]
			}}}}`, start+2, start, start, start+1, start+1)
		}))

		l := pagination.NewLoader[titled](c, newPages(c))
		found, ok, err := pagination.FindFirst(context.Background(), l, func(v titled) bool {
			return v.Number == 3
		})

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "PR 3", found.Title)
		assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	})

	t.Run("fails when pageInfo is missing", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"repository":{"pullRequests":{"nodes":[]}}}}`))
		}))

		l := pagination.NewLoader[titled](c, newPages(c))
		_, err := l.LoadNext(context.Background(), pagination.UpdateModeNormal)
		assert.ErrorIs(t, err, ErrMalformedPage)
		assert.True(t, l.HasNext())
	})

	t.Run("fails when a next page has no cursor", func(t *testing.T) {
		p := &GraphQLPages[titled]{ConnectionPath: "data.c", Parse: parseTitled}
		_, err := p.ParseResponse(&pagination.Response{
			Body: []byte(`{"data":{"c":{"pageInfo":{"hasNextPage":true},"nodes":[]}}}`),
		})
		assert.ErrorIs(t, err, ErrMalformedPage)
	})

	t.Run("ends the list when hasNextPage is false", func(t *testing.T) {
		p := &GraphQLPages[titled]{ConnectionPath: "data.c", Parse: parseTitled}
		page, err := p.ParseResponse(&pagination.Response{
			Body: []byte(`{"data":{"c":{"pageInfo":{"hasNextPage":false},"nodes":[{"number":1}]}}}`),
		})
		require.NoError(t, err)
		assert.False(t, page.Next.HasNext)
		assert.Len(t, page.Items, 1)
	})

	t.Run("passes the cursor as $after", func(t *testing.T) {
		p := &GraphQLPages[titled]{URL: "/graphql", PageSize: 5}
		req, err := p.BuildRequest(pagination.Cursor{HasNext: true, Token: "abc"})
		require.NoError(t, err)

		vars := req.Body.(map[string]interface{})["variables"].(map[string]interface{})
		assert.Equal(t, "abc", vars["after"])
		assert.Equal(t, 5, vars["first"])
		assert.Equal(t, http.MethodPost, req.Method)
	})
}
