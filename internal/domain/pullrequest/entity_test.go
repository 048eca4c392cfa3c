package pullrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommentType(t *testing.T) {
	tests := []struct {
		input    string
		expected CommentType
	}{
		{"pr_comment", CommentTypeGeneral},
		{"diff_comment", CommentTypeDiff},
		{"commit_comment", CommentTypeUnknown},
		{"", CommentTypeUnknown},
	}

	for _, tt := range tests {
		t.Run("parses "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCommentType(tt.input))
		})
	}
}

func TestViewedState_With(t *testing.T) {
	t.Run("does not modify the receiver", func(t *testing.T) {
		vs := ViewedState{"a.go": true}
		next := vs.With("b.go", true).With("a.go", false)

		assert.Equal(t, ViewedState{"a.go": true}, vs)
		assert.Equal(t, ViewedState{"b.go": true}, next)
	})
}
