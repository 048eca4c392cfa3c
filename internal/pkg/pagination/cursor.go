package pagination

import "time"

// Cursor describes where the next page of a list starts.
// Token is opaque to the loader: a page number, a GraphQL end cursor
// or a full next-page URL depending on the fetcher.
type Cursor struct {
	HasNext bool
	Token   string
	AsOf    *time.Time
}

func InitialCursor() Cursor {
	return Cursor{HasNext: true}
}

// LastPage is the cursor a fetcher reports once the list is exhausted.
func LastPage(token string) Cursor {
	return Cursor{HasNext: false, Token: token}
}

type Page[T any] struct {
	Items []T
	Next  Cursor
}

type UpdateMode int

const (
	UpdateModeNormal UpdateMode = iota
	// UpdateModeIncremental asks only for items changed since the
	// loader's last full pass.
	UpdateModeIncremental
)

func (m UpdateMode) String() string {
	switch m {
	case UpdateModeNormal:
		return "normal"
	case UpdateModeIncremental:
		return "incremental"
	default:
		return "unknown"
	}
}
