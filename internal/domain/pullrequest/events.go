package pullrequest

const (
	EventStateChanged    = "state_changed"
	EventMetadataChanged = "metadata_changed"
	EventCommentAdded    = "comment_added"
	EventCommentUpdated  = "comment_updated"
	EventCommentDeleted  = "comment_deleted"
	EventViewedChanged   = "viewed_changed"
	EventLoadFailed      = "load_failed"
)

// Concern names one lazily loaded part of a pull request.
type Concern string

const (
	ConcernDetails      Concern = "details"
	ConcernMergeability Concern = "mergeability"
	ConcernChanges      Concern = "changes"
	ConcernComments     Concern = "comments"
	ConcernReviews      Concern = "reviews"
	ConcernViewed       Concern = "viewed"
)

// Event is the payload published on the event bus.
type Event struct {
	ID        EntityID
	Concern   Concern
	Comment   *Comment
	CommentID string
	Path      string
	Err       error
}
