package tui

import (
	"geepr/internal/domain/pullrequest"
)

// subscribe reports provider events in the status line. A state change
// also refreshes the list so the table shows the new state.
func (t *Tui) subscribe() {
	if t.bus == nil {
		return
	}

	on := func(name string, fn func(e *pullrequest.Event)) {
		t.unsubscribe = append(t.unsubscribe, t.bus.Subscribe(name, func(data interface{}) {
			e, ok := data.(*pullrequest.Event)
			if !ok {
				return
			}
			t.queue(func() { fn(e) })
		}))
	}

	on(pullrequest.EventStateChanged, func(e *pullrequest.Event) {
		t.setStatus("#%s changed state", e.ID)
		t.refresh()
	})
	on(pullrequest.EventMetadataChanged, func(e *pullrequest.Event) {
		t.setStatus("#%s updated", e.ID)
	})
	on(pullrequest.EventCommentAdded, func(e *pullrequest.Event) {
		t.setStatus("comment %s added to #%s", e.CommentID, e.ID)
	})
	on(pullrequest.EventCommentUpdated, func(e *pullrequest.Event) {
		t.setStatus("comment %s of #%s edited", e.CommentID, e.ID)
	})
	on(pullrequest.EventCommentDeleted, func(e *pullrequest.Event) {
		t.setStatus("comment %s of #%s deleted", e.CommentID, e.ID)
	})
	on(pullrequest.EventViewedChanged, func(e *pullrequest.Event) {
		t.setStatus("%s of #%s marked", e.Path, e.ID)
	})
	on(pullrequest.EventLoadFailed, func(e *pullrequest.Event) {
		t.setStatus("loading %s of #%s failed: %s", e.Concern, e.ID, e.Err)
	})
}

func (t *Tui) unsubscribeAll() {
	for _, fn := range t.unsubscribe {
		fn()
	}
	t.unsubscribe = nil
}
