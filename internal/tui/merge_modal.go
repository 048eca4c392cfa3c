package tui

import (
	"fmt"

	"geepr/internal/domain/pullrequest"

	"github.com/rivo/tview"
)

var mergeMethods = []pullrequest.MergeMethod{
	pullrequest.MergeMethodMerge,
	pullrequest.MergeMethodSquash,
	pullrequest.MergeMethodRebase,
}

func newMergeModal(t *Tui, p *pullrequest.DataProvider) tview.Primitive {
	buttons := make([]string, 0, len(mergeMethods)+1)
	for _, m := range mergeMethods {
		buttons = append(buttons, string(m))
	}
	buttons = append(buttons, "Cancel")

	return tview.NewModal().
		SetText(fmt.Sprintf("Merge pull request #%s?", p.ID)).
		AddButtons(buttons).
		SetDoneFunc(mergeConfirmationCallback(t, p))
}

func mergeConfirmationCallback(t *Tui, p *pullrequest.DataProvider) func(int, string) {
	return func(buttonIndex int, _ string) {
		t.closeModal()
		if buttonIndex < 0 || buttonIndex >= len(mergeMethods) {
			return
		}

		method := mergeMethods[buttonIndex]
		t.setStatus("merging #%s...", p.ID)
		p.Mergeability.Merge(t.ctx, &pullrequest.MergeOptions{Method: method}).
			OnComplete(func(_ struct{}, err error) {
				t.queue(func() {
					if err != nil {
						t.setStatus("merging #%s failed: %s", p.ID, err)
						return
					}
					t.setStatus("#%s merged", p.ID)
				})
			})
	}
}
