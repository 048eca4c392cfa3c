package tui

import (
	"strings"

	"geepr/internal/domain/pullrequest"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func newAddCommentModal(t *Tui, p *pullrequest.DataProvider) tview.Primitive {
	modal := func(p tview.Primitive, width, height int) tview.Primitive {
		return tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(
				tview.NewFlex().SetDirection(tview.FlexRow).
					AddItem(nil, 0, 1, false).
					AddItem(p, height, 1, true).
					AddItem(nil, 0, 1, false),
				width, 1, true,
			).
			AddItem(nil, 0, 1, false)
	}

	textArea := tview.NewTextArea().SetPlaceholder("Add text here...")
	cancelButton := tview.NewButton("Cancel")
	confirmButton := tview.NewButton("Send")
	s := tview.NewFlex()

	cancelButton.SetSelectedFunc(t.closeModal)
	confirmButton.SetSelectedFunc(func() {
		t.closeModal()
		sendComment(t, p, textArea.GetText())
	})

	textArea.
		SetBorder(true).
		SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
			switch event.Key() {
			case tcell.KeyEsc:
				t.app.SetFocus(cancelButton)
				return nil
			case tcell.KeyEnter:
				if event.Modifiers()&tcell.ModShift == 0 {
					t.app.SetFocus(confirmButton)
					return nil
				}
			}

			return event
		})

	cancelButton.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			t.app.SetFocus(confirmButton)
			return nil
		case tcell.KeyEsc:
			t.closeModal()
			return nil
		}
		return event
	})

	confirmButton.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			t.app.SetFocus(textArea)
			return nil
		case tcell.KeyEsc:
			t.closeModal()
			return nil
		}
		return event
	})

	s.SetDirection(tview.FlexRow).
		AddItem(tview.NewTextView().SetText("Content"), 1, 0, false).
		AddItem(textArea, 0, 1, true).
		AddItem(
			tview.NewFlex().SetDirection(tview.FlexColumn).
				AddItem(tview.NewBox(), 0, 1, false).
				AddItem(cancelButton, len(cancelButton.GetLabel())+2, 0, false).
				AddItem(tview.NewBox(), 1, 0, false).
				AddItem(confirmButton, len(confirmButton.GetLabel())+2, 0, false),
			1, 0, false,
		)

	s.SetTitle("Add a comment").
		SetBorder(true).
		SetBorderColor(s.GetBackgroundColor())

	return modal(s, 80, 20)
}

func sendComment(t *Tui, p *pullrequest.DataProvider, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}

	p.Comments.AddComment(t.ctx, body).OnComplete(func(c *pullrequest.Comment, err error) {
		t.queue(func() {
			if err != nil {
				t.setStatus("commenting failed: %s", err)
				return
			}
			t.setStatus("comment %s added", c.ID)
		})
	})
}
