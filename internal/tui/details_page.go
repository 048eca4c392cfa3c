package tui

import (
	"fmt"
	"strings"

	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/lazy"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var (
	bottomLeftBorder       = "┗"
	topLeftBorder          = "┏"
	topLeftSameLevelBorder = "┣"
	horizontalBorder       = "━"
	verticalBorder         = "┃"
)

// section is what a concern looks like at draw time.
type section[T any] struct {
	Value   T
	Loading bool
	Err     error
}

func sectionOf[T any](f *lazy.Future[T]) section[T] {
	if !f.IsDone() {
		return section[T]{Loading: true}
	}

	v, err := f.Peek()
	return section[T]{Value: v, Err: err}
}

// placeholder returns the text shown instead of a section's content, or
// an empty string once it loaded.
func placeholder[T any](name string, s section[T]) string {
	switch {
	case s.Loading:
		return fmt.Sprintf("[gray]Loading %s...[-]\n", name)
	case lazy.IsCancelled(s.Err):
		return fmt.Sprintf("[gray]%s not loaded[-]\n", name)
	case s.Err != nil:
		return fmt.Sprintf("[red]Loading %s failed: %s[-]\n", name, tview.Escape(s.Err.Error()))
	}

	return ""
}

func renderHeader(details section[*pullrequest.Details], mergeability section[*pullrequest.Mergeability]) string {
	var b strings.Builder
	if p := placeholder("details", details); p != "" {
		b.WriteString(p)
	} else {
		d := details.Value
		fmt.Fprintf(&b, "[::b]#%s %s[::-]  %s -> %s  (%s)\n",
			d.ID, tview.Escape(d.Title), d.Source.Name, d.Destination.Name, d.State)
		fmt.Fprintf(&b, "%s by %s, updated %s\n", d.URL, d.Author, d.Updated.Format("2006-01-02 15:04"))
		if body := strings.TrimSpace(d.Body); body != "" {
			fmt.Fprintf(&b, "\n%s\n", tview.Escape(body))
		}
	}

	if p := placeholder("mergeability", mergeability); p != "" {
		b.WriteString(p)
	} else {
		m := mergeability.Value
		color := "red"
		if m.CanMerge() {
			color = "green"
		}
		fmt.Fprintf(&b, "\n[%s]mergeable: %t[-]  approvals %d/%d  tests %d/%d\n",
			color, m.CanMerge(), m.Approvals, m.ApprovalsRequired, m.Tests, m.TestsRequired)
	}

	return b.String()
}

func renderComment(b *strings.Builder, c *pullrequest.Comment, border string) {
	fmt.Fprintf(b, "%s%s [yellow]%s[-] %s\n",
		border, horizontalBorder, c.Author, c.Created.Local().Format("2006-01-02 15:04"))
	for _, line := range strings.Split(strings.TrimSpace(c.Body), "\n") {
		fmt.Fprintf(b, "%s %s\n", verticalBorder, tview.Escape(line))
	}
}

func renderConversation(comments section[[]*pullrequest.Comment], threads section[[]*pullrequest.ReviewThread]) string {
	var b strings.Builder

	b.WriteString("[::b]Comments[::-]\n")
	if p := placeholder("comments", comments); p != "" {
		b.WriteString(p)
	} else {
		for _, c := range comments.Value {
			renderComment(&b, c, topLeftBorder)
			fmt.Fprintf(&b, "%s\n", bottomLeftBorder)
		}
	}

	b.WriteString("\n[::b]Review threads[::-]\n")
	if p := placeholder("review threads", threads); p != "" {
		b.WriteString(p)
		return b.String()
	}

	for _, t := range threads.Value {
		pos := fmt.Sprintf("%s:%d", t.Path, t.Line)
		if t.Outdated {
			pos = t.Path + " [gray](outdated)[-]"
		}
		fmt.Fprintf(&b, "%s\n", pos)
		for i, c := range t.Comments {
			border := topLeftSameLevelBorder
			if i == 0 {
				border = topLeftBorder
			}
			renderComment(&b, c, border)
		}
		fmt.Fprintf(&b, "%s\n", bottomLeftBorder)
	}

	return b.String()
}

type detailsPage struct {
	View         *tview.Flex
	header       *tview.TextView
	files        *tview.List
	conversation *tview.TextView

	tui       *Tui
	provider  *pullrequest.DataProvider
	release   func()
	listeners []func()
	watched   map[interface{}]bool
	lines     []fileTreeLine
	viewed    pullrequest.ViewedState
}

func newDetailsPage(t *Tui) *detailsPage {
	d := &detailsPage{
		tui:          t,
		header:       tview.NewTextView().SetDynamicColors(true).SetWrap(true),
		files:        tview.NewList().ShowSecondaryText(false),
		conversation: tview.NewTextView().SetDynamicColors(true).SetWrap(true),
	}

	d.files.SetBorder(true).SetTitle("Files")
	d.conversation.SetBorder(true).SetTitle("Conversation")

	help := tview.NewTextView().
		SetDynamicColors(true).
		SetText("[gray]r reload  v toggle viewed  c comment  m merge  tab switch  q back[-]")

	d.View = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 8, 0, false).
		AddItem(tview.NewFlex().
			AddItem(d.files, 0, 1, true).
			AddItem(d.conversation, 0, 2, false),
			0, 1, true).
		AddItem(help, 1, 0, false)

	d.View.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			t.closeDetails()
			return nil
		case tcell.KeyTab:
			if d.files.HasFocus() {
				t.app.SetFocus(d.conversation)
			} else {
				t.app.SetFocus(d.files)
			}
			return nil
		}

		switch event.Rune() {
		case 'q':
			t.closeDetails()
			return nil
		case 'r':
			d.Reload()
			return nil
		case 'v':
			d.ToggleViewed(d.files.GetCurrentItem())
			return nil
		case 'c':
			t.showModal(newAddCommentModal(t, d.provider))
			return nil
		case 'm':
			t.showModal(newMergeModal(t, d.provider))
			return nil
		}

		return event
	})

	return d
}

// Open shows p. The page holds p until Close, which calls release.
func (d *detailsPage) Open(p *pullrequest.DataProvider, release func()) {
	d.Close()

	d.provider = p
	d.release = release
	d.watched = map[interface{}]bool{}

	redraw := func() { d.tui.queue(d.draw) }
	d.listeners = []func(){
		p.Details.AddChangeListener(redraw),
		p.Mergeability.AddChangeListener(redraw),
		p.Changes.AddChangeListener(redraw),
		p.Comments.AddChangeListener(redraw),
		p.Reviews.AddChangeListener(redraw),
		p.Viewed.AddChangeListener(redraw),
	}

	d.draw()
}

func (d *detailsPage) Close() {
	for _, remove := range d.listeners {
		remove()
	}
	d.listeners = nil

	if d.release != nil {
		d.release()
	}
	d.provider = nil
	d.release = nil
}

// watch redraws once f completes. Each future is watched once.
func watch[T any](d *detailsPage, f *lazy.Future[T]) *lazy.Future[T] {
	if f.IsDone() || d.watched[f] {
		return f
	}

	d.watched[f] = true
	f.OnComplete(func(T, error) {
		d.tui.queue(d.draw)
	})

	return f
}

func (d *detailsPage) draw() {
	p := d.provider
	if p == nil {
		return
	}

	details := sectionOf(watch(d, p.Details.LoadDetails()))
	mergeability := sectionOf(watch(d, p.Mergeability.LoadMergeability()))
	changes := sectionOf(watch(d, p.Changes.LoadChanges()))
	comments := sectionOf(watch(d, p.Comments.LoadComments()))
	threads := sectionOf(watch(d, p.Reviews.LoadReviewThreads()))
	viewed := sectionOf(watch(d, p.Viewed.GetViewedState()))

	d.header.SetText(renderHeader(details, mergeability))
	d.conversation.SetText(renderConversation(comments, threads))

	current := d.files.GetCurrentItem()
	d.files.Clear()
	d.lines = nil
	if ph := placeholder("changes", changes); ph != "" {
		d.files.AddItem(ph, "", 0, nil)
		return
	}

	d.viewed = viewed.Value
	d.lines = fileTreeLines(FilesToTree(changes.Value.Files), d.viewed)
	for _, l := range d.lines {
		d.files.AddItem(tview.Escape(l.Text), "", 0, nil)
	}
	if current < len(d.lines) {
		d.files.SetCurrentItem(current)
	}
}

func (d *detailsPage) Reload() {
	if d.provider == nil {
		return
	}

	d.provider.Details.ReloadDetails()
	d.draw()
}

// ToggleViewed flips the viewed mark of the file on line i.
func (d *detailsPage) ToggleViewed(i int) {
	if d.provider == nil || i < 0 || i >= len(d.lines) || d.lines[i].File == nil {
		return
	}

	path := d.lines[i].File.Path
	d.provider.Viewed.UpdateViewedState(d.tui.ctx, path, !d.viewed[path]).
		OnComplete(func(_ struct{}, err error) {
			if err != nil {
				d.tui.queue(func() { d.tui.setStatus("marking %s failed: %s", path, err) })
			}
		})
}
