package tui

import (
	"context"
	"fmt"
	"sync"

	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/eventbus"
	"geepr/internal/pkg/lazy"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

var (
	SelectedColor tcell.Color = tcell.ColorYellow
	NormalColor               = tcell.ColorWhite
	ClosedColor               = tcell.ColorRed
	MergedColor               = tcell.ColorGreen
	DimColor                  = tcell.ColorGray
)

const (
	pageMain    = "main"
	pageDetails = "details"
	pageModal   = "modal"
)

type providerSource interface {
	Get(id pullrequest.EntityID) (*pullrequest.DataProvider, func())
}

type Tui struct {
	app     *tview.Application
	pages   *tview.Pages
	table   *pullRequestTable
	details *detailsPage
	search  *tview.InputField
	status  *tview.TextView

	ctx       context.Context
	list      *pullrequest.ListModel
	providers providerSource
	bus       *eventbus.EventBus
	// queue runs fn on the UI goroutine and redraws.
	queue func(fn func())
	run   lazy.Runner

	mu          sync.Mutex
	loading     bool
	unsubscribe []func()
}

func New(
	ctx context.Context,
	list *pullrequest.ListModel,
	providers providerSource,
	bus *eventbus.EventBus,
) *Tui {
	app := tview.NewApplication()
	t := &Tui{
		app:       app,
		ctx:       ctx,
		list:      list,
		providers: providers,
		bus:       bus,
		queue:     func(fn func()) { app.QueueUpdateDraw(fn) },
		run:       lazy.GoRunner,
	}

	t.table = newPullRequestTable()
	t.details = newDetailsPage(t)
	t.status = tview.NewTextView().SetDynamicColors(true)

	t.search = tview.NewInputField()
	t.search.
		SetPlaceholder("Filter pull requests").
		SetChangedFunc(func(text string) {
			t.table.Filter(text)
		}).
		SetBorder(true).
		SetTitle("Filter")

	t.search.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			if t.search.GetText() != "" {
				t.search.SetText("")
			} else {
				app.SetFocus(t.table.View)
			}
		case tcell.KeyEnter:
			app.SetFocus(t.table.View)
		}

		return event
	})

	t.table.View.SetSelectionChangedFunc(func(row, _ int) {
		if t.table.IsLastRow(row) && t.list.HasNext() {
			t.loadMore()
		}
	})

	t.table.View.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter:
			if pr := t.table.SelectedPullRequest(); pr != nil {
				t.openDetails(pr.ID)
			}
			return nil
		}

		switch event.Rune() {
		case 'q':
			app.Stop()
			return nil
		case '/':
			app.SetFocus(t.search)
			return nil
		case 'R':
			t.refresh()
			return nil
		}

		return event
	})

	grid := tview.NewGrid().
		SetRows(0, 3, 1).
		SetBorders(false).
		AddItem(t.table.View, 0, 0, 1, 1, 0, 0, true).
		AddItem(t.search, 1, 0, 1, 1, 0, 0, false).
		AddItem(t.status, 2, 0, 1, 1, 0, 0, false)

	t.pages = tview.NewPages().
		AddPage(pageMain, grid, true, true).
		AddPage(pageDetails, t.details.View, true, false)

	t.pages.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'h':
			return tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone)
		case 'l':
			return tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)
		}
		return event
	})

	return t
}

// Run shows the pull request list and blocks until the user quits.
func (t *Tui) Run() error {
	t.subscribe()
	defer t.unsubscribeAll()
	defer t.details.Close()

	t.loadMore()

	return t.app.SetRoot(t.pages, true).EnableMouse(true).SetFocus(t.table.View).Run()
}

func (t *Tui) setStatus(format string, args ...interface{}) {
	t.status.SetText(tview.Escape(fmt.Sprintf(format, args...)))
}

// loadMore fetches the next page unless one is already on its way.
func (t *Tui) loadMore() {
	t.mu.Lock()
	if t.loading {
		t.mu.Unlock()
		return
	}
	t.loading = true
	t.mu.Unlock()

	t.table.SetLoading(true)
	t.run(func() {
		_, err := t.list.LoadMore(t.ctx)
		t.queue(func() {
			t.mu.Lock()
			t.loading = false
			t.mu.Unlock()

			if err != nil {
				log.Debug().Err(err).Msg("loading pull requests failed")
				t.setStatus("loading pull requests failed: %s", err)
			}
			t.table.SetItems(t.list.Items(), t.list.HasNext())
		})
	})
}

// refresh reloads the list, only asking for changes once every page
// is loaded.
func (t *Tui) refresh() {
	t.setStatus("refreshing...")
	t.run(func() {
		n, err := t.list.Refresh(t.ctx)
		t.queue(func() {
			if err != nil {
				t.setStatus("refresh failed: %s", err)
			} else {
				t.setStatus("%d pull request(s) updated", n)
			}
			t.table.SetItems(t.list.Items(), t.list.HasNext())
		})
	})
}

func (t *Tui) openDetails(id pullrequest.EntityID) {
	p, release := t.providers.Get(id)
	t.details.Open(p, release)
	t.pages.SwitchToPage(pageDetails)
	t.app.SetFocus(t.details.files)
}

func (t *Tui) closeDetails() {
	t.details.Close()
	t.pages.SwitchToPage(pageMain)
	t.app.SetFocus(t.table.View)
}

func (t *Tui) showModal(p tview.Primitive) {
	t.pages.AddPage(pageModal, p, true, true)
	t.app.SetFocus(p)
}

func (t *Tui) closeModal() {
	t.pages.RemovePage(pageModal)
	t.app.SetFocus(t.details.files)
}
