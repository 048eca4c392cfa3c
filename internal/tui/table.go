package tui

import (
	"fmt"
	"strings"

	"geepr/internal/domain/pullrequest"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	TableHeaderId    = "ID"
	TableHeaderTitle = "TITLE"
)

var headers = []string{
	TableHeaderId, TableHeaderTitle, "SOURCE", "DESTINATION", "STATUS", "AUTHOR",
}

type pullRequestTableRow struct {
	pullRequest *pullrequest.Details
	visible     bool
	tableRowId  int
}

type pullRequestTable struct {
	View    *tview.Table
	rows    []*pullRequestTableRow
	filter  string
	hasNext bool
	loading bool
}

func pad(input string) string {
	return fmt.Sprintf(" %s", input)
}

func newPullRequestTable() *pullRequestTable {
	table := tview.NewTable()
	table.
		SetBorders(false).
		Select(1, 0).
		SetFixed(1, 1).
		SetSelectable(true, false)

	prt := &pullRequestTable{View: table}
	prt.redraw()

	return prt
}

// SetItems replaces the rows, keeping the current filter.
func (prt *pullRequestTable) SetItems(prs []*pullrequest.Details, hasNext bool) {
	prt.rows = make([]*pullRequestTableRow, 0, len(prs))
	for _, pr := range prs {
		prt.rows = append(prt.rows, &pullRequestTableRow{
			pullRequest: pr,
			visible:     matches(pr, prt.filter),
		})
	}
	prt.hasNext = hasNext
	prt.loading = false

	prt.redraw()
}

func (prt *pullRequestTable) SetLoading(loading bool) {
	prt.loading = loading
	prt.redraw()
}

func (prt *pullRequestTable) redraw() {
	prt.View.Clear()

	headerStyle := tcell.StyleDefault.Bold(true)
	for i := 0; i < len(headers); i++ {
		prt.View.SetCell(
			0,
			i,
			tview.NewTableCell(pad(headers[i])).
				SetSelectable(false).
				SetStyle(headerStyle),
		)
	}

	offset := 1
	for _, v := range prt.rows {
		v.tableRowId = -1
		if !v.visible {
			continue
		}

		v.tableRowId = offset
		prt.addRow(v.pullRequest, offset)
		switch v.pullRequest.State {
		case pullrequest.StateClosed:
			prt.colorRow(offset, ClosedColor)
		case pullrequest.StateMerged:
			prt.colorRow(offset, MergedColor)
		default:
			if v.pullRequest.Draft {
				prt.colorRow(offset, DimColor)
			} else {
				prt.colorRow(offset, NormalColor)
			}
		}
		offset++
	}

	footer := ""
	switch {
	case prt.loading:
		footer = "Loading..."
	case prt.hasNext:
		footer = "More..."
	case offset == 1:
		footer = "No pull requests"
	}
	if footer != "" {
		prt.View.SetCell(offset, 1, tview.NewTableCell(pad(footer)).
			SetSelectable(prt.hasNext).
			SetTextColor(DimColor))
	}
}

func (prt *pullRequestTable) addRow(v *pullrequest.Details, rowId int) {
	state := string(v.State)
	if v.Draft {
		state += " (draft)"
	}

	values := []string{
		string(v.ID),
		tview.Escape(v.Title),
		v.Source.Name,
		v.Destination.Name,
		state,
		v.Author,
	}

	for i := 0; i < len(values); i++ {
		prt.View.SetCell(
			rowId,
			i,
			tview.NewTableCell(pad(values[i])),
		)
	}
}

func (prt *pullRequestTable) colorRow(rowId int, color tcell.Color) {
	for i := 0; i < prt.View.GetColumnCount(); i++ {
		prt.View.GetCell(rowId, i).SetTextColor(color)
	}
}

func (prt *pullRequestTable) GetPullRequest(rowId int) *pullrequest.Details {
	for _, v := range prt.rows {
		if v.tableRowId == rowId {
			return v.pullRequest
		}
	}

	return nil
}

func (prt *pullRequestTable) SelectedPullRequest() *pullrequest.Details {
	row, _ := prt.View.GetSelection()
	return prt.GetPullRequest(row)
}

// IsLastRow reports whether rowId is the footer or the last visible
// pull request.
func (prt *pullRequestTable) IsLastRow(rowId int) bool {
	return rowId >= prt.View.GetRowCount()-2
}

func matches(pr *pullrequest.Details, filter string) bool {
	return strings.Contains(
		strings.ToLower(pr.Title),
		strings.ToLower(filter),
	)
}

func (prt *pullRequestTable) Filter(input string) {
	prt.filter = input
	for _, v := range prt.rows {
		v.visible = matches(v.pullRequest, input)
	}

	prt.redraw()
}
