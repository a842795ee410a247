package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pixfeed-cli/internal/analytics"
	"github.com/glabrego/pixfeed-cli/internal/feed"
	"github.com/glabrego/pixfeed-cli/internal/log"
	"github.com/glabrego/pixfeed-cli/internal/media"
	tuiactions "github.com/glabrego/pixfeed-cli/internal/tui/actions"
	"github.com/glabrego/pixfeed-cli/internal/tui/platform"
)

type noticeMsg struct {
	text string
	err  error
}

// hostDelegate answers the grid's layout queries from config and turns its
// click callbacks into commands for the model to run.
type hostDelegate struct {
	cellHeight  float64
	cellPadding float64

	tracker  tuiactions.Tracker
	regionID int
	deviceID string

	openURLFn func(string) error
	copyURLFn func(string) error

	pending []tea.Cmd
}

var _ feed.Delegate = (*hostDelegate)(nil)

func (d *hostDelegate) CellHeight() float64  { return d.cellHeight }
func (d *hostDelegate) CellPadding() float64 { return d.cellPadding }

func (d *hostDelegate) SetupCell(cell *feed.Cell, item media.Item) {
	log.Debugf("cell %d bound to position %d (%s)", cell.ID(), cell.Position(), item.ID())
}

func (d *hostDelegate) OnPhotoClicked(item media.Item) {
	d.push(notice("Opened " + itemLabel(item)))
	if d.tracker == nil {
		return
	}
	d.push(tuiactions.TrackCmd(d.tracker, analytics.OpenedLightbox{
		Item:     item,
		RegionID: d.regionID,
		UID:      d.deviceID,
	}))
}

func (d *hostDelegate) OnPhotoButtonClicked(item media.Item) {
	link, err := platform.ItemLink(item)
	if err != nil {
		msg := linkNotice(item, err)
		d.push(func() tea.Msg { return msg })
		return
	}
	d.push(tuiactions.OpenURLCmd(link, d.openURLFn, d.copyURLFn))
}

func (d *hostDelegate) push(cmd tea.Cmd) {
	d.pending = append(d.pending, cmd)
}

// take returns and clears the queued commands.
func (d *hostDelegate) take() tea.Cmd {
	cmds := d.pending
	d.pending = nil
	return tea.Batch(cmds...)
}

func notice(text string) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: text} }
}

// linkNotice reports a missing link as plain status and anything else as a
// warning.
func linkNotice(item media.Item, err error) noticeMsg {
	if errors.Is(err, platform.ErrNoLink) {
		return noticeMsg{text: itemLabel(item) + " has no link"}
	}
	return noticeMsg{err: err}
}

func itemLabel(item media.Item) string {
	if item.Title() != "" {
		return item.Title()
	}
	return "item " + item.ID()
}
