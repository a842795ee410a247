package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pixfeed-cli/internal/feed"
	"github.com/glabrego/pixfeed-cli/internal/log"
	"github.com/glabrego/pixfeed-cli/internal/media"
	tuiactions "github.com/glabrego/pixfeed-cli/internal/tui/actions"
	"github.com/glabrego/pixfeed-cli/internal/tui/platform"
	tuistate "github.com/glabrego/pixfeed-cli/internal/tui/state"
	tuitheme "github.com/glabrego/pixfeed-cli/internal/tui/theme"
	"github.com/glabrego/pixfeed-cli/internal/tui/view"
)

const statusTTL = 4 * time.Second

// Options wires the model to its collaborators.
type Options struct {
	Title       string
	Feed        feed.Config
	CellHeight  int
	CellPadding int
	Images      feed.ImageLoader
	Videos      feed.VideoOpener
	// Tracker is optional; without it clicks are not reported.
	Tracker  tuiactions.Tracker
	RegionID int
	DeviceID string
}

type Model struct {
	service  tuiactions.Service
	grid     *feed.Grid
	delegate *hostDelegate
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	theme    tuitheme.Theme

	title    string
	column   int
	width    int
	height   int
	started  bool
	loading  bool
	showHelp bool
	status   string
	statusID int
	err      error

	copyURLFn func(string) error
}

func NewModel(service tuiactions.Service, opts Options) Model {
	d := &hostDelegate{
		cellHeight:  float64(opts.CellHeight),
		cellPadding: float64(opts.CellPadding),
		tracker:     opts.Tracker,
		regionID:    opts.RegionID,
		deviceID:    opts.DeviceID,
		openURLFn:   platform.OpenURLInBrowser,
		copyURLFn:   platform.CopyURLToClipboard,
	}
	if d.cellHeight <= 0 {
		d.cellHeight = feed.DefaultCellHeight
	}

	grid := feed.NewGrid(opts.Feed, opts.Images, opts.Videos)
	grid.SetDelegate(d)
	grid.OnLive(func(position int, item media.Item) {
		log.Infof("position %d live: %s", position, item.ID())
	})

	title := opts.Title
	if title == "" {
		title = "Pixfeed"
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		service:   service,
		grid:      grid,
		delegate:  d,
		keys:      newKeyMap(),
		help:      help.New(),
		spinner:   sp,
		theme:     tuitheme.Default(),
		title:     title,
		loading:   service != nil,
		copyURLFn: platform.CopyURLToClipboard,
	}
}

func (m Model) Grid() *feed.Grid { return m.grid }

func (m Model) Init() tea.Cmd {
	if m.service == nil {
		return nil
	}
	return tea.Batch(tuiactions.LoadCmd(m.service, "init"), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.resizeGrid()
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tuiactions.LoadSuccessMsg:
		m.loading = false
		m.err = nil
		m.column = 0
		log.Infof("loaded %d items in %s (%s)", len(msg.Items), msg.Duration, msg.Source)
		cmds := []tea.Cmd{m.grid.SetItems(msg.Items)}
		if !m.started {
			m.started = true
			cmds = append(cmds, m.grid.Init())
		}
		status := fmt.Sprintf("Loaded %d items in %dms", len(msg.Items), msg.Duration.Milliseconds())
		if msg.Source != "init" {
			status = fmt.Sprintf("Reloaded %d items", len(msg.Items))
		}
		cmds = append(cmds, m.setStatus(status))
		return m, tea.Batch(cmds...)
	case tuiactions.LoadErrorMsg:
		m.loading = false
		m.err = msg.Err
		log.Errorf("load album (%s): %v", msg.Source, msg.Err)
		return m, nil
	case tuiactions.TrackSuccessMsg:
		log.Debugf("tracked %s", msg.Event)
		return m, nil
	case tuiactions.TrackErrorMsg:
		log.Warnf("track event: %v", msg.Err)
		m.err = msg.Err
		return m, nil
	case tuiactions.OpenURLSuccessMsg:
		m.err = nil
		return m, m.setStatus(msg.Status)
	case tuiactions.OpenURLErrorMsg:
		m.err = msg.Err
		return m, nil
	case noticeMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.setStatus(msg.text)
	case tuiactions.ClearStatusMsg:
		if msg.ID == m.statusID {
			m.status = ""
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, m.grid.Update(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	layout := m.grid.Layout()
	pitch := layout.Cell.Height + layout.Gap

	switch {
	case key.Matches(msg, m.keys.quit):
		m.grid.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.showHelp):
		m.showHelp = !m.showHelp
		return m, m.resizeGrid()
	case key.Matches(msg, m.keys.up):
		return m, m.grid.ScrollBy(-tuistate.LineStep(pitch))
	case key.Matches(msg, m.keys.down):
		return m, m.grid.ScrollBy(tuistate.LineStep(pitch))
	case key.Matches(msg, m.keys.pageUp):
		return m, m.grid.ScrollBy(-tuistate.PageStep(layout.Viewport.Height, pitch))
	case key.Matches(msg, m.keys.pageDown):
		return m, m.grid.ScrollBy(tuistate.PageStep(layout.Viewport.Height, pitch))
	case key.Matches(msg, m.keys.top):
		return m, m.grid.ScrollTo(0)
	case key.Matches(msg, m.keys.bottom):
		return m, m.grid.ScrollTo(layout.MaxOffset(m.grid.Len()))
	case key.Matches(msg, m.keys.left):
		m.column = 0
		return m, nil
	case key.Matches(msg, m.keys.right):
		m.column = 1
		return m, nil
	case key.Matches(msg, m.keys.click):
		if pos, ok := m.selectedPosition(); ok && m.grid.Click(pos) {
			return m, m.delegate.take()
		}
		return m, nil
	case key.Matches(msg, m.keys.openLink):
		if pos, ok := m.selectedPosition(); ok && m.grid.ButtonClick(pos) {
			return m, m.delegate.take()
		}
		return m, nil
	case key.Matches(msg, m.keys.copyLink):
		return m.copySelectedLink()
	case key.Matches(msg, m.keys.play):
		if pos, ok := m.selectedPosition(); ok {
			return m, m.grid.Play(pos)
		}
		return m, nil
	case key.Matches(msg, m.keys.stop):
		if pos, ok := m.selectedPosition(); ok {
			m.grid.Stop(pos)
		}
		return m, nil
	case key.Matches(msg, m.keys.mute):
		m.grid.SetMuted(!m.grid.Muted())
		if m.grid.Muted() {
			return m, m.setStatus("Muted")
		}
		return m, m.setStatus("Sound on")
	case key.Matches(msg, m.keys.pause):
		if m.grid.Paused() {
			return m, tea.Batch(m.grid.ResumeAll(), m.setStatus("Autoplay resumed"))
		}
		m.grid.PauseAll()
		return m, m.setStatus("Autoplay paused")
	case key.Matches(msg, m.keys.reload):
		if m.service == nil || m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, tea.Batch(tuiactions.LoadCmd(m.service, "manual"), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) copySelectedLink() (tea.Model, tea.Cmd) {
	pos, ok := m.selectedPosition()
	if !ok {
		return m, nil
	}
	cell, ok := m.grid.CellAt(pos)
	if !ok {
		return m, nil
	}
	link, err := platform.ItemLink(cell.Item())
	if err != nil {
		return m.Update(linkNotice(cell.Item(), err))
	}
	return m, tuiactions.CopyURLCmd(link, m.copyURLFn)
}

// selectedPosition is the focused cell in the chosen column, falling back
// to the other focused cell when that column has none.
func (m Model) selectedPosition() (int, bool) {
	focus := m.grid.Focus()
	primary, secondary := focus.Left, focus.Right
	if tuistate.ClampCursor(m.column, 2) == 1 {
		primary, secondary = secondary, primary
	}
	if pos, ok := primary.Get(); ok {
		return pos, true
	}
	return secondary.Get()
}

func (m *Model) resizeGrid() tea.Cmd {
	height := tuistate.GridHeight(m.height, m.showHelp)
	return m.grid.Resize(float64(m.width), float64(height))
}

func (m *Model) setStatus(status string) tea.Cmd {
	m.statusID++
	m.status = status
	return tuiactions.ClearStatusCmd(m.statusID, statusTTL)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(view.Header(m.title, m.grid.Paused(), m.theme))
	b.WriteString("\n")
	b.WriteString(m.body())
	b.WriteString("\n")
	b.WriteString(m.messagePanel())
	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

func (m Model) body() string {
	height := tuistate.GridHeight(m.height, m.showHelp)
	switch {
	case m.loading && m.grid.Len() == 0:
		return padLines(m.spinner.View()+" Loading album...", height)
	case m.grid.Len() == 0:
		return padLines("No items available.", height)
	}
	selected := -1
	if pos, ok := m.selectedPosition(); ok {
		selected = pos
	}
	return view.RenderGrid(view.GridRenderInput{
		Layout:   m.grid.Layout(),
		Offset:   m.grid.Offset(),
		Cells:    m.grid.VisibleCells(),
		Selected: selected,
	}, m.theme)
}

func (m Model) messagePanel() string {
	warning := ""
	if m.err != nil {
		warning = m.err.Error()
	}
	return view.Message(m.loading, m.err != nil, m.status, warning, m.spinner.View(), m.theme)
}

func (m Model) footer() string {
	playing := 0
	for _, cell := range m.grid.VisibleCells() {
		switch cell.Slot().State() {
		case feed.VideoPreparing, feed.VideoPlaying, feed.VideoPlayingCrossfaded:
			playing++
		}
	}
	seq := m.grid.Sequence()
	return view.Footer(view.FooterParams{
		Shown:   seq.Len(),
		Base:    seq.BaseLen(),
		Passes:  seq.Passes(),
		Focus:   m.grid.Focus().String(),
		Playing: playing,
		Muted:   m.grid.Muted(),
	}, m.theme)
}

func padLines(line string, height int) string {
	if height <= 1 {
		return line
	}
	return line + strings.Repeat("\n", height-1)
}
