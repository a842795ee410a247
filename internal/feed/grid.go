package feed

import (
	"math"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/glabrego/pixfeed-cli/internal/log"
	"github.com/glabrego/pixfeed-cli/internal/media"
)

// Grid is the two-column feed: it owns the displayed sequence, the cell
// pool, the scroll offset, and the focus coordinator. It is driven from a
// Bubble Tea update loop; every tea.Cmd it returns must be handed back to
// the runtime and every resulting message passed to Update.
type Grid struct {
	cfg      Config
	delegate Delegate
	images   ImageLoader
	videos   VideoOpener

	seq     *Sequence
	tracker Tracker
	coord   *Coordinator
	layout  Layout
	offset  float64

	visible map[int]*Cell
	cells   map[int]*Cell
	pool    []*Cell
	nextID  int

	muted   bool
	paused  bool
	started bool
	onLive  func(position int, item media.Item)
}

func NewGrid(cfg Config, images ImageLoader, videos VideoOpener) *Grid {
	g := &Grid{
		cfg:      cfg,
		delegate: NopDelegate{},
		images:   images,
		videos:   videos,
		seq:      NewSequence(cfg.Growth),
		visible:  make(map[int]*Cell),
		cells:    make(map[int]*Cell),
		muted:    cfg.StartMuted,
	}
	g.coord = NewCoordinator(g)
	return g
}

// Init schedules the first focus decision.
func (g *Grid) Init() tea.Cmd {
	if g.cfg.AutoplayDelay <= 0 {
		return func() tea.Msg { return autoplayMsg{grid: g} }
	}
	return tea.Tick(g.cfg.AutoplayDelay, func(time.Time) tea.Msg {
		return autoplayMsg{grid: g}
	})
}

// SetDelegate swaps the host hooks. Cell geometry comes from the delegate,
// so the layout is recomputed.
func (g *Grid) SetDelegate(d Delegate) tea.Cmd {
	if d == nil {
		d = NopDelegate{}
	}
	g.delegate = d
	return g.relayout(g.layout.Viewport)
}

func (g *Grid) Delegate() Delegate { return g.delegate }

// OnLive registers fn to run when a cell's video replaces its placeholder.
func (g *Grid) OnLive(fn func(position int, item media.Item)) {
	g.onLive = fn
}

func (g *Grid) SetItems(items []media.Item) tea.Cmd {
	g.seq.Reset(items)
	log.Debugf("feed reset with %d items", len(items))
	return g.reload(true)
}

func (g *Grid) Len() int                  { return g.seq.Len() }
func (g *Grid) Items() []media.Item       { return g.seq.Items() }
func (g *Grid) Sequence() *Sequence       { return g.seq }
func (g *Grid) Layout() Layout            { return g.layout }
func (g *Grid) Offset() float64           { return g.offset }
func (g *Grid) Focus() FocusSet           { return g.coord.Previous() }
func (g *Grid) Muted() bool               { return g.muted }
func (g *Grid) Paused() bool              { return g.paused }
func (g *Grid) Coordinator() *Coordinator { return g.coord }

// Resize lays the grid out for a new viewport. A viewport that would give
// cells a non-positive size is ignored and the previous layout kept.
func (g *Grid) Resize(width, height float64) tea.Cmd {
	return g.relayout(Size{Width: width, Height: height})
}

func (g *Grid) relayout(viewport Size) tea.Cmd {
	gap := math.Max(0, g.delegate.CellPadding())
	cell, ok := CellSize(viewport.Width, gap, g.delegate.CellHeight())
	if !ok || viewport.Height <= 0 {
		log.Debugf("skip layout for viewport %.0fx%.0f", viewport.Width, viewport.Height)
		return nil
	}

	resized := cell != g.layout.Cell || gap != g.layout.Gap
	g.layout.Viewport = viewport
	g.layout.Cell = cell
	g.layout.Gap = gap
	// Rendered placeholders depend on the cell size.
	return g.reload(resized)
}

// reload syncs the bound cells with the visible range and refocuses. A full
// reload recycles every cell first.
func (g *Grid) reload(full bool) tea.Cmd {
	if full {
		for pos := range g.visible {
			g.recycle(pos)
		}
		g.coord.Reset()
	}
	cmds := g.syncVisible()
	cmds = append(cmds, g.refocus())
	return tea.Batch(cmds...)
}

func (g *Grid) syncVisible() []tea.Cmd {
	var cmds []tea.Cmd
	for {
		g.offset = clampOffset(g.offset, g.layout.MaxOffset(g.seq.Len()))
		first, last, ok := g.layout.VisibleRange(g.offset, g.seq.Len())

		for pos := range g.visible {
			if !ok || pos < first || pos > last {
				g.recycle(pos)
			}
		}
		if !ok {
			return cmds
		}

		for pos := first; pos <= last; pos++ {
			if _, bound := g.visible[pos]; bound {
				continue
			}
			item, _ := g.seq.At(pos)
			cell := g.dequeue()
			cmds = append(cmds, cell.Bind(pos, item, g.layout.Cell))
			g.visible[pos] = cell
			g.delegate.SetupCell(cell, item)
		}

		reached := last + 2*g.cfg.PrefetchRows
		if reached > g.seq.Len()-1 {
			reached = g.seq.Len() - 1
		}
		if !g.extendIfReached(reached) {
			return cmds
		}
	}
}

// PrefetchCheck repeats the base items once more when reached is the last
// displayed position, then reloads incrementally.
func (g *Grid) PrefetchCheck(reached int) tea.Cmd {
	if !g.extendIfReached(reached) {
		return nil
	}
	return g.reload(false)
}

func (g *Grid) extendIfReached(reached int) bool {
	n := g.seq.Len()
	if n == 0 || reached != n-1 {
		return false
	}
	if !g.seq.Extend() {
		return false
	}
	log.Debugf("feed extended to %d items (pass %d)", g.seq.Len(), g.seq.Passes())
	return true
}

func (g *Grid) ScrollTo(offset float64) tea.Cmd {
	g.offset = clampOffset(offset, g.layout.MaxOffset(g.seq.Len()))
	return g.reload(false)
}

func (g *Grid) ScrollBy(delta float64) tea.Cmd {
	return g.ScrollTo(g.offset + delta)
}

// EndScroll marks the end of a drag or deceleration.
func (g *Grid) EndScroll() tea.Cmd {
	return g.refocus()
}

func (g *Grid) refocus() tea.Cmd {
	if !g.started || g.paused {
		return nil
	}
	return g.coord.Apply(g.tracker.Focus(g.layout, g.offset, g.seq.Len()))
}

func (g *Grid) CellAt(position int) (*Cell, bool) {
	cell, ok := g.visible[position]
	return cell, ok
}

// VisibleCells returns the bound cells ordered by position.
func (g *Grid) VisibleCells() []*Cell {
	cells := lo.Values(g.visible)
	sort.Slice(cells, func(i, j int) bool { return cells[i].position < cells[j].position })
	return cells
}

// PauseAll stops every playing cell and suspends autoplay until ResumeAll.
func (g *Grid) PauseAll() {
	g.paused = true
	for _, cell := range g.visible {
		cell.Dim()
		cell.Stop()
	}
	g.coord.Reset()
}

func (g *Grid) ResumeAll() tea.Cmd {
	g.paused = false
	return g.refocus()
}

func (g *Grid) SetMuted(muted bool) {
	g.muted = muted
	for _, cell := range g.cells {
		cell.SetMuted(muted)
	}
}

// Play makes position the only playing cell regardless of focus. The next
// focus change that leaves it stops it again.
func (g *Grid) Play(position int) tea.Cmd {
	if _, ok := g.visible[position]; !ok {
		return nil
	}
	g.coord.Apply(FocusSet{})
	return g.coord.Apply(FocusSet{Left: mo.Some(position)})
}

func (g *Grid) Stop(position int) {
	if cell, ok := g.visible[position]; ok {
		cell.Dim()
		cell.Stop()
	}
}

func (g *Grid) Click(position int) bool {
	cell, ok := g.visible[position]
	if !ok {
		return false
	}
	g.delegate.OnPhotoClicked(cell.Item())
	return true
}

func (g *Grid) ButtonClick(position int) bool {
	cell, ok := g.visible[position]
	if !ok {
		return false
	}
	g.delegate.OnPhotoButtonClicked(cell.Item())
	return true
}

// Close releases every cell and its video session.
func (g *Grid) Close() {
	for pos := range g.visible {
		g.recycle(pos)
	}
	g.coord.Reset()
}

func (g *Grid) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case autoplayMsg:
		if msg.grid != g {
			return nil
		}
		g.started = true
		return g.refocus()
	case placeholderLoadedMsg:
		return g.route(msg.token, msg)
	case videoOpenedMsg:
		if _, ok := g.cells[msg.cell]; !ok && msg.session != nil {
			_ = msg.session.Close()
			return nil
		}
		return g.route(msg.token, msg)
	case videoStatusMsg:
		return g.route(msg.token, msg)
	case fadeFrameMsg:
		return g.route(msg.token, msg)
	}
	return nil
}

func (g *Grid) route(t token, msg tea.Msg) tea.Cmd {
	cell, ok := g.cells[t.cell]
	if !ok {
		return nil
	}
	return cell.slot.update(msg)
}

func (g *Grid) dequeue() *Cell {
	if n := len(g.pool); n > 0 {
		cell := g.pool[n-1]
		g.pool = g.pool[:n-1]
		return cell
	}
	id := g.nextID
	g.nextID++
	slot := newSlot(id, g.cfg, g.images, g.videos)
	slot.muted = g.muted
	cell := newCell(id, slot, g.cfg)
	slot.onLive = func() {
		if g.onLive != nil {
			g.onLive(cell.position, cell.item)
		}
	}
	g.cells[id] = cell
	return cell
}

func (g *Grid) recycle(position int) {
	cell, ok := g.visible[position]
	if !ok {
		return
	}
	cell.PrepareForReuse()
	delete(g.visible, position)
	g.pool = append(g.pool, cell)
}

func clampOffset(offset, limit float64) float64 {
	return math.Max(0, math.Min(offset, limit))
}
