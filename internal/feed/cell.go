package feed

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pixfeed-cli/internal/media"
)

// Cell is a reusable visual slot. The grid keeps a pool of them and binds
// one to each visible position.
type Cell struct {
	id       int
	slot     *Slot
	position int
	item     media.Item
	size     Size
	alpha    float64
	focused  bool

	focusedAlpha float64
	dormantAlpha float64
}

func newCell(id int, slot *Slot, cfg Config) *Cell {
	return &Cell{
		id:           id,
		slot:         slot,
		position:     -1,
		alpha:        cfg.DormantAlpha,
		focusedAlpha: cfg.FocusedAlpha,
		dormantAlpha: cfg.DormantAlpha,
	}
}

func (c *Cell) ID() int           { return c.id }
func (c *Cell) Slot() *Slot       { return c.slot }
func (c *Cell) Position() int     { return c.position }
func (c *Cell) Item() media.Item  { return c.item }
func (c *Cell) Size() Size        { return c.size }
func (c *Cell) Alpha() float64    { return c.alpha }
func (c *Cell) Highlighted() bool { return c.focused }

// Bind attaches the cell to position. A cell that was already bound has
// its previous playback stopped first.
func (c *Cell) Bind(position int, item media.Item, size Size) tea.Cmd {
	if c.position >= 0 || c.slot.Bound() {
		c.slot.Stop()
		c.slot.Unbind()
	}
	c.position = position
	c.item = item
	c.size = size
	return c.slot.Bind(item, int(size.Width), int(size.Height))
}

func (c *Cell) Highlight() {
	c.focused = true
	c.alpha = c.focusedAlpha
}

func (c *Cell) Dim() {
	c.focused = false
	c.alpha = c.dormantAlpha
}

func (c *Cell) Play() tea.Cmd {
	return c.slot.Start()
}

func (c *Cell) Stop() {
	c.slot.Stop()
}

func (c *Cell) SetMuted(muted bool) {
	c.slot.SetMuted(muted)
}

// PrepareForReuse returns the cell to its pooled state.
func (c *Cell) PrepareForReuse() {
	c.Dim()
	c.slot.Stop()
	c.slot.Unbind()
	c.position = -1
	c.item = media.Item{}
}
