package feed

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pixfeed-cli/internal/log"
)

// CellLocator resolves a position to its on-screen cell.
type CellLocator interface {
	CellAt(position int) (*Cell, bool)
}

// Coordinator turns focus changes into highlight/dim and play/stop calls.
type Coordinator struct {
	cells CellLocator
	prev  FocusSet
}

func NewCoordinator(cells CellLocator) *Coordinator {
	return &Coordinator{cells: cells}
}

func (c *Coordinator) Previous() FocusSet {
	return c.prev
}

// Reset forgets the previous focus, so the next Apply treats every member
// as new. Call it after the cells under the old positions were recycled.
func (c *Coordinator) Reset() {
	c.prev = FocusSet{}
}

func (c *Coordinator) Apply(next FocusSet) tea.Cmd {
	if next.Equal(c.prev) {
		return nil
	}

	for _, pos := range c.prev.Leaving(next) {
		if cell, ok := c.cells.CellAt(pos); ok {
			cell.Dim()
			cell.Stop()
		}
	}

	cmds := make([]tea.Cmd, 0, 2)
	for _, pos := range next.Positions() {
		cell, ok := c.cells.CellAt(pos)
		if !ok {
			continue
		}
		cell.Highlight()
		cmds = append(cmds, cell.Play())
	}

	log.Debugf("focus %s -> %s", c.prev, next)
	c.prev = next
	return tea.Batch(cmds...)
}
