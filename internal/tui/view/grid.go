package view

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"

	"github.com/glabrego/pixfeed-cli/internal/feed"
	tuitheme "github.com/glabrego/pixfeed-cli/internal/tui/theme"
)

const (
	liveLabel    = "● LIVE"
	loadingLabel = "loading…"
	missingLabel = "no preview"
)

type GridRenderInput struct {
	Layout   feed.Layout
	Offset   float64
	Cells    []*feed.Cell
	Selected int
}

// RenderGrid draws the cells that overlap the viewport, clipped to the
// scroll offset, as exactly Viewport.Height lines.
func RenderGrid(in GridRenderInput, th tuitheme.Theme) string {
	if !in.Layout.Valid() || in.Layout.Viewport.Height < 1 {
		return ""
	}
	height := int(in.Layout.Viewport.Height)
	cellW := int(in.Layout.Cell.Width)
	cellH := int(in.Layout.Cell.Height)
	gap := int(in.Layout.Gap)
	pitch := cellH + gap
	if cellW < 1 || cellH < 1 {
		return ""
	}

	blocks := make(map[int][]string, len(in.Cells))
	for _, cell := range in.Cells {
		blocks[cell.Position()] = RenderCell(cell, cellW, cellH, cell.Position() == in.Selected, th)
	}
	blank := strings.Repeat(" ", cellW)

	offset := int(math.Floor(in.Offset))
	lines := make([]string, 0, height)
	for y := 0; y < height; y++ {
		contentY := offset + y
		row, within := contentY/pitch, contentY%pitch
		if within >= cellH {
			lines = append(lines, "")
			continue
		}
		left, right := blank, blank
		if block, ok := blocks[row*2]; ok {
			left = block[within]
		}
		if block, ok := blocks[row*2+1]; ok {
			right = block[within]
		}
		lines = append(lines, strings.TrimRight(left+strings.Repeat(" ", gap)+right, " "))
	}
	return strings.Join(lines, "\n")
}

// RenderCell returns height lines of exactly width columns: the placeholder
// body followed by a caption row.
func RenderCell(cell *feed.Cell, width, height int, selected bool, th tuitheme.Theme) []string {
	slot := cell.Slot()
	bodyH := height - 1
	lines := make([]string, 0, height)

	if bodyH > 0 {
		body := placeholderLines(slot, width, bodyH, th)
		lines = append(lines, body...)
	}

	caption := captionMarker(cell, th) + strings.TrimSpace(cell.Item().Title())
	caption = th.StyleCaption(cell.Alpha(), fit(caption, width))
	lines = append(lines, th.RenderSelected(selected, caption))
	return lines
}

func placeholderLines(slot *feed.Slot, width, height int, th tuitheme.Theme) []string {
	switch {
	case slot.State() == feed.Idle || slot.State() == feed.LoadingPlaceholder:
		return centered(th.MetaLabel.Render(loadingLabel), width, height)
	case strings.TrimSpace(slot.Placeholder()) == "":
		return centered(th.MetaLabel.Render(missingLabel), width, height)
	}
	source := strings.Split(slot.Placeholder(), "\n")

	alpha := slot.PlaceholderAlpha()
	out := make([]string, 0, height)
	for i := 0; i < height; i++ {
		line := ""
		if i < len(source) {
			line = source[i]
		}
		out = append(out, fit(th.StylePlaceholder(alpha, line), width))
	}
	if alpha <= 0 {
		out[height/2] = center(th.LiveMarker.Render(liveLabel), width)
	}
	return out
}

func captionMarker(cell *feed.Cell, th tuitheme.Theme) string {
	if !cell.Item().IsVideo() {
		return ""
	}
	switch cell.Slot().State() {
	case feed.VideoPlayingCrossfaded:
		return th.LiveMarker.Render("●") + " "
	case feed.VideoPreparing, feed.VideoPlaying:
		return th.VideoMarker.Render("◌") + " "
	default:
		return th.VideoMarker.Render("▶") + " "
	}
}

func centered(label string, width, height int) []string {
	out := make([]string, height)
	for i := range out {
		out[i] = strings.Repeat(" ", width)
	}
	out[height/2] = center(label, width)
	return out
}

func center(label string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, fit(label, width))
}

// fit truncates s to width columns and pads it out to exactly width.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) > width {
		s = truncate.StringWithTail(s, uint(width), "…")
	}
	return padding.String(s, uint(width))
}
