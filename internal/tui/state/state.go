package state

import "math"

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

// ChromeLines is how many terminal rows the header, message panel and
// footer take around the grid.
func ChromeLines(showHelp bool) int {
	lines := 4
	if showHelp {
		lines += 8
	}
	return lines
}

// GridHeight is the number of rows left for the grid once chrome is drawn.
func GridHeight(height int, showHelp bool) int {
	h := height - ChromeLines(showHelp)
	if h < 0 {
		return 0
	}
	return h
}

// LineStep scrolls a single row, or one full cell row when cells are short.
func LineStep(rowPitch float64) float64 {
	if rowPitch <= 0 {
		return 1
	}
	return math.Max(1, math.Floor(rowPitch/4))
}

// PageStep advances by whole cell rows that fit the viewport, never less
// than one.
func PageStep(viewport, rowPitch float64) float64 {
	if rowPitch <= 0 {
		return math.Max(1, viewport)
	}
	rows := math.Floor(viewport / rowPitch)
	if rows < 1 {
		rows = 1
	}
	return rows * rowPitch
}
