package feed

import "math"

type Point struct {
	X, Y float64
}

type Size struct {
	Width, Height float64
}

func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is half-open: it contains its origin but not its far edges.
type Rect struct {
	Origin Point
	Size   Size
}

func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Origin.X && p.X < r.MaxX() && p.Y >= r.Origin.Y && p.Y < r.MaxY()
}

func (r Rect) Intersects(top, bottom float64) bool {
	return r.Origin.Y < bottom && r.MaxY() > top
}

type Insets struct {
	Top, Left, Bottom, Right float64
}

// Layout places items two per row with Gap between columns and rows.
type Layout struct {
	Viewport Size
	Cell     Size
	Gap      float64
	Insets   Insets
}

// CellSize splits the viewport width into two columns. ok is false when
// either dimension is not positive; callers keep their previous layout.
func CellSize(viewportWidth, gap, height float64) (Size, bool) {
	size := Size{Width: (viewportWidth - gap) / 2, Height: height}
	if size.Empty() {
		return Size{}, false
	}
	return size, true
}

func (l Layout) Valid() bool {
	return !l.Cell.Empty()
}

func (l Layout) rowPitch() float64 { return l.Cell.Height + l.Gap }
func (l Layout) colPitch() float64 { return l.Cell.Width + l.Gap }

// Frame is the content-space rectangle of position.
func (l Layout) Frame(position int) Rect {
	row, col := position/2, position%2
	return Rect{
		Origin: Point{
			X: l.Insets.Left + float64(col)*l.colPitch(),
			Y: l.Insets.Top + float64(row)*l.rowPitch(),
		},
		Size: l.Cell,
	}
}

func (l Layout) ContentHeight(count int) float64 {
	if count <= 0 || !l.Valid() {
		return l.Insets.Top + l.Insets.Bottom
	}
	rows := (count + 1) / 2
	return l.Insets.Top + float64(rows)*l.Cell.Height + float64(rows-1)*l.Gap + l.Insets.Bottom
}

// MaxOffset is the furthest the content can scroll down.
func (l Layout) MaxOffset(count int) float64 {
	return math.Max(0, l.ContentHeight(count)-l.Viewport.Height)
}

// PositionAt hit-tests p against cell frames. Index arithmetic only picks
// the candidate; the frame decides, so gaps and insets miss.
func (l Layout) PositionAt(p Point, count int) (int, bool) {
	if !l.Valid() || count <= 0 {
		return 0, false
	}
	row := int(math.Floor((p.Y - l.Insets.Top) / l.rowPitch()))
	col := int(math.Floor((p.X - l.Insets.Left) / l.colPitch()))
	if row < 0 || col < 0 || col > 1 {
		return 0, false
	}
	pos := row*2 + col
	if pos >= count {
		return 0, false
	}
	if !l.Frame(pos).Contains(p) {
		return 0, false
	}
	return pos, true
}

// VisibleRange returns the first and last positions whose frames overlap
// the viewport at offset. ok is false when nothing is visible.
func (l Layout) VisibleRange(offset float64, count int) (first, last int, ok bool) {
	if !l.Valid() || count <= 0 || l.Viewport.Height <= 0 {
		return 0, 0, false
	}
	top := offset
	bottom := offset + l.Viewport.Height

	firstRow := int(math.Floor((top - l.Insets.Top) / l.rowPitch()))
	if firstRow < 0 {
		firstRow = 0
	}
	// The row found by division may end inside the gap above the viewport.
	if l.Frame(firstRow*2).MaxY() <= top {
		firstRow++
	}
	lastRow := int(math.Ceil((bottom-l.Insets.Top)/l.rowPitch())) - 1
	maxRow := (count - 1) / 2
	if lastRow > maxRow {
		lastRow = maxRow
	}
	if firstRow > lastRow {
		return 0, 0, false
	}

	first = firstRow * 2
	last = lastRow*2 + 1
	if last >= count {
		last = count - 1
	}
	return first, last, true
}
