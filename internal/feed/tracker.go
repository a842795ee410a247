package feed

import "github.com/samber/mo"

// Tracker decides which positions are in focus from geometry alone. It
// keeps no state; the Coordinator holds the previous result.
type Tracker struct{}

// Probes returns the left and right probe points in viewport space: the
// centers of the two cells of a row sitting flush with the viewport top.
func (Tracker) Probes(l Layout) (left, right Point) {
	halfW, halfH := l.Cell.Width/2, l.Cell.Height/2
	left = Point{X: l.Insets.Left + halfW, Y: halfH}
	right = Point{X: l.Viewport.Width - l.Insets.Right - halfW, Y: halfH}
	return left, right
}

func (t Tracker) Focus(l Layout, offset float64, count int) FocusSet {
	if !l.Valid() || count <= 0 {
		return FocusSet{}
	}
	left, right := t.Probes(l)
	return FocusSet{
		Left:  t.hit(l, left, offset, count),
		Right: t.hit(l, right, offset, count),
	}
}

func (Tracker) hit(l Layout, probe Point, offset float64, count int) mo.Option[int] {
	content := Point{X: probe.X, Y: probe.Y + offset}
	if pos, ok := l.PositionAt(content, count); ok {
		return mo.Some(pos)
	}
	return mo.None[int]()
}
