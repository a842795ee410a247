package feed

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTrackerFocus(t *testing.T) {
	Convey("Tracker.Focus", t, func() {
		var tr Tracker
		l := testLayout()

		Convey("Should probe the centers of the top row", func() {
			left, right := tr.Probes(l)
			So(left, ShouldResemble, Point{X: 79, Y: 100})
			So(right, ShouldResemble, Point{X: 241, Y: 100})
		})
		Convey("Should focus both cells of the top row", func() {
			f := tr.Focus(l, 0, 20)
			So(f.Left, ShouldResemble, mo.Some(0))
			So(f.Right, ShouldResemble, mo.Some(1))
		})
		Convey("Should follow the scroll offset", func() {
			f := tr.Focus(l, 204, 20)
			So(f.Positions(), ShouldResemble, []int{2, 3})
		})
		Convey("Should leave the right probe empty on an odd tail", func() {
			f := tr.Focus(l, 0, 1)
			So(f.Left, ShouldResemble, mo.Some(0))
			So(f.Right.IsAbsent(), ShouldBeTrue)
		})
		Convey("Should focus nothing when probes land in a gap", func() {
			f := tr.Focus(l, 101, 20)
			So(f.Len(), ShouldEqual, 0)
		})
		Convey("Should focus nothing without a layout", func() {
			f := tr.Focus(Layout{}, 0, 20)
			So(f.Len(), ShouldEqual, 0)
		})
	})
}

func TestTrackerFocusSweep(t *testing.T) {
	Convey("Tracker.Focus across every scroll offset", t, func() {
		var tr Tracker
		l := testLayout()
		left, right := tr.Probes(l)

		for _, count := range []int{1, 7, 20} {
			limit := l.MaxOffset(count) + l.Viewport.Height
			for offset := -50.0; offset <= limit; offset += 0.5 {
				f := tr.Focus(l, offset, count)
				if f.Len() > 2 {
					t.Fatalf("count %d offset %v: %d focused", count, offset, f.Len())
				}
				checkProbe(t, l, "left", f.Left, Point{X: left.X, Y: left.Y + offset}, count)
				checkProbe(t, l, "right", f.Right, Point{X: right.X, Y: right.Y + offset}, count)
			}
		}
		So(true, ShouldBeTrue)
	})
}

// checkProbe asserts that hit is exactly the cell whose frame holds the
// probe in content space, or absent when no frame does.
func checkProbe(t *testing.T, l Layout, side string, hit mo.Option[int], probe Point, count int) {
	t.Helper()
	want := -1
	for pos := 0; pos < count; pos++ {
		if l.Frame(pos).Contains(probe) {
			want = pos
			break
		}
	}
	pos, ok := hit.Get()
	switch {
	case want < 0 && ok:
		t.Fatalf("%s probe %+v hit %d with no frame under it", side, probe, pos)
	case want >= 0 && !ok:
		t.Fatalf("%s probe %+v missed position %d", side, probe, want)
	case ok && (pos != want || pos >= count || !l.Frame(pos).Contains(probe)):
		t.Fatalf("%s probe %+v hit %d, frame %+v", side, probe, pos, l.Frame(pos))
	}
}

func TestFocusSetLeaving(t *testing.T) {
	Convey("FocusSet", t, func() {
		a := FocusSet{Left: mo.Some(0), Right: mo.Some(1)}
		b := FocusSet{Left: mo.Some(1), Right: mo.Some(2)}

		So(a.Leaving(b), ShouldResemble, []int{0})
		So(b.Leaving(a), ShouldResemble, []int{2})
		So(a.Equal(a), ShouldBeTrue)
		So(a.Equal(b), ShouldBeFalse)
		So(FocusSet{}.Equal(FocusSet{}), ShouldBeTrue)

		Convey("Should not repeat a position held by both probes", func() {
			same := FocusSet{Left: mo.Some(4), Right: mo.Some(4)}
			So(same.Positions(), ShouldResemble, []int{4})
			So(same.Len(), ShouldEqual, 1)
		})
	})
}
