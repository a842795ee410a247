package feed

import (
	"fmt"

	"github.com/samber/mo"
)

// FocusSet holds the positions hit by the left and right probes. Either
// may be absent; there are never more than two members.
type FocusSet struct {
	Left  mo.Option[int]
	Right mo.Option[int]
}

func (f FocusSet) Positions() []int {
	out := make([]int, 0, 2)
	if l, ok := f.Left.Get(); ok {
		out = append(out, l)
	}
	if r, ok := f.Right.Get(); ok {
		if l, ok := f.Left.Get(); !ok || l != r {
			out = append(out, r)
		}
	}
	return out
}

func (f FocusSet) Len() int {
	return len(f.Positions())
}

func (f FocusSet) Contains(position int) bool {
	for _, p := range f.Positions() {
		if p == position {
			return true
		}
	}
	return false
}

func (f FocusSet) Equal(other FocusSet) bool {
	return f.Left.OrElse(-1) == other.Left.OrElse(-1) &&
		f.Right.OrElse(-1) == other.Right.OrElse(-1)
}

// Leaving lists members of f that next no longer holds.
func (f FocusSet) Leaving(next FocusSet) []int {
	var out []int
	for _, p := range f.Positions() {
		if !next.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f FocusSet) String() string {
	show := func(o mo.Option[int]) string {
		if v, ok := o.Get(); ok {
			return fmt.Sprint(v)
		}
		return "-"
	}
	return fmt.Sprintf("{%s %s}", show(f.Left), show(f.Right))
}
