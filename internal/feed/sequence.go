package feed

import (
	"github.com/samber/lo"

	"github.com/glabrego/pixfeed-cli/internal/media"
)

// GrowthPolicy bounds the endless feed. MaxPasses counts how many times
// the base items may appear in the displayed sequence; zero means the
// sequence grows for as long as the user keeps scrolling.
type GrowthPolicy struct {
	MaxPasses int
}

func (p GrowthPolicy) allows(passes int) bool {
	return p.MaxPasses <= 0 || passes < p.MaxPasses
}

// Sequence is the displayed, possibly repeated, list of items. It only
// ever grows until the next Reset.
type Sequence struct {
	base      []media.Item
	displayed []media.Item
	passes    int
	policy    GrowthPolicy
}

func NewSequence(policy GrowthPolicy) *Sequence {
	return &Sequence{policy: policy}
}

func (s *Sequence) Reset(base []media.Item) {
	s.base = append([]media.Item(nil), base...)
	s.displayed = append([]media.Item(nil), base...)
	s.passes = 1
	if len(base) == 0 {
		s.passes = 0
	}
}

// Extend appends the base items once more. It reports false when there is
// nothing to repeat or the policy forbids another pass.
func (s *Sequence) Extend() bool {
	if len(s.base) == 0 || !s.policy.allows(s.passes) {
		return false
	}
	s.displayed = append(s.displayed, s.base...)
	s.passes++
	return true
}

func (s *Sequence) Len() int     { return len(s.displayed) }
func (s *Sequence) BaseLen() int { return len(s.base) }
func (s *Sequence) Passes() int  { return s.passes }

func (s *Sequence) At(position int) (media.Item, bool) {
	if position < 0 || position >= len(s.displayed) {
		return media.Item{}, false
	}
	return s.displayed[position], true
}

func (s *Sequence) Items() []media.Item {
	return append([]media.Item(nil), s.displayed...)
}

// IDs is mostly useful in tests and logs.
func (s *Sequence) IDs() []string {
	return lo.Map(s.displayed, func(it media.Item, _ int) string { return it.ID() })
}
