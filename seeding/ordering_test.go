package seeding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderNatural(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4}, Order(Natural, []int{1, 2, 3, 4}))
}

func TestOrderReverse(t *testing.T) {
	assert.Equal(t, []int{4, 3, 2, 1}, Order(Reverse, []int{1, 2, 3, 4}))
}

func TestOrderHalfShift(t *testing.T) {
	assert.Equal(t, []int{3, 4, 1, 2}, Order(HalfShift, []int{1, 2, 3, 4}))
}

func TestOrderReverseHalfShift(t *testing.T) {
	// reverse -> [4,3,2,1], then half_shift -> [2,1,4,3]
	assert.Equal(t, []int{2, 1, 4, 3}, Order(ReverseHalfShift, []int{1, 2, 3, 4}))
}

func TestOrderPairFlip(t *testing.T) {
	assert.Equal(t, []int{2, 1, 4, 3}, Order(PairFlip, []int{1, 2, 3, 4}))
}

func TestOrderInnerOuter(t *testing.T) {
	// Seed 1 vs seed 8, seed 4 vs seed 5, seed 2 vs seed 7, seed 3 vs seed 6 —
	// the classic ranked bracket for 8 entries.
	got := Order(InnerOuter, []int{1, 2, 3, 4, 5, 6, 7, 8})
	pairs := [][2]int{{got[0], got[1]}, {got[2], got[3]}, {got[4], got[5]}, {got[6], got[7]}}
	assert.ElementsMatch(t, []int{1, 8}, []int{pairs[0][0], pairs[0][1]})
	assert.ElementsMatch(t, []int{4, 5}, []int{pairs[1][0], pairs[1][1]})
}

func TestOrderIsLengthPreserving(t *testing.T) {
	for _, m := range []Method{Natural, Reverse, HalfShift, ReverseHalfShift, PairFlip, InnerOuter} {
		seq := []int{1, 2, 3, 4, 5, 6, 7, 8}
		out := Order(m, seq)
		assert.Len(t, out, len(seq), "method %s must preserve length", m)
		assert.ElementsMatch(t, seq, out, "method %s must be a permutation", m)
	}
}

func TestGroupsSnake(t *testing.T) {
	seq := []int{1, 2, 3, 4, 5, 6}
	groups := Groups(GroupsSnake, seq, 2)
	assert.Equal(t, [][]int{{1, 4, 5}, {2, 3, 6}}, groups)
}

func TestGroupsEffortBalanced(t *testing.T) {
	seq := []int{0, 1, 2, 3, 4, 5}
	groups := Groups(GroupsEffortBalanced, seq, 2)
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	assert.Equal(t, len(seq), total)
}

func TestGroupsBracketOptimized(t *testing.T) {
	seq := []int{1, 2, 3, 4}
	groups := Groups(GroupsBracketOptimized, seq, 2)
	assert.Equal(t, [][]int{{1, 3}, {2, 4}}, groups)
}
