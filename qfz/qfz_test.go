package qfz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/embedding"
	"github.com/higra-go/higra/qfz"
	"github.com/higra-go/higra/tree"
)

// TestQuasiFlatZonesMatchesS2 reproduces spec.md Scenario S2: the
// quasi-flat-zones tree of the same 2x3 grid input as S1.
func TestQuasiFlatZonesMatchesS2(t *testing.T) {
	_, g, err := embedding.Grid4(2, 3)
	require.NoError(t, err)
	weights := []float64{1, 0, 2, 1, 1, 1, 2}

	res, err := qfz.QuasiFlatZones(g, weights)
	require.NoError(t, err)

	assert.Equal(t, []int{6, 7, 8, 6, 7, 8, 7, 9, 9, 9}, res.Tree.Parents())
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 1, 1, 2}, res.Altitudes)
}

func TestSimplifyPreservesLeafPrefixWhenLeavesNotRemoved(t *testing.T) {
	parents := []int{5, 5, 6, 6, 6, 7, 7, 7}
	tr, err := tree.New(parents, 5, tree.PartitionTree)
	require.NoError(t, err)

	// Remove node 6 only (one of two internal non-root nodes).
	predicate := func(i int) bool { return i == 6 }
	res, err := qfz.Simplify(tr, predicate, false, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Tree.NumLeaves())
	assert.Equal(t, 7, res.Tree.NumNodes())
	// node2's new parent should be the surviving ancestor of 6, which is 7.
	newIDof2 := indexOf(res.NodeMap, 2)
	newIDof7 := indexOf(res.NodeMap, 7)
	assert.Equal(t, newIDof7, res.Tree.Parents()[newIDof2])
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
