package optimalcut_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/optimalcut"
	"github.com/higra-go/higra/tree"
)

// build3Leaf constructs the same 3-leaf/2-internal-node shape used by
// genbpt's triangle tests: leaves 0,1 merge into node 3, which merges
// with leaf 2 at the root, node 4.
func build3Leaf(t *testing.T) *tree.Tree {
	tr, err := tree.New([]int{3, 3, 4, 4, 4}, 3, tree.ComponentTree)
	require.NoError(t, err)
	tr.ComputeChildren()
	return tr
}

// TestOptimalPartitionCollapsesToRoot hand-verifies spec.md §4.11's
// first DP when the root's own energy beats the combined children:
// energy = [1,1,1,3,2] under AccSum gives opt[3]=min(3, 1+1)=2
// (keep[3]=false) and opt[4]=min(2, 2+1)=2 (keep[4]=true, since
// 2<=3), so every leaf's topmost kept ancestor is the root.
func TestOptimalPartitionCollapsesToRoot(t *testing.T) {
	tr := build3Leaf(t)
	energy := []float64{1, 1, 1, 3, 2}

	labels, err := optimalcut.OptimalPartition(tr, energy, optimalcut.AccSum)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 4}, labels)
}

// TestOptimalPartitionSplitsIntoTwoRegions hand-verifies the DP when
// the root is too expensive to keep (e4=10 > opt[3]+opt[2]=1.5+1=2.5,
// keep[4]=false) but node 3 is cheap enough to keep on its own
// (e3=1.5 <= e0+e1=2): leaves 0,1 collapse into node 3, leaf 2 stays
// its own region.
func TestOptimalPartitionSplitsIntoTwoRegions(t *testing.T) {
	tr := build3Leaf(t)
	energy := []float64{1, 1, 1, 1.5, 10}

	labels, err := optimalcut.OptimalPartition(tr, energy, optimalcut.AccSum)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 2}, labels)
}

// TestFunctionInfimumHandTracedCrossing hand-verifies §3.7's Infimum:
// two unit rays (1,1) sum to a single ray (2,2); infimum with a node
// ray (3, 0.5) crosses where 2+2x == 3+0.5x, i.e. x == 2/3, and for x
// beyond that the merged function must equal the node's own ray.
func TestFunctionInfimumHandTracedCrossing(t *testing.T) {
	childSum := optimalcut.NewRay(1, 1).Sum(optimalcut.NewRay(1, 1), 0)
	require.Len(t, childSum.Pieces, 1)
	assert.Equal(t, 2.0, childSum.Pieces[0].Y0)
	assert.Equal(t, 2.0, childSum.Pieces[0].Slope)

	merged, lambda := childSum.Infimum(optimalcut.Piece{X0: 0, Y0: 3, Slope: 0.5})
	assert.InDelta(t, 2.0/3.0, lambda, 1e-9)
	assert.InDelta(t, childSum.Eval(lambda), merged.Eval(lambda), 1e-9)
	assert.InDelta(t, 3+0.5*2.0, merged.Eval(2.0), 1e-9, "beyond the crossing the node's own ray must govern")
	assert.InDelta(t, 2+2*0.1, merged.Eval(0.1), 1e-9, "before the crossing the children's sum must still govern")
}

// TestFunctionInfimumAlreadyDominant checks the lambda==0 branch: when
// the node's own ray is already cheaper at x=0, the merged function is
// the ray everywhere.
func TestFunctionInfimumAlreadyDominant(t *testing.T) {
	childSum := optimalcut.NewRay(5, 3)
	merged, lambda := childSum.Infimum(optimalcut.Piece{X0: 0, Y0: 1, Slope: 0.1})
	assert.Equal(t, 0.0, lambda)
	assert.InDelta(t, 1+0.1*10, merged.Eval(10), 1e-9)
}

// TestApparitionScalesOnTwoLeafTree drives the full ApparitionScales
// recursion on the 2-leaf tree underlying the crossing hand-trace
// above: leaves get +Inf (no apparition scale of their own), the root
// gets the hand-computed crossing 2/3.
func TestApparitionScalesOnTwoLeafTree(t *testing.T) {
	tr, err := tree.New([]int{2, 2, 2}, 2, tree.ComponentTree)
	require.NoError(t, err)
	tr.ComputeChildren()

	d := []float64{1, 1, 3}
	r := []float64{1, 1, 0.5}

	scales, err := optimalcut.ApparitionScales(tr, d, r, 0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(scales[0], 1))
	assert.True(t, math.IsInf(scales[1], 1))
	assert.InDelta(t, 2.0/3.0, scales[2], 1e-9)
}

// TestHierarchyEnergyCutSimplifiesSingleInternalTree checks the
// degenerate case of a single internal node: with no sibling-of-root
// to compare against, the simplification predicate (scale equals
// parent's) never fires since the root has no parent, so the result
// keeps the tree's shape.
func TestHierarchyEnergyCutSimplifiesSingleInternalTree(t *testing.T) {
	tr, err := tree.New([]int{2, 2, 2}, 2, tree.ComponentTree)
	require.NoError(t, err)
	tr.ComputeChildren()

	d := []float64{1, 1, 3}
	r := []float64{1, 1, 0.5}

	result, scales, err := optimalcut.HierarchyEnergyCut(tr, d, r, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, scales[2], 1e-9)
	assert.Equal(t, 3, result.Tree.NumNodes())
}
