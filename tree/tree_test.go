package tree_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/tree"
)

// s1Tree builds the spec.md S1 scenario tree:
// parents = [6,7,9,6,8,9,7,8,10,10,10], 11 nodes, 6 leaves (2x3 grid).
func s1Tree(t *testing.T) *tree.Tree {
	t.Helper()
	parents := []int{6, 7, 9, 6, 8, 9, 7, 8, 10, 10, 10}
	tr, err := tree.New(parents, 6, tree.PartitionTree)
	require.NoError(t, err)
	return tr
}

func TestNewValidatesLeafPrefix(t *testing.T) {
	tr := s1Tree(t)
	assert.Equal(t, 11, tr.NumNodes())
	assert.Equal(t, 6, tr.NumLeaves())
	assert.Equal(t, 10, tr.Root())
	for i := 0; i < 6; i++ {
		assert.True(t, tr.IsLeaf(i))
	}
	assert.False(t, tr.IsLeaf(6))
}

func TestNewRejectsMultipleRoots(t *testing.T) {
	_, err := tree.New([]int{1, 1, 2}, 2, tree.PartitionTree)
	assert.Error(t, err)
}

func TestNewRejectsNonTopological(t *testing.T) {
	_, err := tree.New([]int{2, 2, 0}, 1, tree.PartitionTree)
	assert.Error(t, err)
}

func TestNewRejectsLeafWithChildren(t *testing.T) {
	// node 0 declared a leaf (numLeaves=2) but is node 2's parent below — invalid.
	_, err := tree.New([]int{2, 2, 2, 0}, 2, tree.PartitionTree)
	assert.Error(t, err)
}

func TestComputeChildrenAndQueries(t *testing.T) {
	tr := s1Tree(t)
	_, err := tr.NumChildren(6)
	assert.Error(t, err) // PreconditionFailed before ComputeChildren

	tr.ComputeChildren()
	nc, err := tr.NumChildren(6)
	require.NoError(t, err)
	assert.Equal(t, 2, nc)

	children, err := tr.Children(10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{8, 9}, children)

	tr.ClearChildren()
	assert.False(t, tr.ChildrenComputed())
}

func TestAncestorsAndLCA(t *testing.T) {
	tr := s1Tree(t)
	anc, err := tr.Ancestors(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 6, 7, 8, 10}, anc)

	lca, err := tr.LowestCommonAncestor(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, lca)

	lca2, err := tr.LowestCommonAncestor(4, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, lca2)
}

func TestLeavesToRootOrderingFlags(t *testing.T) {
	tr := s1Tree(t)
	all := tr.LeavesToRoot(true, true)
	assert.Equal(t, 11, len(all))
	noLeaves := tr.LeavesToRoot(false, true)
	assert.Equal(t, 5, len(noLeaves))
	noRoot := tr.LeavesToRoot(true, false)
	assert.Equal(t, 10, len(noRoot))

	rev := tr.RootToLeaves(true, true)
	assert.Equal(t, 10, rev[0])
}

func TestValidateAltitudesPartitionTree(t *testing.T) {
	tr := s1Tree(t)
	good := []float64{0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 2}
	assert.NoError(t, tree.ValidateAltitudes(tr, good))

	bad := append([]float64(nil), good...)
	bad[7] = -1 // below child 6's altitude (0): already a violation; a second one:
	bad[10] = 0 // root lower than its child 8/9 (altitude 1)
	assert.Error(t, tree.ValidateAltitudes(tr, bad))
}

func TestValidateAltitudesComponentTree(t *testing.T) {
	parents := []int{2, 2, 2}
	tr, err := tree.New(parents, 2, tree.ComponentTree)
	require.NoError(t, err)

	increasing := []float64{0, 1, 5}
	assert.NoError(t, tree.ValidateAltitudes(tr, increasing))

	decreasing := []float64{5, 1, 0}
	assert.NoError(t, tree.ValidateAltitudes(tr, decreasing))

	mixedPerPath := []float64{0, 9, 5} // leaf0 path increasing (0->5), leaf1 path decreasing (9->5): each
	// path individually is a 2-step path so trivially monotone; this is not actually a violation example,
	// left here only to document that 2-node paths cannot violate monotonicity.
	assert.NoError(t, tree.ValidateAltitudes(tr, mixedPerPath))
}

func TestHorizontalCutAltitudeAboveIsInfinity(t *testing.T) {
	tr := s1Tree(t)
	alt := make([]float64, tr.NumNodes())
	got := tree.HorizontalCutAltitudeAbove(tr, alt)
	assert.True(t, math.IsInf(got, 1))
}
