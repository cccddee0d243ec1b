package cut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/cut"
	"github.com/higra-go/higra/tree"
)

// buildS3 builds the 19-node valued hierarchy hand-traced against this
// package's Scenario-S3 fixture: 11 leaves, 8 internal nodes, with an
// altitude plateau structure deliberately rich in ties (several
// siblings share an altitude, and two distinct internal nodes tie with
// the root) so the coarsest-to-finest enumeration must correctly group
// same-altitude nodes into a single cut rather than one per node.
func buildS3(t *testing.T) (*tree.Tree, []float64) {
	parents := []int{
		11, 11, 11, 12, 12, 16, 13, 13, 13, 14, 14,
		17, 16, 15, 15, 18, 17, 18, 18,
	}
	tr, err := tree.New(parents, 11, tree.ComponentTree)
	require.NoError(t, err)
	tr.ComputeChildren()

	altitudes := []float64{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // leaves
		1, 1, 0, 1, 3, 1, 2, 3, // 11..18
	}
	return tr, altitudes
}

// TestExplorerCutSequenceMatchesHandTrace hand-verifies the full
// coarsest-to-finest enumeration: 4 distinct altitudes are present
// among the internal nodes (0, 1, 2, 3), and walking the hierarchy
// from the root down gives region counts 1, 3, 4, 9 at altitudes
// 3, 2, 1, 0 respectively (root and node 15 tie at altitude 3 and must
// open together; nodes 11, 12, 14, 16 tie at altitude 1 and must open
// together too).
func TestExplorerCutSequenceMatchesHandTrace(t *testing.T) {
	tr, altitudes := buildS3(t)

	exp, err := cut.NewExplorer(tr, altitudes)
	require.NoError(t, err)

	require.Equal(t, 4, exp.NumCuts())

	wantRegions := []int{1, 3, 4, 9}
	wantAltitudes := []float64{3, 2, 1, 0}
	for i := 0; i < 4; i++ {
		rec, err := exp.FromIndex(i)
		require.NoError(t, err)
		assert.Equal(t, wantRegions[i], rec.NumRegions, "cut %d region count", i)
		assert.Equal(t, wantAltitudes[i], rec.Altitude, "cut %d altitude", i)
	}
}

// TestExplorerFromAltitudeAndNumRegions exercises the two query paths
// against the same hand-traced sequence.
func TestExplorerFromAltitudeAndNumRegions(t *testing.T) {
	tr, altitudes := buildS3(t)
	exp, err := cut.NewExplorer(tr, altitudes)
	require.NoError(t, err)

	rec, err := exp.FromAltitude(2.5)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.NumRegions)
	assert.Equal(t, 2.0, rec.Altitude)

	rec, err = exp.FromNumRegions(4, true)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.NumRegions)

	rec, err = exp.FromNumRegions(5, true)
	require.NoError(t, err)
	assert.Equal(t, 9, rec.NumRegions)

	rec, err = exp.FromNumRegions(5, false)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.NumRegions)
}

// TestCutNodesAtAltitudeTwo hand-verifies spec.md Scenario S3's stated
// cut: at threshold 2 the maximal antichain is {17, 13, 14} — node 17
// (altitude 2) stays whole since 2<=2, while node 15 (altitude 3,
// 3>2) opens down to its two children 13 and 14 (altitudes 0 and 1,
// both <=2 with parent altitude 3>2).
func TestCutNodesAtAltitudeTwo(t *testing.T) {
	tr, altitudes := buildS3(t)

	nodes, err := cut.CutNodes(tr, altitudes, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{17, 13, 14}, nodes)
}

// TestCutNodesAtAltitudeZeroHasNineRegions cross-checks the same
// threshold this package's Explorer reports 9 regions for, via the
// independent direct-descent implementation.
func TestCutNodesAtAltitudeZeroHasNineRegions(t *testing.T) {
	tr, altitudes := buildS3(t)

	nodes, err := cut.CutNodes(tr, altitudes, 0)
	require.NoError(t, err)
	assert.Len(t, nodes, 9)
}

// TestLabelisationLeavesAssignsEveryLeaf checks every leaf receives
// exactly one label and that label is one of the cut nodes.
func TestLabelisationLeavesAssignsEveryLeaf(t *testing.T) {
	tr, altitudes := buildS3(t)

	nodes, err := cut.CutNodes(tr, altitudes, 2)
	require.NoError(t, err)
	labels, err := cut.LabelisationLeaves(tr, altitudes, 2)
	require.NoError(t, err)

	require.Len(t, labels, tr.NumLeaves())
	nodeSet := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		nodeSet[n] = true
	}
	for _, l := range labels {
		assert.True(t, nodeSet[l], "label %d must be one of the cut nodes", l)
	}
}
