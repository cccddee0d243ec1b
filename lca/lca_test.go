package lca_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/lca"
	"github.com/higra-go/higra/tree"
)

// s5Tree is spec.md Scenario S5: parents = [5,5,6,6,6,7,7,7].
func s5Tree(t *testing.T) *tree.Tree {
	t.Helper()
	parents := []int{5, 5, 6, 6, 6, 7, 7, 7}
	tr, err := tree.New(parents, 5, tree.PartitionTree)
	require.NoError(t, err)
	tr.ComputeChildren()
	return tr
}

func TestSparseTableMatchesS5(t *testing.T) {
	tr := s5Tree(t)
	o, err := lca.NewSparseTable(tr)
	require.NoError(t, err)

	cases := []struct{ u, v, want int }{
		{0, 1, 5},
		{2, 4, 6},
		{0, 2, 7},
		{3, 3, 3},
	}
	for _, c := range cases {
		got, err := o.LowestCommonAncestor(c.u, c.v)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "lca(%d,%d)", c.u, c.v)

		// symmetry
		got2, err := o.LowestCommonAncestor(c.v, c.u)
		require.NoError(t, err)
		assert.Equal(t, got, got2)

		// must agree with the naive tree-walking LCA
		naive, err := tr.LowestCommonAncestor(c.u, c.v)
		require.NoError(t, err)
		assert.Equal(t, naive, got)
	}
}

func TestBlockOracleMatchesSparseTableOnS5(t *testing.T) {
	tr := s5Tree(t)
	sparse, err := lca.NewSparseTable(tr)
	require.NoError(t, err)
	block, err := lca.NewSparseTableBlock(tr, 2)
	require.NoError(t, err)

	for u := 0; u < tr.NumNodes(); u++ {
		for v := 0; v < tr.NumNodes(); v++ {
			want, err := sparse.LowestCommonAncestor(u, v)
			require.NoError(t, err)
			got, err := block.LowestCommonAncestor(u, v)
			require.NoError(t, err)
			assert.Equal(t, want, got, "lca(%d,%d)", u, v)
		}
	}
}

func TestLowestCommonAncestorPairsElementwise(t *testing.T) {
	tr := s5Tree(t)
	o, err := lca.NewSparseTable(tr)
	require.NoError(t, err)

	got, err := o.LowestCommonAncestorPairs([]int{0, 2, 0}, []int{1, 4, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 7}, got)
}

func TestExportImportRoundTrip(t *testing.T) {
	tr := s5Tree(t)
	o, err := lca.NewSparseTable(tr)
	require.NoError(t, err)

	exported := o.Export()
	restored := lca.Import(exported)

	got, err := restored.LowestCommonAncestor(2, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, got)
}

func TestRejectsNonPositiveBlockSize(t *testing.T) {
	tr := s5Tree(t)
	_, err := lca.NewSparseTableBlock(tr, 0)
	assert.Error(t, err)
}
