package embedding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/embedding"
)

func TestCoordRoundTrip(t *testing.T) {
	emb, err := embedding.New(2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 24, emb.Size())

	for lin := 0; lin < emb.Size(); lin++ {
		coords, err := emb.LinearToCoords(lin)
		require.NoError(t, err)
		back, err := emb.CoordsToLinear(coords)
		require.NoError(t, err)
		assert.Equal(t, lin, back)
	}
}

func TestGrid4CanonicalEdgeOrder(t *testing.T) {
	_, g, err := embedding.Grid4(2, 3)
	require.NoError(t, err)
	require.Equal(t, 7, g.NumEdges())

	type pair struct{ u, v int }
	want := []pair{{0, 1}, {0, 3}, {1, 2}, {1, 4}, {2, 5}, {3, 4}, {4, 5}}
	for i, w := range want {
		from, to, err := g.EdgeEndpoints(i)
		require.NoError(t, err)
		assert.Equal(t, w.u, from, "edge %d from", i)
		assert.Equal(t, w.v, to, "edge %d to", i)
	}
}

func TestGrid8HasDiagonals(t *testing.T) {
	_, g, err := embedding.Grid8(2, 2)
	require.NoError(t, err)
	// 2x2 grid with 8-adjacency: every pair is adjacent -> C(4,2)=6 edges.
	assert.Equal(t, 6, g.NumEdges())
}

func TestOutOfBoundsCoords(t *testing.T) {
	emb, err := embedding.New(2, 2)
	require.NoError(t, err)
	assert.False(t, emb.InBounds([]int{2, 0}))
	_, err = emb.CoordsToLinear([]int{-1, 0})
	assert.Error(t, err)
}
