package rag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/embedding"
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/rag"
	"github.com/higra-go/higra/treeacc"
)

func TestFromLabelingDedupAndRepresentative(t *testing.T) {
	_, g, err := embedding.Grid4(2, 3)
	require.NoError(t, err)
	// vertices laid out row-major: 0 1 2 / 3 4 5; two regions: {0,1,2} and {3,4,5}.
	labels := []int{0, 0, 0, 1, 1, 1}

	r, err := rag.FromLabeling(g, labels)
	require.NoError(t, err)
	assert.Equal(t, 2, r.NumRegions)
	assert.Equal(t, 1, r.Graph.NumEdges()) // exactly one RAG edge for the adjacent pair

	// three original edges cross the cut: {0,3},{1,4},{2,5}; all must map
	// to the same RAG edge, and only the lowest-indexed one is "new".
	crossing := 0
	for e, m := range r.EdgeMap {
		if m != graph.Invalid {
			crossing++
			_ = e
		}
	}
	assert.Equal(t, 3, crossing)
}

func TestFromCutUsesNonzeroWeightAsBoundary(t *testing.T) {
	_, g, err := embedding.Grid4(2, 3)
	require.NoError(t, err)
	weights := make([]float64, g.NumEdges())
	// mark the three vertical edges {0,3},{1,4},{2,5} as cut (nonzero).
	for e := 0; e < g.NumEdges(); e++ {
		u, v, _ := g.EdgeEndpoints(e)
		if (u == 0 && v == 3) || (u == 1 && v == 4) || (u == 2 && v == 5) {
			weights[e] = 1
		}
	}
	r, err := rag.FromCut(g, weights)
	require.NoError(t, err)
	assert.Equal(t, 2, r.NumRegions)
}

func TestBackProjectAndAccumulate(t *testing.T) {
	_, g, err := embedding.Grid4(2, 3)
	require.NoError(t, err)
	labels := []int{0, 0, 0, 1, 1, 1}
	r, err := rag.FromLabeling(g, labels)
	require.NoError(t, err)

	ragValues := []float64{10, 20}
	projected := rag.BackProjectWeights(r.VertexMap, ragValues, -1)
	assert.Equal(t, []float64{10, 10, 10, 20, 20, 20}, projected)

	original := []float64{1, 2, 3, 4, 5, 6}
	grouped := rag.Accumulate(r.VertexMap, original, r.NumRegions, treeacc.New(treeacc.Sum))
	assert.Equal(t, []float64{6, 15}, grouped)
}
