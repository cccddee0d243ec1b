package khalimsky_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/embedding"
	"github.com/higra-go/higra/khalimsky"
)

func TestRoundTripNoBorder(t *testing.T) {
	h, w := 2, 3
	_, g, err := embedding.Grid4(h, w)
	require.NoError(t, err)
	weights := []float64{1, 0, 2, 1, 1, 1, 2}

	kh, err := khalimsky.Graph2Khalimsky4Adjacency(h, w, g, weights, false)
	require.NoError(t, err)
	assert.Len(t, kh, 2*h-1)
	assert.Len(t, kh[0], 2*w-1)

	h2, w2, g2, weights2, err := khalimsky.Khalimsky2Graph4Adjacency(kh, false)
	require.NoError(t, err)
	assert.Equal(t, h, h2)
	assert.Equal(t, w, w2)
	assert.Equal(t, g.NumEdges(), g2.NumEdges())
	assert.Equal(t, weights, weights2)
}

func TestRoundTripWithBorder(t *testing.T) {
	h, w := 3, 2
	_, g, err := embedding.Grid4(h, w)
	require.NoError(t, err)
	weights := make([]float64, g.NumEdges())
	for i := range weights {
		weights[i] = float64(i) + 0.5
	}

	kh, err := khalimsky.Graph2Khalimsky4Adjacency(h, w, g, weights, true)
	require.NoError(t, err)
	assert.Len(t, kh, 2*h+1)
	assert.Len(t, kh[0], 2*w+1)

	h2, w2, _, weights2, err := khalimsky.Khalimsky2Graph4Adjacency(kh, true)
	require.NoError(t, err)
	assert.Equal(t, h, h2)
	assert.Equal(t, w, w2)
	assert.Equal(t, weights, weights2)
}

func TestPixelSlotIsMaxIncident(t *testing.T) {
	h, w := 2, 2
	_, g, err := embedding.Grid4(h, w)
	require.NoError(t, err)
	weights := []float64{3, 7, 1, 9}
	kh, err := khalimsky.Graph2Khalimsky4Adjacency(h, w, g, weights, false)
	require.NoError(t, err)
	// Vertex 0 at pixel (0,0): incident edges are {0,1}(w=3) and {0,2}(w=7) -> max 7.
	assert.Equal(t, 7.0, kh[0][0])
}
