package tos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/higra-go/higra/tos"
)

// TestImmerseTwoByThreeCells hand-verifies the Khalimsky immersion
// formula cell by cell on a tiny 2x3 image: even/even cells carry the
// pixel itself, even/odd and odd/even cells carry the min/max of their
// two neighbouring pixels, and the single odd/odd cross cell carries
// the min/max of all four pixels around it.
func TestImmerseTwoByThreeCells(t *testing.T) {
	image := [][]float64{
		{1, 5, 2},
		{4, 0, 3},
	}
	pm := tos.Immerse(image, 2, 3, true)

	require.Equal(t, 3, pm.H) // 2*2-1
	require.Equal(t, 5, pm.W) // 2*3-1

	at := func(y, x int) (float64, float64) {
		idx := y*pm.W + x
		return pm.Min[idx], pm.Max[idx]
	}

	// Row 0 (even row): pixel, h-edge, pixel, h-edge, pixel.
	lo, hi := at(0, 0)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 1.0, hi)
	lo, hi = at(0, 1) // edge(1,5)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 5.0, hi)
	lo, hi = at(0, 2)
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 5.0, hi)
	lo, hi = at(0, 3) // edge(5,2)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 5.0, hi)
	lo, hi = at(0, 4)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 2.0, hi)

	// Row 1 (odd row): v-edge, cross, v-edge, cross, v-edge.
	lo, hi = at(1, 0) // edge(1,4)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 4.0, hi)
	lo, hi = at(1, 1) // cross(1,5,4,0)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 5.0, hi)
	lo, hi = at(1, 2) // edge(5,0)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 5.0, hi)
	lo, hi = at(1, 3) // cross(5,2,0,3)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 5.0, hi)
	lo, hi = at(1, 4) // edge(2,3)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 3.0, hi)

	// Row 2 (even row): pixel, h-edge, pixel, h-edge, pixel.
	lo, hi = at(2, 0)
	assert.Equal(t, 4.0, lo)
	assert.Equal(t, 4.0, hi)
	lo, hi = at(2, 2)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
	lo, hi = at(2, 4)
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 3.0, hi)
}

// TestImmerseFalseIsIdentity checks that without immersion the plain
// map is just one degenerate [v,v] interval per pixel, same shape as
// the image.
func TestImmerseFalseIsIdentity(t *testing.T) {
	image := [][]float64{{1, 2}, {3, 4}}
	pm := tos.Immerse(image, 2, 2, false)
	require.Equal(t, 2, pm.H)
	require.Equal(t, 2, pm.W)
	for i, v := range []float64{1, 2, 3, 4} {
		assert.Equal(t, v, pm.Min[i])
		assert.Equal(t, v, pm.Max[i])
	}
}

// TestBuildTwoByTwoCheckerboard hand-traces the full tree-of-shapes
// construction on a 2x2 image {{4,1},{2,3}} with immersion on, no
// padding, and the default top-left exterior vertex (value 4, which is
// also the global maximum, so it becomes the root). Front propagation,
// the union-find sweep, and the leaves-first renumbering were all
// traced by hand against this exact input; see DESIGN.md for the
// worked trace this test's expected values come from.
func TestBuildTwoByTwoCheckerboard(t *testing.T) {
	image := [][]float64{{4, 1}, {2, 3}}
	result, err := tos.Build(image, 2, 2, tos.PaddingNone, false, true, tos.TopLeftExterior([2]int{2, 2}))
	require.NoError(t, err)

	assert.Equal(t, []int{5, 8, 8, 6, 7, 7, 7, 8, 8}, result.Tree.Parents())
	assert.Equal(t, 5, result.Tree.NumLeaves())
	assert.Equal(t, 9, result.Tree.NumNodes())
	assert.Equal(t, []float64{1, 4, 4, 2, 3, 3, 3, 4, 4}, result.Altitudes)
}

// TestBuildOriginalSizeProjectsToFourPixels checks that requesting
// originalSize on the same 2x2 image collapses the 9-node immersed
// tree down to exactly the 4 original pixel positions (3 leaves plus
// the root), discarding every inter-pixel and cross node by
// reparenting through it.
func TestBuildOriginalSizeProjectsToFourPixels(t *testing.T) {
	image := [][]float64{{4, 1}, {2, 3}}
	result, err := tos.Build(image, 2, 2, tos.PaddingNone, true, true, tos.TopLeftExterior([2]int{2, 2}))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Tree.NumNodes())
	assert.Equal(t, 3, result.Tree.NumLeaves())
	got := append([]float64(nil), result.Altitudes...)
	assert.ElementsMatch(t, []float64{1, 2, 3, 4}, got)
}

// TestBuildRejectsMismatchedImageShape covers the precondition check.
func TestBuildRejectsMismatchedImageShape(t *testing.T) {
	image := [][]float64{{1, 2}}
	_, err := tos.Build(image, 2, 2, tos.PaddingNone, false, true, 0)
	require.Error(t, err)
}
