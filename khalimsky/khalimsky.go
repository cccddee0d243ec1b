// Package khalimsky implements spec.md §4.15 "Graph ↔ Khalimsky grid":
// converting a 4-adjacency grid graph with per-edge weights into an
// enlarged array where inter-pixel slots carry edge weights and pixel
// slots carry the max of incident weights, and back.
//
// Grounded on embedding.Grid4 for the underlying (H,W) 4-adjacency graph
// and gridgraph's row-major (x,y) conventions, generalized to the
// doubled-resolution Khalimsky coordinate space.
package khalimsky

import (
	"math"

	"github.com/higra-go/higra/embedding"
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
)

// Graph2Khalimsky4Adjacency converts a 4-adjacency grid graph of shape
// (h,w) with per-edge weights into a (2h-1)x(2w-1) Khalimsky array
// (added=false) or a (2h+1)x(2w+1) array with an extra border
// (added=true). Inter-pixel slots (both coordinates of mixed parity)
// carry the corresponding edge's weight; pixel slots (both coordinates
// even, offset by the border) carry the max of incident edge weights.
//
// g must be exactly the graph embedding.Grid4(h,w) would produce (same
// vertex numbering and edge order), since Khalimsky slot placement
// depends on that canonical layout.
func Graph2Khalimsky4Adjacency(h, w int, g *graph.Graph, weights []float64, addBorder bool) ([][]float64, error) {
	if g.NumVertices() != h*w {
		return nil, herr.Wrap(herr.KindInvalidShape, "khalimsky", "graph has %d vertices, want %d for a %dx%d grid", g.NumVertices(), h*w, h, w)
	}
	if len(weights) != g.NumEdges() {
		return nil, herr.Wrap(herr.KindInvalidShape, "khalimsky", "weights has %d entries, want %d", len(weights), g.NumEdges())
	}
	emb, err := embedding.New(h, w)
	if err != nil {
		return nil, err
	}

	border := 0
	if addBorder {
		border = 1
	}
	kh := 2*h - 1 + 2*border
	kw := 2*w - 1 + 2*border
	out := make([][]float64, kh)
	for i := range out {
		out[i] = make([]float64, kw)
	}

	pixelAt := func(y, x int) (int, int) { return 2*y + border, 2*x + border }

	// Inter-pixel slots: one per edge, placed halfway between its endpoints.
	for e := 0; e < g.NumEdges(); e++ {
		removed, _ := g.IsRemoved(e)
		if removed {
			continue
		}
		u, v, _ := g.EdgeEndpoints(e)
		cu, err := emb.LinearToCoords(u)
		if err != nil {
			return nil, err
		}
		cv, err := emb.LinearToCoords(v)
		if err != nil {
			return nil, err
		}
		py, px := pixelAt(cu[0], cu[1])
		qy, qx := pixelAt(cv[0], cv[1])
		out[(py+qy)/2][(px+qx)/2] = weights[e]
	}

	// Pixel slots: max of incident edge weights (0 if isolated).
	for v := 0; v < h*w; v++ {
		coords, err := emb.LinearToCoords(v)
		if err != nil {
			return nil, err
		}
		py, px := pixelAt(coords[0], coords[1])
		m, err := MaxIncidentWeight(g, weights, v)
		if err != nil {
			return nil, err
		}
		out[py][px] = m
	}

	return out, nil
}

// Khalimsky2Graph4Adjacency is the inverse of Graph2Khalimsky4Adjacency:
// given a Khalimsky array, reconstructs the original (h,w) shape, the
// 4-adjacency graph (in the same canonical edge order
// embedding.Grid4(h,w) would produce) and its edge weights.
func Khalimsky2Graph4Adjacency(kh2d [][]float64, addBorder bool) (int, int, *graph.Graph, []float64, error) {
	if len(kh2d) == 0 || len(kh2d[0]) == 0 {
		return 0, 0, nil, nil, herr.Wrap(herr.KindInvalidShape, "khalimsky", "empty Khalimsky array")
	}
	kh, kw := len(kh2d), len(kh2d[0])
	border := 0
	if addBorder {
		border = 1
	}
	h := (kh - 1 - 2*border)/2 + 1
	w := (kw - 1 - 2*border)/2 + 1
	if h <= 0 || w <= 0 || 2*h-1+2*border != kh || 2*w-1+2*border != kw {
		return 0, 0, nil, nil, herr.Wrap(herr.KindInvalidShape, "khalimsky", "Khalimsky array shape %dx%d inconsistent with addBorder=%v", kh, kw, addBorder)
	}

	_, g, err := embedding.Grid4(h, w)
	if err != nil {
		return 0, 0, nil, nil, err
	}
	emb, err := embedding.New(h, w)
	if err != nil {
		return 0, 0, nil, nil, err
	}
	pixelAt := func(y, x int) (int, int) { return 2*y + border, 2*x + border }

	weights := make([]float64, g.NumEdges())
	for e := 0; e < g.NumEdges(); e++ {
		u, v, err := g.EdgeEndpoints(e)
		if err != nil {
			return 0, 0, nil, nil, err
		}
		cu, err := emb.LinearToCoords(u)
		if err != nil {
			return 0, 0, nil, nil, err
		}
		cv, err := emb.LinearToCoords(v)
		if err != nil {
			return 0, 0, nil, nil, err
		}
		py, px := pixelAt(cu[0], cu[1])
		qy, qx := pixelAt(cv[0], cv[1])
		weights[e] = kh2d[(py+qy)/2][(px+qx)/2]
	}
	return h, w, g, weights, nil
}

// MaxIncidentWeight is a small helper exposing the pixel-slot rule
// (max of incident edge weights) independently, useful for tests and
// for tos's plain-map construction which reuses the same idea.
func MaxIncidentWeight(g *graph.Graph, weights []float64, v int) (float64, error) {
	inc, err := g.IncidentEdges(v)
	if err != nil {
		return 0, err
	}
	m := math.Inf(-1)
	found := false
	for _, e := range inc {
		removed, _ := g.IsRemoved(e)
		if removed {
			continue
		}
		found = true
		if weights[e] > m {
			m = weights[e]
		}
	}
	if !found {
		return 0, nil
	}
	return m, nil
}
