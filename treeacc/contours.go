package treeacc

import (
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// Depths returns, for every node of t, its distance to the root
// (root has depth 0), computed top-down in RootToLeaves order.
func Depths(t *tree.Tree) []int {
	depth := make([]int, t.NumNodes())
	parents := t.Parents()
	for _, i := range t.RootToLeaves(true, true) {
		if i == t.Root() {
			depth[i] = 0
			continue
		}
		depth[i] = depth[parents[i]] + 1
	}
	return depth
}

// AccumulateOnContours computes, for each live edge e={u,v} of g, the
// accumulation of values along the path walked from u and v upward in
// lock-step (always advancing whichever side is deeper, or both when
// equally deep) until the two walks meet at their LCA; the result is
// stored at out[e] (spec.md §4.7). u and v are taken as tree leaves
// (tree leaves correspond 1:1 to g's vertices).
func AccumulateOnContours(t *tree.Tree, g *graph.Graph, depth []int, values []float64, acc Accumulator) ([]float64, error) {
	if err := checkLen("treeacc", len(depth), t.NumNodes(), "depth"); err != nil {
		return nil, err
	}
	if err := checkLen("treeacc", len(values), t.NumNodes(), "values"); err != nil {
		return nil, err
	}
	if g.NumVertices() != t.NumLeaves() {
		return nil, herr.Wrap(herr.KindInvalidShape, "treeacc", "graph has %d vertices, tree has %d leaves", g.NumVertices(), t.NumLeaves())
	}

	parents := t.Parents()
	out := make([]float64, g.NumEdges())
	for e := 0; e < g.NumEdges(); e++ {
		removed, err := g.IsRemoved(e)
		if err != nil {
			return nil, err
		}
		if removed {
			continue
		}
		u, v, err := g.EdgeEndpoints(e)
		if err != nil {
			return nil, err
		}

		s := acc.identity()
		s = acc.accumulate(s, u, values[u])
		s = acc.accumulate(s, v, values[v])
		for u != v {
			if depth[u] >= depth[v] {
				u = parents[u]
				s = acc.accumulate(s, u, values[u])
			} else {
				v = parents[v]
				s = acc.accumulate(s, v, values[v])
			}
		}
		out[e] = acc.finalize(s)
	}
	return out, nil
}
