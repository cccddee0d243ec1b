// Package align implements spec.md §4.14's alignment operations:
// projecting a fine vertex labelling onto a coarser one by majority
// co-occurrence, and using that projection to pull a coarse
// hierarchy's altitudes down onto a fine region adjacency graph's
// edges as a saliency map.
//
// Grounded on tree.Tree.LowestCommonAncestor (already implemented for
// spec.md §3.3's ancestor queries) for the LCA step the hierarchy
// aligner needs, and on qfz's RAG-construction style (iterate edges,
// look up each endpoint's label) for ProjectSaliency's edge loop.
package align

import (
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// Project computes spec.md §4.14's π: [0,n1) -> [0,n2), mapping every
// fine label r to the coarse label c with the largest co-occurrence
// count |{v : L1(v)=r, L2(v)=c}|. fineLabels and coarseLabels must have
// the same length (one label per vertex of the shared ground set).
// Ties are broken by the smallest coarse label, for determinism.
func Project(fineLabels, coarseLabels []int, numFine, numCoarse int) ([]int, error) {
	if len(fineLabels) != len(coarseLabels) {
		return nil, herr.Wrap(herr.KindInvalidShape, "align", "fineLabels has %d entries, coarseLabels has %d", len(fineLabels), len(coarseLabels))
	}
	counts := make([][]int, numFine)
	for r := range counts {
		counts[r] = make([]int, numCoarse)
	}
	for v, r := range fineLabels {
		if r < 0 || r >= numFine {
			return nil, herr.Wrap(herr.KindOutOfRange, "align", "fineLabels[%d]=%d out of [0,%d)", v, r, numFine)
		}
		c := coarseLabels[v]
		if c < 0 || c >= numCoarse {
			return nil, herr.Wrap(herr.KindOutOfRange, "align", "coarseLabels[%d]=%d out of [0,%d)", v, c, numCoarse)
		}
		counts[r][c]++
	}

	pi := make([]int, numFine)
	for r := 0; r < numFine; r++ {
		best, bestCount := 0, -1
		for c := 0; c < numCoarse; c++ {
			if counts[r][c] > bestCount {
				best, bestCount = c, counts[r][c]
			}
		}
		pi[r] = best
	}
	return pi, nil
}

// ProjectSaliency implements spec.md §4.14's hierarchy aligner: given a
// fine region adjacency graph fineRAG (one vertex per fine supervertex)
// and a coarse hierarchy (coarseTree, coarseAltitudes) over a coarser
// labelling of the same ground set, projects the coarse hierarchy's
// altitudes onto every edge of fineRAG as
// saliency(edge) = altitude(LCA_coarse(pi(source), pi(target))), where
// pi is the fine-to-coarse label projection from Project.
func ProjectSaliency(fineRAG *graph.Graph, coarseTree *tree.Tree, coarseAltitudes []float64, pi []int) ([]float64, error) {
	if len(coarseAltitudes) != coarseTree.NumNodes() {
		return nil, herr.Wrap(herr.KindInvalidShape, "align", "coarseAltitudes has %d entries, want %d", len(coarseAltitudes), coarseTree.NumNodes())
	}
	if len(pi) != fineRAG.NumVertices() {
		return nil, herr.Wrap(herr.KindInvalidShape, "align", "pi has %d entries, want %d fine vertices", len(pi), fineRAG.NumVertices())
	}

	saliency := make([]float64, fineRAG.NumEdges())
	for e := 0; e < fineRAG.NumEdges(); e++ {
		removed, err := fineRAG.IsRemoved(e)
		if err != nil {
			return nil, err
		}
		if removed {
			continue
		}
		u, v, err := fineRAG.EdgeEndpoints(e)
		if err != nil {
			return nil, err
		}
		if u < 0 || u >= len(pi) || v < 0 || v >= len(pi) {
			return nil, herr.Wrap(herr.KindOutOfRange, "align", "edge %d endpoints (%d,%d) out of range for pi", e, u, v)
		}
		lca, err := coarseTree.LowestCommonAncestor(pi[u], pi[v])
		if err != nil {
			return nil, err
		}
		saliency[e] = coarseAltitudes[lca]
	}
	return saliency, nil
}
