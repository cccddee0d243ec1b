// Package cut implements spec.md §4.10's horizontal cut explorer: a
// preprocessing pass over a valued hierarchy that enumerates every
// distinct cut altitude from coarsest to finest (one stable sort of the
// internal nodes, O(n log n), then a linear scan) and answers
// from_index/from_altitude/from_num_regions queries, plus the
// leaf-level reconstruction helpers (labelisation_leaves,
// reconstruct_leaf_data, graph_cut) that turn a chosen cut into
// per-leaf labels or an edge-indicator on the original leaf graph.
//
// Grounded on lca/sparsetable.go's "do the expensive pass once at
// construction, answer queries in O(1)/O(log n) after" idiom, and on
// tree's own ComputeChildren two-pass counting style for the explorer
// construction's single linear scan.
package cut

import (
	"sort"

	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// CutRecord is one entry of the cut sequence: the number of regions
// the cut partitions the leaves into, and the altitude at (or just
// above) which that partition first becomes valid.
type CutRecord struct {
	NumRegions int
	Altitude   float64
}

// Explorer is a preprocessed valued hierarchy ready for repeated cut
// queries. Cuts are stored coarsest (the root, one region) first,
// finest (the most-split cut present in the hierarchy) last; region
// counts are non-decreasing along that order.
type Explorer struct {
	cuts []CutRecord
}

// NewExplorer preprocesses t under altitudes (spec.md §4.10 steps 1-3):
// internal node original ids are stably sorted by altitude (root-ties
// broken by original id, so the root — which always holds the
// tree-wide maximum altitude and the maximum id — sorts last among any
// altitude tie), then walked from coarsest to finest maintaining a
// running region count, incrementing by num_children(n)-1 each time a
// node n is "opened" (replaced by its children) as the threshold drops
// below its altitude. One cut record is committed per distinct
// altitude value. Requires t.ComputeChildren to have been called.
func NewExplorer(t *tree.Tree, altitudes []float64) (*Explorer, error) {
	if len(altitudes) != t.NumNodes() {
		return nil, herr.Wrap(herr.KindInvalidShape, "cut", "altitudes has %d entries, want %d", len(altitudes), t.NumNodes())
	}
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "cut", "ComputeChildren must be called before NewExplorer")
	}
	numLeaves := t.NumLeaves()
	numInternal := t.NumNodes() - numLeaves
	if numInternal == 0 {
		return nil, herr.Wrap(herr.KindMalformedTree, "cut", "tree has no internal nodes to cut")
	}

	ids := make([]int, numInternal)
	for i := range ids {
		ids[i] = numLeaves + i
	}
	sort.SliceStable(ids, func(a, b int) bool { return altitudes[ids[a]] < altitudes[ids[b]] })

	idx := len(ids) - 1
	regionCount := 1
	cuts := []CutRecord{{NumRegions: regionCount, Altitude: altitudes[ids[idx]]}}

	for idx >= 0 {
		currentAltitude := altitudes[ids[idx]]
		for idx >= 0 && altitudes[ids[idx]] == currentAltitude {
			nc, err := t.NumChildren(ids[idx])
			if err != nil {
				return nil, err
			}
			regionCount += nc - 1
			idx--
		}
		if idx < 0 {
			break
		}
		cuts = append(cuts, CutRecord{NumRegions: regionCount, Altitude: altitudes[ids[idx]]})
	}
	return &Explorer{cuts: cuts}, nil
}

// NumCuts returns how many distinct cuts the hierarchy has.
func (e *Explorer) NumCuts() int { return len(e.cuts) }

// FromIndex returns the i-th cut, 0 being the single-region root.
func (e *Explorer) FromIndex(i int) (CutRecord, error) {
	if i < 0 || i >= len(e.cuts) {
		return CutRecord{}, herr.Wrap(herr.KindOutOfRange, "cut", "cut index %d out of [0,%d)", i, len(e.cuts))
	}
	return e.cuts[i], nil
}

// FromAltitude returns the cut whose altitude is the greatest <= lambda.
func (e *Explorer) FromAltitude(lambda float64) (CutRecord, error) {
	// cuts are stored coarsest-to-finest, i.e. altitude descending, so
	// the first entry satisfying <= lambda is the one we want.
	i := sort.Search(len(e.cuts), func(i int) bool { return e.cuts[i].Altitude <= lambda })
	if i == len(e.cuts) {
		return CutRecord{}, herr.Wrap(herr.KindNotFound, "cut", "no cut with altitude <= %v", lambda)
	}
	return e.cuts[i], nil
}

// FromNumRegions returns the smallest cut with >= k regions when
// atLeast is true, or the largest cut with <= k regions when false,
// via binary search over the non-decreasing region-count sequence.
// With atLeast true and no cut reaching k regions, the finest cut is
// returned; with atLeast false and no cut at or below k regions, an
// error is returned.
func (e *Explorer) FromNumRegions(k int, atLeast bool) (CutRecord, error) {
	n := len(e.cuts)
	if atLeast {
		i := sort.Search(n, func(i int) bool { return e.cuts[i].NumRegions >= k })
		if i == n {
			i = n - 1
		}
		return e.cuts[i], nil
	}
	i := sort.Search(n, func(i int) bool { return e.cuts[i].NumRegions > k })
	if i == 0 {
		return CutRecord{}, herr.Wrap(herr.KindNotFound, "cut", "no cut with <= %d regions", k)
	}
	return e.cuts[i-1], nil
}

// CutNodes returns the maximal antichain of nodes with altitude <=
// lambda whose parent's altitude exceeds lambda (the root's parent
// altitude counting as +Inf; a leaf is always kept once reached) — the
// horizontal cut at threshold lambda,
// independent of Explorer (it walks t directly, so no preprocessing is
// required beyond ComputeChildren).
func CutNodes(t *tree.Tree, altitudes []float64, lambda float64) ([]int, error) {
	if len(altitudes) != t.NumNodes() {
		return nil, herr.Wrap(herr.KindInvalidShape, "cut", "altitudes has %d entries, want %d", len(altitudes), t.NumNodes())
	}
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "cut", "ComputeChildren must be called before CutNodes")
	}
	var nodes []int
	var walkErr error
	var walk func(i int)
	walk = func(i int) {
		if walkErr != nil {
			return
		}
		if t.IsLeaf(i) || altitudes[i] <= lambda {
			nodes = append(nodes, i)
			return
		}
		children, err := t.Children(i)
		if err != nil {
			walkErr = err
			return
		}
		for _, c := range children {
			walk(c)
		}
	}
	walk(t.Root())
	return nodes, walkErr
}

// LabelisationLeaves returns, for each leaf, the id of the cut node at
// threshold lambda that contains it.
func LabelisationLeaves(t *tree.Tree, altitudes []float64, lambda float64) ([]int, error) {
	nodes, err := CutNodes(t, altitudes, lambda)
	if err != nil {
		return nil, err
	}
	labels := make([]int, t.NumLeaves())
	var assignErr error
	var assign func(cutNode, i int)
	assign = func(cutNode, i int) {
		if assignErr != nil {
			return
		}
		if t.IsLeaf(i) {
			labels[i] = cutNode
			return
		}
		children, err := t.Children(i)
		if err != nil {
			assignErr = err
			return
		}
		for _, c := range children {
			assign(cutNode, c)
		}
	}
	for _, n := range nodes {
		assign(n, n)
	}
	return labels, assignErr
}

// ReconstructLeafData reads values (one entry per tree node) back down
// to per-leaf values through the cut at threshold lambda: leaf i's
// reconstructed value is values[cutNodeContaining(i)].
func ReconstructLeafData(t *tree.Tree, altitudes []float64, lambda float64, values []float64) ([]float64, error) {
	if len(values) != t.NumNodes() {
		return nil, herr.Wrap(herr.KindInvalidShape, "cut", "values has %d entries, want %d", len(values), t.NumNodes())
	}
	labels, err := LabelisationLeaves(t, altitudes, lambda)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = values[l]
	}
	return out, nil
}

// GraphCut projects the cut at threshold lambda onto leafGraph's edges
// (spec.md §4.10's "labelisation-to-cut via the L0 edge weighting"):
// an edge gets weight 1 when its endpoints fall in different cut
// regions, 0 otherwise.
func GraphCut(t *tree.Tree, altitudes []float64, lambda float64, leafGraph *graph.Graph) ([]float64, error) {
	labels, err := LabelisationLeaves(t, altitudes, lambda)
	if err != nil {
		return nil, err
	}
	out := make([]float64, leafGraph.NumEdges())
	for e := 0; e < leafGraph.NumEdges(); e++ {
		removed, err := leafGraph.IsRemoved(e)
		if err != nil {
			return nil, err
		}
		if removed {
			continue
		}
		u, v, err := leafGraph.EdgeEndpoints(e)
		if err != nil {
			return nil, err
		}
		if labels[u] != labels[v] {
			out[e] = 1
		}
	}
	return out, nil
}
