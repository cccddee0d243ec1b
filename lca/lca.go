// Package lca implements the O(1)-query lowest-common-ancestor oracles
// of spec.md §4.6: an Euler tour of the tree reduces LCA queries to a
// range-minimum query (RMQ) over per-visit depths, solved either by a
// full sparse table (O(N log N) preprocessing, O(1) query) or by a
// block-decomposed sparse table (O(N) preprocessing, O(B) query).
//
// Grounded on dijkstra's precompute-then-query separation (build a
// reusable structure once, then answer many queries against it) and on
// gridgraph's row-major index bookkeeping style, adapted to the
// Euler-tour + sparse-table RMQ construction a dedicated LCA oracle
// requires. Persisted state (spec.md §9) is plain arrays so an Oracle
// can be exported/imported without re-touring the source tree.
package lca

import (
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// Oracle answers LowestCommonAncestor queries in O(1) (NewSparseTable)
// or O(blockSize) (NewSparseTableBlock) after preprocessing. An Oracle
// does not keep a reference to the tree it was built from; callers
// must keep that tree alive for as long as returned node ids are
// meaningful (spec.md §9).
type Oracle struct {
	tour       []int // node id visited at each Euler-tour step
	depth      []int // depth[v] = depth of node v; the depth of tour step i is depth[tour[i]]
	firstVisit []int // first tour index at which node id appears

	// full sparse table: sparseIdx[k][i] = tour-index of the minimum
	// depth in the range [i, i+2^k). Nil when using the block strategy.
	sparseIdx [][]int

	// block-decomposed strategy: nil when using the full sparse table.
	blockSize     int
	prefixMinIdx  []int // per tour-index: min-depth tour-index from this block's start to here
	suffixMinIdx  []int // per tour-index: min-depth tour-index from here to this block's end
	blockMinIdx   []int // per block: tour-index of that block's minimum depth
	blockSparse   [][]int
}

// Export is the opaque-but-inspectable persisted state of spec.md §9:
// enough arrays to reconstruct an Oracle without re-touring the tree.
type Export struct {
	Tour         []int
	Depth        []int
	FirstVisit   []int
	SparseIdx    [][]int
	BlockSize    int
	PrefixMinIdx []int
	SuffixMinIdx []int
	BlockMinIdx  []int
	BlockSparse  [][]int
}

// Export snapshots o's internal arrays for out-of-process caching.
func (o *Oracle) Export() Export {
	return Export{
		Tour: o.tour, Depth: o.depth, FirstVisit: o.firstVisit,
		SparseIdx: o.sparseIdx, BlockSize: o.blockSize,
		PrefixMinIdx: o.prefixMinIdx, SuffixMinIdx: o.suffixMinIdx,
		BlockMinIdx: o.blockMinIdx, BlockSparse: o.blockSparse,
	}
}

// Import reconstructs an Oracle from a prior Export without touching
// any tree; the caller is responsible for ensuring the export matches
// the tree it will be queried against.
func Import(e Export) *Oracle {
	return &Oracle{
		tour: e.Tour, depth: e.Depth, firstVisit: e.FirstVisit,
		sparseIdx: e.SparseIdx, blockSize: e.BlockSize,
		prefixMinIdx: e.PrefixMinIdx, suffixMinIdx: e.SuffixMinIdx,
		blockMinIdx: e.BlockMinIdx, blockSparse: e.BlockSparse,
	}
}

// eulerTour walks t depth-first (ComputeChildren required) and
// returns the visit sequence (a node is re-emitted every time the walk
// returns to it after finishing a child's subtree), per-node depth
// and each node's first-visit tour index.
func eulerTour(t *tree.Tree) ([]int, []int, []int, error) {
	if !t.ChildrenComputed() {
		return nil, nil, nil, herr.Wrap(herr.KindPreconditionFailed, "lca", "ComputeChildren must be called before building an Euler tour")
	}
	n := t.NumNodes()
	tour := make([]int, 0, 2*n-1)
	depth := make([]int, n)
	firstVisit := make([]int, n)
	for i := range firstVisit {
		firstVisit[i] = -1
	}

	var visitErr error
	var walk func(node, d int)
	walk = func(node, d int) {
		if visitErr != nil {
			return
		}
		depth[node] = d
		tour = append(tour, node)
		if firstVisit[node] == -1 {
			firstVisit[node] = len(tour) - 1
		}
		children, err := t.Children(node)
		if err != nil {
			visitErr = err
			return
		}
		for _, c := range children {
			walk(c, d+1)
			tour = append(tour, node)
		}
	}
	walk(t.Root(), 0)
	if visitErr != nil {
		return nil, nil, nil, visitErr
	}
	return tour, depth, firstVisit, nil
}

func (o *Oracle) queryRangeMinIndex(l, r int) int {
	if o.sparseIdx != nil {
		return o.sparseRangeMin(l, r)
	}
	return o.blockRangeMin(l, r)
}

// LowestCommonAncestor returns the LCA of u and v in O(1) (full sparse
// table) or O(blockSize) (block variant).
func (o *Oracle) LowestCommonAncestor(u, v int) (int, error) {
	if u < 0 || u >= len(o.firstVisit) || v < 0 || v >= len(o.firstVisit) {
		return 0, herr.Wrap(herr.KindOutOfRange, "lca", "node id out of range")
	}
	l, r := o.firstVisit[u], o.firstVisit[v]
	if l > r {
		l, r = r, l
	}
	idx := o.queryRangeMinIndex(l, r)
	return o.tour[idx], nil
}

// LowestCommonAncestorPairs answers LCA elementwise over two equal-
// length vertex lists (spec.md §4.6's lca(vertices_a, vertices_b)).
func (o *Oracle) LowestCommonAncestorPairs(a, b []int) ([]int, error) {
	if len(a) != len(b) {
		return nil, herr.Wrap(herr.KindInvalidShape, "lca", "vertex lists have mismatched lengths %d and %d", len(a), len(b))
	}
	out := make([]int, len(a))
	for i := range a {
		l, err := o.LowestCommonAncestor(a[i], b[i])
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

// LowestCommonAncestorEdges answers LCA for every live edge of g,
// treating edge endpoints as tree leaves (spec.md §4.6's
// lca(edge_iterator)).
func (o *Oracle) LowestCommonAncestorEdges(g *graph.Graph) ([]int, error) {
	out := make([]int, g.NumEdges())
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
		l, err := o.LowestCommonAncestor(u, v)
		if err != nil {
			return nil, err
		}
		out[e] = l
	}
	return out, nil
}
