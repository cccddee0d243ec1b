// Package bpt implements the canonical binary partition tree of
// spec.md §4.3: a Kruskal-style construction over a stably sorted edge
// list, maintaining a union-find plus a component→tree-node map, with
// two entry points distinguished by how a disconnected input graph is
// handled — Canonical fails with Disconnected, MinimumSpanningForest
// reports a forest by rooting every surviving component under one
// synthetic node at +Inf altitude.
//
// Grounded on prim_kruskal/kruskal.go's sort-then-union-find merge
// loop, adapted from "accumulate a minimum spanning tree edge list"
// to "accumulate a binary merge tree", since every successful union in
// Kruskal's algorithm corresponds exactly to one internal BPT node.
package bpt

import (
	"math"

	"github.com/google/uuid"

	"github.com/higra-go/higra/config"
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
	"github.com/higra-go/higra/uf"
)

// Result is the output of building a canonical BPT: the tree itself,
// per-node altitudes, the minimum spanning tree/forest as a graph over
// the same vertex set, and MSTEdgeMap[i] giving the original edge
// index consumed by MST edge i. BuildID is a generated correlation key
// for log lines about this particular build; it plays no role in the
// tree's structure or algorithmic determinism.
type Result struct {
	Tree       *tree.Tree
	Altitudes  []float64
	MST        *graph.Graph
	MSTEdgeMap []int
	// NumComponents is the number of connected components found (1 for
	// a connected graph). MinimumSpanningForest sets this > 1 when a
	// synthetic root was introduced; Canonical always returns 1.
	NumComponents int
	BuildID       uuid.UUID
}

// mergeStep is one Kruskal-style union: the fused edge, the new node id it
// creates, and the two tree nodes it reparents.
type mergeStep struct {
	edge        int
	newNode     int
	childA      int
	childB      int
}

// runKruskal performs the shared sort+union-find scan, stopping after
// at most n-1 merges, and returns every merge it performed plus the
// final per-component representative→tree-node map (compRoot) so
// callers can tell whether the graph was fully connected.
func runKruskal(g *graph.Graph, w []float64) ([]mergeStep, []int, *uf.UnionFind, error) {
	n := g.NumVertices()
	if len(w) != g.NumEdges() {
		return nil, nil, nil, herr.Wrap(herr.KindInvalidShape, "bpt", "weights has %d entries, want %d", len(w), g.NumEdges())
	}

	order := graph.StableSortByWeight(w)
	dsu := uf.Make(n)
	compRoot := make([]int, n)
	for i := range compRoot {
		compRoot[i] = i
	}

	var merges []mergeStep
	nextID := n
	for _, e := range order {
		if len(merges) == n-1 {
			break
		}
		u, v, err := g.EdgeEndpoints(e)
		if err != nil {
			return nil, nil, nil, err
		}
		cu, cv := dsu.Find(u), dsu.Find(v)
		if cu == cv {
			continue
		}
		m := nextID
		nextID++
		nodeU, nodeV := compRoot[cu], compRoot[cv]
		newRoot := dsu.Link(cu, cv)
		compRoot[newRoot] = m
		merges = append(merges, mergeStep{edge: e, newNode: m, childA: nodeU, childB: nodeV})
	}
	return merges, compRoot, dsu, nil
}

// Canonical builds the canonical BPT of g under edge weights w,
// returning herr.ErrDisconnected if fewer than n-1 merges occur.
func Canonical(g *graph.Graph, w []float64) (*Result, error) {
	n := g.NumVertices()
	merges, _, _, err := runKruskal(g, w)
	if err != nil {
		return nil, err
	}
	if len(merges) != n-1 {
		return nil, herr.Wrap(herr.KindDisconnected, "bpt", "graph has %d vertices but only %d merges occurred; not connected", n, len(merges))
	}
	return assemble(g, w, merges, n, nil)
}

// MinimumSpanningForest builds the same Kruskal-style merge sequence as
// Canonical but tolerates a disconnected graph: every connected
// component's unmerged top node is rooted under one synthetic node
// whose altitude is +Inf, so the result remains a single-rooted
// tree.Tree per spec.md §3.3 while still exposing NumComponents.
func MinimumSpanningForest(g *graph.Graph, w []float64) (*Result, error) {
	n := g.NumVertices()
	merges, compRoot, dsu, err := runKruskal(g, w)
	if err != nil {
		return nil, err
	}

	var componentTops []int
	seen := make(map[int]bool)
	for v := 0; v < n; v++ {
		r := dsu.Find(v)
		if !seen[r] {
			seen[r] = true
			componentTops = append(componentTops, compRoot[r])
		}
	}
	return assemble(g, w, merges, n, componentTops)
}

// assemble lays out the parents/altitudes arrays from a completed
// merge sequence. When componentTops has more than one entry, a
// synthetic root is appended connecting all of them at +Inf altitude.
func assemble(g *graph.Graph, w []float64, merges []mergeStep, n int, componentTops []int) (*Result, error) {
	maxNodes := n + len(merges) + 1
	parents := make([]int, n, maxNodes)
	for i := range parents {
		parents[i] = i
	}
	altitudes := make([]float64, n, maxNodes)

	mst, err := graph.New(n)
	if err != nil {
		return nil, err
	}
	mstEdgeMap := make([]int, 0, len(merges))

	for _, step := range merges {
		parents = append(parents, step.newNode)
		altitudes = append(altitudes, w[step.edge])
		parents[step.childA] = step.newNode
		parents[step.childB] = step.newNode

		u, v, err := g.EdgeEndpoints(step.edge)
		if err != nil {
			return nil, err
		}
		if _, err := mst.AddEdge(u, v); err != nil {
			return nil, err
		}
		mstEdgeMap = append(mstEdgeMap, step.edge)
	}

	numComponents := 1
	if len(componentTops) > 1 {
		numComponents = len(componentTops)
		superRoot := len(parents)
		parents = append(parents, superRoot)
		altitudes = append(altitudes, math.Inf(1))
		for _, top := range componentTops {
			parents[top] = superRoot
		}
	}

	t, err := tree.New(parents, n, tree.PartitionTree)
	if err != nil {
		return nil, err
	}
	buildID := uuid.New()
	config.Logger().WithFields(map[string]interface{}{
		"build_id":       buildID,
		"num_vertices":   n,
		"num_merges":     len(merges),
		"num_components": numComponents,
	}).Debug("bpt: build complete")
	return &Result{Tree: t, Altitudes: altitudes, MST: mst, MSTEdgeMap: mstEdgeMap, NumComponents: numComponents, BuildID: buildID}, nil
}
