// Package graph implements the undirected, edge-indexed graph of
// spec.md §3.1: vertices 0..n-1, edges carrying a stable integer index
// assigned at insertion time, and per-vertex incidence lists.
//
// This generalizes core/types.go's Graph (string-keyed vertices/edges,
// nested adjacency maps) to the systems-style, integer-indexed
// representation the hierarchy algorithms need: canonical BPT and the
// generic BPT builder both rely on edge index being a stable, densely
// packed integer so altitudes/weights/mst_edge_map can be plain slices
// rather than maps.
package graph

import (
	"github.com/higra-go/higra/herr"
)

// Invalid is the sentinel used for tombstoned or absent endpoints
// (spec.md §3.1 "removing an edge sets its endpoints to the sentinel
// INVALID"). It is exported for callers that need to compare against
// it directly (e.g. RAG vertex/edge maps in package rag).
const Invalid = -1

// edge is the internal representation of one graph edge. A removed edge
// becomes a tombstone with From == To == Invalid but keeps its slot (and
// index) so edge indices never shift.
type edge struct {
	from, to int
}

// Graph is an undirected graph on vertices [0,n) with stably-indexed
// edges. It is not safe for concurrent mutation (spec.md §5: core
// algorithms are synchronous and single-threaded from the caller's
// point of view; no internal locking is needed).
type Graph struct {
	n         int
	edges     []edge
	incidence [][]int // incidence[v] = indices of edges touching v, insertion order
	liveEdges int      // number of non-tombstoned edges, for EdgeCount
}

// New creates an empty graph on n vertices (no edges yet). n must be ≥ 0.
func New(n int) (*Graph, error) {
	if n < 0 {
		return nil, herr.Wrap(herr.KindInvalidShape, "graph", "vertex count %d must be >= 0", n)
	}
	return &Graph{n: n, incidence: make([][]int, n)}, nil
}

// NumVertices returns n.
func (g *Graph) NumVertices() int { return g.n }

// NumEdges returns the number of edges ever added, tombstones included
// — this is the count that determines valid edge indices [0, NumEdges()).
// Use EdgeCount for the number of live (non-removed) edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// EdgeCount returns the number of live (non-tombstoned) edges.
func (g *Graph) EdgeCount() int { return g.liveEdges }

func (g *Graph) checkVertex(v int) error {
	if v < 0 || v >= g.n {
		return herr.Wrap(herr.KindOutOfRange, "graph", "vertex %d out of [0,%d)", v, g.n)
	}
	return nil
}

func (g *Graph) checkEdge(e int) error {
	if e < 0 || e >= len(g.edges) {
		return herr.Wrap(herr.KindOutOfRange, "graph", "edge %d out of [0,%d)", e, len(g.edges))
	}
	return nil
}

// AddEdge appends a new edge {from,to} and returns its stable index
// (always len(edges) before the call, i.e. insertion position per
// spec.md §3.1). Self-loops are permitted; parallel edges are permitted
// (the graph does not enforce simplicity — callers such as builder-style
// constructors are responsible for that policy if they want it).
func (g *Graph) AddEdge(from, to int) (int, error) {
	if err := g.checkVertex(from); err != nil {
		return Invalid, err
	}
	if err := g.checkVertex(to); err != nil {
		return Invalid, err
	}
	idx := len(g.edges)
	g.edges = append(g.edges, edge{from: from, to: to})
	g.incidence[from] = append(g.incidence[from], idx)
	if to != from {
		g.incidence[to] = append(g.incidence[to], idx)
	}
	g.liveEdges++
	return idx, nil
}

// RemoveEdge tombstones edge e: its endpoints become Invalid and it is
// dropped from both incidence lists, but its index is never reused and
// NumEdges() is unaffected (spec.md §3.1).
func (g *Graph) RemoveEdge(e int) error {
	if err := g.checkEdge(e); err != nil {
		return err
	}
	ed := g.edges[e]
	if ed.from == Invalid && ed.to == Invalid {
		return herr.Wrap(herr.KindOutOfRange, "graph", "edge %d already removed", e)
	}
	g.incidence[ed.from] = removeFirst(g.incidence[ed.from], e)
	if ed.to != ed.from {
		g.incidence[ed.to] = removeFirst(g.incidence[ed.to], e)
	}
	g.edges[e] = edge{from: Invalid, to: Invalid}
	g.liveEdges--
	return nil
}

func removeFirst(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// EdgeEndpoints returns the (from, to) pair stored at edge index e, in
// insertion order (from is whichever endpoint was given first to
// AddEdge). Returns (Invalid, Invalid) for a tombstoned edge.
func (g *Graph) EdgeEndpoints(e int) (int, int, error) {
	if err := g.checkEdge(e); err != nil {
		return Invalid, Invalid, err
	}
	ed := g.edges[e]
	return ed.from, ed.to, nil
}

// IsRemoved reports whether edge e is a tombstone.
func (g *Graph) IsRemoved(e int) (bool, error) {
	if err := g.checkEdge(e); err != nil {
		return false, err
	}
	ed := g.edges[e]
	return ed.from == Invalid && ed.to == Invalid, nil
}

// Degree returns |incidence(v)| (spec.md §3.1: "degree(v) = |incidence(v)|").
// For an undirected edge, in-, out- and total degree coincide, so this is
// the only degree notion this package exposes.
func (g *Graph) Degree(v int) (int, error) {
	if err := g.checkVertex(v); err != nil {
		return 0, err
	}
	return len(g.incidence[v]), nil
}

// IncidentEdges returns the ordered list of edge indices touching v (the
// order edges were added to v, self-loops appearing once). The returned
// slice aliases internal storage and must not be mutated by the caller.
func (g *Graph) IncidentEdges(v int) ([]int, error) {
	if err := g.checkVertex(v); err != nil {
		return nil, err
	}
	return g.incidence[v], nil
}

// Neighbor returns the vertex reached by walking edge e away from v
// (i.e. the endpoint of e that is not v, or v itself for a self-loop).
// v must be one of e's endpoints.
func (g *Graph) Neighbor(v, e int) (int, error) {
	from, to, err := g.EdgeEndpoints(e)
	if err != nil {
		return Invalid, err
	}
	switch v {
	case from:
		return to, nil
	case to:
		return from, nil
	default:
		return Invalid, herr.Wrap(herr.KindOutOfRange, "graph", "vertex %d is not incident to edge %d", v, e)
	}
}

// Neighbors returns the distinct vertices adjacent to v (self-loops
// excluded), in first-encounter order over v's incidence list.
func (g *Graph) Neighbors(v int) ([]int, error) {
	inc, err := g.IncidentEdges(v)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]struct{}, len(inc))
	out := make([]int, 0, len(inc))
	for _, e := range inc {
		u, _ := g.Neighbor(v, e)
		if u == v {
			continue // self-loop contributes no distinct neighbour
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out, nil
}
