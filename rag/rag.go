// Package rag implements the region adjacency graph (RAG) of spec.md
// §3.4/§4.8: the quotient graph obtained from an edge-weighted graph
// and a vertex labeling (one RAG vertex per connected label region),
// plus back-projection and grouped accumulation of values defined on
// RAG vertices/edges back onto the original index space.
//
// Grounded on core/graph.go's adjacency-list construction loop
// (build-by-appending-edges) and uf's union-find for component
// discovery, combined into the canonical-edge-index dedup rule spec.md
// §4.8 requires: for each pair of adjacent regions exactly one RAG
// edge is created, keyed by the lowest original edge index seen for
// that pair.
package rag

import (
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/treeacc"
	"github.com/higra-go/higra/uf"
)

// RAG is a quotient graph plus the map from original vertex ids to RAG
// vertex ids and the map from original edge ids to RAG edge ids
// (Invalid for edges internal to a region, i.e. not crossing the cut).
type RAG struct {
	Graph        *graph.Graph
	VertexMap    []int // len == original vertex count
	EdgeMap      []int // len == original edge count; graph.Invalid for non-crossing edges
	NumRegions   int
}

// FromLabeling builds a RAG from an explicit vertex labeling: labels
// need not be contiguous from 0, but every label in [0, labels range)
// that is used becomes exactly one RAG vertex keyed by its first
// occurrence order.
func FromLabeling(g *graph.Graph, labels []int) (*RAG, error) {
	if len(labels) != g.NumVertices() {
		return nil, herr.Wrap(herr.KindInvalidShape, "rag", "labels has %d entries, want %d", len(labels), g.NumVertices())
	}
	vertexMap, numRegions := compactLabels(labels)
	return build(g, vertexMap, numRegions)
}

// FromCut builds a RAG from a graph cut: edges with a nonzero weight
// are cut edges: regions are the connected components of the subgraph
// induced by zero-weight edges (spec.md §4.8 "From graph cut").
func FromCut(g *graph.Graph, edgeWeights []float64) (*RAG, error) {
	if len(edgeWeights) != g.NumEdges() {
		return nil, herr.Wrap(herr.KindInvalidShape, "rag", "edgeWeights has %d entries, want %d", len(edgeWeights), g.NumEdges())
	}
	dsu := uf.Make(g.NumVertices())
	for e := 0; e < g.NumEdges(); e++ {
		removed, err := g.IsRemoved(e)
		if err != nil {
			return nil, err
		}
		if removed || edgeWeights[e] != 0 {
			continue
		}
		u, v, err := g.EdgeEndpoints(e)
		if err != nil {
			return nil, err
		}
		dsu.Union(u, v)
	}
	labels := make([]int, g.NumVertices())
	for v := 0; v < g.NumVertices(); v++ {
		labels[v] = dsu.Find(v)
	}
	vertexMap, numRegions := compactLabels(labels)
	return build(g, vertexMap, numRegions)
}

// compactLabels renumbers arbitrary label ids to a dense [0,k) range,
// assigning ids in first-occurrence order for determinism.
func compactLabels(labels []int) ([]int, int) {
	assigned := make(map[int]int)
	out := make([]int, len(labels))
	next := 0
	for i, l := range labels {
		id, ok := assigned[l]
		if !ok {
			id = next
			assigned[l] = id
			next++
		}
		out[i] = id
	}
	return out, next
}

// build applies spec.md §4.8's canonical-edge-index dedup rule: edges
// are scanned in increasing original-index order, and the first live
// edge crossing an unordered region pair creates that pair's RAG edge
// (remembered in the created map); every later edge crossing the same
// pair is mapped onto it. This guarantees exactly one RAG edge per
// adjacent region pair, keyed by the pair's lowest original edge index.
func build(g *graph.Graph, vertexMap []int, numRegions int) (*RAG, error) {
	out, err := graph.New(numRegions)
	if err != nil {
		return nil, err
	}
	edgeMap := make([]int, g.NumEdges())
	for i := range edgeMap {
		edgeMap[i] = graph.Invalid
	}

	type pairKey struct{ a, b int }
	created := make(map[pairKey]int)

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
		ru, rv := vertexMap[u], vertexMap[v]
		if ru == rv {
			continue
		}
		key := pairKey{ru, rv}
		if key.a > key.b {
			key.a, key.b = key.b, key.a
		}
		if ragEdge, ok := created[key]; ok {
			edgeMap[e] = ragEdge
			continue
		}
		ragEdge, err := out.AddEdge(ru, rv)
		if err != nil {
			return nil, err
		}
		created[key] = ragEdge
		edgeMap[e] = ragEdge
	}

	return &RAG{Graph: out, VertexMap: vertexMap, EdgeMap: edgeMap, NumRegions: numRegions}, nil
}

// BackProjectWeights copies rag_values[map[i]] onto each original
// index i, leaving an identity value where map[i] == graph.Invalid
// (spec.md §4.8's rag_back_project_weights).
func BackProjectWeights(indexMap []int, ragValues []float64, identity float64) []float64 {
	out := make([]float64, len(indexMap))
	for i, m := range indexMap {
		if m == graph.Invalid {
			out[i] = identity
			continue
		}
		out[i] = ragValues[m]
	}
	return out
}

// Accumulate groups values by indexMap[i] and reduces each group with
// acc (spec.md §4.8's rag_accumulate). groupCount must be the number
// of distinct groups (VertexMap's NumRegions, or Graph.NumEdges() for
// edges); values at graph.Invalid indices are skipped.
func Accumulate(indexMap []int, values []float64, groupCount int, acc treeacc.Accumulator) []float64 {
	groups := make([][]float64, groupCount)
	for i, m := range indexMap {
		if m == graph.Invalid {
			continue
		}
		groups[m] = append(groups[m], values[i])
	}
	out := make([]float64, groupCount)
	for g, vals := range groups {
		out[g] = acc.Reduce(vals)
	}
	return out
}
