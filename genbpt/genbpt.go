// Package genbpt implements the generic, heap-driven binary partition
// tree builder of spec.md §4.4: a mergeable-heap-driven agglomeration
// loop that repeatedly fuses the endpoints of the globally smallest
// still-active edge, delegating the new edge weight for every
// neighbour of the fused region to a pluggable Linkage callback.
//
// Grounded on prim_kruskal/kruskal.go's "pop smallest, check still
// valid, act" loop shape, generalized from Kruskal's static sorted
// edge list to a dynamically evolving working graph whose edge set
// changes after every merge — fibheap.Heap (package fibheap) is the
// mergeable priority queue spec.md names, used here as an insert +
// extract-min queue with lazy tombstone-skip on pop (spec.md's own
// wording, "pop the minimum active edge... if still active", is
// exactly the lazy-deletion pattern this implements).
package genbpt

import (
	"github.com/higra-go/higra/config"
	"github.com/higra-go/higra/fibheap"
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// NeighborRecord describes one neighbour of a freshly merged region,
// per spec.md §4.4's linkage callback contract. NumEdges is 1 when the
// neighbour was only adjacent to one of the two merged nodes, 2 when
// it was adjacent to both (in which case SecondEdgeIndex/
// SecondEdgeWeight are meaningful). The callback must set
// NewEdgeWeight; NewEdgeIndex is filled in by the builder before the
// callback is invoked, since the consolidated edge is created first.
type NeighborRecord struct {
	NumEdges         int
	FirstEdgeIndex   int
	FirstEdgeWeight  float64
	SecondEdgeIndex  int // -1 when NumEdges == 1
	SecondEdgeWeight float64
	Neighbor         int
	NewEdgeWeight    float64
	NewEdgeIndex     int
}

// Linkage is the pluggable merge rule of spec.md §4.4.
type Linkage interface {
	// Init is called once before the agglomeration loop starts, given
	// the vertex count and the graph's initial edge weights.
	Init(n int, w []float64)
	// Merge is called once per successful merge: a and b are the tree
	// nodes being fused by an edge of weight poppedWeight and
	// working-graph index poppedEdgeIndex (for an input edge, its
	// position among g's live edges, equal to the caller's own index
	// when g has no removed edges; for a consolidated edge, the
	// NewEdgeIndex it received when it was created); newNode is the id
	// assigned to the fused
	// region. Merge must set NewEdgeWeight on every entry of recs, and
	// returns the altitude assigned to newNode.
	Merge(a, b, newNode int, poppedWeight float64, poppedEdgeIndex int, recs []NeighborRecord) float64
}

// Build runs the generic heap-driven BPT construction of spec.md §4.4
// over g with initial edge weights w, using lk to compute every new
// edge's weight and every merge's altitude. Returns Disconnected if g
// is not connected.
func Build(g *graph.Graph, w []float64, lk Linkage) (*tree.Tree, []float64, error) {
	n := g.NumVertices()
	if len(w) != g.NumEdges() {
		return nil, nil, herr.Wrap(herr.KindInvalidShape, "genbpt", "weights has %d entries, want %d", len(w), g.NumEdges())
	}
	maxNodes := 2*n - 1
	working, err := graph.New(maxNodes)
	if err != nil {
		return nil, nil, err
	}

	workingWeights := make([]float64, 0, g.NumEdges())
	h := fibheap.New()
	for e := 0; e < g.NumEdges(); e++ {
		removed, err := g.IsRemoved(e)
		if err != nil {
			return nil, nil, err
		}
		if removed {
			continue
		}
		u, v, err := g.EdgeEndpoints(e)
		if err != nil {
			return nil, nil, err
		}
		idx, err := working.AddEdge(u, v)
		if err != nil {
			return nil, nil, err
		}
		workingWeights = append(workingWeights, w[e])
		h.Insert(w[e], idx)
	}

	lk.Init(n, w)

	parents := make([]int, n, maxNodes)
	for i := range parents {
		parents[i] = i
	}
	altitudes := make([]float64, n, maxNodes)
	active := make([]bool, maxNodes)
	for v := 0; v < n; v++ {
		active[v] = true
	}

	nextID := n
	merges := 0
	for merges < n-1 && h.Len() > 0 {
		top := h.ExtractMin()
		e := top.Value().(int)
		removed, err := working.IsRemoved(e)
		if err != nil {
			return nil, nil, err
		}
		if removed {
			continue
		}
		a, b, err := working.EdgeEndpoints(e)
		if err != nil {
			return nil, nil, err
		}
		if !active[a] || !active[b] {
			continue
		}
		poppedWeight := top.Key()
		if err := working.RemoveEdge(e); err != nil {
			return nil, nil, err
		}

		recs, consumed, err := gatherNeighbors(working, workingWeights, a, b)
		if err != nil {
			return nil, nil, err
		}

		m := nextID
		nextID++
		parents = append(parents, m)

		// Create the consolidated edges first and assign NewEdgeIndex,
		// since spec.md §4.4 lists new_edge_index as a field already
		// present on the record the callback receives (the callback
		// only fills new_edge_weight).
		for i := range recs {
			idx, err := working.AddEdge(m, recs[i].Neighbor)
			if err != nil {
				return nil, nil, err
			}
			recs[i].NewEdgeIndex = idx
			workingWeights = append(workingWeights, 0)
		}

		altitude := lk.Merge(a, b, m, poppedWeight, e, recs)
		altitudes = append(altitudes, altitude)
		parents[a] = m
		parents[b] = m
		active[a], active[b] = false, false
		active[m] = true

		for i := range recs {
			workingWeights[recs[i].NewEdgeIndex] = recs[i].NewEdgeWeight
			h.Insert(recs[i].NewEdgeWeight, recs[i].NewEdgeIndex)
		}
		for _, ce := range consumed {
			if err := working.RemoveEdge(ce); err != nil {
				return nil, nil, err
			}
		}
		merges++
	}

	if merges != n-1 {
		return nil, nil, herr.Wrap(herr.KindDisconnected, "genbpt", "graph has %d vertices but only %d merges occurred; not connected", n, merges)
	}
	t, err := tree.New(parents, n, tree.PartitionTree)
	if err != nil {
		return nil, nil, err
	}
	config.Logger().WithFields(map[string]interface{}{
		"num_vertices": n,
		"num_merges":   merges,
	}).Debug("genbpt: build complete")
	return t, altitudes, nil
}

// gatherNeighbors builds the distinct-neighbour record list of
// spec.md §4.4 for the pair (a,b) about to be fused, deduplicating
// parallel edges and reporting, for each neighbour, every consumed
// original edge index (1 or 2 of them) so the caller can tombstone
// them once the callback has read their weights.
func gatherNeighbors(g *graph.Graph, weights []float64, a, b int) ([]NeighborRecord, []int, error) {
	type slot struct{ fromA, fromB int }
	byNeighbor := make(map[int]*slot)
	var order []int

	collect := func(v, other int) error {
		inc, err := g.IncidentEdges(v)
		if err != nil {
			return err
		}
		for _, e := range inc {
			removed, err := g.IsRemoved(e)
			if err != nil {
				return err
			}
			if removed {
				continue
			}
			nb, err := g.Neighbor(v, e)
			if err != nil {
				return err
			}
			if nb == other {
				continue
			}
			s, ok := byNeighbor[nb]
			if !ok {
				s = &slot{fromA: -1, fromB: -1}
				byNeighbor[nb] = s
				order = append(order, nb)
			}
			if v == a {
				s.fromA = e
			} else {
				s.fromB = e
			}
		}
		return nil
	}
	if err := collect(a, b); err != nil {
		return nil, nil, err
	}
	if err := collect(b, a); err != nil {
		return nil, nil, err
	}

	recs := make([]NeighborRecord, 0, len(order))
	var consumed []int
	for _, nb := range order {
		s := byNeighbor[nb]
		rec := NeighborRecord{Neighbor: nb, SecondEdgeIndex: -1}
		switch {
		case s.fromA != -1 && s.fromB != -1:
			rec.NumEdges = 2
			rec.FirstEdgeIndex, rec.FirstEdgeWeight = s.fromA, weights[s.fromA]
			rec.SecondEdgeIndex, rec.SecondEdgeWeight = s.fromB, weights[s.fromB]
			consumed = append(consumed, s.fromA, s.fromB)
		case s.fromA != -1:
			rec.NumEdges = 1
			rec.FirstEdgeIndex, rec.FirstEdgeWeight = s.fromA, weights[s.fromA]
			consumed = append(consumed, s.fromA)
		default:
			rec.NumEdges = 1
			rec.FirstEdgeIndex, rec.FirstEdgeWeight = s.fromB, weights[s.fromB]
			consumed = append(consumed, s.fromB)
		}
		recs = append(recs, rec)
	}
	return recs, consumed, nil
}
