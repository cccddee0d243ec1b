package graph

import (
	"math"
	"sort"

	"github.com/higra-go/higra/herr"
)

// EdgeIndices returns [0, NumEdges()) — the canonical enumeration order
// used by every algorithm that needs "the edges in insertion order"
// (spec.md §3.2 "canonical order"; §4.3 step 1 sorts a permutation of
// this slice).
func (g *Graph) EdgeIndices() []int {
	out := make([]int, len(g.edges))
	for i := range out {
		out[i] = i
	}
	return out
}

// StableSortByWeight returns a permutation of EdgeIndices() sorted by
// non-decreasing weights[e], stable on ties (spec.md §4.3 step 1:
// "Obtain a stable permutation of edge indices sorted by non-decreasing
// w"; spec.md §5 requires this stability for deterministic canonical
// BPT). weights must be indexed by edge, length NumEdges().
//
// The data-parallel seam of spec.md §5 lives here: a caller free to swap
// in a parallel stable sort without changing semantics, as long as it
// remains stable on equal keys.
func StableSortByWeight(weights []float64) []int {
	perm := make([]int, len(weights))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return weights[perm[i]] < weights[perm[j]]
	})
	return perm
}

// WeightFunction enumerates the ways of deriving a scalar edge weight
// from endpoint data (spec.md §6 "WeightFunction").
type WeightFunction int

const (
	WeightMean WeightFunction = iota
	WeightMin
	WeightMax
	WeightL0
	WeightL1
	WeightL2
	WeightL2Squared
	WeightLInfinity
	WeightSource
	WeightTarget
)

// WeightEdges computes one scalar per edge of g from per-vertex
// vectorial data, using fn. data[v] gives vertex v's feature vector; all
// vectors must share the same length.
func WeightEdges(g *Graph, data [][]float64, fn WeightFunction) ([]float64, error) {
	if len(data) != g.NumVertices() {
		return nil, herr.Wrap(herr.KindInvalidShape, "graph", "data has %d rows, want %d vertices", len(data), g.NumVertices())
	}
	out := make([]float64, g.NumEdges())
	for e := 0; e < g.NumEdges(); e++ {
		removed, _ := g.IsRemoved(e)
		if removed {
			continue
		}
		from, to, _ := g.EdgeEndpoints(e)
		a, b := data[from], data[to]
		if len(a) != len(b) {
			return nil, herr.Wrap(herr.KindInvalidShape, "graph", "edge %d endpoints have mismatched vector lengths %d/%d", e, len(a), len(b))
		}
		v, err := weightOf(a, b, fn)
		if err != nil {
			return nil, err
		}
		out[e] = v
	}
	return out, nil
}

func weightOf(a, b []float64, fn WeightFunction) (float64, error) {
	switch fn {
	case WeightSource:
		return sumOf(a), nil
	case WeightTarget:
		return sumOf(b), nil
	case WeightMean:
		return (sumOf(a) + sumOf(b)) / 2, nil
	case WeightMin:
		return math.Min(sumOf(a), sumOf(b)), nil
	case WeightMax:
		return math.Max(sumOf(a), sumOf(b)), nil
	case WeightL0:
		c := 0.0
		for i := range a {
			if a[i] != b[i] {
				c++
			}
		}
		return c, nil
	case WeightL1:
		s := 0.0
		for i := range a {
			s += math.Abs(a[i] - b[i])
		}
		return s, nil
	case WeightL2, WeightL2Squared:
		s := 0.0
		for i := range a {
			d := a[i] - b[i]
			s += d * d
		}
		if fn == WeightL2Squared {
			return s, nil
		}
		return math.Sqrt(s), nil
	case WeightLInfinity:
		m := 0.0
		for i := range a {
			d := math.Abs(a[i] - b[i])
			if d > m {
				m = d
			}
		}
		return m, nil
	default:
		return 0, herr.Wrap(herr.KindUnsupported, "graph", "weight function %d not implemented", fn)
	}
}

func sumOf(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}
