// Package linkage implements spec.md §4.4's built-in generic-BPT
// linkage rules: min, max, average, Ward, and exponential, plus
// §4.12's Mumford-Shah linkage, each satisfying the genbpt.Linkage
// interface.
//
// Grounded on prim_kruskal/kruskal.go for the "weight comparison drives
// the merge" idiom and on ndarray.Array (package ndarray, itself built
// on gonum/floats) for Ward's per-region feature centroids, since
// Ward's distance needs a real feature vector per vertex rather than
// just the scalar edge weights genbpt.Linkage.Init receives.
// Mumford-Shah (mumfordshah.go) follows the same "richer per-region
// state than Init's scalar weights" shape as Ward, built on package
// optimalcut's piecewise-linear energy algebra (§3.7) for its merge
// rule instead of a Euclidean centroid distance.
package linkage

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/higra-go/higra/genbpt"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/ndarray"
	"github.com/higra-go/higra/tree"
)

// Min assigns every new consolidated edge the smaller of the one or two
// weights it replaces, and the popped edge weight as the merge altitude
// — spec.md §4.4's "min" linkage.
type Min struct{}

// Init satisfies genbpt.Linkage; min linkage carries no state.
func (Min) Init(int, []float64) {}

// Merge satisfies genbpt.Linkage.
func (Min) Merge(_, _, _ int, poppedWeight float64, _ int, recs []genbpt.NeighborRecord) float64 {
	for i := range recs {
		r := &recs[i]
		if r.NumEdges == 2 {
			r.NewEdgeWeight = math.Min(r.FirstEdgeWeight, r.SecondEdgeWeight)
		} else {
			r.NewEdgeWeight = r.FirstEdgeWeight
		}
	}
	return poppedWeight
}

// Max is min linkage's dual: the larger of the replaced weights.
type Max struct{}

// Init satisfies genbpt.Linkage; max linkage carries no state.
func (Max) Init(int, []float64) {}

// Merge satisfies genbpt.Linkage.
func (Max) Merge(_, _, _ int, poppedWeight float64, _ int, recs []genbpt.NeighborRecord) float64 {
	for i := range recs {
		r := &recs[i]
		if r.NumEdges == 2 {
			r.NewEdgeWeight = math.Max(r.FirstEdgeWeight, r.SecondEdgeWeight)
		} else {
			r.NewEdgeWeight = r.FirstEdgeWeight
		}
	}
	return poppedWeight
}

// Average implements spec.md §4.4's weighted-mean linkage: every edge
// carries a count (initially 1), new_edge_value is the count-weighted
// mean of the replaced edges and new_edge_count is their count sum.
// Counts are keyed by edge index, which is why genbpt.Build assigns
// NewEdgeIndex before invoking the callback — Average needs to look an
// edge's count up by the very index it is about to be replaced under.
type Average struct {
	counts map[int]float64
}

// NewAverage returns a ready-to-use Average linkage.
func NewAverage() *Average { return &Average{} }

// Init satisfies genbpt.Linkage, resetting the per-edge count table.
func (a *Average) Init(int, []float64) { a.counts = make(map[int]float64) }

func (a *Average) countOf(edgeIndex int) float64 {
	if c, ok := a.counts[edgeIndex]; ok {
		return c
	}
	return 1
}

// Merge satisfies genbpt.Linkage.
func (a *Average) Merge(_, _, _ int, poppedWeight float64, _ int, recs []genbpt.NeighborRecord) float64 {
	for i := range recs {
		r := &recs[i]
		if r.NumEdges == 2 {
			c1, c2 := a.countOf(r.FirstEdgeIndex), a.countOf(r.SecondEdgeIndex)
			r.NewEdgeWeight = (r.FirstEdgeWeight*c1 + r.SecondEdgeWeight*c2) / (c1 + c2)
			a.counts[r.NewEdgeIndex] = c1 + c2
		} else {
			r.NewEdgeWeight = r.FirstEdgeWeight
			a.counts[r.NewEdgeIndex] = a.countOf(r.FirstEdgeIndex)
		}
	}
	return poppedWeight
}

// Exponential wraps Average with spec.md §4.4's e^(-alpha*d) reweighting:
// edges combine exactly as Average combines them (same count-weighted
// mean, "the same combination rule"), and the combined distance is then
// passed through the exponential kernel before being stored as the new
// edge's weight.
type Exponential struct {
	alpha float64
	avg   *Average
}

// NewExponential returns an Exponential linkage with decay rate alpha.
func NewExponential(alpha float64) *Exponential {
	return &Exponential{alpha: alpha, avg: NewAverage()}
}

// Init satisfies genbpt.Linkage.
func (e *Exponential) Init(n int, w []float64) { e.avg.Init(n, w) }

// Merge satisfies genbpt.Linkage.
func (e *Exponential) Merge(a, b, m int, poppedWeight float64, poppedEdgeIndex int, recs []genbpt.NeighborRecord) float64 {
	altitude := e.avg.Merge(a, b, m, poppedWeight, poppedEdgeIndex, recs)
	for i := range recs {
		recs[i].NewEdgeWeight = math.Exp(-e.alpha * recs[i].NewEdgeWeight)
	}
	return altitude
}

// AltitudeCorrection selects the policy applied to a Ward hierarchy's
// altitudes after construction, since Ward distances are not guaranteed
// monotonically increasing from leaves to root (spec.md §4.4).
type AltitudeCorrection int

const (
	// CorrectionNone leaves altitudes exactly as Ward computed them.
	CorrectionNone AltitudeCorrection = iota
	// CorrectionMax replaces every node's altitude with the max of its
	// own altitude and its children's, restoring monotonicity.
	CorrectionMax
)

// Ward implements spec.md §4.4's Ward linkage: every leaf starts out as
// a singleton cluster carrying a feature vector (its row of features)
// and size 1; merging two clusters produces the size-weighted centroid,
// and the merge altitude is the classic Lance-Williams Ward distance
// sqrt(2*s1*s2/(s1+s2)) * ||c1-c2||. New edge weights are recomputed as
// the Ward distance between the merged centroid and each neighbour's
// current centroid.
type Ward struct {
	features   *ndarray.Array // NumVertices x Dim, supplied at construction
	correction AltitudeCorrection

	centroids [][]float64
	sizes     []float64
}

// NewWard returns a Ward linkage seeded by features (one row per
// vertex, spec.md §4.4's initial per-region value), correcting
// altitudes per correction after construction.
func NewWard(features *ndarray.Array, correction AltitudeCorrection) (*Ward, error) {
	if features.Rank() != 2 {
		return nil, herr.Wrap(herr.KindInvalidShape, "linkage", "Ward features must be rank 2, got rank %d", features.Rank())
	}
	return &Ward{features: features, correction: correction}, nil
}

// Init satisfies genbpt.Linkage, seeding every leaf's centroid/size.
func (wd *Ward) Init(n int, _ []float64) {
	if wd.features.Shape()[0] != n {
		panic("linkage: Ward features row count does not match vertex count")
	}
	maxNodes := 2*n - 1
	wd.centroids = make([][]float64, maxNodes)
	wd.sizes = make([]float64, maxNodes)
	for v := 0; v < n; v++ {
		row, err := wd.features.View(v)
		if err != nil {
			panic(err)
		}
		wd.centroids[v] = append([]float64(nil), row.Raw()...)
		wd.sizes[v] = 1
	}
}

func wardDistance(c1 []float64, s1 float64, c2 []float64, s2 float64) float64 {
	diff := make([]float64, len(c1))
	for i := range diff {
		diff[i] = c1[i] - c2[i]
	}
	sqNorm := floats.Dot(diff, diff)
	factor := (2 * s1 * s2) / (s1 + s2)
	return math.Sqrt(factor * sqNorm)
}

// Merge satisfies genbpt.Linkage.
func (wd *Ward) Merge(a, b, m int, _ float64, _ int, recs []genbpt.NeighborRecord) float64 {
	ca, cb := wd.centroids[a], wd.centroids[b]
	sa, sb := wd.sizes[a], wd.sizes[b]
	merged := make([]float64, len(ca))
	for i := range merged {
		merged[i] = (ca[i]*sa + cb[i]*sb) / (sa + sb)
	}
	altitude := wardDistance(ca, sa, cb, sb)
	wd.centroids[m] = merged
	wd.sizes[m] = sa + sb

	for i := range recs {
		r := &recs[i]
		nb := r.Neighbor
		r.NewEdgeWeight = wardDistance(merged, sa+sb, wd.centroids[nb], wd.sizes[nb])
	}
	return altitude
}

// CorrectAltitudes applies wd's configured AltitudeCorrection to a
// completed Ward hierarchy, whose recomputed distances are not
// guaranteed monotone from leaves to root. CorrectionNone returns
// altitudes unchanged; CorrectionMax walks leaves-to-root propagating
// each node's altitude up to its parent whenever it exceeds the
// parent's own, so every node ends up at least as high as all of its
// descendants — restoring the non-decreasing-toward-root convention
// every other built-in linkage already satisfies by construction.
func (wd *Ward) CorrectAltitudes(t *tree.Tree, altitudes []float64) ([]float64, error) {
	if wd.correction == CorrectionNone {
		return altitudes, nil
	}
	if len(altitudes) != t.NumNodes() {
		return nil, herr.Wrap(herr.KindInvalidShape, "linkage", "altitudes has %d entries, want %d", len(altitudes), t.NumNodes())
	}
	corrected := append([]float64(nil), altitudes...)
	parents := t.Parents()
	for _, i := range t.LeavesToRoot(true, false) {
		p := parents[i]
		if corrected[i] > corrected[p] {
			corrected[p] = corrected[i]
		}
	}
	return corrected, nil
}
