// Mumford-Shah linkage (spec.md §4.12): a genbpt.Linkage whose
// per-region state is area, perimeter, sum and sum-of-squares (one
// entry per value channel, so scalar images are just the one-channel
// case) plus a piecewise-linear energy function (package optimalcut,
// §3.7), and whose merge altitude is that function's apparition scale.
//
// Grounded on linkage.Ward for the "speculative recompute of every
// neighbour's would-be statistic after a merge, to re-prime the heap"
// shape (Ward recomputes a distance; Mumford-Shah recomputes an
// apparition scale the same way) — the one extra piece of context
// Mumford-Shah needs beyond Ward is the fused edge's own length, which
// is why genbpt.Linkage.Merge grew a poppedEdgeIndex parameter.
package linkage

import (
	"math"

	"github.com/higra-go/higra/genbpt"
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/optimalcut"
)

// MumfordShah implements spec.md §4.12's linkage. values holds one
// feature vector per leaf vertex (scalar images pass one-channel
// slices); edgeLength holds one length per original graph edge, used
// both to seed every leaf's initial perimeter and to compute
// perimeter' = p1+p2-2*edge_length(fused) at every merge.
type MumfordShah struct {
	values           [][]float64
	edgeLength       []float64
	initialPerimeter []float64
	capK             int

	area      []float64
	perimeter []float64
	sum       [][]float64
	sum2      [][]float64
	energy    []*optimalcut.Function
	edgeLen   map[int]float64
}

// NewMumfordShah returns a Mumford-Shah linkage over g, seeded by
// values (one row per vertex) and edgeLength (one entry per g edge).
// capK caps the piecewise-linear energy's piece count after every Sum
// (spec.md §4.11's truncation); capK <= 0 uses optimalcut.DefaultTruncation.
func NewMumfordShah(g *graph.Graph, values [][]float64, edgeLength []float64, capK int) (*MumfordShah, error) {
	if len(values) != g.NumVertices() {
		return nil, herr.Wrap(herr.KindInvalidShape, "linkage", "Mumford-Shah values has %d entries, want %d", len(values), g.NumVertices())
	}
	if len(edgeLength) != g.NumEdges() {
		return nil, herr.Wrap(herr.KindInvalidShape, "linkage", "Mumford-Shah edgeLength has %d entries, want %d", len(edgeLength), g.NumEdges())
	}
	initialPerimeter := make([]float64, g.NumVertices())
	for v := 0; v < g.NumVertices(); v++ {
		incident, err := g.IncidentEdges(v)
		if err != nil {
			return nil, err
		}
		for _, e := range incident {
			initialPerimeter[v] += edgeLength[e]
		}
	}
	return &MumfordShah{
		values:           values,
		edgeLength:       append([]float64(nil), edgeLength...),
		initialPerimeter: initialPerimeter,
		capK:             capK,
	}, nil
}

func (m *MumfordShah) truncation() int {
	if m.capK > 0 {
		return m.capK
	}
	return optimalcut.DefaultTruncation
}

// Init satisfies genbpt.Linkage, seeding every leaf's region statistics
// and its base energy ray (0, data_fidelity(leaf), perimeter(leaf)).
func (m *MumfordShah) Init(n int, _ []float64) {
	maxNodes := 2*n - 1
	m.area = make([]float64, maxNodes)
	m.perimeter = make([]float64, maxNodes)
	m.sum = make([][]float64, maxNodes)
	m.sum2 = make([][]float64, maxNodes)
	m.energy = make([]*optimalcut.Function, maxNodes)
	m.edgeLen = make(map[int]float64, len(m.edgeLength))
	for e, length := range m.edgeLength {
		m.edgeLen[e] = length
	}

	for v := 0; v < n; v++ {
		numChannels := len(m.values[v])
		m.area[v] = 1
		m.perimeter[v] = m.initialPerimeter[v]
		m.sum[v] = append([]float64(nil), m.values[v]...)
		sq := make([]float64, numChannels)
		for c := 0; c < numChannels; c++ {
			sq[c] = m.values[v][c] * m.values[v][c]
		}
		m.sum2[v] = sq
		m.energy[v] = optimalcut.NewRay(dataFidelity(sq, m.sum[v], m.area[v]), m.perimeter[v])
	}
}

// dataFidelity is spec.md §4.12's sum2 - sum^2/area, summed over
// channels for the vectorial case.
func dataFidelity(sum2, sum []float64, area float64) float64 {
	var d float64
	for c := range sum2 {
		d += sum2[c] - (sum[c]*sum[c])/area
	}
	return d
}

func (m *MumfordShah) consumedLength(firstIdx, secondIdx int, numEdges int) float64 {
	length := m.edgeLen[firstIdx]
	if numEdges == 2 {
		length += m.edgeLen[secondIdx]
	}
	return length
}

// Merge satisfies genbpt.Linkage. It commits the fused region's own
// statistics and energy function, then for every neighbour it both
// records the actual consumed-length bookkeeping for when that
// neighbour is itself merged later, and speculatively recomputes what
// the apparition scale WOULD be if the new region merged with that
// neighbour right now — used purely to re-prime the heap for the next
// round, mirroring how Ward speculatively recomputes a Ward distance
// to every neighbour after each merge.
func (m *MumfordShah) Merge(a, b, newNode int, _ float64, poppedEdgeIndex int, recs []genbpt.NeighborRecord) float64 {
	fusedLength := m.edgeLen[poppedEdgeIndex]

	numChannels := len(m.sum[a])
	area := m.area[a] + m.area[b]
	sum := make([]float64, numChannels)
	sum2 := make([]float64, numChannels)
	for c := 0; c < numChannels; c++ {
		sum[c] = m.sum[a][c] + m.sum[b][c]
		sum2[c] = m.sum2[a][c] + m.sum2[b][c]
	}
	perimeter := m.perimeter[a] + m.perimeter[b] - 2*fusedLength

	m.area[newNode] = area
	m.sum[newNode] = sum
	m.sum2[newNode] = sum2
	m.perimeter[newNode] = perimeter

	fidelity := dataFidelity(sum2, sum, area)
	childSum := m.energy[a].Sum(m.energy[b], m.truncation())
	merged, lambda := childSum.Infimum(optimalcut.Piece{X0: 0, Y0: fidelity, Slope: perimeter})
	m.energy[newNode] = merged

	for i := range recs {
		r := &recs[i]
		length := m.consumedLength(r.FirstEdgeIndex, r.SecondEdgeIndex, r.NumEdges)
		m.edgeLen[r.NewEdgeIndex] = length

		nb := r.Neighbor
		nbArea := area + m.area[nb]
		nbSum := make([]float64, numChannels)
		nbSum2 := make([]float64, numChannels)
		for c := 0; c < numChannels; c++ {
			nbSum[c] = sum[c] + m.sum[nb][c]
			nbSum2[c] = sum2[c] + m.sum2[nb][c]
		}
		nbPerimeter := perimeter + m.perimeter[nb] - 2*length
		nbFidelity := dataFidelity(nbSum2, nbSum, nbArea)

		speculative := m.energy[newNode].Sum(m.energy[nb], m.truncation())
		_, nbLambda := speculative.Infimum(optimalcut.Piece{X0: 0, Y0: nbFidelity, Slope: nbPerimeter})
		r.NewEdgeWeight = math.Max(nbLambda, 0)
	}

	return math.Max(lambda, 0)
}
