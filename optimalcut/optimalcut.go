// Package optimalcut implements spec.md §4.11's two optimal-cut
// constructions over a tree: a scalar leaves-to-root/root-to-leaves
// dynamic program picking, for each node, whether to keep it whole or
// defer to its children under a composition rule (sum/min/max), and
// the piecewise-linear-energy ("scale-set") variant that derives a
// per-node apparition scale from §3.7's concave energy-function
// algebra and simplifies the hierarchy wherever a node's scale equals
// its parent's.
//
// Grounded on qfz's leaves-to-root/root-to-leaves traversal idiom for
// both DPs, and on qfz.Simplify (reused, not reimplemented) for the
// final scale-equality collapse in HierarchyEnergyCut.
package optimalcut

import (
	"math"

	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/qfz"
	"github.com/higra-go/higra/tree"
)

// AccKind selects how a node's children's optimal energies are
// combined when deciding whether to keep the node whole (spec.md
// §4.11's acc ∈ {sum, min, max}).
type AccKind int

const (
	AccSum AccKind = iota
	AccMin
	AccMax
)

func accCombine(acc AccKind, values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, herr.Wrap(herr.KindInvalidShape, "optimalcut", "acc over zero children")
	}
	switch acc {
	case AccSum:
		s := 0.0
		for _, v := range values {
			s += v
		}
		return s, nil
	case AccMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	case AccMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	default:
		return 0, herr.Wrap(herr.KindUnsupported, "optimalcut", "unknown acc kind %d", acc)
	}
}

// OptimalPartition runs spec.md §4.11's first algorithm: a
// leaves-to-root DP computing, for each node i, the best energy opt[i]
// and whether the optimum keeps i whole (energy[i] <= acc of its
// children's opt) or defers to its descendants, then a root-to-leaves
// backtrack assigning each leaf the id of its topmost kept ancestor
// (itself only when no proper ancestor is kept), so every region of the
// optimal cut gets one label. The return value is that per-leaf
// labelling.
// Requires t.ComputeChildren to have been called.
func OptimalPartition(t *tree.Tree, energy []float64, acc AccKind) ([]int, error) {
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "optimalcut", "ComputeChildren must be called before OptimalPartition")
	}
	if len(energy) != t.NumNodes() {
		return nil, herr.Wrap(herr.KindInvalidShape, "optimalcut", "energy has %d entries, want %d", len(energy), t.NumNodes())
	}

	n := t.NumNodes()
	opt := make([]float64, n)
	keep := make([]bool, n)
	for _, i := range t.LeavesToRoot(true, true) {
		if t.IsLeaf(i) {
			opt[i] = energy[i]
			keep[i] = true
			continue
		}
		children, err := t.Children(i)
		if err != nil {
			return nil, err
		}
		childVals := make([]float64, len(children))
		for k, c := range children {
			childVals[k] = opt[c]
		}
		childAcc, err := accCombine(acc, childVals)
		if err != nil {
			return nil, err
		}
		if energy[i] <= childAcc {
			opt[i] = energy[i]
			keep[i] = true
		} else {
			opt[i] = childAcc
			keep[i] = false
		}
	}

	parents := t.Parents()
	root := t.Root()
	rep := make([]int, n)
	for _, i := range t.RootToLeaves(true, true) {
		switch {
		case i == root:
			if keep[i] {
				rep[i] = i
			} else {
				rep[i] = -1
			}
		case rep[parents[i]] != -1:
			// an ancestor already collapsed this whole branch into one
			// region; that choice overrides whatever i's own keep flag
			// says (a kept leaf under a kept ancestor still belongs to
			// the ancestor's region, not to itself).
			rep[i] = rep[parents[i]]
		case keep[i]:
			rep[i] = i
		default:
			rep[i] = -1
		}
	}

	labels := make([]int, t.NumLeaves())
	copy(labels, rep[:t.NumLeaves()])
	return labels, nil
}

// Piece is one linear segment (x0, y0, slope) of a piecewise-linear
// energy function (spec.md §3.7): for x in [x0, next piece's x0), the
// function's value is y0 + slope*(x-x0). The last piece's domain
// extends to +∞.
type Piece struct {
	X0    float64
	Y0    float64
	Slope float64
}

// Function is a concave, non-decreasing, non-negative piecewise-linear
// function, represented as pieces sorted by ascending X0. The first
// piece starts at X0 == 0 unless Sum's capK truncation dropped leading
// pieces; Eval then extends the first remaining piece to the left.
type Function struct {
	Pieces []Piece
}

// NewRay builds the single-piece function y0 + slope*x, spec.md
// §4.11's leaf base case f_i := {(0, D(i), R(i))}.
func NewRay(y0, slope float64) *Function {
	return &Function{Pieces: []Piece{{X0: 0, Y0: y0, Slope: slope}}}
}

func (f *Function) pieceAt(x float64) Piece {
	p := f.Pieces[0]
	for _, q := range f.Pieces {
		if q.X0 > x {
			break
		}
		p = q
	}
	return p
}

// Eval returns the function's value at x (x must be >= 0).
func (f *Function) Eval(x float64) float64 {
	p := f.pieceAt(x)
	return p.Y0 + p.Slope*(x-p.X0)
}

func mergedBreakpoints(a, b *Function) []float64 {
	seen := make(map[float64]bool, len(a.Pieces)+len(b.Pieces))
	var xs []float64
	for _, p := range a.Pieces {
		if !seen[p.X0] {
			seen[p.X0] = true
			xs = append(xs, p.X0)
		}
	}
	for _, p := range b.Pieces {
		if !seen[p.X0] {
			seen[p.X0] = true
			xs = append(xs, p.X0)
		}
	}
	sortFloats(xs)
	return xs
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// Sum adds f and other pointwise (spec.md §3.7's sum): the result's
// breakpoints are the union of both operands', and its slope at each
// breakpoint is the sum of the two operands' slopes there. When capK
// is positive and the merged piece count exceeds it, only the
// rightmost capK pieces are kept (the leftmost, smallest-scale pieces
// are the ones superseded, per spec.md §4.11's truncation rule).
func (f *Function) Sum(other *Function, capK int) *Function {
	xs := mergedBreakpoints(f, other)
	pieces := make([]Piece, 0, len(xs))
	for _, x := range xs {
		pieces = append(pieces, Piece{
			X0:    x,
			Y0:    f.Eval(x) + other.Eval(x),
			Slope: f.pieceAt(x).Slope + other.pieceAt(x).Slope,
		})
	}
	pieces = dropCollinear(pieces)
	if capK > 0 && len(pieces) > capK {
		pieces = pieces[len(pieces)-capK:]
	}
	return &Function{Pieces: pieces}
}

// dropCollinear merges adjacent pieces that ended up with identical
// slope, avoiding degenerate zero-length segments from Sum's
// breakpoint union.
func dropCollinear(pieces []Piece) []Piece {
	if len(pieces) == 0 {
		return pieces
	}
	out := pieces[:1]
	for _, p := range pieces[1:] {
		last := &out[len(out)-1]
		if p.Slope == last.Slope {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Infimum replaces f by the pointwise minimum of f and the ray
// described by piece (spec.md §3.7's infimum(piece) / §4.11's
// apparition-scale composition). It returns the new function and the
// crossing abscissa where the ray becomes the minimum (0 if the ray is
// already the minimum at x=0, +Inf if f never exceeds the ray within
// its last piece's domain — a caller bug if regularization truly is
// sub-additive, since the ray's slope is assumed < f's asymptotic
// slope).
func (f *Function) Infimum(piece Piece) (*Function, float64) {
	rayAt := func(x float64) float64 { return piece.Y0 + piece.Slope*(x-piece.X0) }

	if f.Pieces[0].Y0-rayAt(f.Pieces[0].X0) >= 0 {
		return &Function{Pieces: []Piece{{X0: 0, Y0: rayAt(0), Slope: piece.Slope}}}, 0
	}

	for i, p := range f.Pieces {
		hasNext := i+1 < len(f.Pieces)
		denom := p.Slope - piece.Slope
		hStart := p.Y0 - rayAt(p.X0)
		if denom <= 0 {
			// f's own slope never falls below the ray's here; the ray
			// cannot overtake within this piece. Should not happen
			// under sub-additive regularization; skip defensively.
			continue
		}
		lambda := p.X0 - hStart/denom
		if !hasNext || lambda < f.Pieces[i+1].X0 {
			kept := append([]Piece(nil), f.Pieces[:i+1]...)
			merged := append(kept, Piece{X0: lambda, Y0: rayAt(lambda), Slope: piece.Slope})
			return &Function{Pieces: merged}, lambda
		}
	}
	return &Function{Pieces: append([]Piece(nil), f.Pieces...)}, math.Inf(1)
}

// DefaultTruncation is spec.md §4.11's default piece-count cap K.
const DefaultTruncation = 10

// ApparitionScales runs spec.md §4.11's "hierarchy → optimal energy
// cut hierarchy" recursion: leaf i gets the ray function
// NewRay(d[i], r[i]); internal node i sums its children's functions
// (capped to capK pieces, or DefaultTruncation if capK <= 0) and takes
// the infimum with its own ray (0, d[i], r[i]), recording the returned
// crossing as its apparition scale. Requires t.ComputeChildren to have
// been called.
func ApparitionScales(t *tree.Tree, d, r []float64, capK int) ([]float64, error) {
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "optimalcut", "ComputeChildren must be called before ApparitionScales")
	}
	if len(d) != t.NumNodes() || len(r) != t.NumNodes() {
		return nil, herr.Wrap(herr.KindInvalidShape, "optimalcut", "d/r must have %d entries each", t.NumNodes())
	}
	if capK <= 0 {
		capK = DefaultTruncation
	}

	n := t.NumNodes()
	funcs := make([]*Function, n)
	scales := make([]float64, n)
	for _, i := range t.LeavesToRoot(true, true) {
		if t.IsLeaf(i) {
			funcs[i] = NewRay(d[i], r[i])
			scales[i] = math.Inf(1)
			continue
		}
		children, err := t.Children(i)
		if err != nil {
			return nil, err
		}
		childSum := funcs[children[0]]
		for _, c := range children[1:] {
			childSum = childSum.Sum(funcs[c], capK)
		}
		merged, lambda := childSum.Infimum(Piece{X0: 0, Y0: d[i], Slope: r[i]})
		funcs[i] = merged
		scales[i] = lambda
	}
	return scales, nil
}

func propagateScalesDown(t *tree.Tree, scales []float64) []float64 {
	out := append([]float64(nil), scales...)
	parents := t.Parents()
	for _, i := range t.RootToLeaves(false, false) {
		if out[parents[i]] < out[i] {
			out[i] = out[parents[i]]
		}
	}
	return out
}

// HierarchyEnergyCut builds the scale-set hierarchy of spec.md §4.11's
// second algorithm: per-node apparition scales (via ApparitionScales),
// propagated downward by minimum so an internal node's scale never
// exceeds its parent's (leaves keep their +Inf scale), then simplified wherever a node's scale equals its
// parent's. Requires t.ComputeChildren to have been called.
func HierarchyEnergyCut(t *tree.Tree, d, r []float64, capK int) (*qfz.SimplifyResult, []float64, error) {
	scales, err := ApparitionScales(t, d, r, capK)
	if err != nil {
		return nil, nil, err
	}
	propagated := propagateScalesDown(t, scales)
	parents := t.Parents()
	predicate := func(i int) bool {
		return propagated[i] == propagated[parents[i]]
	}
	simplified, err := qfz.Simplify(t, predicate, false, propagated)
	if err != nil {
		return nil, nil, err
	}
	return simplified, propagated, nil
}
