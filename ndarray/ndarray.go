// Package ndarray is the multi-dimensional numeric array facade consumed
// by every hierarchy algorithm in this module (spec.md §1, "Numeric-array
// facilities": the core assumes a multi-dimensional numeric array type
// supporting element access, shape queries, elementwise arithmetic, and
// views; spec.md §2 L0 "Array facade").
//
// Array is row-major (C order), backed by a flat []float64 and a shape
// []int, generalizing matrix.Dense (2-D row-major, flat-slice storage)
// to N dimensions. Elementwise arithmetic and reductions delegate to
// gonum.org/v1/gonum/floats rather than hand-rolled loops, per the
// domain-stack wiring in SPEC_FULL.md.
package ndarray

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/higra-go/higra/herr"
)

// Array is a dense, row-major N-D numeric array.
type Array struct {
	shape []int     // dimension sizes, len(shape) == rank
	data  []float64 // flat backing storage, length == product(shape)
}

// New allocates a zero-initialized Array of the given shape.
// Stage 1 (Validate): every dimension must be > 0.
// Stage 2 (Prepare): allocate the flat backing slice.
// Complexity: O(∏shape) time and memory.
func New(shape ...int) (*Array, error) {
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return nil, herr.Wrap(herr.KindInvalidShape, "ndarray", "dimension %v must be > 0", shape)
		}
		n *= s
	}
	shapeCopy := append([]int(nil), shape...)
	return &Array{shape: shapeCopy, data: make([]float64, n)}, nil
}

// FromSlice wraps an existing flat slice as a 1-D Array (the common case
// for per-node scalar attributes over tree nodes or graph vertices).
// The slice is taken by reference, not copied.
func FromSlice(data []float64) *Array {
	return &Array{shape: []int{len(data)}, data: data}
}

// FromRows builds a 2-D Array from row-major vector data (one row per
// node, used for vectorial per-node values such as RGB pixel channels).
func FromRows(rows [][]float64) (*Array, error) {
	if len(rows) == 0 {
		return nil, herr.Wrap(herr.KindInvalidShape, "ndarray", "FromRows requires at least one row")
	}
	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, herr.Wrap(herr.KindInvalidShape, "ndarray", "row %d has length %d, want %d", i, len(r), cols)
		}
		flat = append(flat, r...)
	}
	return &Array{shape: []int{len(rows), cols}, data: flat}, nil
}

// Shape returns the array's dimension sizes. The returned slice must not
// be mutated by the caller.
func (a *Array) Shape() []int { return a.shape }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Len returns the total element count (∏shape).
func (a *Array) Len() int { return len(a.data) }

// Raw exposes the flat backing storage for callers that need direct
// slice access (e.g. passing per-node attributes into tree accumulators).
// The returned slice aliases the Array's storage.
func (a *Array) Raw() []float64 { return a.data }

// flatIndex converts an N-D coordinate into a flat offset, row-major.
func (a *Array) flatIndex(coords []int) (int, error) {
	if len(coords) != len(a.shape) {
		return 0, herr.Wrap(herr.KindInvalidShape, "ndarray", "expected %d coordinates, got %d", len(a.shape), len(coords))
	}
	idx, stride := 0, 1
	for d := len(a.shape) - 1; d >= 0; d-- {
		c := coords[d]
		if c < 0 || c >= a.shape[d] {
			return 0, herr.Wrap(herr.KindOutOfRange, "ndarray", "coordinate %d=%d out of [0,%d)", d, c, a.shape[d])
		}
		idx += c * stride
		stride *= a.shape[d]
	}
	return idx, nil
}

// At reads the element at the given N-D coordinate.
func (a *Array) At(coords ...int) (float64, error) {
	idx, err := a.flatIndex(coords)
	if err != nil {
		return 0, err
	}
	return a.data[idx], nil
}

// Set writes the element at the given N-D coordinate.
func (a *Array) Set(v float64, coords ...int) error {
	idx, err := a.flatIndex(coords)
	if err != nil {
		return err
	}
	a.data[idx] = v
	return nil
}

// View returns a semantic view along axis 0: the sub-array obtained by
// fixing the leading coordinate to i (spec.md §3/§2 "semantic views along
// axis 0"). The view aliases the parent's storage — mutations are visible
// in both.
func (a *Array) View(i int) (*Array, error) {
	if a.Rank() == 0 {
		return nil, herr.Wrap(herr.KindInvalidShape, "ndarray", "cannot view a rank-0 array")
	}
	if i < 0 || i >= a.shape[0] {
		return nil, herr.Wrap(herr.KindOutOfRange, "ndarray", "axis-0 index %d out of [0,%d)", i, a.shape[0])
	}
	rest := a.shape[1:]
	size := 1
	for _, s := range rest {
		size *= s
	}
	if len(rest) == 0 {
		rest = []int{1}
	}
	return &Array{shape: append([]int(nil), rest...), data: a.data[i*size : (i+1)*size]}, nil
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	data := make([]float64, len(a.data))
	copy(data, a.data)
	return &Array{shape: append([]int(nil), a.shape...), data: data}
}

// sameShape reports whether a and b have identical shapes.
func sameShape(a, b *Array) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}

// Add returns an elementwise a+b. Shapes must match.
func (a *Array) Add(b *Array) (*Array, error) {
	if !sameShape(a, b) {
		return nil, herr.Wrap(herr.KindInvalidShape, "ndarray", "Add: shape mismatch %v vs %v", a.shape, b.shape)
	}
	out := a.Clone()
	floats.Add(out.data, b.data)
	return out, nil
}

// Sub returns an elementwise a-b. Shapes must match.
func (a *Array) Sub(b *Array) (*Array, error) {
	if !sameShape(a, b) {
		return nil, herr.Wrap(herr.KindInvalidShape, "ndarray", "Sub: shape mismatch %v vs %v", a.shape, b.shape)
	}
	out := a.Clone()
	floats.SubTo(out.data, a.data, b.data)
	return out, nil
}

// Scale returns a copy of a with every element multiplied by s.
func (a *Array) Scale(s float64) *Array {
	out := a.Clone()
	floats.Scale(s, out.data)
	return out
}

// Sum returns the sum of all elements.
func (a *Array) Sum() float64 { return floats.Sum(a.data) }

// Mean returns the arithmetic mean of all elements (0 for an empty array).
func (a *Array) Mean() float64 {
	if len(a.data) == 0 {
		return 0
	}
	return a.Sum() / float64(len(a.data))
}

// String implements fmt.Stringer for debugging.
func (a *Array) String() string {
	return fmt.Sprintf("ndarray.Array{shape=%v}", a.shape)
}
