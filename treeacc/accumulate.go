package treeacc

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// AccumulateParallel computes out[i] = acc(values[children(i)]) for
// every internal node of t; leaves are copied unchanged from values
// (spec.md §4.7). Each internal node's reduction only reads values, so
// nodes are independent and are fanned out across an errgroup worker
// pool — the data-parallel seam of spec.md §5.
func AccumulateParallel(t *tree.Tree, values []float64, acc Accumulator) ([]float64, error) {
	if err := checkLen("treeacc", len(values), t.NumNodes(), "values"); err != nil {
		return nil, err
	}
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "treeacc", "ComputeChildren must be called before AccumulateParallel")
	}
	out := make([]float64, t.NumNodes())
	copy(out, values)

	g, _ := errgroup.WithContext(context.Background())
	for i := t.NumLeaves(); i < t.NumNodes(); i++ {
		i := i
		g.Go(func() error {
			children, err := t.Children(i)
			if err != nil {
				return err
			}
			out[i] = acc.reduce(children, values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AccumulateSequential writes leaves from leafData then, for internal
// nodes visited in increasing id order (a valid bottom-up order since
// parents arrays are topologically sorted), sets out[i] =
// acc(out[children(i)]) — each internal reduction depends on its
// children's already-written results, so this variant is strictly
// sequential (spec.md §4.7).
func AccumulateSequential(t *tree.Tree, leafData []float64, acc Accumulator) ([]float64, error) {
	if err := checkLen("treeacc", len(leafData), t.NumLeaves(), "leafData"); err != nil {
		return nil, err
	}
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "treeacc", "ComputeChildren must be called before AccumulateSequential")
	}
	out := make([]float64, t.NumNodes())
	copy(out, leafData)
	for i := t.NumLeaves(); i < t.NumNodes(); i++ {
		children, err := t.Children(i)
		if err != nil {
			return nil, err
		}
		out[i] = acc.reduce(children, out)
	}
	return out, nil
}

// CombineOp is one of the four binary combinators spec.md §4.7 allows
// for accumulate_and_combine_sequential.
type CombineOp int

const (
	CombineAdd CombineOp = iota
	CombineMul
	CombineMax
	CombineMin
)

func combine(op CombineOp, a, b float64) float64 {
	switch op {
	case CombineAdd:
		return a + b
	case CombineMul:
		return a * b
	case CombineMax:
		if a > b {
			return a
		}
		return b
	case CombineMin:
		if a < b {
			return a
		}
		return b
	default:
		return a
	}
}

// AccumulateAndCombineSequential computes out[i] = input[i] ⊕
// acc(out[children(i)]) for internal nodes in increasing id order;
// leaves are copied unchanged from input (spec.md §4.7).
func AccumulateAndCombineSequential(t *tree.Tree, input []float64, acc Accumulator, op CombineOp) ([]float64, error) {
	if err := checkLen("treeacc", len(input), t.NumNodes(), "input"); err != nil {
		return nil, err
	}
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "treeacc", "ComputeChildren must be called before AccumulateAndCombineSequential")
	}
	out := make([]float64, t.NumNodes())
	copy(out, input)
	for i := t.NumLeaves(); i < t.NumNodes(); i++ {
		children, err := t.Children(i)
		if err != nil {
			return nil, err
		}
		out[i] = combine(op, input[i], acc.reduce(children, out))
	}
	return out, nil
}
