package treeacc

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// Condition decides, for node i, whether its value should be replaced
// by its parent's value during propagation (spec.md §4.7).
type Condition func(i int) bool

// PropagateParallel computes out[i] = input[p[i]] where condition(i)
// holds, else input[i]. Every node reads only input and its own parent
// index, so nodes are independent and run across an errgroup pool.
func PropagateParallel(t *tree.Tree, input []float64, condition Condition) ([]float64, error) {
	if err := checkLen("treeacc", len(input), t.NumNodes(), "input"); err != nil {
		return nil, err
	}
	out := make([]float64, t.NumNodes())
	parents := t.Parents()

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < t.NumNodes(); i++ {
		i := i
		g.Go(func() error {
			if condition(i) {
				out[i] = input[parents[i]]
			} else {
				out[i] = input[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PropagateSequential applies the same rule as PropagateParallel but
// root-to-leaves, so a value that propagates down a true-condition
// path continues propagating through subsequent true-condition nodes
// below it (spec.md §4.7) — this cascading behaviour requires visiting
// parents strictly before children, hence the RootToLeaves order.
func PropagateSequential(t *tree.Tree, input []float64, condition Condition) ([]float64, error) {
	if err := checkLen("treeacc", len(input), t.NumNodes(), "input"); err != nil {
		return nil, err
	}
	out := make([]float64, t.NumNodes())
	parents := t.Parents()
	for _, i := range t.RootToLeaves(true, true) {
		if i == t.Root() {
			out[i] = input[i]
			continue
		}
		if condition(i) {
			out[i] = out[parents[i]]
		} else {
			out[i] = input[i]
		}
	}
	return out, nil
}

// PropagateSequentialAndAccumulate runs PropagateSequential to cascade
// values down true-condition paths, then folds the propagated values
// back up with acc via AccumulateSequential seeded from the
// propagated leaves (spec.md §4.7's propagate_sequential_and_accumulate).
func PropagateSequentialAndAccumulate(t *tree.Tree, input []float64, condition Condition, acc Accumulator) ([]float64, error) {
	propagated, err := PropagateSequential(t, input, condition)
	if err != nil {
		return nil, err
	}
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "treeacc", "ComputeChildren must be called before PropagateSequentialAndAccumulate")
	}
	return AccumulateSequential(t, propagated[:t.NumLeaves()], acc)
}
