package lca

import (
	"github.com/higra-go/higra/tree"
)

// NewSparseTable builds a full sparse-table RMQ oracle over t's Euler
// tour: O(N log N) preprocessing, O(1) query (spec.md §4.6's
// LCA_sparse_table). ComputeChildren must already have been called on t.
func NewSparseTable(t *tree.Tree) (*Oracle, error) {
	tour, depth, firstVisit, err := eulerTour(t)
	if err != nil {
		return nil, err
	}
	o := &Oracle{tour: tour, depth: depth, firstVisit: firstVisit}
	o.buildSparse()
	return o, nil
}

func floorLog2(n int) int {
	k := 0
	for (1 << uint(k+1)) <= n {
		k++
	}
	return k
}

func (o *Oracle) buildSparse() {
	n := len(o.tour)
	if n == 0 {
		o.sparseIdx = [][]int{}
		return
	}
	levels := floorLog2(n) + 1
	table := make([][]int, levels)
	table[0] = make([]int, n)
	for i := range table[0] {
		table[0][i] = i
	}
	for k := 1; k < levels; k++ {
		half := 1 << uint(k-1)
		size := n - (1 << uint(k)) + 1
		if size <= 0 {
			table[k] = []int{}
			continue
		}
		table[k] = make([]int, size)
		for i := 0; i < size; i++ {
			left := table[k-1][i]
			right := table[k-1][i+half]
			if o.depth[o.tour[left]] <= o.depth[o.tour[right]] {
				table[k][i] = left
			} else {
				table[k][i] = right
			}
		}
	}
	o.sparseIdx = table
}

func (o *Oracle) sparseRangeMin(l, r int) int {
	k := floorLog2(r - l + 1)
	left := o.sparseIdx[k][l]
	right := o.sparseIdx[k][r-(1<<uint(k))+1]
	if o.depth[o.tour[left]] <= o.depth[o.tour[right]] {
		return left
	}
	return right
}
