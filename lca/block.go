package lca

import (
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// NewSparseTableBlock builds a block-decomposed RMQ oracle over t's
// Euler tour: O(N) preprocessing, O(blockSize) query (spec.md §4.6's
// LCA_sparse_table_block). Within a block, queries fall back to a
// linear scan; across blocks, a sparse table over per-block minima
// combines with precomputed block prefix/suffix minima.
func NewSparseTableBlock(t *tree.Tree, blockSize int) (*Oracle, error) {
	if blockSize <= 0 {
		return nil, herr.Wrap(herr.KindInvalidShape, "lca", "blockSize must be positive, got %d", blockSize)
	}
	tour, depth, firstVisit, err := eulerTour(t)
	if err != nil {
		return nil, err
	}
	o := &Oracle{tour: tour, depth: depth, firstVisit: firstVisit, blockSize: blockSize}
	o.buildBlocks()
	return o, nil
}

func (o *Oracle) blockOf(i int) int { return i / o.blockSize }

func (o *Oracle) buildBlocks() {
	n := len(o.tour)
	o.prefixMinIdx = make([]int, n)
	o.suffixMinIdx = make([]int, n)

	numBlocks := (n + o.blockSize - 1) / o.blockSize
	o.blockMinIdx = make([]int, numBlocks)

	for b := 0; b < numBlocks; b++ {
		start := b * o.blockSize
		end := start + o.blockSize
		if end > n {
			end = n
		}
		best := start
		for i := start; i < end; i++ {
			if o.depth[o.tour[i]] < o.depth[o.tour[best]] {
				best = i
			}
			o.prefixMinIdx[i] = best
		}
		o.blockMinIdx[b] = best

		best = end - 1
		for i := end - 1; i >= start; i-- {
			if o.depth[o.tour[i]] < o.depth[o.tour[best]] {
				best = i
			}
			o.suffixMinIdx[i] = best
		}
	}

	o.buildBlockSparse()
}

func (o *Oracle) buildBlockSparse() {
	n := len(o.blockMinIdx)
	if n == 0 {
		o.blockSparse = [][]int{}
		return
	}
	levels := floorLog2(n) + 1
	table := make([][]int, levels)
	table[0] = append([]int(nil), o.blockMinIdx...)
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
	o.blockSparse = table
}

// blockRangeMinOverBlocks returns the tour-index of the minimum-depth
// position among complete blocks [bl, br] (inclusive, block indices).
func (o *Oracle) blockRangeMinOverBlocks(bl, br int) int {
	k := floorLog2(br - bl + 1)
	left := o.blockSparse[k][bl]
	right := o.blockSparse[k][br-(1<<uint(k))+1]
	if o.depth[o.tour[left]] <= o.depth[o.tour[right]] {
		return left
	}
	return right
}

func (o *Oracle) blockRangeMin(l, r int) int {
	bl, br := o.blockOf(l), o.blockOf(r)
	if bl == br {
		best := l
		for i := l + 1; i <= r; i++ {
			if o.depth[o.tour[i]] < o.depth[o.tour[best]] {
				best = i
			}
		}
		return best
	}

	best := o.suffixMinIdx[l]
	candidate := o.prefixMinIdx[r]
	if o.depth[o.tour[candidate]] < o.depth[o.tour[best]] {
		best = candidate
	}
	if br-bl > 1 {
		mid := o.blockRangeMinOverBlocks(bl+1, br-1)
		if o.depth[o.tour[mid]] < o.depth[o.tour[best]] {
			best = mid
		}
	}
	return best
}
