package tree

import (
	"math"

	"github.com/higra-go/higra/herr"
)

// ValidateAltitudes checks the monotonicity invariant of spec.md §3.3/§3.5
// for a valued hierarchy (tree, altitudes): for a PartitionTree, altitudes
// must be non-decreasing on every root-ward path (a[p[i]] >= a[i]); for a
// ComponentTree, altitudes need only be monotone (non-decreasing or
// non-increasing) along each individual root-ward path, not globally in
// one direction.
func ValidateAltitudes(t *Tree, altitudes []float64) error {
	if len(altitudes) != t.NumNodes() {
		return herr.Wrap(herr.KindInvalidShape, "tree", "altitudes has %d entries, want %d", len(altitudes), t.NumNodes())
	}
	if t.category == PartitionTree {
		for i := 0; i < len(t.parents); i++ {
			p := t.parents[i]
			if p == i {
				continue
			}
			if altitudes[p] < altitudes[i] {
				return herr.Wrap(herr.KindPreconditionFailed, "tree", "altitude[parent %d]=%v < altitude[%d]=%v violates partition-tree monotonicity", p, altitudes[p], i, altitudes[i])
			}
		}
		return nil
	}
	// ComponentTree: each leaf-to-root path must be monotone in *some*
	// fixed direction for that path; verify per-leaf.
	for leaf := 0; leaf < t.numLeaves; leaf++ {
		path, err := t.Ancestors(leaf)
		if err != nil {
			return err
		}
		if len(path) < 2 {
			continue
		}
		increasing := altitudes[path[1]] >= altitudes[path[0]]
		for k := 1; k < len(path)-1; k++ {
			a, b := altitudes[path[k]], altitudes[path[k+1]]
			if increasing && b < a {
				return herr.Wrap(herr.KindPreconditionFailed, "tree", "component-tree altitude path from leaf %d is not monotone at node %d", leaf, path[k])
			}
			if !increasing && b > a {
				return herr.Wrap(herr.KindPreconditionFailed, "tree", "component-tree altitude path from leaf %d is not monotone at node %d", leaf, path[k])
			}
		}
	}
	return nil
}

// HorizontalCutAltitudeAbove returns altitudes[p[root]] := +Inf, the
// convention spec.md §3.5 fixes so a threshold at or above the root's
// altitude always selects the single-node cut {root}.
func HorizontalCutAltitudeAbove(t *Tree, altitudes []float64) float64 {
	_ = t
	_ = altitudes
	return math.Inf(1)
}
