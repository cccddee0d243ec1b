// Package qfz implements spec.md §4.5's simplify_tree and
// quasi-flat-zones: removing nodes matched by a boolean predicate and
// reparenting their children to the nearest surviving ancestor, with
// quasi-flat-zones defined as the canonical BPT simplified by the
// altitude-plateau predicate (altitudes[i] == altitudes[p[i]]).
//
// Grounded on core/graph.go's constructor-validates-then-returns style
// and on tree's own "compute before use" idiom, adapted to a
// reparent-and-renumber pass since no teacher package performs tree
// node removal.
package qfz

import (
	"github.com/higra-go/higra/bpt"
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/tree"
)

// Predicate decides whether node i should be removed from the tree.
type Predicate func(i int) bool

// SimplifyResult is the simplified tree plus the new→original id map
// (spec.md §4.5's node_map) and the remapped altitudes, when altitudes
// were supplied.
type SimplifyResult struct {
	Tree      *tree.Tree
	NodeMap   []int // NodeMap[newID] = originalID
	Altitudes []float64
}

// Simplify removes every node i (other than the root) for which
// predicate(i) holds, reparenting its children to its nearest
// surviving ancestor. Leaves may be removed only when allowLeafRemoval
// is true, since removing a leaf changes num_leaves and requires the
// leaves-first numbering to be rebuilt; altitudes, if non-nil, must
// have one entry per original node and are carried through to the new
// numbering.
func Simplify(t *tree.Tree, predicate Predicate, allowLeafRemoval bool, altitudes []float64) (*SimplifyResult, error) {
	n := t.NumNodes()
	if altitudes != nil && len(altitudes) != n {
		return nil, herr.Wrap(herr.KindInvalidShape, "qfz", "altitudes has %d entries, want %d", len(altitudes), n)
	}

	removed := make([]bool, n)
	for i := 0; i < n; i++ {
		if i == t.Root() {
			continue
		}
		if !allowLeafRemoval && t.IsLeaf(i) {
			continue
		}
		removed[i] = predicate(i)
	}

	// nearestSurvivor[i] = i if i survives, else the nearest surviving
	// ancestor of i. Computed root-to-leaves: p[i] > i for every
	// non-root i, so a node's surviving-ancestor lookup needs its
	// parent's answer resolved first, which requires visiting in
	// decreasing id order.
	parents := t.Parents()
	nearestSurvivor := make([]int, n)
	for _, i := range t.RootToLeaves(true, true) {
		if !removed[i] {
			nearestSurvivor[i] = i
			continue
		}
		nearestSurvivor[i] = nearestSurvivor[parents[i]]
	}

	// Assign new ids: surviving leaves first (in original relative
	// order), then surviving internal nodes (in original relative
	// order, which remains topologically sorted since we only ever
	// drop nodes, never reorder survivors).
	newID := make([]int, n)
	for i := range newID {
		newID[i] = -1
	}
	nodeMap := make([]int, 0, n)
	newNumLeaves := 0
	for i := 0; i < t.NumLeaves(); i++ {
		if !removed[i] {
			newID[i] = len(nodeMap)
			nodeMap = append(nodeMap, i)
			newNumLeaves++
		}
	}
	for i := t.NumLeaves(); i < n; i++ {
		if !removed[i] {
			newID[i] = len(nodeMap)
			nodeMap = append(nodeMap, i)
		}
	}

	newParents := make([]int, len(nodeMap))
	var newAltitudes []float64
	if altitudes != nil {
		newAltitudes = make([]float64, len(nodeMap))
	}
	for newI, origI := range nodeMap {
		if origI == t.Root() {
			newParents[newI] = newI
		} else {
			survivingParent := nearestSurvivor[parents[origI]]
			newParents[newI] = newID[survivingParent]
		}
		if altitudes != nil {
			newAltitudes[newI] = altitudes[origI]
		}
	}

	simplified, err := tree.New(newParents, newNumLeaves, t.Category())
	if err != nil {
		return nil, err
	}
	return &SimplifyResult{Tree: simplified, NodeMap: nodeMap, Altitudes: newAltitudes}, nil
}

// QuasiFlatZones builds the canonical BPT of g under w, then simplifies
// it with the altitude-plateau predicate altitudes[i] == altitudes[p[i]]
// (spec.md §4.5): the result is equivalent to the saliency map produced
// by the canonical BPT directly.
func QuasiFlatZones(g *graph.Graph, w []float64) (*SimplifyResult, error) {
	res, err := bpt.Canonical(g, w)
	if err != nil {
		return nil, err
	}
	parents := res.Tree.Parents()
	predicate := func(i int) bool {
		return res.Altitudes[i] == res.Altitudes[parents[i]]
	}
	return Simplify(res.Tree, predicate, false, res.Altitudes)
}
