// Package watershed implements spec.md §4.9's watershed hierarchies: a
// canonical BPT whose merge altitudes are replaced by the persistence
// of a chosen per-node attribute (area, volume, dynamics, or a custom
// functor), re-applied to the minimum spanning tree and simplified on
// altitude plateaus so every horizontal cut of the result is a
// watershed partition under that attribute.
//
// Grounded on bpt.Canonical for the two canonical-BPT passes this
// construction needs (once on the input graph, once on its MST under
// the new persistence weights) and on qfz.Simplify for the final
// altitude-plateau collapse — both reused rather than reimplemented,
// matching the teacher's general preference for composing existing
// validated building blocks over hand-rolling a new traversal.
package watershed

import (
	"github.com/higra-go/higra/bpt"
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/qfz"
	"github.com/higra-go/higra/tree"
	"github.com/higra-go/higra/treeacc"
)

// Attribute selects one of spec.md §4.9's built-in per-node attributes.
type Attribute int

const (
	// ByArea: the attribute is the number of leaves below each node
	// (or the sum of vertexArea, when supplied).
	ByArea Attribute = iota
	// ByVolume: attribute(n) = area(n) * altitude(n).
	ByVolume
	// ByDynamics: attribute(n) = altitude(n), so a node's own merge
	// altitude plays the role area plays for ByArea — the standard
	// "dynamics" construction is this same pipeline with the altitude
	// itself as the seed attribute.
	ByDynamics
)

// AttributeFunc computes a custom base attribute per node of a
// canonical BPT, before correction — spec.md §4.9's by_attribute
// variant. vertexArea is nil unless the caller supplied one.
type AttributeFunc func(t *tree.Tree, altitudes []float64, vertexArea []float64) ([]float64, error)

// Result is a watershed hierarchy: the simplified tree, its remapped
// altitudes (the attribute's persistence values), and the node map
// back to the intermediate MST-rebuilt tree's node ids.
type Result struct {
	Tree      *tree.Tree
	Altitudes []float64
	NodeMap   []int
}

func areaAttribute(t *tree.Tree, _ []float64, vertexArea []float64) ([]float64, error) {
	leafData := vertexArea
	if leafData == nil {
		leafData = make([]float64, t.NumLeaves())
		for i := range leafData {
			leafData[i] = 1
		}
	}
	return treeacc.AccumulateSequential(t, leafData, treeacc.New(treeacc.Sum))
}

func volumeAttribute(t *tree.Tree, altitudes []float64, vertexArea []float64) ([]float64, error) {
	area, err := areaAttribute(t, altitudes, vertexArea)
	if err != nil {
		return nil, err
	}
	volume := make([]float64, len(area))
	for i := range volume {
		volume[i] = area[i] * altitudes[i]
	}
	return volume, nil
}

func dynamicsAttribute(t *tree.Tree, altitudes []float64, _ []float64) ([]float64, error) {
	return append([]float64(nil), altitudes...), nil
}

func builtinAttribute(a Attribute) (AttributeFunc, error) {
	switch a {
	case ByArea:
		return areaAttribute, nil
	case ByVolume:
		return volumeAttribute, nil
	case ByDynamics:
		return dynamicsAttribute, nil
	default:
		return nil, herr.Wrap(herr.KindUnsupported, "watershed", "unknown attribute %d", a)
	}
}

// correctAttribute applies spec.md §4.9 step 3: for internal node n,
// keep attribute(n) when altitude(n) != altitude(parent(n)); otherwise
// replace it with the max of its children's already-corrected
// attributes. The root always keeps its own value. Requires
// t.ComputeChildren to have been called.
func correctAttribute(t *tree.Tree, altitudes, attribute []float64) ([]float64, error) {
	if !t.ChildrenComputed() {
		return nil, herr.Wrap(herr.KindPreconditionFailed, "watershed", "ComputeChildren must be called before correctAttribute")
	}
	corrected := append([]float64(nil), attribute...)
	parents := t.Parents()
	for _, i := range t.LeavesToRoot(false, false) {
		if altitudes[i] != altitudes[parents[i]] {
			continue
		}
		children, err := t.Children(i)
		if err != nil {
			return nil, err
		}
		best := corrected[children[0]]
		for _, c := range children[1:] {
			if corrected[c] > best {
				best = corrected[c]
			}
		}
		corrected[i] = best
	}
	return corrected, nil
}

// persistence applies spec.md §4.9 step 4: the minimum of the
// corrected attribute along each node's path to the root, with leaves
// forced to 0.
func persistence(t *tree.Tree, corrected []float64) []float64 {
	out := make([]float64, t.NumNodes())
	parents := t.Parents()
	root := t.Root()
	out[root] = corrected[root]
	for _, i := range t.RootToLeaves(false, false) {
		out[i] = corrected[i]
		if out[parents[i]] < out[i] {
			out[i] = out[parents[i]]
		}
	}
	for i := 0; i < t.NumLeaves(); i++ {
		out[i] = 0
	}
	return out
}

// Hierarchy builds a watershed hierarchy of g under w using one of the
// built-in attributes (spec.md §4.9 steps 1-6). vertexArea may be nil,
// in which case ByArea and ByVolume count each leaf as area 1;
// ByDynamics never reads vertexArea.
func Hierarchy(g *graph.Graph, w []float64, vertexArea []float64, attribute Attribute) (*Result, error) {
	fn, err := builtinAttribute(attribute)
	if err != nil {
		return nil, err
	}
	return ByAttribute(g, w, vertexArea, fn)
}

// ByAttribute runs spec.md §4.9's full pipeline with a caller-supplied
// attribute functor, for the by_attribute variant.
func ByAttribute(g *graph.Graph, w []float64, vertexArea []float64, attribute AttributeFunc) (*Result, error) {
	canon, err := bpt.Canonical(g, w)
	if err != nil {
		return nil, err
	}
	t := canon.Tree
	t.ComputeChildren()

	base, err := attribute(t, canon.Altitudes, vertexArea)
	if err != nil {
		return nil, err
	}
	corrected, err := correctAttribute(t, canon.Altitudes, base)
	if err != nil {
		return nil, err
	}
	pers := persistence(t, corrected)

	n := g.NumVertices()
	newWeights := make([]float64, n-1)
	for k := 0; k < n-1; k++ {
		newWeights[k] = pers[n+k]
	}

	rebuilt, err := bpt.Canonical(canon.MST, newWeights)
	if err != nil {
		return nil, err
	}
	rebuilt.Tree.ComputeChildren()

	rebuiltParents := rebuilt.Tree.Parents()
	predicate := func(i int) bool {
		return rebuilt.Altitudes[i] == rebuilt.Altitudes[rebuiltParents[i]]
	}
	simplified, err := qfz.Simplify(rebuilt.Tree, predicate, false, rebuilt.Altitudes)
	if err != nil {
		return nil, err
	}
	return &Result{Tree: simplified.Tree, Altitudes: simplified.Altitudes, NodeMap: simplified.NodeMap}, nil
}
