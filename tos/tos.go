// Package tos implements spec.md §4.13's tree of shapes over 2-D
// images: a component tree of the upper/lower level sets of an image's
// Khalimsky immersion, built by the same front-propagation-then-union-
// find recipe as a classical max-tree (spec.md §4.15's plain-map
// immersion recast as a component-tree construction problem).
//
// Grounded on bpt.go's runKruskal/compRoot idiom for "track, per
// union-find component root, which already-assigned tree node
// represents it" — generalized here from a strictly-binary merge per
// edge to a node that may gain any number of children at once — and on
// khalimsky.go's (2y,2x) coordinate-doubling convention for the
// Khalimsky immersion itself. qfz.Simplify supplies the Unimmerse
// projection back onto the original pixel grid, reparenting through
// every removed inter-pixel/cross/padding node exactly as it already
// does for quasi-flat-zone simplification.
package tos

import (
	"sort"

	"github.com/google/uuid"

	"github.com/higra-go/higra/config"
	"github.com/higra-go/higra/embedding"
	"github.com/higra-go/higra/graph"
	"github.com/higra-go/higra/herr"
	"github.com/higra-go/higra/qfz"
	"github.com/higra-go/higra/tree"
	"github.com/higra-go/higra/uf"
)

// Padding selects how an image's border is extended by one pixel ring
// before immersion (spec.md §4.13): none leaves the image as-is (so the
// exterior touches the image border directly), zero surrounds it with
// a constant-0 ring, mean surrounds it with the mean of its own border
// pixels.
type Padding int

const (
	PaddingNone Padding = iota
	PaddingZero
	PaddingMean
)

// Result is tos.Build's output. NodeMap[i] is the flat position, in a
// grid of width GridWidth, that tree node i was built from — the
// immersed/padded grid's position when originalSize was false, or the
// original (possibly still immersed) grid's position afterward.
type Result struct {
	Tree      *tree.Tree
	Altitudes []float64
	NodeMap   []int
	GridWidth int
	// BuildID is a generated correlation key for log lines about this
	// particular build; it plays no role in the tree's structure.
	BuildID uuid.UUID
}

// TopLeftExterior is the conventional default exterior vertex used
// when a caller has no reason to pick another one: flat index 0, the
// top-left corner of whatever grid Build ends up constructing,
// regardless of padding or immersion.
func TopLeftExterior([2]int) int { return 0 }

// Build runs spec.md §4.13's tree-of-shapes construction over a 2-D
// image of shape (h,w): pads it per padding, immerses it into a
// Khalimsky-doubled plain map when immersion is true, runs the
// integer-level front propagation from exteriorVertex (an index into
// the resulting grid — see TopLeftExterior) to produce a vertex
// ordering and per-vertex level, builds the shape tree from that
// ordering, and, when originalSize, projects the tree back onto just
// the original h x w pixel positions via Unimmerse.
func Build(image [][]float64, h, w int, padding Padding, originalSize, immersion bool, exteriorVertex int) (*Result, error) {
	if h <= 0 || w <= 0 {
		return nil, herr.Wrap(herr.KindInvalidShape, "tos", "image shape (%d,%d) must be positive", h, w)
	}
	if len(image) != h {
		return nil, herr.Wrap(herr.KindInvalidShape, "tos", "image has %d rows, want %d", len(image), h)
	}
	for _, row := range image {
		if len(row) != w {
			return nil, herr.Wrap(herr.KindInvalidShape, "tos", "image row has %d entries, want %d", len(row), w)
		}
	}

	padded, ph, pw := padRing(image, h, w, padding)
	pm := Immerse(padded, ph, pw, immersion)
	n := pm.H * pm.W
	if exteriorVertex < 0 || exteriorVertex >= n {
		return nil, herr.Wrap(herr.KindOutOfRange, "tos", "exteriorVertex %d out of [0,%d)", exteriorVertex, n)
	}

	_, g, err := embedding.Grid4(pm.H, pm.W)
	if err != nil {
		return nil, err
	}

	levels, rank := sortedLevels(pm.Min, pm.Max)
	sortedOrder, enqueuedLevel, err := sortVertices(g, n, pm.Min, pm.Max, rank, 0, len(levels)-1, exteriorVertex)
	if err != nil {
		return nil, err
	}

	rawParent, err := buildRawParent(g, sortedOrder, enqueuedLevel)
	if err != nil {
		return nil, err
	}
	newParents, numLeaves, oldToNew := canonicalize(rawParent, sortedOrder)

	altitudes := make([]float64, n)
	nodeMap := make([]int, n)
	for old, nw := range oldToNew {
		altitudes[nw] = levels[enqueuedLevel[old]]
		nodeMap[nw] = old
	}

	t, err := tree.New(newParents, numLeaves, tree.ComponentTree)
	if err != nil {
		return nil, err
	}

	buildID := uuid.New()
	config.Logger().WithFields(map[string]interface{}{
		"build_id":   buildID,
		"grid_h":     pm.H,
		"grid_w":     pm.W,
		"num_leaves": numLeaves,
	}).Debug("tos: build complete")
	result := &Result{Tree: t, Altitudes: altitudes, NodeMap: nodeMap, GridWidth: pm.W, BuildID: buildID}
	if !originalSize {
		return result, nil
	}
	return Unimmerse(result, h, w, padding != PaddingNone, immersion)
}

// PlainMap is spec.md §4.13's plain map: one [min,max] interval per
// position of a (possibly Khalimsky-immersed) grid of width W, height H.
type PlainMap struct {
	H, W     int
	Min, Max []float64
}

// Immerse builds image's plain map: when immersion is false, one
// degenerate [v,v] interval per pixel; when true, the Khalimsky-doubled
// (2h-1)x(2w-1) map whose even/even cells carry the pixel itself,
// even/odd and odd/even cells carry the min/max of the two pixels they
// sit between, and odd/odd cells carry the min/max of the four pixels
// surrounding them.
func Immerse(image [][]float64, h, w int, immersion bool) *PlainMap {
	if !immersion {
		minV := make([]float64, h*w)
		maxV := make([]float64, h*w)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				minV[idx] = image[y][x]
				maxV[idx] = image[y][x]
			}
		}
		return &PlainMap{H: h, W: w, Min: minV, Max: maxV}
	}
	minV, maxV := immerseGrid(image, h, w)
	return &PlainMap{H: 2*h - 1, W: 2*w - 1, Min: minV, Max: maxV}
}

// Unimmerse projects a tree built over an immersed/padded grid back
// onto just the original h x w pixel positions, removing every node
// whose grid position is not one of those pixels and reparenting its
// children to the nearest surviving ancestor (qfz.Simplify does the
// reparenting; the predicate here only decides what counts as an
// original pixel).
func Unimmerse(result *Result, origH, origW int, padded, immersion bool) (*Result, error) {
	offset := 0
	if padded {
		offset = 1
	}
	gw := result.GridWidth
	isOriginalPixel := func(pos int) bool {
		y, x := pos/gw, pos%gw
		if immersion {
			if y%2 != 0 || x%2 != 0 {
				return false
			}
			y, x = y/2, x/2
		}
		oy, ox := y-offset, x-offset
		return oy >= 0 && oy < origH && ox >= 0 && ox < origW
	}
	predicate := func(i int) bool { return !isOriginalPixel(result.NodeMap[i]) }

	simplified, err := qfz.Simplify(result.Tree, predicate, true, result.Altitudes)
	if err != nil {
		return nil, err
	}
	nodeMap := make([]int, len(simplified.NodeMap))
	for i, old := range simplified.NodeMap {
		nodeMap[i] = result.NodeMap[old]
	}
	buildID := uuid.New()
	config.Logger().WithFields(map[string]interface{}{
		"build_id":        buildID,
		"source_build_id": result.BuildID,
		"num_nodes":       simplified.Tree.NumNodes(),
	}).Debug("tos: unimmerse complete")
	return &Result{Tree: simplified.Tree, Altitudes: simplified.Altitudes, NodeMap: nodeMap, GridWidth: gw, BuildID: buildID}, nil
}

func padRing(image [][]float64, h, w int, padding Padding) ([][]float64, int, int) {
	if padding == PaddingNone {
		return image, h, w
	}
	ph, pw := h+2, w+2
	out := make([][]float64, ph)
	for i := range out {
		out[i] = make([]float64, pw)
	}
	var border float64
	if padding == PaddingMean {
		border = meanOuterRing(image, h, w)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y+1][x+1] = image[y][x]
		}
	}
	for x := 0; x < pw; x++ {
		out[0][x] = border
		out[ph-1][x] = border
	}
	for y := 1; y < ph-1; y++ {
		out[y][0] = border
		out[y][pw-1] = border
	}
	return out, ph, pw
}

func meanOuterRing(image [][]float64, h, w int) float64 {
	var sum float64
	var count int
	for x := 0; x < w; x++ {
		sum += image[0][x]
		count++
		if h > 1 {
			sum += image[h-1][x]
			count++
		}
	}
	for y := 1; y < h-1; y++ {
		sum += image[y][0] + image[y][w-1]
		count += 2
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func minmax2(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

func minmax4(a, b, c, d float64) (float64, float64) {
	lo, hi := minmax2(a, b)
	lo2, hi2 := minmax2(c, d)
	if lo2 < lo {
		lo = lo2
	}
	if hi2 > hi {
		hi = hi2
	}
	return lo, hi
}

func immerseGrid(image [][]float64, h, w int) ([]float64, []float64) {
	gh, gw := 2*h-1, 2*w-1
	minV := make([]float64, gh*gw)
	maxV := make([]float64, gh*gw)
	set := func(y, x int, lo, hi float64) {
		idx := y*gw + x
		minV[idx] = lo
		maxV[idx] = hi
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := image[y][x]
			set(2*y, 2*x, v, v)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w-1; x++ {
			lo, hi := minmax2(image[y][x], image[y][x+1])
			set(2*y, 2*x+1, lo, hi)
		}
	}
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			lo, hi := minmax2(image[y][x], image[y+1][x])
			set(2*y+1, 2*x, lo, hi)
		}
	}
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			lo, hi := minmax4(image[y][x], image[y][x+1], image[y+1][x], image[y+1][x+1])
			set(2*y+1, 2*x+1, lo, hi)
		}
	}
	return minV, maxV
}

// sortedLevels returns every distinct value appearing in minV/maxV,
// ascending, plus a lookup from value to its rank in that list — the
// integer level a float plain-map endpoint occupies in the fixed-range
// multi-queue below.
func sortedLevels(minV, maxV []float64) ([]float64, map[float64]int) {
	seen := make(map[float64]bool)
	var vals []float64
	for _, v := range minV {
		if !seen[v] {
			seen[v] = true
			vals = append(vals, v)
		}
	}
	for _, v := range maxV {
		if !seen[v] {
			seen[v] = true
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)
	rank := make(map[float64]int, len(vals))
	for i, v := range vals {
		rank[v] = i
	}
	return vals, rank
}

// levelQueue is a fixed-range [minLevel,maxLevel] multi-level queue,
// one LIFO stack per level, with closestNonEmpty searching outward
// from a level alternating downward/upward, ties going to the lower
// level — the integer_level_multi_queue of the 2-D tree-of-shapes
// construction, generalized here from raw pixel levels to plain-map
// endpoint ranks.
type levelQueue struct {
	minLevel, maxLevel int
	data               [][]int
	size               int
}

func newLevelQueue(minLevel, maxLevel int) *levelQueue {
	return &levelQueue{minLevel: minLevel, maxLevel: maxLevel, data: make([][]int, maxLevel-minLevel+1)}
}

func (q *levelQueue) push(level, v int) {
	q.data[level-q.minLevel] = append(q.data[level-q.minLevel], v)
	q.size++
}

func (q *levelQueue) levelEmpty(level int) bool { return len(q.data[level-q.minLevel]) == 0 }

func (q *levelQueue) pop(level int) int {
	s := q.data[level-q.minLevel]
	v := s[len(s)-1]
	q.data[level-q.minLevel] = s[:len(s)-1]
	q.size--
	return v
}

func (q *levelQueue) empty() bool { return q.size == 0 }

func (q *levelQueue) closestNonEmpty(level int) int {
	if !q.levelEmpty(level) {
		return level
	}
	lo, hi := level-1, level+1
	for lo >= q.minLevel || hi <= q.maxLevel {
		if lo >= q.minLevel {
			if !q.levelEmpty(lo) {
				return lo
			}
			lo--
		}
		if hi <= q.maxLevel {
			if !q.levelEmpty(hi) {
				return hi
			}
			hi++
		}
	}
	return -1
}

func clampLevel(level, lo, hi int) int {
	if level < lo {
		return lo
	}
	if level > hi {
		return hi
	}
	return level
}

// sortVertices runs the front propagation of spec.md §4.13 from
// exteriorVertex over the grid graph g: it returns the dequeue order
// (sortedOrder) and, for every vertex, the level it was first enqueued
// at (enqueuedLevel) — clamped into that vertex's own [rank(min),
// rank(max)] range at push time, so it never needs reclamping at pop.
func sortVertices(g *graph.Graph, n int, minV, maxV []float64, rank map[float64]int, minLevel, maxLevel, exteriorVertex int) ([]int, []int, error) {
	q := newLevelQueue(minLevel, maxLevel)
	visited := make([]bool, n)
	rangeOf := func(v int) (int, int) { return rank[minV[v]], rank[maxV[v]] }

	seedLo, seedHi := rangeOf(exteriorVertex)
	current := clampLevel(seedLo, seedLo, seedHi)
	q.push(current, exteriorVertex)
	visited[exteriorVertex] = true

	sortedOrder := make([]int, 0, n)
	enqueuedLevel := make([]int, n)
	for !q.empty() {
		current = q.closestNonEmpty(current)
		if current < minLevel {
			return nil, nil, herr.Wrap(herr.KindDisconnected, "tos", "level queue ran dry before visiting every vertex")
		}
		v := q.pop(current)
		enqueuedLevel[v] = current
		sortedOrder = append(sortedOrder, v)

		inc, err := g.IncidentEdges(v)
		if err != nil {
			return nil, nil, err
		}
		for _, e := range inc {
			u, err := g.Neighbor(v, e)
			if err != nil {
				return nil, nil, err
			}
			if visited[u] {
				continue
			}
			visited[u] = true
			lo, hi := rangeOf(u)
			q.push(clampLevel(current, lo, hi), u)
		}
	}
	if len(sortedOrder) != n {
		return nil, nil, herr.Wrap(herr.KindDisconnected, "tos", "front propagation visited %d of %d vertices", len(sortedOrder), n)
	}
	return sortedOrder, enqueuedLevel, nil
}

// buildRawParent constructs the raw (not yet leaves-first-renumbered)
// shape tree over g's vertices via a union-find sweep from the last
// dequeued vertex to the first — the deepest, most nested shapes to
// the exterior root — mirroring bpt.go's compRoot idiom: rep[root]
// tracks, for each union-find component, which single pixel currently
// represents it as a tree node. A second forward pass then collapses
// every same-level parent hop so a vertex's resolved parent is the
// closest ancestor at a genuinely different level, except that a vertex
// whose same-level chain ends at the root keeps the root as its parent
// even when the root is at the same level.
func buildRawParent(g *graph.Graph, sortedOrder, enqueuedLevel []int) ([]int, error) {
	n := len(sortedOrder)
	rawParent := make([]int, n)
	processed := make([]bool, n)
	dsu := uf.Make(n)
	rep := make([]int, n)

	for i := len(sortedOrder) - 1; i >= 0; i-- {
		p := sortedOrder[i]
		rawParent[p] = p
		rep[dsu.Find(p)] = p

		inc, err := g.IncidentEdges(p)
		if err != nil {
			return nil, err
		}
		for _, e := range inc {
			nb, err := g.Neighbor(p, e)
			if err != nil {
				return nil, err
			}
			if !processed[nb] {
				continue
			}
			r := dsu.Find(nb)
			repNode := rep[r]
			if repNode == p {
				continue
			}
			rawParent[repNode] = p
			newRoot := dsu.Union(p, nb)
			rep[newRoot] = p
		}
		processed[p] = true
	}

	for _, p := range sortedOrder {
		q := rawParent[p]
		if q != p && enqueuedLevel[q] == enqueuedLevel[p] {
			rawParent[p] = rawParent[q]
		}
	}
	return rawParent, nil
}

// canonicalize renumbers a raw parent array (valid as a tree but
// indexed by arbitrary grid position) into the form tree.New requires:
// leaves occupying the exact contiguous prefix [0,numLeaves) and
// parent ids never less than their own. Leaves (grid positions with no
// children) get new ids by ascending grid position; internal nodes get
// new ids by descending dequeue order, which always numbers a node
// after all of its children since a node's dequeue index is always
// smaller than any of its children's (front propagation visits a shape
// before the neighbours it encloses).
func canonicalize(rawParent, sortedOrder []int) ([]int, int, []int) {
	n := len(rawParent)
	forwardIndex := make([]int, n)
	for idx, v := range sortedOrder {
		forwardIndex[v] = idx
	}
	hasChild := make([]bool, n)
	for i, p := range rawParent {
		if p != i {
			hasChild[p] = true
		}
	}
	var leaves, internals []int
	for i := 0; i < n; i++ {
		if hasChild[i] {
			internals = append(internals, i)
		} else {
			leaves = append(leaves, i)
		}
	}
	sort.Ints(leaves)
	sort.Slice(internals, func(a, b int) bool { return forwardIndex[internals[a]] > forwardIndex[internals[b]] })

	oldToNew := make([]int, n)
	for newID, old := range leaves {
		oldToNew[old] = newID
	}
	for k, old := range internals {
		oldToNew[old] = len(leaves) + k
	}

	newParents := make([]int, n)
	for old, nw := range oldToNew {
		newParents[nw] = oldToNew[rawParent[old]]
	}
	return newParents, len(leaves), oldToNew
}
