// Package fibheap implements a Fibonacci heap: a mergeable priority
// queue supporting amortized O(1) Insert/DecreaseKey/Union and O(log n)
// ExtractMin (spec.md §2 L0 "Fibonacci heap — Mergeable priority queue
// for generic binary-partition-tree").
//
// The generic BPT builder (package genbpt) uses only Insert and
// ExtractMin: every consolidated edge is inserted afresh and stale or
// tombstoned entries are skipped when popped. DecreaseKey lowers a live
// entry in place through the handle returned by Insert, for callers
// that need to rewrite a specific entry rather than re-push it.
//
// Payloads are tracked by *Node handles returned from Insert, mirroring
// the classic Fredman-Tarjan structure: a root list of trees linked in a
// circular doubly-linked list, each node carrying a degree and a "mark"
// bit used by cascading cuts.
package fibheap

import "math/bits"

// Node is an opaque handle to a heap entry. Callers keep the handle
// returned by Insert to later call DecreaseKey; the handle becomes
// invalid once the node has been extracted.
type Node struct {
	key      float64
	value    interface{}
	degree   int
	mark     bool
	parent   *Node
	child    *Node // one arbitrary child; children form a circular list
	left     *Node // circular doubly-linked sibling list
	right    *Node
}

// Key returns the node's current priority.
func (n *Node) Key() float64 { return n.key }

// Value returns the payload associated with the node at Insert time.
func (n *Node) Value() interface{} { return n.value }

// Heap is a min-oriented Fibonacci heap.
type Heap struct {
	min   *Node // root of minimum key, or nil if empty
	count int
}

// New returns an empty Heap.
func New() *Heap { return &Heap{} }

// Len returns the number of entries currently in the heap.
func (h *Heap) Len() int { return h.count }

// Empty reports whether the heap has no entries.
func (h *Heap) Empty() bool { return h.count == 0 }

// insertRoot splices n into the root list as a standalone circular list
// of one, merged with the existing root list (or becomes it).
func (h *Heap) insertRoot(n *Node) {
	n.left, n.right = n, n
	if h.min == nil {
		h.min = n
		return
	}
	spliceInto(h.min, n)
	if n.key < h.min.key {
		h.min = n
	}
}

// spliceInto merges the circular list containing n into the circular
// list containing into, leaving both lists' other nodes intact.
func spliceInto(into, n *Node) {
	intoRight := into.right
	nLeft := n.left
	into.right = n
	n.left = into
	nLeft.right = intoRight
	intoRight.left = nLeft
}

// Insert adds a new entry with the given key and value, returning a
// handle usable with DecreaseKey. Amortized O(1).
func (h *Heap) Insert(key float64, value interface{}) *Node {
	n := &Node{key: key, value: value}
	h.insertRoot(n)
	h.count++
	return n
}

// Min returns the handle with the smallest key, or nil if the heap is empty.
func (h *Heap) Min() *Node { return h.min }

// Union merges other into h, consuming other (other must not be used
// afterwards). Amortized O(1): simply concatenates the two root lists.
func (h *Heap) Union(other *Heap) {
	if other == nil || other.min == nil {
		return
	}
	if h.min == nil {
		h.min, h.count = other.min, other.count
		return
	}
	// Concatenate the two circular root lists.
	hRight := h.min.right
	oRight := other.min.right
	h.min.right = oRight
	oRight.left = h.min
	other.min.right = hRight
	hRight.left = other.min
	if other.min.key < h.min.key {
		h.min = other.min
	}
	h.count += other.count
}

// removeFromSiblings unlinks n from whatever circular sibling list it is
// in, returning the sibling it should be replaced by (or nil if n was
// the only member).
func removeFromSiblings(n *Node) *Node {
	if n.right == n {
		return nil
	}
	n.left.right = n.right
	n.right.left = n.left
	return n.right
}

// addChild makes child a child of parent, clearing child's mark.
func addChild(parent, child *Node) {
	child.parent = parent
	child.mark = false
	if parent.child == nil {
		child.left, child.right = child, child
		parent.child = child
	} else {
		spliceInto(parent.child, child)
	}
	parent.degree++
}

// ExtractMin removes and returns the minimum-key handle, or nil if the
// heap is empty. Amortized O(log n): promotes the min's children to the
// root list, then consolidates roots of equal degree until all degrees
// are distinct.
func (h *Heap) ExtractMin() *Node {
	z := h.min
	if z == nil {
		return nil
	}

	// Promote every child of z to the root list. Snapshot the child ring
	// into a slice first: insertRootNoMinUpdate mutates sibling pointers,
	// so walking the live ring while promoting is unsafe.
	if z.child != nil {
		var children []*Node
		start := z.child
		c := start
		for {
			children = append(children, c)
			c = c.right
			if c == start {
				break
			}
		}
		for _, child := range children {
			child.parent = nil
			child.left, child.right = child, child
			h.insertRootNoMinUpdate(child)
		}
	}

	// Remove z from the root list.
	if z.right == z {
		h.min = nil
	} else {
		h.min = z.right
		removeFromSiblings(z)
	}
	z.left, z.right, z.parent, z.child = nil, nil, nil, nil

	h.count--
	if h.min != nil {
		h.consolidate()
	}
	return z
}

// removeFromSiblingsSafe detaches n from its current sibling ring,
// leaving n as a singleton ring of one. Used while iterating a
// about-to-be-destroyed child list.
func removeFromSiblingsSafe(n *Node) {
	if n.right != n {
		n.left.right = n.right
		n.right.left = n.left
	}
	n.left, n.right = n, n
}

// insertRootNoMinUpdate splices a singleton node into the root list
// without updating h.min (used mid-ExtractMin, before consolidation
// decides the new min).
func (h *Heap) insertRootNoMinUpdate(n *Node) {
	if h.min == nil {
		h.min = n
		return
	}
	spliceInto(h.min, n)
}

// consolidate merges root-list trees of equal degree until every root
// has a distinct degree, then rescans for the new minimum.
func (h *Heap) consolidate() {
	// log_phi(n) bounds the maximum degree of any Fibonacci-heap node;
	// bits.Len gives a cheap, generous upper bound without floating-point.
	maxDegree := bits.Len(uint(h.count))*2 + 2
	degreeTable := make([]*Node, maxDegree+1)

	// Collect the current root list into a slice first: consolidation
	// mutates sibling pointers, so iterating the live ring is unsafe.
	var roots []*Node
	start := h.min
	cur := start
	for {
		roots = append(roots, cur)
		cur = cur.right
		if cur == start {
			break
		}
	}

	for _, w := range roots {
		x := w
		x.left, x.right = x, x // detach into a standalone singleton
		d := x.degree
		for degreeTable[d] != nil {
			y := degreeTable[d]
			if x.key > y.key {
				x, y = y, x
			}
			// y becomes a child of x.
			degreeTable[d] = nil
			addChild(x, y)
			d = x.degree
		}
		degreeTable[d] = x
	}

	// Rebuild the root list and find the new min.
	h.min = nil
	for _, x := range degreeTable {
		if x == nil {
			continue
		}
		x.left, x.right = x, x
		h.insertRootNoMinUpdate(x)
		if x.key < h.min.key {
			h.min = x
		}
	}
}

// DecreaseKey lowers n's key to newKey, which must be ≤ n's current key.
// If the heap-order invariant breaks against n's parent, n is cut and
// spliced into the root list; cascading cuts propagate up through marked
// ancestors (the standard Fibonacci-heap cascading-cut rule), giving
// amortized O(1).
func (h *Heap) DecreaseKey(n *Node, newKey float64) {
	if newKey > n.key {
		return // spec: only decreases are meaningful; ignore increases.
	}
	n.key = newKey
	p := n.parent
	if p != nil && n.key < p.key {
		h.cut(n, p)
		h.cascadingCut(p)
	}
	if n.key < h.min.key {
		h.min = n
	}
}

// cut detaches child from parent and moves it into the root list.
func (h *Heap) cut(child, parent *Node) {
	if parent.child == child {
		if child.right == child {
			parent.child = nil
		} else {
			parent.child = child.right
		}
	}
	removeFromSiblingsSafe(child)
	parent.degree--
	child.parent = nil
	child.mark = false
	h.insertRootNoMinUpdate(child)
}

// cascadingCut implements the Fibonacci-heap cascading-cut rule: an
// unmarked node that loses a child is marked; a marked node that loses
// another child is itself cut from its parent, recursively.
func (h *Heap) cascadingCut(n *Node) {
	p := n.parent
	if p == nil {
		return
	}
	if !n.mark {
		n.mark = true
		return
	}
	h.cut(n, p)
	h.cascadingCut(p)
}
