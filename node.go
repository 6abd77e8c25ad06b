// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package art

import (
	"bytes"
	"sort"
	"unsafe"
)

const (
	// node4 has no companion Min: unlike the other classes it has no
	// smaller class with nonzero capacity, so its underfull condition
	// (see isUnderfull) is value-aware rather than a fixed threshold.
	node4Max = 4

	// Inner nodes of type node16 hold between 5 and 16 children.
	node16Min = 5
	node16Max = 16

	// Inner nodes of type node48 hold between 17 and 48 children.
	node48Min = 17
	node48Max = 48

	// Inner nodes of type node256 hold between 49 and 256 children.
	node256Min = 49
	node256Max = 256
)

// node holds the fields common to every size class: the compressed
// prefix, the optional value slot, and the current child count. It is
// always the first field of a size class's storage struct so that a
// *node4, *node16, *node48 or *node256 can be reinterpreted as a *node
// through the same unsafe.Pointer that artNode.ref carries.
type node struct {
	prefix   []byte
	value    Value
	hasValue bool
	size     int
}

// node4 stores up to node4Max children in two parallel arrays: sorted
// partial keys and their corresponding children. Lookup is a linear
// scan, which is cheap at this size.
type node4 struct {
	node
	keys     [node4Max]byte
	children [node4Max]*artNode
}

// node16 is structurally identical to node4 but holds more children;
// like node4 the keys are kept sorted.
type node16 struct {
	node
	keys     [node16Max]byte
	children [node16Max]*artNode
}

// node48 no longer stores keys explicitly. Instead it keeps a
// byte-indexed 256-entry table of 1-based slot indexes into a
// 48-entry child array; a zero entry means "no child for this byte".
type node48 struct {
	node
	keys     [256]uint8
	children [node48Max]*artNode
}

// node256 is a direct byte-indexed array of children; absent entries
// are nil.
type node256 struct {
	node
	children [node256Max]*artNode
}

// artNode is a tagged pointer to one of node (N0), node4, node16,
// node48 or node256. The kind tag selects which concrete layout ref
// points at.
type artNode struct {
	kind Kind
	ref  unsafe.Pointer
}

func newNode0() *artNode {
	return &artNode{kind: N0, ref: unsafe.Pointer(&node{})}
}

func newNode4() *artNode {
	return &artNode{kind: N4, ref: unsafe.Pointer(&node4{})}
}

func newNode16() *artNode {
	return &artNode{kind: N16, ref: unsafe.Pointer(&node16{})}
}

func newNode48() *artNode {
	return &artNode{kind: N48, ref: unsafe.Pointer(&node48{})}
}

func newNode256() *artNode {
	return &artNode{kind: N256, ref: unsafe.Pointer(&node256{})}
}

func (n *artNode) node() *node       { return (*node)(n.ref) }
func (n *artNode) node4() *node4     { return (*node4)(n.ref) }
func (n *artNode) node16() *node16   { return (*node16)(n.ref) }
func (n *artNode) node48() *node48   { return (*node48)(n.ref) }
func (n *artNode) node256() *node256 { return (*node256)(n.ref) }

func (n *artNode) Kind() Kind { return n.kind }

// Prefix returns the node's compressed prefix bytes.
func (n *artNode) Prefix() []byte { return n.node().prefix }

func (n *artNode) setPrefix(p []byte) {
	cp := make([]byte, len(p))
	copy(cp, p)
	n.node().prefix = cp
}

// Value returns the node's value slot and whether it is populated.
func (n *artNode) Value() (Value, bool) {
	nn := n.node()
	return nn.value, nn.hasValue
}

func (n *artNode) setValue(v Value) {
	nn := n.node()
	nn.value = v
	nn.hasValue = true
}

func (n *artNode) clearValue() {
	nn := n.node()
	nn.value = nil
	nn.hasValue = false
}

func (n *artNode) hasValue() bool { return n.node().hasValue }

// numChildren returns the number of children currently attached to
// this node. It is always 0 for a N0 node.
func (n *artNode) numChildren() int { return n.node().size }

func (n *artNode) isFull() bool {
	switch n.kind {
	case N0:
		return true
	default:
		return n.node().size == n.maxSize()
	}
}

// isUnderfull reports whether the node should shrink. N4 is special:
// unlike the other classes it has no smaller class with nonzero
// capacity, so a 1-child N4 is only underfull (collapsible) when it
// also holds no value of its own; a 1-child, valued N4 is already
// minimal and stays put. A 0-child N4 (it lost its last child but
// kept its own value) demotes to N0.
func (n *artNode) isUnderfull() bool {
	switch n.kind {
	case N0:
		return false
	case N4:
		size := n.node().size
		if size == 0 {
			return true
		}
		return size == 1 && !n.hasValue()
	case N16:
		return n.node().size < node16Min
	case N48:
		return n.node().size < node48Min
	case N256:
		return n.node().size < node256Min
	}
	return false
}

func (n *artNode) maxSize() int {
	switch n.kind {
	case N4:
		return node4Max
	case N16:
		return node16Max
	case N48:
		return node48Max
	case N256:
		return node256Max
	}
	return 0
}

// checkPrefix returns the number of leading bytes shared between the
// node's prefix and key[depth:], bounded by both lengths.
func (n *artNode) checkPrefix(key []byte, depth int) int {
	prefix := n.node().prefix
	limit := len(prefix)
	if rem := len(key) - depth; rem < limit {
		limit = rem
	}
	i := 0
	for ; i < limit; i++ {
		if prefix[i] != key[depth+i] {
			return i
		}
	}
	return i
}

// index returns the slot holding the child for the given partial key,
// or -1 if there is none. Only meaningful for N4/N16/N48.
func (n *artNode) index(key byte) int {
	switch n.kind {
	case N4:
		n4 := n.node4()
		for i := 0; i < n4.size; i++ {
			if n4.keys[i] == key {
				return i
			}
		}
		return -1
	case N16:
		n16 := n.node16()
		return bytes.IndexByte(n16.keys[:n16.size], key)
	case N48:
		n48 := n.node48()
		if slot := n48.keys[key]; slot > 0 {
			return int(slot) - 1
		}
		return -1
	}
	return -1
}

// findChild returns a pointer to the child slot for the given partial
// key, or nil if there is no such child.
func (n *artNode) findChild(key byte) **artNode {
	switch n.kind {
	case N0:
		return nil
	case N4:
		if idx := n.index(key); idx >= 0 {
			return &n.node4().children[idx]
		}
		return nil
	case N16:
		if idx := n.index(key); idx >= 0 {
			return &n.node16().children[idx]
		}
		return nil
	case N48:
		if idx := n.index(key); idx >= 0 {
			return &n.node48().children[idx]
		}
		return nil
	case N256:
		if child := n.node256().children[key]; child != nil {
			return &n.node256().children[key]
		}
		return nil
	}
	return nil
}

// setChild attaches child under the given partial key. The caller
// must ensure the node is not already full and does not already hold
// a child for this key.
func (n *artNode) setChild(key byte, child *artNode) {
	switch n.kind {
	case N4:
		n4 := n.node4()
		if n4.size >= node4Max {
			panic("art: setChild on full node4")
		}
		idx := 0
		for ; idx < n4.size; idx++ {
			if key < n4.keys[idx] {
				break
			}
		}
		for i := n4.size; i > idx; i-- {
			n4.keys[i] = n4.keys[i-1]
			n4.children[i] = n4.children[i-1]
		}
		n4.keys[idx] = key
		n4.children[idx] = child
		n4.size++

	case N16:
		n16 := n.node16()
		if n16.size >= node16Max {
			panic("art: setChild on full node16")
		}
		idx := sort.Search(n16.size, func(i int) bool { return n16.keys[i] >= key })
		for i := n16.size; i > idx; i-- {
			n16.keys[i] = n16.keys[i-1]
			n16.children[i] = n16.children[i-1]
		}
		n16.keys[idx] = key
		n16.children[idx] = child
		n16.size++

	case N48:
		n48 := n.node48()
		if n48.size >= node48Max {
			panic("art: setChild on full node48")
		}
		slot := 0
		for n48.children[slot] != nil {
			slot++
		}
		n48.children[slot] = child
		n48.keys[key] = uint8(slot + 1)
		n48.size++

	case N256:
		n256 := n.node256()
		if n256.size >= node256Max {
			panic("art: setChild on full node256")
		}
		n256.children[key] = child
		n256.size++

	default:
		panic("art: setChild on node0")
	}
}

// delChild removes the child for the given partial key, if present.
func (n *artNode) delChild(key byte) {
	switch n.kind {
	case N4:
		n4 := n.node4()
		idx := n.index(key)
		if idx < 0 {
			return
		}
		for i := idx; i < n4.size-1; i++ {
			n4.keys[i] = n4.keys[i+1]
			n4.children[i] = n4.children[i+1]
		}
		n4.keys[n4.size-1] = 0
		n4.children[n4.size-1] = nil
		n4.size--

	case N16:
		n16 := n.node16()
		idx := n.index(key)
		if idx < 0 {
			return
		}
		for i := idx; i < n16.size-1; i++ {
			n16.keys[i] = n16.keys[i+1]
			n16.children[i] = n16.children[i+1]
		}
		n16.keys[n16.size-1] = 0
		n16.children[n16.size-1] = nil
		n16.size--

	case N48:
		n48 := n.node48()
		idx := n.index(key)
		if idx < 0 {
			return
		}
		n48.children[idx] = nil
		n48.keys[key] = 0
		n48.size--

	case N256:
		n256 := n.node256()
		if n256.children[key] == nil {
			return
		}
		n256.children[key] = nil
		n256.size--
	}
}

// nextPartialKey returns the smallest partial key present that is >=
// floor, and whether one was found. Used to drive ordered iteration
// and to locate a lone sibling during deletion.
func (n *artNode) nextPartialKey(floor int) (byte, bool) {
	switch n.kind {
	case N4:
		n4 := n.node4()
		best, found := 0, false
		for i := 0; i < n4.size; i++ {
			if int(n4.keys[i]) >= floor && (!found || n4.keys[i] < byte(best)) {
				best, found = int(n4.keys[i]), true
			}
		}
		return byte(best), found
	case N16:
		n16 := n.node16()
		for i := 0; i < n16.size; i++ {
			if int(n16.keys[i]) >= floor {
				return n16.keys[i], true
			}
		}
		return 0, false
	case N48:
		n48 := n.node48()
		for b := floor; b <= 255; b++ {
			if n48.keys[b] > 0 {
				return byte(b), true
			}
		}
		return 0, false
	case N256:
		n256 := n.node256()
		for b := floor; b <= 255; b++ {
			if n256.children[b] != nil {
				return byte(b), true
			}
			if b == 255 {
				break
			}
		}
		return 0, false
	}
	return 0, false
}

// grow returns a copy of n promoted to the next larger size class,
// carrying over the prefix, value slot and all children. node256
// cannot grow further.
func (n *artNode) grow() *artNode {
	switch n.kind {
	case N0:
		other := newNode4()
		other.copyMeta(n)
		return other

	case N4:
		other := newNode16()
		other.copyMeta(n)
		n4 := n.node4()
		o16 := other.node16()
		for i := 0; i < n4.size; i++ {
			o16.keys[i] = n4.keys[i]
			o16.children[i] = n4.children[i]
		}
		o16.size = n4.size
		return other

	case N16:
		other := newNode48()
		other.copyMeta(n)
		n16 := n.node16()
		o48 := other.node48()
		for i := 0; i < n16.size; i++ {
			o48.children[i] = n16.children[i]
			o48.keys[n16.keys[i]] = uint8(i + 1)
		}
		o48.size = n16.size
		return other

	case N48:
		other := newNode256()
		other.copyMeta(n)
		n48 := n.node48()
		o256 := other.node256()
		for b := 0; b < 256; b++ {
			if slot := n48.keys[b]; slot > 0 {
				o256.children[b] = n48.children[slot-1]
			}
		}
		o256.size = n48.size
		return other

	case N256:
		panic("art: grow on node256")
	}
	panic("art: grow on unknown kind")
}

// shrink returns a copy of n demoted to the next smaller size class,
// carrying over the prefix, value slot and all children. node4 has no
// smaller class with nonzero capacity, so it demotes to a childless n0
// if it lost its last child, or collapses into its sole remaining
// child if it has none of its own value to lose.
func (n *artNode) shrink() *artNode {
	switch n.kind {
	case N4:
		if n.node().size == 0 {
			leaf := newNode0()
			leaf.copyMeta(n)
			return leaf
		}
		if n.node().size > 1 {
			panic("art: shrink on node4 with more than one child")
		}
		return mergeChild(n)

	case N16:
		other := newNode4()
		other.copyMeta(n)
		n16 := n.node16()
		o4 := other.node4()
		for i := 0; i < n16.size; i++ {
			o4.keys[i] = n16.keys[i]
			o4.children[i] = n16.children[i]
		}
		o4.size = n16.size
		return other

	case N48:
		other := newNode16()
		other.copyMeta(n)
		n48 := n.node48()
		o16 := other.node16()
		for b := 0; b < 256; b++ {
			if slot := n48.keys[b]; slot > 0 {
				o16.keys[o16.size] = byte(b)
				o16.children[o16.size] = n48.children[slot-1]
				o16.size++
			}
		}
		return other

	case N256:
		other := newNode48()
		other.copyMeta(n)
		n256 := n.node256()
		o48 := other.node48()
		for b := 0; b < 256; b++ {
			if child := n256.children[b]; child != nil {
				o48.children[o48.size] = child
				o48.keys[b] = uint8(o48.size + 1)
				o48.size++
			}
		}
		return other
	}
	panic("art: shrink on node not eligible for shrink")
}

// copyMeta copies the prefix and value slot from src into n. It does
// not copy children or size; callers copy children themselves in the
// class-appropriate layout and set size accordingly.
func (n *artNode) copyMeta(src *artNode) {
	from := src.node()
	to := n.node()
	to.prefix = from.prefix
	to.value = from.value
	to.hasValue = from.hasValue
}

// mergeChild collapses a value-less single-child node into that
// child, extending the child's prefix to absorb n's own prefix and
// the edge byte between them. n itself is discarded.
func mergeChild(n *artNode) *artNode {
	edge, ok := n.nextPartialKey(0)
	if !ok {
		panic("art: mergeChild on node without children")
	}
	child := *n.findChild(edge)
	child.setPrefix(concatPrefix(n.Prefix(), edge, child.Prefix()))
	return child
}

// concatPrefix builds a new prefix by concatenating a parent's
// prefix, the edge byte taken to reach a child, and the child's own
// prefix, in that order, into a freshly allocated slice. Every byte
// is written before anything reads it back.
func concatPrefix(parentPrefix []byte, edge byte, childPrefix []byte) []byte {
	out := make([]byte, 0, len(parentPrefix)+1+len(childPrefix))
	out = append(out, parentPrefix...)
	out = append(out, edge)
	out = append(out, childPrefix...)
	return out
}
