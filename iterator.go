// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package art

// iterFrame is one entry of an Iterator's traversal stack: a node, its
// full key path (from the root through the node's own prefix), the
// partial key floor to resume child enumeration from, and whether the
// node's own value has already been considered.
type iterFrame struct {
	node      *artNode
	path      []byte
	floor     int
	valueDone bool
}

// iterStackInline is the number of frames an Iterator can hold without
// a heap allocation. Eight covers all but pathologically deep trees.
const iterStackInline = 8

// iterStack is a LIFO stack of traversal frames, backed by a small
// inline array with a slice fallback once it overflows.
type iterStack struct {
	inline    [iterStackInline]iterFrame
	inlineLen int
	heap      []iterFrame
}

func (s *iterStack) len() int { return s.inlineLen + len(s.heap) }

func (s *iterStack) push(f iterFrame) {
	if len(s.heap) == 0 && s.inlineLen < iterStackInline {
		s.inline[s.inlineLen] = f
		s.inlineLen++
		return
	}
	s.heap = append(s.heap, f)
}

// top returns a pointer to the frame currently on top of the stack, or
// nil if the stack is empty. The returned pointer aliases the stack's
// own storage so callers can update floor/valueDone in place.
func (s *iterStack) top() *iterFrame {
	if n := len(s.heap); n > 0 {
		return &s.heap[n-1]
	}
	if s.inlineLen > 0 {
		return &s.inline[s.inlineLen-1]
	}
	return nil
}

func (s *iterStack) pop() {
	if n := len(s.heap); n > 0 {
		s.heap = s.heap[:n-1]
		return
	}
	if s.inlineLen > 0 {
		s.inlineLen--
	}
}

// Iterator walks bound keys in ascending lexicographic order. It holds
// its own traversal stack independent of the tree it was created from;
// mutating the tree while an Iterator is live is not supported. The
// zero Iterator behaves like Tree.End(): Done reports true and Next
// always reports false.
type Iterator struct {
	stack iterStack
	key   Key
	val   Value
	valid bool
}

// Next advances the iterator to the next key in order and reports
// whether a key is now positioned. Once it returns false the iterator
// is exhausted and further calls keep returning false.
func (it *Iterator) Next() bool {
	for it.stack.len() > 0 {
		f := it.stack.top()
		if !f.valueDone {
			f.valueDone = true
			if v, ok := f.node.Value(); ok {
				it.key = f.path
				it.val = v
				it.valid = true
				return true
			}
		}

		edge, ok := f.node.nextPartialKey(f.floor)
		if !ok {
			it.stack.pop()
			continue
		}
		f.floor = int(edge) + 1

		child := *f.node.findChild(edge)
		childPath := concatPrefix(f.path, edge, child.Prefix())
		it.stack.push(iterFrame{node: child, path: childPath})
	}

	it.key, it.val = nil, nil
	it.valid = false
	return false
}

// Done reports whether the iterator is not currently positioned on a
// key, either because Next has not yet been called or because it has
// been exhausted.
func (it *Iterator) Done() bool { return !it.valid }

// Key returns the key at the iterator's current position. It is only
// valid to call after Next has returned true.
func (it *Iterator) Key() Key { return it.key }

// Value returns the value at the iterator's current position. It is
// only valid to call after Next has returned true.
func (it *Iterator) Value() Value { return it.val }

// comparePrefixToSeek compares a node's prefix against seek[depth:],
// returning -1 if the prefix (and everything under it) sorts strictly
// before seek, +1 if it sorts at or after seek, and 0 if seek[depth:]
// matches the whole prefix, either ending exactly where the prefix
// ends or continuing beyond it (the caller tells the two apart).
func comparePrefixToSeek(prefix []byte, seek Key, depth int) int {
	rem := len(seek) - depth
	limit := len(prefix)
	if rem < limit {
		limit = rem
	}
	for i := 0; i < limit; i++ {
		if prefix[i] != seek[depth+i] {
			if prefix[i] < seek[depth+i] {
				return -1
			}
			return 1
		}
	}
	if len(prefix) > rem {
		return 1
	}
	return 0
}

// seekDescend positions it at the smallest key >= seek reachable under
// n, pushing the ancestor frames needed to resume ordinary in-order
// traversal once that subtree is exhausted. It reports whether such a
// key exists under n; on failure the stack is left exactly as it was
// found.
func seekDescend(it *Iterator, n *artNode, path []byte, seek Key, depth int) bool {
	p := n.Prefix()
	switch comparePrefixToSeek(p, seek, depth) {
	case -1:
		return false
	case 1:
		it.stack.push(iterFrame{node: n, path: path})
		return true
	}

	newDepth := depth + len(p)
	if newDepth >= len(seek) {
		it.stack.push(iterFrame{node: n, path: path})
		return true
	}

	edge := seek[newDepth]
	if childSlot := n.findChild(edge); childSlot != nil {
		child := *childSlot
		childPath := concatPrefix(path, edge, child.Prefix())
		it.stack.push(iterFrame{node: n, path: path, floor: int(edge) + 1, valueDone: true})
		if seekDescend(it, child, childPath, seek, newDepth+1) {
			return true
		}
		it.stack.pop()
	}

	if sibling, ok := n.nextPartialKey(int(edge) + 1); ok {
		child := *n.findChild(sibling)
		childPath := concatPrefix(path, sibling, child.Prefix())
		it.stack.push(iterFrame{node: n, path: path, floor: int(sibling) + 1, valueDone: true})
		it.stack.push(iterFrame{node: child, path: childPath})
		return true
	}

	return false
}
