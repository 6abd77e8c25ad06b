// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package art

// tree is the concrete implementation of Tree: a single optional root
// node plus a running count of bound keys.
type tree struct {
	root *artNode
	size int
}

func newArt() *tree {
	return &tree{}
}

func (t *tree) Size() int { return t.size }

// Get performs a read-only point lookup. See spec §4.4.
func (t *tree) Get(key Key) (Value, bool) {
	cur := t.root
	depth := 0
	for cur != nil {
		p := cur.Prefix()
		rem := len(key) - depth
		m := cur.checkPrefix(key, depth)
		if m != len(p) {
			return nil, false
		}
		if rem == len(p) {
			return cur.Value()
		}
		childSlot := cur.findChild(key[depth+len(p)])
		if childSlot == nil {
			return nil, false
		}
		cur = *childSlot
		depth += len(p) + 1
	}
	return nil, false
}

// Set inserts or replaces the binding for key. See spec §4.2.
func (t *tree) Set(key Key, value Value) (Value, bool) {
	if t.root == nil {
		leaf := newNode0()
		leaf.setPrefix(key)
		leaf.setValue(value)
		t.root = leaf
		t.size++
		return nil, false
	}
	return t.setAt(&t.root, key, value, 0)
}

func (t *tree) setAt(ref **artNode, key Key, value Value, depth int) (Value, bool) {
	cur := *ref
	p := cur.Prefix()
	rem := len(key) - depth
	m := cur.checkPrefix(key, depth)

	if m == len(p) {
		if rem == len(p) {
			// Exact match: replace the value in place.
			old, had := cur.Value()
			cur.setValue(value)
			return old, had
		}

		// Prefix fully consumed, key continues: descend or attach.
		depth += len(p)
		b := key[depth]
		if childSlot := cur.findChild(b); childSlot != nil {
			return t.setAt(childSlot, key, value, depth+1)
		}
		if cur.isFull() {
			grown := cur.grow()
			*ref = grown
			cur = grown
		}
		leaf := newNode0()
		leaf.setPrefix(key[depth+1:])
		leaf.setValue(value)
		cur.setChild(b, leaf)
		t.size++
		return nil, false
	}

	if rem == m {
		// New key is a proper prefix of the current node's key: split,
		// with the new parent holding the inserted value.
		parent := newNode4()
		parent.setPrefix(p[:m])
		parent.setValue(value)
		edge := p[m]
		cur.setPrefix(p[m+1:])
		parent.setChild(edge, cur)
		*ref = parent
		t.size++
		return nil, false
	}

	// Prefix mismatch: split, with two children and no value on the
	// new parent.
	parent := newNode4()
	parent.setPrefix(p[:m])
	oldEdge := p[m]
	cur.setPrefix(p[m+1:])
	newEdge := key[depth+m]
	leaf := newNode0()
	leaf.setPrefix(key[depth+m+1:])
	leaf.setValue(value)
	parent.setChild(oldEdge, cur)
	parent.setChild(newEdge, leaf)
	*ref = parent
	t.size++
	return nil, false
}

// Del removes the binding for key, if any. See spec §4.3.
func (t *tree) Del(key Key) (Value, bool) {
	if t.root == nil {
		return nil, false
	}
	return t.delAt(&t.root, nil, 0, key, 0)
}

func (t *tree) delAt(ref **artNode, parentRef **artNode, edge byte, key Key, depth int) (Value, bool) {
	cur := *ref
	p := cur.Prefix()
	rem := len(key) - depth
	m := cur.checkPrefix(key, depth)
	if m != len(p) {
		return nil, false
	}

	if rem != len(p) {
		// Prefix fully consumed, key continues: descend.
		depth += len(p)
		b := key[depth]
		childSlot := cur.findChild(b)
		if childSlot == nil {
			return nil, false
		}
		return t.delAt(childSlot, ref, b, key, depth+1)
	}

	// Exact termination point.
	val, had := cur.Value()
	if !had {
		return nil, false
	}
	cur.clearValue()

	c := cur.numChildren()
	s := 0
	if parentRef != nil {
		s = (*parentRef).numChildren() - 1
	}

	switch {
	case c == 0 && s == 0:
		// Leaf, no siblings: detach from parent (if any) and destroy.
		if parentRef != nil {
			(*parentRef).delChild(edge)
		} else {
			*ref = nil
		}

	case c == 0 && s == 1 && parentRef != nil && !(*parentRef).hasValue():
		// Leaf, exactly one sibling, parent has no value: collapse the
		// parent into the sibling.
		par := *parentRef
		siblingEdge, ok := par.nextPartialKey(0)
		if ok && siblingEdge == edge {
			siblingEdge, ok = par.nextPartialKey(int(edge) + 1)
		}
		if !ok {
			panic("art: expected sibling not found during collapse")
		}
		siblingSlot := par.findChild(siblingEdge)
		sibling := *siblingSlot
		sibling.setPrefix(concatPrefix(par.Prefix(), siblingEdge, sibling.Prefix()))
		*parentRef = sibling

	case c == 0:
		// Leaf, >=2 siblings remain: just detach.
		if parentRef != nil {
			(*parentRef).delChild(edge)
		} else {
			*ref = nil
		}

	case c == 1:
		// Non-leaf, single child: merge this node with its child.
		*ref = mergeChild(cur)

	default:
		// Non-leaf, >=2 children: clearing the value slot was enough.
	}

	if parentRef != nil && *parentRef != nil && (*parentRef).isUnderfull() {
		*parentRef = (*parentRef).shrink()
	}

	t.size--
	return val, true
}

// Each visits every bound key in ascending lexicographic order.
func (t *tree) Each(cb Callback) {
	it := t.Begin()
	for it.Next() {
		cb(it.Key(), it.Value())
	}
}

func (t *tree) Begin() *Iterator {
	it := &Iterator{}
	if t.root != nil {
		path := append([]byte(nil), t.root.Prefix()...)
		it.stack.push(iterFrame{node: t.root, path: path})
	}
	return it
}

func (t *tree) BeginAt(seek Key) *Iterator {
	it := &Iterator{}
	if t.root == nil {
		return it
	}
	path := append([]byte(nil), t.root.Prefix()...)
	seekDescend(it, t.root, path, seek, 0)
	return it
}

func (t *tree) End() *Iterator {
	return &Iterator{}
}
