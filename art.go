// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package art

// Kind identifies an adaptive radix tree node's size class.
type Kind uint8

// The five size classes, in ascending fan-out order. N0 is the leaf
// class: it holds no children.
const (
	N0 Kind = iota
	N4
	N16
	N48
	N256
)

// Key is an arbitrary, possibly empty, sequence of bytes. Zero bytes
// are legal anywhere in a key.
type Key = []byte

// Value is an opaque, caller-owned handle. The tree never inspects,
// copies or releases it.
type Value = any

// Callback is invoked once per stored key, in ascending lexicographic
// order, by Tree.Each.
type Callback func(key Key, value Value)

// Tree is an in-memory ordered associative index over byte-string
// keys. It is single-writer, single-reader: concurrent mutation from
// multiple goroutines is not supported, and concurrent read-only use
// is only safe while no mutation is in flight.
type Tree interface {
	// Get returns the value bound to key, if any.
	Get(key Key) (value Value, ok bool)

	// Set binds value to key, replacing any previous binding, and
	// returns the value it replaced.
	Set(key Key, value Value) (old Value, replaced bool)

	// Del removes the binding for key, if any, and returns the value
	// that was bound.
	Del(key Key) (old Value, deleted bool)

	// Begin returns an iterator positioned at the smallest key in the
	// tree.
	Begin() *Iterator

	// BeginAt returns an iterator positioned at the smallest key
	// greater than or equal to seek.
	BeginAt(seek Key) *Iterator

	// End returns an iterator positioned past the last key; it is
	// never valid to dereference.
	End() *Iterator

	// Each calls cb once per stored key, in ascending lexicographic
	// order.
	Each(cb Callback)

	// Size returns the number of keys currently bound.
	Size() int
}

// New creates an empty adaptive radix tree.
func New() Tree {
	return newArt()
}
