// Copyright © 2019, Oleksandr Krykovliuk <k33nice@gmail.com>.
// Use of this source code is governed by the
// MIT license that can be found in the LICENSE file.

package art

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// After a single Set, the tree should have a size of 1 and the root
// should be a childless N0 node.
func TestTreeSetOne(t *testing.T) {
	tree := newArt()
	tree.Set(Key("hello"), "world")

	assert.Equal(t, 1, tree.size)
	assert.Equal(t, N0, tree.root.kind)
}

// After a single Set, the tree should return the value back from Get.
func TestTreeSetAndGet(t *testing.T) {
	tree := newArt()
	tree.Set(Key("hello"), "world")

	v, ok := tree.Get(Key("hello"))
	assert.True(t, ok)
	assert.Equal(t, "world", v)
}

// Get on an empty tree, or for an absent key, should report ok=false.
func TestTreeGetAbsent(t *testing.T) {
	tree := newArt()
	_, ok := tree.Get(Key("missing"))
	assert.False(t, ok)

	tree.Set(Key("hello"), "world")
	_, ok = tree.Get(Key("goodbye"))
	assert.False(t, ok)
}

// Set on an existing key replaces the value and returns the old one.
func TestTreeSetReplace(t *testing.T) {
	tree := newArt()
	tree.Set(Key("hello"), "world")

	old, replaced := tree.Set(Key("hello"), "planet")
	assert.True(t, replaced)
	assert.Equal(t, "world", old)

	v, ok := tree.Get(Key("hello"))
	assert.True(t, ok)
	assert.Equal(t, "planet", v)
	assert.Equal(t, 1, tree.size)
}

// Two keys causing the root to grow should both remain retrievable.
func TestTreeSetTwoAndGet(t *testing.T) {
	tree := newArt()
	tree.Set(Key("hello"), "world")
	tree.Set(Key("yo"), "earth")

	v, ok := tree.Get(Key("yo"))
	assert.True(t, ok)
	assert.Equal(t, "earth", v)

	v, ok = tree.Get(Key("hello"))
	assert.True(t, ok)
	assert.Equal(t, "world", v)
}

// Inserting "a", "ab" and "abc", each a proper prefix of the next,
// should leave all three independently retrievable and iterated in
// order.
func TestTreeSetProperPrefixCoexist(t *testing.T) {
	tree := newArt()
	tree.Set(Key("a"), "A")
	tree.Set(Key("ab"), "AB")
	tree.Set(Key("abc"), "ABC")

	for _, c := range []struct {
		key, want string
	}{{"a", "A"}, {"ab", "AB"}, {"abc", "ABC"}} {
		v, ok := tree.Get(Key(c.key))
		assert.True(t, ok)
		assert.Equal(t, c.want, v)
	}

	var order []string
	tree.Each(func(k Key, v Value) { order = append(order, string(k)) })
	assert.Equal(t, []string{"a", "ab", "abc"}, order)
}

// Inserting two keys that share a prefix but diverge ("abc"/"abd")
// should split at the mismatch and leave both independently
// retrievable, with the shared prefix held by a value-less parent.
func TestTreeSetMismatchSplit(t *testing.T) {
	tree := newArt()
	tree.Set(Key("abc"), "X")
	tree.Set(Key("abd"), "Y")

	v, ok := tree.Get(Key("abc"))
	assert.True(t, ok)
	assert.Equal(t, "X", v)

	v, ok = tree.Get(Key("abd"))
	assert.True(t, ok)
	assert.Equal(t, "Y", v)

	_, hasValue := tree.root.Value()
	assert.False(t, hasValue)
	assert.Equal(t, []byte("ab"), tree.root.Prefix())
}

// The empty key is a legal, distinct binding from absence.
func TestTreeEmptyKeyIsLegal(t *testing.T) {
	tree := newArt()
	_, ok := tree.Get(Key(""))
	assert.False(t, ok)

	tree.Set(Key(""), "root-value")
	v, ok := tree.Get(Key(""))
	assert.True(t, ok)
	assert.Equal(t, "root-value", v)

	tree.Set(Key("a"), "a-value")
	v, ok = tree.Get(Key(""))
	assert.True(t, ok)
	assert.Equal(t, "root-value", v)
}

// Deleting the only key in the tree should empty it entirely.
func TestTreeDelOnly(t *testing.T) {
	tree := newArt()
	tree.Set(Key("test"), "data")

	old, deleted := tree.Del(Key("test"))
	assert.True(t, deleted)
	assert.Equal(t, "data", old)
	assert.Zero(t, tree.size)
	assert.Nil(t, tree.root)
}

// Deleting an absent key is a no-op.
func TestTreeDelAbsent(t *testing.T) {
	tree := newArt()
	tree.Set(Key("test"), "data")

	_, deleted := tree.Del(Key("nope"))
	assert.False(t, deleted)
	assert.Equal(t, 1, tree.size)
}

// Deleting one of two keys under a value-less parent should collapse
// the parent into the remaining sibling.
func TestTreeDelCollapsesParentIntoSibling(t *testing.T) {
	tree := newArt()
	tree.Set(Key("abc"), "X")
	tree.Set(Key("abd"), "Y")

	old, deleted := tree.Del(Key("abc"))
	assert.True(t, deleted)
	assert.Equal(t, "X", old)

	assert.Equal(t, 1, tree.size)
	assert.Equal(t, []byte("abd"), tree.root.Prefix())
	v, ok := tree.root.Value()
	assert.True(t, ok)
	assert.Equal(t, "Y", v)
}

// Deleting both keys of a two-key tree should leave it empty.
func TestTreeDelBothLeavesNil(t *testing.T) {
	tree := newArt()
	tree.Set(Key("test"), "data1")
	tree.Set(Key("test2"), "data2")

	tree.Del(Key("test"))
	tree.Del(Key("test2"))

	assert.Zero(t, tree.size)
	assert.Nil(t, tree.root)
}

// Deleting the value at a node that still has >=2 children should
// leave the structure intact, just without a value there.
func TestTreeDelNonLeafWithSiblingsKeepsStructure(t *testing.T) {
	tree := newArt()
	tree.Set(Key("ab"), "parent")
	tree.Set(Key("abc"), "child1")
	tree.Set(Key("abd"), "child2")

	old, deleted := tree.Del(Key("ab"))
	assert.True(t, deleted)
	assert.Equal(t, "parent", old)

	_, ok := tree.Get(Key("ab"))
	assert.False(t, ok)

	v, ok := tree.Get(Key("abc"))
	assert.True(t, ok)
	assert.Equal(t, "child1", v)

	v, ok = tree.Get(Key("abd"))
	assert.True(t, ok)
	assert.Equal(t, "child2", v)
}

// Inserting 20 keys with pairwise-distinct first bytes (sharing the
// empty root prefix) should grow the root all the way up through the
// size classes needed to hold them, then shrink back down as they are
// deleted to 3.
func TestTreeGrowAndShrinkThroughSizeClasses(t *testing.T) {
	tree := newArt()
	for i := 0; i < 20; i++ {
		tree.Set(Key{byte(i), 0xFF}, i)
	}
	assert.Equal(t, 20, tree.size)
	assert.Equal(t, N48, tree.root.kind)

	for i := 0; i < 17; i++ {
		_, deleted := tree.Del(Key{byte(i), 0xFF})
		assert.True(t, deleted)
	}
	assert.Equal(t, 3, tree.size)
	assert.Equal(t, N4, tree.root.kind)

	for i := 17; i < 20; i++ {
		v, ok := tree.Get(Key{byte(i), 0xFF})
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

// Each should visit every bound key exactly once, in ascending
// lexicographic order.
func TestTreeEachAscendingOrder(t *testing.T) {
	tree := newArt()
	keys := []string{"banana", "apple", "cherry", "app", "bandana"}
	for _, k := range keys {
		tree.Set(Key(k), k)
	}

	var visited []string
	tree.Each(func(k Key, v Value) {
		visited = append(visited, string(k))
		assert.Equal(t, string(k), v)
	})

	assert.Equal(t, []string{"app", "apple", "banana", "bandana", "cherry"}, visited)
}

// Bulk insert of synthetically generated keys, then verify every one
// is retrievable and Each visits exactly that many keys in order.
func TestTreeBulkInsertAndRetrieve(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := newArt()
	keys := make(map[string]bool)

	for i := 0; i < 2000; i++ {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(rng.Int63()))
		tree.Set(buf, string(buf))
		keys[string(buf)] = true
	}

	assert.Equal(t, len(keys), tree.size)

	for k := range keys {
		v, ok := tree.Get(Key(k))
		assert.True(t, ok)
		assert.Equal(t, k, v)
	}

	var prev string
	count := 0
	tree.Each(func(k Key, v Value) {
		if count > 0 {
			assert.True(t, prev < string(k))
		}
		prev = string(k)
		count++
	})
	assert.Equal(t, len(keys), count)
}

// Bulk insert then delete every key; the tree should end up empty.
func TestTreeBulkInsertAndRemoveAll(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tree := newArt()
	keys := make(map[string]bool)

	for i := 0; i < 500; i++ {
		buf := make([]byte, 6)
		rng.Read(buf)
		tree.Set(buf, buf)
		keys[string(buf)] = true
	}

	for k := range keys {
		_, deleted := tree.Del(Key(k))
		assert.True(t, deleted)
	}

	assert.Zero(t, tree.size)
	assert.Nil(t, tree.root)
}
