// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fibheap

import (
	"golang.org/x/exp/constraints"
)

// node is one element of the forest. Nodes on the same level -- the roots, or
// the children of a common parent -- form a circular doubly-linked list
// through their left and right references. A node references its parent and
// one of its children; the remaining children are reachable through that
// child's sibling ring. A node without siblings references itself.
type node[K constraints.Signed, V any] struct {
	key   K
	value V

	parent *node[K, V]
	child  *node[K, V]
	left   *node[K, V]
	right  *node[K, V]

	// degree is the number of children of this node.
	degree int

	// marked records that this node has lost a child since it became a
	// non-root. Roots are never marked.
	marked bool

	// generation is advanced each time this node is released into the pool,
	// invalidating all handles issued for its previous lives.
	generation uint32
}

// append adds the singleton node m to the ring anchored at n and returns the
// ring's anchor. A nil anchor denotes an empty ring, in which case m becomes
// a ring of its own.
func (n *node[K, V]) append(m *node[K, V]) *node[K, V] {
	if n == nil {
		m.left, m.right = m, m
		return m
	}
	m.left = n
	m.right = n.right
	n.right.left = m
	n.right = m
	return n
}

// concat splices the entire ring anchored at m into the ring anchored at n.
// This is four pointer updates regardless of the size of either ring.
func (n *node[K, V]) concat(m *node[K, V]) *node[K, V] {
	if n == nil {
		return m
	}
	if m == nil {
		return n
	}
	nRight := n.right
	mLeft := m.left
	n.right = m
	m.left = n
	mLeft.right = nRight
	nRight.left = mLeft
	return n
}

// detach removes n from its ring, leaving its former siblings connected and
// n as a ring of its own.
func (n *node[K, V]) detach() {
	n.left.right = n.right
	n.right.left = n.left
	n.left, n.right = n, n
}

// Handle identifies a live element of a heap. It is issued by Insert and
// remains valid -- across decrease-key, delete of other elements, merges, and
// any amount of internal restructuring -- until the element itself is
// extracted or deleted. A stale handle no longer resolves; operations taking
// one report ErrInvalidHandle, and the accessors return false.
//
// Handles must only be used with the heap that issued them, or, after a
// merge, with the destination heap the elements were transferred to.
type Handle[K constraints.Signed, V any] struct {
	node       *node[K, V]
	generation uint32
}

// Valid reports whether the handle still identifies a live element.
func (h Handle[K, V]) Valid() bool {
	return h.node != nil && h.node.generation == h.generation
}

// Key returns the current key of the referenced element. The second return
// value is false if the handle has been invalidated.
func (h Handle[K, V]) Key() (K, bool) {
	if !h.Valid() {
		var zero K
		return zero, false
	}
	return h.node.key, true
}

// Value returns the payload of the referenced element. The second return
// value is false if the handle has been invalidated.
func (h Handle[K, V]) Value() (V, bool) {
	if !h.Valid() {
		var zero V
		return zero, false
	}
	return h.node.value, true
}

// Element is a key/value pair removed from a heap by ExtractMin.
type Element[K constraints.Signed, V any] struct {
	Key   K
	Value V
}
