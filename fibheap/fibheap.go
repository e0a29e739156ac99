// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package fibheap provides a mergeable, addressable min-priority queue with
// the amortized complexities of a Fibonacci heap: insert, find-minimum,
// merge, and decrease-key run in amortized constant time, extract-minimum
// and delete in amortized O(log n).
//
// The queue is addressable: Insert returns a Handle identifying the new
// element, which can later be passed to DecreaseKey or Delete. Handles stay
// valid until their element is removed from the heap.
//
// Heap instances are not safe for concurrent use; accesses from multiple
// goroutines must be serialized externally.
package fibheap

import (
	"fmt"
	"math"

	"github.com/Fantom-foundation/Prio/common"
	"golang.org/x/exp/constraints"
)

const (
	// ErrInvalidKey is reported by DecreaseKey if the new key exceeds the
	// element's current key.
	ErrInvalidKey = common.ConstError("new key exceeds current key")

	// ErrInvalidHandle is reported by operations receiving a handle whose
	// element is no longer in the heap.
	ErrInvalidHandle = common.ConstError("invalid handle")

	// ErrCorruption is reported by Delete if the heap failed to surface the
	// deleted element as its minimum. A heap reporting this error is
	// structurally damaged and must not be used further.
	ErrCorruption = common.ConstError("heap corruption")
)

// Heap is a Fibonacci heap: a forest of min-heap-ordered trees whose roots
// form a circular doubly-linked list, with a dedicated reference to the root
// holding the minimum key. K is the key type, V an opaque payload type the
// heap stores but never inspects.
//
// The zero value is an empty heap ready for use.
type Heap[K constraints.Signed, V any] struct {
	min  *node[K, V]
	size int
	pool nodePool[K, V]
}

// New creates an empty heap.
func New[K constraints.Signed, V any]() *Heap[K, V] {
	return &Heap[K, V]{}
}

// Size returns the number of elements in the heap.
func (h *Heap[K, V]) Size() int {
	return h.size
}

// Empty reports whether the heap holds no elements.
func (h *Heap[K, V]) Empty() bool {
	return h.size == 0
}

// Insert adds an element with the given key and payload and returns a handle
// to it. Amortized O(1); no restructuring is performed.
func (h *Heap[K, V]) Insert(key K, value V) Handle[K, V] {
	n := h.pool.get()
	n.key = key
	n.value = value
	h.addRoot(n)
	h.size++
	return Handle[K, V]{node: n, generation: n.generation}
}

// Min returns a handle to the element with the minimum key, or false if the
// heap is empty.
func (h *Heap[K, V]) Min() (Handle[K, V], bool) {
	if h.min == nil {
		return Handle[K, V]{}, false
	}
	return Handle[K, V]{node: h.min, generation: h.min.generation}, true
}

// ExtractMin removes the element with the minimum key and returns its key
// and payload, or false if the heap is empty. All handles to the removed
// element are invalidated. Amortized O(log n).
func (h *Heap[K, V]) ExtractMin() (Element[K, V], bool) {
	z := h.extractMinNode()
	if z == nil {
		return Element[K, V]{}, false
	}
	res := Element[K, V]{Key: z.key, Value: z.value}
	h.pool.put(z)
	return res, true
}

// DecreaseKey lowers the key of the element identified by ref to the given
// key. Reports ErrInvalidKey if the new key exceeds the current one (an
// equal key is a legal no-op) and ErrInvalidHandle if ref no longer
// identifies a live element. Amortized O(1).
func (h *Heap[K, V]) DecreaseKey(ref Handle[K, V], key K) error {
	x := h.resolve(ref)
	if x == nil {
		return ErrInvalidHandle
	}
	if key > x.key {
		return fmt.Errorf("%w: %v > %v", ErrInvalidKey, key, x.key)
	}
	x.key = key
	if p := x.parent; p != nil && x.key < p.key {
		h.cut(x, p)
		h.cascadingCut(p)
	}
	if x.key < h.min.key {
		h.min = x
	}
	return nil
}

// Delete removes the element identified by ref from the heap, invalidating
// all handles to it. Reports ErrInvalidHandle if ref no longer identifies a
// live element. Amortized O(log n).
func (h *Heap[K, V]) Delete(ref Handle[K, V]) error {
	x := h.resolve(ref)
	if x == nil {
		return ErrInvalidHandle
	}

	// Force x into the minimum position without writing a minus-infinity
	// sentinel into the key space: promote it to a root like a decrease-key
	// below its parent would, then retarget the min pointer unconditionally.
	if p := x.parent; p != nil {
		h.cut(x, p)
		h.cascadingCut(p)
	}
	h.min = x

	z := h.extractMinNode()
	if z != x {
		return fmt.Errorf("%w: extract-min did not surface the deleted element", ErrCorruption)
	}
	h.pool.put(z)
	return nil
}

// Merge moves all elements of other into h, leaving other empty. Handles
// issued by either heap remain valid on h. O(1); no restructuring is
// performed, the next ExtractMin pays for the enlarged root list.
func (h *Heap[K, V]) Merge(other *Heap[K, V]) {
	if other == nil || other == h {
		return
	}
	if other.min != nil {
		if h.min == nil {
			h.min = other.min
		} else {
			h.min.concat(other.min)
			if other.min.key < h.min.key {
				h.min = other.min
			}
		}
		h.size += other.size
	}
	h.pool.absorb(&other.pool)
	other.min = nil
	other.size = 0
}

// Clear removes all elements, releasing every node and invalidating all
// outstanding handles. O(n).
func (h *Heap[K, V]) Clear() {
	nodes := make([]*node[K, V], 0, h.size)
	h.forEachNode(func(n *node[K, V]) {
		nodes = append(nodes, n)
	})
	for _, n := range nodes {
		h.pool.put(n)
	}
	h.min = nil
	h.size = 0
}

// resolve maps a handle to its node, or nil if the handle is stale or the
// heap holds no elements.
func (h *Heap[K, V]) resolve(ref Handle[K, V]) *node[K, V] {
	if h.min == nil || ref.node == nil || ref.node.generation != ref.generation {
		return nil
	}
	return ref.node
}

// addRoot splices the singleton node n into the root list and updates the
// min pointer if n undercuts it.
func (h *Heap[K, V]) addRoot(n *node[K, V]) {
	if h.min == nil {
		n.left, n.right = n, n
		h.min = n
		return
	}
	h.min.append(n)
	if n.key < h.min.key {
		h.min = n
	}
}

// extractMinNode unlinks and returns the node holding the minimum key, or
// nil if the heap is empty. The returned node is fully detached; its link
// fields are stale and must not be navigated.
func (h *Heap[K, V]) extractMinNode() *node[K, V] {
	z := h.min
	if z == nil {
		return nil
	}

	// Promote all children of z to roots. The child ring is spliced into the
	// root ring as a whole; only the parent and mark fields need a per-child
	// visit.
	if c := z.child; c != nil {
		n := c
		for {
			n.parent = nil
			n.marked = false
			n = n.right
			if n == c {
				break
			}
		}
		z.concat(c)
		z.child = nil
		z.degree = 0
	}

	if z.right == z {
		h.min = nil
	} else {
		h.min = z.right
		z.detach()
		h.consolidate()
	}
	h.size--
	return z
}

// consolidate coalesces roots of equal degree until all root degrees are
// distinct, then rebuilds the root list from the degree table, re-deriving
// the min pointer in the same scan.
func (h *Heap[K, V]) consolidate() {
	degrees := make([]*node[K, V], maxDegree(h.size)+1)

	// Snapshot the root list; it is re-threaded while linking.
	roots := make([]*node[K, V], 0, 16)
	for n := h.min; ; {
		roots = append(roots, n)
		n = n.right
		if n == h.min {
			break
		}
	}

	for _, x := range roots {
		d := x.degree
		for degrees[d] != nil {
			y := degrees[d]
			if x.key > y.key {
				x, y = y, x
			}
			h.link(y, x)
			degrees[d] = nil
			d++
		}
		degrees[d] = x
	}

	h.min = nil
	for _, n := range degrees {
		if n == nil {
			continue
		}
		n.left, n.right = n, n
		h.addRoot(n)
	}
}

// link removes the root y from the root list and makes it a child of the
// root x. Both must be roots of equal degree and y's key must not undercut
// x's.
func (h *Heap[K, V]) link(y, x *node[K, V]) {
	y.detach()
	y.parent = x
	y.marked = false
	x.child = x.child.append(y)
	x.degree++
}

// cut promotes x, a child of y, back to a root and unmarks it.
func (h *Heap[K, V]) cut(x, y *node[K, V]) {
	if y.child == x {
		if x.right == x {
			y.child = nil
		} else {
			y.child = x.right
		}
	}
	x.detach()
	y.degree--
	x.parent = nil
	x.marked = false
	h.addRoot(x)
}

// cascadingCut walks up from y, marking the first unmarked ancestor and
// cutting every marked one on the way. Iterative on purpose: the recursion
// depth of the textbook formulation is bounded only by the tree height.
func (h *Heap[K, V]) cascadingCut(y *node[K, V]) {
	for {
		z := y.parent
		if z == nil {
			return
		}
		if !y.marked {
			y.marked = true
			return
		}
		h.cut(y, z)
		y = z
	}
}

// forEachNode visits every node of the forest in unspecified order. The
// callback must not mutate the structure.
func (h *Heap[K, V]) forEachNode(visit func(*node[K, V])) {
	if h.min == nil {
		return
	}
	var stack []*node[K, V]
	for n := h.min; ; {
		stack = append(stack, n)
		n = n.right
		if n == h.min {
			break
		}
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(cur)
		if c := cur.child; c != nil {
			for n := c; ; {
				stack = append(stack, n)
				n = n.right
				if n == c {
					break
				}
			}
		}
	}
}

// maxDegree bounds the degree of any node in a heap of n elements by
// floor(log_phi(n)), padded to absorb the transient degree growth during
// linking.
func maxDegree(n int) int {
	if n < 2 {
		return 2
	}
	return int(math.Log(float64(n))/math.Log(math.Phi)) + 2
}
