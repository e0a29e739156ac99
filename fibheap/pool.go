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

// nodePool recycles heap nodes through a free list, mirroring the index
// reuse of an arena allocator. Recycling keeps extract-heavy workloads from
// churning the garbage collector, and funnelling every release through the
// pool is what advances the generation counters that invalidate handles.
type nodePool[K constraints.Signed, V any] struct {
	free []*node[K, V]
}

// get returns a blank node, reusing a released one if available. All fields
// except the generation are zeroed.
func (p *nodePool[K, V]) get() *node[K, V] {
	if l := len(p.free); l > 0 {
		n := p.free[l-1]
		p.free = p.free[:l-1]
		return n
	}
	return &node[K, V]{}
}

// put releases a node into the pool. Its generation is advanced, so all
// handles issued for its current life stop resolving, and its payload is
// cleared so the pool does not retain references the caller considers
// released.
func (p *nodePool[K, V]) put(n *node[K, V]) {
	*n = node[K, V]{generation: n.generation + 1}
	p.free = append(p.free, n)
}

// absorb moves all released nodes of other into this pool.
func (p *nodePool[K, V]) absorb(other *nodePool[K, V]) {
	if len(other.free) > 0 {
		p.free = append(p.free, other.free...)
	}
	other.free = nil
}
