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
	"fmt"
)

// Statistics summarizes the structural shape of a heap at one point in time.
type Statistics struct {
	// NumNodes is the total number of elements in the heap.
	NumNodes int
	// NumRoots is the number of trees in the forest.
	NumRoots int
	// NumMarked is the number of marked nodes.
	NumMarked int
	// MaxRootDegree is the largest number of children of any root.
	MaxRootDegree int
	// AvgDegree is the sum of all node degrees divided by the node count.
	AvgDegree float64
}

// GetStatistics computes the heap's structural statistics in a single
// traversal. Values are derived on demand and never cached.
func (h *Heap[K, V]) GetStatistics() Statistics {
	res := Statistics{}
	totalDegree := 0
	h.forEachNode(func(n *node[K, V]) {
		res.NumNodes++
		totalDegree += n.degree
		if n.marked {
			res.NumMarked++
		}
		if n.parent == nil {
			res.NumRoots++
			if n.degree > res.MaxRootDegree {
				res.MaxRootDegree = n.degree
			}
		}
	})
	if res.NumNodes > 0 {
		res.AvgDegree = float64(totalDegree) / float64(res.NumNodes)
	}
	return res
}

func (s Statistics) String() string {
	return fmt.Sprintf("nodes: %d, roots: %d, marked: %d, max root degree: %d, avg degree: %.2f",
		s.NumNodes, s.NumRoots, s.NumMarked, s.MaxRootDegree, s.AvgDegree)
}
