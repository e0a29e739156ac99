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
	"math/rand"
	"strings"
	"testing"
)

func TestCheck_AcceptsHealthyHeaps(t *testing.T) {
	r := rand.New(rand.NewSource(17))

	h := New[int, int]()
	for i := 0; i < 200; i++ {
		h.Insert(r.Intn(1000), i)
	}
	for i := 0; i < 50; i++ {
		h.ExtractMin()
	}
	if err := h.Check(); err != nil {
		t.Errorf("unexpected invariant violation: %v", err)
	}
}

func TestCheck_DetectsSizeMismatchOnEmptyHeap(t *testing.T) {
	h := New[int, int]()
	h.size = 3
	if err := h.Check(); err == nil {
		t.Errorf("expected a size violation to be reported")
	}
}

func TestCheck_DetectsCorruptions(t *testing.T) {
	tests := map[string]struct {
		corrupt  func(h *Heap[int, int])
		expected string
	}{
		"marked root": {
			func(h *Heap[int, int]) {
				h.min.marked = true
			},
			"is marked",
		},
		"root with parent": {
			func(h *Heap[int, int]) {
				h.min.parent = h.min.right
			},
			"has a parent",
		},
		"broken sibling ring": {
			func(h *Heap[int, int]) {
				h.min.right.left = h.min.right
			},
			"sibling ring",
		},
		"wrong degree": {
			func(h *Heap[int, int]) {
				withChildren(h).degree++
			},
			"degree",
		},
		"heap order violation": {
			func(h *Heap[int, int]) {
				withChildren(h).child.key = -1000
			},
			"heap order violated",
		},
		"child referencing wrong parent": {
			func(h *Heap[int, int]) {
				n := withChildren(h)
				n.child.parent = n.child
			},
			"references a different parent",
		},
		"wrong size": {
			func(h *Heap[int, int]) {
				h.size++
			},
			"size mismatch",
		},
		"min pointer not minimal": {
			func(h *Heap[int, int]) {
				// retarget the min pointer to some other root
				h.min = h.min.right
			},
			"min pointer",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h := New[int, int]()
			for i := 20; i >= 1; i-- {
				h.Insert(i*10, i)
			}
			h.ExtractMin() // consolidate so interior nodes exist
			if err := h.Check(); err != nil {
				t.Fatalf("test setup is not a healthy heap: %v", err)
			}

			test.corrupt(h)
			err := h.Check()
			if err == nil {
				t.Fatalf("expected the corruption to be reported")
			}
			if !strings.Contains(err.Error(), test.expected) {
				t.Errorf("unexpected report: got: %v, wanted it to mention %q", err, test.expected)
			}
		})
	}
}

// withChildren returns some node of the forest that has at least one child.
func withChildren(h *Heap[int, int]) *node[int, int] {
	var res *node[int, int]
	h.forEachNode(func(n *node[int, int]) {
		if res == nil && n.child != nil {
			res = n
		}
	})
	return res
}
