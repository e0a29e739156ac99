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
	"io"
)

// Dump writes the forest structure to the given writer, one line per node
// with its key, degree, and mark, children indented under their parents. It
// is mainly intended for manual debugging.
func (h *Heap[K, V]) Dump(out io.Writer) {
	if h.min == nil {
		fmt.Fprintln(out, "<empty heap>")
		return
	}
	fmt.Fprintf(out, "heap of %d elements, minimum key %v\n", h.size, h.min.key)
	for n := h.min; ; {
		h.dumpNode(out, n, "  ")
		n = n.right
		if n == h.min {
			break
		}
	}
}

func (h *Heap[K, V]) dumpNode(out io.Writer, n *node[K, V], indent string) {
	mark := ""
	if n.marked {
		mark = ", marked"
	}
	fmt.Fprintf(out, "%s%v (degree: %d%s)\n", indent, n.key, n.degree, mark)
	if c := n.child; c != nil {
		for m := c; ; {
			h.dumpNode(out, m, indent+"  ")
			m = m.right
			if m == c {
				break
			}
		}
	}
}
