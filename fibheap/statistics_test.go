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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_EmptyHeap(t *testing.T) {
	h := New[int, int]()
	assert.Equal(t, Statistics{}, h.GetStatistics())
}

func TestStatistics_FlatHeapOfRoots(t *testing.T) {
	h := New[int, int]()
	for i := 0; i < 10; i++ {
		h.Insert(i, i)
	}

	stats := h.GetStatistics()
	assert.Equal(t, 10, stats.NumNodes)
	assert.Equal(t, 10, stats.NumRoots)
	assert.Equal(t, 0, stats.NumMarked)
	assert.Equal(t, 0, stats.MaxRootDegree)
	assert.Equal(t, 0.0, stats.AvgDegree)
}

func TestStatistics_ConsolidatedHeap(t *testing.T) {
	h := New[int, int]()
	for i := 16; i >= 0; i-- {
		h.Insert(i, i)
	}
	_, ok := h.ExtractMin()
	require.True(t, ok)

	// 16 remaining nodes consolidate into a single tree of degree 4
	stats := h.GetStatistics()
	assert.Equal(t, 16, stats.NumNodes)
	assert.Equal(t, 1, stats.NumRoots)
	assert.Equal(t, 4, stats.MaxRootDegree)
	// every non-root is the child of exactly one node
	assert.InDelta(t, float64(stats.NumNodes-stats.NumRoots)/float64(stats.NumNodes), stats.AvgDegree, 1e-9)
}

func TestStatistics_MarkedNodesAreCounted(t *testing.T) {
	h := New[int, int]()
	refs := make([]Handle[int, int], 0, 17)
	for i := 16; i >= 0; i-- {
		refs = append(refs, h.Insert(i*10, i))
	}
	_, ok := h.ExtractMin()
	require.True(t, ok)
	require.Equal(t, 0, h.GetStatistics().NumMarked)

	// cutting a leaf below a non-root marks the leaf's parent
	cut := false
	for _, ref := range refs {
		if !ref.Valid() {
			continue
		}
		if n := ref.node; n.parent != nil && n.parent.parent != nil && n.child == nil {
			require.NoError(t, h.DecreaseKey(ref, -1))
			cut = true
			break
		}
	}
	require.True(t, cut, "expected to find a leaf below a non-root")

	stats := h.GetStatistics()
	assert.Equal(t, 1, stats.NumMarked)
	require.NoError(t, h.Check())
}

func TestStatistics_StringRendersAllCounters(t *testing.T) {
	h := New[int, int]()
	h.Insert(1, 1)
	h.Insert(2, 2)

	s := h.GetStatistics().String()
	for _, part := range []string{"nodes: 2", "roots: 2", "marked: 0", "max root degree: 0", "avg degree: 0.00"} {
		assert.True(t, strings.Contains(s, part), "missing %q in %q", part, s)
	}
}
