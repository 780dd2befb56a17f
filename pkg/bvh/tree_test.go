package bvh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewImplicitTree(t *testing.T) {
	tests := []struct {
		leaves        int
		levels        int
		virtualLeaves int
		realNodes     int
		virtualNodes  int
	}{
		// A perfect leaf row has no padding
		{leaves: 1, levels: 1, virtualLeaves: 0, realNodes: 1, virtualNodes: 0},
		{leaves: 2, levels: 2, virtualLeaves: 0, realNodes: 3, virtualNodes: 0},
		{leaves: 4, levels: 3, virtualLeaves: 0, realNodes: 7, virtualNodes: 0},
		{leaves: 8, levels: 4, virtualLeaves: 0, realNodes: 15, virtualNodes: 0},
		// Padded rows: virtual slots halve (rounding down) per level up
		{leaves: 3, levels: 3, virtualLeaves: 1, realNodes: 6, virtualNodes: 1},
		{leaves: 5, levels: 4, virtualLeaves: 3, realNodes: 11, virtualNodes: 4},
		{leaves: 6, levels: 4, virtualLeaves: 2, realNodes: 12, virtualNodes: 3},
		{leaves: 7, levels: 4, virtualLeaves: 1, realNodes: 14, virtualNodes: 1},
	}
	for _, tt := range tests {
		tree := NewImplicitTree(tt.leaves)
		assert.Equal(t, tt.levels, tree.Levels, "levels for %d leaves", tt.leaves)
		assert.Equal(t, tt.leaves, tree.RealLeaves, "real leaves for %d leaves", tt.leaves)
		assert.Equal(t, tt.virtualLeaves, tree.VirtualLeaves, "virtual leaves for %d leaves", tt.leaves)
		assert.Equal(t, tt.realNodes, tree.RealNodes, "real nodes for %d leaves", tt.leaves)
		assert.Equal(t, tt.virtualNodes, tree.VirtualNodes, "virtual nodes for %d leaves", tt.leaves)
		assert.Equal(t, 1, tree.BuiltLevel)
	}
}

func TestImplicitTree_RealNodesSumAcrossLevels(t *testing.T) {
	// Per-level real counts must add up to the total for any leaf count
	for leaves := 1; leaves <= 64; leaves++ {
		tree := NewImplicitTree(leaves)
		sum := 0
		for level := 1; level <= tree.Levels; level++ {
			sum += tree.RealNodesAtLevel(level)
		}
		if sum != tree.RealNodes {
			t.Errorf("leaves=%d: per-level sum %d != real nodes %d", leaves, sum, tree.RealNodes)
		}
		if tree.RealNodesAtLevel(tree.Levels) != leaves {
			t.Errorf("leaves=%d: leaf level has %d real nodes", leaves, tree.RealNodesAtLevel(tree.Levels))
		}
	}
}

func TestImplicitTree_Level(t *testing.T) {
	tree := NewImplicitTree(5)
	for _, tt := range []struct {
		k     uint32
		level int
	}{
		{k: 1, level: 1},
		{k: 2, level: 2}, {k: 3, level: 2},
		{k: 4, level: 3}, {k: 7, level: 3},
		{k: 8, level: 4}, {k: 15, level: 4},
	} {
		if got := tree.Level(tt.k); got != tt.level {
			t.Errorf("Level(%d) = %d, want %d", tt.k, got, tt.level)
		}
	}
}

func TestImplicitTree_IsVirtual(t *testing.T) {
	tests := []struct {
		leaves  int
		virtual []uint32
	}{
		// 3 leaves: only the last leaf slot is padding
		{leaves: 3, virtual: []uint32{7}},
		// 5 leaves: node 7 has no real descendants, leaf slots 13..15 pad
		{leaves: 5, virtual: []uint32{7, 13, 14, 15}},
		// 6 leaves: leaf slots 14 and 15 pad, so their parent 7 is virtual too
		{leaves: 6, virtual: []uint32{7, 14, 15}},
		// 4 leaves: perfect tree, nothing virtual
		{leaves: 4, virtual: nil},
	}
	for _, tt := range tests {
		tree := NewImplicitTree(tt.leaves)
		want := make(map[uint32]bool, len(tt.virtual))
		for _, k := range tt.virtual {
			want[k] = true
		}
		total := uint32(1<<tree.Levels - 1)
		for k := uint32(1); k <= total; k++ {
			if got := tree.IsVirtual(k); got != want[k] {
				t.Errorf("leaves=%d: IsVirtual(%d) = %v, want %v", tt.leaves, k, got, want[k])
			}
		}
	}
}

func TestImplicitTree_LeftChildOfRealNodeIsReal(t *testing.T) {
	// Virtuals are right-packed, so a real parent always has a real left
	// child. The expansion rules lean on this.
	for leaves := 1; leaves <= 64; leaves++ {
		tree := NewImplicitTree(leaves)
		lastInternal := uint32(1<<(tree.Levels-1) - 1)
		for k := uint32(1); k <= lastInternal; k++ {
			if !tree.IsVirtual(k) && tree.IsVirtual(2*k) {
				t.Fatalf("leaves=%d: real node %d has virtual left child", leaves, k)
			}
		}
	}
}

func TestImplicitTree_MemoryIndex(t *testing.T) {
	tests := []struct {
		leaves int
		want   map[uint32]uint32
	}{
		// 3 leaves: no virtual slot precedes any real node
		{leaves: 3, want: map[uint32]uint32{1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 6}},
		// 5 leaves: virtual node 7 shifts the whole leaf row left by one
		{leaves: 5, want: map[uint32]uint32{
			1: 1, 2: 2, 3: 3,
			4: 4, 5: 5, 6: 6,
			8: 7, 9: 8, 10: 9, 11: 10, 12: 11,
		}},
	}
	for _, tt := range tests {
		tree := NewImplicitTree(tt.leaves)
		for k, want := range tt.want {
			if got := tree.MemoryIndex(k); got != want {
				t.Errorf("leaves=%d: MemoryIndex(%d) = %d, want %d", tt.leaves, k, got, want)
			}
		}
	}
}

func TestImplicitTree_MemoryIndexIsDenseOverRealNodes(t *testing.T) {
	// Real nodes in level order must map onto 1..RealNodes with no gaps
	for leaves := 1; leaves <= 64; leaves++ {
		tree := NewImplicitTree(leaves)
		next := uint32(1)
		total := uint32(1<<tree.Levels - 1)
		for k := uint32(1); k <= total; k++ {
			if tree.IsVirtual(k) {
				continue
			}
			if got := tree.MemoryIndex(k); got != next {
				t.Fatalf("leaves=%d: MemoryIndex(%d) = %d, want %d", leaves, k, got, next)
			}
			next++
		}
		if int(next-1) != tree.RealNodes {
			t.Fatalf("leaves=%d: mapped %d nodes, want %d", leaves, next-1, tree.RealNodes)
		}
	}
}

func TestImplicitTree_LeafSlot(t *testing.T) {
	tree := NewImplicitTree(5)
	firstLeaf := uint32(1) << (tree.Levels - 1)
	for i := 0; i < tree.RealLeaves; i++ {
		if got := tree.LeafSlot(firstLeaf + uint32(i)); got != i+1 {
			t.Errorf("LeafSlot(%d) = %d, want %d", firstLeaf+uint32(i), got, i+1)
		}
	}
}
