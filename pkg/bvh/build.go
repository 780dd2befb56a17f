package bvh

import (
	"fmt"

	"github.com/acces-dem/go-ibvh/pkg/core"
)

// BVH is an implicit bounding volume hierarchy over a set of leaf volumes.
// Node volumes for every level live in Nodes, packed by memory index; the
// user's leaf volumes are kept in their original order in Leaves, and Order
// maps each physical leaf slot back to the user's leaf id.
type BVH[V core.Volume[V]] struct {
	Tree   ImplicitTree
	Nodes  []V      // all real nodes by memory index (slot 1 is Nodes[0])
	Leaves []V      // leaf volumes in user order
	Order  []uint32 // physical leaf slot -> user leaf id
}

// New builds a BVH over the given leaf volumes. Leaves are ordered along
// the Morton curve of their centroids, written into the leaf row, and the
// internal levels are assembled bottom-up by union of children. Every level
// is materialised, so traversal may start anywhere in the tree.
func New[V core.Volume[V]](leaves []V) (*BVH[V], error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("bvh: at least one leaf volume is required, got 0")
	}

	// Copy the caller's slice so later writes to it cannot reach into the
	// tree
	leavesCopy := make([]V, len(leaves))
	copy(leavesCopy, leaves)

	tree := NewImplicitTree(len(leavesCopy))
	b := &BVH[V]{
		Tree:   tree,
		Nodes:  make([]V, tree.RealNodes),
		Leaves: leavesCopy,
		Order:  mortonOrder(leavesCopy),
	}

	// Leaf row, through the memory index so virtual slots are skipped
	firstLeaf := uint32(1) << (tree.Levels - 1)
	for slot, id := range b.Order {
		b.Nodes[tree.MemoryIndex(firstLeaf+uint32(slot))-1] = leavesCopy[id]
	}

	// Internal levels, bottom-up. A left child is never virtual when its
	// parent is real; only the right child needs the virtual check.
	for level := tree.Levels - 1; level >= 1; level-- {
		first := uint32(1) << (level - 1)
		last := first + uint32(tree.RealNodesAtLevel(level))
		for k := first; k < last; k++ {
			volume := b.nodeVolume(2 * k)
			if !tree.IsVirtual(2*k + 1) {
				volume = volume.Union(b.nodeVolume(2*k + 1))
			}
			b.Nodes[tree.MemoryIndex(k)-1] = volume
		}
	}

	return b, nil
}

// nodeVolume fetches the bounding volume of a real implicit index.
func (b *BVH[V]) nodeVolume(k uint32) V {
	return b.Nodes[b.Tree.MemoryIndex(k)-1]
}

// leafID translates a leaf-level implicit index to the user's leaf id.
func (b *BVH[V]) leafID(k uint32) uint32 {
	return b.Order[b.Tree.LeafSlot(k)-1]
}
