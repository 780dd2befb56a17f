package bvh

import "math/bits"

// ImplicitTree addresses a perfect binary tree whose nodes are numbered in
// level-order starting at 1, so the children of node k are 2k and 2k+1.
// The leaf row holds the smallest power of two not below the real leaf count; the
// excess slots are virtual padding, packed at the right edge of every
// level, and carry no geometry. Classifying and skipping those slots is
// pure integer arithmetic, which is what keeps child expansion branchless.
type ImplicitTree struct {
	Levels        int // tree height; the root is level 1, leaves are level Levels
	RealLeaves    int // leaves backed by user geometry
	VirtualLeaves int // right-packed padding slots in the leaf row
	RealNodes     int // real nodes across all levels, after compaction
	VirtualNodes  int // virtual slots across all levels
	BuiltLevel    int // shallowest level with materialised bounding volumes
}

// NewImplicitTree sizes the tree for the given number of real leaves.
func NewImplicitTree(numLeaves int) ImplicitTree {
	levels := 1
	if numLeaves > 1 {
		levels = bits.Len(uint(numLeaves-1)) + 1
	}
	leafSlots := 1 << (levels - 1)
	virtualLeaves := leafSlots - numLeaves

	// Each level above the leaves carries half the virtual slots of the
	// level below, rounded down, so the total telescopes to 2V - popcount(V).
	virtualNodes := 2*virtualLeaves - bits.OnesCount(uint(virtualLeaves))

	return ImplicitTree{
		Levels:        levels,
		RealLeaves:    numLeaves,
		VirtualLeaves: virtualLeaves,
		RealNodes:     2*leafSlots - 1 - virtualNodes,
		VirtualNodes:  virtualNodes,
		BuiltLevel:    1,
	}
}

// Level returns the 1-based tree level of implicit index k.
func (t ImplicitTree) Level(k uint32) int {
	return bits.Len32(k)
}

// NodesAtLevel returns the number of slots, real and virtual, at a level.
func (t ImplicitTree) NodesAtLevel(level int) int {
	return 1 << (level - 1)
}

// virtualAtLevel returns the number of virtual slots at a level.
func (t ImplicitTree) virtualAtLevel(level int) int {
	return t.VirtualLeaves >> (t.Levels - level)
}

// RealNodesAtLevel returns the number of real nodes at a level.
func (t ImplicitTree) RealNodesAtLevel(level int) int {
	return t.NodesAtLevel(level) - t.virtualAtLevel(level)
}

// IsVirtual reports whether implicit index k addresses a padding slot.
// Virtual slots occupy the tail of their level, so the test is a single
// comparison against the level's last real index.
func (t ImplicitTree) IsVirtual(k uint32) bool {
	level := t.Level(k)
	lastReal := uint32(1<<level-1) - uint32(t.virtualAtLevel(level))
	return k > lastReal
}

// MemoryIndex maps implicit index k to its 1-based physical storage slot.
// Virtual slots at shallower levels are skipped; none precede k inside its
// own level because virtuals are right-packed. The running total of virtual
// slots above level l is v - popcount(v) with v the virtual count at l.
func (t ImplicitTree) MemoryIndex(k uint32) uint32 {
	v := uint32(t.virtualAtLevel(t.Level(k)))
	return k - (v - uint32(bits.OnesCount32(v)))
}

// LeafSlot returns the 1-based position of a leaf-level implicit index
// among the physically stored leaves.
func (t ImplicitTree) LeafSlot(k uint32) int {
	return int(t.MemoryIndex(k)) - (t.RealNodes - t.RealLeaves)
}
