package bvh

import "fmt"

// expandLevel grows the BVTT from the given level to the next one: pairs
// whose volumes do not touch are pruned, surviving pairs sprout child
// pairs, and self-checks sprout their children's pairings. Each task
// writes into a disjoint region of dst sized for the worst-case fanout of
// four, and the per-task prefixes are compacted into a dense run.
// Returns the size of the next level's work set.
func (b *BVH[V]) expandLevel(src, dst []Pair, level, parallelism int) int {
	// Self-checks sprouted while expanding the second-to-last level would
	// become pointless leaf-on-self pairs, so they are suppressed there.
	selfChecks := level < b.Tree.Levels-1

	p := newPartition(len(src), parallelism)
	return runTasks(dst, p, 4, func(lo, hi int) int {
		return b.expandRange(src[lo:hi], dst[4*lo:4*hi], selfChecks, level, lo)
	})
}

// expandRange expands one contiguous range of work items into out,
// returning the number of items written. out must hold four slots per
// input item.
func (b *BVH[V]) expandRange(items, out []Pair, selfChecks bool, level, base int) int {
	w := 0
	for i, item := range items {
		if w+4 > len(out) {
			panic(fmt.Sprintf("bvh: expansion overflow at level %d, item %d", level, base+i))
		}

		u, v := item.First, item.Second

		// A self-check expands without an overlap test; a node always
		// touches itself
		if u == v {
			left, right := 2*u, 2*u+1
			switch {
			case b.Tree.IsVirtual(right):
				if selfChecks {
					out[w] = Pair{left, left}
					w++
				}
			case selfChecks:
				out[w] = Pair{left, left}
				out[w+1] = Pair{right, right}
				out[w+2] = Pair{left, right}
				w += 3
			default:
				out[w] = Pair{left, right}
				w++
			}
			continue
		}

		if !b.nodeVolume(u).Overlaps(b.nodeVolume(v)) {
			continue
		}

		// Virtuals are right-packed and u < v, so of the four children
		// only v's right child can be virtual
		uLeft, uRight := 2*u, 2*u+1
		vLeft, vRight := 2*v, 2*v+1
		if b.Tree.IsVirtual(vRight) {
			out[w] = Pair{uLeft, vLeft}
			out[w+1] = Pair{uRight, vLeft}
			w += 2
		} else {
			out[w] = Pair{uLeft, vLeft}
			out[w+1] = Pair{uLeft, vRight}
			out[w+2] = Pair{uRight, vLeft}
			out[w+3] = Pair{uRight, vRight}
			w += 4
		}
	}
	return w
}
