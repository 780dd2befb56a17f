package bvh

// collectContacts runs the final overlap test over the leaf-level BVTT and
// writes canonicalized contact pairs of user leaf ids into dst, returning
// the contact count. Worst-case fanout is one, so each task's region is
// exactly its input range.
func (b *BVH[V]) collectContacts(src, dst []Pair, parallelism int) int {
	p := newPartition(len(src), parallelism)
	return runTasks(dst, p, 1, func(lo, hi int) int {
		return b.collectRange(src[lo:hi], dst[lo:hi])
	})
}

// collectRange tests one contiguous range of leaf pairs against the user's
// leaf volumes and emits each touching pair as (smaller id, larger id).
func (b *BVH[V]) collectRange(items, out []Pair) int {
	w := 0
	for _, item := range items {
		r1 := b.leafID(item.First)
		r2 := b.leafID(item.Second)
		if !b.Leaves[r1].Overlaps(b.Leaves[r2]) {
			continue
		}
		if r1 > r2 {
			r1, r2 = r2, r1
		}
		out[w] = Pair{r1, r2}
		w++
	}
	return w
}
