package bvh

// Pair is one unit of traversal work, and also the shape of an emitted
// contact. During self-traversal both fields hold implicit node indices
// with First <= Second, First == Second marking a self-check; during ray
// traversal Second holds a ray index. Contacts hold user leaf ids (and a
// ray index for ray queries).
type Pair struct {
	First  uint32
	Second uint32
}

// Result carries the outcome of one traversal together with both work
// buffers, so a later call can reuse their storage via the Cache option.
// The contacts are the dense prefix of Cache1.
type Result struct {
	StartLevel  int // level the traversal was seeded at
	NumChecks   int // work items processed across all levels
	NumContacts int // contacts written to the front of Cache1
	Cache1      []Pair
	Cache2      []Pair
}

// Contacts returns the dense contact prefix. The view stays valid until
// the result's buffers are handed to another traversal.
func (r *Result) Contacts() []Pair {
	return r.Cache1[:r.NumContacts]
}

// grow returns buf with capacity for at least n items, reallocating only
// when needed. Buffers never shrink; the returned slice spans the full
// capacity and the caller tracks the used prefix itself.
func grow(buf []Pair, n int) []Pair {
	if cap(buf) < n {
		return make([]Pair, n)
	}
	return buf[:cap(buf)]
}

// cacheBuffers extracts reusable buffers from a previous result, if any.
func cacheBuffers(cache *Result) (a, b []Pair) {
	if cache == nil {
		return nil, nil
	}
	return cache.Cache1, cache.Cache2
}

// emptyResult is the outcome of a traversal that has no work to do. Cache
// buffers are passed through so their capacity is not lost.
func emptyResult(startLevel int, cache *Result) *Result {
	a, b := cacheBuffers(cache)
	return &Result{StartLevel: startLevel, Cache1: a, Cache2: b}
}

// seedSelf writes the initial self-traversal work set for the given level
// into a source buffer: all unordered pairs of distinct real nodes, plus
// one self-check per node when there are deeper levels to expand into.
// The destination is pre-sized for one full expansion of that set.
func (b *BVH[V]) seedSelf(level int, cache *Result) (src, dst []Pair, n int) {
	realNodes := b.Tree.RealNodesAtLevel(level)
	withSelfChecks := level < b.Tree.Levels

	n = realNodes * (realNodes - 1) / 2
	if withSelfChecks {
		n += realNodes
	}

	src, dst = cacheBuffers(cache)
	src = grow(src, n)
	if withSelfChecks {
		dst = grow(dst, 4*n)
	} else {
		// Seeded at the leaf level: only the collector runs, fanout 1
		dst = grow(dst, n)
	}

	first := uint32(1) << (level - 1)
	w := 0
	for i := 0; i < realNodes; i++ {
		for j := i + 1; j < realNodes; j++ {
			src[w] = Pair{first + uint32(i), first + uint32(j)}
			w++
		}
	}
	if withSelfChecks {
		for i := 0; i < realNodes; i++ {
			src[w] = Pair{first + uint32(i), first + uint32(i)}
			w++
		}
	}
	return src, dst, n
}

// seedRays writes the initial ray-traversal work set: every real node at
// the level crossed with every ray index.
func (b *BVH[V]) seedRays(level, numRays int, cache *Result) (src, dst []Pair, n int) {
	realNodes := b.Tree.RealNodesAtLevel(level)
	n = realNodes * numRays

	src, dst = cacheBuffers(cache)
	src = grow(src, n)
	if level < b.Tree.Levels {
		dst = grow(dst, 2*n)
	} else {
		dst = grow(dst, n)
	}

	first := uint32(1) << (level - 1)
	w := 0
	for i := 0; i < realNodes; i++ {
		for ray := 0; ray < numRays; ray++ {
			src[w] = Pair{first + uint32(i), uint32(ray)}
			w++
		}
	}
	return src, dst, n
}
