package bvh

import (
	"fmt"
	"runtime"

	"github.com/golang/geo/r3"

	"github.com/acces-dem/go-ibvh/pkg/core"
)

// TraverseRays enumerates every (leaf, ray) pair where the ray, treated as
// a forward half-line, intersects the leaf's bounding volume. Contacts
// come back as (user leaf id, ray index) pairs in the dense prefix of
// Cache1. origins and directions must have the same length; rays are
// indexed by their position in those slices.
func (b *BVH[V]) TraverseRays(origins, directions []r3.Vector, opts TraverseOptions) (*Result, error) {
	if len(origins) != len(directions) {
		return nil, fmt.Errorf("bvh: %d ray origins but %d directions",
			len(origins), len(directions))
	}

	tree := b.Tree
	startLevel := opts.StartLevel
	if startLevel == 0 {
		startLevel = tree.BuiltLevel
	}
	if startLevel < tree.BuiltLevel || startLevel > tree.Levels {
		return nil, fmt.Errorf("bvh: start level %d outside [%d, %d]",
			startLevel, tree.BuiltLevel, tree.Levels)
	}

	if len(origins) == 0 {
		return emptyResult(startLevel, opts.Cache), nil
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	rays := make([]core.Ray, len(origins))
	for i := range origins {
		rays[i] = core.NewRay(origins[i], directions[i])
	}

	src, dst, n := b.seedRays(startLevel, len(rays), opts.Cache)
	numChecks := n
	if opts.Trace != nil {
		opts.Trace(startLevel, src[:n])
	}

	for level := startLevel; level < tree.Levels; level++ {
		dst = grow(dst, 2*n)
		expanded := b.expandRayLevel(src[:n], dst, rays, level, parallelism)
		logger.Debugf("ray traversal level %d -> %d: %d items -> %d", level, level+1, n, expanded)
		n = expanded
		numChecks += n
		src, dst = dst, src
		if opts.Trace != nil {
			opts.Trace(level+1, src[:n])
		}
	}

	dst = grow(dst, n)
	numContacts := b.collectRayContacts(src[:n], dst, rays, parallelism)
	logger.Debugf("ray traversal done: %d checks, %d contacts", numChecks, numContacts)

	return &Result{
		StartLevel:  startLevel,
		NumChecks:   numChecks,
		NumContacts: numContacts,
		Cache1:      dst,
		Cache2:      src,
	}, nil
}

// expandRayLevel grows the ray BVTT by one level: nodes the ray misses are
// pruned, hit nodes sprout their real children. Fanout is at most two.
func (b *BVH[V]) expandRayLevel(src, dst []Pair, rays []core.Ray, level, parallelism int) int {
	p := newPartition(len(src), parallelism)
	return runTasks(dst, p, 2, func(lo, hi int) int {
		return b.expandRayRange(src[lo:hi], dst[2*lo:2*hi], rays, level, lo)
	})
}

func (b *BVH[V]) expandRayRange(items, out []Pair, rays []core.Ray, level, base int) int {
	w := 0
	for i, item := range items {
		if w+2 > len(out) {
			panic(fmt.Sprintf("bvh: ray expansion overflow at level %d, item %d", level, base+i))
		}

		node, ray := item.First, item.Second
		if !b.nodeVolume(node).RayHit(rays[ray]) {
			continue
		}

		left, right := 2*node, 2*node+1
		out[w] = Pair{left, ray}
		w++
		if !b.Tree.IsVirtual(right) {
			out[w] = Pair{right, ray}
			w++
		}
	}
	return w
}

// collectRayContacts runs the final leaf test over the (leaf, ray) BVTT
// and emits (user leaf id, ray index) contacts.
func (b *BVH[V]) collectRayContacts(src, dst []Pair, rays []core.Ray, parallelism int) int {
	p := newPartition(len(src), parallelism)
	return runTasks(dst, p, 1, func(lo, hi int) int {
		return b.collectRayRange(src[lo:hi], dst[lo:hi], rays)
	})
}

func (b *BVH[V]) collectRayRange(items, out []Pair, rays []core.Ray) int {
	w := 0
	for _, item := range items {
		leaf := b.leafID(item.First)
		if !b.Leaves[leaf].RayHit(rays[item.Second]) {
			continue
		}
		out[w] = Pair{leaf, item.Second}
		w++
	}
	return w
}
