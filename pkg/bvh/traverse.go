package bvh

import (
	"fmt"
	"runtime"

	"github.com/acces-dem/go-ibvh/pkg/log"
)

var logger = log.New("bvh")

// TraceFunc observes the compacted BVTT after seeding and after each
// expansion. level is the tree level the items live at. The slice aliases
// the engine's working buffer and must not be retained.
type TraceFunc func(level int, items []Pair)

// TraverseOptions configures a traversal. The zero value selects the
// defaults for every field.
type TraverseOptions struct {
	StartLevel  int     // level to seed at; 0 = max(Levels/2, BuiltLevel) for self, BuiltLevel for rays
	Parallelism int     // maximum concurrent expansion tasks; 0 = runtime.NumCPU()
	Cache       *Result // buffers from a previous traversal to reuse
	Trace       TraceFunc
}

// Traverse enumerates every pair of leaves whose bounding volumes touch.
// The BVTT is seeded at the start level and expanded one level at a time,
// alternating between the two work buffers, until the leaf level runs the
// final overlap test. Contacts come back as (smaller id, larger id) pairs
// of user leaf ids, in no particular order, as the dense prefix of Cache1.
func (b *BVH[V]) Traverse(opts TraverseOptions) (*Result, error) {
	tree := b.Tree

	startLevel := opts.StartLevel
	if startLevel == 0 {
		startLevel = max(tree.Levels/2, tree.BuiltLevel)
	}
	if startLevel < tree.BuiltLevel || startLevel > tree.Levels {
		return nil, fmt.Errorf("bvh: start level %d outside [%d, %d]",
			startLevel, tree.BuiltLevel, tree.Levels)
	}

	// A lone leaf has nothing to pair with
	if tree.RealNodes <= 1 {
		return emptyResult(startLevel, opts.Cache), nil
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	src, dst, n := b.seedSelf(startLevel, opts.Cache)
	numChecks := n
	if opts.Trace != nil {
		opts.Trace(startLevel, src[:n])
	}

	for level := startLevel; level < tree.Levels; level++ {
		dst = grow(dst, 4*n)
		expanded := b.expandLevel(src[:n], dst, level, parallelism)
		logger.Debugf("self traversal level %d -> %d: %d items -> %d", level, level+1, n, expanded)
		n = expanded
		numChecks += n
		src, dst = dst, src
		if opts.Trace != nil {
			opts.Trace(level+1, src[:n])
		}
	}

	dst = grow(dst, n)
	numContacts := b.collectContacts(src[:n], dst, parallelism)
	logger.Debugf("self traversal done: %d checks, %d contacts", numChecks, numContacts)

	// The just-written buffer becomes Cache1 so the caller's contact view
	// is a prefix of it
	return &Result{
		StartLevel:  startLevel,
		NumChecks:   numChecks,
		NumContacts: numContacts,
		Cache1:      dst,
		Cache2:      src,
	}, nil
}
