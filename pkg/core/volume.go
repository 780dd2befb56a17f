package core

import "github.com/golang/geo/r3"

// Volume is the capability set a bounding primitive provides to the
// hierarchy. Overlaps and RayHit are the traversal predicates; Union and
// Centroid are only needed while building the tree. The constraint is
// self-referential so the traversal loops monomorphise on the concrete
// volume type.
type Volume[V any] interface {
	// Overlaps reports whether the two volumes touch or intersect.
	Overlaps(other V) bool
	// RayHit reports whether the ray, treated as a forward half-line,
	// intersects the volume.
	RayHit(ray Ray) bool
	// Union returns a volume bounding both inputs.
	Union(other V) V
	// Centroid returns the center point used to order leaves spatially.
	Centroid() r3.Vector
}
