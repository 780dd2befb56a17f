package core

import (
	"math"

	"github.com/golang/geo/r3"
)

// Sphere represents a bounding sphere
type Sphere struct {
	Center r3.Vector
	Radius float64
}

// NewSphere creates a new bounding sphere
func NewSphere(center r3.Vector, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Overlaps reports whether the two spheres touch or intersect
func (s Sphere) Overlaps(other Sphere) bool {
	d := other.Center.Sub(s.Center)
	sum := s.Radius + other.Radius
	return d.Dot(d) <= sum*sum
}

// RayHit tests if the forward half-line intersects the sphere. An origin
// inside the sphere always hits; intersections behind the origin do not.
func (s Sphere) RayHit(ray Ray) bool {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Sub(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// Discriminant
	discriminant := halfB*halfB - a*c

	// No intersection if discriminant is negative
	if discriminant < 0 {
		return false
	}

	// Try the closer intersection point first
	sqrtD := math.Sqrt(discriminant)
	root := (-halfB - sqrtD) / a
	if root < 0 {
		// Closer point is behind the origin; the farther one is forward
		// exactly when the origin sits inside the sphere
		root = (-halfB + sqrtD) / a
	}

	return root >= 0
}

// Union returns the minimal sphere enclosing both spheres
func (s Sphere) Union(other Sphere) Sphere {
	span := other.Center.Sub(s.Center)
	d := span.Norm()

	// One sphere already contains the other
	if s.Radius >= d+other.Radius {
		return s
	}
	if other.Radius >= d+s.Radius {
		return other
	}

	radius := (d + s.Radius + other.Radius) / 2
	center := s.Center.Add(span.Mul((radius - s.Radius) / d))
	return Sphere{Center: center, Radius: radius}
}

// Centroid returns the sphere center
func (s Sphere) Centroid() r3.Vector {
	return s.Center
}
