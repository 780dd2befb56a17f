package bvh

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"

	"github.com/acces-dem/go-ibvh/pkg/core"
)

// Leaf centroids are quantised onto a 2^10 grid per axis so the three
// interleaved coordinates fit a 30-bit Morton code.
const mortonGridSize = 1 << 10

// expandBits3 spreads the low 10 bits of v so that two zero bits separate
// each original bit.
func expandBits3(v uint32) uint32 {
	v = (v * 0x00010001) & 0xFF0000FF
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249
	return v
}

// mortonEncode interleaves three 10-bit grid coordinates, x highest.
func mortonEncode(x, y, z uint32) uint32 {
	return expandBits3(x)<<2 | expandBits3(y)<<1 | expandBits3(z)
}

// mortonQuantise maps c in [min, max] to a grid coordinate in [0, 1023].
func mortonQuantise(c, min, max float64) uint32 {
	if max <= min {
		return 0
	}
	cell := int((c - min) / (max - min) * mortonGridSize)
	if cell < 0 {
		cell = 0
	}
	if cell >= mortonGridSize {
		cell = mortonGridSize - 1
	}
	return uint32(cell)
}

// mortonOrder returns the leaf ids sorted along the Morton curve of their
// centroids. Ties fall back to input order so the permutation is stable.
func mortonOrder[V core.Volume[V]](leaves []V) []uint32 {
	centroids := make([]r3.Vector, len(leaves))
	min := leaves[0].Centroid()
	max := min
	for i, leaf := range leaves {
		c := leaf.Centroid()
		centroids[i] = c
		min.X = math.Min(min.X, c.X)
		min.Y = math.Min(min.Y, c.Y)
		min.Z = math.Min(min.Z, c.Z)
		max.X = math.Max(max.X, c.X)
		max.Y = math.Max(max.Y, c.Y)
		max.Z = math.Max(max.Z, c.Z)
	}

	codes := make([]uint32, len(leaves))
	for i, c := range centroids {
		codes[i] = mortonEncode(
			mortonQuantise(c.X, min.X, max.X),
			mortonQuantise(c.Y, min.Y, max.Y),
			mortonQuantise(c.Z, min.Z, max.Z),
		)
	}

	order := make([]uint32, len(leaves))
	for i := range order {
		order[i] = uint32(i)
	}
	sort.Slice(order, func(i, j int) bool {
		if codes[order[i]] != codes[order[j]] {
			return codes[order[i]] < codes[order[j]]
		}
		return order[i] < order[j]
	})
	return order
}
