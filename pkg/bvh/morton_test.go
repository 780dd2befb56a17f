package bvh

import (
	"testing"

	"github.com/golang/geo/r3"

	"github.com/acces-dem/go-ibvh/pkg/core"
)

func TestExpandBits3(t *testing.T) {
	tests := []struct {
		in, out uint32
	}{
		{in: 0b0, out: 0b0},
		{in: 0b1, out: 0b1},
		{in: 0b10, out: 0b1000},
		{in: 0b11, out: 0b1001},
		{in: 0b111, out: 0b1001001},
		{in: 0x3FF, out: 0x09249249},
	}
	for _, tt := range tests {
		if got := expandBits3(tt.in); got != tt.out {
			t.Errorf("expandBits3(%#b) = %#b, want %#b", tt.in, got, tt.out)
		}
	}
}

func TestMortonEncode(t *testing.T) {
	// x owns the highest bit of each triple
	if mortonEncode(1, 0, 0) != 4 || mortonEncode(0, 1, 0) != 2 || mortonEncode(0, 0, 1) != 1 {
		t.Fatal("axis bit ordering is wrong")
	}

	// Codes are monotonic along a single axis
	prev := uint32(0)
	for z := uint32(1); z < 1024; z++ {
		code := mortonEncode(0, 0, z)
		if code <= prev {
			t.Fatalf("morton code not increasing at z=%d", z)
		}
		prev = code
	}
}

func TestMortonQuantise(t *testing.T) {
	if got := mortonQuantise(0, 0, 10); got != 0 {
		t.Errorf("quantise(min) = %d", got)
	}
	if got := mortonQuantise(10, 0, 10); got != 1023 {
		t.Errorf("quantise(max) = %d", got)
	}
	if got := mortonQuantise(5, 0, 10); got != 512 {
		t.Errorf("quantise(mid) = %d", got)
	}
	// Degenerate extent collapses to cell zero instead of dividing by zero
	if got := mortonQuantise(3, 3, 3); got != 0 {
		t.Errorf("quantise(degenerate) = %d", got)
	}
}

func TestMortonOrder(t *testing.T) {
	// Centroids strung along one axis sort by position regardless of the
	// order they are handed in
	spheres := []core.Sphere{
		core.NewSphere(r3.Vector{Z: 3}, 0.5),
		core.NewSphere(r3.Vector{Z: 0}, 0.5),
		core.NewSphere(r3.Vector{Z: 4}, 0.5),
		core.NewSphere(r3.Vector{Z: 1}, 0.5),
		core.NewSphere(r3.Vector{Z: 2}, 0.5),
	}
	got := mortonOrder(spheres)
	want := []uint32{1, 3, 4, 0, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mortonOrder = %v, want %v", got, want)
		}
	}
}

func TestMortonOrder_IdenticalCentroidsKeepInputOrder(t *testing.T) {
	spheres := make([]core.Sphere, 6)
	for i := range spheres {
		spheres[i] = core.NewSphere(r3.Vector{X: 1, Y: 2, Z: 3}, float64(i+1))
	}
	got := mortonOrder(spheres)
	for i := range got {
		if got[i] != uint32(i) {
			t.Fatalf("tied centroids reordered: %v", got)
		}
	}
}

func TestMortonOrder_IsPermutation(t *testing.T) {
	boxes := []core.AABB{
		core.NewAABB(r3.Vector{X: 5}, r3.Vector{X: 6, Y: 1, Z: 1}),
		core.NewAABB(r3.Vector{Y: 9}, r3.Vector{X: 1, Y: 10, Z: 1}),
		core.NewAABB(r3.Vector{Z: 2}, r3.Vector{X: 1, Y: 1, Z: 3}),
		core.NewAABB(r3.Vector{X: -4}, r3.Vector{X: -3, Y: 1, Z: 1}),
		core.NewAABB(r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1}),
		core.NewAABB(r3.Vector{X: 2, Y: 2, Z: 2}, r3.Vector{X: 3, Y: 3, Z: 3}),
		core.NewAABB(r3.Vector{X: -1, Y: 4}, r3.Vector{X: 0, Y: 5, Z: 1}),
	}
	order := mortonOrder(boxes)
	seen := make(map[uint32]bool)
	for _, id := range order {
		if int(id) >= len(boxes) || seen[id] {
			t.Fatalf("not a permutation: %v", order)
		}
		seen[id] = true
	}
	if len(seen) != len(boxes) {
		t.Fatalf("not a permutation: %v", order)
	}
}
