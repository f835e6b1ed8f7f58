// Package mesh welds STL triangle soups into indexed meshes with smooth
// per-vertex normals.
package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/stlview/pkg/math"
)

// KeyScale is the quantization factor applied to each coordinate.
// Positions closer than half of 1/KeyScale along every axis share a key,
// unless a rounding boundary lies between them.
const KeyScale = 1e4

// Key is a position quantized onto the KeyScale grid. It is only meant to be
// used as a map key.
type Key [3]int32

// KeyOf quantizes a position.
func KeyOf(p math.Vec3) Key {
	return Key{quantize(p.X), quantize(p.Y), quantize(p.Z)}
}

// quantize scales, rounds half away from zero, and saturates to int32.
// NaN maps to 0.
func quantize(v float32) int32 {
	r := math32.Round(v * KeyScale)
	switch {
	case math32.IsNaN(r):
		return 0
	case r >= 2147483647:
		return 2147483647
	case r <= -2147483648:
		return -2147483648
	}
	return int32(r)
}
