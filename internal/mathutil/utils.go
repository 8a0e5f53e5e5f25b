package mathutil

import "golang.org/x/exp/constraints"

// Clamp returns f restricted to [low, high]. Used throughout culling and
// occlusion code to keep tile/texel indices and NDC coordinates in range.
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
