// Package sampling provides unbiased random selection helpers.
package sampling

import "math/rand/v2"

// Shuffle returns a uniformly random permutation of s as a new slice.
// s is not modified. A nil r uses the global source.
func Shuffle[T any](r *rand.Rand, s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	// Fisher-Yates, walking down from the last element.
	for i := len(out) - 1; i > 0; i-- {
		j := Pick(r, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Pick returns a uniform index in [0, n). n must be positive.
func Pick(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}
