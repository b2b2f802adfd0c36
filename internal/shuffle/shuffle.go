// package shuffle provides the unbiased permutation applied to a track list
// before queueing. The engine treats the algorithm as pluggable; Uniform is
// the only implementation shipped.
package shuffle

import (
	"math/rand/v2"

	"github.com/vuciv/true-random-shuffle/internal/models"
)

// Func returns a permutation of [0, n). Implementations must be uniform over
// all n! orderings.
type Func func(n int) []int

// Uniform is a Fisher-Yates permutation from the shared PCG source.
func Uniform(n int) []int {
	return rand.Perm(n)
}

// Tracks returns a new slice holding tracks reordered by fn. The input is
// never mutated; a run's permutation must not leak into cached track lists.
func Tracks(tracks []models.Track, fn Func) []models.Track {
	if fn == nil {
		fn = Uniform
	}
	perm := fn(len(tracks))
	shuffled := make([]models.Track, len(tracks))
	for i, j := range perm {
		shuffled[i] = tracks[j]
	}
	return shuffled
}
