// Package sampling provides index sampling helpers for center seeding.
package sampling

import "math/rand"

// UniqueRandom draws distinct values in [0,n) in uniformly random order.
// After n draws Next returns -1.
type UniqueRandom struct {
	vals    []int
	counter int
}

// NewUniqueRandom creates a sampler over [0,n) using rng for the shuffle.
func NewUniqueRandom(rng *rand.Rand, n int) *UniqueRandom {
	return &UniqueRandom{vals: rng.Perm(n)}
}

// Next returns the next distinct value, or -1 once the range is exhausted.
func (u *UniqueRandom) Next() int {
	if u.counter >= len(u.vals) {
		return -1
	}
	v := u.vals[u.counter]
	u.counter++
	return v
}
