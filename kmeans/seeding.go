package kmeans

import (
	"math"

	"github.com/hupe1980/kmtree/internal/sampling"
)

// duplicateThreshold is the squared distance below which two candidate
// centers are considered the same point.
const duplicateThreshold = 1e-16

// chooseCentersRandom picks up to k distinct random points from ids as
// initial centers. Candidates that duplicate an already chosen center are
// rejected. Returns the number of centers actually chosen, which is less
// than k when the candidates are exhausted first.
func (idx *Index) chooseCentersRandom(k int, ids []int, centers []int) int {
	r := sampling.NewUniqueRandom(idx.rng, len(ids))

	index := 0
	for ; index < k; index++ {
		duplicate := true
		for duplicate {
			duplicate = false
			rnd := r.Next()
			if rnd < 0 {
				return index
			}

			centers[index] = ids[rnd]

			for j := 0; j < index; j++ {
				sq := idx.distFunc(idx.data.Row(centers[index]), idx.data.Row(centers[j]))
				if sq < duplicateThreshold {
					duplicate = true
				}
			}
		}
	}

	return index
}

// chooseCentersGonzales picks initial centers spaced apart from each
// other: after a random first center, each subsequent center is the
// candidate maximizing its minimum distance to the chosen set. Stops early
// when no candidate has a positive minimum distance left.
func (idx *Index) chooseCentersGonzales(k int, ids []int, centers []int) int {
	n := len(ids)

	centers[0] = ids[idx.rng.Intn(n)]

	index := 1
	for ; index < k; index++ {
		bestIndex := -1
		bestVal := float32(0)
		for j := 0; j < n; j++ {
			dist := idx.distFunc(idx.data.Row(centers[0]), idx.data.Row(ids[j]))
			for i := 1; i < index; i++ {
				tmpDist := idx.distFunc(idx.data.Row(centers[i]), idx.data.Row(ids[j]))
				if tmpDist < dist {
					dist = tmpDist
				}
			}
			if dist > bestVal {
				bestVal = dist
				bestIndex = j
			}
		}
		if bestIndex == -1 {
			break
		}
		centers[index] = ids[bestIndex]
	}

	return index
}

// chooseCentersKMeansPP picks initial centers with the seeding proposed in
// Arthur & Vassilvitskii, "k-means++: The Advantages of Careful Seeding":
// each candidate is drawn with probability proportional to its squared
// distance from the already chosen centers. Stops early once the total
// potential reaches zero (all remaining candidates duplicate a center).
func (idx *Index) chooseCentersKMeansPP(k int, ids []int, centers []int) int {
	n := len(ids)

	closestDistSq := make([]float64, n)

	// Choose one random center and set the closestDistSq values
	index := idx.rng.Intn(n)
	centers[0] = ids[index]

	currentPot := 0.0
	for i := 0; i < n; i++ {
		closestDistSq[i] = float64(idx.distFunc(idx.data.Row(ids[i]), idx.data.Row(ids[index])))
		currentPot += closestDistSq[i]
	}

	const numLocalTries = 1

	centerCount := 1
	for ; centerCount < k; centerCount++ {
		if currentPot <= 0 {
			break
		}

		bestNewPot := -1.0
		bestNewIndex := 0
		for localTrial := 0; localTrial < numLocalTries; localTrial++ {
			// Walk the prefix sums; the guard on n-1 keeps rounding errors
			// from running past the end.
			randVal := idx.rng.Float64() * currentPot
			for index = 0; index < n-1; index++ {
				if randVal <= closestDistSq[index] {
					break
				}
				randVal -= closestDistSq[index]
			}

			newPot := 0.0
			for i := 0; i < n; i++ {
				newPot += math.Min(float64(idx.distFunc(idx.data.Row(ids[i]), idx.data.Row(ids[index]))), closestDistSq[i])
			}

			if bestNewPot < 0 || newPot < bestNewPot {
				bestNewPot = newPot
				bestNewIndex = index
			}
		}

		centers[centerCount] = ids[bestNewIndex]
		currentPot = bestNewPot
		for i := 0; i < n; i++ {
			closestDistSq[i] = math.Min(float64(idx.distFunc(idx.data.Row(ids[i]), idx.data.Row(ids[bestNewIndex]))), closestDistSq[i])
		}
	}

	return centerCount
}
