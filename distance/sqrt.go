package distance

import "math"

func sqrt(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
