package league

import (
	"math"
	"math/rand"
)

// randInt returns a uniform integer in [lo, hi] inclusive.
func randInt(rnd *rand.Rand, lo, hi int) int {
	return lo + rnd.Intn(hi-lo+1)
}

func randFloat(rnd *rand.Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}

func shuffle[T any](rnd *rand.Rand, s []T) {
	rnd.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

// weightedChoice picks an index with probability proportional to its
// weight. Weights must be non-negative and not all zero.
func weightedChoice(rnd *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	target := rnd.Float64() * total
	for i, w := range weights {
		target -= w
		if target < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func gauss(rnd *rand.Rand, mean, stddev float64) float64 {
	return rnd.NormFloat64()*stddev + mean
}

// boundedGauss redraws until the sample lands inside [lo, hi], with a
// clamp fallback so pathological bounds cannot spin forever.
func boundedGauss(rnd *rand.Rand, mean, stddev, lo, hi float64) float64 {
	for i := 0; i < 100; i++ {
		v := gauss(rnd, mean, stddev)
		if v >= lo && v <= hi {
			return v
		}
	}
	return math.Max(lo, math.Min(hi, mean))
}

// heightTable is an empirical distribution over legal player heights in
// inches. The weights approximate the league-wide height histogram; the
// tails (sub-6-foot guards, 7'6" centers) are deliberately rare.
var heightTable = []struct {
	Inches int
	Weight float64
}{
	{68, 0.1}, {69, 0.25}, {70, 0.6}, {71, 1.2}, {72, 2.3},
	{73, 4.2}, {74, 6.5}, {75, 9.0}, {76, 11.0}, {77, 12.0},
	{78, 12.0}, {79, 11.0}, {80, 9.5}, {81, 7.5}, {82, 5.5},
	{83, 3.8}, {84, 2.2}, {85, 1.0}, {86, 0.4}, {87, 0.15},
	{88, 0.05}, {89, 0.02},
}

// randHeightInches samples a height from the empirical distribution.
func randHeightInches(rnd *rand.Rand) int {
	weights := make([]float64, len(heightTable))
	for i, h := range heightTable {
		weights[i] = h.Weight
	}
	return heightTable[weightedChoice(rnd, weights)].Inches
}
