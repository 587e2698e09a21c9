package selector

import (
	"math"
	"math/rand/v2"
)

// Rand is the randomness the selector draws from.
type Rand interface {
	Float64() float64
}

// globalRand uses the goroutine-safe top-level source.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// poisson draws from a Poisson distribution with the given mean (Knuth).
func poisson(r Rand, mean float64) int {
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		k++
		p *= r.Float64()
		if p <= limit {
			return k - 1
		}
	}
}

// weightedIndex picks an index with probability proportional to its weight.
// Non-positive weights are never picked unless all are non-positive.
func weightedIndex(r Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 0
	}

	target := r.Float64() * float64(total)
	acc := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += float64(w)
		last = i
		if target < acc {
			return i
		}
	}
	return last
}

// inverseFrequency turns exposure counts into weights max+1-count.
func inverseFrequency(counts []int) []int {
	top := 0
	for _, c := range counts {
		top = max(top, c)
	}
	weights := make([]int, len(counts))
	for i, c := range counts {
		weights[i] = top + 1 - c
	}
	return weights
}
