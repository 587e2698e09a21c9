package stats

import "math"

// Accumulator keeps the running moments needed for mean and variance without
// holding on to the observations.
type Accumulator struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	SumSq float64 `json:"sum_sq"`
}

// Add returns a copy with x folded in.
func (a Accumulator) Add(x float64) Accumulator {
	return a.AddWeighted(x, 1)
}

// AddWeighted folds x with an integer weight (e.g. several identical attempts).
func (a Accumulator) AddWeighted(x float64, weight int) Accumulator {
	w := float64(weight)
	a.Count += weight
	a.Sum += w * x
	a.SumSq += w * x * x
	return a
}

// Merge combines two accumulators.
func (a Accumulator) Merge(b Accumulator) Accumulator {
	return Accumulator{
		Count: a.Count + b.Count,
		Sum:   a.Sum + b.Sum,
		SumSq: a.SumSq + b.SumSq,
	}
}

func (a Accumulator) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// Variance is the population variance derived from the sums.
func (a Accumulator) Variance() float64 {
	if a.Count == 0 {
		return 0
	}
	mean := a.Mean()
	v := a.SumSq/float64(a.Count) - mean*mean
	if v < 0 {
		// float cancellation on near-constant data
		return 0
	}
	return v
}

func (a Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}

// Histogram bins values into Bins equal-width buckets over [Min, Max].
// Values outside the range land in the first or last bucket.
type Histogram struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Counts []int   `json:"counts"`
}

// NewHistogram creates an empty histogram. bins < 1 is treated as 1.
func NewHistogram(min, max float64, bins int) Histogram {
	if bins < 1 {
		bins = 1
	}
	return Histogram{Min: min, Max: max, Counts: make([]int, bins)}
}

// Bin returns the bucket index for x.
func (h Histogram) Bin(x float64) int {
	n := len(h.Counts)
	if n == 0 {
		return 0
	}
	if h.Max <= h.Min || x <= h.Min {
		return 0
	}
	if x >= h.Max {
		return n - 1
	}
	idx := int(float64(n) * (x - h.Min) / (h.Max - h.Min))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Add returns a copy of the histogram with x counted.
func (h Histogram) Add(x float64) Histogram {
	counts := make([]int, len(h.Counts))
	copy(counts, h.Counts)
	if len(counts) > 0 {
		counts[h.Bin(x)]++
	}
	h.Counts = counts
	return h
}

// Total number of values counted.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}
