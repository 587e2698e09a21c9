package stats

import (
	"math"
	"sort"
)

// Sample is a single observation fed into the order statistics below.
type Sample struct {
	Value float64 `json:"value"`
}

// Samples builds a sample slice from plain values.
func Samples(values ...float64) []Sample {
	out := make([]Sample, len(values))
	for i, v := range values {
		out[i] = Sample{Value: v}
	}
	return out
}

// SortSamples returns an ascending copy of samples. Ties keep input order.
func SortSamples(samples []Sample) []Sample {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value < sorted[j].Value
	})
	return sorted
}

// Quantile returns the linearly interpolated order statistic at fraction q.
// q is clamped to [0, 1]; an empty sample set yields 0.
func Quantile(samples []Sample, q float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := SortSamples(samples)
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower].Value
	}

	frac := pos - float64(lower)
	return sorted[lower].Value + frac*(sorted[upper].Value-sorted[lower].Value)
}

// Rank is 1 + the number of samples strictly greater than score.
// Ties do not improve the rank of the scorer.
func Rank(samples []Sample, score float64) int {
	rank := 1
	for _, s := range samples {
		if s.Value > score {
			rank++
		}
	}
	return rank
}

// Percentile is the share of the field the scorer outperforms, rounded to two
// decimals and clamped to [0, 100].
func Percentile(n, rank int) float64 {
	if n <= 0 {
		return 0
	}
	p := Round2(100 * float64(n-rank) / float64(n))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// PercentOf returns score as a percentage of max, rounded to two decimals.
func PercentOf(score, max float64) float64 {
	if max == 0 {
		return 0
	}
	return Round2(100 * score / max)
}

// Round2 rounds to two decimals the way round(10000*x)/100 does for fractions.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Ranking bundles the three position figures for one score.
type Ranking struct {
	Percent    float64 `json:"percent"`
	Percentile float64 `json:"percentile"`
	Rank       int     `json:"rank"`
}

// RankingOf computes percent-of-max, percentile and rank of score against samples.
func RankingOf(samples []Sample, score, maxMarks float64) Ranking {
	rank := Rank(samples, score)
	return Ranking{
		Percent:    PercentOf(score, maxMarks),
		Percentile: Percentile(len(samples), rank),
		Rank:       rank,
	}
}

// MedianOfTimes returns the lower median: the middle element of the sorted
// list, with no averaging on even lengths.
func MedianOfTimes(times []float64) float64 {
	if len(times) == 0 {
		return 0
	}
	sorted := make([]float64, len(times))
	copy(sorted, times)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}

// Mean of values; 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median of values with the usual even-length averaging.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// WeightedMean blends a prior (count, value) with an observed sample mean.
func WeightedMean(priorCount, priorValue, sampleCount, sampleMean float64) float64 {
	total := priorCount + sampleCount
	if total == 0 {
		return 0
	}
	return (priorCount*priorValue + sampleCount*sampleMean) / total
}
