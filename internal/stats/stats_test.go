package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile(t *testing.T) {
	samples := Samples(40, 10, 30, 20, 50)

	t.Run("Endpoints", func(t *testing.T) {
		assert.Equal(t, 10.0, Quantile(samples, 0))
		assert.Equal(t, 50.0, Quantile(samples, 1))
	})

	t.Run("Interpolates", func(t *testing.T) {
		assert.Equal(t, 30.0, Quantile(samples, 0.5))
		assert.InDelta(t, 15.0, Quantile(samples, 0.125), 1e-9)
	})

	t.Run("Monotonic", func(t *testing.T) {
		prev := Quantile(samples, 0)
		for q := 0.05; q <= 1.0; q += 0.05 {
			cur := Quantile(samples, q)
			assert.GreaterOrEqual(t, cur, prev, "q=%v", q)
			prev = cur
		}
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Quantile(nil, 0.5))
	})

	t.Run("ClampsFraction", func(t *testing.T) {
		assert.Equal(t, 10.0, Quantile(samples, -1))
		assert.Equal(t, 50.0, Quantile(samples, 2))
	})

	t.Run("DoesNotMutateInput", func(t *testing.T) {
		Quantile(samples, 0.3)
		assert.Equal(t, 40.0, samples[0].Value)
	})
}

func TestRankingOf(t *testing.T) {
	samples := Samples(10, 20, 30, 40, 50)

	r := RankingOf(samples, 30, 50)
	assert.Equal(t, 3, r.Rank)
	assert.Equal(t, 60.0, r.Percent)
	assert.Equal(t, 40.0, r.Percentile)

	top := RankingOf(samples, 50, 50)
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, 80.0, top.Percentile)

	outside := RankingOf(samples, 0, 50)
	assert.Equal(t, 6, outside.Rank)
	assert.Equal(t, 0.0, outside.Percentile)
}

func TestRankBounds(t *testing.T) {
	samples := Samples(3, 3, 7, 1, 9, 9, 2)
	n := len(samples)
	for _, score := range []float64{-5, 0, 1, 2, 3, 4, 7, 8, 9, 100} {
		rank := Rank(samples, score)
		assert.GreaterOrEqual(t, rank, 1)
		assert.LessOrEqual(t, rank, n+1)

		p := Percentile(n, rank)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestRankTiesAreConservative(t *testing.T) {
	samples := Samples(30, 30, 30)
	assert.Equal(t, 1, Rank(samples, 30))
	assert.Equal(t, 4, Rank(samples, 29))
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 0.0, PercentOf(10, 0))
	assert.Equal(t, 33.33, PercentOf(1, 3))
	assert.Equal(t, -10.0, PercentOf(-5, 50))
	assert.Equal(t, 0.0, Percentile(0, 1))
}

func TestMedianOfTimes(t *testing.T) {
	tests := []struct {
		name  string
		times []float64
		want  float64
	}{
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
		{"odd", []float64{9, 1, 5}, 5},
		{"even takes lower middle", []float64{40, 10, 30, 20}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MedianOfTimes(tt.times))
		})
	}
}

func TestMeanMedian(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 0.0, WeightedMean(0, 10, 0, 5))
	assert.Equal(t, 15.0, WeightedMean(5, 20, 5, 10))
}

func TestAccumulator(t *testing.T) {
	var acc Accumulator
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		acc = acc.Add(v)
	}

	assert.Equal(t, 8, acc.Count)
	assert.Equal(t, 40.0, acc.Sum)
	assert.Equal(t, 5.0, acc.Mean())
	assert.InDelta(t, 4.0, acc.Variance(), 1e-9)
	assert.InDelta(t, 2.0, acc.StdDev(), 1e-9)

	merged := Accumulator{}.Add(1).Merge(Accumulator{}.AddWeighted(3, 2))
	assert.Equal(t, 3, merged.Count)
	assert.Equal(t, 7.0, merged.Sum)
	assert.Equal(t, 19.0, merged.SumSq)

	assert.Equal(t, 0.0, Accumulator{}.Variance())
}

func TestHistogram(t *testing.T) {
	h := NewHistogram(0, 100, 20)
	h = h.Add(0).Add(4.99).Add(5).Add(99).Add(100).Add(150).Add(-10)

	assert.Equal(t, 7, h.Total())
	assert.Equal(t, 3, h.Counts[0])
	assert.Equal(t, 1, h.Counts[1])
	assert.Equal(t, 3, h.Counts[19])

	empty := NewHistogram(0, 100, 20)
	_ = empty.Add(50)
	assert.Equal(t, 0, empty.Total())

	degenerate := NewHistogram(0, 0, 0)
	degenerate = degenerate.Add(3)
	assert.Equal(t, []int{1}, degenerate.Counts)
}
