package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func correctTimes(times ...float64) []Attempt {
	out := make([]Attempt, len(times))
	for i, s := range times {
		out[i] = Attempt{Seconds: s, Correct: true}
	}
	return out
}

func TestPerfectTime(t *testing.T) {
	t.Run("BlendsWithPriors", func(t *testing.T) {
		attempts := correctTimes(100, 90, 80, 70, 60, 50, 40, 30, 20, 10)
		// noise that must be ignored
		attempts = append(attempts,
			Attempt{Seconds: 2, Correct: true},
			Attempt{Seconds: 700, Correct: true},
			Attempt{Seconds: 15, Correct: false},
		)

		w := PerfectTime(attempts, 1)
		assert.InDelta(t, 110.0/6.0, w.Min, 1e-9)
		assert.InDelta(t, 840.0/11.0, w.Max, 1e-9)
		assert.Equal(t, 50.0, w.MedianTime)
	})

	t.Run("NoAttemptsReturnsPriors", func(t *testing.T) {
		for level := 1; level <= 3; level++ {
			w := PerfectTime(nil, level)
			assert.Equal(t, Priors(level), w)
			assert.LessOrEqual(t, w.Min, w.MedianTime)
			assert.LessOrEqual(t, w.MedianTime, w.Max)
		}
	})

	t.Run("OnlyIncorrectReturnsPriors", func(t *testing.T) {
		w := PerfectTime([]Attempt{{Seconds: 30}, {Seconds: 40}}, 2)
		assert.Equal(t, Priors(2), w)
	})

	t.Run("MedianAlwaysInsideWindow", func(t *testing.T) {
		cases := [][]float64{
			{5},
			{599},
			{6, 6, 6, 6},
			{500, 510, 520, 530, 540, 550},
			{5, 5, 5, 5, 5, 5, 5, 600},
		}
		for _, times := range cases {
			w := PerfectTime(correctTimes(times...), 1)
			assert.LessOrEqual(t, w.Min, w.MedianTime, "times=%v", times)
			assert.LessOrEqual(t, w.MedianTime, w.Max, "times=%v", times)
		}
	})

	t.Run("UnknownLevelUsesMediumProfile", func(t *testing.T) {
		assert.Equal(t, Priors(2), PerfectTime(nil, 9))
	})
}

func TestReclassifyLevel(t *testing.T) {
	mk := func(correct, wrong int, seconds float64) []Attempt {
		var out []Attempt
		for i := 0; i < correct; i++ {
			out = append(out, Attempt{Seconds: seconds, Correct: true})
		}
		for i := 0; i < wrong; i++ {
			out = append(out, Attempt{Seconds: seconds})
		}
		return out
	}

	tests := []struct {
		name     string
		attempts []Attempt
		want     int
	}{
		{"easy", mk(8, 2, 30), 1},
		{"exactly three quarters is medium", mk(3, 1, 30), 2},
		{"half is hard", mk(1, 1, 30), 3},
		{"hard", mk(1, 9, 30), 3},
		{"guesses ignored keeps current", mk(10, 0, 5), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReclassifyLevel(tt.attempts, 5, 2))
		})
	}

	t.Run("FastGuessesExcluded", func(t *testing.T) {
		attempts := append(mk(0, 10, 3), mk(9, 1, 40)...)
		assert.Equal(t, 1, ReclassifyLevel(attempts, 5, 3))
	})
}

func TestShouldRecalibrate(t *testing.T) {
	assert.False(t, ShouldRecalibrate(99, DefaultRecalibrationThreshold))
	assert.True(t, ShouldRecalibrate(100, DefaultRecalibrationThreshold))
	assert.False(t, ShouldRecalibrate(101, DefaultRecalibrationThreshold))
	assert.True(t, ShouldRecalibrate(200, DefaultRecalibrationThreshold))
	assert.False(t, ShouldRecalibrate(100, 0))
}

func TestClassifySpeed(t *testing.T) {
	w := Window{Min: 20, Max: 90, MedianTime: 50}
	assert.Equal(t, SpeedFast, ClassifySpeed(10, w))
	assert.Equal(t, SpeedPerfect, ClassifySpeed(20, w))
	assert.Equal(t, SpeedPerfect, ClassifySpeed(90, w))
	assert.Equal(t, SpeedSlow, ClassifySpeed(91, w))
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Accuracy(nil))
	assert.Equal(t, 0.5, Accuracy([]Attempt{{Correct: true}, {}}))
}
