package calibration

import (
	"math"
	"sort"

	"github.com/SAP-F-2025/assessment-engine/internal/stats"
)

// Attempt is the timing view of one answered attempt.
type Attempt struct {
	Seconds float64
	Correct bool
}

// Window is the perfect-time window of a question, in seconds.
type Window struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	MedianTime float64 `json:"median_time"`
}

// Prior is a pseudo-sample blended into an observed mean.
type Prior struct {
	Count float64
	Time  float64
}

// LevelProfile holds the plausible time range and priors for one level.
type LevelProfile struct {
	Floor   float64
	Ceiling float64
	Fast    Prior
	Slow    Prior
}

var profiles = map[int]LevelProfile{
	1: {Floor: 5, Ceiling: 600, Fast: Prior{Count: 5, Time: 20}, Slow: Prior{Count: 5, Time: 90}},
	2: {Floor: 10, Ceiling: 900, Fast: Prior{Count: 5, Time: 40}, Slow: Prior{Count: 5, Time: 150}},
	3: {Floor: 15, Ceiling: 1200, Fast: Prior{Count: 5, Time: 60}, Slow: Prior{Count: 5, Time: 240}},
}

const (
	fastFraction  = 0.10
	slowFromFrac  = 0.30
	slowUntilFrac = 0.85
)

// Profile returns the profile for level; unknown levels use the medium profile.
func Profile(level int) LevelProfile {
	if p, ok := profiles[level]; ok {
		return p
	}
	return profiles[2]
}

// Priors is the window a question gets before any usable data exists.
func Priors(level int) Window {
	p := Profile(level)
	return Window{
		Min:        p.Fast.Time,
		Max:        p.Slow.Time,
		MedianTime: (p.Fast.Time + p.Slow.Time) / 2,
	}
}

// PerfectTime computes the perfect-time window from a question's attempts.
// Only correct attempts inside the level's plausible range contribute.
func PerfectTime(attempts []Attempt, level int) Window {
	profile := Profile(level)

	times := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		if !a.Correct {
			continue
		}
		if a.Seconds < profile.Floor || a.Seconds > profile.Ceiling {
			continue
		}
		times = append(times, a.Seconds)
	}
	if len(times) == 0 {
		return Priors(level)
	}
	sort.Float64s(times)

	fast := fastSlice(times)
	slow := slowSlice(times)

	w := Window{
		Min: stats.WeightedMean(profile.Fast.Count, profile.Fast.Time, float64(len(fast)), stats.Mean(fast)),
		Max: stats.WeightedMean(profile.Slow.Count, profile.Slow.Time, float64(len(slow)), stats.Mean(slow)),
	}
	if w.Max < w.Min {
		w.Max = w.Min
	}

	w.MedianTime = clamp(stats.MedianOfTimes(times), w.Min, w.Max)
	return w
}

func fastSlice(sorted []float64) []float64 {
	n := int(math.Floor(fastFraction * float64(len(sorted))))
	if n < 1 {
		n = 1
	}
	return sorted[:n]
}

func slowSlice(sorted []float64) []float64 {
	n := len(sorted)
	from := int(slowFromFrac * float64(n))
	until := int(math.Ceil(slowUntilFrac * float64(n)))
	if until > n {
		until = n
	}
	if from >= until {
		from = until - 1
	}
	return sorted[from:until]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
