package calibration

// DefaultRecalibrationThreshold is the attempt count at which a question's
// statistics are first recomputed.
const DefaultRecalibrationThreshold = 100

type Speed string

const (
	SpeedFast    Speed = "fast"
	SpeedPerfect Speed = "perfect"
	SpeedSlow    Speed = "slow"
)

// ReclassifyLevel derives a difficulty level from accuracy over attempts
// slower than minTime. Attempts at or below minTime are treated as guesses.
// With nothing left to measure, current is returned unchanged.
func ReclassifyLevel(attempts []Attempt, minTime float64, current int) int {
	var total, correct int
	for _, a := range attempts {
		if a.Seconds <= minTime {
			continue
		}
		total++
		if a.Correct {
			correct++
		}
	}
	if total == 0 {
		return current
	}

	accuracy := float64(correct) / float64(total)
	switch {
	case accuracy > 0.75:
		return 1
	case accuracy > 0.5:
		return 2
	default:
		return 3
	}
}

// Accuracy over all attempts; 0 when there are none.
func Accuracy(attempts []Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	correct := 0
	for _, a := range attempts {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(attempts))
}

// ShouldRecalibrate reports whether attemptsCount has just crossed a multiple
// of threshold. A non-positive threshold disables recalibration.
func ShouldRecalibrate(attemptsCount, threshold int) bool {
	if threshold <= 0 || attemptsCount < threshold {
		return false
	}
	return attemptsCount%threshold == 0
}

// ClassifySpeed places seconds relative to the window.
func ClassifySpeed(seconds float64, w Window) Speed {
	switch {
	case seconds < w.Min:
		return SpeedFast
	case seconds > w.Max:
		return SpeedSlow
	default:
		return SpeedPerfect
	}
}
