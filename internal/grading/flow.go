package grading

import "github.com/SAP-F-2025/assessment-engine/internal/models"

// Roadmap rebuilds the ordered visits of a submission. Each visit lasts until
// the next one; the last visit has no measurable dwell. Entries pointing
// outside the graded structure are skipped.
func Roadmap(flow []models.FlowEvent, sections []models.SectionMeta) []models.RoadmapStep {
	var steps []models.RoadmapStep
	var lastAt float64
	for _, ev := range flow {
		if ev.Action != models.FlowVisit {
			continue
		}
		if !inRange(sections, ev.Section, ev.Question) {
			continue
		}
		if n := len(steps); n > 0 {
			steps[n-1].Dwell = ev.At - lastAt
		}
		lastAt = ev.At
		steps = append(steps, models.RoadmapStep{
			Section:  ev.Section,
			Question: ev.Question,
			Outcome:  sections[ev.Section].Questions[ev.Question].Outcome,
		})
	}
	return steps
}

func inRange(sections []models.SectionMeta, section, question int) bool {
	if section < 0 || section >= len(sections) {
		return false
	}
	return question >= 0 && question < len(sections[section].Questions)
}

// FirstSeenAccuracy is the share of questions whose first recorded response
// was correct.
func FirstSeenAccuracy(flow []models.FlowEvent, core *models.AssessmentCore) float64 {
	type key struct{ section, question int }
	seen := make(map[key]bool)
	var total, correct int

	for _, ev := range flow {
		if ev.Action != models.FlowResponse || ev.Answer == nil || ev.Answer.IsEmpty() {
			continue
		}
		if ev.Section < 0 || ev.Section >= len(core.Sections) {
			continue
		}
		questions := core.Sections[ev.Section].Questions
		if ev.Question < 0 || ev.Question >= len(questions) {
			continue
		}
		k := key{ev.Section, ev.Question}
		if seen[k] {
			continue
		}
		seen[k] = true

		total++
		if Evaluate(questions[ev.Question], *ev.Answer, false).Outcome == models.OutcomeCorrect {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
