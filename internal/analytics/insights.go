package analytics

import (
	"sort"

	"github.com/SAP-F-2025/assessment-engine/internal/calibration"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// DefaultPickingThreshold is the crowd accuracy above which a question counts
// as easy for picking ability.
const DefaultPickingThreshold = 0.6

// GroupChoice lists the questions of one group a learner is best advised to
// attempt.
type GroupChoice struct {
	Section   int   `json:"section"`
	Group     int   `json:"group"`
	Questions []int `json:"questions"`
}

// questionAccuracy returns the crowd accuracy of a question, or 0 when the
// analysis has no data for it.
func questionAccuracy(a models.Analysis, section, question int) float64 {
	if section < 0 || section >= len(a.Sections) {
		return 0
	}
	qs := a.Sections[section].Questions
	if question < 0 || question >= len(qs) {
		return 0
	}
	return qs[question].Accuracy()
}

// BestQuestionGroupChoices picks, for every question group of core, the Limit
// questions with the highest crowd accuracy. Ties go to the earlier question.
func BestQuestionGroupChoices(core *models.AssessmentCore, a models.Analysis) []GroupChoice {
	choices := make([]GroupChoice, 0, len(core.QuestionGroups))
	for gi, g := range core.QuestionGroups {
		ranked := append([]int(nil), g.Questions...)
		sort.SliceStable(ranked, func(i, j int) bool {
			ai := questionAccuracy(a, g.Section, ranked[i])
			aj := questionAccuracy(a, g.Section, ranked[j])
			if ai != aj {
				return ai > aj
			}
			return ranked[i] < ranked[j]
		})
		if len(ranked) > g.Limit {
			ranked = ranked[:g.Limit]
		}
		sort.Ints(ranked)
		choices = append(choices, GroupChoice{Section: g.Section, Group: gi, Questions: ranked})
	}
	return choices
}

// DifficultyWindows is the core-level perfect-time window per level.
type DifficultyWindows struct {
	Easy   calibration.Window `json:"easy"`
	Medium calibration.Window `json:"medium"`
	Hard   calibration.Window `json:"hard"`
}

// CalibrateDifficulty runs timing calibration over the correct answer times of
// each level bucket.
func CalibrateDifficulty(a models.Analysis) DifficultyWindows {
	window := func(b models.DifficultyStats, level int) calibration.Window {
		attempts := make([]calibration.Attempt, len(b.CorrectTimes))
		for i, t := range b.CorrectTimes {
			attempts[i] = calibration.Attempt{Seconds: t, Correct: true}
		}
		return calibration.PerfectTime(attempts, level)
	}
	return DifficultyWindows{
		Easy:   window(a.Difficulty.Easy, models.LevelEasy),
		Medium: window(a.Difficulty.Medium, models.LevelMedium),
		Hard:   window(a.Difficulty.Hard, models.LevelHard),
	}
}

// PickingAbility classifies a learner's choices against the crowd accuracy of
// the core. A question with accuracy above threshold is easy.
//
// Skipped tough questions are not counted, so ToughSkipped stays zero.
func PickingAbility(meta models.SubmissionMeta, core models.Analysis, threshold float64) models.PickingAbility {
	var p models.PickingAbility
	for si, sm := range meta.Sections {
		for qi, qm := range sm.Questions {
			if qm.Bonus {
				continue
			}
			easy := questionAccuracy(core, si, qi) > threshold
			attempted := qm.Attempted()
			switch {
			case easy && !attempted:
				p.EasySkipped++
			case easy:
				p.EasyAttempted++
			case attempted:
				p.ToughAttempted++
			}
		}
	}
	return p
}
