// Package analytics maintains the running aggregates of graded submissions
// for wrappers and cores, and derives rankings and core-level insights from
// them. Every update returns a new models.Analysis; inputs are never mutated.
package analytics

import (
	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/stats"
)

// NewAnalysis returns an empty analysis shaped after core.
func NewAnalysis(core *models.AssessmentCore) models.Analysis {
	a := models.Analysis{
		MaxMarks: core.MaxMarks(),
		Sections: make([]models.SectionStats, len(core.Sections)),
	}
	a.Hist = stats.NewHistogram(0, a.MaxMarks, models.HistogramBins)
	for i, s := range core.Sections {
		maxMarks := core.SectionMaxMarks(i)
		a.Sections[i] = models.SectionStats{
			MaxMarks:  maxMarks,
			Hist:      stats.NewHistogram(0, maxMarks, models.HistogramBins),
			Questions: make([]models.QuestionStats, len(s.Questions)),
		}
	}
	return a
}

// Reset clears every folded contribution while keeping the shape and maxima
// of a.
func Reset(a models.Analysis) models.Analysis {
	out := models.Analysis{
		MaxMarks: a.MaxMarks,
		Hist:     stats.NewHistogram(0, a.MaxMarks, models.HistogramBins),
		Sections: make([]models.SectionStats, len(a.Sections)),
	}
	for i, s := range a.Sections {
		out.Sections[i] = models.SectionStats{
			MaxMarks:  s.MaxMarks,
			Hist:      stats.NewHistogram(0, s.MaxMarks, models.HistogramBins),
			Questions: make([]models.QuestionStats, len(s.Questions)),
		}
	}
	return out
}

// Fold returns a with one graded submission folded in. A submission that is
// already included leaves the analysis unchanged.
func Fold(a models.Analysis, sub *models.Submission, meta models.SubmissionMeta) models.Analysis {
	if a.Includes(sub.ID) {
		return a
	}
	out := clone(a)

	out.Submissions = append(out.Submissions, sub.ID)
	out.Marks = append(out.Marks, models.MarkEntry{
		UserID:       sub.UserID,
		SubmissionID: sub.ID,
		Marks:        meta.Marks,
	})
	if len(out.Hist.Counts) == 0 {
		out.Hist = stats.NewHistogram(0, out.MaxMarks, models.HistogramBins)
	}
	out.Hist = out.Hist.Add(meta.Marks)
	out.SumMarks += meta.Marks
	out.SumSqMarks += meta.Marks * meta.Marks
	out.SumAccuracy += meta.Accuracy
	out.SumSqAccuracy += meta.Accuracy * meta.Accuracy

	for i, sm := range meta.Sections {
		out.Sections = growSections(out.Sections, i+1)
		foldSection(&out.Sections[i], sm)
		for _, qm := range sm.Questions {
			foldDifficulty(&out.Difficulty, qm)
		}
	}
	return out
}

func foldSection(s *models.SectionStats, sm models.SectionMeta) {
	if s.MaxMarks == 0 {
		s.MaxMarks = sm.MaxMarks
	}
	if len(s.Hist.Counts) == 0 {
		s.Hist = stats.NewHistogram(0, s.MaxMarks, models.HistogramBins)
	}
	s.SumMarks += sm.Marks
	s.Correct += sm.Correct
	s.Incorrect += sm.Incorrect
	s.SumTime += sm.Time
	s.Hist = s.Hist.Add(sm.Marks)

	if len(s.Questions) < len(sm.Questions) {
		grown := make([]models.QuestionStats, len(sm.Questions))
		copy(grown, s.Questions)
		s.Questions = grown
	}
	for j, qm := range sm.Questions {
		if !qm.Counted || !qm.Attempted() {
			continue
		}
		q := &s.Questions[j]
		q.TotalAttempts++
		if qm.Outcome == models.OutcomeCorrect {
			q.CorrectAttempts++
		}
		q.SumTime += qm.Time
		q.SumSqTime += qm.Time * qm.Time
		q.Times = append(q.Times, qm.Time)
	}
}

func foldDifficulty(d *models.DifficultyAnalysis, qm models.QuestionMeta) {
	if !qm.Counted || !qm.Attempted() {
		return
	}
	b := d.Bucket(qm.Level)
	b.TotalAttempts++
	b.Time += qm.Time
	switch qm.Outcome {
	case models.OutcomeCorrect:
		b.Correct++
		b.CorrectTimes = append(b.CorrectTimes, qm.Time)
	case models.OutcomeIncorrect:
		b.Incorrect++
	}
}

func growSections(sections []models.SectionStats, n int) []models.SectionStats {
	for len(sections) < n {
		sections = append(sections, models.SectionStats{})
	}
	return sections
}

// clone deep-copies every slice reachable from a.
func clone(a models.Analysis) models.Analysis {
	out := a
	out.Marks = append([]models.MarkEntry(nil), a.Marks...)
	out.Submissions = append([]uint(nil), a.Submissions...)
	out.Hist.Counts = append([]int(nil), a.Hist.Counts...)

	out.Sections = make([]models.SectionStats, len(a.Sections))
	for i, s := range a.Sections {
		s.Hist.Counts = append([]int(nil), s.Hist.Counts...)
		questions := make([]models.QuestionStats, len(s.Questions))
		for j, q := range s.Questions {
			q.Times = append([]float64(nil), q.Times...)
			questions[j] = q
		}
		s.Questions = questions
		out.Sections[i] = s
	}

	out.Difficulty.Easy.CorrectTimes = append([]float64(nil), a.Difficulty.Easy.CorrectTimes...)
	out.Difficulty.Medium.CorrectTimes = append([]float64(nil), a.Difficulty.Medium.CorrectTimes...)
	out.Difficulty.Hard.CorrectTimes = append([]float64(nil), a.Difficulty.Hard.CorrectTimes...)
	return out
}

// MarksSpread is the mean and standard deviation of folded marks.
func MarksSpread(a models.Analysis) (mean, stddev float64) {
	acc := stats.Accumulator{Count: len(a.Marks), Sum: a.SumMarks, SumSq: a.SumSqMarks}
	return acc.Mean(), acc.StdDev()
}

// AccuracySpread is the mean and standard deviation of folded accuracies.
func AccuracySpread(a models.Analysis) (mean, stddev float64) {
	acc := stats.Accumulator{Count: len(a.Marks), Sum: a.SumAccuracy, SumSq: a.SumSqAccuracy}
	return acc.Mean(), acc.StdDev()
}
