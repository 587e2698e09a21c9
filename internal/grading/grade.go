package grading

import (
	"errors"
	"sort"
	"time"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/stats"
)

// SectionInput bundles what GradeSection needs besides the two sections.
type SectionInput struct {
	Bonus    models.BonusMap
	Scheme   models.MarkingScheme
	Groups   []models.QuestionGroup
	GradedAt time.Time
}

// IsBonus reports whether a question counts as bonus for a submission graded
// at gradedAt.
func IsBonus(bonus models.BonusMap, questionID uint, gradedAt time.Time) bool {
	setAt, ok := bonus[questionID]
	return ok && !gradedAt.Before(setAt)
}

// GradeQuestion scores one response against one core question.
func GradeQuestion(q models.CoreQuestion, resp models.ResponseQuestion, in SectionInput) models.QuestionMeta {
	meta := models.QuestionMeta{
		QuestionID: q.QuestionID,
		Level:      q.Level,
		Time:       resp.Time,
		Counted:    true,
	}

	if IsBonus(in.Bonus, q.QuestionID, in.GradedAt) {
		meta.Outcome = models.OutcomeCorrect
		meta.Mark = q.CorrectMark
		meta.Bonus = true
		return meta
	}

	v := Evaluate(q, resp.Answer, in.Scheme.Kind == models.MarkingPartial)
	meta.Outcome = v.Outcome
	switch v.Outcome {
	case models.OutcomeCorrect:
		meta.Mark = q.CorrectMark
	case models.OutcomeIncorrect:
		meta.Mark = q.IncorrectMark
	case models.OutcomePartial:
		meta.Mark = in.Scheme.PartialMark * float64(v.Selected)
	}
	return meta
}

// GradeSection scores a response section against its core section. The two
// must have the same number of questions.
func GradeSection(resp models.ResponseSection, section models.CoreSection, in SectionInput) (models.SectionMeta, error) {
	if len(resp.Questions) != len(section.Questions) {
		return models.SectionMeta{}, &StructureError{
			Question: -1,
			Expected: len(section.Questions),
			Actual:   len(resp.Questions),
			What:     "question count",
		}
	}
	for _, g := range in.Groups {
		for _, idx := range g.Questions {
			if idx < 0 || idx >= len(section.Questions) {
				return models.SectionMeta{}, &StructureError{
					Question: idx,
					What:     "question group references a missing question",
				}
			}
		}
	}

	meta := models.SectionMeta{
		Questions: make([]models.QuestionMeta, len(section.Questions)),
		MaxMarks:  section.MaxMarksWithin(in.Groups),
	}
	for i, q := range section.Questions {
		meta.Questions[i] = GradeQuestion(q, resp.Questions[i], in)
	}
	applyGroups(meta.Questions, in.Groups)

	for _, qm := range meta.Questions {
		meta.Time += qm.Time
		if !qm.Counted {
			continue
		}
		meta.Marks += qm.Mark
		if qm.Mark > 0 {
			meta.MarksGained += qm.Mark
		} else {
			meta.MarksLost -= qm.Mark
		}
		switch qm.Outcome {
		case models.OutcomeCorrect:
			meta.Correct++
		case models.OutcomeIncorrect:
			meta.Incorrect++
		case models.OutcomePartial:
			meta.Partial++
		}
		if qm.Attempted() {
			meta.Attempted++
		}
	}
	return meta, nil
}

// applyGroups keeps only the best Limit answered questions of each group.
// Ties go to the earlier question.
func applyGroups(questions []models.QuestionMeta, groups []models.QuestionGroup) {
	for _, g := range groups {
		answered := make([]int, 0, len(g.Questions))
		for _, idx := range g.Questions {
			if questions[idx].Attempted() {
				answered = append(answered, idx)
			}
		}
		sort.SliceStable(answered, func(i, j int) bool {
			return questions[answered[i]].Mark > questions[answered[j]].Mark
		})
		for rank, idx := range answered {
			if rank >= g.Limit {
				questions[idx].Counted = false
			}
		}
	}
}

// GradeSubmission scores every section of a submission and derives the
// submission-wide aggregates. Ranking fields are left to the aggregator.
func GradeSubmission(core *models.AssessmentCore, sub *models.Submission, gradedAt time.Time) (models.SubmissionMeta, error) {
	response := sub.Response.Data()
	if len(response.Sections) != len(core.Sections) {
		return models.SubmissionMeta{}, &StructureError{
			Section:  -1,
			Question: -1,
			Expected: len(core.Sections),
			Actual:   len(response.Sections),
			What:     "section count",
		}
	}

	in := SectionInput{
		Bonus:    core.Bonus.Data(),
		Scheme:   core.MarkingScheme.Data(),
		GradedAt: gradedAt,
	}

	meta := models.SubmissionMeta{Sections: make([]models.SectionMeta, len(core.Sections))}
	for i, section := range core.Sections {
		in.Groups = core.GroupsFor(i)
		sm, err := GradeSection(response.Sections[i], section, in)
		if err != nil {
			var se *StructureError
			if errors.As(err, &se) {
				se.Section = i
			}
			return models.SubmissionMeta{}, err
		}
		meta.Sections[i] = sm

		meta.Marks += sm.Marks
		meta.MaxMarks += sm.MaxMarks
		meta.MarksGained += sm.MarksGained
		meta.MarksLost += sm.MarksLost
		meta.Correct += sm.Correct
		meta.Incorrect += sm.Incorrect
		meta.Partial += sm.Partial
		meta.Attempted += sm.Attempted
		meta.Time += sm.Time

		for _, qm := range sm.Questions {
			addDifficulty(&meta.Difficulty, qm)
		}
	}

	meta.Percent = stats.PercentOf(meta.Marks, meta.MaxMarks)
	if meta.Attempted > 0 {
		meta.Accuracy = float64(meta.Correct) / float64(meta.Attempted)
	}
	meta.Roadmap = Roadmap(sub.Flow, meta.Sections)
	meta.FirstSeenAccuracy = FirstSeenAccuracy(sub.Flow, core)
	return meta, nil
}

func addDifficulty(d *models.DifficultyMeta, qm models.QuestionMeta) {
	if !qm.Counted {
		return
	}
	b := d.Bucket(qm.Level)
	b.Questions++
	b.Time += qm.Time
	if !qm.Attempted() {
		return
	}
	b.TotalAttempts++
	switch qm.Outcome {
	case models.OutcomeCorrect:
		b.Correct++
	case models.OutcomeIncorrect:
		b.Incorrect++
	}
}
