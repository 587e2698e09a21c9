package analytics

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/assessment-engine/internal/grading"
	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// Graded pairs a submission with its fresh grading result.
type Graded struct {
	Submission *models.Submission
	Meta       models.SubmissionMeta
}

// ReGradeCore grades every submission of a core from scratch and folds them
// into an empty analysis. Rankings of the returned metas are computed against
// the final analysis. A structural mismatch in any submission aborts the run.
func ReGradeCore(core *models.AssessmentCore, subs []models.Submission, gradedAt time.Time) (models.Analysis, []Graded, error) {
	a := NewAnalysis(core)
	graded := make([]Graded, 0, len(subs))
	for i := range subs {
		sub := &subs[i]
		meta, err := grading.GradeSubmission(core, sub, gradedAt)
		if err != nil {
			return models.Analysis{}, nil, fmt.Errorf("failed to grade submission %d: %w", sub.ID, err)
		}
		a = Fold(a, sub, meta)
		graded = append(graded, Graded{Submission: sub, Meta: meta})
	}

	for i := range graded {
		graded[i].Meta = WithRanking(graded[i].Meta, a)
		graded[i].Meta.PickingAbility = PickingAbility(graded[i].Meta, a, DefaultPickingThreshold)
	}
	return a, graded, nil
}
