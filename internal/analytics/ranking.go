package analytics

import (
	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/stats"
)

// GetRanking positions marks against every score folded into a.
func GetRanking(a models.Analysis, marks float64) stats.Ranking {
	return stats.RankingOf(a.Samples(), marks, a.MaxMarks)
}

// WithRanking returns meta with percent, percentile and rank taken from a.
// Percent keeps the submission's own maximum when a has none.
func WithRanking(meta models.SubmissionMeta, a models.Analysis) models.SubmissionMeta {
	maxMarks := a.MaxMarks
	if maxMarks == 0 {
		maxMarks = meta.MaxMarks
	}
	r := stats.RankingOf(a.Samples(), meta.Marks, maxMarks)
	meta.Percent = r.Percent
	meta.Percentile = r.Percentile
	meta.Rank = r.Rank
	return meta
}
