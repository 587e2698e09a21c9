package selector

import (
	"context"
	"math"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

type indexedFilter struct {
	index    int
	criteria models.SelectionCriteria
}

func indexFilters(filters []models.SelectionCriteria) []indexedFilter {
	out := make([]indexedFilter, len(filters))
	for i, f := range filters {
		out[i] = indexedFilter{index: i, criteria: f}
	}
	return out
}

func criteriaOf(filters []indexedFilter) []models.SelectionCriteria {
	out := make([]models.SelectionCriteria, len(filters))
	for i, f := range filters {
		out[i] = f.criteria
	}
	return out
}

// bucket is one (sub topic, level) exposure slot. Level 0 stands for any level.
type bucket struct {
	filterIndex int
	criteria    models.SelectionCriteria
	subTopic    string
	level       models.QuestionLevel
}

func buckets(filters []indexedFilter) []bucket {
	var out []bucket
	for _, f := range filters {
		levels := f.criteria.LevelSet()
		if len(levels) == 0 {
			out = append(out, bucket{filterIndex: f.index, criteria: f.criteria, subTopic: f.criteria.SubTopic})
			continue
		}
		for _, l := range levels {
			out = append(out, bucket{filterIndex: f.index, criteria: narrowTo(f.criteria, l), subTopic: f.criteria.SubTopic, level: l})
		}
	}
	return out
}

// bucketCounts counts served questions per (sub topic, level) key.
func bucketCounts(bs []bucket, served []models.SessionQuestion) []int {
	counts := make([]int, len(bs))
	for i, b := range bs {
		for _, q := range served {
			if q.SubTopic != b.subTopic {
				continue
			}
			if b.level != 0 && q.Level != b.level {
				continue
			}
			counts[i]++
		}
	}
	return counts
}

// filterCounts counts served questions per filter index.
func filterCounts(n int, served []models.SessionQuestion) []int {
	counts := make([]int, n)
	for _, q := range served {
		if q.FilterIndex >= 0 && q.FilterIndex < n {
			counts[q.FilterIndex]++
		}
	}
	return counts
}

func (s *Selector) selectDefault(ctx context.Context, req *Request) (*Result, error) {
	return s.runDefault(ctx, req, indexFilters(req.Session.Filters), models.SelectorDefault)
}

// runDefault balances exposure across (sub topic, level) buckets, then walks
// the data-level tiers for the chosen bucket before widening to any filter.
func (s *Selector) runDefault(ctx context.Context, req *Request, filters []indexedFilter, name models.SelectorName) (*Result, error) {
	bs := buckets(filters)
	chosen := bs[weightedIndex(s.rand, inverseFrequency(bucketCounts(bs, req.Session.Questions)))]

	factor, draw, level, err := s.dataLevel(ctx, chosen.subTopic)
	if err != nil {
		return nil, err
	}

	tr := trace{
		strategy:    name,
		criteria:    chosen.criteria,
		filterIndex: chosen.filterIndex,
		factor:      factor,
		draw:        draw,
		dataLevel:   level,
	}
	single := []models.SelectionCriteria{chosen.criteria}

	// Both data-level tiers include attemptsCount == level.
	tiers := []tier{
		{name: models.TierUnderTarget, query: Query{Criteria: single, MaxAttempts: &level, Order: OrderAttemptsDesc}},
		{name: models.TierOverTarget, query: Query{Criteria: single, MinAttempts: &level, Order: OrderAttemptsAsc}},
		{name: models.TierAnyFilter, query: Query{Criteria: criteriaOf(filters), Order: OrderAttemptsAsc}},
	}

	return s.finish(ctx, req, tr, tiers, filters, name)
}

func (s *Selector) selectNucleus(ctx context.Context, req *Request) (*Result, error) {
	return s.runNucleus(ctx, req, false, models.SelectorNucleus)
}

func (s *Selector) selectDemo(ctx context.Context, req *Request) (*Result, error) {
	return s.runNucleus(ctx, req, true, models.SelectorDemo)
}

// runNucleus balances exposure per filter index and queries the filter's
// whole level set. fixed restricts every tier to curated questions served in
// demo rank order and adds a last tier without that restriction.
func (s *Selector) runNucleus(ctx context.Context, req *Request, fixed bool, name models.SelectorName) (*Result, error) {
	filters := indexFilters(req.Session.Filters)
	idx := weightedIndex(s.rand, inverseFrequency(filterCounts(len(filters), req.Session.Questions)))
	chosen := filters[idx]

	factor, draw, level, err := s.dataLevel(ctx, chosen.criteria.SubTopic)
	if err != nil {
		return nil, err
	}

	tr := trace{
		strategy:    name,
		criteria:    chosen.criteria,
		filterIndex: chosen.index,
		factor:      factor,
		draw:        draw,
		dataLevel:   level,
	}
	single := []models.SelectionCriteria{chosen.criteria}
	all := criteriaOf(filters)

	tiers := []tier{
		{name: models.TierUnderTarget, query: Query{Criteria: single, MaxAttempts: &level, RequireFixed: fixed, ByDemoRank: fixed, Order: OrderAttemptsDesc}},
		{name: models.TierOverTarget, query: Query{Criteria: single, MinAttempts: &level, RequireFixed: fixed, ByDemoRank: fixed, Order: OrderAttemptsAsc}},
		{name: models.TierAnyFilter, query: Query{Criteria: all, RequireFixed: fixed, ByDemoRank: fixed, Order: OrderAttemptsAsc}},
	}
	if fixed {
		tiers = append(tiers, tier{name: models.TierAnyFilterFree, query: Query{Criteria: all, Order: OrderAttemptsAsc}})
	}

	return s.finish(ctx, req, tr, tiers, filters, name)
}

func (s *Selector) finish(ctx context.Context, req *Request, tr trace, tiers []tier, filters []indexedFilter, name models.SelectorName) (*Result, error) {
	result, err := s.firstMatch(ctx, req, tr, tiers)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, endOfQuestions(string(name))
	}

	// Wide tiers may land on a different filter than the one chosen.
	if !criteriaMatches(result.Criteria, result.Question) {
		for _, f := range filters {
			if criteriaMatches(f.criteria, result.Question) {
				result.FilterIndex = f.index
				result.Criteria = f.criteria
				break
			}
		}
	}
	return result, nil
}

func roundInt(x float64) int {
	return int(math.Round(x))
}
