package grading

import (
	"math"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
)

// Verdict is the correctness of one answer before marks are applied.
type Verdict struct {
	Outcome models.Outcome
	// Selected counts the chosen options of a partially correct answer.
	Selected int
}

// Evaluate decides correctness of answer against a core question. Partial
// credit is only considered when allowPartial is set.
func Evaluate(q models.CoreQuestion, answer models.Answer, allowPartial bool) Verdict {
	if answer.IsEmpty() {
		return Verdict{Outcome: models.OutcomeSkipped}
	}

	key := q.AnswerKey
	switch q.Type.Base() {
	case models.QuestionSingle:
		return verdict(singleCorrect(key, answer))
	case models.QuestionMultiple:
		return multipleVerdict(key, answer, allowPartial)
	case models.QuestionInteger:
		return verdict(integerCorrect(key, answer))
	case models.QuestionNumericRange:
		return verdict(rangeCorrect(key, answer))
	default:
		return Verdict{Outcome: models.OutcomeIncorrect}
	}
}

func verdict(correct bool) Verdict {
	if correct {
		return Verdict{Outcome: models.OutcomeCorrect}
	}
	return Verdict{Outcome: models.OutcomeIncorrect}
}

func selectedOptions(answer models.Answer) []string {
	switch answer.Kind {
	case models.AnswerOption:
		return []string{answer.Option}
	case models.AnswerOptions:
		return answer.Options
	default:
		return nil
	}
}

func singleCorrect(key models.AnswerKey, answer models.Answer) bool {
	selected := selectedOptions(answer)
	if len(selected) != 1 || len(key.Options) != 1 {
		return false
	}
	return selected[0] == key.Options[0]
}

func multipleVerdict(key models.AnswerKey, answer models.Answer, allowPartial bool) Verdict {
	selected := dedupe(selectedOptions(answer))
	if len(selected) == 0 {
		return Verdict{Outcome: models.OutcomeIncorrect}
	}

	correct := make(map[string]struct{}, len(key.Options))
	for _, o := range key.Options {
		correct[o] = struct{}{}
	}
	for _, o := range selected {
		if _, ok := correct[o]; !ok {
			return Verdict{Outcome: models.OutcomeIncorrect}
		}
	}

	if len(selected) == len(correct) {
		return Verdict{Outcome: models.OutcomeCorrect}
	}
	if allowPartial {
		return Verdict{Outcome: models.OutcomePartial, Selected: len(selected)}
	}
	return Verdict{Outcome: models.OutcomeIncorrect}
}

func dedupe(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	out := options[:0:0]
	for _, o := range options {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func integerCorrect(key models.AnswerKey, answer models.Answer) bool {
	if key.Integer == nil {
		return false
	}
	switch answer.Kind {
	case models.AnswerInteger:
		return answer.Integer == *key.Integer
	case models.AnswerNumeric:
		return answer.Numeric == math.Trunc(answer.Numeric) && int64(answer.Numeric) == *key.Integer
	default:
		return false
	}
}

func rangeCorrect(key models.AnswerKey, answer models.Answer) bool {
	if key.RangeStart == nil || key.RangeEnd == nil {
		return false
	}
	var v float64
	switch answer.Kind {
	case models.AnswerNumeric:
		v = answer.Numeric
	case models.AnswerInteger:
		v = float64(answer.Integer)
	default:
		return false
	}
	return *key.RangeStart <= v && v <= *key.RangeEnd
}
