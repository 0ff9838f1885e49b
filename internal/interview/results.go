package interview

import (
	"math"
	"time"
)

// Band labels a score the way the results view groups them.
type Band string

const (
	BandExceptional Band = "exceptional"
	BandSolid       Band = "solid"
	BandGrowth      Band = "growth"
)

// OverallScore is the rounded average of the response scores. It returns 0
// for an empty slice.
func OverallScore(responses []Response) int {
	if len(responses) == 0 {
		return 0
	}
	sum := 0
	for _, r := range responses {
		sum += r.Score
	}
	return int(math.Round(float64(sum) / float64(len(responses))))
}

// ScoreBand maps a score onto its performance band.
func ScoreBand(score int) Band {
	switch {
	case score >= 80:
		return BandExceptional
	case score >= 50:
		return BandSolid
	default:
		return BandGrowth
	}
}

// CategoryAverages returns the rounded average score per question category.
func CategoryAverages(questions []Question, responses []Response) map[string]int {
	type acc struct {
		sum, n int
	}
	byCategory := make(map[string]acc)
	byID := make(map[string]string, len(questions))
	for _, q := range questions {
		byID[q.ID] = q.Category
	}
	for _, r := range responses {
		cat := byID[r.QuestionID]
		a := byCategory[cat]
		a.sum += r.Score
		a.n++
		byCategory[cat] = a
	}
	out := make(map[string]int, len(byCategory))
	for cat, a := range byCategory {
		out[cat] = int(math.Round(float64(a.sum) / float64(a.n)))
	}
	return out
}

// NewResult builds the immutable historical record for a completed session.
func NewResult(params Params, responses []Response) Result {
	return Result{
		Date:           time.Now().UTC(),
		Language:       params.Technology,
		Difficulty:     params.Difficulty,
		Responses:      append([]Response(nil), responses...),
		OverallScore:   OverallScore(responses),
		JobDescription: params.JobDescription,
	}
}

// FallbackEvaluation is the zero-score evaluation used when the provider
// cannot evaluate an answer. The session still advances with it.
func FallbackEvaluation(lang UILanguage) Evaluation {
	if lang == LangArabic {
		return Evaluation{
			Feedback:     "تعذر تقييم الإجابة في الوقت الحالي. يرجى التحقق من مفتاح API.",
			Positives:    []string{},
			Improvements: []string{"حاول مرة أخرى لاحقاً."},
			Score:        0,
		}
	}
	return Evaluation{
		Feedback:     "Could not evaluate at this time. Please check your API key.",
		Positives:    []string{},
		Improvements: []string{"Try again later."},
		Score:        0,
	}
}
