package engine

import (
	"sort"

	"github.com/campusmemory/quiz-backend/internal/model"
)

// DefaultLeaderboardSize is the top-N cutoff when none is requested.
const DefaultLeaderboardSize = 10

// Rank orders results by accuracy descending, then time taken
// ascending, and returns the first min(n, len) entries. The sort is
// stable, so exact ties keep their input (insertion) order. The input
// slice is left untouched.
func Rank(results []model.QuizResult, n int) []model.QuizResult {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}

	ranked := append([]model.QuizResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := compareAccuracy(ranked[i], ranked[j]); c != 0 {
			return c > 0
		}
		return ranked[i].TimeTakenSeconds < ranked[j].TimeTakenSeconds
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// compareAccuracy compares score/total ratios by integer cross
// multiplication, so 4/5 and 8/10 tie exactly instead of drifting in
// float space. Totals are always >= 1: only playable quizzes produce
// results.
func compareAccuracy(a, b model.QuizResult) int {
	left := a.Score * b.TotalQuestions
	right := b.Score * a.TotalQuestions
	switch {
	case left > right:
		return 1
	case left < right:
		return -1
	default:
		return 0
	}
}
