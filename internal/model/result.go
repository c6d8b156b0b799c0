package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizResult is one completed attempt. Results are append-only: created
// exactly once at session completion and never mutated. The serial ID
// records insertion order, which the leaderboard relies on for exact
// ties.
type QuizResult struct {
	ID               int64     `json:"id"`
	QuizID           uuid.UUID `json:"quiz_id"`
	QuizTitle        string    `json:"quiz_title"`
	PlayerName       string    `json:"player_name"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"total_questions"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CompletedAt      time.Time `json:"completed_at"`
}

// Accuracy returns score/totalQuestions as a ratio in [0,1] for
// display. Ranking compares accuracies with integer cross
// multiplication instead of this value to keep ties exact.
func (r QuizResult) Accuracy() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions)
}
