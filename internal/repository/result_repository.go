package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusmemory/quiz-backend/internal/model"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ResultRepository handles the append-only quiz result store. Rows are
// inserted once at session completion and never updated; the serial id
// preserves insertion order for the leaderboard's stable sort.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create appends a single result.
func (r *ResultRepository) Create(ctx context.Context, res *model.QuizResult) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_results (quiz_id, quiz_title, player_name, score,
		                           total_questions, time_taken_seconds, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		res.QuizID, res.QuizTitle, res.PlayerName, res.Score,
		res.TotalQuestions, res.TimeTakenSeconds, res.CompletedAt,
	).Scan(&res.ID)
}

// CreateBatch appends a batch of results in one statement using
// UNNEST, matching the worker's flush granularity.
func (r *ResultRepository) CreateBatch(ctx context.Context, results []model.QuizResult) error {
	if len(results) == 0 {
		return nil
	}

	quizIDs := make([]string, len(results))
	titles := make([]string, len(results))
	players := make([]string, len(results))
	scores := make([]int, len(results))
	totals := make([]int, len(results))
	times := make([]int, len(results))
	completed := make([]string, len(results))
	for i, res := range results {
		quizIDs[i] = res.QuizID.String()
		titles[i] = res.QuizTitle
		players[i] = res.PlayerName
		scores[i] = res.Score
		totals[i] = res.TotalQuestions
		times[i] = res.TimeTakenSeconds
		completed[i] = res.CompletedAt.UTC().Format("2006-01-02T15:04:05.999999Z07:00")
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_results (quiz_id, quiz_title, player_name, score,
		                           total_questions, time_taken_seconds, completed_at)
		 SELECT * FROM UNNEST($1::uuid[], $2::text[], $3::text[], $4::int[],
		                      $5::int[], $6::int[], $7::timestamptz[])`,
		quizIDs, titles, players, scores, totals, times, completed,
	)
	if err != nil {
		return fmt.Errorf("batch insert results: %w", err)
	}
	return nil
}

// ListAll retrieves the full result history in insertion order. The
// leaderboard ranks over the complete history regardless of its
// truncation cutoff.
func (r *ResultRepository) ListAll(ctx context.Context) ([]model.QuizResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, quiz_title, player_name, score,
		        total_questions, time_taken_seconds, completed_at
		 FROM quiz_results ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResults(rows)
}

// ListRecent retrieves the newest results, optionally for one player.
func (r *ResultRepository) ListRecent(ctx context.Context, playerName string, limit int) ([]model.QuizResult, error) {
	query := `SELECT id, quiz_id, quiz_title, player_name, score,
	                 total_questions, time_taken_seconds, completed_at
	          FROM quiz_results`
	args := []any{}
	if playerName != "" {
		query += ` WHERE player_name = $1`
		args = append(args, playerName)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResults(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectResults(rows pgxRows) ([]model.QuizResult, error) {
	var results []model.QuizResult
	for rows.Next() {
		var res model.QuizResult
		if err := rows.Scan(&res.ID, &res.QuizID, &res.QuizTitle, &res.PlayerName,
			&res.Score, &res.TotalQuestions, &res.TimeTakenSeconds, &res.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
