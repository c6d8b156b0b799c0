package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusmemory/quiz-backend/internal/model"
)

// QuizRepository handles quiz catalog data access. Questions are stored
// as a JSONB document inside the quiz row.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, title, description, category, difficulty, questions,
	        time_limit_seconds, course, program, year, section, semester, tags,
	        created_at, updated_at`

// GetByID retrieves a quiz definition, questions included.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id)
	return scanQuiz(row)
}

// List retrieves the full catalog ordered by creation time (newest
// first). Filtering happens in memory: the catalog is small and the
// wildcard semantics live in one place, model.FilterQuizzes.
func (r *QuizRepository) List(ctx context.Context) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *quiz)
	}
	return quizzes, rows.Err()
}

// Create inserts a new quiz definition.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (title, description, category, difficulty, questions,
		                      time_limit_seconds, course, program, year, section, semester, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		q.Title, q.Description, q.Category, q.Difficulty, questions,
		q.TimeLimitSeconds, q.Course, q.Program, q.Year, q.Section, q.Semester, q.Tags,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update replaces a quiz definition. Running sessions are unaffected:
// they play against the snapshot taken at start.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET title = $2, description = $3, category = $4, difficulty = $5, questions = $6,
		     time_limit_seconds = $7, course = $8, program = $9, year = $10,
		     section = $11, semester = $12, tags = $13, updated_at = NOW()
		 WHERE id = $1`,
		q.ID, q.Title, q.Description, q.Category, q.Difficulty, questions,
		q.TimeLimitSeconds, q.Course, q.Program, q.Year, q.Section, q.Semester, q.Tags,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a quiz definition.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type pgxRow interface {
	Scan(dest ...any) error
}

func scanQuiz(row pgxRow) (*model.Quiz, error) {
	q := &model.Quiz{}
	var questions []byte
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Category, &q.Difficulty, &questions,
		&q.TimeLimitSeconds, &q.Course, &q.Program, &q.Year, &q.Section, &q.Semester, &q.Tags,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return q, nil
}
