package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusmemory/quiz-backend/internal/model"
)

// In-memory repository doubles shared by the service tests.

type fakeQuizRepo struct {
	mu      sync.Mutex
	quizzes []model.Quiz
}

func (r *fakeQuizRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quizzes {
		if q.ID == id {
			clone := q.Clone()
			return &clone, nil
		}
	}
	return nil, ErrQuizNotFound
}

func (r *fakeQuizRepo) List(_ context.Context) ([]model.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Quiz, 0, len(r.quizzes))
	for _, q := range r.quizzes {
		out = append(out, q.Clone())
	}
	return out, nil
}

func (r *fakeQuizRepo) Create(_ context.Context, q *model.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	r.quizzes = append(r.quizzes, q.Clone())
	return nil
}

func (r *fakeQuizRepo) Update(_ context.Context, q *model.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.quizzes {
		if r.quizzes[i].ID == q.ID {
			q.UpdatedAt = time.Now()
			r.quizzes[i] = q.Clone()
			return nil
		}
	}
	return ErrQuizNotFound
}

func (r *fakeQuizRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.quizzes {
		if r.quizzes[i].ID == id {
			r.quizzes = append(r.quizzes[:i], r.quizzes[i+1:]...)
			return nil
		}
	}
	return ErrQuizNotFound
}

type fakeResultRepo struct {
	mu      sync.Mutex
	nextID  int64
	results []model.QuizResult
}

func (r *fakeResultRepo) Create(_ context.Context, res *model.QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	res.ID = r.nextID
	r.results = append(r.results, *res)
	return nil
}

func (r *fakeResultRepo) CreateBatch(ctx context.Context, results []model.QuizResult) error {
	for i := range results {
		if err := r.Create(ctx, &results[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeResultRepo) ListAll(_ context.Context) ([]model.QuizResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.QuizResult(nil), r.results...), nil
}

func (r *fakeResultRepo) ListRecent(_ context.Context, playerName string, limit int) ([]model.QuizResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.QuizResult, 0, limit)
	for i := len(r.results) - 1; i >= 0 && len(out) < limit; i-- {
		if playerName != "" && r.results[i].PlayerName != playerName {
			continue
		}
		out = append(out, r.results[i])
	}
	return out, nil
}

func (r *fakeResultRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func testQuiz(title string) model.Quiz {
	return model.Quiz{
		ID:         uuid.New(),
		Title:      title,
		Category:   "Programming",
		Difficulty: model.DifficultyMedium,
		Course:     "BCA",
		Program:    "CS",
		Year:       2,
		Section:    "A",
		Questions: []model.Question{
			{
				ID:                 uuid.New().String(),
				Text:               "Which data structure is FIFO?",
				Options:            []string{"Stack", "Queue", "Tree", "Heap"},
				CorrectOptionIndex: 1,
				Explanation:        "A queue serves elements in arrival order.",
			},
			{
				ID:                 uuid.New().String(),
				Text:               "What does SQL stand for?",
				Options:            []string{"Structured Query Language", "Simple Query List", "Sequential Query Logic", "Standard Quote Language"},
				CorrectOptionIndex: 0,
			},
		},
		TimeLimitSeconds: 30,
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
