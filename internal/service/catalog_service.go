package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusmemory/quiz-backend/internal/model"
)

// QuizRepository abstracts quiz catalog storage. The engine and the
// services only ever touch the catalog through this interface.
type QuizRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	List(ctx context.Context) ([]model.Quiz, error)
	Create(ctx context.Context, q *model.Quiz) error
	Update(ctx context.Context, q *model.Quiz) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrQuizNotFound is returned when a quiz ID does not exist.
var ErrQuizNotFound = errors.New("quiz not found")

// CatalogService handles quiz catalog browsing and administration.
type CatalogService struct {
	quizzes QuizRepository
	log     zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(quizzes QuizRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		quizzes: quizzes,
		log:     log.With().Str("component", "catalog_service").Logger(),
	}
}

// ListFiltered returns player-facing summaries of quizzes matching the
// criteria. Filtering is pure: wildcard semantics live in the model.
func (s *CatalogService) ListFiltered(ctx context.Context, criteria model.FilterCriteria) ([]model.QuizSummary, error) {
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	matched := model.FilterQuizzes(quizzes, criteria)
	summaries := make([]model.QuizSummary, len(matched))
	for i, q := range matched {
		summaries[i] = q.Summary()
	}
	return summaries, nil
}

// GetForPlayer returns the answer-free view of a quiz.
func (s *CatalogService) GetForPlayer(ctx context.Context, id uuid.UUID) (*model.QuizForPlayer, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, ErrQuizNotFound
	}
	view := quiz.ForPlayer()
	return &view, nil
}

// ─── Administration ─────────────────────────────────────────────────

// ListAll returns every quiz definition, answers included.
func (s *CatalogService) ListAll(ctx context.Context) ([]model.Quiz, error) {
	return s.quizzes.List(ctx)
}

// Get returns a full quiz definition.
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

// Create validates and stores a new quiz definition.
func (s *CatalogService) Create(ctx context.Context, req *model.CreateQuizRequest) (*model.Quiz, error) {
	quiz := quizFromRequest(req)
	if err := validateQuestions(quiz.Questions); err != nil {
		return nil, err
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.log.Info().
		Str("quiz_id", quiz.ID.String()).
		Str("title", quiz.Title).
		Int("questions", len(quiz.Questions)).
		Msg("Quiz created")
	return quiz, nil
}

// Update validates and replaces an existing quiz definition. Sessions
// already in flight keep playing against their start-time snapshot.
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	if _, err := s.quizzes.GetByID(ctx, id); err != nil {
		return nil, ErrQuizNotFound
	}

	quiz := quizFromRequest(req)
	quiz.ID = id
	if err := validateQuestions(quiz.Questions); err != nil {
		return nil, err
	}

	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}

	s.log.Info().Str("quiz_id", id.String()).Msg("Quiz updated")
	return quiz, nil
}

// Delete removes a quiz definition.
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.quizzes.Delete(ctx, id); err != nil {
		return ErrQuizNotFound
	}
	s.log.Info().Str("quiz_id", id.String()).Msg("Quiz deleted")
	return nil
}

// InvalidQuestionError reports a question that fails catalog validation.
type InvalidQuestionError struct {
	Index  int
	Reason string
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Index, e.Reason)
}

// validateQuestions enforces the option-count and answer-index
// invariants beyond what binding tags can express.
func validateQuestions(questions []model.Question) error {
	for i, q := range questions {
		if len(q.Options) != model.OptionsPerQuestion {
			return &InvalidQuestionError{Index: i, Reason: fmt.Sprintf("expected %d options, got %d", model.OptionsPerQuestion, len(q.Options))}
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return &InvalidQuestionError{Index: i, Reason: fmt.Sprintf("correct option index %d out of range", q.CorrectOptionIndex)}
		}
	}
	return nil
}

func quizFromRequest(req *model.CreateQuizRequest) *model.Quiz {
	questions := make([]model.Question, len(req.Questions))
	for i, qr := range req.Questions {
		questions[i] = model.Question{
			ID:                 uuid.New().String(),
			Text:               qr.Text,
			Options:            qr.Options,
			CorrectOptionIndex: qr.CorrectOptionIndex,
			Explanation:        qr.Explanation,
		}
	}
	return &model.Quiz{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Difficulty:       model.Difficulty(req.Difficulty),
		Questions:        questions,
		TimeLimitSeconds: req.TimeLimitSeconds,
		Course:           req.Course,
		Program:          req.Program,
		Year:             req.Year,
		Section:          req.Section,
		Semester:         req.Semester,
		Tags:             req.Tags,
	}
}
