package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty enumerates the quiz difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// OptionsPerQuestion is the fixed number of candidate answers per question.
const OptionsPerQuestion = 4

// WildcardAll is the catalog wildcard: a quiz tagged "All" on an axis
// matches every filter value on that axis. Year uses 0 as its wildcard.
const WildcardAll = "All"

// Question is a single multiple-choice question. Questions live inside
// their quiz row as JSONB; they have no table of their own.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Explanation        string   `json:"explanation,omitempty"`
}

// Quiz is a quiz definition with its academic targeting metadata.
type Quiz struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	Questions        []Question `json:"questions"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
	Course           string     `json:"course"`
	Program          string     `json:"program"`
	Year             int        `json:"year"`
	Section          string     `json:"section"`
	Semester         int        `json:"semester"`
	Tags             []string   `json:"tags,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Clone returns a deep copy of the quiz. Sessions snapshot their quiz at
// start so catalog edits never reach an attempt already in flight.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		cq := question
		cq.Options = append([]string(nil), question.Options...)
		out.Questions[i] = cq
	}
	out.Tags = append([]string(nil), q.Tags...)
	return out
}

// QuestionRequest is the admin payload for a single question.
type QuestionRequest struct {
	Text               string   `json:"text" binding:"required,min=1,max=2000"`
	Options            []string `json:"options" binding:"required,len=4,dive,required,max=500"`
	CorrectOptionIndex int      `json:"correct_option_index" binding:"min=0,max=3"`
	Explanation        string   `json:"explanation" binding:"omitempty,max=2000"`
}

// CreateQuizRequest is the payload for creating a quiz definition.
// A quiz may be created without questions; it simply cannot be played
// until questions are added.
type CreateQuizRequest struct {
	Title            string            `json:"title" binding:"required,min=3,max=255"`
	Description      string            `json:"description" binding:"omitempty,max=2000"`
	Category         string            `json:"category" binding:"required,min=1,max=100"`
	Difficulty       string            `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Questions        []QuestionRequest `json:"questions" binding:"dive"`
	TimeLimitSeconds int               `json:"time_limit_seconds" binding:"required,min=1,max=600"`
	Course           string            `json:"course" binding:"omitempty,max=50"`
	Program          string            `json:"program" binding:"omitempty,max=50"`
	Year             int               `json:"year" binding:"min=0,max=4"`
	Section          string            `json:"section" binding:"omitempty,max=10"`
	Semester         int               `json:"semester" binding:"min=0,max=8"`
	Tags             []string          `json:"tags" binding:"omitempty,dive,max=50"`
}

// UpdateQuizRequest is the payload for updating a quiz definition.
// The whole definition is replaced; partial patches are not supported.
type UpdateQuizRequest = CreateQuizRequest

// ─── Player-facing payloads (no correct answers) ────────────────────

// QuizSummary is the catalog listing entry shown to players.
type QuizSummary struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	QuestionCount    int        `json:"question_count"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
	Course           string     `json:"course"`
	Program          string     `json:"program"`
	Year             int        `json:"year"`
	Section          string     `json:"section"`
	Semester         int        `json:"semester"`
	Tags             []string   `json:"tags,omitempty"`
}

// QuestionForPlayer is a question stripped of its correct answer and
// explanation; both are revealed through session feedback only.
type QuestionForPlayer struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// QuizForPlayer is the full player view of a quiz.
type QuizForPlayer struct {
	QuizSummary
	Questions []QuestionForPlayer `json:"questions"`
}

// Summary converts a quiz to its catalog listing entry.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		Category:         q.Category,
		Difficulty:       q.Difficulty,
		QuestionCount:    len(q.Questions),
		TimeLimitSeconds: q.TimeLimitSeconds,
		Course:           q.Course,
		Program:          q.Program,
		Year:             q.Year,
		Section:          q.Section,
		Semester:         q.Semester,
		Tags:             q.Tags,
	}
}

// ForPlayer converts a quiz to its answer-free player view.
func (q Quiz) ForPlayer() QuizForPlayer {
	questions := make([]QuestionForPlayer, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = QuestionForPlayer{
			ID:      question.ID,
			Text:    question.Text,
			Options: question.Options,
		}
	}
	return QuizForPlayer{QuizSummary: q.Summary(), Questions: questions}
}
