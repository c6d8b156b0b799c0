// Package engine implements the quiz-taking core: the per-attempt state
// machine, answer scoring, and leaderboard ranking. It is pure domain
// logic — no clocks beyond an injectable now func, no I/O, no
// transport. Callers (the session service) own timers and persistence.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/campusmemory/quiz-backend/internal/model"
)

// Unanswered is the sentinel stored for a question the player never
// answered. It is distinct from every valid option index, so a timed
// out question can never score as correct.
const Unanswered = -1

// Status enumerates session states.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusAborted    Status = "ABORTED"
)

// Feedback is the synchronous outcome of an answer submission. The
// presentation layer decides how long to display it before requesting
// the advance; the engine encodes no display pacing.
type Feedback struct {
	QuestionIndex      int    `json:"question_index"`
	Correct            bool   `json:"correct"`
	CorrectOptionIndex int    `json:"correct_option_index"`
	Explanation        string `json:"explanation,omitempty"`
}

// TickOutcome describes what a single clock tick did to the session.
type TickOutcome struct {
	// Remaining is the countdown after the tick.
	Remaining int
	// TimedOut is true when this tick exhausted the countdown and the
	// question was auto-submitted as unanswered.
	TimedOut bool
	// Completed is true when the timeout advanced past the last question.
	Completed bool
}

// Session is one player's attempt at one quiz. It is not safe for
// concurrent use; the owner must serialize ticks and submissions onto
// it (the session service holds one mutex per live session).
type Session struct {
	quiz       model.Quiz
	playerName string
	current    int
	answers    []int
	remaining  int
	startedAt  time.Time
	finishedAt time.Time
	status     Status
	now        func() time.Time
}

// NewSession validates the quiz and player name and starts an attempt
// at question 0 with a full countdown. The quiz is deep-copied so
// concurrent catalog edits never reach a running attempt. A nil now
// defaults to time.Now.
func NewSession(quiz model.Quiz, playerName string, now func() time.Time) (*Session, error) {
	if strings.TrimSpace(playerName) == "" {
		return nil, ErrPlayerNameRequired
	}
	if err := Playable(quiz); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}

	answers := make([]int, len(quiz.Questions))
	for i := range answers {
		answers[i] = Unanswered
	}

	return &Session{
		quiz:       quiz.Clone(),
		playerName: strings.TrimSpace(playerName),
		current:    0,
		answers:    answers,
		remaining:  quiz.TimeLimitSeconds,
		startedAt:  now(),
		status:     StatusInProgress,
		now:        now,
	}, nil
}

// Playable reports whether a quiz can back a session: at least one
// question, a positive time limit, and every correct option index in
// range for its options.
func Playable(quiz model.Quiz) error {
	if len(quiz.Questions) == 0 {
		return &InvalidQuizError{Reason: "quiz has no questions"}
	}
	if quiz.TimeLimitSeconds <= 0 {
		return &InvalidQuizError{Reason: "time limit must be positive"}
	}
	for i, q := range quiz.Questions {
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return &InvalidQuizError{
				Reason: fmt.Sprintf("question %d: correct option index %d out of range", i, q.CorrectOptionIndex),
			}
		}
	}
	return nil
}

// Status returns the session state.
func (s *Session) Status() Status { return s.status }

// PlayerName returns the player taking this attempt.
func (s *Session) PlayerName() string { return s.playerName }

// Quiz returns the snapshotted quiz definition.
func (s *Session) Quiz() model.Quiz { return s.quiz }

// CurrentIndex returns the zero-based index of the current question. It
// equals the question count once the session has completed.
func (s *Session) CurrentIndex() int { return s.current }

// Remaining returns the countdown for the current question.
func (s *Session) Remaining() int { return s.remaining }

// CurrentQuestion returns the player view of the question in play.
func (s *Session) CurrentQuestion() (model.QuestionForPlayer, error) {
	if s.status != StatusInProgress {
		return model.QuestionForPlayer{}, ErrIllegalState
	}
	q := s.quiz.Questions[s.current]
	return model.QuestionForPlayer{ID: q.ID, Text: q.Text, Options: q.Options}, nil
}

// Tick consumes one second of the current question's countdown. Ticks
// outside InProgress are no-ops: the timer owner cancels on completion
// or abort, but a stale tick must never fault. Ticks are also no-ops
// while the current question is already answered — the countdown is
// frozen during the feedback pause so a timeout cannot race a
// submission.
func (s *Session) Tick() TickOutcome {
	if s.status != StatusInProgress {
		return TickOutcome{Remaining: s.remaining}
	}
	if s.answers[s.current] != Unanswered {
		return TickOutcome{Remaining: s.remaining}
	}

	s.remaining--
	if s.remaining > 0 {
		return TickOutcome{Remaining: s.remaining}
	}

	// Countdown exhausted: the sentinel stays recorded and the session
	// advances through the same path an explicit submission uses.
	s.remaining = 0
	s.advance()
	return TickOutcome{
		Remaining: 0,
		TimedOut:  true,
		Completed: s.status == StatusCompleted,
	}
}

// SubmitAnswer records the player's option for the current question and
// returns the correctness feedback synchronously. Exactly one answer is
// ever recorded per question: a second submission returns
// ErrIllegalState and leaves the first answer untouched. The caller is
// responsible for invoking Advance after its feedback display delay.
func (s *Session) SubmitAnswer(optionIndex int) (Feedback, error) {
	if s.status != StatusInProgress {
		return Feedback{}, ErrIllegalState
	}
	if s.answers[s.current] != Unanswered {
		return Feedback{}, fmt.Errorf("question %d already answered: %w", s.current, ErrIllegalState)
	}
	question := s.quiz.Questions[s.current]
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return Feedback{}, fmt.Errorf("option index %d out of range: %w", optionIndex, ErrIllegalState)
	}

	s.answers[s.current] = optionIndex
	return Feedback{
		QuestionIndex:      s.current,
		Correct:            optionIndex == question.CorrectOptionIndex,
		CorrectOptionIndex: question.CorrectOptionIndex,
		Explanation:        question.Explanation,
	}, nil
}

// Advance moves to the next question with a fresh countdown, or
// completes the session after the last one.
func (s *Session) Advance() error {
	if s.status != StatusInProgress {
		return ErrIllegalState
	}
	s.advance()
	return nil
}

func (s *Session) advance() {
	if s.current+1 < len(s.quiz.Questions) {
		s.current++
		s.remaining = s.quiz.TimeLimitSeconds
		return
	}
	s.current = len(s.quiz.Questions)
	s.status = StatusCompleted
	s.finishedAt = s.now()
}

// Abort discards an in-progress attempt. No result is ever produced
// for an aborted session.
func (s *Session) Abort() {
	if s.status != StatusInProgress {
		return
	}
	s.status = StatusAborted
}

// Result builds the immutable result record for a completed session:
// score is the count of answers matching the correct option (the
// sentinel never matches), time taken is wall-clock whole seconds from
// start to completion.
func (s *Session) Result() (model.QuizResult, error) {
	if s.status != StatusCompleted {
		return model.QuizResult{}, ErrIllegalState
	}

	score := 0
	for i, answer := range s.answers {
		if answer == s.quiz.Questions[i].CorrectOptionIndex {
			score++
		}
	}

	return model.QuizResult{
		QuizID:           s.quiz.ID,
		QuizTitle:        s.quiz.Title,
		PlayerName:       s.playerName,
		Score:            score,
		TotalQuestions:   len(s.quiz.Questions),
		TimeTakenSeconds: int(s.finishedAt.Sub(s.startedAt) / time.Second),
		CompletedAt:      s.finishedAt,
	}, nil
}
