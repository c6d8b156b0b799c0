package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusmemory/quiz-backend/internal/model"
)

// fakeClock advances by a fixed step on every call so wall-clock
// elapsed time is deterministic in tests.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testQuiz(numQuestions, timeLimit int) model.Quiz {
	questions := make([]model.Question, numQuestions)
	for i := range questions {
		questions[i] = model.Question{
			ID:                 uuid.New().String(),
			Text:               "question",
			Options:            []string{"a", "b", "c", "d"},
			CorrectOptionIndex: i % 4,
			Explanation:        "because",
		}
	}
	return model.Quiz{
		ID:               uuid.New(),
		Title:            "Data Structures Basics",
		Category:         "Programming",
		Difficulty:       model.DifficultyEasy,
		Questions:        questions,
		TimeLimitSeconds: timeLimit,
	}
}

func TestStartRejectsEmptyQuiz(t *testing.T) {
	quiz := testQuiz(0, 30)
	_, err := NewSession(quiz, "Alice", nil)
	if !IsInvalidQuiz(err) {
		t.Fatalf("expected InvalidQuizError, got %v", err)
	}
}

func TestStartRejectsBadQuizzes(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Quiz)
	}{
		{"zero time limit", func(q *model.Quiz) { q.TimeLimitSeconds = 0 }},
		{"negative time limit", func(q *model.Quiz) { q.TimeLimitSeconds = -5 }},
		{"correct index too large", func(q *model.Quiz) { q.Questions[0].CorrectOptionIndex = 4 }},
		{"correct index negative", func(q *model.Quiz) { q.Questions[0].CorrectOptionIndex = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := testQuiz(3, 30)
			tc.mutate(&quiz)
			if _, err := NewSession(quiz, "Alice", nil); !IsInvalidQuiz(err) {
				t.Fatalf("expected InvalidQuizError, got %v", err)
			}
		})
	}
}

func TestStartRejectsBlankPlayerName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		if _, err := NewSession(testQuiz(1, 30), name, nil); !errors.Is(err, ErrPlayerNameRequired) {
			t.Fatalf("name %q: expected ErrPlayerNameRequired, got %v", name, err)
		}
	}
}

func TestAllCorrectWithinTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	quiz := testQuiz(4, 30)

	session, err := NewSession(quiz, "Alice", clock.Now)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 4; i++ {
		clock.Advance(5 * time.Second) // answers well inside the budget
		fb, err := session.SubmitAnswer(quiz.Questions[i].CorrectOptionIndex)
		if err != nil {
			t.Fatalf("submit q%d: %v", i, err)
		}
		if !fb.Correct {
			t.Fatalf("q%d: expected correct feedback", i)
		}
		if err := session.Advance(); err != nil {
			t.Fatalf("advance q%d: %v", i, err)
		}
	}

	if session.Status() != StatusCompleted {
		t.Fatalf("expected completed, got %s", session.Status())
	}
	result, err := session.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Score != 4 || result.TotalQuestions != 4 {
		t.Fatalf("expected 4/4, got %d/%d", result.Score, result.TotalQuestions)
	}
	if result.TimeTakenSeconds >= 120 {
		t.Fatalf("expected wall-clock elapsed below the 120s budget sum, got %d", result.TimeTakenSeconds)
	}
	if result.TimeTakenSeconds != 20 {
		t.Fatalf("expected 20s elapsed, got %d", result.TimeTakenSeconds)
	}
}

func TestMixedAnswersAndTimeout(t *testing.T) {
	quiz := testQuiz(3, 5)
	session, err := NewSession(quiz, "Bob", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Q1: correct.
	if _, err := session.SubmitAnswer(quiz.Questions[0].CorrectOptionIndex); err != nil {
		t.Fatalf("submit q1: %v", err)
	}
	if err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// Q2: let it time out.
	for i := 0; i < 4; i++ {
		if out := session.Tick(); out.TimedOut {
			t.Fatalf("timed out early at tick %d", i)
		}
	}
	out := session.Tick()
	if !out.TimedOut {
		t.Fatal("expected timeout on the fifth tick")
	}
	if out.Completed {
		t.Fatal("timeout on q2 must not complete a 3-question session")
	}
	if session.CurrentIndex() != 2 {
		t.Fatalf("expected auto-advance to q3, at %d", session.CurrentIndex())
	}

	// Q3: wrong.
	wrong := (quiz.Questions[2].CorrectOptionIndex + 1) % 4
	fb, err := session.SubmitAnswer(wrong)
	if err != nil {
		t.Fatalf("submit q3: %v", err)
	}
	if fb.Correct {
		t.Fatal("expected incorrect feedback")
	}
	if err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	result, err := session.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("expected score 1, got %d", result.Score)
	}
}

func TestSingleAnswerInvariant(t *testing.T) {
	quiz := testQuiz(2, 30)
	session, err := NewSession(quiz, "Carol", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	first := quiz.Questions[0].CorrectOptionIndex
	if _, err := session.SubmitAnswer(first); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := session.SubmitAnswer((first + 1) % 4); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("second submit: expected ErrIllegalState, got %v", err)
	}

	// Finish and confirm the first answer stood.
	_ = session.Advance()
	_, _ = session.SubmitAnswer(quiz.Questions[1].CorrectOptionIndex)
	_ = session.Advance()
	result, err := session.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Score != 2 {
		t.Fatalf("recorded answer changed on double submit: score %d", result.Score)
	}
}

func TestTickFrozenDuringFeedbackPause(t *testing.T) {
	quiz := testQuiz(2, 2)
	session, err := NewSession(quiz, "Dave", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := session.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// The countdown must not run while the answered question waits for
	// its advance, however many ticks arrive.
	before := session.Remaining()
	for i := 0; i < 5; i++ {
		out := session.Tick()
		if out.TimedOut || out.Remaining != before {
			t.Fatalf("tick %d mutated an answered question: %+v", i, out)
		}
	}
	if session.CurrentIndex() != 0 {
		t.Fatalf("session advanced without Advance(): index %d", session.CurrentIndex())
	}
}

func TestMonotonicProgression(t *testing.T) {
	quiz := testQuiz(5, 30)
	session, err := NewSession(quiz, "Eve", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for expected := 0; expected < 5; expected++ {
		if session.CurrentIndex() != expected {
			t.Fatalf("expected index %d, got %d", expected, session.CurrentIndex())
		}
		if _, err := session.SubmitAnswer(0); err != nil {
			t.Fatalf("submit at %d: %v", expected, err)
		}
		if err := session.Advance(); err != nil {
			t.Fatalf("advance at %d: %v", expected, err)
		}
	}

	if session.CurrentIndex() != len(quiz.Questions) {
		t.Fatalf("final index %d, want %d", session.CurrentIndex(), len(quiz.Questions))
	}
	if err := session.Advance(); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("advance after completion: expected ErrIllegalState, got %v", err)
	}
}

func TestTimeoutAdvancesExactlyOnce(t *testing.T) {
	quiz := testQuiz(2, 1)
	session, err := NewSession(quiz, "Frank", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	out := session.Tick()
	if !out.TimedOut {
		t.Fatal("expected timeout on first tick with a 1s budget")
	}
	if session.CurrentIndex() != 1 {
		t.Fatalf("expected exactly one advance, index %d", session.CurrentIndex())
	}
	if session.Remaining() != 1 {
		t.Fatalf("countdown not reset after timeout: %d", session.Remaining())
	}
}

func TestTickAfterCompletionIsNoOp(t *testing.T) {
	quiz := testQuiz(1, 1)
	session, err := NewSession(quiz, "Grace", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	out := session.Tick()
	if !out.TimedOut || !out.Completed {
		t.Fatalf("expected timeout completion, got %+v", out)
	}
	// A stale tick from an uncancelled timer must not fault or mutate.
	out = session.Tick()
	if out.TimedOut || out.Completed {
		t.Fatalf("stale tick mutated a completed session: %+v", out)
	}

	result, err := session.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("timed-out question scored as correct: %d", result.Score)
	}
}

func TestAbortDiscardsSession(t *testing.T) {
	session, err := NewSession(testQuiz(3, 30), "Heidi", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	session.Abort()
	if session.Status() != StatusAborted {
		t.Fatalf("expected aborted, got %s", session.Status())
	}
	if _, err := session.Result(); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("aborted session produced a result: %v", err)
	}
	if _, err := session.SubmitAnswer(0); !errors.Is(err, ErrIllegalState) {
		t.Fatalf("submit after abort: expected ErrIllegalState, got %v", err)
	}
}

func TestSessionSnapshotsQuiz(t *testing.T) {
	quiz := testQuiz(2, 30)
	session, err := NewSession(quiz, "Ivan", nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// A concurrent catalog edit must not reach the running attempt.
	quiz.Questions[0].CorrectOptionIndex = (quiz.Questions[0].CorrectOptionIndex + 1) % 4
	quiz.Questions[0].Options[0] = "mutated"

	snapshot := session.Quiz()
	if snapshot.Questions[0].Options[0] == "mutated" {
		t.Fatal("session shares option storage with the catalog quiz")
	}
}

func TestResultUsesWallClockNotBudgets(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	quiz := testQuiz(2, 60)
	session, err := NewSession(quiz, "Judy", clock.Now)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, _ = session.SubmitAnswer(0)
	_ = session.Advance()
	clock.Advance(7 * time.Second)
	_, _ = session.SubmitAnswer(0)
	_ = session.Advance()

	result, err := session.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.TimeTakenSeconds != 7 {
		t.Fatalf("expected 7s wall clock, got %d", result.TimeTakenSeconds)
	}
}
