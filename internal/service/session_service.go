package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusmemory/quiz-backend/internal/config"
	"github.com/campusmemory/quiz-backend/internal/engine"
	"github.com/campusmemory/quiz-backend/internal/model"
)

// ResultRepository abstracts the append-only result store.
type ResultRepository interface {
	Create(ctx context.Context, res *model.QuizResult) error
	CreateBatch(ctx context.Context, results []model.QuizResult) error
	ListAll(ctx context.Context) ([]model.QuizResult, error)
	ListRecent(ctx context.Context, playerName string, limit int) ([]model.QuizResult, error)
}

// Session service errors.
var (
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrPlayerSessionActive rejects a second concurrent attempt by the
	// same player; each session is owned by exactly one attempt.
	ErrPlayerSessionActive = errors.New("player already has a session in progress")
)

// SessionEventType enumerates events emitted by a live session.
type SessionEventType string

const (
	EventQuestion  SessionEventType = "question"
	EventTick      SessionEventType = "tick"
	EventFeedback  SessionEventType = "feedback"
	EventCompleted SessionEventType = "completed"
	EventAborted   SessionEventType = "aborted"
)

// SessionEvent is pushed to the play surface as the session progresses.
type SessionEvent struct {
	Type           SessionEventType         `json:"type"`
	QuestionIndex  int                      `json:"question_index"`
	TotalQuestions int                      `json:"total_questions"`
	Remaining      int                      `json:"remaining_seconds"`
	TimedOut       bool                     `json:"timed_out,omitempty"`
	Question       *model.QuestionForPlayer `json:"question,omitempty"`
	Feedback       *engine.Feedback         `json:"feedback,omitempty"`
	Result         *model.QuizResult        `json:"result,omitempty"`
}

// liveSession pairs the engine state machine with its event stream and
// timer. The mutex serializes the two stimuli — ticks and player
// actions — onto the engine, which is not concurrency-safe itself.
type liveSession struct {
	id         string
	playerName string

	mu      sync.Mutex
	session *engine.Session
	events  chan SessionEvent
	stop    chan struct{}
	done    bool
}

// SessionService owns every live quiz attempt: it starts sessions,
// runs one ticker goroutine per session (cancelled the moment the
// session leaves InProgress), streams events, and persists results on
// completion via the Redis queue the result worker drains.
type SessionService struct {
	quizzes QuizRepository
	results ResultRepository
	rdb     *redis.Client
	log     zerolog.Logger

	clock        func() time.Time
	tickInterval time.Duration

	mu       sync.Mutex
	live     map[string]*liveSession
	byPlayer map[string]string
}

// NewSessionService creates a SessionService ticking on wall-clock seconds.
func NewSessionService(quizzes QuizRepository, results ResultRepository, rdb *redis.Client, log zerolog.Logger) *SessionService {
	return NewSessionServiceWithClock(quizzes, results, rdb, log, time.Now, time.Second)
}

// NewSessionServiceWithClock allows deterministic clocks and fast tick
// intervals in tests.
func NewSessionServiceWithClock(quizzes QuizRepository, results ResultRepository, rdb *redis.Client, log zerolog.Logger, clock func() time.Time, tickInterval time.Duration) *SessionService {
	return &SessionService{
		quizzes:      quizzes,
		results:      results,
		rdb:          rdb,
		log:          log.With().Str("component", "session_service").Logger(),
		clock:        clock,
		tickInterval: tickInterval,
		live:         make(map[string]*liveSession),
		byPlayer:     make(map[string]string),
	}
}

// StartedSession describes a freshly started attempt.
type StartedSession struct {
	SessionID        string `json:"session_id"`
	QuizID           string `json:"quiz_id"`
	QuizTitle        string `json:"quiz_title"`
	PlayerName       string `json:"player_name"`
	TotalQuestions   int    `json:"total_questions"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
}

// Start begins a new attempt at the given quiz. The quiz is snapshotted
// into the session, so later catalog edits cannot reach it. Events
// arrive on the returned channel, starting with the first question;
// the channel closes when the session completes or aborts.
func (s *SessionService) Start(ctx context.Context, quizID uuid.UUID, playerName string) (*StartedSession, <-chan SessionEvent, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, nil, ErrQuizNotFound
	}

	session, err := engine.NewSession(*quiz, playerName, s.clock)
	if err != nil {
		return nil, nil, err
	}

	ls := &liveSession{
		id:         uuid.New().String(),
		playerName: session.PlayerName(),
		session:    session,
		events:     make(chan SessionEvent, 16),
		stop:       make(chan struct{}),
	}

	s.mu.Lock()
	if _, active := s.byPlayer[ls.playerName]; active {
		s.mu.Unlock()
		return nil, nil, ErrPlayerSessionActive
	}
	s.live[ls.id] = ls
	s.byPlayer[ls.playerName] = ls.id
	s.mu.Unlock()

	// Liveness marker only; session state itself stays in memory.
	if s.rdb != nil {
		_ = s.rdb.Set(ctx, config.CacheKey.PlayerActiveSessionKey(ls.playerName), ls.id, 0).Err()
	}

	ls.mu.Lock()
	s.emitQuestionLocked(ls)
	ls.mu.Unlock()

	go s.runTicker(ls)

	s.log.Info().
		Str("session_id", ls.id).
		Str("quiz_id", quizID.String()).
		Str("player", ls.playerName).
		Msg("Session started")

	return &StartedSession{
		SessionID:        ls.id,
		QuizID:           quizID.String(),
		QuizTitle:        quiz.Title,
		PlayerName:       ls.playerName,
		TotalQuestions:   len(quiz.Questions),
		TimeLimitSeconds: quiz.TimeLimitSeconds,
	}, ls.events, nil
}

// SubmitAnswer records the player's answer and returns the correctness
// feedback synchronously. The caller owns the feedback display delay
// and must call Advance afterwards; the countdown freezes meanwhile.
func (s *SessionService) SubmitAnswer(sessionID string, optionIndex int) (engine.Feedback, error) {
	ls, err := s.get(sessionID)
	if err != nil {
		return engine.Feedback{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	feedback, err := ls.session.SubmitAnswer(optionIndex)
	if err != nil {
		return engine.Feedback{}, err
	}

	fb := feedback
	s.emitLocked(ls, SessionEvent{
		Type:           EventFeedback,
		QuestionIndex:  feedback.QuestionIndex,
		TotalQuestions: len(ls.session.Quiz().Questions),
		Remaining:      ls.session.Remaining(),
		Feedback:       &fb,
	})
	return feedback, nil
}

// Advance moves the session to the next question, or completes it
// after the last one.
func (s *SessionService) Advance(sessionID string) error {
	ls, err := s.get(sessionID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.done {
		return ErrSessionNotFound
	}
	if err := ls.session.Advance(); err != nil {
		return err
	}
	if ls.session.Status() == engine.StatusCompleted {
		s.finishLocked(ls)
		return nil
	}
	s.emitQuestionLocked(ls)
	return nil
}

// Abort discards an in-progress attempt without recording a result.
func (s *SessionService) Abort(sessionID string) error {
	ls, err := s.get(sessionID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.done {
		return ErrSessionNotFound
	}
	ls.session.Abort()
	s.emitLocked(ls, SessionEvent{
		Type:           EventAborted,
		QuestionIndex:  ls.session.CurrentIndex(),
		TotalQuestions: len(ls.session.Quiz().Questions),
	})
	s.closeLocked(ls)

	s.log.Info().Str("session_id", ls.id).Str("player", ls.playerName).Msg("Session aborted")
	return nil
}

// ListRecentResults returns the newest persisted results, optionally
// scoped to one player.
func (s *SessionService) ListRecentResults(ctx context.Context, playerName string, limit int) ([]model.QuizResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.results.ListRecent(ctx, playerName, limit)
}

func (s *SessionService) get(sessionID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.live[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// runTicker drives the engine's countdown once per interval. It exits
// when the session leaves InProgress, so a completed or aborted session
// never receives a live tick; the engine additionally ignores stale
// ticks as a defensive backstop.
func (s *SessionService) runTicker(ls *liveSession) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ls.stop:
			return
		case <-ticker.C:
			if s.tick(ls) {
				return
			}
		}
	}
}

// tick applies one countdown second. Returns true once the session is over.
func (s *SessionService) tick(ls *liveSession) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.done {
		return true
	}

	out := ls.session.Tick()
	if out.Completed {
		s.finishLocked(ls)
		return true
	}
	if out.TimedOut {
		// Auto-submitted as unanswered; next question is already up.
		s.emitQuestionLocked(ls)
		return false
	}
	s.emitLocked(ls, SessionEvent{
		Type:           EventTick,
		QuestionIndex:  ls.session.CurrentIndex(),
		TotalQuestions: len(ls.session.Quiz().Questions),
		Remaining:      out.Remaining,
	})
	return false
}

// finishLocked builds the result exactly once, hands it to persistence,
// and tears the live session down.
func (s *SessionService) finishLocked(ls *liveSession) {
	result, err := ls.session.Result()
	if err != nil {
		// Session never reached Completed; abandon silently per policy.
		s.closeLocked(ls)
		return
	}

	s.persistResult(&result)

	res := result
	s.emitLocked(ls, SessionEvent{
		Type:           EventCompleted,
		QuestionIndex:  ls.session.CurrentIndex(),
		TotalQuestions: result.TotalQuestions,
		Result:         &res,
	})
	s.closeLocked(ls)

	s.log.Info().
		Str("session_id", ls.id).
		Str("player", ls.playerName).
		Int("score", result.Score).
		Int("total", result.TotalQuestions).
		Int("time_taken_s", result.TimeTakenSeconds).
		Msg("Session completed")
}

// persistResult queues the result for the batch worker; if the queue
// is unreachable it falls back to a direct insert so a completed
// attempt is never lost.
func (s *SessionService) persistResult(result *model.QuizResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.rdb != nil {
		payload, err := json.Marshal(result)
		if err == nil {
			if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, payload).Err(); err == nil {
				return
			}
			s.log.Warn().Str("player", result.PlayerName).Msg("Result queue unreachable, writing directly")
		}
	}

	if err := s.results.Create(ctx, result); err != nil {
		s.log.Error().Err(err).Str("player", result.PlayerName).Msg("Failed to persist result")
	}
}

// closeLocked stops the ticker, closes the event stream and drops the
// session from the registries. Idempotent.
func (s *SessionService) closeLocked(ls *liveSession) {
	if ls.done {
		return
	}
	ls.done = true
	close(ls.stop)
	close(ls.events)

	s.mu.Lock()
	delete(s.live, ls.id)
	delete(s.byPlayer, ls.playerName)
	s.mu.Unlock()

	if s.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.rdb.Del(ctx, config.CacheKey.PlayerActiveSessionKey(ls.playerName)).Err()
	}
}

func (s *SessionService) emitQuestionLocked(ls *liveSession) {
	question, err := ls.session.CurrentQuestion()
	if err != nil {
		return
	}
	s.emitLocked(ls, SessionEvent{
		Type:           EventQuestion,
		QuestionIndex:  ls.session.CurrentIndex(),
		TotalQuestions: len(ls.session.Quiz().Questions),
		Remaining:      ls.session.Remaining(),
		Question:       &question,
	})
}

// emitLocked delivers an event without ever blocking the engine: when
// the subscriber lags, the oldest buffered event is dropped in its
// favor (ticks are cheap to lose; terminal events always fit after a
// drain).
func (s *SessionService) emitLocked(ls *liveSession, ev SessionEvent) {
	if ls.done {
		return
	}
	select {
	case ls.events <- ev:
	default:
		select {
		case <-ls.events:
		default:
		}
		select {
		case ls.events <- ev:
		default:
		}
	}
}
