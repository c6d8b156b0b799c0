package websocket

import (
	"github.com/campusmemory/quiz-backend/internal/engine"
	"github.com/campusmemory/quiz-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionAbort  Action = "abort"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to lock in an answer for the
// current question.
type AnswerRequest struct {
	Action      Action `json:"action"`
	OptionIndex int    `json:"option_index"`
}

// AbortRequest is sent by the client to leave the quiz early.
type AbortRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventQuestion  Event = "question"
	EventTick      Event = "tick"
	EventFeedback  Event = "feedback"
	EventCompleted Event = "completed"
	EventAborted   Event = "aborted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// SessionEventResponse carries one session event to the player. Fields
// not relevant to the event type are omitted.
type SessionEventResponse struct {
	Event          Event                    `json:"event"`
	QuestionIndex  int                      `json:"question_index"`
	TotalQuestions int                      `json:"total_questions"`
	Remaining      int                      `json:"remaining_seconds"`
	Question       *model.QuestionForPlayer `json:"question,omitempty"`
	Feedback       *engine.Feedback         `json:"feedback,omitempty"`
	Result         *model.QuizResult        `json:"result,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
