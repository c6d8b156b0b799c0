package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/campusmemory/quiz-backend/internal/engine"
	"github.com/campusmemory/quiz-backend/internal/response"
	"github.com/campusmemory/quiz-backend/internal/service"
	ws "github.com/campusmemory/quiz-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// playConn serializes writes; the event forwarder and the read loop
// both write to the socket and gorilla allows one writer at a time.
type playConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *playConn) writeEvent(ev ws.SessionEventResponse) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ws.WriteEvent(p.conn, ev)
}

func (p *playConn) writeTyped(v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ws.WriteTyped(p.conn, v)
}

func (p *playConn) writeError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = ws.WriteError(p.conn, msg)
}

func (p *playConn) writeClose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	deadline := time.Now().Add(time.Second)
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

// WSHandler runs the interactive play surface: one WebSocket per quiz
// attempt, questions and ticks streaming out, answers coming in.
type WSHandler struct {
	sessionService *service.SessionService
	feedbackDelay  time.Duration
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. feedbackDelay is how long the
// correctness feedback stays on screen before the next question.
func NewWSHandler(sessionService *service.SessionService, feedbackDelay time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		feedbackDelay:  feedbackDelay,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// Play godoc
// WS /ws/v1/play?quiz_id=<uuid>&player_name=<name>
// Upgrades to WebSocket and runs one quiz attempt end to end. The
// session lives exactly as long as the connection: a dropped socket
// aborts the attempt.
func (h *WSHandler) Play(c *gin.Context) {
	quizID, err := uuid.Parse(c.Query("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	playerName := strings.TrimSpace(c.Query("player_name"))
	if playerName == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrPlayerNameRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	pc := &playConn{conn: conn}

	started, events, err := h.sessionService.Start(c.Request.Context(), quizID, playerName)
	if err != nil {
		pc.writeError(startErrorMessage(err))
		return
	}

	wsLog := h.log.With().
		Str("session_id", started.SessionID).
		Str("quiz_id", started.QuizID).
		Str("player", started.PlayerName).
		Logger()
	wsLog.Info().Msg("Player connected")

	// Forward session events onto the socket until the session ends.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range events {
			if err := pc.writeEvent(sessionEventResponse(ev)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, dropping connection")
				return
			}
			if ev.Type == service.EventCompleted || ev.Type == service.EventAborted {
				pc.writeClose()
			}
		}
	}()

	h.readLoop(pc, wsLog, started.SessionID)

	// A read failure with the session still live means the player
	// disconnected mid-quiz; the attempt is discarded.
	if err := h.sessionService.Abort(started.SessionID); err == nil {
		wsLog.Info().Msg("Player disconnected, session aborted")
	}

	select {
	case <-writerDone:
	case <-time.After(2 * time.Second):
	}
}

func (h *WSHandler) readLoop(pc *playConn, wsLog zerolog.Logger, sessionID string) {
	for {
		var raw json.RawMessage
		if err := ws.ReadJSON(pc.conn, &raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			pc.writeError("malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			var req ws.AnswerRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				pc.writeError("malformed answer")
				continue
			}
			h.handleAnswer(wsLog, sessionID, req.OptionIndex)

		case ws.ActionAbort:
			if err := h.sessionService.Abort(sessionID); err == nil {
				wsLog.Info().Msg("Player left the quiz")
			}
			return

		case ws.ActionPing:
			_ = pc.writeTyped(ws.PongResponse{Event: ws.EventPong})

		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			pc.writeError("unknown action: " + string(envelope.Action))
		}
	}
}

// handleAnswer locks in the answer and schedules the advance once the
// feedback pause elapses. The countdown is frozen for the duration, so
// the pause never costs the player any of the next question's time.
func (h *WSHandler) handleAnswer(wsLog zerolog.Logger, sessionID string, optionIndex int) {
	if _, err := h.sessionService.SubmitAnswer(sessionID, optionIndex); err != nil {
		wsLog.Debug().Err(err).Msg("Answer rejected")
		return
	}

	time.AfterFunc(h.feedbackDelay, func() {
		// The session may have been aborted during the pause.
		_ = h.sessionService.Advance(sessionID)
	})
}

func sessionEventResponse(ev service.SessionEvent) ws.SessionEventResponse {
	return ws.SessionEventResponse{
		Event:          ws.Event(ev.Type),
		QuestionIndex:  ev.QuestionIndex,
		TotalQuestions: ev.TotalQuestions,
		Remaining:      ev.Remaining,
		Question:       ev.Question,
		Feedback:       ev.Feedback,
		Result:         ev.Result,
	}
}

func startErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		return "quiz not found"
	case errors.Is(err, service.ErrPlayerSessionActive):
		return "you already have a quiz in progress"
	case engine.IsInvalidQuiz(err):
		return "this quiz cannot be played"
	case errors.Is(err, engine.ErrPlayerNameRequired):
		return "player name is required"
	default:
		return "failed to start quiz"
	}
}
