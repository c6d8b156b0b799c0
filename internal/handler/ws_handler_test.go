package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/campusmemory/quiz-backend/internal/model"
	"github.com/campusmemory/quiz-backend/internal/service"
	ws "github.com/campusmemory/quiz-backend/internal/websocket"
)

type stubQuizRepo struct {
	quiz model.Quiz
}

func (r *stubQuizRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	if id != r.quiz.ID {
		return nil, service.ErrQuizNotFound
	}
	clone := r.quiz.Clone()
	return &clone, nil
}

func (r *stubQuizRepo) List(context.Context) ([]model.Quiz, error) { return nil, nil }
func (r *stubQuizRepo) Create(context.Context, *model.Quiz) error  { return nil }
func (r *stubQuizRepo) Update(context.Context, *model.Quiz) error  { return nil }
func (r *stubQuizRepo) Delete(context.Context, uuid.UUID) error    { return nil }

type stubResultRepo struct {
	mu      sync.Mutex
	created []model.QuizResult
}

func (r *stubResultRepo) Create(_ context.Context, res *model.QuizResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res.ID = int64(len(r.created) + 1)
	r.created = append(r.created, *res)
	return nil
}

func (r *stubResultRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

func (r *stubResultRepo) CreateBatch(ctx context.Context, results []model.QuizResult) error {
	for i := range results {
		if err := r.Create(ctx, &results[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubResultRepo) ListAll(context.Context) ([]model.QuizResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.QuizResult(nil), r.created...), nil
}

func (r *stubResultRepo) ListRecent(context.Context, string, int) ([]model.QuizResult, error) {
	return r.ListAll(context.Background())
}

func playTestQuiz() model.Quiz {
	return model.Quiz{
		ID:         uuid.New(),
		Title:      "Warmup",
		Category:   "General",
		Difficulty: model.DifficultyEasy,
		Questions: []model.Question{
			{
				ID:                 uuid.New().String(),
				Text:               "How many bits in a byte?",
				Options:            []string{"4", "8", "16", "32"},
				CorrectOptionIndex: 1,
			},
			{
				ID:                 uuid.New().String(),
				Text:               "Binary of 2?",
				Options:            []string{"01", "10", "11", "00"},
				CorrectOptionIndex: 1,
			},
		},
		TimeLimitSeconds: 30,
	}
}

func newPlayServer(t *testing.T, quiz model.Quiz, results *stubResultRepo) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := service.NewSessionServiceWithClock(
		&stubQuizRepo{quiz: quiz}, results, nil, zerolog.Nop(),
		time.Now, time.Hour,
	)
	h := NewWSHandler(sessions, 10*time.Millisecond, zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws/v1/play", h.Play)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialPlay(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/play?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) ws.SessionEventResponse {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev ws.SessionEventResponse
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func TestPlayRejectsMissingPlayerName(t *testing.T) {
	srv := newPlayServer(t, playTestQuiz(), &stubResultRepo{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/play?quiz_id=" + uuid.New().String()
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure without player_name")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 handshake response, got %+v", resp)
	}
}

func TestPlayUnknownQuizSendsError(t *testing.T) {
	srv := newPlayServer(t, playTestQuiz(), &stubResultRepo{})
	conn := dialPlay(t, srv, "quiz_id="+uuid.New().String()+"&player_name=Zoe")

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var errResp ws.ErrorResponse
	if err := conn.ReadJSON(&errResp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if errResp.Event != ws.EventError || errResp.Error != "quiz not found" {
		t.Fatalf("unexpected error payload: %+v", errResp)
	}
}

func TestPlayFullRound(t *testing.T) {
	quiz := playTestQuiz()
	results := &stubResultRepo{}
	srv := newPlayServer(t, quiz, results)
	conn := dialPlay(t, srv, "quiz_id="+quiz.ID.String()+"&player_name=Zoe")

	ev := readEvent(t, conn)
	if ev.Event != ws.EventQuestion || ev.QuestionIndex != 0 {
		t.Fatalf("expected question 0, got %+v", ev)
	}
	if ev.Question == nil || len(ev.Question.Options) != model.OptionsPerQuestion {
		t.Fatalf("malformed question payload: %+v", ev.Question)
	}

	if err := conn.WriteJSON(ws.AnswerRequest{Action: ws.ActionAnswer, OptionIndex: 1}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	ev = readEvent(t, conn)
	if ev.Event != ws.EventFeedback || ev.Feedback == nil || !ev.Feedback.Correct {
		t.Fatalf("expected correct feedback, got %+v", ev)
	}

	// The next question arrives by itself once the feedback pause ends.
	ev = readEvent(t, conn)
	if ev.Event != ws.EventQuestion || ev.QuestionIndex != 1 {
		t.Fatalf("expected question 1, got %+v", ev)
	}

	if err := conn.WriteJSON(ws.AnswerRequest{Action: ws.ActionAnswer, OptionIndex: 0}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	ev = readEvent(t, conn)
	if ev.Event != ws.EventFeedback || ev.Feedback.Correct {
		t.Fatalf("expected incorrect feedback, got %+v", ev)
	}

	ev = readEvent(t, conn)
	if ev.Event != ws.EventCompleted || ev.Result == nil {
		t.Fatalf("expected completion, got %+v", ev)
	}
	if ev.Result.Score != 1 || ev.Result.TotalQuestions != 2 {
		t.Errorf("result = %d/%d, want 1/2", ev.Result.Score, ev.Result.TotalQuestions)
	}
	if results.count() != 1 {
		t.Errorf("persisted %d results, want 1", results.count())
	}
}

func TestPlayAbortAction(t *testing.T) {
	quiz := playTestQuiz()
	results := &stubResultRepo{}
	srv := newPlayServer(t, quiz, results)
	conn := dialPlay(t, srv, "quiz_id="+quiz.ID.String()+"&player_name=Max")

	readEvent(t, conn) // question 0

	if err := conn.WriteJSON(ws.AbortRequest{Action: ws.ActionAbort}); err != nil {
		t.Fatalf("write abort: %v", err)
	}
	ev := readEvent(t, conn)
	if ev.Event != ws.EventAborted {
		t.Fatalf("expected aborted event, got %+v", ev)
	}
	if results.count() != 0 {
		t.Errorf("aborted run persisted %d results", results.count())
	}
}

func TestPlayPing(t *testing.T) {
	quiz := playTestQuiz()
	srv := newPlayServer(t, quiz, &stubResultRepo{})
	conn := dialPlay(t, srv, "quiz_id="+quiz.ID.String()+"&player_name=Pia")

	readEvent(t, conn) // question 0

	if err := conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var pong ws.PongResponse
	if err := conn.ReadJSON(&pong); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if pong.Event != ws.EventPong {
		t.Fatalf("expected pong, got %+v", pong)
	}
}
