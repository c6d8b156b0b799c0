package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusmemory/quiz-backend/internal/model"
	"github.com/campusmemory/quiz-backend/internal/response"
	"github.com/campusmemory/quiz-backend/internal/service"
)

// LeaderboardHandler serves the ranked board and the raw result feed.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	sessionService     *service.SessionService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, sessionService *service.SessionService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		sessionService:     sessionService,
	}
}

// GetTop godoc
// GET /api/v1/leaderboard?limit=10
// Returns the best results ordered by accuracy, fastest first on ties.
func (h *LeaderboardHandler) GetTop(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		limit = n
	}

	board, err := h.leaderboardService.Top(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if board == nil {
		board = []model.QuizResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": board})
}

// GetResults godoc
// GET /api/v1/results?player=&limit=20
// Returns the most recent completed results, newest first, optionally
// scoped to a single player name.
func (h *LeaderboardHandler) GetResults(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		limit = n
	}

	results, err := h.sessionService.ListRecentResults(c.Request.Context(), c.Query("player"), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []model.QuizResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}
