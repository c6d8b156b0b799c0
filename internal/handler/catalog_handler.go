package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusmemory/quiz-backend/internal/model"
	"github.com/campusmemory/quiz-backend/internal/response"
	"github.com/campusmemory/quiz-backend/internal/service"
)

// CatalogHandler serves the public quiz catalog. Correct answers never
// leave this surface.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List godoc
// GET /api/v1/quizzes?course=&program=&year=&section=&category=&difficulty=
// Lists quiz summaries matching the filter. Empty or "All" values match
// every quiz on that axis.
func (h *CatalogHandler) List(c *gin.Context) {
	criteria := model.FilterCriteria{
		Course:     c.Query("course"),
		Program:    c.Query("program"),
		Section:    c.Query("section"),
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
	}
	if yearStr := c.Query("year"); yearStr != "" && yearStr != model.WildcardAll {
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 0 {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		criteria.Year = year
	}

	quizzes, err := h.catalogService.ListFiltered(c.Request.Context(), criteria)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if quizzes == nil {
		quizzes = []model.QuizSummary{}
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// Get godoc
// GET /api/v1/quizzes/:quiz_id
// Returns the playable view of one quiz, questions included but
// answers stripped.
func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, err := h.catalogService.GetForPlayer(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}
