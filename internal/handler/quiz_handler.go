package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campusmemory/quiz-backend/internal/model"
	"github.com/campusmemory/quiz-backend/internal/response"
	"github.com/campusmemory/quiz-backend/internal/service"
	"github.com/campusmemory/quiz-backend/internal/validator"
)

// QuizHandler exposes the admin-facing catalog management endpoints.
// Unlike the public catalog surface, quizzes here carry their correct
// answers and explanations.
type QuizHandler struct {
	catalogService *service.CatalogService
}

func NewQuizHandler(catalogService *service.CatalogService) *QuizHandler {
	return &QuizHandler{catalogService: catalogService}
}

// GetAll godoc
// GET /api/v1/admin/quizzes
func (h *QuizHandler) GetAll(c *gin.Context) {
	quizzes, err := h.catalogService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if quizzes == nil {
		quizzes = []model.Quiz{}
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// Get godoc
// GET /api/v1/admin/quizzes/:quiz_id
func (h *QuizHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, err := h.catalogService.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Create godoc
// POST /api/v1/admin/quizzes
func (h *QuizHandler) Create(c *gin.Context) {
	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.catalogService.Create(c.Request.Context(), &req)
	if err != nil {
		if fields, ok := questionErrorFields(err); ok {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// Update godoc
// PUT /api/v1/admin/quizzes/:quiz_id
func (h *QuizHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.catalogService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		if fields, ok := questionErrorFields(err); ok {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Delete godoc
// DELETE /api/v1/admin/quizzes/:quiz_id
func (h *QuizHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.catalogService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "quiz deleted successfully"})
}

// questionErrorFields maps a question validation failure onto the
// field-error shape the client already handles for binding errors.
func questionErrorFields(err error) (map[string]string, bool) {
	var iqe *service.InvalidQuestionError
	if !errors.As(err, &iqe) {
		return nil, false
	}
	return map[string]string{"questions": iqe.Error()}, true
}
