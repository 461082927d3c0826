package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/questify/questify-backend/internal/middleware"
	"github.com/questify/questify-backend/internal/model"
	"github.com/questify/questify-backend/internal/response"
	"github.com/questify/questify-backend/internal/service"
	"github.com/questify/questify-backend/internal/validator"
)

// QuizHandler handles quiz authoring, discovery, and the creator-only views.
type QuizHandler struct {
	quizService    *service.QuizService
	attemptService *service.AttemptService
	leaderboards   *service.LeaderboardService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(
	quizService *service.QuizService,
	attemptService *service.AttemptService,
	leaderboards *service.LeaderboardService,
) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		attemptService: attemptService,
		leaderboards:   leaderboards,
	}
}

// quizError maps quiz domain errors onto API responses.
func quizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuizCreator):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizCreator)
	case errors.Is(err, service.ErrPrivateQuizDenied):
		response.Fail(c, http.StatusForbidden, response.ErrPrivateQuizDenied)
	case errors.Is(err, service.ErrInvalidAccessCode):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidAccessCode)
	case errors.Is(err, service.ErrQuizIsPublic):
		response.Fail(c, http.StatusBadRequest, response.ErrQuizIsPublic)
	case errors.Is(err, service.ErrCodeSpaceBusy):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func quizIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// List godoc
// GET /api/v1/quizzes
// Lists active public quizzes with optional topic, difficulty, and search
// filters.
func (h *QuizHandler) List(c *gin.Context) {
	page, perPage := parsePagination(c)
	filter := model.QuizListFilter{
		Topic:      c.Query("topic"),
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
	}

	quizzes, total, err := h.quizService.List(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes}, buildPagination(page, perPage, total))
}

// Create godoc
// POST /api/v1/quizzes
// Creates a quiz with its questions. Private quizzes get an access code back.
func (h *QuizHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		var vErr *service.QuestionValidationError
		if errors.As(err, &vErr) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, vErr.Error())
			return
		}
		quizError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// ListMine godoc
// GET /api/v1/quizzes/mine
// Lists the caller's own quizzes, access codes included.
func (h *QuizHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, perPage := parsePagination(c)
	quizzes, total, err := h.quizService.ListMine(c.Request.Context(), claims.UserID, perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes}, buildPagination(page, perPage, total))
}

// Join godoc
// POST /api/v1/quizzes/join
// Joins a private quiz by access code. Re-joining is idempotent.
func (h *QuizHandler) Join(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.JoinByCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.JoinByCode(c.Request.Context(), claims.UserID, req.Code)
	if err != nil {
		quizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Get godoc
// GET /api/v1/quizzes/:quiz_id
// Retrieves a single quiz. The answer key only appears for the creator.
func (h *QuizHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.Get(c.Request.Context(), quizID, claims.UserID, claims.IsAdmin)
	if err != nil {
		quizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Update godoc
// PUT /api/v1/quizzes/:quiz_id
// Edits quiz metadata. Creator only.
func (h *QuizHandler) Update(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), quizID, claims.UserID, &req)
	if err != nil {
		quizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Delete godoc
// DELETE /api/v1/quizzes/:quiz_id
// Soft-deletes a quiz. Creator or admin.
func (h *QuizHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), quizID, claims.UserID, claims.IsAdmin); err != nil {
		quizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Rate godoc
// POST /api/v1/quizzes/:quiz_id/ratings
// Records or replaces the caller's 1-5 rating and returns the new average.
func (h *QuizHandler) Rate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	var req model.RateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	average, err := h.quizService.Rate(c.Request.Context(), quizID, claims.UserID, &req)
	if err != nil {
		quizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"average_rating": average})
}

// Analytics godoc
// GET /api/v1/quizzes/:quiz_id/analytics
// Creator-only aggregate view of the quiz's completed attempts.
func (h *QuizHandler) Analytics(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	if _, err := h.quizService.GetOwned(c.Request.Context(), quizID, claims.UserID, claims.IsAdmin); err != nil {
		quizError(c, err)
		return
	}

	analytics, err := h.attemptService.Analytics(c.Request.Context(), quizID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"analytics": analytics})
}

// Results godoc
// GET /api/v1/quizzes/:quiz_id/results
// Creator-only full ranking of every completed attempt plus a summary.
func (h *QuizHandler) Results(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetOwned(c.Request.Context(), quizID, claims.UserID, claims.IsAdmin)
	if err != nil {
		quizError(c, err)
		return
	}

	results, summary, err := h.leaderboards.QuizResults(c.Request.Context(), quizID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	quiz.Questions = nil
	response.Success(c, http.StatusOK, model.QuizResults{
		Quiz:    *quiz,
		Summary: summary,
		Results: results,
	})
}

// RegenerateAccessCode godoc
// POST /api/v1/quizzes/:quiz_id/access-code
// Replaces the access code of a private quiz. Creator only.
func (h *QuizHandler) RegenerateAccessCode(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	code, err := h.quizService.RegenerateAccessCode(c.Request.Context(), quizID, claims.UserID)
	if err != nil {
		quizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"access_code": code})
}
