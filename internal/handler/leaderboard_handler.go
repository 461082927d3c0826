package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/questify/questify-backend/internal/response"
	"github.com/questify/questify-backend/internal/service"
)

// LeaderboardHandler serves the per-quiz and global leaderboards.
type LeaderboardHandler struct {
	leaderboards *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboards *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboards: leaderboards}
}

// Quiz godoc
// GET /api/v1/leaderboards/quizzes/:quiz_id
// Top completed attempts of a quiz, score descending, fastest first on ties.
func (h *LeaderboardHandler) Quiz(c *gin.Context) {
	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.QuizLeaderboardLimit)))

	entries, err := h.leaderboards.QuizLeaderboard(c.Request.Context(), quizID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}

// Global godoc
// GET /api/v1/leaderboards/global
// Top users by composite activity score.
func (h *LeaderboardHandler) Global(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.GlobalLeaderboardLimit)))

	entries, err := h.leaderboards.GlobalLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}
