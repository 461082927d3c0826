package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/questify/questify-backend/internal/response"
	"github.com/questify/questify-backend/internal/service"
)

// AdminHandler serves the platform-wide admin views and moderation actions.
// Every route behind it already passed the admin JWT check.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Analytics godoc
// GET /api/v1/admin/analytics
// Platform counters, popular topics, and difficulty distribution.
func (h *AdminHandler) Analytics(c *gin.Context) {
	analytics, err := h.adminService.Analytics(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"analytics": analytics})
}

// ListUsers godoc
// GET /api/v1/admin/users
// Lists all accounts, paginated.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, perPage := parsePagination(c)
	users, total, err := h.adminService.ListUsers(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, buildPagination(page, perPage, total))
}

// ListQuizzes godoc
// GET /api/v1/admin/quizzes
// Lists every active quiz regardless of visibility.
func (h *AdminHandler) ListQuizzes(c *gin.Context) {
	page, perPage := parsePagination(c)
	quizzes, total, err := h.adminService.ListQuizzes(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"quizzes": quizzes}, buildPagination(page, perPage, total))
}

// ListAttempts godoc
// GET /api/v1/admin/attempts
// Platform-wide feed of recently completed attempts.
func (h *AdminHandler) ListAttempts(c *gin.Context) {
	page, perPage := parsePagination(c)
	attempts, total, err := h.adminService.ListRecentAttempts(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, buildPagination(page, perPage, total))
}

// DeactivateUser godoc
// DELETE /api/v1/admin/users/:user_id
// Disables an account and deactivates every quiz it owns.
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.adminService.DeactivateUser(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
