package model

import (
	"time"

	"github.com/google/uuid"
)

// Quiz represents a quiz authored by a user. Questions are created together
// with the quiz and have no independent lifecycle. Quizzes are soft-deleted:
// IsActive flips to false, rows are never removed.
type Quiz struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Topic       string     `json:"topic"`
	Difficulty  Difficulty `json:"difficulty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatorName string     `json:"creator_name,omitempty"`
	IsPublic    bool       `json:"is_public"`
	// AccessCode is only populated on owner-facing views of private quizzes.
	AccessCode       string     `json:"access_code,omitempty"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	Tags             []string   `json:"tags,omitempty"`
	AverageRating    float64    `json:"average_rating"`
	TotalAttempts    int        `json:"total_attempts"`
	AverageScore     float64    `json:"average_score"`
	IsActive         bool       `json:"is_active"`
	Questions        []Question `json:"questions,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TotalPoints sums the configured point values of all questions.
func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// CreateQuizRequest is the payload for authoring a new quiz.
type CreateQuizRequest struct {
	Title            string                  `json:"title" binding:"required,min=3,max=100"`
	Description      string                  `json:"description" binding:"omitempty,max=500"`
	Topic            string                  `json:"topic" binding:"required,min=1,max=100"`
	Difficulty       string                  `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	IsPublic         *bool                   `json:"is_public" binding:"omitempty"`
	TimeLimitMinutes int                     `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	Tags             []string                `json:"tags" binding:"omitempty,max=20,dive,min=1,max=50"`
	Questions        []CreateQuestionRequest `json:"questions" binding:"required,min=1,max=100,dive"`
}

// UpdateQuizRequest is the payload for editing quiz metadata.
// Question edits are not supported after creation; authors recreate instead.
type UpdateQuizRequest struct {
	Title            string   `json:"title" binding:"omitempty,min=3,max=100"`
	Description      *string  `json:"description" binding:"omitempty,max=500"`
	Topic            string   `json:"topic" binding:"omitempty,min=1,max=100"`
	Difficulty       string   `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	TimeLimitMinutes int      `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	Tags             *[]string `json:"tags" binding:"omitempty,max=20,dive,min=1,max=50"`
}

// RateQuizRequest is the payload for rating a quiz 1-5.
type RateQuizRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=300"`
}

// JoinByCodeRequest is the payload for joining a private quiz by access code.
type JoinByCodeRequest struct {
	Code string `json:"code" binding:"required,len=8"`
}

// QuizListFilter narrows the public quiz listing.
type QuizListFilter struct {
	Topic      string
	Difficulty string
	Search     string
}

// QuizAnalytics is the creator-facing aggregate view of a quiz's attempts.
type QuizAnalytics struct {
	TotalAttempts  int             `json:"total_attempts"`
	AverageScore   float64         `json:"average_score"`
	HighestScore   float64         `json:"highest_score"`
	LowestScore    float64         `json:"lowest_score"`
	RecentAttempts []RecentAttempt `json:"recent_attempts"`
}

// RecentAttempt is one row of the analytics recent-activity list.
type RecentAttempt struct {
	Username    string     `json:"username"`
	Score       int        `json:"score"`
	Percentage  float64    `json:"percentage"`
	CompletedAt *time.Time `json:"completed_at"`
}
