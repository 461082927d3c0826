package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty enumerates quiz difficulty levels. It doubles as a user
// preference value.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// UserStats holds the cumulative activity counters owned by a user.
// AverageScore is the mean percentage across all of the user's completed
// attempts, recomputed from the full history on every submission.
type UserStats struct {
	QuizzesCreated   int     `json:"quizzes_created"`
	QuizzesAttempted int     `json:"quizzes_attempted"`
	AverageScore     float64 `json:"average_score"`
	TotalPoints      int     `json:"total_points"`
	TotalScore       int     `json:"total_score"`
}

// User represents a registered user account.
type User struct {
	ID                   uuid.UUID  `json:"id"`
	Username             string     `json:"username"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	Bio                  string     `json:"bio,omitempty"`
	AvatarURL            string     `json:"avatar_url,omitempty"`
	FavoriteTopics       []string   `json:"favorite_topics,omitempty"`
	DifficultyPreference Difficulty `json:"difficulty_preference"`
	Stats                UserStats  `json:"stats"`
	IsAdmin              bool       `json:"is_admin"`
	IsActive             bool       `json:"is_active"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// RegisterRequest is the payload for creating a new account.
// Only the email must be unique; usernames may repeat.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the payload for authenticating an existing account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AuthResponse is returned after successful registration or login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateProfileRequest is the payload for updating the caller's profile.
// Nil fields are left untouched.
type UpdateProfileRequest struct {
	Bio                  *string   `json:"bio" binding:"omitempty,max=500"`
	AvatarURL            *string   `json:"avatar_url" binding:"omitempty,max=512"`
	FavoriteTopics       *[]string `json:"favorite_topics" binding:"omitempty,max=20,dive,min=1,max=50"`
	DifficultyPreference *string   `json:"difficulty_preference" binding:"omitempty,oneof=Easy Medium Hard"`
}
