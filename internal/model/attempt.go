package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt lifecycle states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in-progress"
	AttemptStatusCompleted  AttemptStatus = "completed"
	AttemptStatusAbandoned  AttemptStatus = "abandoned"
)

// AnswerRecord is the scored outcome for one question: the learner's raw
// response, a correctness flag, and points earned.
type AnswerRecord struct {
	QuestionID      uuid.UUID `json:"question_id"`
	SelectedOptions []string  `json:"selected_options,omitempty"`
	Answer          string    `json:"answer,omitempty"`
	IsCorrect       bool      `json:"is_correct"`
	PointsEarned    int       `json:"points_earned"`
}

// Attempt is one user's instance of taking one quiz. It is created at start
// time, mutated exactly once at submission (in-progress -> completed), and
// never mutated afterward.
type Attempt struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	QuizID    uuid.UUID     `json:"quiz_id"`
	QuizTitle string        `json:"quiz_title,omitempty"`
	Username  string        `json:"username,omitempty"`
	Status    AttemptStatus `json:"status"`
	Answers   []AnswerRecord `json:"answers,omitempty"`
	Score     int           `json:"score"`
	// TotalPoints is the quiz's total possible points, captured at start time.
	TotalPoints      int        `json:"total_points"`
	Percentage       float64    `json:"percentage"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// SubmittedAnswer is one raw answer in a submission, index-aligned with the
// quiz's question order.
type SubmittedAnswer struct {
	SelectedOptions []string `json:"selected_options"`
	Answer          string   `json:"answer"`
}

// SubmitAttemptRequest is the payload for submitting an attempt.
type SubmitAttemptRequest struct {
	Answers          []SubmittedAnswer `json:"answers" binding:"required"`
	TimeTakenSeconds int               `json:"time_taken_seconds" binding:"min=0"`
}

// StartAttemptResponse wraps a started attempt with the taker view of the
// quiz's questions.
type StartAttemptResponse struct {
	Attempt   Attempt            `json:"attempt"`
	Resumed   bool               `json:"resumed"`
	Questions []QuestionForTaker `json:"questions"`
}

// LeaderboardEntry is one ranked row of a per-quiz leaderboard.
type LeaderboardEntry struct {
	Rank             int        `json:"rank"`
	AttemptID        uuid.UUID  `json:"attempt_id"`
	Username         string     `json:"username"`
	Score            int        `json:"score"`
	TotalPoints      int        `json:"total_points"`
	Percentage       float64    `json:"percentage"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// GlobalLeaderboardEntry is one ranked row of the global leaderboard.
// LeaderboardScore is the fixed weighted composite, distinct from any quiz
// percentage score.
type GlobalLeaderboardEntry struct {
	Rank             int     `json:"rank"`
	UserID           uuid.UUID `json:"user_id"`
	Username         string  `json:"username"`
	QuizzesCreated   int     `json:"quizzes_created"`
	QuizzesAttempted int     `json:"quizzes_attempted"`
	AverageScore     float64 `json:"average_score"`
	TotalPoints      int     `json:"total_points"`
	LeaderboardScore float64 `json:"leaderboard_score"`
}

// ResultRow is one ranked row of the creator-only results view.
type ResultRow struct {
	Rank             int        `json:"rank"`
	AttemptID        uuid.UUID  `json:"attempt_id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Score            int        `json:"score"`
	TotalPoints      int        `json:"total_points"`
	Percentage       float64    `json:"percentage"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// ResultsSummary aggregates the creator-only results view.
// PassRate is the percentage of participants scoring at least 60 percent.
type ResultsSummary struct {
	TotalParticipants int     `json:"total_participants"`
	AverageScore      float64 `json:"average_score"`
	HighestScore      float64 `json:"highest_score"`
	LowestScore       float64 `json:"lowest_score"`
	PassRate          float64 `json:"pass_rate"`
}

// QuizResults is the full creator-only results payload.
type QuizResults struct {
	Quiz    Quiz           `json:"quiz"`
	Summary ResultsSummary `json:"summary"`
	Results []ResultRow    `json:"results"`
}
