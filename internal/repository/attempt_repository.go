package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/questify/questify-backend/internal/model"
)

// QuizAttemptRow combines a completed attempt with the attempting user's
// identity, the population fed to the ranking engine.
type QuizAttemptRow struct {
	AttemptID        uuid.UUID  `json:"attempt_id"`
	UserID           uuid.UUID  `json:"user_id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Score            int        `json:"score"`
	TotalPoints      int        `json:"total_points"`
	Percentage       float64    `json:"percentage"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// AttemptRepository handles attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `a.id, a.user_id, a.quiz_id, a.status, a.answers, a.score,
	        a.total_points, a.percentage, a.time_taken_seconds, a.started_at, a.completed_at`

func scanAttempt(row interface{ Scan(dest ...any) error }) (*model.Attempt, error) {
	a := &model.Attempt{}
	var answersJSON []byte
	if err := row.Scan(&a.ID, &a.UserID, &a.QuizID, &a.Status, &answersJSON, &a.Score,
		&a.TotalPoints, &a.Percentage, &a.TimeTakenSeconds, &a.StartedAt, &a.CompletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return a, nil
}

// GetInProgress retrieves the in-progress attempt for a (user, quiz) pair.
func (r *AttemptRepository) GetInProgress(ctx context.Context, userID, quizID uuid.UUID) (*model.Attempt, error) {
	return scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts a
		 WHERE a.user_id = $1 AND a.quiz_id = $2 AND a.status = 'in-progress'`,
		userID, quizID))
}

// CreateInProgress inserts a new in-progress attempt. The partial unique
// index on (user_id, quiz_id) guards the concurrent-start race: the losing
// insert matches the conflict target, returns no row, and the caller
// re-fetches the winner's attempt.
func (r *AttemptRepository) CreateInProgress(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (user_id, quiz_id, status, total_points)
		 VALUES ($1, $2, 'in-progress', $3)
		 ON CONFLICT (user_id, quiz_id) WHERE status = 'in-progress' DO NOTHING
		 RETURNING id, started_at`,
		a.UserID, a.QuizID, a.TotalPoints,
	).Scan(&a.ID, &a.StartedAt)
}

// GetByIDForUser retrieves an attempt only if it belongs to the given user,
// with the quiz title joined in.
func (r *AttemptRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	var answersJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`, q.title FROM attempts a
		 JOIN quizzes q ON a.quiz_id = q.id
		 WHERE a.id = $1 AND a.user_id = $2`, id, userID,
	).Scan(&a.ID, &a.UserID, &a.QuizID, &a.Status, &answersJSON, &a.Score,
		&a.TotalPoints, &a.Percentage, &a.TimeTakenSeconds, &a.StartedAt, &a.CompletedAt,
		&a.QuizTitle)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return a, nil
}

// Complete transitions an attempt from in-progress to completed and stores
// the scored result. The status predicate makes the transition a
// compare-and-set: exactly one concurrent submission succeeds, the rest see
// no row and must treat the attempt as already completed.
func (r *AttemptRepository) Complete(ctx context.Context, a *model.Attempt) (bool, error) {
	answersJSON, err := json.Marshal(a.Answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts SET
		     status = 'completed',
		     answers = $1,
		     score = $2,
		     total_points = $3,
		     percentage = $4,
		     time_taken_seconds = $5,
		     completed_at = NOW()
		 WHERE id = $6 AND status = 'in-progress'`,
		answersJSON, a.Score, a.TotalPoints, a.Percentage, a.TimeTakenSeconds, a.ID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListCompletedByQuiz returns every completed attempt for one quiz with the
// attempting user's identity. Ordering is left to the ranking engine.
func (r *AttemptRepository) ListCompletedByQuiz(ctx context.Context, quizID uuid.UUID) ([]QuizAttemptRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.user_id, u.username, u.email, a.score, a.total_points,
		        a.percentage, a.time_taken_seconds, a.completed_at
		 FROM attempts a
		 JOIN users u ON a.user_id = u.id
		 WHERE a.quiz_id = $1 AND a.status = 'completed'`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []QuizAttemptRow
	for rows.Next() {
		var row QuizAttemptRow
		if err := rows.Scan(&row.AttemptID, &row.UserID, &row.Username, &row.Email,
			&row.Score, &row.TotalPoints, &row.Percentage,
			&row.TimeTakenSeconds, &row.CompletedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, row)
	}
	return attempts, rows.Err()
}

// ListByUser retrieves a user's attempts newest first, with quiz titles.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Attempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`, q.title FROM attempts a
		 JOIN quizzes q ON a.quiz_id = q.id
		 WHERE a.user_id = $1
		 ORDER BY a.started_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a := model.Attempt{}
		var answersJSON []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuizID, &a.Status, &answersJSON, &a.Score,
			&a.TotalPoints, &a.Percentage, &a.TimeTakenSeconds, &a.StartedAt, &a.CompletedAt,
			&a.QuizTitle); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
			return nil, 0, fmt.Errorf("unmarshal answers: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// ListRecentCompleted returns the latest completed attempts platform-wide,
// with usernames and quiz titles (admin activity feed).
func (r *AttemptRepository) ListRecentCompleted(ctx context.Context, limit, offset int) ([]model.Attempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE status = 'completed'`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`, q.title, u.username FROM attempts a
		 JOIN quizzes q ON a.quiz_id = q.id
		 JOIN users u ON a.user_id = u.id
		 WHERE a.status = 'completed'
		 ORDER BY a.completed_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a := model.Attempt{}
		var answersJSON []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuizID, &a.Status, &answersJSON, &a.Score,
			&a.TotalPoints, &a.Percentage, &a.TimeTakenSeconds, &a.StartedAt, &a.CompletedAt,
			&a.QuizTitle, &a.Username); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
			return nil, 0, fmt.Errorf("unmarshal answers: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// CountCompleted returns the number of completed attempts platform-wide.
func (r *AttemptRepository) CountCompleted(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE status = 'completed'`).Scan(&n)
	return n, err
}
