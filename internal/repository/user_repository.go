package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/questify/questify-backend/internal/model"
)

const userColumns = `id, username, email, password_hash, bio, avatar_url, favorite_topics,
	        difficulty_preference, quizzes_created, quizzes_attempted, average_score,
	        total_points, total_score, is_admin, is_active, created_at, updated_at`

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.AvatarURL,
		&u.FavoriteTopics, &u.DifficultyPreference,
		&u.Stats.QuizzesCreated, &u.Stats.QuizzesAttempted, &u.Stats.AverageScore,
		&u.Stats.TotalPoints, &u.Stats.TotalScore,
		&u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, difficulty_preference, is_active, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin,
	).Scan(&u.ID, &u.DifficultyPreference, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
}

// GetByID retrieves a user by its UUID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// EmailExists reports whether an account with the given email exists.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// UpdateProfile applies non-nil profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateProfileRequest) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET
		     bio = COALESCE($1, bio),
		     avatar_url = COALESCE($2, avatar_url),
		     favorite_topics = COALESCE($3, favorite_topics),
		     difficulty_preference = COALESCE($4, difficulty_preference),
		     updated_at = NOW()
		 WHERE id = $5`,
		req.Bio, req.AvatarURL, req.FavoriteTopics, req.DifficultyPreference, id)
	return err
}

// IncrementQuizzesCreated bumps the quizzes-created counter by one.
func (r *UserRepository) IncrementQuizzesCreated(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET quizzes_created = quizzes_created + 1, updated_at = NOW()
		 WHERE id = $1`, id)
	return err
}

// ApplyAttemptStats applies one completed attempt to a user's counters in a
// single relative update, so concurrent submissions never lose increments.
func (r *UserRepository) ApplyAttemptStats(ctx context.Context, id uuid.UUID, score int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET
		     quizzes_attempted = quizzes_attempted + 1,
		     total_points = total_points + $1,
		     total_score = total_score + $1,
		     updated_at = NOW()
		 WHERE id = $2`, score, id)
	return err
}

// RecomputeAverageScore recalculates the user's average score as the mean
// percentage across the full completed-attempt history.
func (r *UserRepository) RecomputeAverageScore(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET
		     average_score = COALESCE(
		         (SELECT AVG(percentage) FROM attempts WHERE user_id = $1 AND status = 'completed'), 0),
		     updated_at = NOW()
		 WHERE id = $1`, id)
	return err
}

// ListWithActivity returns all active users with any non-zero activity,
// the population of the global leaderboard.
func (r *UserRepository) ListWithActivity(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE is_active AND (quizzes_created > 0 OR quizzes_attempted > 0)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListPaginated retrieves users ordered by registration date, newest first.
func (r *UserRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Deactivate soft-deletes a user account.
func (r *UserRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountAll returns the total number of user accounts.
func (r *UserRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
