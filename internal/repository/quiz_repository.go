package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/questify/questify-backend/internal/model"
)

// QuizRepository handles quiz and question data access. Questions are owned
// by their quiz and are only ever written together with it.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `q.id, q.title, q.description, q.topic, q.difficulty, q.created_by,
	        q.is_public, q.access_code, q.time_limit_minutes, q.tags, q.average_rating,
	        q.total_attempts, q.average_score, q.is_active, q.created_at, q.updated_at`

func scanQuiz(row interface{ Scan(dest ...any) error }) (*model.Quiz, error) {
	q := &model.Quiz{}
	var accessCode *string
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Topic, &q.Difficulty, &q.CreatedBy,
		&q.IsPublic, &accessCode, &q.TimeLimitMinutes, &q.Tags, &q.AverageRating,
		&q.TotalAttempts, &q.AverageScore, &q.IsActive, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if accessCode != nil {
		q.AccessCode = *accessCode
	}
	return q, nil
}

// Create inserts a quiz together with its questions in one transaction.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var accessCode *string
	if q.AccessCode != "" {
		accessCode = &q.AccessCode
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (title, description, topic, difficulty, created_by,
		                      is_public, access_code, time_limit_minutes, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		q.Title, q.Description, q.Topic, q.Difficulty, q.CreatedBy,
		q.IsPublic, accessCode, q.TimeLimitMinutes, q.Tags,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	for i := range q.Questions {
		question := &q.Questions[i]
		question.QuizID = q.ID
		optionsJSON, err := json.Marshal(question.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO questions (quiz_id, question_text, question_type, options,
			                        correct_answer, points, explanation, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			question.QuizID, question.QuestionText, question.QuestionType, optionsJSON,
			question.CorrectAnswer, question.Points, question.Explanation, question.OrderNum,
		).Scan(&question.ID)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", i+1, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a quiz with its questions loaded in order.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q, err := scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes q WHERE q.id = $1`, id))
	if err != nil {
		return nil, err
	}

	questions, err := r.listQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Questions = questions
	return q, nil
}

func (r *QuizRepository) listQuestions(ctx context.Context, quizID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_text, question_type, options,
		        correct_answer, points, explanation, order_num
		 FROM questions WHERE quiz_id = $1 ORDER BY order_num, id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var question model.Question
		var optionsJSON []byte
		if err := rows.Scan(&question.ID, &question.QuizID, &question.QuestionText,
			&question.QuestionType, &optionsJSON, &question.CorrectAnswer,
			&question.Points, &question.Explanation, &question.OrderNum); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(optionsJSON, &question.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// ListPublic retrieves active public quizzes with optional filters, newest
// first, joined with the creator's username.
func (r *QuizRepository) ListPublic(ctx context.Context, filter model.QuizListFilter, limit, offset int) ([]model.Quiz, int, error) {
	where := `WHERE q.is_public AND q.is_active`
	args := []any{}

	if filter.Topic != "" {
		args = append(args, filter.Topic)
		where += fmt.Sprintf(" AND q.topic = $%d", len(args))
	}
	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty)
		where += fmt.Sprintf(" AND q.difficulty = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (q.title ILIKE $%d OR q.description ILIKE $%d)", len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes q `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + quizColumns + `, u.username,
	                 (SELECT COUNT(*) FROM questions WHERE quiz_id = q.id) AS question_count
	          FROM quizzes q JOIN users u ON q.created_by = u.id ` + where +
		fmt.Sprintf(` ORDER BY q.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	return r.queryQuizList(ctx, query, args, total)
}

// ListByCreator retrieves a user's own active quizzes, newest first.
// Access codes are included since this is an owner-facing view.
func (r *QuizRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]model.Quiz, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quizzes q WHERE q.created_by = $1 AND q.is_active`,
		creatorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + quizColumns + `, u.username,
	                 (SELECT COUNT(*) FROM questions WHERE quiz_id = q.id) AS question_count
	          FROM quizzes q JOIN users u ON q.created_by = u.id
	          WHERE q.created_by = $1 AND q.is_active
	          ORDER BY q.created_at DESC LIMIT $2 OFFSET $3`

	return r.queryQuizList(ctx, query, []any{creatorID, limit, offset}, total)
}

// ListAllActive retrieves every active quiz regardless of visibility (admin).
func (r *QuizRepository) ListAllActive(ctx context.Context, limit, offset int) ([]model.Quiz, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quizzes q WHERE q.is_active`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + quizColumns + `, u.username,
	                 (SELECT COUNT(*) FROM questions WHERE quiz_id = q.id) AS question_count
	          FROM quizzes q JOIN users u ON q.created_by = u.id
	          WHERE q.is_active
	          ORDER BY q.created_at DESC LIMIT $1 OFFSET $2`

	return r.queryQuizList(ctx, query, []any{limit, offset}, total)
}

func (r *QuizRepository) queryQuizList(ctx context.Context, query string, args []any, total int) ([]model.Quiz, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q := model.Quiz{}
		var accessCode *string
		var questionCount int
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.Topic, &q.Difficulty, &q.CreatedBy,
			&q.IsPublic, &accessCode, &q.TimeLimitMinutes, &q.Tags, &q.AverageRating,
			&q.TotalAttempts, &q.AverageScore, &q.IsActive, &q.CreatedAt, &q.UpdatedAt,
			&q.CreatorName, &questionCount); err != nil {
			return nil, 0, err
		}
		if accessCode != nil {
			q.AccessCode = *accessCode
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, total, rows.Err()
}

// UpdateMeta applies non-zero metadata fields of an owner edit.
func (r *QuizRepository) UpdateMeta(ctx context.Context, id uuid.UUID, req *model.UpdateQuizRequest) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET
		     title = COALESCE(NULLIF($1, ''), title),
		     description = COALESCE($2, description),
		     topic = COALESCE(NULLIF($3, ''), topic),
		     difficulty = COALESCE(NULLIF($4, ''), difficulty),
		     time_limit_minutes = CASE WHEN $5 > 0 THEN $5 ELSE time_limit_minutes END,
		     tags = COALESCE($6, tags),
		     updated_at = NOW()
		 WHERE id = $7`,
		req.Title, req.Description, req.Topic, req.Difficulty,
		req.TimeLimitMinutes, req.Tags, id)
	return err
}

// SoftDelete deactivates a quiz. Rows are never physically removed.
func (r *QuizRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeactivateByCreator deactivates all quizzes owned by a user.
func (r *QuizRepository) DeactivateByCreator(ctx context.Context, creatorID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET is_active = FALSE, updated_at = NOW() WHERE created_by = $1`, creatorID)
	return err
}

// AccessCodeExists reports whether any quiz currently holds the given code.
func (r *QuizRepository) AccessCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quizzes WHERE access_code = $1)`, code).Scan(&exists)
	return exists, err
}

// GetByAccessCode retrieves an active quiz by its access code.
func (r *QuizRepository) GetByAccessCode(ctx context.Context, code string) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes q WHERE q.access_code = $1 AND q.is_active`, code))
}

// SetAccessCode replaces a quiz's access code.
func (r *QuizRepository) SetAccessCode(ctx context.Context, id uuid.UUID, code string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET access_code = $1, updated_at = NOW() WHERE id = $2`, code, id)
	return err
}

// AddParticipant records that a user joined a private quiz. Joining twice is
// a no-op.
func (r *QuizRepository) AddParticipant(ctx context.Context, quizID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_participants (quiz_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (quiz_id, user_id) DO NOTHING`, quizID, userID)
	return err
}

// IsParticipant reports whether a user has joined a quiz.
func (r *QuizRepository) IsParticipant(ctx context.Context, quizID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quiz_participants WHERE quiz_id = $1 AND user_id = $2)`,
		quizID, userID).Scan(&exists)
	return exists, err
}

// UpsertRating records or replaces a user's rating, then recomputes the
// quiz's average rating from all rows in the same transaction.
func (r *QuizRepository) UpsertRating(ctx context.Context, quizID, userID uuid.UUID, rating int, comment string) (float64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO quiz_ratings (quiz_id, user_id, rating, comment)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (quiz_id, user_id)
		 DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()`,
		quizID, userID, rating, comment)
	if err != nil {
		return 0, fmt.Errorf("upsert rating: %w", err)
	}

	var average float64
	err = tx.QueryRow(ctx,
		`UPDATE quizzes SET
		     average_rating = (SELECT AVG(rating) FROM quiz_ratings WHERE quiz_id = $1),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING average_rating`, quizID).Scan(&average)
	if err != nil {
		return 0, fmt.Errorf("recompute average rating: %w", err)
	}

	return average, tx.Commit(ctx)
}

// ApplyAttemptStats folds one completed attempt's percentage into the quiz's
// running average and bumps the attempt counter. The whole update is one
// statement, so concurrent submissions cannot act on a stale average.
func (r *QuizRepository) ApplyAttemptStats(ctx context.Context, id uuid.UUID, percentage float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET
		     average_score = (average_score * total_attempts + $1) / (total_attempts + 1),
		     total_attempts = total_attempts + 1,
		     updated_at = NOW()
		 WHERE id = $2`, percentage, id)
	return err
}

// CountActive returns the number of active quizzes.
func (r *QuizRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes WHERE is_active`).Scan(&n)
	return n, err
}

// TopicCount is one row of the popular-topics aggregation.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// PopularTopics returns the most common topics among active quizzes.
func (r *QuizRepository) PopularTopics(ctx context.Context, limit int) ([]TopicCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT topic, COUNT(*) FROM quizzes WHERE is_active
		 GROUP BY topic ORDER BY COUNT(*) DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []TopicCount
	for rows.Next() {
		var t TopicCount
		if err := rows.Scan(&t.Topic, &t.Count); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// DifficultyCount is one row of the difficulty-distribution aggregation.
type DifficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// DifficultyDistribution returns quiz counts grouped by difficulty.
func (r *QuizRepository) DifficultyDistribution(ctx context.Context) ([]DifficultyCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT difficulty, COUNT(*) FROM quizzes WHERE is_active GROUP BY difficulty`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []DifficultyCount
	for rows.Next() {
		var d DifficultyCount
		if err := rows.Scan(&d.Difficulty, &d.Count); err != nil {
			return nil, err
		}
		counts = append(counts, d)
	}
	return counts, rows.Err()
}
