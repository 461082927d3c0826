package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/questify/questify-backend/internal/model"
	"github.com/questify/questify-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Attempt domain errors.
var (
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
)

// analyticsRecentLimit caps the recent-activity list in the creator view.
const analyticsRecentLimit = 10

// AttemptService drives the attempt lifecycle: one in-progress attempt per
// (user, quiz), a single in-progress to completed transition, and scoring at
// submission time.
type AttemptService struct {
	attemptRepo  *repository.AttemptRepository
	quizRepo     *repository.QuizRepository
	userRepo     *repository.UserRepository
	leaderboards *LeaderboardService
	log          zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	quizRepo *repository.QuizRepository,
	userRepo *repository.UserRepository,
	leaderboards *LeaderboardService,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attemptRepo:  attemptRepo,
		quizRepo:     quizRepo,
		userRepo:     userRepo,
		leaderboards: leaderboards,
		log:          log,
	}
}

// Start begins an attempt, or resumes the caller's existing in-progress one.
// Two racing starts converge on a single attempt row: the losing insert hits
// the partial unique index and re-fetches the winner's row.
func (s *AttemptService) Start(ctx context.Context, quizID, userID uuid.UUID, isAdmin bool) (*model.StartAttemptResponse, error) {
	quiz, err := s.accessibleQuiz(ctx, quizID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	takerQuestions := make([]model.QuestionForTaker, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		takerQuestions = append(takerQuestions, q.ForTaker())
	}

	existing, err := s.attemptRepo.GetInProgress(ctx, userID, quizID)
	if err == nil {
		return &model.StartAttemptResponse{Attempt: *existing, Resumed: true, Questions: takerQuestions}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get in-progress attempt: %w", err)
	}

	attempt := &model.Attempt{
		UserID:      userID,
		QuizID:      quizID,
		Status:      model.AttemptStatusInProgress,
		TotalPoints: quiz.TotalPoints(),
	}
	err = s.attemptRepo.CreateInProgress(ctx, attempt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the start race; someone else's insert won.
		winner, err := s.attemptRepo.GetInProgress(ctx, userID, quizID)
		if err != nil {
			return nil, fmt.Errorf("refetch in-progress attempt: %w", err)
		}
		return &model.StartAttemptResponse{Attempt: *winner, Resumed: true, Questions: takerQuestions}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("quiz_id", quizID.String()).
		Str("user_id", userID.String()).
		Msg("Attempt started")
	return &model.StartAttemptResponse{Attempt: *attempt, Resumed: false, Questions: takerQuestions}, nil
}

// Submit grades and completes an attempt. Completion is a compare-and-set on
// the in-progress status, so a double submission scores at most once; the
// loser gets ErrAttemptAlreadyCompleted. The winner's result is folded into
// the quiz and user aggregates and the leaderboard caches are invalidated.
func (s *AttemptService) Submit(ctx context.Context, attemptID, userID uuid.UUID, req *model.SubmitAttemptRequest) (*model.Attempt, []model.Question, error) {
	attempt, err := s.attemptRepo.GetByIDForUser(ctx, attemptID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, nil, ErrAttemptAlreadyCompleted
	}

	// Grading uses the quiz's current questions. A quiz deactivated after
	// the attempt started still grades normally.
	quiz, err := s.quizRepo.GetByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, nil, fmt.Errorf("get quiz: %w", err)
	}

	outcome := ScoreAttempt(quiz.Questions, req.Answers)
	attempt.Answers = outcome.Answers
	attempt.Score = outcome.Score
	attempt.TotalPoints = outcome.TotalPoints
	attempt.Percentage = outcome.Percentage
	attempt.TimeTakenSeconds = req.TimeTakenSeconds

	completed, err := s.attemptRepo.Complete(ctx, attempt)
	if err != nil {
		return nil, nil, fmt.Errorf("complete attempt: %w", err)
	}
	if !completed {
		return nil, nil, ErrAttemptAlreadyCompleted
	}
	now := time.Now()
	attempt.Status = model.AttemptStatusCompleted
	attempt.CompletedAt = &now

	s.applyAggregates(ctx, attempt)
	s.leaderboards.InvalidateQuiz(ctx, attempt.QuizID)

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("quiz_id", attempt.QuizID.String()).
		Int("score", attempt.Score).
		Float64("percentage", attempt.Percentage).
		Msg("Attempt completed")
	return attempt, quiz.Questions, nil
}

// applyAggregates folds a completed attempt into the quiz and user stats.
// Aggregate failures are logged and swallowed: the attempt is already
// committed and must be reported to the caller regardless.
func (s *AttemptService) applyAggregates(ctx context.Context, attempt *model.Attempt) {
	if err := s.quizRepo.ApplyAttemptStats(ctx, attempt.QuizID, attempt.Percentage); err != nil {
		s.log.Error().Err(err).Str("quiz_id", attempt.QuizID.String()).Msg("Failed to update quiz stats")
	}
	if err := s.userRepo.ApplyAttemptStats(ctx, attempt.UserID, attempt.Score); err != nil {
		s.log.Error().Err(err).Str("user_id", attempt.UserID.String()).Msg("Failed to update user stats")
	}
	if err := s.userRepo.RecomputeAverageScore(ctx, attempt.UserID); err != nil {
		s.log.Error().Err(err).Str("user_id", attempt.UserID.String()).Msg("Failed to recompute user average")
	}
}

// Get retrieves one of the caller's attempts with its quiz title.
func (s *AttemptService) Get(ctx context.Context, attemptID, userID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByIDForUser(ctx, attemptID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

// History lists the caller's attempts, newest first.
func (s *AttemptService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Attempt, int, error) {
	return s.attemptRepo.ListByUser(ctx, userID, limit, offset)
}

// Analytics builds the creator-facing aggregate view of a quiz's completed
// attempts. Ownership is checked by the caller.
func (s *AttemptService) Analytics(ctx context.Context, quizID uuid.UUID) (*model.QuizAnalytics, error) {
	rows, err := s.attemptRepo.ListCompletedByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}

	analytics := &model.QuizAnalytics{TotalAttempts: len(rows)}
	if len(rows) == 0 {
		analytics.RecentAttempts = []model.RecentAttempt{}
		return analytics, nil
	}

	var sum float64
	analytics.HighestScore = rows[0].Percentage
	analytics.LowestScore = rows[0].Percentage
	for _, row := range rows {
		sum += row.Percentage
		if row.Percentage > analytics.HighestScore {
			analytics.HighestScore = row.Percentage
		}
		if row.Percentage < analytics.LowestScore {
			analytics.LowestScore = row.Percentage
		}
	}
	analytics.AverageScore = sum / float64(len(rows))

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CompletedAt == nil || rows[j].CompletedAt == nil {
			return rows[j].CompletedAt == nil
		}
		return rows[i].CompletedAt.After(*rows[j].CompletedAt)
	})
	if len(rows) > analyticsRecentLimit {
		rows = rows[:analyticsRecentLimit]
	}
	analytics.RecentAttempts = make([]model.RecentAttempt, 0, len(rows))
	for _, row := range rows {
		analytics.RecentAttempts = append(analytics.RecentAttempts, model.RecentAttempt{
			Username:    row.Username,
			Score:       row.Score,
			Percentage:  row.Percentage,
			CompletedAt: row.CompletedAt,
		})
	}
	return analytics, nil
}

// accessibleQuiz loads an active quiz and checks the caller may take it.
func (s *AttemptService) accessibleQuiz(ctx context.Context, quizID, userID uuid.UUID, isAdmin bool) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if !quiz.IsActive {
		return nil, ErrQuizNotFound
	}

	if !quiz.IsPublic && quiz.CreatedBy != userID && !isAdmin {
		joined, err := s.quizRepo.IsParticipant(ctx, quizID, userID)
		if err != nil {
			return nil, fmt.Errorf("check participant: %w", err)
		}
		if !joined {
			return nil, ErrPrivateQuizDenied
		}
	}
	return quiz, nil
}
