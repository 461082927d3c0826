package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/questify/questify-backend/internal/model"
	"github.com/questify/questify-backend/internal/repository"
	"github.com/rs/zerolog"
)

// PlatformAnalytics is the admin dashboard aggregate.
type PlatformAnalytics struct {
	TotalUsers             int                          `json:"total_users"`
	TotalQuizzes           int                          `json:"total_quizzes"`
	TotalAttempts          int                          `json:"total_attempts"`
	PopularTopics          []repository.TopicCount      `json:"popular_topics"`
	DifficultyDistribution []repository.DifficultyCount `json:"difficulty_distribution"`
}

// AdminService exposes the platform-wide views and moderation actions.
type AdminService struct {
	userRepo    *repository.UserRepository
	quizRepo    *repository.QuizRepository
	attemptRepo *repository.AttemptRepository
	log         zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	userRepo *repository.UserRepository,
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.AttemptRepository,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		log:         log,
	}
}

// Analytics builds the platform dashboard counters and distributions.
func (s *AdminService) Analytics(ctx context.Context) (*PlatformAnalytics, error) {
	users, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	quizzes, err := s.quizRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count quizzes: %w", err)
	}
	attempts, err := s.attemptRepo.CountCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	topics, err := s.quizRepo.PopularTopics(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("popular topics: %w", err)
	}
	difficulties, err := s.quizRepo.DifficultyDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("difficulty distribution: %w", err)
	}

	return &PlatformAnalytics{
		TotalUsers:             users,
		TotalQuizzes:           quizzes,
		TotalAttempts:          attempts,
		PopularTopics:          topics,
		DifficultyDistribution: difficulties,
	}, nil
}

// ListUsers returns all accounts, paginated.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	return s.userRepo.ListPaginated(ctx, limit, offset)
}

// ListQuizzes returns every active quiz regardless of visibility, paginated.
func (s *AdminService) ListQuizzes(ctx context.Context, limit, offset int) ([]model.Quiz, int, error) {
	return s.quizRepo.ListAllActive(ctx, limit, offset)
}

// ListRecentAttempts returns the platform-wide completed attempt feed.
func (s *AdminService) ListRecentAttempts(ctx context.Context, limit, offset int) ([]model.Attempt, int, error) {
	return s.attemptRepo.ListRecentCompleted(ctx, limit, offset)
}

// DeactivateUser disables an account and deactivates every quiz it owns.
// The user's attempts stay: completed leaderboard rows are historical fact.
func (s *AdminService) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	deactivated, err := s.userRepo.Deactivate(ctx, userID)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	if !deactivated {
		return ErrUserNotFound
	}

	if err := s.quizRepo.DeactivateByCreator(ctx, userID); err != nil {
		return fmt.Errorf("deactivate quizzes: %w", err)
	}

	s.log.Info().Str("user_id", userID.String()).Msg("User deactivated")
	return nil
}
