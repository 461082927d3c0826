package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/questify/questify-backend/internal/config"
	"github.com/questify/questify-backend/internal/model"
	"github.com/questify/questify-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Default leaderboard sizes.
const (
	QuizLeaderboardLimit   = 10
	GlobalLeaderboardLimit = 20
)

// LeaderboardService ranks completed attempts per quiz and user activity
// globally, with a Redis read-through cache in front of both views.
type LeaderboardService struct {
	cfg         *config.Config
	attemptRepo *repository.AttemptRepository
	userRepo    *repository.UserRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	cfg *config.Config,
	attemptRepo *repository.AttemptRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		cfg:         cfg,
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		rdb:         rdb,
		log:         log,
	}
}

// QuizLeaderboard returns the top completed attempts of a quiz, ordered by
// score descending with ties broken by fastest completion.
func (s *LeaderboardService) QuizLeaderboard(ctx context.Context, quizID uuid.UUID, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = QuizLeaderboardLimit
	}

	key := config.CacheKey.QuizLeaderboardKey(quizID.String(), limit)
	if entries, ok := s.cached(ctx, key); ok {
		return entries, nil
	}

	rows, err := s.attemptRepo.ListCompletedByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}

	entries := rankQuizAttempts(rows, limit)
	s.store(ctx, key, entries)
	return entries, nil
}

// GlobalLeaderboard returns the top users by composite activity score. Only
// users with at least one created or attempted quiz are considered.
func (s *LeaderboardService) GlobalLeaderboard(ctx context.Context, limit int) ([]model.GlobalLeaderboardEntry, error) {
	if limit <= 0 {
		limit = GlobalLeaderboardLimit
	}

	key := config.CacheKey.GlobalLeaderboardKey(limit)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var entries []model.GlobalLeaderboardEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache read failed")
	}

	users, err := s.userRepo.ListWithActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	entries := rankUsers(users, limit)
	s.store(ctx, key, entries)
	return entries, nil
}

// QuizResults builds the creator-only full ranking plus summary for a quiz.
// Access control is the caller's responsibility.
func (s *LeaderboardService) QuizResults(ctx context.Context, quizID uuid.UUID) ([]model.ResultRow, model.ResultsSummary, error) {
	rows, err := s.attemptRepo.ListCompletedByQuiz(ctx, quizID)
	if err != nil {
		return nil, model.ResultsSummary{}, fmt.Errorf("list quiz attempts: %w", err)
	}
	results, summary := buildResults(rows)
	return results, summary, nil
}

// InvalidateQuiz drops every cached slice touched by a new completion for the
// quiz and publishes an update event for live subscribers. Cache errors are
// logged, never surfaced: a stale leaderboard expires on its own TTL.
func (s *LeaderboardService) InvalidateQuiz(ctx context.Context, quizID uuid.UUID) {
	patterns := []string{
		config.CacheKey.QuizLeaderboardPattern(quizID.String()),
		config.CacheKey.GlobalLeaderboardPattern(),
	}
	for _, pattern := range patterns {
		iter := s.rdb.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				s.log.Warn().Err(err).Str("key", iter.Val()).Msg("Leaderboard cache delete failed")
			}
		}
		if err := iter.Err(); err != nil {
			s.log.Warn().Err(err).Str("pattern", pattern).Msg("Leaderboard cache scan failed")
		}
	}

	channel := config.CacheKey.QuizLeaderboardChannel(quizID.String())
	if err := s.rdb.Publish(ctx, channel, quizID.String()).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Leaderboard publish failed")
	}
}

// Subscribe opens a pub/sub subscription on a quiz's leaderboard channel.
// The caller owns the returned subscription and must Close it.
func (s *LeaderboardService) Subscribe(ctx context.Context, quizID uuid.UUID) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.QuizLeaderboardChannel(quizID.String()))
}

func (s *LeaderboardService) cached(ctx context.Context, key string) ([]model.LeaderboardEntry, bool) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache read failed")
		}
		return nil, false
	}

	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *LeaderboardService) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.cfg.LeaderboardCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Leaderboard cache write failed")
	}
}
