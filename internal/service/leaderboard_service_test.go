package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/questify/questify-backend/internal/config"
	"github.com/questify/questify-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newCacheService(t *testing.T) (*LeaderboardService, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{LeaderboardCacheTTL: time.Minute}

	// Repositories stay nil: these tests only exercise the cache path.
	return NewLeaderboardService(cfg, nil, nil, client, zerolog.Nop()), mr
}

func TestQuizLeaderboardServedFromCache(t *testing.T) {
	svc, mr := newCacheService(t)
	ctx := context.Background()
	quizID := uuid.New()

	cached := []model.LeaderboardEntry{
		{Rank: 1, AttemptID: uuid.New(), Username: "alice", Score: 90},
		{Rank: 2, AttemptID: uuid.New(), Username: "bob", Score: 70},
	}
	data, _ := json.Marshal(cached)
	mr.Set(config.CacheKey.QuizLeaderboardKey(quizID.String(), 10), string(data))

	entries, err := svc.QuizLeaderboard(ctx, quizID, 10)
	if err != nil {
		t.Fatalf("quiz leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].Username != "alice" {
		t.Fatalf("expected cached entries, got %+v", entries)
	}
}

func TestQuizLeaderboardHonorsLargeLimit(t *testing.T) {
	svc, mr := newCacheService(t)
	ctx := context.Background()
	quizID := uuid.New()

	cached := []model.LeaderboardEntry{
		{Rank: 1, AttemptID: uuid.New(), Username: "alice", Score: 90},
	}
	data, _ := json.Marshal(cached)
	mr.Set(config.CacheKey.QuizLeaderboardKey(quizID.String(), 50), string(data))

	// A limit above the default must be looked up as-is, not clamped to the
	// default key. Clamping would miss the cache and hit the nil repository.
	entries, err := svc.QuizLeaderboard(ctx, quizID, 50)
	if err != nil {
		t.Fatalf("quiz leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "alice" {
		t.Fatalf("expected cached entries for limit 50, got %+v", entries)
	}
}

func TestGlobalLeaderboardHonorsLargeLimit(t *testing.T) {
	svc, mr := newCacheService(t)
	ctx := context.Background()

	cached := []model.GlobalLeaderboardEntry{
		{Rank: 1, UserID: uuid.New(), Username: "alice", LeaderboardScore: 22},
	}
	data, _ := json.Marshal(cached)
	mr.Set(config.CacheKey.GlobalLeaderboardKey(75), string(data))

	entries, err := svc.GlobalLeaderboard(ctx, 75)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected cached entries for limit 75, got %+v", entries)
	}
}

func TestGlobalLeaderboardServedFromCache(t *testing.T) {
	svc, mr := newCacheService(t)
	ctx := context.Background()

	cached := []model.GlobalLeaderboardEntry{
		{Rank: 1, UserID: uuid.New(), Username: "alice", LeaderboardScore: 22},
	}
	data, _ := json.Marshal(cached)
	mr.Set(config.CacheKey.GlobalLeaderboardKey(20), string(data))

	entries, err := svc.GlobalLeaderboard(ctx, 20)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].LeaderboardScore != 22 {
		t.Fatalf("expected cached entries, got %+v", entries)
	}
}

func TestInvalidateQuizDropsKeysAndPublishes(t *testing.T) {
	svc, mr := newCacheService(t)
	ctx := context.Background()
	quizID := uuid.New()

	quizKey := config.CacheKey.QuizLeaderboardKey(quizID.String(), 10)
	globalKey := config.CacheKey.GlobalLeaderboardKey(20)
	otherKey := config.CacheKey.QuizLeaderboardKey(uuid.New().String(), 10)
	mr.Set(quizKey, "[]")
	mr.Set(globalKey, "[]")
	mr.Set(otherKey, "[]")

	sub := svc.Subscribe(ctx, quizID)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	svc.InvalidateQuiz(ctx, quizID)

	if mr.Exists(quizKey) {
		t.Fatal("expected quiz leaderboard key dropped")
	}
	if mr.Exists(globalKey) {
		t.Fatal("expected global leaderboard key dropped")
	}
	if !mr.Exists(otherKey) {
		t.Fatal("expected other quiz's cache untouched")
	}

	select {
	case msg := <-sub.Channel():
		if msg.Payload != quizID.String() {
			t.Fatalf("expected quiz id payload, got %q", msg.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a leaderboard update message")
	}
}
