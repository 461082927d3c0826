package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questify/questify-backend/internal/model"
	"github.com/questify/questify-backend/internal/repository"
)

func attemptRow(username string, score, seconds int, percentage float64) repository.QuizAttemptRow {
	now := time.Now()
	return repository.QuizAttemptRow{
		AttemptID:        uuid.New(),
		UserID:           uuid.New(),
		Username:         username,
		Score:            score,
		TotalPoints:      100,
		Percentage:       percentage,
		TimeTakenSeconds: seconds,
		CompletedAt:      &now,
	}
}

func TestRankQuizAttemptsOrdering(t *testing.T) {
	rows := []repository.QuizAttemptRow{
		attemptRow("slow-high", 90, 120, 90),
		attemptRow("fast-high", 90, 80, 90),
		attemptRow("low", 70, 200, 70),
	}

	entries := rankQuizAttempts(rows, 10)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []string{"fast-high", "slow-high", "low"}
	for i, username := range want {
		if entries[i].Username != username {
			t.Fatalf("rank %d: expected %s, got %s", i+1, username, entries[i].Username)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, entries[i].Rank)
		}
	}
}

func TestRankQuizAttemptsLimit(t *testing.T) {
	rows := make([]repository.QuizAttemptRow, 0, 15)
	for i := 0; i < 15; i++ {
		rows = append(rows, attemptRow("user", i, 60, float64(i)))
	}

	entries := rankQuizAttempts(rows, 10)
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	if entries[0].Score != 14 {
		t.Fatalf("expected top score 14, got %d", entries[0].Score)
	}

	// A limit above the population returns everything.
	entries = rankQuizAttempts(rows, 50)
	if len(entries) != 15 {
		t.Fatalf("expected all 15 entries for limit 50, got %d", len(entries))
	}
}

func TestCompositeScore(t *testing.T) {
	stats := model.UserStats{
		QuizzesCreated:   2,
		QuizzesAttempted: 3,
		AverageScore:     50,
		TotalPoints:      100,
	}

	// 5*2 + 2*3 + 0.1*50 + 0.01*100 = 22
	if got := compositeScore(stats); got != 22 {
		t.Fatalf("expected composite 22, got %v", got)
	}
}

func TestRankUsersOrderAndLimit(t *testing.T) {
	users := make([]model.User, 0, 25)
	for i := 0; i < 25; i++ {
		users = append(users, model.User{
			ID:       uuid.New(),
			Username: "user",
			Stats:    model.UserStats{QuizzesCreated: i},
		})
	}

	entries := rankUsers(users, GlobalLeaderboardLimit)
	if len(entries) != GlobalLeaderboardLimit {
		t.Fatalf("expected %d entries, got %d", GlobalLeaderboardLimit, len(entries))
	}
	if entries[0].QuizzesCreated != 24 {
		t.Fatalf("expected most active user first, got %d", entries[0].QuizzesCreated)
	}
	if entries[0].Rank != 1 || entries[len(entries)-1].Rank != GlobalLeaderboardLimit {
		t.Fatalf("expected 1-based contiguous ranks, got %d..%d",
			entries[0].Rank, entries[len(entries)-1].Rank)
	}
}

func TestBuildResultsSummary(t *testing.T) {
	rows := []repository.QuizAttemptRow{
		attemptRow("a", 90, 100, 90),
		attemptRow("b", 60, 100, 60),
		attemptRow("c", 30, 100, 30),
	}

	results, summary := buildResults(rows)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if summary.TotalParticipants != 3 {
		t.Fatalf("expected 3 participants, got %d", summary.TotalParticipants)
	}
	if summary.AverageScore != 60 {
		t.Fatalf("expected average 60, got %v", summary.AverageScore)
	}
	if summary.HighestScore != 90 || summary.LowestScore != 30 {
		t.Fatalf("expected high 90 low 30, got %v/%v", summary.HighestScore, summary.LowestScore)
	}
	// 90 and 60 pass the 60 percent threshold, 30 does not.
	want := 2.0 / 3.0 * 100
	if summary.PassRate != want {
		t.Fatalf("expected pass rate %v, got %v", want, summary.PassRate)
	}
}

func TestBuildResultsEmpty(t *testing.T) {
	results, summary := buildResults(nil)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if summary.TotalParticipants != 0 || summary.PassRate != 0 || summary.AverageScore != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}
