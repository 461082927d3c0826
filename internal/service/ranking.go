package service

import (
	"sort"

	"github.com/questify/questify-backend/internal/model"
	"github.com/questify/questify-backend/internal/repository"
)

// Composite weights for the global leaderboard score.
const (
	weightQuizzesCreated   = 5.0
	weightQuizzesAttempted = 2.0
	weightAverageScore     = 0.1
	weightTotalPoints      = 0.01
)

// passThresholdPercent is the minimum percentage counted as a pass in the
// results summary.
const passThresholdPercent = 60.0

// rankQuizAttempts orders completed attempts by score descending, breaking
// ties by time taken ascending, and assigns 1-based ranks.
func rankQuizAttempts(rows []repository.QuizAttemptRow, limit int) []model.LeaderboardEntry {
	sorted := make([]repository.QuizAttemptRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].TimeTakenSeconds < sorted[j].TimeTakenSeconds
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]model.LeaderboardEntry, 0, len(sorted))
	for i, row := range sorted {
		entries = append(entries, model.LeaderboardEntry{
			Rank:             i + 1,
			AttemptID:        row.AttemptID,
			Username:         row.Username,
			Score:            row.Score,
			TotalPoints:      row.TotalPoints,
			Percentage:       row.Percentage,
			TimeTakenSeconds: row.TimeTakenSeconds,
			CompletedAt:      row.CompletedAt,
		})
	}
	return entries
}

// compositeScore is the fixed weighted blend of a user's activity stats used
// to order the global leaderboard.
func compositeScore(stats model.UserStats) float64 {
	return weightQuizzesCreated*float64(stats.QuizzesCreated) +
		weightQuizzesAttempted*float64(stats.QuizzesAttempted) +
		weightAverageScore*stats.AverageScore +
		weightTotalPoints*float64(stats.TotalPoints)
}

// rankUsers orders users by composite score descending and assigns 1-based
// ranks.
func rankUsers(users []model.User, limit int) []model.GlobalLeaderboardEntry {
	entries := make([]model.GlobalLeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, model.GlobalLeaderboardEntry{
			UserID:           u.ID,
			Username:         u.Username,
			QuizzesCreated:   u.Stats.QuizzesCreated,
			QuizzesAttempted: u.Stats.QuizzesAttempted,
			AverageScore:     u.Stats.AverageScore,
			TotalPoints:      u.Stats.TotalPoints,
			LeaderboardScore: compositeScore(u.Stats),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LeaderboardScore > entries[j].LeaderboardScore
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// buildResults ranks every completed attempt of a quiz and computes the
// summary over their percentages.
func buildResults(rows []repository.QuizAttemptRow) ([]model.ResultRow, model.ResultsSummary) {
	ranked := rankQuizAttempts(rows, 0)

	byAttempt := make(map[string]repository.QuizAttemptRow, len(rows))
	for _, row := range rows {
		byAttempt[row.AttemptID.String()] = row
	}

	results := make([]model.ResultRow, 0, len(ranked))
	var summary model.ResultsSummary
	var sum float64
	var passed int

	for _, e := range ranked {
		row := byAttempt[e.AttemptID.String()]
		results = append(results, model.ResultRow{
			Rank:             e.Rank,
			AttemptID:        e.AttemptID,
			Username:         e.Username,
			Email:            row.Email,
			Score:            e.Score,
			TotalPoints:      e.TotalPoints,
			Percentage:       e.Percentage,
			TimeTakenSeconds: e.TimeTakenSeconds,
			CompletedAt:      e.CompletedAt,
		})

		sum += e.Percentage
		if e.Percentage >= passThresholdPercent {
			passed++
		}
		if summary.TotalParticipants == 0 || e.Percentage > summary.HighestScore {
			summary.HighestScore = e.Percentage
		}
		if summary.TotalParticipants == 0 || e.Percentage < summary.LowestScore {
			summary.LowestScore = e.Percentage
		}
		summary.TotalParticipants++
	}

	if summary.TotalParticipants > 0 {
		n := float64(summary.TotalParticipants)
		summary.AverageScore = sum / n
		summary.PassRate = float64(passed) / n * 100
	}
	return results, summary
}
