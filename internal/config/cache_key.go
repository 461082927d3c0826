package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizLeaderboardKey returns the cache key for a quiz's ranked leaderboard
func (r *CacheKeyStruct) QuizLeaderboardKey(quizID string, limit int) string {
	return fmt.Sprintf("leaderboard:quiz:%s:top:%d", quizID, limit)
}

// QuizLeaderboardPattern matches every cached leaderboard slice for a quiz
func (r *CacheKeyStruct) QuizLeaderboardPattern(quizID string) string {
	return fmt.Sprintf("leaderboard:quiz:%s:top:*", quizID)
}

// GlobalLeaderboardKey returns the cache key for the global leaderboard
func (r *CacheKeyStruct) GlobalLeaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:global:top:%d", limit)
}

// GlobalLeaderboardPattern matches every cached global leaderboard slice
func (r *CacheKeyStruct) GlobalLeaderboardPattern() string {
	return "leaderboard:global:top:*"
}

// QuizLeaderboardChannel returns the Redis PubSub channel name carrying
// leaderboard updates for one quiz
func (r *CacheKeyStruct) QuizLeaderboardChannel(quizID string) string {
	return fmt.Sprintf("leaderboard:quiz:%s:updates", quizID)
}

var CacheKey = NewCacheKeyStruct()
