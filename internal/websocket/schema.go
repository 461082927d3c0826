package websocket

import "github.com/questify/questify-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventUpdate   Event = "update"
	EventPong     Event = "pong"
)

// LeaderboardMessage carries a ranked leaderboard to the client. The first
// message after connecting is a snapshot; every later one is an update
// triggered by a new completed attempt.
type LeaderboardMessage struct {
	Event   Event                    `json:"event"`
	QuizID  string                   `json:"quiz_id"`
	Entries []model.LeaderboardEntry `json:"entries"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
