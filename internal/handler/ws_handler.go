package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/questify/questify-backend/internal/middleware"
	"github.com/questify/questify-backend/internal/service"
	ws "github.com/questify/questify-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live leaderboard updates over WebSocket.
type WSHandler struct {
	leaderboards *service.LeaderboardService
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(leaderboards *service.LeaderboardService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		leaderboards: leaderboards,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
	}
}

// LeaderboardStream godoc
// WS /ws/v1/quizzes/:quiz_id/leaderboard
// Upgrades to WebSocket, sends the current leaderboard as a snapshot, then
// pushes an update every time another completed attempt changes the ranking.
func (h *WSHandler) LeaderboardStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	quizID, ok := quizIDParam(c)
	if !ok {
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer raw.Close()
	conn := ws.NewConn(raw)

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("quiz_id", quizID.String()).
		Logger()
	wsLog.Info().Msg("Leaderboard subscriber connected")

	// The subscription outlives the HTTP request; it is torn down when the
	// socket closes.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.leaderboards.Subscribe(ctx, quizID)
	defer sub.Close()

	if err := h.push(ctx, conn, quizID, ws.EventSnapshot); err != nil {
		wsLog.Warn().Err(err).Msg("Initial snapshot failed")
		return
	}

	go func() {
		for range sub.Channel() {
			if err := h.push(ctx, conn, quizID, ws.EventUpdate); err != nil {
				wsLog.Debug().Err(err).Msg("Push failed, closing")
				cancel()
				return
			}
		}
	}()

	for {
		var msg ws.RequestEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

func (h *WSHandler) push(ctx context.Context, conn *ws.Conn, quizID uuid.UUID, event ws.Event) error {
	entries, err := h.leaderboards.QuizLeaderboard(ctx, quizID, service.QuizLeaderboardLimit)
	if err != nil {
		return err
	}
	return conn.WriteTyped(ws.LeaderboardMessage{
		Event:   event,
		QuizID:  quizID.String(),
		Entries: entries,
	})
}
