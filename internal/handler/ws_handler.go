package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/middleware"
	"github.com/prepstack/prepstack-backend/internal/service"
	ws "github.com/prepstack/prepstack-backend/internal/websocket"
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

// WSHandler handles the live leaderboard stream.
type WSHandler struct {
	rdb              *redis.Client
	analyticsService *service.AnalyticsService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, analyticsService *service.AnalyticsService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:              rdb,
		analyticsService: analyticsService,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// LeaderboardStream godoc
// WS /ws/v1/tests/:test_id/leaderboard
// Upgrades to WebSocket and pushes the leaderboard on connect, then
// relays every update published by the analytics worker.
func (h *WSHandler) LeaderboardStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("test_id", testID.String()).
		Logger()

	wsLog.Info().Msg("Leaderboard subscriber connected")

	// Initial snapshot so the client never renders an empty board.
	if current, err := h.analyticsService.GetLeaderboard(c.Request.Context(), testID); err == nil {
		ws.WriteTyped(conn, ws.LeaderboardUpdate{
			Event:   ws.EventLeaderboard,
			TestID:  testID.String(),
			Entries: current,
		})
	} else {
		wsLog.Warn().Err(err).Msg("initial leaderboard load failed")
		ws.WriteError(conn, "leaderboard unavailable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.rdb.Subscribe(ctx, config.CacheKey.LeaderboardChannel(testID.String()))
	defer sub.Close()

	// Reader goroutine: detects client disconnects and forwards ping
	// requests to the write loop. The connection permits only one
	// concurrent writer, so every write stays on the loop below.
	pings := make(chan struct{}, 8)
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				wsLog.Debug().Err(err).Msg("pong write failed, dropping subscriber")
				return
			}
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var entries json.RawMessage
			if err := json.Unmarshal([]byte(msg.Payload), &entries); err != nil {
				wsLog.Error().Err(err).Msg("invalid leaderboard payload")
				continue
			}
			if err := ws.WriteTyped(conn, ws.LeaderboardUpdate{
				Event:   ws.EventLeaderboard,
				TestID:  testID.String(),
				Entries: entries,
			}); err != nil {
				wsLog.Debug().Err(err).Msg("write failed, dropping subscriber")
				return
			}
		}
	}
}
