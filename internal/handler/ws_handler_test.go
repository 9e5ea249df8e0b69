package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/engine"
	"github.com/prepstack/prepstack-backend/internal/middleware"
	"github.com/prepstack/prepstack-backend/internal/model"
	"github.com/prepstack/prepstack-backend/internal/service"
)

// newLeaderboardServer wires the stream handler against miniredis with a
// pre-stored analytics snapshot, so no database is needed.
func newLeaderboardServer(t *testing.T) (*httptest.Server, *redis.Client, string, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:            "ws-test-secret",
		JWTExpiry:            time.Hour,
		LeaderboardSize:      10,
		AnalyticsSnapshotTTL: time.Minute,
	}

	testID := uuid.New()
	snapshot := engine.TestAnalytics{
		TotalAttempts: 1,
		TopPerformers: []engine.RankedAttempt{
			{Rank: 1, AttemptID: uuid.New(), UserID: 7, Score: 5, Percentage: 100},
		},
	}
	payload, err := json.Marshal(&snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	key := config.CacheKey.AnalyticsSnapshotKey(testID.String())
	if err := rdb.Set(context.Background(), key, payload, 0).Err(); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	authService := service.NewAuthService(cfg, nil)
	token, err := authService.GenerateToken(&model.User{ID: 7, Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	analyticsService := service.NewAnalyticsService(cfg, nil, rdb)
	h := NewWSHandler(rdb, analyticsService, zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws/v1/tests/:test_id/leaderboard", middleware.RequireWSAuth(authService), h.LeaderboardStream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, rdb, token, testID
}

func dialStream(t *testing.T, srv *httptest.Server, testID uuid.UUID, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/ws/v1/tests/" + testID.String() + "/leaderboard?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLeaderboardStream_InitialSnapshot(t *testing.T) {
	srv, _, token, testID := newLeaderboardServer(t)
	conn := dialStream(t, srv, testID, token)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frame struct {
		Event  string `json:"event"`
		TestID string `json:"test_id"`
	}
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read initial frame: %v", err)
	}
	if frame.Event != "leaderboard" {
		t.Errorf("event = %q, want leaderboard", frame.Event)
	}
	if frame.TestID != testID.String() {
		t.Errorf("test_id = %q, want %q", frame.TestID, testID)
	}
}

// Pings must keep working while updates are being published: both frame
// kinds go over one connection, so pongs and relays have to share a
// single writer.
func TestLeaderboardStream_PingsInterleavedWithPublishes(t *testing.T) {
	srv, rdb, token, testID := newLeaderboardServer(t)
	conn := dialStream(t, srv, testID, token)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var first struct {
		Event string `json:"event"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial frame: %v", err)
	}
	if first.Event != "leaderboard" {
		t.Fatalf("first frame event = %q, want leaderboard", first.Event)
	}

	// Publisher mimics the analytics worker pushing refreshed boards.
	done := make(chan struct{})
	go func() {
		defer close(done)
		entries, _ := json.Marshal([]engine.RankedAttempt{
			{Rank: 1, UserID: 7, Score: 6, Percentage: 100},
		})
		channel := config.CacheKey.LeaderboardChannel(testID.String())
		for i := 0; i < 50; i++ {
			rdb.Publish(context.Background(), channel, entries)
			time.Sleep(5 * time.Millisecond)
		}
	}()

	pongs, boards := 0, 0
	deadline := time.Now().Add(10 * time.Second)
	for (pongs < 5 || boards < 1) && time.Now().Before(deadline) {
		if err := conn.WriteJSON(map[string]string{"action": "ping"}); err != nil {
			t.Fatalf("write ping: %v", err)
		}
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var frame struct {
			Event string `json:"event"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		switch frame.Event {
		case "pong":
			pongs++
		case "leaderboard":
			boards++
		default:
			t.Fatalf("unexpected event %q", frame.Event)
		}
	}
	<-done

	if pongs < 5 {
		t.Errorf("pongs = %d, want at least 5", pongs)
	}
	if boards < 1 {
		t.Errorf("leaderboard updates = %d, want at least 1", boards)
	}
}
