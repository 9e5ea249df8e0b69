package websocket

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
	EventError       Event = "error"
	EventLeaderboard Event = "leaderboard"
	EventPong        Event = "pong"
)

// LeaderboardUpdate carries the freshly ranked top performers for a test.
// Entries is the raw JSON published by the analytics worker.
type LeaderboardUpdate struct {
	Event   Event  `json:"event"`
	TestID  string `json:"test_id"`
	Entries any    `json:"entries"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
