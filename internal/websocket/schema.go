package websocket

import "github.com/edventure/edventure-backend/internal/engine"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Frames (Server → Client) ───────────────────────────────────────

type Frame string

const (
	FrameSession Frame = "session"
	FrameError   Frame = "error"
	FramePong    Frame = "pong"
)

// SessionFrame pushes one live session event to the client.
type SessionFrame struct {
	Frame Frame        `json:"frame"`
	Event engine.Event `json:"event"`
}

type ErrorFrame struct {
	Frame Frame  `json:"frame"`
	Error string `json:"error"`
}

type PongFrame struct {
	Frame Frame `json:"frame"`
}
