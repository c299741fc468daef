package websocket

import "encoding/json"

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
	// EventEngine wraps one engine emission (data_updated or
	// analysis_complete) forwarded verbatim in Payload.
	EventEngine Event = "engine"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// EngineEventResponse forwards an engine message to the client. Payload
// is the JSON-encoded engine.Message as published on the events channel.
type EngineEventResponse struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
