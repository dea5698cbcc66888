package websocket

import "encoding/json"

// Message - the wire envelope in both directions: an action (inbound intent
// or outbound event name) and an opaque payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type joinLobbyPayload struct {
	PlayerID string `json:"player_id"`
}

type roomPayload struct {
	RoomID int64 `json:"room_id"`
}

type movePayload struct {
	RoomID int64 `json:"room_id"`
	Row    int   `json:"row"`
	Col    int   `json:"col"`
}
