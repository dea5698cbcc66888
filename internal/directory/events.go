package directory

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

// Outbound event names produced by the directory.
const (
	EventLobbyJoined  = "lobby:joined"
	EventLobbyPlayers = "lobby:players"
	EventRoomList     = "room:list"
	EventRoomCreated  = "room:created"
	EventRoomJoined   = "room:joined"
	EventRoomFull     = "room:full"
	EventRoomLeft     = "room:left"
	EventRoomReady    = "room:ready"
	EventGameStarted  = "game:started"
	EventGameMove     = "game:move"
	EventGameTurn     = "game:turn"
	EventGameWon      = "game:won"
	EventGameDrawn    = "game:drawn"
	EventRatingView   = "rating:preview"
	EventEvicted      = "session:evicted"
	EventError        = "error"
)

type LobbyJoinedPayload struct {
	Player *entity.Player `json:"player"`
	Rooms  []*entity.Room `json:"rooms"`
}

type LobbyPlayersPayload struct {
	Players []*entity.Player `json:"players"`
}

type RoomListPayload struct {
	Rooms []*entity.Room `json:"rooms"`
}

type RoomPayload struct {
	Room *entity.Room `json:"room"`
}

type RoomMemberPayload struct {
	RoomID int64          `json:"room_id"`
	Player *entity.Player `json:"player"`
}

type RoomFullPayload struct {
	RoomID int64 `json:"room_id"`
}

type GameStartedPayload struct {
	RoomID int64        `json:"room_id"`
	Stone  entity.Stone `json:"stone"`
	Turn   string       `json:"turn"`
}

type GameMovePayload struct {
	RoomID   int64        `json:"room_id"`
	PlayerID string       `json:"player_id"`
	Stone    entity.Stone `json:"stone"`
	Row      int          `json:"row"`
	Col      int          `json:"col"`
}

type GameTurnPayload struct {
	RoomID           int64  `json:"room_id"`
	PlayerID         string `json:"player_id"`
	SecondsRemaining int    `json:"seconds_remaining"`
}

type GameWonPayload struct {
	RoomID int64  `json:"room_id"`
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

type GameDrawnPayload struct {
	RoomID int64 `json:"room_id"`
}

// RatingPreviewPayload - the rating swing one player would incur for each
// outcome of the pairing, sent when a room fills up.
type RatingPreviewPayload struct {
	RoomID int64 `json:"room_id"`
	Win    int   `json:"win"`
	Lose   int   `json:"lose"`
	Draw   int   `json:"draw"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
