package entity

// Player - an in-memory record of a connected player. It lives from lobby
// join until the transport disconnects, and holds at most one live socket
// reference at any instant.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Rating   int    `json:"rating"`
	SocketID string `json:"-"`
	RoomID   int64  `json:"room_id,omitempty"`
	Ready    bool   `json:"ready,omitempty"`
}

func (that *Player) InRoom() bool {
	return that.RoomID != 0
}

// User - the persisted account record backing a player, loaded from and
// written to the player store.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}
