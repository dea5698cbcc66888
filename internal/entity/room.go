package entity

// RoomCapacity - a room holds at most two players.
const RoomCapacity = 2

// Room - a matchmaking container: up to two players and, while playing, one
// session. Room identifiers grow monotonically for the process lifetime and
// are never reused.
type Room struct {
	ID      int64     `json:"id"`
	Players []*Player `json:"players"`
	Session *Session  `json:"-"`
}

func NewRoom(id int64) *Room {
	return &Room{
		ID:      id,
		Players: make([]*Player, 0, RoomCapacity),
	}
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= RoomCapacity
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) HasSession() bool {
	return that.Session != nil
}

// AddPlayer - appends the player, refusing once the room is full.
func (that *Room) AddPlayer(player *Player) bool {
	if that.IsFull() {
		return false
	}

	that.Players = append(that.Players, player)
	player.RoomID = that.ID

	return true
}

// RemovePlayer - removes the player from the ordered list, keeping order for
// the remaining occupant.
func (that *Room) RemovePlayer(playerID string) {
	for i, player := range that.Players {
		if player.ID != playerID {
			continue
		}

		player.RoomID = 0
		player.Ready = false
		that.Players = append(that.Players[:i], that.Players[i+1:]...)
		return
	}
}

func (that *Room) HasPlayer(playerID string) bool {
	for _, player := range that.Players {
		if player.ID == playerID {
			return true
		}
	}
	return false
}

// ClearSession - drops the session after cancelling its pending timer.
func (that *Room) ClearSession() {
	if that.Session == nil {
		return
	}

	that.Session.CancelTimer()
	that.Session = nil
}

// GameResult - the archived summary of a finished game.
type GameResult struct {
	RoomID    int64  `json:"room_id"`
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
	Winner    string `json:"winner,omitempty"`
	Loser     string `json:"loser,omitempty"`
	Drawn     bool   `json:"drawn"`
	MoveCount int    `json:"move_count"`
}
