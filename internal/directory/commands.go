package directory

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

// Command - one inbound event for the directory loop: a player intent, a
// transport disconnect, a timer expiration or the completion of an
// asynchronous collaborator call. Commands are handled strictly one at a
// time.
type Command interface{ isCommand() }

type JoinLobby struct {
	PlayerID string
	SocketID string
}

type CreateRoom struct {
	SocketID string
}

type JoinRoom struct {
	SocketID string
	RoomID   int64
}

type LeaveRoom struct {
	SocketID string
	RoomID   int64
}

type Ready struct {
	SocketID string
}

type StartGame struct {
	SocketID string
	RoomID   int64
}

type SubmitMove struct {
	SocketID string
	RoomID   int64
	Row      int
	Col      int
}

type Disconnect struct {
	SocketID string
}

// playerLoaded - completion of the player store load started by JoinLobby.
// The handler re-validates that the socket is still around before admitting.
type playerLoaded struct {
	SocketID string
	User     *entity.User
	Err      error
}

// turnExpired - a turn countdown fired. Gen identifies the armed countdown so
// an expiration that lost the race against a move is discarded.
type turnExpired struct {
	RoomID int64
	Gen    uint64
}

// ratingsApplied - completion of the post-game rating update. Updates for
// players no longer present are dropped.
type ratingsApplied struct {
	Player1 string
	Rating1 int
	Player2 string
	Rating2 int
}

func (JoinLobby) isCommand()      {}
func (CreateRoom) isCommand()     {}
func (JoinRoom) isCommand()       {}
func (LeaveRoom) isCommand()      {}
func (Ready) isCommand()          {}
func (StartGame) isCommand()      {}
func (SubmitMove) isCommand()     {}
func (Disconnect) isCommand()     {}
func (playerLoaded) isCommand()   {}
func (turnExpired) isCommand()    {}
func (ratingsApplied) isCommand() {}
