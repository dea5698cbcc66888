package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/rating"
)

// PlayerStore - the persistence collaborator holding user accounts.
type PlayerStore interface {
	Load(ctx context.Context, id string) (*entity.User, error)
	UpdateRating(ctx context.Context, id string, newRating int) error
}

// RatingFormula - the external zero-sum rating formula.
type RatingFormula interface {
	Compute(rating1, rating2 int, outcome rating.Outcome) (int, int)
	Preview(rating1, rating2 int) (high, low, draw int)
}

// Transport - the duplex message layer the directory notifies through.
type Transport interface {
	SendTo(socketID, event string, payload any)
	BroadcastToRoom(roomID int64, event string, payload any)
	BroadcastToAll(event string, payload any)
	JoinGroup(socketID string, roomID int64)
	LeaveGroup(socketID string, roomID int64)
	Disconnect(socketID string)
}

// GameArchive - best-effort storage for finished game summaries.
type GameArchive interface {
	SaveResult(ctx context.Context, result *entity.GameResult) error
}

const commandBuffer = 64

// Directory - the process-wide registry of connected players and active
// rooms. All shared state lives behind a single event loop: handlers run one
// at a time, asynchronous collaborator calls post completion commands back
// into the loop, and every resumed handler re-validates the entities it is
// about to touch.
type Directory struct {
	logger *slog.Logger

	store     PlayerStore
	formula   RatingFormula
	transport Transport
	archive   GameArchive

	turnTimeout time.Duration

	commands chan Command
	done     chan struct{}

	players    map[string]*entity.Player // playerID -> record
	sockets    map[string]string         // socketID -> playerID, "" while the store load is in flight
	rooms      map[int64]*entity.Room
	nextRoomID int64
}

func New(logger *slog.Logger, store PlayerStore, formula RatingFormula, transport Transport, archive GameArchive, turnTimeout time.Duration) *Directory {
	return &Directory{
		logger: logger.With("component", "directory"),

		store:     store,
		formula:   formula,
		transport: transport,
		archive:   archive,

		turnTimeout: turnTimeout,

		commands: make(chan Command, commandBuffer),
		done:     make(chan struct{}),

		players: make(map[string]*entity.Player),
		sockets: make(map[string]string),
		rooms:   make(map[int64]*entity.Room),
	}
}

// Dispatch - queues a command for the event loop. Safe to call from any
// goroutine; commands arriving after shutdown are dropped.
func (that *Directory) Dispatch(cmd Command) {
	select {
	case that.commands <- cmd:
	case <-that.done:
	}
}

// Run - processes commands until the context is canceled. The loop is the
// only goroutine that mutates the player and room maps.
func (that *Directory) Run(ctx context.Context) {
	defer close(that.done)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-that.commands:
			that.handle(ctx, cmd)
		}
	}
}

func (that *Directory) handle(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case JoinLobby:
		that.handleJoinLobby(ctx, c)
	case playerLoaded:
		that.handlePlayerLoaded(c)
	case CreateRoom:
		that.handleCreateRoom(c)
	case JoinRoom:
		that.handleJoinRoom(c)
	case LeaveRoom:
		that.handleLeaveRoom(c)
	case Ready:
		that.handleReady(c)
	case StartGame:
		that.handleStartGame(c)
	case SubmitMove:
		that.handleSubmitMove(c)
	case turnExpired:
		that.handleTurnExpired(c)
	case Disconnect:
		that.handleDisconnect(c)
	case ratingsApplied:
		that.handleRatingsApplied(c)
	}
}

// handleJoinLobby - admits a socket for a player. When the player is already
// present on another socket, the existing socket is evicted first and the
// join is retried once the eviction has been applied.
func (that *Directory) handleJoinLobby(ctx context.Context, cmd JoinLobby) {
	log := that.logger.With("method", "handleJoinLobby", "playerID", cmd.PlayerID)

	if existing, ok := that.players[cmd.PlayerID]; ok {
		if existing.SocketID == cmd.SocketID {
			return
		}

		log.Info("evicting previous socket", "socketID", existing.SocketID)
		that.transport.SendTo(existing.SocketID, EventEvicted, ErrorPayload{Message: "connected from another client"})
		that.removePlayer(existing)
		that.transport.Disconnect(existing.SocketID)

		// Retry the join now that the eviction has been applied.
		go that.Dispatch(cmd)
		return
	}

	// Reserve the socket so a disconnect racing the store load is noticed.
	that.sockets[cmd.SocketID] = ""

	go func() {
		user, err := that.store.Load(ctx, cmd.PlayerID)
		that.Dispatch(playerLoaded{SocketID: cmd.SocketID, User: user, Err: err})
	}()
}

// handlePlayerLoaded - resumes the lobby join after the store load. The
// socket may have disconnected, asked for a different identity, or the
// player may have joined elsewhere while the load was in flight.
func (that *Directory) handlePlayerLoaded(cmd playerLoaded) {
	log := that.logger.With("method", "handlePlayerLoaded", "socketID", cmd.SocketID)

	// Admit only while the socket still holds the empty reservation: a later
	// join on the same socket replaces it, and this completion is stale.
	if playerID, reserved := that.sockets[cmd.SocketID]; !reserved || playerID != "" {
		log.Info("socket gone or claimed before load completed")
		return
	}

	if cmd.Err != nil {
		log.Error("failed to load player", "error", cmd.Err)
		delete(that.sockets, cmd.SocketID)
		that.transport.SendTo(cmd.SocketID, EventError, ErrorPayload{Message: "unknown player"})
		return
	}

	if existing, ok := that.players[cmd.User.ID]; ok && existing.SocketID != cmd.SocketID {
		// Another socket was admitted for this identity while the load was
		// in flight. Re-run the join so the admitted socket is evicted and
		// this one takes over, the same as any join against a connected
		// player.
		delete(that.sockets, cmd.SocketID)
		go that.Dispatch(JoinLobby{PlayerID: cmd.User.ID, SocketID: cmd.SocketID})
		return
	}

	player := &entity.Player{
		ID:       cmd.User.ID,
		Name:     cmd.User.Name,
		Rating:   cmd.User.Rating,
		SocketID: cmd.SocketID,
	}
	that.players[player.ID] = player
	that.sockets[cmd.SocketID] = player.ID

	that.transport.SendTo(cmd.SocketID, EventLobbyJoined, LobbyJoinedPayload{Player: player, Rooms: that.roomList()})
	that.transport.BroadcastToAll(EventLobbyPlayers, LobbyPlayersPayload{Players: that.playerList()})

	log.Info("player joined lobby", "playerID", player.ID)
}

func (that *Directory) handleCreateRoom(cmd CreateRoom) {
	player := that.playerBySocket(cmd.SocketID)
	if player == nil || player.InRoom() {
		return
	}

	that.nextRoomID++
	room := entity.NewRoom(that.nextRoomID)
	room.AddPlayer(player)
	that.rooms[room.ID] = room

	that.transport.JoinGroup(cmd.SocketID, room.ID)
	that.transport.SendTo(cmd.SocketID, EventRoomCreated, RoomPayload{Room: room})
	that.transport.BroadcastToAll(EventRoomList, RoomListPayload{Rooms: that.roomList()})

	that.logger.Info("room created", "roomID", room.ID, "playerID", player.ID)
}

func (that *Directory) handleJoinRoom(cmd JoinRoom) {
	player := that.playerBySocket(cmd.SocketID)
	if player == nil || player.InRoom() {
		return
	}

	room, ok := that.rooms[cmd.RoomID]
	if !ok {
		return
	}

	if room.IsFull() {
		that.transport.SendTo(cmd.SocketID, EventRoomFull, RoomFullPayload{RoomID: room.ID})
		return
	}

	room.AddPlayer(player)
	that.transport.JoinGroup(cmd.SocketID, room.ID)
	that.transport.BroadcastToRoom(room.ID, EventRoomJoined, RoomMemberPayload{RoomID: room.ID, Player: player})
	that.transport.BroadcastToAll(EventRoomList, RoomListPayload{Rooms: that.roomList()})

	if room.IsFull() {
		that.previewRating(room)
	}
}

func (that *Directory) handleLeaveRoom(cmd LeaveRoom) {
	player := that.playerBySocket(cmd.SocketID)
	if player == nil {
		return
	}

	room, ok := that.rooms[cmd.RoomID]
	if !ok || !room.HasPlayer(player.ID) {
		return
	}

	that.detachFromRoom(player, room)
}

func (that *Directory) handleReady(cmd Ready) {
	player := that.playerBySocket(cmd.SocketID)
	if player == nil || !player.InRoom() {
		return
	}

	player.Ready = true
	that.transport.BroadcastToRoom(player.RoomID, EventRoomReady, RoomMemberPayload{RoomID: player.RoomID, Player: player})
}

func (that *Directory) handleStartGame(cmd StartGame) {
	player := that.playerBySocket(cmd.SocketID)
	if player == nil {
		return
	}

	room, ok := that.rooms[cmd.RoomID]
	if !ok || !room.HasPlayer(player.ID) || !room.IsFull() || room.HasSession() {
		return
	}

	session := entity.NewSession(room.Players[0].ID, room.Players[1].ID)
	room.Session = session

	for _, player := range room.Players {
		that.transport.SendTo(player.SocketID, EventGameStarted, GameStartedPayload{
			RoomID: room.ID,
			Stone:  session.StoneOf(player.ID),
			Turn:   session.CurrentTurn,
		})
	}

	that.armTurnTimer(room)
	that.broadcastTurn(room)

	that.logger.Info("game started", "roomID", room.ID, "xPlayer", session.XPlayer, "oPlayer", session.OPlayer)
}

func (that *Directory) handleSubmitMove(cmd SubmitMove) {
	player := that.playerBySocket(cmd.SocketID)
	if player == nil {
		return
	}

	room, ok := that.rooms[cmd.RoomID]
	if !ok || !room.HasSession() {
		return
	}

	session := room.Session
	stone := session.StoneOf(player.ID)

	result := session.ApplyMove(player.ID, cmd.Row, cmd.Col)
	if result == entity.MoveRejected {
		// The caller simply does not advance.
		return
	}

	that.transport.BroadcastToRoom(room.ID, EventGameMove, GameMovePayload{
		RoomID:   room.ID,
		PlayerID: player.ID,
		Stone:    stone,
		Row:      cmd.Row,
		Col:      cmd.Col,
	})

	switch result {
	case entity.MoveContinues:
		that.armTurnTimer(room)
		that.broadcastTurn(room)
	case entity.MoveWon, entity.MoveDrawn:
		that.finishSession(room)
	case entity.MoveRejected:
	}
}

// handleTurnExpired - a countdown fired. The generation check discards a fire
// that lost the race against a move or a teardown.
func (that *Directory) handleTurnExpired(cmd turnExpired) {
	room, ok := that.rooms[cmd.RoomID]
	if !ok || !room.HasSession() {
		return
	}

	session := room.Session
	if !session.IsInProgress() || session.TimerGen() != cmd.Gen {
		return
	}

	that.logger.Info("turn timed out", "roomID", room.ID, "playerID", session.CurrentTurn)

	session.ExpireTurn()
	that.finishSession(room)
}

func (that *Directory) handleDisconnect(cmd Disconnect) {
	playerID, ok := that.sockets[cmd.SocketID]
	if !ok {
		return
	}

	if playerID == "" {
		// Load still in flight, drop the reservation.
		delete(that.sockets, cmd.SocketID)
		return
	}

	player, ok := that.players[playerID]
	if !ok {
		delete(that.sockets, cmd.SocketID)
		return
	}

	that.logger.Info("player disconnected", "playerID", playerID)
	that.removePlayer(player)
}

// removePlayer - full lobby leave: forfeits an active session, detaches from
// the room, and drops the in-memory record.
func (that *Directory) removePlayer(player *entity.Player) {
	if room, ok := that.rooms[player.RoomID]; ok && room.HasPlayer(player.ID) {
		that.detachFromRoom(player, room)
	}

	delete(that.sockets, player.SocketID)
	delete(that.players, player.ID)

	that.transport.BroadcastToAll(EventLobbyPlayers, LobbyPlayersPayload{Players: that.playerList()})
}

// detachFromRoom - removes the player from the room, treating a departure
// mid-session as a forfeit. An emptied room is deleted.
func (that *Directory) detachFromRoom(player *entity.Player, room *entity.Room) {
	if room.HasSession() && room.Session.IsInProgress() && room.IsFull() {
		room.Session.Forfeit(player.ID)
		that.finishSession(room)
	}

	room.RemovePlayer(player.ID)
	that.transport.LeaveGroup(player.SocketID, room.ID)

	if room.IsEmpty() {
		delete(that.rooms, room.ID)
	} else {
		room.ClearSession()
		that.transport.BroadcastToRoom(room.ID, EventRoomLeft, RoomMemberPayload{RoomID: room.ID, Player: player})
	}

	that.transport.BroadcastToAll(EventRoomList, RoomListPayload{Rooms: that.roomList()})
}

// finishSession - terminal path shared by win, draw, timeout and forfeit.
// Clients are notified first; the rating update and the archive write run
// asynchronously afterwards and tolerate the room or players being gone by
// the time they complete.
func (that *Directory) finishSession(room *entity.Room) {
	session := room.Session
	if session == nil || session.IsInProgress() {
		return
	}

	var outcome rating.Outcome
	switch {
	case session.IsDrawn():
		that.transport.BroadcastToRoom(room.ID, EventGameDrawn, GameDrawnPayload{RoomID: room.ID})
		outcome = rating.OutcomeDraw
	case session.Winner == session.Player1:
		that.transport.BroadcastToRoom(room.ID, EventGameWon, GameWonPayload{RoomID: room.ID, Winner: session.Winner, Loser: session.Loser})
		outcome = rating.OutcomePlayer1Win
	default:
		that.transport.BroadcastToRoom(room.ID, EventGameWon, GameWonPayload{RoomID: room.ID, Winner: session.Winner, Loser: session.Loser})
		outcome = rating.OutcomePlayer2Win
	}

	result := &entity.GameResult{
		RoomID:    room.ID,
		Player1:   session.Player1,
		Player2:   session.Player2,
		Winner:    session.Winner,
		Loser:     session.Loser,
		Drawn:     session.IsDrawn(),
		MoveCount: session.Board.MoveCount,
	}

	room.ClearSession()

	go that.applyRatings(session.Player1, session.Player2, outcome)
	go that.archiveResult(result)
}

// previewRating - informs both occupants of the rating swing each outcome
// would cost or gain them. Purely informational.
func (that *Directory) previewRating(room *entity.Room) {
	first, second := room.Players[0], room.Players[1]

	high, low, draw := that.formula.Preview(first.Rating, second.Rating)

	favored, underdog := first, second
	if second.Rating > first.Rating {
		favored, underdog = second, first
	}

	that.transport.SendTo(favored.SocketID, EventRatingView, RatingPreviewPayload{
		RoomID: room.ID,
		Win:    low,
		Lose:   -high,
		Draw:   -draw,
	})
	that.transport.SendTo(underdog.SocketID, EventRatingView, RatingPreviewPayload{
		RoomID: room.ID,
		Win:    high,
		Lose:   -low,
		Draw:   draw,
	})
}

// armTurnTimer - arms the room's countdown for the player now on the clock.
// Arming cancels the previous countdown inside the same handling step, so a
// move and a timeout can never both take effect for one turn.
func (that *Directory) armTurnTimer(room *entity.Room) {
	roomID := room.ID
	room.Session.ArmTimer(that.turnTimeout, func(gen uint64) {
		that.Dispatch(turnExpired{RoomID: roomID, Gen: gen})
	})
}

func (that *Directory) broadcastTurn(room *entity.Room) {
	that.transport.BroadcastToRoom(room.ID, EventGameTurn, GameTurnPayload{
		RoomID:           room.ID,
		PlayerID:         room.Session.CurrentTurn,
		SecondsRemaining: int(that.turnTimeout / time.Second),
	})
}

func (that *Directory) playerBySocket(socketID string) *entity.Player {
	playerID, ok := that.sockets[socketID]
	if !ok || playerID == "" {
		return nil
	}

	return that.players[playerID]
}

func (that *Directory) roomList() []*entity.Room {
	rooms := make([]*entity.Room, 0, len(that.rooms))
	for _, room := range that.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (that *Directory) playerList() []*entity.Player {
	players := make([]*entity.Player, 0, len(that.players))
	for _, player := range that.players {
		players = append(players, player)
	}
	return players
}
