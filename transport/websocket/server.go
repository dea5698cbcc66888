package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/directory"
)

// Dispatcher - the sink for inbound intents, normally the directory loop.
type Dispatcher interface {
	Dispatch(cmd directory.Command)
}

// Server - the websocket transport. It keeps the socket registry and the
// room groups, translates inbound messages into directory commands, and
// implements the directory's Transport interface for outbound events.
type Server struct {
	logger     *slog.Logger
	dispatcher Dispatcher
	upgrader   websocket.Upgrader

	handlers map[string]func(socketID string, payload json.RawMessage) error

	mu      sync.RWMutex
	clients map[string]*client
	groups  map[int64]map[string]struct{}
}

func New(logger *slog.Logger) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]func(string, json.RawMessage) error),
		clients:  make(map[string]*client),
		groups:   make(map[int64]map[string]struct{}),
	}

	server.handlers["lobby:join"] = server.handleLobbyJoin
	server.handlers["room:create"] = server.handleRoomCreate
	server.handlers["room:join"] = server.handleRoomJoin
	server.handlers["room:leave"] = server.handleRoomLeave
	server.handlers["room:ready"] = server.handleRoomReady
	server.handlers["game:start"] = server.handleGameStart
	server.handlers["game:move"] = server.handleGameMove

	return server
}

// SetDispatcher - binds the command sink. Called once during wiring, before
// Start; the server and the directory reference each other.
func (that *Server) SetDispatcher(dispatcher Dispatcher) {
	that.dispatcher = dispatcher
}

// Start - starts the websocket server and serves until the context is
// canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	socket := newClient(uuid.NewString(), conn)

	that.mu.Lock()
	that.clients[socket.id] = socket
	that.mu.Unlock()

	log.Info("socket connected", "socketID", socket.id)

	go socket.writePump()
	that.readLoop(socket)
}

// readLoop - processes inbound messages for one socket until it drops, then
// unregisters it and tells the directory.
func (that *Server) readLoop(socket *client) {
	log := that.logger.With("method", "readLoop", "socketID", socket.id)

	defer func() {
		that.unregister(socket.id)
		that.dispatcher.Dispatch(directory.Disconnect{SocketID: socket.id})
		log.Info("socket disconnected")
	}()

	for {
		var message Message
		if err := socket.conn.ReadJSON(&message); err != nil {
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			continue
		}

		if err := handler(socket.id, message.Payload); err != nil {
			log.Error("failed to handle message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) handleLobbyJoin(socketID string, payload json.RawMessage) error {
	var req joinLobbyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if req.PlayerID == "" {
		return errors.New("player_id is required")
	}

	that.dispatcher.Dispatch(directory.JoinLobby{PlayerID: req.PlayerID, SocketID: socketID})

	return nil
}

func (that *Server) handleRoomCreate(socketID string, _ json.RawMessage) error {
	that.dispatcher.Dispatch(directory.CreateRoom{SocketID: socketID})
	return nil
}

func (that *Server) handleRoomJoin(socketID string, payload json.RawMessage) error {
	var req roomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.dispatcher.Dispatch(directory.JoinRoom{SocketID: socketID, RoomID: req.RoomID})

	return nil
}

func (that *Server) handleRoomLeave(socketID string, payload json.RawMessage) error {
	var req roomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.dispatcher.Dispatch(directory.LeaveRoom{SocketID: socketID, RoomID: req.RoomID})

	return nil
}

func (that *Server) handleRoomReady(socketID string, _ json.RawMessage) error {
	that.dispatcher.Dispatch(directory.Ready{SocketID: socketID})
	return nil
}

func (that *Server) handleGameStart(socketID string, payload json.RawMessage) error {
	var req roomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.dispatcher.Dispatch(directory.StartGame{SocketID: socketID, RoomID: req.RoomID})

	return nil
}

func (that *Server) handleGameMove(socketID string, payload json.RawMessage) error {
	var req movePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.dispatcher.Dispatch(directory.SubmitMove{SocketID: socketID, RoomID: req.RoomID, Row: req.Row, Col: req.Col})

	return nil
}

// SendTo - delivers one event to one socket. Unknown sockets and full send
// buffers drop the message, the directory never blocks on a slow client.
func (that *Server) SendTo(socketID, event string, payload any) {
	that.mu.RLock()
	socket, ok := that.clients[socketID]
	that.mu.RUnlock()

	if !ok {
		return
	}

	that.deliver(socket, event, payload)
}

// BroadcastToRoom - delivers one event to every socket in the room's group.
func (that *Server) BroadcastToRoom(roomID int64, event string, payload any) {
	that.mu.RLock()
	members := make([]*client, 0, len(that.groups[roomID]))
	for socketID := range that.groups[roomID] {
		if socket, ok := that.clients[socketID]; ok {
			members = append(members, socket)
		}
	}
	that.mu.RUnlock()

	for _, socket := range members {
		that.deliver(socket, event, payload)
	}
}

// BroadcastToAll - delivers one event to every connected socket.
func (that *Server) BroadcastToAll(event string, payload any) {
	that.mu.RLock()
	sockets := make([]*client, 0, len(that.clients))
	for _, socket := range that.clients {
		sockets = append(sockets, socket)
	}
	that.mu.RUnlock()

	for _, socket := range sockets {
		that.deliver(socket, event, payload)
	}
}

func (that *Server) JoinGroup(socketID string, roomID int64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	group, ok := that.groups[roomID]
	if !ok {
		group = make(map[string]struct{})
		that.groups[roomID] = group
	}
	group[socketID] = struct{}{}
}

func (that *Server) LeaveGroup(socketID string, roomID int64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	group, ok := that.groups[roomID]
	if !ok {
		return
	}

	delete(group, socketID)
	if len(group) == 0 {
		delete(that.groups, roomID)
	}
}

// Disconnect - drops a socket on the directory's request, used for eviction.
func (that *Server) Disconnect(socketID string) {
	that.mu.RLock()
	socket, ok := that.clients[socketID]
	that.mu.RUnlock()

	if !ok {
		return
	}

	// Closing the connection ends the read loop, which unregisters the
	// socket and notifies the directory.
	_ = socket.conn.Close()
}

// deliver - sends under the read lock: unregister closes the send channel
// under the write lock, so a socket dropping mid-broadcast can never
// interleave between the registry check and the send. The select never
// blocks, so the lock is held only for the non-blocking enqueue.
func (that *Server) deliver(socket *client, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "event", event, "error", err)
		return
	}

	message := Message{Action: event, Payload: body}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if _, ok := that.clients[socket.id]; !ok {
		return
	}

	select {
	case socket.send <- message:
	default:
		that.logger.Warn("send buffer full, dropping event", "socketID", socket.id, "event", event)
	}
}

func (that *Server) unregister(socketID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	socket, ok := that.clients[socketID]
	if !ok {
		return
	}

	delete(that.clients, socketID)
	for roomID, group := range that.groups {
		delete(group, socketID)
		if len(group) == 0 {
			delete(that.groups, roomID)
		}
	}

	close(socket.send)
}
