package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/directory"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	commands []directory.Command
}

func (that *fakeDispatcher) Dispatch(cmd directory.Command) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.commands = append(that.commands, cmd)
}

func (that *fakeDispatcher) all() []directory.Command {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := make([]directory.Command, len(that.commands))
	copy(out, that.commands)
	return out
}

// newTestServer - a websocket server behind httptest with a recording
// dispatcher, plus a connected client.
func newTestServer(t *testing.T) (*Server, *fakeDispatcher, *gorilla.Conn) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(logger)
	dispatcher := &fakeDispatcher{}
	server.SetDispatcher(dispatcher)

	httpServer := httptest.NewServer(http.HandlerFunc(server.serveWS))
	t.Cleanup(httpServer.Close)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, resp, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return server, dispatcher, conn
}

func send(t *testing.T, conn *gorilla.Conn, action string, payload any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: body}))
}

func TestServer_InboundRouting(t *testing.T) {
	t.Run("Translates messages into directory commands", func(t *testing.T) {
		_, dispatcher, conn := newTestServer(t)

		// When: the client walks through a session
		send(t, conn, "lobby:join", map[string]string{"player_id": "alice"})
		send(t, conn, "room:create", struct{}{})
		send(t, conn, "room:join", map[string]int64{"room_id": 7})
		send(t, conn, "game:move", map[string]int64{"room_id": 7, "row": 9, "col": 13})

		// Then: each message arrives as its command, in order, all carrying
		// the same socket id
		var commands []directory.Command
		require.Eventually(t, func() bool {
			commands = dispatcher.all()
			return len(commands) == 4
		}, 2*time.Second, 5*time.Millisecond)

		join, ok := commands[0].(directory.JoinLobby)
		require.True(t, ok)
		assert.Equal(t, "alice", join.PlayerID)
		assert.NotEmpty(t, join.SocketID)

		create, ok := commands[1].(directory.CreateRoom)
		require.True(t, ok)
		assert.Equal(t, join.SocketID, create.SocketID)

		joined, ok := commands[2].(directory.JoinRoom)
		require.True(t, ok)
		assert.Equal(t, int64(7), joined.RoomID)

		move, ok := commands[3].(directory.SubmitMove)
		require.True(t, ok)
		assert.Equal(t, 9, move.Row)
		assert.Equal(t, 13, move.Col)
	})

	t.Run("Ignores unknown actions and bad payloads", func(t *testing.T) {
		_, dispatcher, conn := newTestServer(t)

		send(t, conn, "game:teleport", struct{}{})
		require.NoError(t, conn.WriteJSON(Message{Action: "lobby:join", Payload: json.RawMessage(`"not an object"`)}))
		send(t, conn, "lobby:join", map[string]string{"player_id": "alice"})

		// Then: only the well-formed message got through
		require.Eventually(t, func() bool {
			return len(dispatcher.all()) == 1
		}, 2*time.Second, 5*time.Millisecond)
		_, ok := dispatcher.all()[0].(directory.JoinLobby)
		assert.True(t, ok)
	})

	t.Run("A join without a player id is rejected", func(t *testing.T) {
		_, dispatcher, conn := newTestServer(t)

		send(t, conn, "lobby:join", map[string]string{})

		assert.Never(t, func() bool {
			return len(dispatcher.all()) > 0
		}, 150*time.Millisecond, 5*time.Millisecond)
	})
}

func TestServer_Outbound(t *testing.T) {
	t.Run("SendTo reaches the addressed socket", func(t *testing.T) {
		server, dispatcher, conn := newTestServer(t)

		// Given: the socket id learned from the first command
		send(t, conn, "lobby:join", map[string]string{"player_id": "alice"})
		var socketID string
		require.Eventually(t, func() bool {
			commands := dispatcher.all()
			if len(commands) == 0 {
				return false
			}
			socketID = commands[0].(directory.JoinLobby).SocketID
			return true
		}, 2*time.Second, 5*time.Millisecond)

		// When: the directory side pushes an event to that socket
		server.SendTo(socketID, "lobby:joined", map[string]string{"player_id": "alice"})

		// Then: the client reads it as a tagged message
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var message Message
		require.NoError(t, conn.ReadJSON(&message))
		assert.Equal(t, "lobby:joined", message.Action)
		assert.JSONEq(t, `{"player_id":"alice"}`, string(message.Payload))
	})

	t.Run("Closing a socket posts a disconnect command", func(t *testing.T) {
		_, dispatcher, conn := newTestServer(t)

		require.NoError(t, conn.Close())

		require.Eventually(t, func() bool {
			for _, cmd := range dispatcher.all() {
				if _, ok := cmd.(directory.Disconnect); ok {
					return true
				}
			}
			return false
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("A socket dropping mid-delivery never panics the sender", func(t *testing.T) {
		server, dispatcher, conn := newTestServer(t)

		// Given: the client pointer looked up the way a broadcast does
		send(t, conn, "lobby:join", map[string]string{"player_id": "alice"})
		var socketID string
		require.Eventually(t, func() bool {
			commands := dispatcher.all()
			if len(commands) == 0 {
				return false
			}
			socketID = commands[0].(directory.JoinLobby).SocketID
			return true
		}, 2*time.Second, 5*time.Millisecond)

		server.mu.RLock()
		socket := server.clients[socketID]
		server.mu.RUnlock()
		require.NotNil(t, socket)

		// When: the socket unregisters before the delivery lands
		server.unregister(socketID)

		// Then: late deliveries are silent no-ops, not a send on a closed
		// channel
		require.NotPanics(t, func() {
			server.deliver(socket, "lobby:joined", map[string]string{"player_id": "alice"})
			server.SendTo(socketID, "lobby:joined", map[string]string{"player_id": "alice"})
			server.BroadcastToAll("lobby:players", map[string]string{})
		})
	})

	t.Run("Disconnect from the directory side drops the connection", func(t *testing.T) {
		server, dispatcher, conn := newTestServer(t)

		send(t, conn, "lobby:join", map[string]string{"player_id": "alice"})
		var socketID string
		require.Eventually(t, func() bool {
			commands := dispatcher.all()
			if len(commands) == 0 {
				return false
			}
			socketID = commands[0].(directory.JoinLobby).SocketID
			return true
		}, 2*time.Second, 5*time.Millisecond)

		// When: the directory evicts the socket
		server.Disconnect(socketID)

		// Then: the client's next read fails
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var message Message
		assert.Error(t, conn.ReadJSON(&message))
	})
}
