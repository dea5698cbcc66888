package entity

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession - a session with a deterministic stone assignment: alice
// plays X and moves first.
func newTestSession() *Session {
	session := NewSession("alice", "bob")
	session.XPlayer, session.OPlayer = "alice", "bob"
	session.CurrentTurn = "alice"
	return session
}

func TestNewSession(t *testing.T) {
	t.Run("Assigns both stones and X moves first", func(t *testing.T) {
		// Given: a fresh session between two players
		session := NewSession("alice", "bob")

		// Then: the stones cover both players and X is on the clock
		assert.NotEqual(t, session.XPlayer, session.OPlayer)
		assert.Contains(t, []string{"alice", "bob"}, session.XPlayer)
		assert.Contains(t, []string{"alice", "bob"}, session.OPlayer)
		assert.Equal(t, session.XPlayer, session.CurrentTurn)
		assert.Equal(t, SessionInProgress, session.State)
		assert.Empty(t, session.Winner)
		assert.Empty(t, session.Loser)
	})
}

func TestSession_ApplyMove(t *testing.T) {
	t.Run("Alternates the turn after each accepted move", func(t *testing.T) {
		// Given: alice on the clock
		session := newTestSession()

		// When: both players move in turn
		require.Equal(t, MoveContinues, session.ApplyMove("alice", 0, 0))
		assert.Equal(t, "bob", session.CurrentTurn)

		require.Equal(t, MoveContinues, session.ApplyMove("bob", 1, 0))
		assert.Equal(t, "alice", session.CurrentTurn)

		// Then: the stones carry each player's mark
		assert.Equal(t, StoneX, session.Board.Cells[0][0])
		assert.Equal(t, StoneO, session.Board.Cells[1][0])
	})

	t.Run("Rejects a move out of turn", func(t *testing.T) {
		session := newTestSession()

		// When: bob moves while alice is on the clock
		result := session.ApplyMove("bob", 0, 0)

		// Then: nothing changed
		assert.Equal(t, MoveRejected, result)
		assert.Equal(t, "alice", session.CurrentTurn)
		assert.Equal(t, 0, session.Board.MoveCount)
	})

	t.Run("Rejects occupied and out-of-bounds cells", func(t *testing.T) {
		session := newTestSession()
		require.Equal(t, MoveContinues, session.ApplyMove("alice", 0, 0))

		assert.Equal(t, MoveRejected, session.ApplyMove("bob", 0, 0))
		assert.Equal(t, MoveRejected, session.ApplyMove("bob", -1, 5))
		assert.Equal(t, MoveRejected, session.ApplyMove("bob", 5, BoardSize))

		// Then: the turn did not pass
		assert.Equal(t, "bob", session.CurrentTurn)
		assert.Equal(t, 1, session.Board.MoveCount)
	})

	t.Run("Fifth stone in a row wins the session", func(t *testing.T) {
		// Given: alice builds row 9 while bob plays elsewhere
		session := newTestSession()
		for i := 0; i < 4; i++ {
			require.Equal(t, MoveContinues, session.ApplyMove("alice", 9, 9+i))
			require.Equal(t, MoveContinues, session.ApplyMove("bob", 0, i))
		}

		// When: alice places the fifth stone
		result := session.ApplyMove("alice", 9, 13)

		// Then: the session is won with winner and loser set together
		assert.Equal(t, MoveWon, result)
		assert.Equal(t, SessionWon, session.State)
		assert.Equal(t, "alice", session.Winner)
		assert.Equal(t, "bob", session.Loser)
		assert.Empty(t, session.CurrentTurn)
	})

	t.Run("No further moves are accepted after a terminal state", func(t *testing.T) {
		session := newTestSession()
		session.Forfeit("bob")

		assert.Equal(t, MoveRejected, session.ApplyMove("alice", 0, 0))
		assert.Equal(t, 0, session.Board.MoveCount)
	})

	t.Run("Filling the last cell without a five-run draws", func(t *testing.T) {
		// Given: every cell but one holds an X stone; with the exact-five
		// rule those long runs never won, so the board can fill up
		session := newTestSession()
		for r := range session.Board.Cells {
			for c := range session.Board.Cells[r] {
				session.Board.Cells[r][c] = StoneX
			}
		}
		session.Board.Cells[18][18] = StoneNone
		session.Board.MoveCount = BoardSize*BoardSize - 1

		// When: alice fills the final cell
		result := session.ApplyMove("alice", 18, 18)

		// Then: the session is drawn, not won
		assert.Equal(t, MoveDrawn, result)
		assert.Equal(t, SessionDrawn, session.State)
		assert.Empty(t, session.Winner)
		assert.Empty(t, session.Loser)
	})
}

func TestSession_Forfeit(t *testing.T) {
	t.Run("Remaining player wins when the opponent forfeits", func(t *testing.T) {
		session := newTestSession()

		session.Forfeit("alice")

		assert.Equal(t, SessionWon, session.State)
		assert.Equal(t, "bob", session.Winner)
		assert.Equal(t, "alice", session.Loser)
	})

	t.Run("Forfeit on a finished session changes nothing", func(t *testing.T) {
		session := newTestSession()
		session.Forfeit("alice")

		session.Forfeit("bob")

		assert.Equal(t, "bob", session.Winner)
		assert.Equal(t, "alice", session.Loser)
	})
}

func TestSession_ExpireTurn(t *testing.T) {
	t.Run("Player off the clock wins on expiry", func(t *testing.T) {
		// Given: alice is on the clock
		session := newTestSession()

		// When: her countdown expires
		session.ExpireTurn()

		// Then: bob wins
		assert.Equal(t, SessionWon, session.State)
		assert.Equal(t, "bob", session.Winner)
		assert.Equal(t, "alice", session.Loser)
	})
}

func TestSession_ArmTimer(t *testing.T) {
	t.Run("Re-arming cancels the previous countdown", func(t *testing.T) {
		// Given: a session with a pending countdown
		session := newTestSession()

		var mu sync.Mutex
		var fired []uint64
		fire := func(gen uint64) {
			mu.Lock()
			fired = append(fired, gen)
			mu.Unlock()
		}

		first := session.ArmTimer(50*time.Millisecond, fire)

		// When: a fresh countdown is armed before the first expires
		second := session.ArmTimer(20*time.Millisecond, fire)

		// Then: only the latest generation fires, exactly once
		require.Greater(t, second, first)
		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(fired) == 1 && fired[0] == second
		}, time.Second, 5*time.Millisecond)

		time.Sleep(100 * time.Millisecond)
		mu.Lock()
		assert.Equal(t, []uint64{second}, fired)
		mu.Unlock()
	})

	t.Run("CancelTimer stops the countdown and is idempotent", func(t *testing.T) {
		session := newTestSession()

		var mu sync.Mutex
		fired := 0
		session.ArmTimer(20*time.Millisecond, func(uint64) {
			mu.Lock()
			fired++
			mu.Unlock()
		})

		session.CancelTimer()
		session.CancelTimer()

		time.Sleep(60 * time.Millisecond)
		mu.Lock()
		assert.Zero(t, fired)
		mu.Unlock()
	})
}

func TestSession_StoneOf(t *testing.T) {
	session := newTestSession()

	assert.Equal(t, StoneX, session.StoneOf("alice"))
	assert.Equal(t, StoneO, session.StoneOf("bob"))
	assert.Equal(t, "bob", session.Opponent("alice"))
	assert.Equal(t, "alice", session.Opponent("bob"))
}
