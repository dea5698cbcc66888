package entity

import (
	"math/rand"
	"time"
)

const (
	SessionInProgress = "in_progress"
	SessionWon        = "won"
	SessionDrawn      = "drawn"
)

// MoveResult - the outcome of submitting one move to a session.
type MoveResult int

const (
	MoveRejected MoveResult = iota
	MoveContinues
	MoveWon
	MoveDrawn
)

// Session - one match between two players on a single board, together with
// the turn state machine and the pending turn timer. A session only exists
// once both players are committed; the owning room covers pre-game waiting.
//
// A session is mutated only from the directory event loop, so it carries no
// lock of its own.
type Session struct {
	Board *Board `json:"board"`

	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	XPlayer string `json:"x_player"`
	OPlayer string `json:"o_player"`

	CurrentTurn string `json:"current_turn"`
	Winner      string `json:"winner,omitempty"`
	Loser       string `json:"loser,omitempty"`
	State       string `json:"state"`

	timer    *time.Timer
	timerGen uint64
}

// NewSession - creates an in-progress session with a random stone
// assignment. X always moves first.
func NewSession(player1, player2 string) *Session {
	session := &Session{
		Board:   NewBoard(),
		Player1: player1,
		Player2: player2,
		State:   SessionInProgress,
	}

	if rand.Intn(2) == 0 { //nolint:gosec // stone assignment needs no crypto
		session.XPlayer, session.OPlayer = player1, player2
	} else {
		session.XPlayer, session.OPlayer = player2, player1
	}
	session.CurrentTurn = session.XPlayer

	return session
}

// ApplyMove - applies one move for the acting player. Rejections leave the
// board, the turn and the terminal state untouched. On acceptance the win
// check runs before the draw check, so a winning final stone reports a win.
func (that *Session) ApplyMove(playerID string, row, col int) MoveResult {
	if !that.IsInProgress() {
		return MoveRejected
	}

	if that.CurrentTurn != playerID {
		return MoveRejected
	}

	stone := that.StoneOf(playerID)
	if !that.Board.Place(stone, row, col) {
		return MoveRejected
	}

	if that.Board.CheckWin(row, col, stone) {
		that.finish(playerID, that.Opponent(playerID))
		return MoveWon
	}

	if that.Board.IsFull() {
		that.State = SessionDrawn
		that.CurrentTurn = ""
		that.CancelTimer()
		return MoveDrawn
	}

	that.CurrentTurn = that.Opponent(playerID)

	return MoveContinues
}

// Forfeit - ends the session with the leaving player as loser.
func (that *Session) Forfeit(leaverID string) {
	if !that.IsInProgress() {
		return
	}

	that.finish(that.Opponent(leaverID), leaverID)
}

// ExpireTurn - ends the session against the player whose countdown ran out.
func (that *Session) ExpireTurn() {
	if !that.IsInProgress() {
		return
	}

	onClock := that.CurrentTurn
	that.finish(that.Opponent(onClock), onClock)
}

func (that *Session) finish(winnerID, loserID string) {
	that.Winner = winnerID
	that.Loser = loserID
	that.State = SessionWon
	that.CurrentTurn = ""
	that.CancelTimer()
}

// ArmTimer - arms a fresh turn countdown, cancelling any previously armed one
// first so exactly one countdown is live per session. The returned generation
// is handed back to fire, letting the caller discard stale expirations.
func (that *Session) ArmTimer(timeout time.Duration, fire func(gen uint64)) uint64 {
	that.CancelTimer()

	that.timerGen++
	gen := that.timerGen
	that.timer = time.AfterFunc(timeout, func() {
		fire(gen)
	})

	return gen
}

// CancelTimer - stops the pending countdown if any. Safe to call from every
// teardown path, cancellation is idempotent.
func (that *Session) CancelTimer() {
	if that.timer == nil {
		return
	}

	that.timer.Stop()
	that.timer = nil
}

// TimerGen - the generation of the most recently armed countdown.
func (that *Session) TimerGen() uint64 {
	return that.timerGen
}

// StoneOf - the stone assigned to the given player for this session.
func (that *Session) StoneOf(playerID string) Stone {
	if playerID == that.XPlayer {
		return StoneX
	}
	return StoneO
}

// Opponent - the other player of the pair.
func (that *Session) Opponent(playerID string) string {
	if playerID == that.Player1 {
		return that.Player2
	}
	return that.Player1
}

func (that *Session) IsInProgress() bool {
	return that.State == SessionInProgress
}

func (that *Session) IsWon() bool {
	return that.State == SessionWon
}

func (that *Session) IsDrawn() bool {
	return that.State == SessionDrawn
}
