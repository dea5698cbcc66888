package directory

import (
	"context"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/rating"
)

const collaboratorTimeout = 10 * time.Second

// applyRatings - the rating gateway. Runs outside the event loop so clients
// never wait on persistence: it loads both ratings from the store, computes
// the new ones, persists them, and posts the reconciliation back into the
// loop. Failures are logged and abandoned, the game outcome already sent to
// clients is never rolled back.
func (that *Directory) applyRatings(player1, player2 string, outcome rating.Outcome) {
	log := that.logger.With("method", "applyRatings", "player1", player1, "player2", player2)

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	user1, err := that.store.Load(ctx, player1)
	if err != nil {
		log.Error("failed to load first player", "error", err)
		return
	}

	user2, err := that.store.Load(ctx, player2)
	if err != nil {
		log.Error("failed to load second player", "error", err)
		return
	}

	newRating1, newRating2 := that.formula.Compute(user1.Rating, user2.Rating, outcome)

	if err = that.store.UpdateRating(ctx, player1, newRating1); err != nil {
		log.Error("failed to update first player rating", "error", err)
		return
	}

	if err = that.store.UpdateRating(ctx, player2, newRating2); err != nil {
		log.Error("failed to update second player rating", "error", err)
		return
	}

	that.Dispatch(ratingsApplied{
		Player1: player1,
		Rating1: newRating1,
		Player2: player2,
		Rating2: newRating2,
	})

	log.Info("ratings updated", "rating1", newRating1, "rating2", newRating2)
}

// handleRatingsApplied - reconciles the in-memory records with the persisted
// ratings. A player who left the lobby while the update was in flight is
// simply skipped.
func (that *Directory) handleRatingsApplied(cmd ratingsApplied) {
	if player, ok := that.players[cmd.Player1]; ok {
		player.Rating = cmd.Rating1
	}

	if player, ok := that.players[cmd.Player2]; ok {
		player.Rating = cmd.Rating2
	}
}

// archiveResult - best-effort write of the finished game summary.
func (that *Directory) archiveResult(result *entity.GameResult) {
	if that.archive == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	if err := that.archive.SaveResult(ctx, result); err != nil {
		that.logger.Error("failed to archive game result", "roomID", result.RoomID, "error", err)
	}
}
