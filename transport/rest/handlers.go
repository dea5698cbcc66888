package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

type userRepo interface {
	TopByRating(ctx context.Context, limit int) ([]*entity.User, error)
}

type archiveRepo interface {
	RecentResults(ctx context.Context, limit int64) ([]*entity.GameResult, error)
}

type Handlers struct {
	logger  *slog.Logger
	users   userRepo
	archive archiveRepo
}

func NewHandlers(logger *slog.Logger, users userRepo, archive archiveRepo) *Handlers {
	return &Handlers{
		logger:  logger.With("component", "rest"),
		users:   users,
		archive: archive,
	}
}

func (that *Handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// LeaderboardHandler - top players by rating. Accepts an optional ?limit=.
func (that *Handlers) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "LeaderboardHandler")

	limit := parseLimit(r.URL.Query().Get("limit"))

	users, err := that.users.TopByRating(r.Context(), limit)
	if err != nil {
		log.Error("failed to load leaderboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, log, users)
}

// ResultsHandler - recent finished games, newest first.
func (that *Handlers) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ResultsHandler")

	limit := parseLimit(r.URL.Query().Get("limit"))

	results, err := that.archive.RecentResults(r.Context(), int64(limit))
	if err != nil {
		log.Error("failed to load results", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, log, results)
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLeaderboardSize
	}

	return min(limit, maxLeaderboardSize)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}
