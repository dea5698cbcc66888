// Package fakes holds in-memory collaborator doubles for directory tests.
package fakes

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Logger - a logger that swallows everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// PlayerStore - an in-memory stand-in for the user repository.
type PlayerStore struct {
	mu         sync.Mutex
	users      map[string]*entity.User
	loadDelays map[string]time.Duration
	updateErr  error
}

func NewPlayerStore(users ...*entity.User) *PlayerStore {
	store := &PlayerStore{
		users:      make(map[string]*entity.User),
		loadDelays: make(map[string]time.Duration),
	}
	for _, user := range users {
		store.users[user.ID] = &entity.User{ID: user.ID, Name: user.Name, Rating: user.Rating}
	}
	return store
}

// DelayLoad - makes the next Load call for the player sleep first, to model
// a slow store while other commands race ahead. Consumed once.
func (that *PlayerStore) DelayLoad(id string, delay time.Duration) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.loadDelays[id] = delay
}

func (that *PlayerStore) Load(_ context.Context, id string) (*entity.User, error) {
	that.mu.Lock()
	delay, delayed := that.loadDelays[id]
	if delayed {
		delete(that.loadDelays, id)
	}
	that.mu.Unlock()

	if delayed {
		time.Sleep(delay)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	user, ok := that.users[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &entity.User{ID: user.ID, Name: user.Name, Rating: user.Rating}, nil
}

func (that *PlayerStore) UpdateRating(_ context.Context, id string, newRating int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.updateErr != nil {
		return that.updateErr
	}

	user, ok := that.users[id]
	if !ok {
		return apperror.ErrNotFound
	}
	user.Rating = newRating
	return nil
}

// Rating - the currently stored rating, or -1 for an unknown player.
func (that *PlayerStore) Rating(id string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	user, ok := that.users[id]
	if !ok {
		return -1
	}
	return user.Rating
}

// FailUpdates - makes every subsequent UpdateRating call return err.
func (that *PlayerStore) FailUpdates(err error) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.updateErr = err
}

// GameArchive - an in-memory stand-in for the results archive.
type GameArchive struct {
	mu      sync.Mutex
	results []*entity.GameResult
}

func NewGameArchive() *GameArchive {
	return &GameArchive{}
}

func (that *GameArchive) SaveResult(_ context.Context, result *entity.GameResult) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.results = append(that.results, result)
	return nil
}

func (that *GameArchive) Results() []*entity.GameResult {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := make([]*entity.GameResult, len(that.results))
	copy(out, that.results)
	return out
}
