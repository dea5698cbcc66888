package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/rocketscienceinc/gomoku-backend/testing/suite"
)

func TestUserRepository_SaveAndLoad(t *testing.T) {
	ctx, conn := suite.NewSQLite(t)
	users := repository.NewUserRepository(conn)

	t.Run("Loads back a saved user", func(t *testing.T) {
		// Given: a saved user
		err := users.Save(ctx, &entity.User{ID: "alice", Name: "Alice", Rating: 1350})
		require.NoError(t, err)

		// When: loading by id
		loaded, err := users.Load(ctx, "alice")
		require.NoError(t, err)

		// Then: all fields round-trip
		assert.Equal(t, "alice", loaded.ID)
		assert.Equal(t, "Alice", loaded.Name)
		assert.Equal(t, 1350, loaded.Rating)
	})

	t.Run("Assigns the default rating to a new account", func(t *testing.T) {
		// Given: a user saved without a rating
		err := users.Save(ctx, &entity.User{ID: "bob", Name: "Bob"})
		require.NoError(t, err)

		// Then: the stored rating is the default
		loaded, err := users.Load(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, repository.DefaultRating, loaded.Rating)
	})

	t.Run("Loading an unknown user reports not found", func(t *testing.T) {
		_, err := users.Load(ctx, "ghost")

		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestUserRepository_UpdateRating(t *testing.T) {
	ctx, conn := suite.NewSQLite(t)
	users := repository.NewUserRepository(conn)

	err := users.Save(ctx, &entity.User{ID: "alice", Name: "Alice", Rating: 1200})
	require.NoError(t, err)

	t.Run("Persists the new rating", func(t *testing.T) {
		// When: updating the rating
		err := users.UpdateRating(ctx, "alice", 1208)
		require.NoError(t, err)

		// Then: the stored rating reflects the update
		loaded, err := users.Load(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, 1208, loaded.Rating)
	})

	t.Run("Updating an unknown user reports not found", func(t *testing.T) {
		err := users.UpdateRating(ctx, "ghost", 1500)

		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestUserRepository_TopByRating(t *testing.T) {
	ctx, conn := suite.NewSQLite(t)
	users := repository.NewUserRepository(conn)

	// Given: three saved users with distinct ratings
	for _, user := range []*entity.User{
		{ID: "alice", Name: "Alice", Rating: 1350},
		{ID: "bob", Name: "Bob", Rating: 1500},
		{ID: "carol", Name: "Carol", Rating: 1100},
	} {
		require.NoError(t, users.Save(ctx, user))
	}

	t.Run("Returns users ordered by rating descending", func(t *testing.T) {
		top, err := users.TopByRating(ctx, 10)
		require.NoError(t, err)

		require.Len(t, top, 3)
		assert.Equal(t, "bob", top[0].ID)
		assert.Equal(t, "alice", top[1].ID)
		assert.Equal(t, "carol", top[2].ID)
	})

	t.Run("Honors the limit", func(t *testing.T) {
		top, err := users.TopByRating(ctx, 1)
		require.NoError(t, err)

		require.Len(t, top, 1)
		assert.Equal(t, "bob", top[0].ID)
	})
}
