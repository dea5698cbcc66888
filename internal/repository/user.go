package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// DefaultRating - the rating assigned to a freshly created account.
const DefaultRating = 1200

type UserRepository interface {
	Save(ctx context.Context, user *entity.User) error
	Load(ctx context.Context, id string) (*entity.User, error)
	UpdateRating(ctx context.Context, id string, newRating int) error
	TopByRating(ctx context.Context, limit int) ([]*entity.User, error)
}

type userRepository struct {
	conn *sql.DB
}

func NewUserRepository(conn *sql.DB) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (that *userRepository) Save(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, name, rating) VALUES (?, ?, ?)`

	if user.Rating == 0 {
		user.Rating = DefaultRating
	}

	_, err := that.conn.ExecContext(ctx, query, user.ID, user.Name, user.Rating)
	if err != nil {
		return fmt.Errorf("can't save user: %w", err)
	}

	return nil
}

func (that *userRepository) Load(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, name, rating FROM users WHERE id = ?`

	var user entity.User

	err := that.conn.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return &user, nil
}

func (that *userRepository) UpdateRating(ctx context.Context, id string, newRating int) error {
	query := `UPDATE users SET rating = ? WHERE id = ?`

	result, err := that.conn.ExecContext(ctx, query, newRating, id)
	if err != nil {
		return fmt.Errorf("can't update rating: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't check update result: %w", err)
	}

	if affected == 0 {
		return apperror.ErrNotFound
	}

	return nil
}

func (that *userRepository) TopByRating(ctx context.Context, limit int) ([]*entity.User, error) {
	query := `SELECT id, name, rating FROM users ORDER BY rating DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't query leaderboard: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var user entity.User
		if err = rows.Scan(&user.ID, &user.Name, &user.Rating); err != nil {
			return nil, fmt.Errorf("can't scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read leaderboard rows: %w", err)
	}

	return users, nil
}
