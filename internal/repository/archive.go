package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const resultsKey = "game:results"

// ArchiveRepository - finished game summaries, newest first.
type ArchiveRepository interface {
	SaveResult(ctx context.Context, result *entity.GameResult) error
	RecentResults(ctx context.Context, limit int64) ([]*entity.GameResult, error)
}

type archiveRepository struct {
	client *redis.Client
}

func NewArchiveRepository(client *redis.Client) ArchiveRepository {
	return &archiveRepository{
		client: client,
	}
}

func (that *archiveRepository) SaveResult(ctx context.Context, result *entity.GameResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal game result: %w", err)
	}

	if err = that.client.LPush(ctx, resultsKey, resultJSON).Err(); err != nil {
		return fmt.Errorf("failed to save game result: %w", err)
	}

	return nil
}

func (that *archiveRepository) RecentResults(ctx context.Context, limit int64) ([]*entity.GameResult, error) {
	entries, err := that.client.LRange(ctx, resultsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read game results: %w", err)
	}

	results := make([]*entity.GameResult, 0, len(entries))
	for _, entry := range entries {
		var result entity.GameResult
		if err = json.Unmarshal([]byte(entry), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game result: %w", err)
		}
		results = append(results, &result)
	}

	return results, nil
}
