package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"onsamuse/internal/model"
)

// LeaderboardCache handles the weekly score hash, accumulated across days
type LeaderboardCache interface {
	Increment(ctx context.Context, player model.PlayerID, by int) (int, error)
	Scores(ctx context.Context) (map[model.PlayerID]int, error)
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) Increment(ctx context.Context, player model.PlayerID, by int) (int, error) {
	n, err := c.client.HIncrBy(ctx, weeklyScoresKey, string(player), int64(by)).Result()
	return int(n), err
}

func (c *leaderboardCache) Scores(ctx context.Context) (map[model.PlayerID]int, error) {
	data, err := c.client.HGetAll(ctx, weeklyScoresKey).Result()
	if err != nil {
		return nil, err
	}
	scores := make(map[model.PlayerID]int, len(data))
	for player, raw := range data {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		scores[model.PlayerID(player)] = n
	}
	return scores, nil
}
