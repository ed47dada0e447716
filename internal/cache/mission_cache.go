package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// MissionCache handles the Zoom photo prompt pool
type MissionCache interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, missions ...string) error
	Remove(ctx context.Context, mission string) (int, error)
	Replace(ctx context.Context, missions []string) error
}

type missionCache struct {
	client *redis.Client
}

// NewMissionCache creates a new mission cache
func NewMissionCache(client *redis.Client) MissionCache {
	return &missionCache{client: client}
}

func (c *missionCache) List(ctx context.Context) ([]string, error) {
	return c.client.LRange(ctx, zoomMissionsKey, 0, -1).Result()
}

func (c *missionCache) Add(ctx context.Context, missions ...string) error {
	if len(missions) == 0 {
		return nil
	}
	args := make([]interface{}, len(missions))
	for i, m := range missions {
		args[i] = m
	}
	return c.client.RPush(ctx, zoomMissionsKey, args...).Err()
}

func (c *missionCache) Remove(ctx context.Context, mission string) (int, error) {
	n, err := c.client.LRem(ctx, zoomMissionsKey, 0, mission).Result()
	return int(n), err
}

func (c *missionCache) Replace(ctx context.Context, missions []string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, zoomMissionsKey)
		if len(missions) > 0 {
			args := make([]interface{}, len(missions))
			for i, m := range missions {
				args[i] = m
			}
			pipe.RPush(ctx, zoomMissionsKey, args...)
		}
		return nil
	})
	return err
}
