package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"onsamuse/internal/model"
)

// LegacyZoomCache handles the single-round Zoom flow stored as three flat keys
type LegacyZoomCache interface {
	Get(ctx context.Context) (*model.LegacyZoomView, error)
	CreateRound(ctx context.Context, image, author string) error
	SetGuess(ctx context.Context, guess string) error
	Delete(ctx context.Context) error
}

type legacyZoomCache struct {
	client *redis.Client
}

// NewLegacyZoomCache creates a new legacy zoom cache
func NewLegacyZoomCache(client *redis.Client) LegacyZoomCache {
	return &legacyZoomCache{client: client}
}

func (c *legacyZoomCache) Get(ctx context.Context) (*model.LegacyZoomView, error) {
	vals, err := c.client.MGet(ctx, legacyZoomImageKey, legacyZoomAuthorKey, legacyZoomGuessKey).Result()
	if err != nil {
		return nil, err
	}
	view := &model.LegacyZoomView{
		Image:        stringOrNil(vals[0]),
		Author:       stringOrNil(vals[1]),
		CurrentGuess: stringOrNil(vals[2]),
	}
	view.HasPendingGame = view.Image != nil
	return view, nil
}

func (c *legacyZoomCache) CreateRound(ctx context.Context, image, author string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, legacyZoomImageKey, image, 0)
		pipe.Set(ctx, legacyZoomAuthorKey, author, 0)
		pipe.Del(ctx, legacyZoomGuessKey)
		return nil
	})
	return err
}

func (c *legacyZoomCache) SetGuess(ctx context.Context, guess string) error {
	return c.client.Set(ctx, legacyZoomGuessKey, guess, 0).Err()
}

func (c *legacyZoomCache) Delete(ctx context.Context) error {
	return c.client.Del(ctx, legacyZoomImageKey, legacyZoomAuthorKey, legacyZoomGuessKey).Err()
}

func stringOrNil(v interface{}) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}
