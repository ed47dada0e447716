package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"onsamuse/internal/model"
)

// SessionCache stores the daily Zoom session documents
type SessionCache interface {
	Get(ctx context.Context, date string) (*model.ZoomSession, error)
	// Create stores s only if no session exists for its date
	Create(ctx context.Context, s *model.ZoomSession) (bool, error)
	// Replace overwrites whatever is stored for the date of s
	Replace(ctx context.Context, s *model.ZoomSession) error
	// Update runs fn on the stored session inside a WATCH transaction and
	// persists the result with a bumped version and a refreshed TTL
	Update(ctx context.Context, date string, fn func(s *model.ZoomSession) error) (*model.ZoomSession, error)
	Delete(ctx context.Context, date string) error

	GetLastAuthor(ctx context.Context) (model.PlayerID, error)
	SetLastAuthor(ctx context.Context, author model.PlayerID) error
}

type sessionCache struct {
	client     *redis.Client
	ttl        time.Duration
	maxRetries int
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client:     client,
		ttl:        ttl,
		maxRetries: 5,
	}
}

func (c *sessionCache) Get(ctx context.Context, date string) (*model.ZoomSession, error) {
	data, err := c.client.Get(ctx, dailySessionKey(date)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s model.ZoomSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *sessionCache) Create(ctx context.Context, s *model.ZoomSession) (bool, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, dailySessionKey(s.Date), data, c.ttl).Result()
}

func (c *sessionCache) Replace(ctx context.Context, s *model.ZoomSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dailySessionKey(s.Date), data, c.ttl).Err()
}

func (c *sessionCache) Update(ctx context.Context, date string, fn func(s *model.ZoomSession) error) (*model.ZoomSession, error) {
	key := dailySessionKey(date)
	var updated *model.ZoomSession

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrSessionMissing
		}
		if err != nil {
			return err
		}

		var s model.ZoomSession
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return err
		}
		if err := fn(&s); err != nil {
			return err
		}
		s.Version++
		s.UpdatedAt = time.Now()

		payload, err := json.Marshal(&s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		if err == nil {
			updated = &s
		}
		return err
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		err := c.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// someone else wrote the session between our read and write
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

func (c *sessionCache) Delete(ctx context.Context, date string) error {
	return c.client.Del(ctx, dailySessionKey(date)).Err()
}

func (c *sessionCache) GetLastAuthor(ctx context.Context) (model.PlayerID, error) {
	val, err := c.client.Get(ctx, zoomLastAuthorKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return model.PlayerID(val), err
}

func (c *sessionCache) SetLastAuthor(ctx context.Context, author model.PlayerID) error {
	return c.client.Set(ctx, zoomLastAuthorKey, string(author), 0).Err()
}
