package cache

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"onsamuse/internal/model"
)

// MemeCache handles the meme turn map and the votes-given map.
// Both are hashes keyed by player so each player's upsert is a single HSET.
type MemeCache interface {
	SetTurn(ctx context.Context, turn *model.MemeTurn) error
	GetTurns(ctx context.Context) (map[model.PlayerID]*model.MemeTurn, error)
	SetVote(ctx context.Context, voter model.PlayerID, score int) error
	GetVotesGiven(ctx context.Context) (map[model.PlayerID]int, error)
	Reset(ctx context.Context) error
}

type memeCache struct {
	client *redis.Client
}

// NewMemeCache creates a new meme cache
func NewMemeCache(client *redis.Client) MemeCache {
	return &memeCache{client: client}
}

func (c *memeCache) SetTurn(ctx context.Context, turn *model.MemeTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	return c.client.HSet(ctx, memeTurnsKey, string(turn.Player), data).Err()
}

func (c *memeCache) GetTurns(ctx context.Context) (map[model.PlayerID]*model.MemeTurn, error) {
	data, err := c.client.HGetAll(ctx, memeTurnsKey).Result()
	if err != nil {
		return nil, err
	}
	turns := make(map[model.PlayerID]*model.MemeTurn, len(data))
	for player, jsonStr := range data {
		var t model.MemeTurn
		if err := json.Unmarshal([]byte(jsonStr), &t); err != nil {
			continue
		}
		turns[model.PlayerID(player)] = &t
	}
	return turns, nil
}

func (c *memeCache) SetVote(ctx context.Context, voter model.PlayerID, score int) error {
	return c.client.HSet(ctx, memeVotesGivenKey, string(voter), score).Err()
}

func (c *memeCache) GetVotesGiven(ctx context.Context) (map[model.PlayerID]int, error) {
	data, err := c.client.HGetAll(ctx, memeVotesGivenKey).Result()
	if err != nil {
		return nil, err
	}
	votes := make(map[model.PlayerID]int, len(data))
	for voter, raw := range data {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		votes[model.PlayerID(voter)] = n
	}
	return votes, nil
}

func (c *memeCache) Reset(ctx context.Context) error {
	return c.client.Del(ctx, memeTurnsKey, memeVotesGivenKey, deprecatedMemeTurnsKey, deprecatedMemeVotesKey).Err()
}
