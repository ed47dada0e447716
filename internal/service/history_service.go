package service

import (
	"context"
	"fmt"

	"onsamuse/internal/model"
	"onsamuse/internal/repository"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryService reads archived rounds
type HistoryService struct {
	repo repository.HistoryRepo
}

// NewHistoryService creates a new history service
func NewHistoryService(repo repository.HistoryRepo) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns the most recent rounds of a game, newest first. An empty game lists all.
func (s *HistoryService) List(ctx context.Context, gameName string, limit int) ([]*model.RoundRecord, error) {
	switch gameName {
	case "", GameZoom, GameMeme:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, gameName)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.repo.List(ctx, gameName, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	if records == nil {
		records = []*model.RoundRecord{}
	}
	return records, nil
}
