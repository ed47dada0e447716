package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"onsamuse/internal/cache"
	"onsamuse/internal/game"
	"onsamuse/internal/media"
	"onsamuse/internal/model"
	"onsamuse/internal/repository"
)

// DateLayout is the format of the daily partition key
const DateLayout = "2006-01-02"

// ZoomService runs the daily photo/guess/validate session
type ZoomService struct {
	sessions    cache.SessionCache
	leaderboard cache.LeaderboardCache
	missions    cache.MissionCache
	history     repository.HistoryRepo
	photos      *media.Processor
	roster      model.Roster
	loc         *time.Location
	broadcaster Broadcaster

	now  func() time.Time
	intn func(n int) int
}

// NewZoomService creates a new zoom service
func NewZoomService(
	sessions cache.SessionCache,
	leaderboard cache.LeaderboardCache,
	missions cache.MissionCache,
	roster model.Roster,
	loc *time.Location,
) *ZoomService {
	return &ZoomService{
		sessions:    sessions,
		leaderboard: leaderboard,
		missions:    missions,
		roster:      roster,
		loc:         loc,
		now:         time.Now,
		intn:        rand.IntN,
	}
}

// SetBroadcaster sets the broadcaster for change notifications
func (s *ZoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetHistory enables archiving of finished sessions
func (s *ZoomService) SetHistory(repo repository.HistoryRepo) {
	s.history = repo
}

// SetPhotoProcessor enables photo down-scaling and offloading
func (s *ZoomService) SetPhotoProcessor(p *media.Processor) {
	s.photos = p
}

// Today returns the date key of the current daily session
func (s *ZoomService) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

// Init returns today's session, creating it if needed, with the weekly ranking
func (s *ZoomService) Init(ctx context.Context, forceReset bool) (*model.SessionView, error) {
	date := s.Today()

	if forceReset {
		if err := s.sessions.Delete(ctx, date); err != nil {
			return nil, fmt.Errorf("failed to reset session: %w", err)
		}
		slog.Info("zoom session reset", "date", date)
	}

	var (
		session *model.ZoomSession
		ranking map[model.PlayerID]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.sessions.Get(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		ranking, err = s.leaderboard.Scores(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session == nil || session.Game.ID != model.ZoomGame.ID {
		created, err := s.createSession(ctx, date, session != nil)
		if err != nil {
			return nil, err
		}
		session = created
	}

	return &model.SessionView{ZoomSession: session, WeeklyRanking: ranking}, nil
}

func (s *ZoomService) createSession(ctx context.Context, date string, replace bool) (*model.ZoomSession, error) {
	lastAuthor, err := s.sessions.GetLastAuthor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last author: %w", err)
	}
	pool, err := s.missions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get missions: %w", err)
	}

	fresh := game.NewZoomSession(date, s.roster, lastAuthor, game.PickMission(pool, s.intn), s.now())

	if replace {
		if err := s.sessions.Replace(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	} else {
		created, err := s.sessions.Create(ctx, fresh)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		if !created {
			// the other player's init got there first
			existing, err := s.sessions.Get(ctx, date)
			if err != nil {
				return nil, fmt.Errorf("failed to load session: %w", err)
			}
			if existing != nil {
				return existing, nil
			}
			if err := s.sessions.Replace(ctx, fresh); err != nil {
				return nil, fmt.Errorf("failed to create session: %w", err)
			}
		}
	}

	slog.Info("zoom session created", "date", date, "author", fresh.SharedData.Author, "mission", fresh.SharedData.Mission)
	s.publish(MsgSessionUpdated, fresh)
	return fresh, nil
}

// Act applies one action to today's session. caller is the authenticated
// player, empty when the request carries no token.
func (s *ZoomService) Act(ctx context.Context, req *model.ActionRequest, caller model.PlayerID) (*model.ZoomSession, error) {
	payload := game.Payload{Image: req.Image, Guess: req.Guess, IsValid: req.IsValid}
	if err := game.Validate(req.Action, payload); err != nil {
		return nil, err
	}

	player, err := resolvePlayer(s.roster, req.Player, caller)
	if err != nil {
		return nil, err
	}

	date := s.Today()

	// dry run on the current document so a rejected action never uploads a photo
	current, err := s.sessions.Get(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if current == nil {
		return nil, ErrSessionNotFound
	}
	if req.Version != nil && *req.Version != current.Version {
		return nil, ErrVersionConflict
	}
	if _, err := game.Apply(current, req.Action, player, payload); err != nil {
		return nil, err
	}

	if req.Action == model.ActionSubmitPhoto && s.photos != nil {
		payload.Image, err = s.photos.Process(ctx, payload.Image)
		if err != nil {
			if errors.Is(err, media.ErrInvalidImage) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			return nil, err
		}
	}

	var outcome game.Outcome
	updated, err := s.sessions.Update(ctx, date, func(sess *model.ZoomSession) error {
		if req.Version != nil && sess.Version != *req.Version {
			return ErrVersionConflict
		}
		out, err := game.Apply(sess, req.Action, player, payload)
		outcome = out
		return err
	})
	switch {
	case errors.Is(err, cache.ErrSessionMissing):
		return nil, ErrSessionNotFound
	case errors.Is(err, cache.ErrConflict):
		return nil, ErrVersionConflict
	case err != nil:
		return nil, err
	}

	slog.Debug("zoom action applied", "date", date, "action", req.Action, "player", player, "version", updated.Version)

	if outcome.Finished {
		if err := s.finish(ctx, updated, outcome); err != nil {
			return nil, err
		}
	}

	s.publish(MsgSessionUpdated, updated)
	return updated, nil
}

// finish persists what lives outside the session document. The writes are
// independent; a failure after the session write is reported but not undone.
func (s *ZoomService) finish(ctx context.Context, sess *model.ZoomSession, outcome game.Outcome) error {
	if outcome.Scorer != "" {
		if _, err := s.leaderboard.Increment(ctx, outcome.Scorer, 1); err != nil {
			return fmt.Errorf("failed to update weekly ranking: %w", err)
		}
	}
	if err := s.sessions.SetLastAuthor(ctx, sess.SharedData.Author); err != nil {
		return fmt.Errorf("failed to save last author: %w", err)
	}

	if s.history != nil {
		record := &model.RoundRecord{
			ID:         model.ZoomGame.ID + ":" + sess.Date,
			Game:       model.ZoomGame.ID,
			Date:       sess.Date,
			FinishedAt: s.now(),
			Mission:    sess.SharedData.Mission,
			Author:     sess.SharedData.Author,
			Guesser:    sess.SharedData.Guesser,
			Valid:      outcome.Scorer != "",
			Scores:     make(map[model.PlayerID]int, len(sess.Players)),
		}
		if sess.SharedData.CurrentGuess != nil {
			record.Guess = *sess.SharedData.CurrentGuess
		}
		for p, score := range sess.Players {
			if score != nil {
				record.Scores[p] = score.Score
			}
		}
		if err := s.history.Save(ctx, record); err != nil {
			slog.Warn("failed to archive zoom session", "date", sess.Date, "error", err)
		}
	}
	return nil
}

// Missions returns the configured mission pool
func (s *ZoomService) Missions(ctx context.Context) ([]string, error) {
	return s.missions.List(ctx)
}

// AddMission appends a mission to the pool
func (s *ZoomService) AddMission(ctx context.Context, mission string) error {
	if mission == "" {
		return fmt.Errorf("%w: mission", ErrInvalidPayload)
	}
	return s.missions.Add(ctx, mission)
}

// RemoveMission removes every occurrence of mission from the pool
func (s *ZoomService) RemoveMission(ctx context.Context, mission string) (int, error) {
	if mission == "" {
		return 0, fmt.Errorf("%w: mission", ErrInvalidPayload)
	}
	return s.missions.Remove(ctx, mission)
}

func (s *ZoomService) publish(msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(model.ZoomGame.ID, msgType, payload)
	}
}
