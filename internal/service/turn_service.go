package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"onsamuse/internal/cache"
	"onsamuse/internal/game"
	"onsamuse/internal/media"
	"onsamuse/internal/model"
	"onsamuse/internal/repository"
)

// Game names accepted by Reset
const (
	GameZoom = "zoom"
	GameMeme = "meme"
)

// TurnService runs the meme duel and the flat-key zoom round behind /game-turn
type TurnService struct {
	memes       cache.MemeCache
	legacy      cache.LegacyZoomCache
	history     repository.HistoryRepo
	photos      *media.Processor
	roster      model.Roster
	loc         *time.Location
	broadcaster Broadcaster

	now func() time.Time
}

// NewTurnService creates a new turn service
func NewTurnService(memes cache.MemeCache, legacy cache.LegacyZoomCache, roster model.Roster, loc *time.Location) *TurnService {
	return &TurnService{
		memes:  memes,
		legacy: legacy,
		roster: roster,
		loc:    loc,
		now:    time.Now,
	}
}

// SetBroadcaster sets the broadcaster for change notifications
func (s *TurnService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetHistory enables archiving of completed meme rounds
func (s *TurnService) SetHistory(repo repository.HistoryRepo) {
	s.history = repo
}

// SetPhotoProcessor enables photo down-scaling for the flat-key zoom round
func (s *TurnService) SetPhotoProcessor(p *media.Processor) {
	s.photos = p
}

// Status assembles the flat-key zoom view, the meme turns and the received votes
func (s *TurnService) Status(ctx context.Context) (*model.TurnStatus, error) {
	zoom, err := s.legacy.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load zoom round: %w", err)
	}
	turns, given, err := s.loadRound(ctx)
	if err != nil {
		return nil, err
	}

	return &model.TurnStatus{
		Zoom:  *zoom,
		Memes: sortedTurns(turns),
		Votes: game.ReceivedVotes(s.roster, given),
		Phase: game.MemePhase(s.roster, turns, given),
	}, nil
}

func (s *TurnService) loadRound(ctx context.Context) (map[model.PlayerID]*model.MemeTurn, map[model.PlayerID]int, error) {
	turns, err := s.memes.GetTurns(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load meme turns: %w", err)
	}
	given, err := s.memes.GetVotesGiven(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load meme votes: %w", err)
	}
	return turns, given, nil
}

// sortedTurns orders turns by submission time, player id breaking ties
func sortedTurns(turns map[model.PlayerID]*model.MemeTurn) []*model.MemeTurn {
	list := make([]*model.MemeTurn, 0, len(turns))
	for _, t := range turns {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SubmittedAt != list[j].SubmittedAt {
			return list[i].SubmittedAt < list[j].SubmittedAt
		}
		return list[i].Player < list[j].Player
	})
	return list
}

// CreateZoomRound starts a flat-key zoom round, clearing any prior guess
func (s *TurnService) CreateZoomRound(ctx context.Context, image, author string) error {
	if image == "" || author == "" {
		return fmt.Errorf("%w: image and author are required", ErrInvalidPayload)
	}
	if s.photos != nil {
		processed, err := s.photos.Process(ctx, image)
		if err != nil {
			if errors.Is(err, media.ErrInvalidImage) {
				return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			return err
		}
		image = processed
	}
	if err := s.legacy.CreateRound(ctx, image, author); err != nil {
		return fmt.Errorf("failed to create zoom round: %w", err)
	}
	s.publish(GameZoom, MsgTurnsUpdated, nil)
	return nil
}

// SubmitZoomGuess stores the guess for the flat-key zoom round
func (s *TurnService) SubmitZoomGuess(ctx context.Context, guess string) error {
	if guess == "" {
		return fmt.Errorf("%w: guess is required", ErrInvalidPayload)
	}
	if err := s.legacy.SetGuess(ctx, guess); err != nil {
		return fmt.Errorf("failed to save guess: %w", err)
	}
	s.publish(GameZoom, MsgTurnsUpdated, nil)
	return nil
}

// SubmitMemeTurn upserts a player's turn; resubmission overwrites. caller is
// the authenticated player, empty when the request carries no token.
func (s *TurnService) SubmitMemeTurn(ctx context.Context, caller, claimed model.PlayerID, memes []model.MemeInstance) (*model.MemeTurn, error) {
	player, err := resolvePlayer(s.roster, claimed, caller)
	if err != nil {
		return nil, err
	}
	if player == "" {
		return nil, fmt.Errorf("%w: player is required", ErrUnknownPlayer)
	}
	if len(memes) == 0 {
		return nil, fmt.Errorf("%w: memes are required", ErrInvalidPayload)
	}

	for i := range memes {
		if memes[i].InstanceID == "" {
			memes[i].InstanceID = uuid.New().String()
		}
		if memes[i].Inputs == nil {
			memes[i].Inputs = map[string]string{}
		}
		if memes[i].Zones == nil {
			memes[i].Zones = []model.MemeZone{}
		}
	}

	turn := &model.MemeTurn{
		Type:        model.MemeTurnType,
		Player:      player,
		Memes:       memes,
		SubmittedAt: s.now().UnixMilli(),
	}
	if err := s.memes.SetTurn(ctx, turn); err != nil {
		return nil, fmt.Errorf("failed to save meme turn: %w", err)
	}

	slog.Debug("meme turn submitted", "player", player, "memes", len(memes))
	s.publish(GameMeme, MsgTurnsUpdated, turn)
	return turn, nil
}

// SubmitMemeVote records the total a voter gave to the opponent's memes
func (s *TurnService) SubmitMemeVote(ctx context.Context, caller, claimed model.PlayerID, score int) error {
	voter, err := resolvePlayer(s.roster, claimed, caller)
	if err != nil {
		return err
	}
	opponent, ok := s.roster.OpponentOf(voter)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, voter)
	}

	turns, given, err := s.loadRound(ctx)
	if err != nil {
		return err
	}
	if game.MemePhase(s.roster, turns, given) == model.MemePhaseEditing {
		return fmt.Errorf("%w: both players must submit before voting", ErrPhaseMismatch)
	}
	if limit := game.MaxVoteScore(turns[opponent]); score < 0 || score > limit {
		return fmt.Errorf("%w: score must be between 0 and %d", ErrInvalidPayload, limit)
	}

	if err := s.memes.SetVote(ctx, voter, score); err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}

	slog.Debug("meme vote submitted", "voter", voter, "score", score)
	s.publish(GameMeme, MsgTurnsUpdated, nil)
	return nil
}

// Reset clears every key of the named game. A meme round that reached
// results is archived first.
func (s *TurnService) Reset(ctx context.Context, gameName string) error {
	switch gameName {
	case GameZoom:
		if err := s.legacy.Delete(ctx); err != nil {
			return fmt.Errorf("failed to reset zoom round: %w", err)
		}
	case GameMeme:
		if s.history != nil {
			s.archiveMemeRound(ctx)
		}
		if err := s.memes.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset meme round: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownGame, gameName)
	}

	slog.Info("game reset", "game", gameName)
	s.publish(gameName, MsgReset, nil)
	return nil
}

func (s *TurnService) archiveMemeRound(ctx context.Context) {
	turns, given, err := s.loadRound(ctx)
	if err != nil {
		slog.Warn("failed to load meme round for archive", "error", err)
		return
	}
	if game.MemePhase(s.roster, turns, given) != model.MemePhaseResults {
		return
	}

	now := s.now()
	counts := make(map[model.PlayerID]int, len(turns))
	for p, t := range turns {
		counts[p] = len(t.Memes)
	}
	record := &model.RoundRecord{
		ID:         GameMeme + ":" + uuid.New().String(),
		Game:       GameMeme,
		Date:       now.In(s.loc).Format(DateLayout),
		FinishedAt: now,
		MemeCounts: counts,
		Scores:     game.ReceivedVotes(s.roster, given),
	}
	if err := s.history.Save(ctx, record); err != nil {
		slog.Warn("failed to archive meme round", "error", err)
	}
}

func (s *TurnService) publish(gameName, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(gameName, msgType, payload)
	}
}
