package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"onsamuse/internal/model"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func testSession(date string) *model.ZoomSession {
	return &model.ZoomSession{
		Date:   date,
		Game:   model.ZoomGame,
		Status: model.SessionWaitingStart,
		SharedData: model.SharedData{
			Step:    model.StepPhoto,
			Mission: "Une plante",
			Author:  "Moi",
			Guesser: "Chéri(e)",
		},
		Players: map[model.PlayerID]*model.PlayerScore{"Moi": {}, "Chéri(e)": {}},
	}
}

func TestSessionCacheCreateAndGet(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewSessionCache(client, 24*time.Hour)
	ctx := context.Background()

	got, err := c.Get(ctx, "2026-10-17")
	if err != nil || got != nil {
		t.Fatalf("Get on empty store = %v, %v; want nil, nil", got, err)
	}

	created, err := c.Create(ctx, testSession("2026-10-17"))
	if err != nil || !created {
		t.Fatalf("Create = %v, %v", created, err)
	}

	second := testSession("2026-10-17")
	second.SharedData.Mission = "Autre chose"
	created, err = c.Create(ctx, second)
	if err != nil || created {
		t.Fatalf("second Create = %v, %v; want false, nil", created, err)
	}

	got, err = c.Get(ctx, "2026-10-17")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SharedData.Mission != "Une plante" {
		t.Errorf("mission = %q, first writer should win", got.SharedData.Mission)
	}

	if ttl := mr.TTL("daily_session:2026-10-17"); ttl != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", ttl)
	}
}

func TestSessionCacheExpires(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewSessionCache(client, 24*time.Hour)
	ctx := context.Background()

	if _, err := c.Create(ctx, testSession("2026-10-17")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(25 * time.Hour)

	got, err := c.Get(ctx, "2026-10-17")
	if err != nil || got != nil {
		t.Errorf("expected expired session, got %v, %v", got, err)
	}
}

func TestSessionCacheUpdate(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewSessionCache(client, 24*time.Hour)
	ctx := context.Background()

	if _, err := c.Create(ctx, testSession("2026-10-17")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(time.Hour)

	updated, err := c.Update(ctx, "2026-10-17", func(s *model.ZoomSession) error {
		s.Status = model.SessionInProgress
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 1 || updated.Status != model.SessionInProgress {
		t.Errorf("updated = version %d status %s", updated.Version, updated.Status)
	}
	if ttl := mr.TTL("daily_session:2026-10-17"); ttl != 24*time.Hour {
		t.Errorf("ttl not refreshed: %v", ttl)
	}

	_, err = c.Update(ctx, "2026-10-18", func(s *model.ZoomSession) error { return nil })
	if !errors.Is(err, ErrSessionMissing) {
		t.Errorf("Update on missing session = %v, want ErrSessionMissing", err)
	}

	sentinel := errors.New("rejected")
	_, err = c.Update(ctx, "2026-10-17", func(s *model.ZoomSession) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("Update should return fn error, got %v", err)
	}
	got, _ := c.Get(ctx, "2026-10-17")
	if got.Version != 1 {
		t.Errorf("rejected update must not persist, version = %d", got.Version)
	}
}

func TestSessionCacheUpdateRetriesOnConcurrentWrite(t *testing.T) {
	_, client := setupRedis(t)
	c := NewSessionCache(client, 24*time.Hour)
	other := NewSessionCache(client, 24*time.Hour)
	ctx := context.Background()

	if _, err := c.Create(ctx, testSession("2026-10-17")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	calls := 0
	updated, err := c.Update(ctx, "2026-10-17", func(s *model.ZoomSession) error {
		calls++
		if calls == 1 {
			// a second writer sneaks in between our read and our write
			if _, err := other.Update(ctx, "2026-10-17", func(s *model.ZoomSession) error {
				s.Players["Moi"].Score = 5
				return nil
			}); err != nil {
				t.Fatalf("concurrent Update: %v", err)
			}
		}
		s.Status = model.SessionInProgress
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
	if updated.Players["Moi"].Score != 5 {
		t.Error("concurrent write was lost")
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}
}

func TestLastAuthor(t *testing.T) {
	_, client := setupRedis(t)
	c := NewSessionCache(client, time.Hour)
	ctx := context.Background()

	if a, err := c.GetLastAuthor(ctx); err != nil || a != "" {
		t.Fatalf("GetLastAuthor = %q, %v", a, err)
	}
	if err := c.SetLastAuthor(ctx, "Chéri(e)"); err != nil {
		t.Fatalf("SetLastAuthor: %v", err)
	}
	if a, _ := c.GetLastAuthor(ctx); a != "Chéri(e)" {
		t.Errorf("GetLastAuthor = %q", a)
	}
}

func TestLeaderboard(t *testing.T) {
	_, client := setupRedis(t)
	lb := NewLeaderboardCache(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := lb.Increment(ctx, "Moi", 1); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	if n, _ := lb.Increment(ctx, "Chéri(e)", 1); n != 1 {
		t.Errorf("Increment returned %d, want 1", n)
	}

	scores, err := lb.Scores(ctx)
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if scores["Moi"] != 3 || scores["Chéri(e)"] != 1 {
		t.Errorf("scores = %v", scores)
	}
}

func TestMissionCache(t *testing.T) {
	_, client := setupRedis(t)
	mc := NewMissionCache(client)
	ctx := context.Background()

	if err := mc.Replace(ctx, []string{"A", "B", "A"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := mc.Add(ctx, "C"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	n, err := mc.Remove(ctx, "A")
	if err != nil || n != 2 {
		t.Fatalf("Remove = %d, %v", n, err)
	}
	list, _ := mc.List(ctx)
	if len(list) != 2 || list[0] != "B" || list[1] != "C" {
		t.Errorf("list = %v", list)
	}
}

func TestMemeCache(t *testing.T) {
	mr, client := setupRedis(t)
	mc := NewMemeCache(client)
	ctx := context.Background()

	turn := &model.MemeTurn{Type: model.MemeTurnType, Player: "Moi", Memes: []model.MemeInstance{{URL: "a.png"}}}
	if err := mc.SetTurn(ctx, turn); err != nil {
		t.Fatalf("SetTurn: %v", err)
	}
	turn.Memes = append(turn.Memes, model.MemeInstance{URL: "b.png"})
	if err := mc.SetTurn(ctx, turn); err != nil {
		t.Fatalf("SetTurn: %v", err)
	}

	turns, err := mc.GetTurns(ctx)
	if err != nil {
		t.Fatalf("GetTurns: %v", err)
	}
	if len(turns) != 1 || len(turns["Moi"].Memes) != 2 {
		t.Errorf("resubmission should overwrite, got %+v", turns)
	}

	if err := mc.SetVote(ctx, "Moi", 7); err != nil {
		t.Fatalf("SetVote: %v", err)
	}
	votes, _ := mc.GetVotesGiven(ctx)
	if votes["Moi"] != 7 {
		t.Errorf("votes = %v", votes)
	}

	mr.Set("meme_current_turns", "old")
	mr.Set("meme_votes_session", "old")
	for i := 0; i < 2; i++ {
		if err := mc.Reset(ctx); err != nil {
			t.Fatalf("Reset #%d: %v", i+1, err)
		}
	}
	for _, key := range []string{"meme_turns_session", "meme_votes_given", "meme_current_turns", "meme_votes_session"} {
		if mr.Exists(key) {
			t.Errorf("key %s survived reset", key)
		}
	}
}

func TestLegacyZoomCache(t *testing.T) {
	_, client := setupRedis(t)
	lc := NewLegacyZoomCache(client)
	ctx := context.Background()

	view, err := lc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.HasPendingGame || view.Image != nil {
		t.Errorf("empty view = %+v", view)
	}

	if err := lc.CreateRound(ctx, "data:image/png;base64,AA", "Moi"); err != nil {
		t.Fatalf("CreateRound: %v", err)
	}
	if err := lc.SetGuess(ctx, "Un chat"); err != nil {
		t.Fatalf("SetGuess: %v", err)
	}
	if err := lc.CreateRound(ctx, "data:image/png;base64,BB", "Chéri(e)"); err != nil {
		t.Fatalf("CreateRound: %v", err)
	}

	view, _ = lc.Get(ctx)
	if !view.HasPendingGame || *view.Author != "Chéri(e)" {
		t.Errorf("view = %+v", view)
	}
	if view.CurrentGuess != nil {
		t.Error("new round should clear the previous guess")
	}

	if err := lc.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	view, _ = lc.Get(ctx)
	if view.HasPendingGame {
		t.Error("round survived delete")
	}
}
