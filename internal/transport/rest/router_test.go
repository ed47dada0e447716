package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"onsamuse/internal/cache"
	"onsamuse/internal/model"
	"onsamuse/internal/service"
)

var testRoster = model.Roster{"Moi", "Chéri(e)"}

func setupRouter(t *testing.T) (http.Handler, *service.AuthService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	loc := time.UTC
	auth := service.NewAuthService("bisou", "test-secret", testRoster)
	zoom := service.NewZoomService(
		cache.NewSessionCache(client, 24*time.Hour),
		cache.NewLeaderboardCache(client),
		cache.NewMissionCache(client),
		testRoster,
		loc,
	)
	turns := service.NewTurnService(cache.NewMemeCache(client), cache.NewLegacyZoomCache(client), testRoster, loc)

	return NewRouter(&Container{
		AuthService: auth,
		ZoomService: zoom,
		TurnService: turns,
	}), auth
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	h, _ := setupRouter(t)
	rec := do(t, h, "GET", "/health", nil, "")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestActionWithoutSession(t *testing.T) {
	h, _ := setupRouter(t)
	rec := do(t, h, "POST", "/daily-game/action", map[string]string{"action": "start_game"}, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != "Session introuvable" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestDailyGameFlow(t *testing.T) {
	h, auth := setupRouter(t)

	rec := do(t, h, "GET", "/daily-game/init", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("init = %d %s", rec.Code, rec.Body.String())
	}
	var view model.SessionView
	decode(t, rec, &view)
	author, guesser := view.SharedData.Author, view.SharedData.Guesser
	if author != "Moi" || guesser != "Chéri(e)" {
		t.Fatalf("author/guesser = %q/%q", author, guesser)
	}

	authorToken, _ := auth.GenerateToken(author)
	guesserToken, _ := auth.GenerateToken(guesser)

	tests := []struct {
		name   string
		body   map[string]interface{}
		token  string
		status int
	}{
		{"guess before start", map[string]interface{}{"action": "zoom_submit_guess", "guess": "x"}, "", http.StatusConflict},
		{"unknown action", map[string]interface{}{"action": "dance"}, "", http.StatusBadRequest},
		{"start", map[string]interface{}{"action": "start_game"}, guesserToken, http.StatusOK},
		{"photo by guesser", map[string]interface{}{"action": "zoom_submit_photo", "image": "img"}, guesserToken, http.StatusForbidden},
		{"photo without image", map[string]interface{}{"action": "zoom_submit_photo"}, authorToken, http.StatusBadRequest},
		{"photo", map[string]interface{}{"action": "zoom_submit_photo", "image": "img"}, authorToken, http.StatusOK},
		{"stale version", map[string]interface{}{"action": "zoom_submit_guess", "guess": "x", "version": 1}, guesserToken, http.StatusConflict},
		{"guess", map[string]interface{}{"action": "zoom_submit_guess", "guess": "Une chaussure", "version": 2}, guesserToken, http.StatusOK},
		{"validate", map[string]interface{}{"action": "zoom_validate", "isValid": true, "player": string(author)}, "", http.StatusOK},
		{"validate again", map[string]interface{}{"action": "zoom_validate", "isValid": true}, authorToken, http.StatusConflict},
	}
	for _, tt := range tests {
		rec := do(t, h, "POST", "/daily-game/action", tt.body, tt.token)
		if rec.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.status, rec.Body.String())
		}
	}

	rec = do(t, h, "GET", "/daily-game/init", nil, "")
	decode(t, rec, &view)
	if view.Status != model.SessionFinished || view.Players[guesser].Score != 1 {
		t.Errorf("final session = %+v", view.ZoomSession)
	}
	if view.WeeklyRanking[guesser] != 1 {
		t.Errorf("weekly ranking = %v", view.WeeklyRanking)
	}

	rec = do(t, h, "GET", "/daily-game/init?forceReset=true", nil, "")
	decode(t, rec, &view)
	if view.Status != model.SessionWaitingStart {
		t.Errorf("force reset status = %s", view.Status)
	}
}

func TestGameTurnFlow(t *testing.T) {
	h, _ := setupRouter(t)

	meme := []map[string]interface{}{{"url": "https://i.imgflip.com/1bij.jpg", "zones": []interface{}{}, "inputs": map[string]string{"top": "moi"}}}
	memes := append(meme, meme[0])

	rec := do(t, h, "POST", "/game-turn", map[string]interface{}{"type": "meme", "player": "Moi", "memes": memes}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit = %d %s", rec.Code, rec.Body.String())
	}

	var status model.TurnStatus
	decode(t, do(t, h, "GET", "/game-turn", nil, ""), &status)
	if len(status.Memes) != 1 || len(status.Votes) != 0 || status.Phase != model.MemePhaseEditing {
		t.Fatalf("status = %+v", status)
	}

	rec = do(t, h, "PATCH", "/game-turn", map[string]interface{}{"voter": "Moi", "score": 3}, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("vote while editing = %d", rec.Code)
	}

	do(t, h, "POST", "/game-turn", map[string]interface{}{"type": "meme", "player": "Chéri(e)", "memes": memes}, "")
	if rec := do(t, h, "PATCH", "/game-turn", map[string]interface{}{"voter": "Moi", "score": 7}, ""); rec.Code != http.StatusOK {
		t.Fatalf("vote = %d %s", rec.Code, rec.Body.String())
	}
	decode(t, do(t, h, "GET", "/game-turn", nil, ""), &status)
	if len(status.Votes) != 0 {
		t.Errorf("received before both votes = %v", status.Votes)
	}
	do(t, h, "PATCH", "/game-turn", map[string]interface{}{"voter": "Chéri(e)", "score": 3}, "")
	decode(t, do(t, h, "GET", "/game-turn", nil, ""), &status)
	if status.Votes["Moi"] != 3 || status.Votes["Chéri(e)"] != 7 || status.Phase != model.MemePhaseResults {
		t.Errorf("results = %v %s", status.Votes, status.Phase)
	}

	for i := 0; i < 2; i++ {
		if rec := do(t, h, "DELETE", "/game-turn?game=meme", nil, ""); rec.Code != http.StatusOK {
			t.Fatalf("reset #%d = %d", i, rec.Code)
		}
	}
	rec = do(t, h, "GET", "/game-turn", nil, "")
	var raw map[string]json.RawMessage
	decode(t, rec, &raw)
	if string(raw["memes"]) != "[]" || string(raw["votes"]) != "{}" {
		t.Errorf("after reset memes=%s votes=%s", raw["memes"], raw["votes"])
	}
}

func TestGameTurnBadRequests(t *testing.T) {
	h, _ := setupRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"unknown shape", "POST", "/game-turn", map[string]string{"type": "poet"}},
		{"zoom without image", "POST", "/game-turn", map[string]string{"type": "zoom", "author": "Moi"}},
		{"guess without text", "POST", "/game-turn", map[string]string{"action": "submit_guess"}},
		{"meme from stranger", "POST", "/game-turn", map[string]interface{}{"type": "meme", "player": "Bob", "memes": []map[string]string{{"url": "u"}}}},
		{"vote without score", "PATCH", "/game-turn", map[string]string{"voter": "Moi"}},
		{"reset unknown game", "DELETE", "/game-turn?game=poet", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGameTurnCallerIdentity(t *testing.T) {
	h, auth := setupRouter(t)
	token, err := auth.GenerateToken("Moi")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	memes := []map[string]interface{}{
		{"url": "https://i.imgflip.com/1bij.jpg", "inputs": map[string]string{"top": "moi"}},
		{"url": "https://i.imgflip.com/1bij.jpg", "inputs": map[string]string{"top": "toi"}},
	}

	rec := do(t, h, "POST", "/game-turn", map[string]interface{}{"type": "meme", "player": "Chéri(e)", "memes": memes}, token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("meme turn as another player = %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, "POST", "/game-turn", map[string]interface{}{"type": "meme", "memes": memes}, token); rec.Code != http.StatusOK {
		t.Fatalf("meme turn from token = %d %s", rec.Code, rec.Body.String())
	}
	do(t, h, "POST", "/game-turn", map[string]interface{}{"type": "meme", "player": "Chéri(e)", "memes": memes}, "")

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"vote as another player", map[string]interface{}{"voter": "Chéri(e)", "score": 8}, http.StatusForbidden},
		{"voter from token", map[string]interface{}{"score": 8}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, "PATCH", "/game-turn", tt.body, token); rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	var status model.TurnStatus
	decode(t, do(t, h, "GET", "/game-turn", nil, ""), &status)
	for _, turn := range status.Memes {
		if turn.Player != "Moi" && turn.Player != "Chéri(e)" {
			t.Errorf("unexpected turn owner %q", turn.Player)
		}
	}
	if len(status.Memes) != 2 || status.Phase != model.MemePhaseVoting {
		t.Errorf("status = %d turns, phase %s", len(status.Memes), status.Phase)
	}
}

func TestLegacyZoomEndpoints(t *testing.T) {
	h, _ := setupRouter(t)

	if rec := do(t, h, "POST", "/game-turn", map[string]string{"type": "zoom", "image": "img", "author": "Moi"}, ""); rec.Code != http.StatusOK {
		t.Fatalf("create = %d", rec.Code)
	}
	if rec := do(t, h, "POST", "/game-turn", map[string]string{"action": "submit_guess", "guess": "Un vélo"}, ""); rec.Code != http.StatusOK {
		t.Fatalf("guess = %d", rec.Code)
	}
	var status model.TurnStatus
	decode(t, do(t, h, "GET", "/game-turn", nil, ""), &status)
	if !status.Zoom.HasPendingGame || status.Zoom.Author == nil || *status.Zoom.Author != "Moi" {
		t.Errorf("zoom = %+v", status.Zoom)
	}

	do(t, h, "DELETE", "/game-turn?game=zoom", nil, "")
	decode(t, do(t, h, "GET", "/game-turn", nil, ""), &status)
	if status.Zoom.HasPendingGame {
		t.Error("zoom round should be cleared")
	}
}

func TestAuthEndpoints(t *testing.T) {
	h, _ := setupRouter(t)

	rec := do(t, h, "POST", "/auth/login", map[string]string{"player": "Moi", "password": "nope"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d", rec.Code)
	}

	rec = do(t, h, "POST", "/auth/login", map[string]string{"player": "Moi", "password": "bisou"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}
	var login model.LoginResponse
	decode(t, rec, &login)
	if login.Token == "" || login.Player != "Moi" {
		t.Errorf("login = %+v", login)
	}

	if rec := do(t, h, "GET", "/game-turn", nil, login.Token); rec.Code != http.StatusOK {
		t.Errorf("valid token = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/game-turn", nil, "garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token = %d", rec.Code)
	}
}

func TestMissionEndpoints(t *testing.T) {
	h, _ := setupRouter(t)

	do(t, h, "POST", "/missions/zoom", map[string]string{"mission": "Un livre"}, "")
	do(t, h, "POST", "/missions/zoom", map[string]string{"mission": "Une tasse"}, "")

	var list map[string][]string
	decode(t, do(t, h, "GET", "/missions/zoom", nil, ""), &list)
	if len(list["missions"]) != 2 {
		t.Fatalf("missions = %v", list)
	}

	rec := do(t, h, "DELETE", "/missions/zoom", map[string]string{"mission": "Un livre"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	decode(t, do(t, h, "GET", "/missions/zoom", nil, ""), &list)
	if len(list["missions"]) != 1 || list["missions"][0] != "Une tasse" {
		t.Errorf("missions = %v", list)
	}

	if rec := do(t, h, "POST", "/missions/zoom", map[string]string{"mission": ""}, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("empty mission = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := setupRouter(t)
	req := httptest.NewRequest("OPTIONS", "/daily-game/action", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}
