package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"onsamuse/internal/model"
)

// APIError is a non-2xx response decoded from the {error} envelope
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the game server
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for baseURL, e.g. http://localhost:8080
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &envelope) != nil || envelope.Error == "" {
			envelope.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Login exchanges the household passphrase for a token and keeps it
func (c *Client) Login(ctx context.Context, player model.PlayerID, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", &model.LoginRequest{Player: player, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// InitZoom returns today's session, creating it if needed
func (c *Client) InitZoom(ctx context.Context, forceReset bool) (*model.SessionView, error) {
	path := "/daily-game/init"
	if forceReset {
		path += "?forceReset=true"
	}
	var view model.SessionView
	if err := c.do(ctx, http.MethodGet, path, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Act posts a zoom action
func (c *Client) Act(ctx context.Context, req *model.ActionRequest) (*model.ZoomSession, error) {
	var resp model.ActionResponse
	if err := c.do(ctx, http.MethodPost, "/daily-game/action", req, &resp); err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// TurnStatus returns the meme round and flat-key zoom view
func (c *Client) TurnStatus(ctx context.Context) (*model.TurnStatus, error) {
	var status model.TurnStatus
	if err := c.do(ctx, http.MethodGet, "/game-turn", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SubmitMemes upserts player's meme turn
func (c *Client) SubmitMemes(ctx context.Context, player model.PlayerID, memes []model.MemeInstance) error {
	return c.do(ctx, http.MethodPost, "/game-turn", &model.TurnRequest{Type: model.MemeTurnType, Player: player, Memes: memes}, nil)
}

// Vote sends the total voter gave to the opponent's memes
func (c *Client) Vote(ctx context.Context, voter model.PlayerID, score int) error {
	return c.do(ctx, http.MethodPatch, "/game-turn", &model.VoteRequest{Voter: voter, Score: &score}, nil)
}

// CreateZoomRound starts a flat-key zoom round
func (c *Client) CreateZoomRound(ctx context.Context, image, author string) error {
	return c.do(ctx, http.MethodPost, "/game-turn", &model.TurnRequest{Type: "zoom", Image: image, Author: author}, nil)
}

// SubmitZoomGuess answers the flat-key zoom round
func (c *Client) SubmitZoomGuess(ctx context.Context, guess string) error {
	return c.do(ctx, http.MethodPost, "/game-turn", &model.TurnRequest{Action: "submit_guess", Guess: guess}, nil)
}

// ResetGame clears the named game's keys
func (c *Client) ResetGame(ctx context.Context, game string) error {
	return c.do(ctx, http.MethodDelete, "/game-turn?game="+url.QueryEscape(game), nil, nil)
}

// Missions lists the zoom mission pool
func (c *Client) Missions(ctx context.Context) ([]string, error) {
	var resp struct {
		Missions []string `json:"missions"`
	}
	if err := c.do(ctx, http.MethodGet, "/missions/zoom", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Missions, nil
}

// AddMission appends to the zoom mission pool
func (c *Client) AddMission(ctx context.Context, mission string) error {
	return c.do(ctx, http.MethodPost, "/missions/zoom", &model.MissionRequest{Mission: mission}, nil)
}

// RemoveMission removes a mission from the pool
func (c *Client) RemoveMission(ctx context.Context, mission string) error {
	return c.do(ctx, http.MethodDelete, "/missions/zoom", &model.MissionRequest{Mission: mission}, nil)
}

// History lists archived rounds, newest first
func (c *Client) History(ctx context.Context, game string, limit int) ([]*model.RoundRecord, error) {
	q := url.Values{}
	if game != "" {
		q.Set("game", game)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/history"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var records []*model.RoundRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}
