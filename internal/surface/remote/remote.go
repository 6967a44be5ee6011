// Package remote plays against the local simulator over HTTP. It implements
// session.Surface, so the whole solving pipeline can run without a browser.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/xunhualing/internal/feedback"
	"github.com/robalobadob/xunhualing/internal/verse"
)

var (
	ErrNotStarted = errors.New("remote: no game started")
	ErrNoTiles    = errors.New("remote: no evaluated guess")
)

// StatusError is a non-2xx answer from the simulator.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: http %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// Game describes the game a Client is bound to.
type Game struct {
	ID          string `json:"gameId"`
	Token       string `json:"token"`
	Length      int    `json:"length"`
	MaxAttempts int    `json:"maxAttempts"`
	Date        string `json:"date,omitempty"`
}

// Client is a simulator-backed surface. It is not safe for concurrent use.
type Client struct {
	base string
	http *http.Client

	game  Game
	tiles []feedback.Tile
}

// New returns a client for the simulator at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Start opens a new game of the given length. A non-empty answer fixes the
// secret; daily selects the verse of the day instead.
func (c *Client) Start(ctx context.Context, length int, answer string, daily bool) (Game, error) {
	path := "/game/new"
	if daily {
		path = "/daily/new"
	}
	var g Game
	body := map[string]any{"length": length}
	if answer != "" {
		body["answer"] = answer
	}
	if err := c.post(ctx, path, body, &g); err != nil {
		return Game{}, err
	}
	c.game, c.tiles = g, nil
	log.Info().Str("gameId", g.ID).Int("length", g.Length).Str("date", g.Date).Msg("remote game started")
	return g, nil
}

// Length reports the verse length of the current game.
func (c *Client) Length() int { return c.game.Length }

func (c *Client) Submit(ctx context.Context, guess verse.Verse) error {
	if c.game.Token == "" {
		return ErrNotStarted
	}
	var res struct {
		Tiles    []feedback.Tile `json:"tiles"`
		State    string          `json:"state"`
		Attempts int             `json:"attempts"`
	}
	c.tiles = nil
	if err := c.post(ctx, "/game/guess", map[string]string{"guess": guess.String()}, &res); err != nil {
		return err
	}
	c.tiles = res.Tiles
	log.Debug().Str("state", res.State).Int("attempts", res.Attempts).Msg("remote guess evaluated")
	return nil
}

func (c *Client) Capture(_ context.Context, _ int) ([]feedback.Tile, error) {
	if c.tiles == nil {
		return nil, ErrNoTiles
	}
	return append([]feedback.Tile(nil), c.tiles...), nil
}

func (c *Client) Refresh(ctx context.Context) error {
	if c.game.Token == "" {
		return ErrNotStarted
	}
	c.tiles = nil
	return c.post(ctx, "/game/reset", nil, nil)
}

// post sends body as JSON and decodes the answer into out (when non-nil).
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.game.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.game.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote %s: decode: %w", path, err)
	}
	return nil
}
