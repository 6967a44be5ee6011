// internal/httpserver/server.go
//
// HTTP simulator of the verse game.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: POST /game/new (issues a game token),
//     POST /game/guess, POST /game/reset and GET /game/state (require the token).
//   - Daily verse endpoint: mounted under /daily.
//
// Notes:
//   - Answers are drawn from the loaded corpus, grouped by verse length.
//   - Tile colors in responses use the exact CSS palette of the real page, so
//     the remote surface goes through the same feedback interpreter.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/xunhualing/internal/feedback"
	"github.com/robalobadob/xunhualing/internal/game"
	"github.com/robalobadob/xunhualing/internal/store"
	"github.com/robalobadob/xunhualing/internal/verse"
)

// Options configures the simulator.
type Options struct {
	Secret    string        // HS256 key for game tokens
	DailySalt string        // salt for the daily verse
	Rows      int           // attempts per cycle; default game.DefaultRows
	TokenTTL  time.Duration // default 24h
}

// Server bundles router, game store and corpus.
type Server struct {
	r      *chi.Mux
	store  store.Store
	corpus map[int][]verse.Verse // by length
	opts   Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, corpus []verse.Verse, opts Options) *Server {
	if opts.Rows <= 0 {
		opts.Rows = game.DefaultRows
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), store: st, corpus: byLength(corpus), opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"xunhualing-sim","endpoints":["/health","POST /game/new","POST /daily/new","POST /game/guess","POST /game/reset","GET /game/state"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.r.With(s.requireGame()).Post("/game/guess", s.handleGuess)
	s.r.With(s.requireGame()).Post("/game/reset", s.handleReset)
	s.r.With(s.requireGame()).Get("/game/state", s.handleState)

	s.mountDaily(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Handler exposes the router (useful for tests and custom listeners).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// NewGameReq/Res payloads for POST /game/new and POST /daily/new.
type NewGameReq struct {
	Length int    `json:"length"` // 10 or 14; default 10
	Answer string `json:"answer"` // optional fixed answer (testing)
}
type NewGameRes struct {
	GameID      string `json:"gameId"`
	Token       string `json:"token"`
	Length      int    `json:"length"`
	MaxAttempts int    `json:"maxAttempts"`
	Date        string `json:"date,omitempty"`
}

// handleNewGame starts a game on a fixed or random verse.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameReq
	if err := decodeOptional(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_json")
		return
	}

	answer := verse.Verse(req.Answer)
	if answer == "" {
		pool, ok := s.pool(req.Length)
		if !ok {
			jsonError(w, http.StatusBadRequest, "no_verses_of_length")
			return
		}
		answer = pool[rand.IntN(len(pool))]
	} else if !verse.ValidLength(answer.Len()) || !verse.AllIdeographs(req.Answer) {
		jsonError(w, http.StatusBadRequest, "invalid_answer")
		return
	}
	s.startGame(w, r, answer, "")
}

// startGame saves a new game and answers with its token.
func (s *Server) startGame(w http.ResponseWriter, r *http.Request, answer verse.Verse, date string) {
	g := game.New(string(answer), s.opts.Rows)
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		jsonError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, err := signGameToken(s.opts.Secret, g.ID, s.opts.TokenTTL)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	log.Debug().Str("gameId", g.ID).Int("length", g.Length).Str("date", date).
		Int("games", s.store.Len()).Msg("game started")
	_ = json.NewEncoder(w).Encode(NewGameRes{
		GameID: g.ID, Token: tok, Length: g.Length, MaxAttempts: g.Rows, Date: date,
	})
}

// GuessReq/Res payloads for POST /game/guess.
type GuessReq struct {
	Guess string `json:"guess"`
}
type GuessRes struct {
	Tiles    []feedback.Tile `json:"tiles"`
	State    string          `json:"state"` // "playing" | "won" | "lost"
	Attempts int             `json:"attempts"`
}

// handleGuess scores a guess against the token's game.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req GuessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_json")
		return
	}
	var res GuessRes
	err := s.store.Update(r.Context(), gameID(r), func(g *game.Game) error {
		statuses, state, err := g.ApplyGuess(req.Guess)
		if err != nil {
			return err
		}
		last := g.Guesses[len(g.Guesses)-1]
		res = GuessRes{Tiles: feedback.Tiles(last, statuses), State: state, Attempts: len(g.Guesses)}
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrFinished):
		jsonError(w, http.StatusConflict, "game_finished")
	case errors.Is(err, game.ErrInvalidGuess):
		jsonError(w, http.StatusBadRequest, "invalid_guess")
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "guess_failed")
	default:
		_ = json.NewEncoder(w).Encode(res)
	}
}

// ResetRes is returned by POST /game/reset.
type ResetRes struct {
	State    string `json:"state"`
	Attempts int    `json:"attempts"`
}

// handleReset clears the attempt rows, like reloading the page.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var res ResetRes
	err := s.store.Update(r.Context(), gameID(r), func(g *game.Game) error {
		g.Refresh()
		res = ResetRes{State: g.State(), Attempts: len(g.Guesses)}
		return nil
	})
	if err != nil {
		jsonError(w, http.StatusNotFound, "not_found")
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// StateRes is returned by GET /game/state.
type StateRes struct {
	State       string `json:"state"`
	Attempts    int    `json:"attempts"`
	Length      int    `json:"length"`
	MaxAttempts int    `json:"maxAttempts"`
}

// handleState reports the token's game without changing it.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), gameID(r))
	if err != nil {
		jsonError(w, http.StatusNotFound, "not_found")
		return
	}
	_ = json.NewEncoder(w).Encode(StateRes{
		State: g.State(), Attempts: len(g.Guesses), Length: g.Length, MaxAttempts: g.Rows,
	})
}

// ------------------------------- helpers -----------------------------------

// pool returns the verses of the requested length (0 selects 10).
func (s *Server) pool(length int) ([]verse.Verse, bool) {
	if length == 0 {
		length = verse.LengthFive
	}
	p := s.corpus[length]
	return p, len(p) > 0
}

func byLength(vs []verse.Verse) map[int][]verse.Verse {
	out := make(map[int][]verse.Verse)
	for _, v := range vs {
		out[v.Len()] = append(out[v.Len()], v)
	}
	return out
}

// decodeOptional decodes a JSON body into v; an empty body leaves v zero.
func decodeOptional(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// jsonError writes {"error": code} with the given HTTP status.
func jsonError(w http.ResponseWriter, status int, code string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
