// internal/session/controller.go
//
// Package session drives the guessing turn loop against a game surface.
//
// Each turn: pick a guess, submit it, capture and classify the feedback,
// append the turn to the history, stop on all-green, otherwise fold the
// feedback into the solver. After MaxAttempts attempts the surface is
// refreshed and the solver reset; the history survives across cycles.
//
// The loop is single-threaded and the Controller is its only writer of the
// solver and history. Only surface calls block; they are bounded by the retry
// budget and the surface's own timeouts.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/xunhualing/internal/feedback"
	"github.com/robalobadob/xunhualing/internal/game"
	"github.com/robalobadob/xunhualing/internal/history"
	"github.com/robalobadob/xunhualing/internal/solver"
	"github.com/robalobadob/xunhualing/internal/verse"
)

// ErrSurface wraps failures of the external game surface.
var ErrSurface = errors.New("session: surface failure")

// maxSubmitSkips is how many failed submissions a verse may cause before the
// session stops offering it.
const maxSubmitSkips = 3

// topLogged is how many ranked candidates are logged at debug level per turn.
const topLogged = 3

// Surface is the external game: the browser page or the local simulator.
type Surface interface {
	// Submit enters guess and triggers its evaluation.
	Submit(ctx context.Context, guess verse.Verse) error
	// Capture returns the tiles of the latest evaluated guess. It should
	// wait a bounded time for them to appear.
	Capture(ctx context.Context, length int) ([]feedback.Tile, error)
	// Refresh starts a new attempt cycle on the surface.
	Refresh(ctx context.Context) error
}

// Config tunes the turn loop.
type Config struct {
	MaxAttempts int           // attempts per cycle before a refresh; default 9
	RetryBudget int           // tries per surface call; default 3
	RetryDelay  time.Duration // pause between tries
	MaxTurns    int           // stop after this many turns; 0 = unlimited

	// OnSolved runs after an all-green turn, before history is persisted.
	OnSolved func(ctx context.Context, answer verse.Verse) error
}

// Cycle is the session-cycle state threaded through the loop.
type Cycle struct {
	Index    int // 1-based cycle number
	Attempts int // attempts consumed in this cycle
}

// Result summarizes a finished session.
type Result struct {
	SessionID string
	Reason    history.Reason
	Answer    verse.Verse
	Turns     int
	Cycles    int
	Records   []history.Record
}

// Controller runs one solving session.
type Controller struct {
	cfg     Config
	solver  *solver.Solver
	surface Surface
	sinks   []history.Sink
	id      string
	hist    history.Log
}

// New creates a controller. Sinks receive the transcript when Run returns.
func New(s *solver.Solver, surface Surface, cfg Config, sinks ...history.Sink) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = game.DefaultRows
	}
	if cfg.RetryBudget <= 0 {
		cfg.RetryBudget = defaultRetryBudget
	}
	return &Controller{
		cfg:     cfg,
		solver:  s,
		surface: surface,
		sinks:   sinks,
		id:      uuid.NewString(),
	}
}

// ID returns the session identifier used in the history.
func (c *Controller) ID() string { return c.id }

// Run plays until the secret is found, no candidate is left, the turn cap
// is reached or ctx is cancelled. The returned error only reports history
// persistence failures; the outcome of play is in Result.Reason.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	started := time.Now().UTC()
	res := Result{SessionID: c.id, Reason: history.ReasonAborted}
	cycle := Cycle{Index: 1}
	guessed := make(map[verse.Verse]struct{})
	// deferred holds verses whose submission just failed. They sit out until
	// a turn lands or nothing else is left to try.
	deferred := make(map[verse.Verse]struct{})
	skips := make(map[verse.Verse]int)

	log.Info().Str("session", c.id).Int("length", c.solver.Length()).
		Int("candidates", c.solver.CorpusSize()).Msg("session started")

loop:
	for {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("session cancelled")
			break
		}
		if c.cfg.MaxTurns > 0 && res.Turns >= c.cfg.MaxTurns {
			log.Warn().Int("turns", res.Turns).Msg("turn limit reached")
			break
		}

		guess, ok := c.next(guessed, deferred)
		if !ok {
			res.Reason = history.ReasonExhausted
			log.Warn().Int("guessed", len(guessed)).Msg("no candidate left")
			break
		}
		res.Turns++

		var rec *history.Record
		rec, cycle = c.turn(ctx, cycle, guess)
		if rec == nil {
			skips[guess]++
			if skips[guess] >= maxSubmitSkips {
				log.Warn().Str("guess", guess.String()).Int("skips", skips[guess]).Msg("verse dropped after repeated submit failures")
				guessed[guess] = struct{}{}
			} else {
				deferred[guess] = struct{}{}
			}
			continue
		}
		guessed[guess] = struct{}{}
		clear(deferred)
		c.hist.Append(*rec)

		if rec.Outcome == history.OutcomeAccepted {
			statuses := rec.Statuses()
			if game.AllGreen(statuses) {
				res.Reason, res.Answer = history.ReasonSolved, guess
				log.Info().Str("answer", guess.String()).Int("attempt", rec.Attempt).
					Int("cycle", rec.Cycle).Msg("solved")
				if c.cfg.OnSolved != nil {
					if err := c.cfg.OnSolved(ctx, guess); err != nil {
						log.Warn().Err(err).Msg("solved hook")
					}
				}
				break loop
			}
			c.apply(guess, statuses)
		}

		if cycle.Attempts >= c.cfg.MaxAttempts {
			cycle = c.refresh(ctx, cycle)
		}
	}

	res.Cycles = cycle.Index
	res.Records = c.hist.Records()
	return res, c.persist(ctx, res, started)
}

// next selects a guess, avoiding guessed and deferred verses. Deferred verses
// are released when nothing else qualifies. When the filtered pool still has
// nothing left, the solver is reset once and asked again over the full corpus.
func (c *Controller) next(guessed, deferred map[verse.Verse]struct{}) (verse.Verse, bool) {
	if len(deferred) > 0 {
		avoid := make(map[verse.Verse]struct{}, len(guessed)+len(deferred))
		for v := range guessed {
			avoid[v] = struct{}{}
		}
		for v := range deferred {
			avoid[v] = struct{}{}
		}
		if g, ok := c.solver.Next(avoid); ok {
			return g, true
		}
		clear(deferred)
	}
	if g, ok := c.solver.Next(guessed); ok {
		return g, true
	}
	if c.solver.PoolSize() == c.solver.CorpusSize() {
		return "", false
	}
	log.Warn().Int("pool", c.solver.PoolSize()).Msg("candidate pool exhausted, resetting constraints")
	c.solver.Reset()
	return c.solver.Next(guessed)
}

// turn submits guess and captures its feedback. It returns nil when the
// submission itself failed: the surface consumed no attempt.
func (c *Controller) turn(ctx context.Context, cycle Cycle, guess verse.Verse) (*history.Record, Cycle) {
	log.Info().Str("guess", guess.String()).Int("pool", c.solver.PoolSize()).
		Int("attempt", cycle.Attempts+1).Int("cycle", cycle.Index).Msg("guessing")

	sub := attempt(ctx, c.cfg.RetryBudget, c.cfg.RetryDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.surface.Submit(ctx, guess)
	}, func(try int, err error) {
		log.Warn().Err(err).Int("try", try).Int("budget", c.cfg.RetryBudget).Msg("submit failed")
	})
	if !sub.OK() {
		log.Error().Err(fmt.Errorf("%w: %w", ErrSurface, sub.Err)).Str("guess", guess.String()).Msg("turn skipped")
		return nil, cycle
	}
	cycle.Attempts++

	length := c.solver.Length()
	fb := attempt(ctx, c.cfg.RetryBudget, c.cfg.RetryDelay, func(ctx context.Context) ([]game.Status, error) {
		tiles, err := c.surface.Capture(ctx, length)
		if err != nil {
			return nil, err
		}
		for _, t := range tiles {
			log.Debug().Str("char", t.Char).Str("color", t.Color).
				Str("status", string(feedback.ClassifyCSS(t.Color))).Msg("tile")
		}
		return feedback.Interpret(tiles, length)
	}, func(try int, err error) {
		log.Warn().Err(err).Int("try", try).Int("budget", c.cfg.RetryBudget).Msg("feedback capture failed")
	})
	if !fb.OK() {
		log.Error().Err(fb.Err).Str("guess", guess.String()).Msg("turn abandoned")
		r := history.NewRecord(guess, nil, cycle.Attempts, cycle.Index, history.OutcomeAbandoned)
		return &r, cycle
	}

	r := history.NewRecord(guess, fb.Value, cycle.Attempts, cycle.Index, history.OutcomeAccepted)
	logStatuses(r)
	return &r, cycle
}

// apply folds accepted feedback into the solver.
func (c *Controller) apply(guess verse.Verse, statuses []game.Status) {
	u, err := c.solver.Apply(guess, statuses)
	var conflict *solver.ConflictError
	switch {
	case errors.As(err, &conflict):
		log.Warn().Str("chars", string(conflict.Chars)).Msg("contradictory feedback rejected")
	case err != nil:
		log.Error().Err(err).Msg("feedback not applied")
		return
	}
	if u.Exhausted {
		log.Warn().Int("before", u.Before).Msg("candidate pool empty, constraints reset")
		return
	}
	log.Info().Int("before", u.Before).Int("after", u.After).Msg("candidates filtered")
	logSolverState(c.solver)
}

// logSolverState prints the known constraints and the leading candidates.
func logSolverState(s *solver.Solver) {
	f := s.Facts()
	green := make([]rune, s.Length())
	for i := range green {
		green[i] = '_'
	}
	for i, r := range f.Green {
		if i >= 0 && i < len(green) {
			green[i] = r
		}
	}
	log.Debug().Str("green", string(green)).Str("yellow", string(f.Yellow)).
		Str("gray", string(f.Gray)).Msg("constraints")
	for i, r := range s.Top(topLogged) {
		log.Debug().Int("rank", i+1).Str("verse", r.Verse.String()).Int("score", r.Score).Msg("candidate")
	}
}

// refresh resets the surface and the solver and opens the next cycle. A
// failed refresh is logged; the solver is reset regardless.
func (c *Controller) refresh(ctx context.Context, cycle Cycle) Cycle {
	log.Info().Int("cycle", cycle.Index).Int("attempts", cycle.Attempts).Msg("refreshing surface")
	out := attempt(ctx, c.cfg.RetryBudget, c.cfg.RetryDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.surface.Refresh(ctx)
	}, func(try int, err error) {
		log.Warn().Err(err).Int("try", try).Msg("refresh failed")
	})
	if !out.OK() {
		log.Error().Err(fmt.Errorf("%w: %w", ErrSurface, out.Err)).Msg("refresh abandoned")
	}
	c.solver.Reset()
	return Cycle{Index: cycle.Index + 1}
}

// persist hands the transcript to every sink, even when ctx is already done.
func (c *Controller) persist(ctx context.Context, res Result, started time.Time) error {
	t := history.Transcript{
		SessionID: c.id,
		Length:    c.solver.Length(),
		Reason:    res.Reason,
		Answer:    res.Answer,
		StartedAt: started,
		EndedAt:   time.Now().UTC(),
		Records:   res.Records,
	}
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, s := range c.sinks {
		if err := s.Save(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("save history: %w", err))
		}
	}
	if len(errs) == 0 {
		log.Info().Str("session", c.id).Str("reason", string(res.Reason)).
			Int("records", len(t.Records)).Msg("history saved")
	}
	return errors.Join(errs...)
}

// logStatuses prints the per-color summary of an accepted turn.
func logStatuses(r history.Record) {
	var green, yellow, gray string
	for _, cs := range r.Status {
		switch cs.Status {
		case game.StatusGreen:
			green += cs.Char
		case game.StatusYellow:
			yellow += cs.Char
		case game.StatusGray:
			gray += cs.Char
		}
	}
	log.Info().Str("green", green).Str("yellow", yellow).Str("gray", gray).Msg("feedback")
}
