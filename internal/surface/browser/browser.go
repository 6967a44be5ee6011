// Package browser drives the real game page with go-rod. It implements
// session.Surface: type the guess, press submit, read the colored tiles of
// the newest row and reload the page between cycles.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/xunhualing/internal/feedback"
	"github.com/robalobadob/xunhualing/internal/verse"
)

// ErrNoFeedback is returned when no new tile row appeared in time.
var ErrNoFeedback = errors.New("browser: feedback did not appear")

// Config controls the browser launch and the page waits.
type Config struct {
	URL         string
	Bin         string // empty lets the launcher find or download a browser
	Headless    bool
	ControlURL  string // attach to a running browser instead of launching
	WaitTimeout time.Duration
	Poll        time.Duration
	Selectors   Selectors
}

// Surface is a live game page. It is not safe for concurrent use.
type Surface struct {
	cfg     Config
	l       *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
	length  int
	rows    int         // evaluated rows since the last reload
	last    verse.Verse // last submitted guess
}

// Open launches (or attaches to) a browser, navigates to the game and
// detects the verse length from the input placeholder.
func Open(ctx context.Context, cfg Config) (*Surface, error) {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 15 * time.Second
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 200 * time.Millisecond
	}
	if cfg.Selectors == (Selectors{}) {
		cfg.Selectors = DefaultSelectors
	}
	s := &Surface{cfg: cfg}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		s.l = launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			s.l = s.l.Bin(cfg.Bin)
		}
		u, err := s.l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	s.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := s.browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: cfg.URL})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.URL, err)
	}
	s.page = page

	if err := s.detect(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	log.Info().Str("url", cfg.URL).Int("length", s.length).Msg("game page ready")
	return s, nil
}

// Length reports the verse length the page asks for.
func (s *Surface) Length() int { return s.length }

// Close shuts the browser down.
func (s *Surface) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if s.l != nil {
		s.l.Cleanup()
	}
	return err
}

func (s *Surface) detect(ctx context.Context) error {
	p := s.page.Context(ctx).Timeout(s.cfg.WaitTimeout)
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	el, err := p.Element(s.cfg.Selectors.Input)
	if err != nil {
		return fmt.Errorf("find input: %w", err)
	}
	ph, err := el.Attribute("placeholder")
	if err != nil || ph == nil {
		return fmt.Errorf("read placeholder: %w", ErrUnknownLayout)
	}
	s.length, err = LengthFromPlaceholder(*ph)
	return err
}

// Submit types guess into the input box and presses submit. When the button
// cannot be clicked the value is set and the button clicked from script.
func (s *Surface) Submit(ctx context.Context, guess verse.Verse) error {
	p := s.page.Context(ctx).Timeout(s.cfg.WaitTimeout)
	el, err := p.Element(s.cfg.Selectors.Input)
	if err != nil {
		return fmt.Errorf("find input: %w", err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("clear input: %w", err)
	}
	if err := el.Input(guess.String()); err != nil {
		return fmt.Errorf("type guess: %w", err)
	}

	btn, err := p.Element(s.cfg.Selectors.Submit)
	if err == nil {
		err = btn.Click(proto.InputMouseButtonLeft, 1)
	}
	if err != nil {
		log.Warn().Err(err).Msg("submit click failed, forcing from script")
		if _, ferr := p.Eval(forceSubmitJS, guess.String()); ferr != nil {
			return fmt.Errorf("submit guess: %w", errors.Join(err, ferr))
		}
	}
	s.rows++
	s.last = guess
	return nil
}

// forceSubmitJS sets the input value the way React expects and clicks the
// primary button.
const forceSubmitJS = `(v) => {
	const input = document.querySelector('input[placeholder]');
	const setter = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'value').set;
	setter.call(input, v);
	input.dispatchEvent(new Event('input', { bubbles: true }));
	document.querySelector('button.ant-btn-primary').click();
}`

// Capture waits for the spinner to go away and reads the newest tile row.
// If no row shows up, the page may be asking for a direct submit of an
// unknown verse; that button is clicked once and the row read again.
func (s *Surface) Capture(ctx context.Context, length int) ([]feedback.Tile, error) {
	if length <= 0 {
		length = s.length
	}
	tiles, err := s.waitRow(ctx, length)
	if err == nil {
		return tiles, nil
	}

	p := s.page.Context(ctx).Timeout(s.cfg.WaitTimeout / 3)
	btn, berr := p.ElementR("button", s.cfg.Selectors.DirectSubmit)
	if berr == nil {
		log.Info().Msg("direct submit requested by page")
		if cerr := btn.Click(proto.InputMouseButtonLeft, 1); cerr != nil {
			err = fmt.Errorf("direct submit: %w", cerr)
		} else if tiles, err = s.waitRow(ctx, length); err == nil {
			return tiles, nil
		}
	}
	s.resync(ctx, length)
	return nil, err
}

// resync aligns the row counter with what the page actually rendered, so a
// guess the page swallowed does not stall later captures.
func (s *Surface) resync(ctx context.Context, length int) {
	els, err := s.page.Context(ctx).Elements(s.cfg.Selectors.Tiles)
	if err != nil || length <= 0 {
		return
	}
	if n := len(els) / length; n < s.rows {
		log.Warn().Int("expected", s.rows).Int("rendered", n).Msg("tile rows out of step")
		s.rows = n
	}
}

// waitRow polls until the newest row is present or the wait times out.
func (s *Surface) waitRow(ctx context.Context, length int) ([]feedback.Tile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WaitTimeout)
	defer cancel()
	t := time.NewTicker(s.cfg.Poll)
	defer t.Stop()
	for {
		if row, ok := s.readRow(ctx, length); ok {
			return row, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w after %s", ErrNoFeedback, s.cfg.WaitTimeout)
		case <-t.C:
		}
	}
}

func (s *Surface) readRow(ctx context.Context, length int) ([]feedback.Tile, bool) {
	p := s.page.Context(ctx)
	if spin, err := p.Elements(s.cfg.Selectors.Spinner); err != nil || len(spin) > 0 {
		return nil, false
	}
	els, err := p.Elements(s.cfg.Selectors.Tiles)
	if err != nil {
		return nil, false
	}
	tiles := make([]feedback.Tile, 0, len(els))
	for _, el := range els {
		res, err := el.Eval(`() => getComputedStyle(this).backgroundColor`)
		if err != nil {
			return nil, false
		}
		txt, _ := el.Text()
		tiles = append(tiles, feedback.Tile{Char: strings.TrimSpace(txt), Color: res.Value.Str()})
	}
	row, ok := latestRow(tiles, s.rows, length)
	return row, ok && matchesGuess(row, s.last)
}

// Refresh reloads the page and waits for the input box to come back.
func (s *Surface) Refresh(ctx context.Context) error {
	p := s.page.Context(ctx).Timeout(s.cfg.WaitTimeout)
	if err := p.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	if _, err := p.Element(s.cfg.Selectors.Input); err != nil {
		return fmt.Errorf("find input: %w", err)
	}
	s.rows = 0
	return nil
}
