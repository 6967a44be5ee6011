package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/xunhualing/internal/history"
	"github.com/robalobadob/xunhualing/internal/session"
	"github.com/robalobadob/xunhualing/internal/solver"
	"github.com/robalobadob/xunhualing/internal/surface/browser"
	"github.com/robalobadob/xunhualing/internal/surface/remote"
	"github.com/robalobadob/xunhualing/internal/verse"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Play one session until the verse is found",
	Long: `Play the game with the frequency solver.

Surfaces:
  browser - drive the real page at GAME_URL with a Chromium browser
  remote  - play against a simulator started with "xunhualing serve"`,
	RunE: runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.String("surface", "browser", "game surface: browser | remote")
	f.String("server", "", "simulator base URL for --surface remote (default http://localhost:$PORT)")
	f.Int("length", 0, "verse length 10 or 14 (default: VERSE_LENGTH, else detected)")
	f.String("answer", "", "fixed secret for the remote simulator")
	f.Bool("daily", false, "play the simulator's daily verse")
	f.String("corpus", "", "corpus file or directory (default: CORPUS_FILE, else embedded)")
	f.Int("max-turns", -1, "stop after this many turns (default: MAX_TURNS)")
	f.Bool("headless", false, "run the browser headless (default: HEADLESS)")
}

// playSurface is a session.Surface that knows its verse length.
type playSurface interface {
	session.Surface
	Length() int
}

func runSolve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := cmd.Flags()
	kind, _ := f.GetString("surface")
	length, _ := f.GetInt("length")
	if length == 0 {
		length = cfg.VerseLength
	}
	if v, _ := f.GetString("corpus"); v != "" {
		cfg.CorpusFile = v
	}
	if n, _ := f.GetInt("max-turns"); n >= 0 {
		cfg.MaxTurns = n
	}
	if f.Changed("headless") {
		cfg.Headless, _ = f.GetBool("headless")
	}

	policy, err := solver.ParsePolicy(cfg.ConflictPolicy)
	if err != nil {
		return err
	}

	surf, closeFn, err := openSurface(ctx, cmd, kind, length)
	if err != nil {
		return err
	}
	defer closeFn()
	if length != 0 && length != surf.Length() {
		log.Warn().Int("configured", length).Int("page", surf.Length()).Msg("using the surface's verse length")
	}
	length = surf.Length()

	corpus, err := verse.Load(cfg.CorpusFile, length)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	log.Info().Int("verses", len(corpus)).Int("length", length).Msg("corpus loaded")

	sinks, closeSinks, err := openSinks()
	if err != nil {
		return err
	}
	defer closeSinks()

	scfg := session.Config{
		MaxAttempts: cfg.MaxAttempts,
		RetryBudget: cfg.RetryBudget,
		RetryDelay:  500 * time.Millisecond,
		MaxTurns:    cfg.MaxTurns,
	}
	if cfg.ConfirmExit {
		scfg.OnSolved = func(ctx context.Context, answer verse.Verse) error {
			fmt.Fprintf(cmd.OutOrStdout(), "solved: %s\npress q then Enter to exit\n", answer)
			return waitForQuit(ctx, cmd.InOrStdin())
		}
	}

	ctl := session.New(solver.New(corpus, length, policy), surf, scfg, sinks...)
	res, err := ctl.Run(ctx)
	printResult(cmd.OutOrStdout(), res)
	return err
}

func openSurface(ctx context.Context, cmd *cobra.Command, kind string, length int) (playSurface, func(), error) {
	switch kind {
	case "remote":
		server, _ := cmd.Flags().GetString("server")
		if server == "" {
			server = "http://localhost:" + cfg.Port
		}
		answer, _ := cmd.Flags().GetString("answer")
		daily, _ := cmd.Flags().GetBool("daily")
		if length == 0 {
			length = verse.LengthFive
		}
		c := remote.New(server, cfg.WaitTimeout)
		if _, err := c.Start(ctx, length, answer, daily); err != nil {
			return nil, nil, fmt.Errorf("start remote game: %w", err)
		}
		return c, func() {}, nil
	case "browser":
		s, err := browser.Open(ctx, browser.Config{
			URL:         cfg.GameURL,
			Bin:         cfg.BrowserBin,
			Headless:    cfg.Headless,
			WaitTimeout: cfg.WaitTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Msg("close browser")
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown surface %q", kind)
}

// openSinks builds the configured history sinks.
func openSinks() ([]history.Sink, func(), error) {
	var sinks []history.Sink
	closeFn := func() {}
	if cfg.HistoryFile != "" {
		sinks = append(sinks, history.JSONFile{Path: cfg.HistoryFile})
	}
	if cfg.HistoryDB != "" {
		st, err := history.OpenStore(cfg.HistoryDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open history db: %w", err)
		}
		sinks = append(sinks, st)
		closeFn = func() { _ = st.Close() }
	}
	return sinks, closeFn, nil
}

// waitForQuit blocks until a line reading "q" arrives, input ends or ctx is done.
func waitForQuit(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return errors.New("input closed before q")
			}
			if strings.EqualFold(strings.TrimSpace(l), "q") {
				return nil
			}
		}
	}
}

func printResult(w io.Writer, res session.Result) {
	fmt.Fprintf(w, "session %s: %s after %d turns in %d cycles\n", res.SessionID, res.Reason, res.Turns, res.Cycles)
	if res.Answer != "" {
		fmt.Fprintf(w, "answer: %s\n", res.Answer)
	}
}
