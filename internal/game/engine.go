// internal/game/engine.go
//
// Game engine for a single simulated verse game.
// Responsibilities:
//   - Create new games for a fixed secret verse.
//   - Validate and apply guesses (length, ideographs only).
//   - Score guesses using the two-pass Wordle algorithm over runes.
//   - Track state transitions: playing → won/lost, and refresh back to playing.
//
// Notes:
//   - Secrets are chosen by the caller (the simulator draws them from the corpus).
//   - randomID() is a compact hex identifier for correlating server state.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/robalobadob/xunhualing/internal/verse"
)

// DefaultRows is the number of attempts the real surface allows before it
// has to be refreshed.
const DefaultRows = 9

var (
	ErrFinished     = errors.New("game finished")
	ErrInvalidGuess = errors.New("invalid guess")
)

// New constructs a new game for answer. rows <= 0 selects DefaultRows.
func New(answer string, rows int) *Game {
	if rows <= 0 {
		rows = DefaultRows
	}
	return &Game{
		ID:      randomID(),
		Answer:  answer,
		Length:  utf8.RuneCountInString(answer),
		Rows:    rows,
		Guesses: []string{},
	}
}

// ApplyGuess validates and scores a guess, mutating the game state.
// Returns: the per-character statuses, the new state string ("playing"/"won"/"lost"), or an error.
//
// Validation rules:
//   - Game must not be finished.
//   - Guess must be exactly g.Length ideographs after trimming surrounding space.
//
// State transitions:
//   - If all tiles are green → Finished = true, Won = true.
//   - Else if the number of guesses reaches g.Rows → Finished = true (loss).
func (g *Game) ApplyGuess(guess string) ([]Status, string, error) {
	if g.Finished {
		return nil, g.State(), ErrFinished
	}
	guess = strings.TrimSpace(guess)
	if utf8.RuneCountInString(guess) != g.Length || !verse.AllIdeographs(guess) {
		return nil, g.State(), ErrInvalidGuess
	}

	statuses := Score(g.Answer, guess)
	g.Guesses = append(g.Guesses, guess)

	if AllGreen(statuses) {
		g.Finished, g.Won = true, true
	} else if len(g.Guesses) >= g.Rows {
		g.Finished = true
	}
	return statuses, g.State(), nil
}

// Refresh starts a new attempt cycle on the same secret, like reloading the
// game page. A won game stays won.
func (g *Game) Refresh() {
	if g.Won {
		return
	}
	g.Guesses = []string{}
	g.Finished = false
}

// State reports a coarse string representation of the current game state.
func (g *Game) State() string {
	if g.Finished {
		if g.Won {
			return "won"
		}
		return "lost"
	}
	return "playing"
}

// Score implements the two-pass Wordle scoring algorithm over runes.
//
// Pass 1:
//   - Mark exact matches as green.
//   - Count remaining (non-green) answer characters.
//
// Pass 2:
//   - For each non-green guess character: if there is remaining count for it,
//     mark yellow and decrement the count; otherwise mark gray.
//
// Guesses of a different length than the answer score as all gray.
func Score(answer, guess string) []Status {
	a, gr := []rune(answer), []rune(guess)
	res := make([]Status, len(gr))
	if len(a) != len(gr) {
		for i := range res {
			res[i] = StatusGray
		}
		return res
	}

	counts := make(map[rune]int, len(a))
	for i := range gr {
		if gr[i] == a[i] {
			res[i] = StatusGreen
		} else {
			counts[a[i]]++
		}
	}

	for i := range gr {
		if res[i] == StatusGreen {
			continue
		}
		if counts[gr[i]] > 0 {
			res[i] = StatusYellow
			counts[gr[i]]--
		} else {
			res[i] = StatusGray
		}
	}
	return res
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
