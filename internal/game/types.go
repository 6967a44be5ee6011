// internal/game/types.go
//
// Core type definitions shared by the solver, the feedback interpreter and
// the local game simulator.
// Defines:
//   - Status: per-character result of a guess (green/yellow/gray/unknown).
//   - Game: state for a single simulated game session.

package game

// Status represents the evaluation result for a single character in a guess.
// Possible values:
//   - "green":   character is correct and in the correct position.
//   - "yellow":  character exists in the secret but at a different position.
//   - "gray":    character does not exist in the secret.
//   - "unknown": the tile color could not be classified; carries no constraint.
type Status string

const (
	StatusGreen   Status = "green"
	StatusYellow  Status = "yellow"
	StatusGray    Status = "gray"
	StatusUnknown Status = "unknown"
)

// Known reports whether s is one of the three constraint-bearing statuses.
func (s Status) Known() bool {
	return s == StatusGreen || s == StatusYellow || s == StatusGray
}

// AllGreen reports whether every status is green. An empty list is never a win.
func AllGreen(statuses []Status) bool {
	if len(statuses) == 0 {
		return false
	}
	for _, s := range statuses {
		if s != StatusGreen {
			return false
		}
	}
	return true
}

// Game holds the state of a single simulated game.
type Game struct {
	ID       string   // Unique game identifier (random hex string).
	Answer   string   // The secret verse.
	Length   int      // Characters per verse (10 or 14).
	Rows     int      // Attempts allowed before the game is lost.
	Guesses  []string // Guesses made so far.
	Finished bool     // True once the game is over (won or lost).
	Won      bool     // True if the game was finished with a win.
}
