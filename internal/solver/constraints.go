// internal/solver/constraints.go
//
// Constraint set built from feedback.
// Responsibilities:
//   - Record green positions and yellow and gray characters.
//   - Resolve contradictory feedback according to the Policy.
//   - Check candidates in green, yellow, gray order.

package solver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/robalobadob/xunhualing/internal/game"
	"github.com/robalobadob/xunhualing/internal/verse"
)

var (
	ErrLengthMismatch = errors.New("solver: status count does not match guess length")
	ErrUnknownStatus  = errors.New("solver: feedback contains an unknown status")
)

// Policy decides how feedback that contradicts known facts is ingested.
type Policy int

const (
	// PolicyReject keeps positive evidence: a green or yellow character is
	// removed from gray, and a gray for a character known to be present is
	// dropped and reported.
	PolicyReject Policy = iota
	// PolicyFallback applies feedback verbatim. Contradictions empty the pool
	// and the caller's exhaustion reset takes over.
	PolicyFallback
)

// ParsePolicy maps "reject" or "fallback" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "fallback":
		return PolicyFallback, nil
	}
	return PolicyReject, fmt.Errorf("solver: unknown conflict policy %q", s)
}

func (p Policy) String() string {
	if p == PolicyFallback {
		return "fallback"
	}
	return "reject"
}

// ConflictError lists characters whose feedback contradicted the known
// present/absent facts. The non-conflicting part of the feedback was applied.
type ConflictError struct {
	Chars []rune
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("solver: contradictory feedback for %q", string(e.Chars))
}

// Constraints accumulates green, yellow and gray facts for one session cycle.
// It is only mutated through RecordFeedback and Reset.
type Constraints struct {
	policy Policy
	green  map[int]rune
	yellow map[rune]struct{}
	gray   map[rune]struct{}
}

// NewConstraints returns an empty constraint set using policy.
func NewConstraints(policy Policy) *Constraints {
	c := &Constraints{policy: policy}
	c.Reset()
	return c
}

// Reset clears all facts.
func (c *Constraints) Reset() {
	c.green = make(map[int]rune)
	c.yellow = make(map[rune]struct{})
	c.gray = make(map[rune]struct{})
}

// Empty reports whether no facts are recorded.
func (c *Constraints) Empty() bool {
	return len(c.green) == 0 && len(c.yellow) == 0 && len(c.gray) == 0
}

// RecordFeedback folds the statuses observed for guess into the set.
// Green sets the position (overwriting), yellow and gray add to their sets.
// Malformed feedback is rejected whole and leaves the set unchanged. Under
// PolicyReject a *ConflictError is returned for contradictory characters
// after the rest of the feedback has been applied.
func (c *Constraints) RecordFeedback(guess verse.Verse, statuses []game.Status) error {
	rs := guess.Runes()
	if len(rs) != len(statuses) {
		return fmt.Errorf("%w: %d characters, %d statuses", ErrLengthMismatch, len(rs), len(statuses))
	}
	for i, s := range statuses {
		if !s.Known() {
			return fmt.Errorf("%w at position %d", ErrUnknownStatus, i)
		}
	}

	if c.policy == PolicyFallback {
		for i, s := range statuses {
			switch s {
			case game.StatusGreen:
				c.green[i] = rs[i]
			case game.StatusYellow:
				c.yellow[rs[i]] = struct{}{}
			case game.StatusGray:
				c.gray[rs[i]] = struct{}{}
			}
		}
		return nil
	}

	conflicts := make(map[rune]struct{})
	for i, s := range statuses {
		switch s {
		case game.StatusGreen:
			c.green[i] = rs[i]
		case game.StatusYellow:
			c.yellow[rs[i]] = struct{}{}
		default:
			continue
		}
		if _, ok := c.gray[rs[i]]; ok {
			delete(c.gray, rs[i])
			conflicts[rs[i]] = struct{}{}
		}
	}
	present := c.present()
	for i, s := range statuses {
		if s != game.StatusGray {
			continue
		}
		if _, ok := present[rs[i]]; ok {
			conflicts[rs[i]] = struct{}{}
			continue
		}
		c.gray[rs[i]] = struct{}{}
	}

	if len(conflicts) > 0 {
		return &ConflictError{Chars: sortedRunes(conflicts)}
	}
	return nil
}

// IsConsistent reports whether v matches every green position, contains
// every yellow character and contains no gray character.
func (c *Constraints) IsConsistent(v verse.Verse) bool {
	return c.consistent(v.Runes())
}

// consistent checks green, then yellow, then gray, stopping at the first violation.
func (c *Constraints) consistent(rs []rune) bool {
	for pos, ch := range c.green {
		if pos >= len(rs) || rs[pos] != ch {
			return false
		}
	}
	for ch := range c.yellow {
		if !containsRune(rs, ch) {
			return false
		}
	}
	for ch := range c.gray {
		if containsRune(rs, ch) {
			return false
		}
	}
	return true
}

// Green returns a copy of the position → character facts.
func (c *Constraints) Green() map[int]rune {
	out := make(map[int]rune, len(c.green))
	for k, v := range c.green {
		out[k] = v
	}
	return out
}

// Yellow returns the present-elsewhere characters in code point order.
func (c *Constraints) Yellow() []rune { return sortedRunes(c.yellow) }

// Gray returns the absent characters in code point order.
func (c *Constraints) Gray() []rune { return sortedRunes(c.gray) }

func (c *Constraints) present() map[rune]struct{} {
	out := make(map[rune]struct{}, len(c.yellow)+len(c.green))
	for ch := range c.yellow {
		out[ch] = struct{}{}
	}
	for _, ch := range c.green {
		out[ch] = struct{}{}
	}
	return out
}

func containsRune(rs []rune, c rune) bool {
	for _, r := range rs {
		if r == c {
			return true
		}
	}
	return false
}

func sortedRunes(set map[rune]struct{}) []rune {
	out := make([]rune, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
