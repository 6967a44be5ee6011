// Package history records every turn of a solving session and persists the
// log when the session ends.
//
// The log is append-only. A Transcript is lossless: every turn's guess, the
// full per-character status list, the attempt index within the session cycle
// and the turn outcome can be reconstructed from it.
package history

import (
	"context"
	"time"

	"github.com/robalobadob/xunhualing/internal/game"
	"github.com/robalobadob/xunhualing/internal/verse"
)

// Outcome says what happened to a turn.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"  // feedback captured and folded into the constraints
	OutcomeAbandoned Outcome = "abandoned" // submitted, but no usable feedback within the retry budget
)

// Reason says why a session ended.
type Reason string

const (
	ReasonSolved    Reason = "solved"
	ReasonExhausted Reason = "exhausted"
	ReasonAborted   Reason = "aborted"
)

// CharStatus is the status of one character of a guess.
type CharStatus struct {
	Char   string      `json:"char"`
	Status game.Status `json:"status"`
}

// Record is one turn.
type Record struct {
	Guess   verse.Verse  `json:"guess"`
	Status  []CharStatus `json:"status"`
	Attempt int          `json:"attempt"` // 1-based within the cycle
	Cycle   int          `json:"cycle"`   // 1-based
	Outcome Outcome      `json:"outcome"`
	At      time.Time    `json:"at"`
}

// Statuses returns the bare status list of r.
func (r Record) Statuses() []game.Status {
	out := make([]game.Status, len(r.Status))
	for i, cs := range r.Status {
		out[i] = cs.Status
	}
	return out
}

// NewRecord pairs each character of guess with its status.
func NewRecord(guess verse.Verse, statuses []game.Status, attempt, cycle int, outcome Outcome) Record {
	rs := guess.Runes()
	cs := make([]CharStatus, 0, len(statuses))
	for i, s := range statuses {
		ch := ""
		if i < len(rs) {
			ch = string(rs[i])
		}
		cs = append(cs, CharStatus{Char: ch, Status: s})
	}
	return Record{
		Guess:   guess,
		Status:  cs,
		Attempt: attempt,
		Cycle:   cycle,
		Outcome: outcome,
		At:      time.Now().UTC(),
	}
}

// Log is an append-only sequence of records.
type Log struct {
	records []Record
}

// Append adds r to the end of the log.
func (l *Log) Append(r Record) { l.records = append(l.records, r) }

// Len returns the number of records.
func (l *Log) Len() int { return len(l.records) }

// Records returns a copy of the log.
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Transcript is a finished session as handed to sinks.
type Transcript struct {
	SessionID string      `json:"sessionId"`
	Length    int         `json:"length"`
	Reason    Reason      `json:"reason"`
	Answer    verse.Verse `json:"answer,omitempty"`
	StartedAt time.Time   `json:"startedAt"`
	EndedAt   time.Time   `json:"endedAt"`
	Records   []Record    `json:"records"`
}

// Sink persists transcripts.
type Sink interface {
	Save(ctx context.Context, t Transcript) error
}
