// internal/store/memory.go
//
// In-memory store of simulated games.
// Used by the local simulator; state is lost when the process restarts.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex. Mutations of a stored game go through
//     Update so that concurrent guesses on the same game are serialized.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/xunhualing/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("game not found")

// Store defines the persistence interface for simulated games.
type Store interface {
	// Save persists or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Get returns a snapshot of the game with the given ID.
	Get(ctx context.Context, id string) (game.Game, error)

	// Update runs fn on the stored game while holding the write lock.
	Update(ctx context.Context, id string, fn func(*game.Game) error) error

	// Len reports how many games are held.
	Len() int
}

type memory struct {
	mu    sync.RWMutex          // guards games
	games map[string]*game.Game // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*game.Game)}
}

func (m *memory) Save(_ context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

func (m *memory) Get(_ context.Context, id string) (game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return game.Game{}, ErrNotFound
	}
	snap := *g
	snap.Guesses = append([]string(nil), g.Guesses...)
	return snap, nil
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Game) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	return fn(g)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
