package game

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("game not found")

// Registry holds the live games of a process.
//
// Each game has its own lock. Do runs a whole transaction (select, play,
// deselect) under that lock so two clients never interleave on one board,
// while different games proceed in parallel.
type Registry struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*entry
}

type entry struct {
	mu          sync.Mutex
	game        *Game
	subscribers map[int]chan Snapshot
	nextSub     int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[uuid.UUID]*entry)}
}

// Add registers g and returns its ID.
func (r *Registry) Add(g *Game) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g.ID] = &entry{game: g, subscribers: make(map[int]chan Snapshot)}
	log.Printf("game %s created (%s vs %s)", g.ID, g.Players[0].Name, g.Players[1].Name)
	return g.ID
}

// Has reports whether id is registered.
func (r *Registry) Has(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.games[id]
	return ok
}

// Len returns the number of registered games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Remove drops a game and closes its subscriptions.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	e, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	for key, ch := range e.subscribers {
		close(ch)
		delete(e.subscribers, key)
	}
	e.mu.Unlock()
	log.Printf("game %s removed", id)
}

// Do runs fn with exclusive access to the game. If fn succeeds, subscribers
// receive the resulting snapshot.
func (r *Registry) Do(id uuid.UUID, fn func(*Game) error) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.game); err != nil {
		return err
	}
	if len(e.subscribers) > 0 {
		snap := e.game.Snapshot()
		for _, ch := range e.subscribers {
			select {
			case ch <- snap:
			default:
				// Slow subscribers miss intermediate states.
			}
		}
	}
	return nil
}

// View runs fn with exclusive access and publishes nothing.
func (r *Registry) View(id uuid.UUID, fn func(*Game)) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.game)
	return nil
}

// Subscribe returns a channel receiving a snapshot after every successful Do
// on the game, starting with the current state. The channel is closed by
// cancel or when the game is removed.
func (r *Registry) Subscribe(id uuid.UUID, buffer int) (<-chan Snapshot, func(), error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	if buffer < 1 {
		buffer = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	key := e.nextSub
	e.nextSub++
	ch := make(chan Snapshot, buffer)
	ch <- e.game.Snapshot()
	e.subscribers[key] = ch

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subscribers[key]; ok {
			close(sub)
			delete(e.subscribers, key)
		}
	}
	return ch, cancel, nil
}

func (r *Registry) lookup(id uuid.UUID) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.games[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return e, nil
}
