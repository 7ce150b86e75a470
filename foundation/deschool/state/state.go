// Package state is the core API for the school and implements all the
// business rules and processing. Every operation runs against a copy of the
// ledgers and the copy only replaces the live ledgers when the operation
// succeeded as a whole.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/deschool/foundation/deschool/genesis"
	"github.com/ardanlabs/deschool/foundation/deschool/storage"
	"github.com/ardanlabs/deschool/foundation/deschool/yield"
)

// EventHandler defines a function that is called when events
// occur in the processing of operations.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the school.
type Config struct {
	Genesis   genesis.Genesis
	Storage   storage.Storage
	Source    yield.Source // Defaults to a simulated vault.
	EvHandler EventHandler
}

// State manages the school ledgers.
type State struct {
	mu        sync.Mutex
	evHandler EventHandler
	replaying bool
	seq       uint64

	genesis genesis.Genesis
	storage storage.Storage
	ledgers *ledgers
}

// New constructs the school from the genesis parameters and replays the
// journal to rebuild the ledgers.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	l, err := newLedgers(cfg.Genesis, cfg.Source)
	if err != nil {
		return nil, err
	}

	state := State{
		evHandler: ev,
		genesis:   cfg.Genesis,
		storage:   cfg.Storage,
		ledgers:   l,
	}

	if err := state.replay(); err != nil {
		return nil, err
	}

	return &state, nil
}

// Shutdown cleanly brings the school down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Close()
}

// replay applies every journaled operation in order.
func (s *State) replay() error {
	s.replaying = true
	defer func() { s.replaying = false }()

	s.evHandler("state: replay: started")

	iter := s.storage.ForEach()
	for rec, err := iter.Next(); !iter.Done(); rec, err = iter.Next() {
		if err != nil {
			return fmt.Errorf("journal: read: %w", err)
		}

		if rec.Seq != s.seq+1 {
			return fmt.Errorf("journal: record out of order, got[%d] exp[%d]", rec.Seq, s.seq+1)
		}

		if rec.Block != s.ledgers.block {
			return fmt.Errorf("journal: record %d at block %d, school at block %d", rec.Seq, rec.Block, s.ledgers.block)
		}

		if _, err := s.execute(context.Background(), rec.Caller, rec.Nonce, rec.Op, rec.Data); err != nil {
			return fmt.Errorf("journal: replay record %d %s: %w", rec.Seq, rec.Op, err)
		}
	}

	s.evHandler("state: replay: completed: records[%d] block[%d]", s.seq, s.ledgers.block)

	return nil
}
