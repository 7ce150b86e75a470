package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/storage"
	"github.com/ethereum/go-ethereum/common"
)

// ctxKey marks a context that belongs to an operation in flight.
type ctxKey int

const opKey ctxKey = 1

// inFlight returns the operation the context belongs to, if any.
func inFlight(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(opKey).(string)
	return op, ok
}

// opFunc executes an operation against a clone of the ledgers.
type opFunc func(ctx context.Context, l *ledgers, caller common.Address, rcpt *Receipt) error

// apply serializes the operation, executes it against cloned ledgers and
// swaps the clone in only when the operation succeeds. A nested call made
// with the context of an operation in flight is rejected.
func (s *State) apply(ctx context.Context, caller common.Address, nonce uint64, op string, data json.RawMessage, fn opFunc) (Receipt, error) {
	if inner, ok := inFlight(ctx); ok {
		return Receipt{}, fail.Newf(fail.Reentrant, "%s: reentrant call during %s", op, inner)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.ledgers.clone()

	if nonce != 0 {
		if exp := l.nonces[caller] + 1; nonce != exp {
			return Receipt{}, fail.Newf(fail.InvalidInput, "invalid nonce, got[%d] exp[%d]", nonce, exp)
		}
		l.nonces[caller] = nonce
	}

	rcpt := Receipt{
		Seq:    s.seq + 1,
		Block:  l.block,
		Op:     op,
		Caller: caller,
	}

	ctx = context.WithValue(ctx, opKey, op)
	if err := fn(ctx, l, caller, &rcpt); err != nil {
		return Receipt{}, err
	}

	if !s.replaying {
		rec := storage.Record{
			Seq:    rcpt.Seq,
			Block:  rcpt.Block,
			Caller: caller,
			Nonce:  nonce,
			Op:     op,
			Data:   data,
		}

		if err := s.storage.Write(rec); err != nil {
			return Receipt{}, fmt.Errorf("journal: write: %w", err)
		}
	}

	s.ledgers = l
	s.seq = rcpt.Seq

	if !s.replaying {
		for _, ev := range rcpt.Events {
			s.evHandler("event: %s: %s", ev.Name, ev.JSON())
		}
	}

	return rcpt, nil
}

// =============================================================================

// Receipt is the outcome of a successful operation.
type Receipt struct {
	Seq    uint64         `json:"seq"`
	Block  uint64         `json:"block"`
	Op     string         `json:"op"`
	Caller common.Address `json:"caller"`
	Events []Event        `json:"events"`
}

func (r *Receipt) emit(name string, data any) {
	r.Events = append(r.Events, Event{Name: name, Data: data})
}

// Event is a record emitted by an operation.
type Event struct {
	Name string `json:"name"`
	Data any    `json:"data"`
}

// JSON returns the event data encoded for logs and subscribers.
func (e Event) JSON() string {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return "{}"
	}
	return string(data)
}
