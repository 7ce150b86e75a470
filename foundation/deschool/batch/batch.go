// Package batch implements the escrow that collects registration payments
// into batches and deposits each batch into the yield source exactly once.
// The escrow also holds the yield rewards owed to course stewards.
package batch

import (
	"context"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/fixed"
	"github.com/ardanlabs/deschool/foundation/deschool/token"
	"github.com/ardanlabs/deschool/foundation/deschool/yield"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Batch is a group of payments deposited into the yield source together.
// Total is the principal registered into the batch, ReleasedEarly the part
// settled before the deposit and Outstanding the deposited principal not yet
// settled.
type Batch struct {
	ID              uint64       `json:"id"`
	Total           *uint256.Int `json:"total"`
	ReleasedEarly   *uint256.Int `json:"released_early"`
	Deposited       *uint256.Int `json:"deposited"`
	Shares          *uint256.Int `json:"shares"`
	SharesRemaining *uint256.Int `json:"shares_remaining"`
	Outstanding     *uint256.Int `json:"outstanding"`
	DepositedAt     uint64       `json:"deposited_at"`
	Closed          bool         `json:"closed"`
}

func newBatch(id uint64) Batch {
	return Batch{
		ID:              id,
		Total:           new(uint256.Int),
		ReleasedEarly:   new(uint256.Int),
		Deposited:       new(uint256.Int),
		Shares:          new(uint256.Int),
		SharesRemaining: new(uint256.Int),
		Outstanding:     new(uint256.Int),
	}
}

func (b Batch) clone() Batch {
	b.Total = b.Total.Clone()
	b.ReleasedEarly = b.ReleasedEarly.Clone()
	b.Deposited = b.Deposited.Clone()
	b.Shares = b.Shares.Clone()
	b.SharesRemaining = b.SharesRemaining.Clone()
	b.Outstanding = b.Outstanding.Clone()
	return b
}

// Held returns the principal of an open batch still sitting in escrow.
func (b Batch) Held() *uint256.Int {
	if b.Closed {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(b.Total, b.ReleasedEarly)
}

// =============================================================================

// Escrow owns the batches. The batch with the highest id is the open one.
type Escrow struct {
	addr    common.Address
	batches []Batch
	rewards map[common.Address]*uint256.Int
}

// New constructs an escrow at the address with batch 0 open.
func New(addr common.Address) *Escrow {
	return &Escrow{
		addr:    addr,
		batches: []Batch{newBatch(0)},
		rewards: make(map[common.Address]*uint256.Int),
	}
}

// Clone makes a deep copy of the escrow.
func (e *Escrow) Clone() *Escrow {
	cpy := Escrow{
		addr:    e.addr,
		batches: make([]Batch, len(e.batches)),
		rewards: make(map[common.Address]*uint256.Int, len(e.rewards)),
	}

	for i, b := range e.batches {
		cpy.batches[i] = b.clone()
	}

	for steward, amount := range e.rewards {
		cpy.rewards[steward] = amount.Clone()
	}

	return &cpy
}

// Address returns the address holding escrowed funds.
func (e *Escrow) Address() common.Address {
	return e.addr
}

// CurrentID returns the id of the open batch.
func (e *Escrow) CurrentID() uint64 {
	return uint64(len(e.batches) - 1)
}

// CurrentTotal returns the principal registered into the open batch.
func (e *Escrow) CurrentTotal() *uint256.Int {
	return e.batches[len(e.batches)-1].Total.Clone()
}

// Batch returns the batch with the id.
func (e *Escrow) Batch(id uint64) (Batch, error) {
	if id >= uint64(len(e.batches)) {
		return Batch{}, fail.New(fail.NotFound, "batchId does not exist")
	}
	return e.batches[id].clone(), nil
}

// Batches returns every batch in id order.
func (e *Escrow) Batches() []Batch {
	cpy := make([]Batch, len(e.batches))
	for i, b := range e.batches {
		cpy[i] = b.clone()
	}
	return cpy
}

// Add records principal already moved into escrow against the open batch
// and returns the batch id.
func (e *Escrow) Add(amount *uint256.Int) uint64 {
	cur := &e.batches[len(e.batches)-1]
	cur.Total.Add(cur.Total, amount)
	return cur.ID
}

// Deposit closes the open batch, opens the next one and sends the batch
// principal to the yield source. The batch is closed before the source is
// called.
func (e *Escrow) Deposit(ctx context.Context, tokens token.Reserve, src yield.Source, block uint64) (Batch, error) {
	idx := len(e.batches) - 1
	amount := e.batches[idx].Held()

	if amount.IsZero() {
		return Batch{}, fail.New(fail.InsufficientFunds, "batchDeposit: no funds to deposit")
	}

	cur := &e.batches[idx]
	cur.Closed = true
	cur.Deposited = amount.Clone()
	cur.Outstanding = amount.Clone()
	cur.DepositedAt = block
	e.batches = append(e.batches, newBatch(cur.ID+1))

	shares, err := src.Deposit(ctx, tokens, e.addr, amount)
	if err != nil {
		e.batches = e.batches[:idx+1]
		e.batches[idx] = reopen(e.batches[idx])
		return Batch{}, err
	}

	cur = &e.batches[idx]
	cur.Shares = shares.Clone()
	cur.SharesRemaining = shares.Clone()

	return cur.clone(), nil
}

func reopen(b Batch) Batch {
	b.Closed = false
	b.Deposited = new(uint256.Int)
	b.Outstanding = new(uint256.Int)
	b.DepositedAt = 0
	return b
}

// Withdraw settles principal belonging to the batch into escrow. For an open
// batch the principal is still in escrow. For a closed batch the matching
// slice of shares, rounded up, is redeemed: up to the principal is returned
// as principal and anything above it is yield. A loss in the source reduces
// the principal.
func (e *Escrow) Withdraw(ctx context.Context, tokens token.Reserve, src yield.Source, batchID uint64, principal *uint256.Int) (paid *uint256.Int, surplus *uint256.Int, err error) {
	if batchID >= uint64(len(e.batches)) {
		return nil, nil, fail.New(fail.NotFound, "batchId does not exist")
	}

	b := &e.batches[batchID]

	if !b.Closed {
		if b.Held().Lt(principal) {
			return nil, nil, fail.New(fail.InsufficientFunds, "batch: principal exceeds batch funds")
		}
		b.ReleasedEarly.Add(b.ReleasedEarly, principal)
		return principal.Clone(), new(uint256.Int), nil
	}

	if b.Outstanding.Lt(principal) {
		return nil, nil, fail.New(fail.InsufficientFunds, "batch: principal exceeds batch funds")
	}

	// The last settlement takes every remaining share so no dust is left.
	last := principal.Eq(b.Outstanding)

	slice := b.SharesRemaining.Clone()
	if !last {
		slice, err = fixed.MulDivUp(principal, b.Shares, b.Deposited)
		if err != nil {
			return nil, nil, fail.New(fail.InvalidInput, "batch: "+err.Error())
		}
		slice = fixed.Min(slice, b.SharesRemaining)
	}

	b.Outstanding.Sub(b.Outstanding, principal)
	b.SharesRemaining.Sub(b.SharesRemaining, slice)

	amount, err := src.Withdraw(ctx, tokens, e.addr, slice)
	if err != nil {
		return nil, nil, err
	}

	if !last && amount.Lt(principal) {
		extra, err := e.topUp(ctx, tokens, src, b, new(uint256.Int).Sub(principal, amount))
		if err != nil {
			return nil, nil, err
		}
		amount.Add(amount, extra)
	}

	paid = fixed.Min(amount, principal)
	surplus = new(uint256.Int).Sub(amount, paid)

	return paid, surplus, nil
}

// topUp redeems the extra shares that cover a rounding shortfall. Nothing
// is taken when the share price fell below the deposit price since the loss
// belongs to every settlement of the batch.
func (e *Escrow) topUp(ctx context.Context, tokens token.Reserve, src yield.Source, b *Batch, short *uint256.Int) (*uint256.Int, error) {
	pps := src.PricePerShare()
	if pps.IsZero() || b.SharesRemaining.IsZero() || b.Shares.IsZero() {
		return new(uint256.Int), nil
	}

	depositPrice, err := fixed.MulDiv(b.Deposited, fixed.Unit, b.Shares)
	if err != nil || pps.Lt(depositPrice) {
		return new(uint256.Int), nil
	}

	extra, err := fixed.MulDivUp(short, fixed.Unit, pps)
	if err != nil {
		return new(uint256.Int), nil
	}
	extra = fixed.Min(extra, b.SharesRemaining)

	b.SharesRemaining.Sub(b.SharesRemaining, extra)

	return src.Withdraw(ctx, tokens, e.addr, extra)
}

// =============================================================================

// Rewards returns the yield owed to the steward.
func (e *Escrow) Rewards(steward common.Address) *uint256.Int {
	if amount, exists := e.rewards[steward]; exists {
		return amount.Clone()
	}
	return new(uint256.Int)
}

// TotalRewards returns the yield owed to every steward.
func (e *Escrow) TotalRewards() *uint256.Int {
	total := new(uint256.Int)
	for _, amount := range e.rewards {
		total.Add(total, amount)
	}
	return total
}

// Credit adds yield, already held in escrow, to the steward's rewards.
func (e *Escrow) Credit(steward common.Address, amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	e.rewards[steward] = new(uint256.Int).Add(e.Rewards(steward), amount)
}

// Claim zeroes the steward's rewards and sends them from escrow.
func (e *Escrow) Claim(tokens token.Reserve, steward common.Address) (*uint256.Int, error) {
	amount := e.Rewards(steward)
	if amount.IsZero() {
		return nil, fail.New(fail.InsufficientFunds, "withdrawYieldRewards: no rewards")
	}

	delete(e.rewards, steward)

	if err := tokens.Transfer(e.addr, steward, amount); err != nil {
		e.rewards[steward] = amount
		return nil, err
	}

	return amount, nil
}
