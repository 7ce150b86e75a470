// Package scholarship maintains the sponsored seats of each course. Providers
// fund a pool per course and every whole fee of a funding opens one
// scholarship slot.
package scholarship

import (
	"slices"

	"github.com/ardanlabs/deschool/foundation/deschool/course"
	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/fixed"
	"github.com/ardanlabs/deschool/foundation/deschool/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Charge is the part of a scholar's stake paid by one provider.
type Charge struct {
	Provider common.Address `json:"provider"`
	Amount   *uint256.Int   `json:"amount"`
}

// Pool is the scholarship funding of a single course. Free is the part of
// the pool not staked by an active scholar and Unspent splits it by
// provider. Stakes records which providers pay for each active scholar.
type Pool struct {
	CourseID  uint64                          `json:"course_id"`
	Free      *uint256.Int                    `json:"free"`
	Providers map[common.Address]*uint256.Int `json:"providers"`
	Unspent   map[common.Address]*uint256.Int `json:"unspent"`
	Order     []common.Address                `json:"order"`
	Stakes    map[common.Address][]Charge     `json:"stakes"`
}

func newPool(courseID uint64) *Pool {
	return &Pool{
		CourseID:  courseID,
		Free:      new(uint256.Int),
		Providers: make(map[common.Address]*uint256.Int),
		Unspent:   make(map[common.Address]*uint256.Int),
		Stakes:    make(map[common.Address][]Charge),
	}
}

func (p *Pool) clone() *Pool {
	cpy := Pool{
		CourseID:  p.CourseID,
		Free:      p.Free.Clone(),
		Providers: make(map[common.Address]*uint256.Int, len(p.Providers)),
		Unspent:   make(map[common.Address]*uint256.Int, len(p.Unspent)),
		Order:     append([]common.Address(nil), p.Order...),
		Stakes:    make(map[common.Address][]Charge, len(p.Stakes)),
	}

	for provider, amount := range p.Providers {
		cpy.Providers[provider] = amount.Clone()
	}

	for provider, amount := range p.Unspent {
		cpy.Unspent[provider] = amount.Clone()
	}

	for scholar, charges := range p.Stakes {
		cc := make([]Charge, len(charges))
		for i, ch := range charges {
			cc[i] = Charge{Provider: ch.Provider, Amount: ch.Amount.Clone()}
		}
		cpy.Stakes[scholar] = cc
	}

	return &cpy
}

// Contribution returns what the provider put into the pool and has not
// withdrawn.
func (p Pool) Contribution(provider common.Address) *uint256.Int {
	return get(p.Providers, provider)
}

// Available returns the provider's funds not staked by a scholar. This is
// the most the provider can withdraw.
func (p Pool) Available(provider common.Address) *uint256.Int {
	return get(p.Unspent, provider)
}

func (p *Pool) credit(provider common.Address, amount *uint256.Int) {
	if !slices.Contains(p.Order, provider) {
		p.Order = append(p.Order, provider)
	}
	p.Unspent[provider] = new(uint256.Int).Add(get(p.Unspent, provider), amount)
}

// charge takes the amount from the providers in funding order.
func (p *Pool) charge(amount *uint256.Int) []Charge {
	left := amount.Clone()

	var charges []Charge
	for _, provider := range p.Order {
		if left.IsZero() {
			break
		}

		unspent := get(p.Unspent, provider)
		if unspent.IsZero() {
			continue
		}

		take := fixed.Min(unspent, left)
		p.Unspent[provider] = unspent.Sub(unspent, take)
		left.Sub(left, take)

		charges = append(charges, Charge{Provider: provider, Amount: take})
	}

	return charges
}

// refund credits returned stake back to the providers who paid for it, in
// the order they were charged.
func (p *Pool) refund(scholar common.Address, amount *uint256.Int, finished bool) {
	left := amount.Clone()
	charges := p.Stakes[scholar]

	for len(charges) > 0 && !left.IsZero() {
		ch := charges[0]

		give := fixed.Min(ch.Amount, left)
		p.credit(ch.Provider, give)
		left.Sub(left, give)

		ch.Amount = new(uint256.Int).Sub(ch.Amount, give)
		switch ch.Amount.IsZero() {
		case true:
			charges = charges[1:]
		default:
			charges[0] = ch
		}
	}

	if finished || len(charges) == 0 {
		delete(p.Stakes, scholar)
		return
	}
	p.Stakes[scholar] = charges
}

func get(m map[common.Address]*uint256.Int, addr common.Address) *uint256.Int {
	if amount, exists := m[addr]; exists {
		return amount.Clone()
	}
	return new(uint256.Int)
}

// =============================================================================

// Pools owns the scholarship pools of every course. Pool funds are held by
// the address the pools were constructed with.
type Pools struct {
	addr  common.Address
	pools map[uint64]*Pool
}

// New constructs an empty set of pools holding funds at the address.
func New(addr common.Address) *Pools {
	return &Pools{
		addr:  addr,
		pools: make(map[uint64]*Pool),
	}
}

// Clone makes a deep copy of the pools.
func (ps *Pools) Clone() *Pools {
	cpy := Pools{
		addr:  ps.addr,
		pools: make(map[uint64]*Pool, len(ps.pools)),
	}

	for id, p := range ps.pools {
		cpy.pools[id] = p.clone()
	}

	return &cpy
}

// Pool returns a snapshot of the course pool.
func (ps *Pools) Pool(courseID uint64) Pool {
	return *ps.pool(courseID).clone()
}

func (ps *Pools) pool(courseID uint64) *Pool {
	p, exists := ps.pools[courseID]
	if !exists {
		p = newPool(courseID)
		ps.pools[courseID] = p
	}
	return p
}

// Fund pulls the amount from the provider into the course pool and opens
// one slot per whole fee it pays for. The remainder stays in the pool
// without opening a slot. It returns the number of new slots.
func (ps *Pools) Fund(tokens token.Reserve, c *course.Course, provider common.Address, amount *uint256.Int) (uint64, error) {
	if amount.Lt(c.Fee) {
		return 0, fail.New(fail.InvalidInput, "createScholarships: must seed scholarship with enough funds to justify gas costs")
	}

	p := ps.pool(c.ID)

	p.Free.Add(p.Free, amount)
	p.credit(provider, amount)
	p.Providers[provider] = new(uint256.Int).Add(p.Contribution(provider), amount)

	added := slots(amount, c.Fee)
	c.ScholarshipTotal = new(uint256.Int).Add(c.ScholarshipTotal, amount)
	c.ScholarsAvailable += added

	if err := tokens.TransferFrom(ps.addr, provider, ps.addr, amount); err != nil {
		return 0, err
	}

	return added, nil
}

// Allocate takes one open slot for the scholar and returns the stake moved
// out of the pool. The stake is charged to the providers in the order they
// funded the pool.
func (ps *Pools) Allocate(c *course.Course, scholar common.Address) (*uint256.Int, error) {
	p := ps.pool(c.ID)

	if c.ScholarsAvailable == 0 || p.Free.Lt(c.Fee) {
		return nil, fail.New(fail.InsufficientFunds, "registerScholar: no scholarships available for this course")
	}

	p.Free.Sub(p.Free, c.Fee)
	p.Stakes[scholar] = p.charge(c.Fee)

	c.ActiveScholars++
	c.ScholarsAvailable--

	return c.Fee.Clone(), nil
}

// Return puts settled scholar stake back into the pool and credits it to
// the providers who paid for it. Once the scholar's stake is fully back the
// scholar stops being active and the slot reopens.
func (ps *Pools) Return(c *course.Course, scholar common.Address, amount *uint256.Int, finished bool, completed bool) {
	p := ps.pool(c.ID)
	p.Free.Add(p.Free, amount)
	p.refund(scholar, amount, finished)

	if !finished {
		return
	}

	if c.ActiveScholars > 0 {
		c.ActiveScholars--
	}
	if completed {
		c.CompletedScholars++
	}

	c.ScholarsAvailable = min(c.ScholarsAvailable+1, slots(p.Free, c.Fee))
}

// Withdraw returns the provider's unspent funds and closes the slots the
// pool no longer pays for. It returns the number of slots removed.
func (ps *Pools) Withdraw(tokens token.Reserve, c *course.Course, provider common.Address, amount *uint256.Int) (uint64, error) {
	p := ps.pool(c.ID)

	limit := fixed.Min(p.Available(provider), p.Contribution(provider))
	limit = fixed.Min(limit, p.Free)

	if amount.IsZero() || amount.Gt(limit) {
		return 0, fail.New(fail.InsufficientFunds, "withdrawScholarship: can only withdraw up to the amount initally provided for scholarships")
	}

	p.Free.Sub(p.Free, amount)
	p.Unspent[provider] = new(uint256.Int).Sub(p.Available(provider), amount)

	left := p.Contribution(provider)
	left.Sub(left, amount)
	switch left.IsZero() {
	case true:
		delete(p.Providers, provider)
	default:
		p.Providers[provider] = left
	}

	before := c.ScholarsAvailable
	c.ScholarshipTotal = new(uint256.Int).Sub(c.ScholarshipTotal, amount)
	c.ScholarsAvailable = min(c.ScholarsAvailable, slots(p.Free, c.Fee))

	if err := tokens.Transfer(ps.addr, provider, amount); err != nil {
		return 0, err
	}

	return before - c.ScholarsAvailable, nil
}

// slots returns the number of fee sized stakes the amount pays for.
func slots(amount *uint256.Int, fee *uint256.Int) uint64 {
	n := new(uint256.Int).Div(amount, fee)
	if !n.IsUint64() {
		return ^uint64(0)
	}
	return n.Uint64()
}
