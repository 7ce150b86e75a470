package state

import (
	"fmt"

	"github.com/ardanlabs/deschool/foundation/deschool/batch"
	"github.com/ardanlabs/deschool/foundation/deschool/course"
	"github.com/ardanlabs/deschool/foundation/deschool/curve"
	"github.com/ardanlabs/deschool/foundation/deschool/genesis"
	"github.com/ardanlabs/deschool/foundation/deschool/scholarship"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// Addresses returns the component addresses.
func (s *State) Addresses() Addresses {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.addrs
}

// Block returns the current block height.
func (s *State) Block() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.block
}

// Seq returns the sequence of the last applied operation.
func (s *State) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.seq
}

// Nonce returns the last transaction nonce used by the account.
func (s *State) Nonce(account common.Address) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.nonces[account]
}

// Records returns the journaled operations in order.
func (s *State) Records() ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []storage.Record

	iter := s.storage.ForEach()
	for rec, err := iter.Next(); !iter.Done(); rec, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// =============================================================================

// TokenBalance returns the reserve token balance of the account.
func (s *State) TokenBalance(account common.Address) *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.tokens.BalanceOf(account)
}

// TokenBalances returns every reserve token balance.
func (s *State) TokenBalances() map[common.Address]*uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.tokens.Balances()
}

// Allowance returns what the spender may pull from the owner.
func (s *State) Allowance(owner common.Address, spender common.Address) *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.tokens.Allowance(owner, spender)
}

// PermitDomain returns the domain wallets sign permits for.
func (s *State) PermitDomain() signature.Domain {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.tokens.Domain()
}

// PermitNonce returns the next permit nonce of the holder.
func (s *State) PermitNonce(holder common.Address) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.tokens.Nonce(holder)
}

// LearnBalance returns the LEARN balance of the account.
func (s *State) LearnBalance(account common.Address) *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.curve.BalanceOf(account)
}

// Curve returns a snapshot of the bonding curve.
func (s *State) Curve() curve.Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.curve.Info()
}

// Mintable returns the LEARN minted for the deposit.
func (s *State) Mintable(deposit *uint256.Int) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.curve.Mintable(deposit)
}

// Burnable returns the LEARN burned to withdraw the amount.
func (s *State) Burnable(withdraw *uint256.Int) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.curve.Burnable(withdraw)
}

// PredictBurn returns the reserve released for burning the LEARN amount.
func (s *State) PredictBurn(amount *uint256.Int) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.curve.PredictBurn(amount)
}

// =============================================================================

// Course returns the course with the id.
func (s *State) Course(courseID uint64) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.registry.Course(courseID)
}

// Courses returns every course.
func (s *State) Courses() []course.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.registry.Courses()
}

// NextCourseID returns the id the next course will receive.
func (s *State) NextCourseID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.registry.NextID()
}

// Registration returns the learner's seat on the course.
func (s *State) Registration(learner common.Address, courseID uint64) (course.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, reg, err := s.ledgers.seat("registration", learner, courseID)
	return reg, err
}

// Registrations returns the seats on the course.
func (s *State) Registrations(courseID uint64) []course.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.registry.Registrations(courseID)
}

// Verify returns the number of schedule steps that matured for the learner.
func (s *State) Verify(learner common.Address, courseID uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, reg, err := s.ledgers.seat("verify", learner, courseID)
	if err != nil {
		return 0, err
	}

	return c.Schedule.Elapsed(reg.RegisteredAt, s.ledgers.block), nil
}

// EligibleFunds returns the principal the learner can settle now.
func (s *State) EligibleFunds(learner common.Address, courseID uint64) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, reg, err := s.ledgers.seat("eligibleFunds", learner, courseID)
	if err != nil {
		return nil, err
	}

	return c.Schedule.Eligible(reg.AmountPaid, reg.Settled, reg.RegisteredAt, s.ledgers.block), nil
}

// FundsRemaining returns the principal the learner has not settled.
func (s *State) FundsRemaining(learner common.Address, courseID uint64) (*uint256.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, reg, err := s.ledgers.seat("fundsRemaining", learner, courseID)
	if err != nil {
		return nil, err
	}

	return c.Schedule.Remaining(reg.AmountPaid, reg.Settled), nil
}

// =============================================================================

// Batch returns the batch with the id.
func (s *State) Batch(batchID uint64) (batch.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.escrow.Batch(batchID)
}

// Batches returns every batch.
func (s *State) Batches() []batch.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.escrow.Batches()
}

// CurrentBatchID returns the id of the open batch.
func (s *State) CurrentBatchID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.escrow.CurrentID()
}

// CurrentBatchTotal returns the principal registered into the open batch.
func (s *State) CurrentBatchTotal() *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.escrow.CurrentTotal()
}

// YieldRewards returns the yield owed to the steward.
func (s *State) YieldRewards(steward common.Address) *uint256.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledgers.escrow.Rewards(steward)
}

// ScholarshipPool returns the scholarship pool of the course.
func (s *State) ScholarshipPool(courseID uint64) (scholarship.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ledgers.registry.Course(courseID); err != nil {
		return scholarship.Pool{}, fmt.Errorf("scholarshipPool: %w", err)
	}

	return s.ledgers.pools.Pool(courseID), nil
}

// VaultInfo describes the school position in the yield source.
type VaultInfo struct {
	Address       common.Address `json:"address"`
	PricePerShare *uint256.Int   `json:"price_per_share"`
	SchoolShares  *uint256.Int   `json:"school_shares"`
}

// Vault returns the school position in the yield source.
func (s *State) Vault() VaultInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.ledgers.source

	return VaultInfo{
		Address:       src.Address(),
		PricePerShare: src.PricePerShare(),
		SchoolShares:  src.BalanceOf(s.ledgers.addrs.School),
	}
}

// =============================================================================

// seat returns the course and the learner's registration for a query.
func (l *ledgers) seat(op string, learner common.Address, courseID uint64) (course.Course, course.Registration, error) {
	c, err := l.registry.Course(courseID)
	if err != nil {
		return course.Course{}, course.Registration{}, fmt.Errorf("%s: %w", op, err)
	}

	reg, err := l.registry.Registration(learner, courseID)
	if err != nil {
		return course.Course{}, course.Registration{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, reg, nil
}
