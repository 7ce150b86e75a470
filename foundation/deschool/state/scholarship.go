package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// createScholarships pulls the provider's funds into the course pool. The
// provider must have approved the school.
func (l *ledgers) createScholarships(caller common.Address, a ScholarshipArgs, r *Receipt) error {
	c, err := l.registry.Course(a.CourseID)
	if err != nil {
		return fmt.Errorf("createScholarships: %w", err)
	}

	if a.Amount == nil {
		a.Amount = new(uint256.Int)
	}

	added, err := l.pools.Fund(l.tokens, &c, caller, a.Amount)
	if err != nil {
		return err
	}

	if err := l.registry.Update(c); err != nil {
		return err
	}

	r.emit(EvScholarshipCreated, ScholarshipCreated{
		CourseID:            c.ID,
		NewScholars:         added,
		ScholarshipTotal:    c.ScholarshipTotal,
		ScholarshipProvider: caller,
	})

	return nil
}

// registerScholar gives the caller a sponsored seat paid from the pool.
func (l *ledgers) registerScholar(caller common.Address, courseID uint64, r *Receipt) error {
	c, err := l.registry.Course(courseID)
	if err != nil {
		return fmt.Errorf("registerScholar: %w", err)
	}

	if l.isRegistered(caller, courseID) {
		return fail.New(fail.Duplicate, "registerScholar: already registered")
	}

	stake, err := l.pools.Allocate(&c, caller)
	if err != nil {
		return err
	}

	batchID := l.escrow.Add(stake)

	if _, err := l.registry.Register(caller, courseID, batchID, l.block, stake, true); err != nil {
		return fmt.Errorf("registerScholar: %w", err)
	}

	if err := l.registry.Update(c); err != nil {
		return err
	}

	r.emit(EvScholarRegistered, ScholarRegistered{CourseID: courseID, Scholar: caller})

	return nil
}

// perpetualScholars reclaims the stake of every scholar whose schedule fully
// matured without being redeemed and reopens their slots. It can run once
// per course length.
func (l *ledgers) perpetualScholars(ctx context.Context, courseID uint64, r *Receipt) error {
	c, err := l.registry.Course(courseID)
	if err != nil {
		return fmt.Errorf("perpetualScholars: %w", err)
	}

	if c.Perpetuated && l.block < c.LastPerpetual+c.Schedule.Length() {
		return fail.New(fail.NotYetEligible, "perpetualScholars: only call this once every course duration")
	}

	before := c.ScholarsAvailable
	steps := c.Schedule.Steps()

	for _, reg := range l.registry.Registrations(courseID) {
		if !reg.Scholar || reg.Reclaimed || reg.Settled >= steps {
			continue
		}

		if !c.Schedule.Matured(reg.RegisteredAt, l.block) {
			continue
		}

		// The stake is reclaimed whole; the scholar can no longer redeem.
		paid, err := l.settle(ctx, c, reg)
		if err != nil {
			return err
		}

		reg, err = l.registry.Registration(reg.Learner, courseID)
		if err != nil {
			return err
		}
		reg.Reclaimed = true
		if err := l.registry.Save(reg); err != nil {
			return err
		}

		l.pools.Return(&c, reg.Learner, paid, true, false)
	}

	c.LastPerpetual = l.block
	c.Perpetuated = true

	if err := l.registry.Update(c); err != nil {
		return err
	}

	var added uint64
	if c.ScholarsAvailable > before {
		added = c.ScholarsAvailable - before
	}

	r.emit(EvPerpetualScholarships, PerpetualScholarships{CourseID: courseID, NewScholars: added})

	return nil
}

// withdrawScholarship returns unallocated pool funds to their provider.
func (l *ledgers) withdrawScholarship(caller common.Address, a ScholarshipArgs, r *Receipt) error {
	c, err := l.registry.Course(a.CourseID)
	if err != nil {
		return fmt.Errorf("withdrawScholarship: %w", err)
	}

	if a.Amount == nil {
		a.Amount = new(uint256.Int)
	}

	removed, err := l.pools.Withdraw(l.tokens, &c, caller, a.Amount)
	if err != nil {
		return err
	}

	if err := l.registry.Update(c); err != nil {
		return err
	}

	r.emit(EvScholarshipWithdrawn, ScholarshipWithdrawn{
		CourseID:        c.ID,
		AmountWithdrawn: a.Amount.Clone(),
		ScholarsRemoved: removed,
	})

	return nil
}
