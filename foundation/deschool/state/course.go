package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/deschool/foundation/deschool/course"
	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/vesting"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func (l *ledgers) createCourse(caller common.Address, a CreateCourseArgs, r *Receipt) error {
	c, err := l.registry.Create(a.Fee, a.Schedule, a.URL, a.Creator, caller, l.block)
	if err != nil {
		return err
	}

	r.emit(EvCourseCreated, CourseCreated{
		CourseID:               c.ID,
		Fee:                    c.Fee,
		Checkpoints:            c.Schedule.Checkpoints,
		CheckpointBlockSpacing: c.Schedule.Spacing,
		Duration:               c.Schedule.Duration,
		URL:                    c.URL,
		Creator:                c.Creator,
	})

	return nil
}

// register pulls the course fee from the learner into the open batch. The
// learner must have approved the school.
func (l *ledgers) register(caller common.Address, courseID uint64, r *Receipt) error {
	c, err := l.registry.Course(courseID)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	if l.isRegistered(caller, courseID) {
		return fail.New(fail.Duplicate, "register: already registered")
	}

	school := l.addrs.School
	if err := l.tokens.TransferFrom(school, caller, school, c.Fee); err != nil {
		return err
	}

	batchID := l.escrow.Add(c.Fee)

	if _, err := l.registry.Register(caller, courseID, batchID, l.block, c.Fee, false); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	r.emit(EvLearnerRegistered, LearnerRegistered{CourseID: courseID, Learner: caller, BatchID: batchID})

	return nil
}

// permitAndRegister applies the learner's permit for the school before
// registering.
func (l *ledgers) permitAndRegister(caller common.Address, a PermitAndRegisterArgs, r *Receipt) error {
	v, rs, s, err := signature.ToVRSFromHexSignature(a.Signature)
	if err != nil {
		return fail.New(fail.Unauthorized, "permit: invalid signature")
	}

	p := signature.Permit{
		Holder:  caller,
		Spender: l.addrs.School,
		Nonce:   a.Nonce,
		Expiry:  a.Expiry,
		Allowed: true,
	}

	if err := l.tokens.Permit(p, v, rs, s, l.block); err != nil {
		return err
	}

	return l.register(caller, a.CourseID, r)
}

func (l *ledgers) batchDeposit(ctx context.Context, r *Receipt) error {
	b, err := l.escrow.Deposit(ctx, l.tokens, l.source, l.block)
	if err != nil {
		return err
	}

	r.emit(EvBatchDeposited, BatchDeposited{BatchID: b.ID, BatchAmount: b.Deposited, BatchYieldAmount: b.Shares})

	return nil
}

// =============================================================================

// settle releases the eligible principal of the registration into the
// school. The registration is updated before any funds move and the yield
// above the principal is credited to the course steward.
func (l *ledgers) settle(ctx context.Context, c course.Course, reg course.Registration) (*uint256.Int, error) {
	if err := c.Schedule.Check(reg.Settled, reg.RegisteredAt, l.block); err != nil {
		return nil, err
	}

	eligible := c.Schedule.Eligible(reg.AmountPaid, reg.Settled, reg.RegisteredAt, l.block)

	reg.Settled = c.Schedule.Elapsed(reg.RegisteredAt, l.block)
	reg.Released = new(uint256.Int).Add(reg.Released, eligible)
	if err := l.registry.Save(reg); err != nil {
		return nil, err
	}

	paid, surplus, err := l.escrow.Withdraw(ctx, l.tokens, l.source, reg.BatchID, eligible)
	if err != nil {
		return nil, err
	}

	l.escrow.Credit(c.Creator, surplus)

	return paid, nil
}

// participant returns the course and the caller's registration on it.
func (l *ledgers) participant(op string, caller common.Address, courseID uint64) (course.Course, course.Registration, error) {
	c, err := l.registry.Course(courseID)
	if err != nil {
		return course.Course{}, course.Registration{}, fmt.Errorf("%s: %w", op, err)
	}

	reg, err := l.registry.Registration(caller, courseID)
	if err != nil {
		return course.Course{}, course.Registration{}, fail.Newf(fail.NotParticipant, "%s: not a learner on this course", op)
	}

	return c, reg, nil
}

// mintFromCourse converts the learner's matured principal into LEARN.
func (l *ledgers) mintFromCourse(ctx context.Context, caller common.Address, courseID uint64, r *Receipt) error {
	c, reg, err := l.participant("mint", caller, courseID)
	if err != nil {
		return err
	}

	if reg.Scholar {
		return fail.New(fail.Unauthorized, "mint: scholars cannot mint sponsored stake")
	}

	if !l.curve.Initialised() {
		return fail.New(fail.Uninitialised, "!initialised")
	}

	paid, err := l.settle(ctx, c, reg)
	if err != nil {
		return err
	}

	minted := new(uint256.Int)
	if !paid.IsZero() {
		minted, err = l.curve.Mint(l.tokens, l.addrs.School, caller, paid)
		if err != nil {
			return err
		}
	}

	r.emit(EvLearnMintedFromCourse, LearnMintedFromCourse{
		Learner:         caller,
		CourseID:        courseID,
		LearnMinted:     minted,
		StableConverted: paid,
	})

	return nil
}

// redeem returns the learner's matured principal. A scholar's principal goes
// back to the course scholarship pool.
func (l *ledgers) redeem(ctx context.Context, caller common.Address, courseID uint64, r *Receipt) error {
	c, reg, err := l.participant("redeem", caller, courseID)
	if err != nil {
		return err
	}

	paid, err := l.settle(ctx, c, reg)
	if err != nil {
		return err
	}

	switch reg.Scholar {
	case true:
		finished := c.Schedule.Elapsed(reg.RegisteredAt, l.block) == c.Schedule.Steps()
		l.pools.Return(&c, caller, paid, finished, finished)
		if err := l.registry.Update(c); err != nil {
			return err
		}

	default:
		if !paid.IsZero() {
			if err := l.tokens.Transfer(l.addrs.School, caller, paid); err != nil {
				return err
			}
		}
	}

	name := EvFeeRedeemed
	if c.Schedule.Kind == vesting.SingleMaturity {
		name = EvStakeRedeemed
	}

	r.emit(name, Redeemed{Learner: caller, CourseID: courseID, Amount: paid})

	return nil
}

func (l *ledgers) withdrawYieldRewards(caller common.Address, r *Receipt) error {
	amount, err := l.escrow.Claim(l.tokens, caller)
	if err != nil {
		return err
	}

	r.emit(EvYieldWithdrawn, YieldWithdrawn{Steward: caller, Amount: amount})

	return nil
}

// isRegistered reports if the learner holds any seat on the course.
func (l *ledgers) isRegistered(learner common.Address, courseID uint64) bool {
	_, err := l.registry.Registration(learner, courseID)
	return !errors.Is(err, fail.NotParticipant)
}
