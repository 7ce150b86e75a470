// Package vesting computes how much of a learner's payment has matured.
// A schedule is either a run of equally spaced checkpoints that each release
// a share of the fee, or a single maturity that releases the whole stake.
package vesting

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/holiman/uint256"
)

// Kind identifies the variant of a schedule.
type Kind uint8

// Set of schedule variants.
const (
	Checkpointed Kind = iota + 1
	SingleMaturity
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case Checkpointed:
		return "checkpointed"
	case SingleMaturity:
		return "single_maturity"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (k *Kind) UnmarshalText(data []byte) error {
	switch string(data) {
	case "checkpointed":
		*k = Checkpointed
	case "single_maturity":
		*k = SingleMaturity
	default:
		return fmt.Errorf("unknown schedule kind %q", data)
	}
	return nil
}

// Schedule is the maturation schedule of a course.
type Schedule struct {
	Kind        Kind   `json:"kind"`
	Checkpoints uint64 `json:"checkpoints,omitempty"`
	Spacing     uint64 `json:"checkpoint_block_spacing,omitempty"`
	Duration    uint64 `json:"duration,omitempty"`
}

// NewCheckpointed constructs a schedule of count checkpoints spacing blocks
// apart.
func NewCheckpointed(count uint64, spacing uint64) Schedule {
	return Schedule{Kind: Checkpointed, Checkpoints: count, Spacing: spacing}
}

// NewSingleMaturity constructs a schedule maturing duration blocks after
// registration.
func NewSingleMaturity(duration uint64) Schedule {
	return Schedule{Kind: SingleMaturity, Duration: duration}
}

// Validate checks the timing parameters of a new course.
func (s Schedule) Validate() error {
	switch s.Kind {
	case Checkpointed:
		if s.Checkpoints == 0 {
			return fail.New(fail.InvalidInput, "createCourse: checkpoint must be greater than 0")
		}
		if s.Spacing == 0 {
			return fail.New(fail.InvalidInput, "createCourse: checkpointBlockSpacing must be greater than 0")
		}
		if s.Checkpoints > ^uint64(0)/s.Spacing {
			return fail.New(fail.InvalidInput, "createCourse: schedule too long")
		}

	case SingleMaturity:
		if s.Duration == 0 {
			return fail.New(fail.InvalidInput, "createCourse: duration must be greater than 0")
		}

	default:
		return fail.New(fail.InvalidInput, "createCourse: unknown schedule")
	}

	return nil
}

// Steps returns the number of settlements the schedule allows.
func (s Schedule) Steps() uint64 {
	if s.Kind == Checkpointed {
		return s.Checkpoints
	}
	return 1
}

// Length returns the number of blocks until the schedule fully matures.
func (s Schedule) Length() uint64 {
	if s.Kind == Checkpointed {
		return s.Checkpoints * s.Spacing
	}
	return s.Duration
}

// Elapsed returns the number of steps that matured by the block.
func (s Schedule) Elapsed(registeredAt uint64, block uint64) uint64 {
	if block < registeredAt {
		return 0
	}
	passed := block - registeredAt

	if s.Kind == Checkpointed {
		return min(s.Checkpoints, passed/s.Spacing)
	}

	if passed >= s.Duration {
		return 1
	}
	return 0
}

// Matured reports if every step of the schedule matured by the block.
func (s Schedule) Matured(registeredAt uint64, block uint64) bool {
	return s.Elapsed(registeredAt, block) == s.Steps()
}

// Released returns the part of the amount released by the first settled
// steps. The final step carries the remainder of the integer division.
func (s Schedule) Released(amount *uint256.Int, settled uint64) *uint256.Int {
	steps := s.Steps()
	if settled >= steps {
		return amount.Clone()
	}

	per := new(uint256.Int).Div(amount, uint256.NewInt(steps))
	return per.Mul(per, uint256.NewInt(settled))
}

// Remaining returns the part of the amount not yet released.
func (s Schedule) Remaining(amount *uint256.Int, settled uint64) *uint256.Int {
	return new(uint256.Int).Sub(amount, s.Released(amount, settled))
}

// Eligible returns the amount matured by the block and not yet settled.
func (s Schedule) Eligible(amount *uint256.Int, settled uint64, registeredAt uint64, block uint64) *uint256.Int {
	elapsed := s.Elapsed(registeredAt, block)
	if elapsed <= settled {
		return new(uint256.Int)
	}

	return new(uint256.Int).Sub(s.Released(amount, elapsed), s.Released(amount, settled))
}

// Check returns the rejection for settling at the block, or nil when there
// are eligible funds.
func (s Schedule) Check(settled uint64, registeredAt uint64, block uint64) error {
	elapsed := s.Elapsed(registeredAt, block)

	if s.Kind == Checkpointed {
		switch {
		case settled >= s.Checkpoints:
			return fail.New(fail.AlreadySettled, "no fee to redeem")
		case elapsed == 0:
			return fail.New(fail.NotYetEligible, "not yet eligible")
		case elapsed <= settled:
			return fail.New(fail.AlreadySettled, "fee redeemed at this checkpoint")
		}
		return nil
	}

	switch {
	case settled >= 1:
		return fail.New(fail.AlreadySettled, "no stake to redeem")
	case elapsed == 0:
		return fail.New(fail.NotYetEligible, "not yet eligible")
	}
	return nil
}

// String implements the fmt.Stringer interface for logging.
func (s Schedule) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return s.Kind.String()
	}
	return string(data)
}
