package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/txn"
	"github.com/ardanlabs/deschool/foundation/deschool/vesting"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Set of operations the school executes.
const (
	OpInitialiseCurve      = "initialiseCurve"
	OpApprove              = "approve"
	OpTransfer             = "transfer"
	OpTransferLearn        = "transferLearn"
	OpPermit               = "permit"
	OpMintLearn            = "mintLearn"
	OpBurnLearn            = "burnLearn"
	OpBurnLearnTokens      = "burnLearnTokens"
	OpCreateCourse         = "createCourse"
	OpRegister             = "register"
	OpPermitAndRegister    = "permitAndRegister"
	OpBatchDeposit         = "batchDeposit"
	OpMintFromCourse       = "mint"
	OpRedeem               = "redeem"
	OpWithdrawYieldRewards = "withdrawYieldRewards"
	OpCreateScholarships   = "createScholarships"
	OpRegisterScholar      = "registerScholar"
	OpPerpetualScholars    = "perpetualScholars"
	OpWithdrawScholarship  = "withdrawScholarship"
	OpHarvest              = "harvest"
	OpMine                 = "mine"
)

// privateOps can only be executed by the node itself.
var privateOps = map[string]bool{
	OpMine: true,
}

// =============================================================================

// AmountArgs carries a single reserve or LEARN amount.
type AmountArgs struct {
	Amount *uint256.Int `json:"amount"`
}

// ApproveArgs sets the caller's allowance for the spender.
type ApproveArgs struct {
	Spender common.Address `json:"spender"`
	Amount  *uint256.Int   `json:"amount"`
}

// TransferArgs moves tokens from the caller.
type TransferArgs struct {
	To     common.Address `json:"to"`
	Amount *uint256.Int   `json:"amount"`
}

// PermitArgs applies a signed permit.
type PermitArgs struct {
	Holder    common.Address `json:"holder"`
	Spender   common.Address `json:"spender"`
	Nonce     uint64         `json:"nonce"`
	Expiry    uint64         `json:"expiry"`
	Allowed   bool           `json:"allowed"`
	Signature string         `json:"signature"`
}

// CreateCourseArgs defines a new course.
type CreateCourseArgs struct {
	Fee      *uint256.Int     `json:"fee"`
	Schedule vesting.Schedule `json:"schedule"`
	URL      string           `json:"url"`
	Creator  common.Address   `json:"creator"`
}

// CourseArgs identifies the course an operation acts on.
type CourseArgs struct {
	CourseID uint64 `json:"course_id"`
}

// PermitAndRegisterArgs registers the caller using a signed permit for the
// school instead of a prior approval.
type PermitAndRegisterArgs struct {
	CourseID  uint64 `json:"course_id"`
	Nonce     uint64 `json:"nonce"`
	Expiry    uint64 `json:"expiry"`
	Signature string `json:"signature"`
}

// ScholarshipArgs funds or withdraws a course scholarship pool.
type ScholarshipArgs struct {
	CourseID uint64       `json:"course_id"`
	Amount   *uint256.Int `json:"amount"`
}

// MineArgs advances the block height.
type MineArgs struct {
	Blocks uint64 `json:"blocks"`
}

// =============================================================================

// SubmitTx validates a signed transaction from a wallet and executes it on
// behalf of the signer.
func (s *State) SubmitTx(ctx context.Context, signedTx txn.SignedTx) (Receipt, error) {
	if err := signedTx.Validate(s.genesis.ChainID); err != nil {
		return Receipt{}, fail.New(fail.Unauthorized, err.Error())
	}

	from, err := signedTx.FromAddress()
	if err != nil {
		return Receipt{}, fail.New(fail.Unauthorized, err.Error())
	}

	if privateOps[signedTx.Op] {
		return Receipt{}, fail.Newf(fail.Unauthorized, "%s: not allowed in a transaction", signedTx.Op)
	}

	if signedTx.Nonce == 0 {
		return Receipt{}, fail.New(fail.InvalidInput, "invalid nonce, nonces start at 1")
	}

	return s.execute(ctx, from, signedTx.Nonce, signedTx.Op, signedTx.Data)
}

// Execute runs the named operation for the caller with JSON arguments.
func (s *State) Execute(ctx context.Context, caller common.Address, op string, data json.RawMessage) (Receipt, error) {
	return s.execute(ctx, caller, 0, op, data)
}

func (s *State) execute(ctx context.Context, caller common.Address, nonce uint64, op string, data json.RawMessage) (Receipt, error) {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	fn, err := operation(op, data)
	if err != nil {
		return Receipt{}, err
	}

	return s.apply(ctx, caller, nonce, op, data, fn)
}

// call marshals typed arguments and executes the operation.
func (s *State) call(ctx context.Context, caller common.Address, op string, args any) (Receipt, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: marshal: %w", op, err)
	}

	return s.execute(ctx, caller, 0, op, data)
}

// operation decodes the arguments and binds them to the operation.
func operation(op string, data json.RawMessage) (opFunc, error) {
	switch op {
	case OpInitialiseCurve:
		var a AmountArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.initialiseCurve(caller, a.Amount, r)
		}, nil

	case OpApprove:
		var a ApproveArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.approve(caller, a, r)
		}, nil

	case OpTransfer:
		var a TransferArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.transfer(caller, a, r)
		}, nil

	case OpTransferLearn:
		var a TransferArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.transferLearn(caller, a, r)
		}, nil

	case OpPermit:
		var a PermitArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.permit(a, r)
		}, nil

	case OpMintLearn:
		var a AmountArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.mintLearn(caller, a.Amount, r)
		}, nil

	case OpBurnLearn:
		var a AmountArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.burnLearn(caller, a.Amount, r)
		}, nil

	case OpBurnLearnTokens:
		var a AmountArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.burnLearnTokens(caller, a.Amount, r)
		}, nil

	case OpCreateCourse:
		var a CreateCourseArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.createCourse(caller, a, r)
		}, nil

	case OpRegister:
		var a CourseArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.register(caller, a.CourseID, r)
		}, nil

	case OpPermitAndRegister:
		var a PermitAndRegisterArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.permitAndRegister(caller, a, r)
		}, nil

	case OpBatchDeposit:
		if err := decode(op, data, &struct{}{}); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.batchDeposit(ctx, r)
		}, nil

	case OpMintFromCourse:
		var a CourseArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.mintFromCourse(ctx, caller, a.CourseID, r)
		}, nil

	case OpRedeem:
		var a CourseArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.redeem(ctx, caller, a.CourseID, r)
		}, nil

	case OpWithdrawYieldRewards:
		if err := decode(op, data, &struct{}{}); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.withdrawYieldRewards(caller, r)
		}, nil

	case OpCreateScholarships:
		var a ScholarshipArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.createScholarships(caller, a, r)
		}, nil

	case OpRegisterScholar:
		var a CourseArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.registerScholar(caller, a.CourseID, r)
		}, nil

	case OpPerpetualScholars:
		var a CourseArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.perpetualScholars(ctx, a.CourseID, r)
		}, nil

	case OpWithdrawScholarship:
		var a ScholarshipArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.withdrawScholarship(caller, a, r)
		}, nil

	case OpHarvest:
		var a AmountArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.harvest(caller, a.Amount, r)
		}, nil

	case OpMine:
		var a MineArgs
		if err := decode(op, data, &a); err != nil {
			return nil, err
		}
		return func(ctx context.Context, l *ledgers, caller common.Address, r *Receipt) error {
			return l.mine(a.Blocks, r)
		}, nil
	}

	return nil, fail.Newf(fail.InvalidInput, "unknown operation %q", op)
}

// decode unmarshals operation arguments, rejecting unknown fields.
func decode(op string, data json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fail.Newf(fail.InvalidInput, "%s: invalid arguments: %s", op, err)
	}

	return nil
}

// required rejects a missing or zero amount.
func required(op string, name string, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return fail.Newf(fail.InvalidInput, "%s: %s must be greater than 0", op, name)
	}
	return nil
}
