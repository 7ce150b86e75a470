package state

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// InitialiseCurve seeds the curve with the caller's reserve tokens.
func (s *State) InitialiseCurve(ctx context.Context, caller common.Address, seed *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpInitialiseCurve, AmountArgs{Amount: seed})
}

// Approve sets the caller's reserve token allowance for the spender.
func (s *State) Approve(ctx context.Context, caller common.Address, spender common.Address, amount *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpApprove, ApproveArgs{Spender: spender, Amount: amount})
}

// Transfer moves reserve tokens from the caller.
func (s *State) Transfer(ctx context.Context, caller common.Address, to common.Address, amount *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpTransfer, TransferArgs{To: to, Amount: amount})
}

// TransferLearn moves LEARN from the caller.
func (s *State) TransferLearn(ctx context.Context, caller common.Address, to common.Address, amount *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpTransferLearn, TransferArgs{To: to, Amount: amount})
}

// Permit applies a signed reserve token permit. Anyone can submit it.
func (s *State) Permit(ctx context.Context, caller common.Address, args PermitArgs) (Receipt, error) {
	return s.call(ctx, caller, OpPermit, args)
}

// MintLearn buys LEARN from the curve with the caller's reserve tokens.
func (s *State) MintLearn(ctx context.Context, caller common.Address, deposit *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpMintLearn, AmountArgs{Amount: deposit})
}

// BurnLearn burns the LEARN needed to release the withdraw amount.
func (s *State) BurnLearn(ctx context.Context, caller common.Address, withdraw *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpBurnLearn, AmountArgs{Amount: withdraw})
}

// BurnLearnTokens burns exactly the LEARN amount.
func (s *State) BurnLearnTokens(ctx context.Context, caller common.Address, amount *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpBurnLearnTokens, AmountArgs{Amount: amount})
}

// =============================================================================

// CreateCourse defines a new course owned by the caller.
func (s *State) CreateCourse(ctx context.Context, caller common.Address, args CreateCourseArgs) (Receipt, error) {
	return s.call(ctx, caller, OpCreateCourse, args)
}

// Register pays the course fee into the open batch.
func (s *State) Register(ctx context.Context, caller common.Address, courseID uint64) (Receipt, error) {
	return s.call(ctx, caller, OpRegister, CourseArgs{CourseID: courseID})
}

// PermitAndRegister registers with a signed permit for the school.
func (s *State) PermitAndRegister(ctx context.Context, caller common.Address, args PermitAndRegisterArgs) (Receipt, error) {
	return s.call(ctx, caller, OpPermitAndRegister, args)
}

// BatchDeposit sends the open batch into the yield source.
func (s *State) BatchDeposit(ctx context.Context, caller common.Address) (Receipt, error) {
	return s.call(ctx, caller, OpBatchDeposit, struct{}{})
}

// MintFromCourse converts the caller's matured principal into LEARN.
func (s *State) MintFromCourse(ctx context.Context, caller common.Address, courseID uint64) (Receipt, error) {
	return s.call(ctx, caller, OpMintFromCourse, CourseArgs{CourseID: courseID})
}

// Redeem returns the caller's matured principal.
func (s *State) Redeem(ctx context.Context, caller common.Address, courseID uint64) (Receipt, error) {
	return s.call(ctx, caller, OpRedeem, CourseArgs{CourseID: courseID})
}

// WithdrawYieldRewards pays the caller the yield their courses earned.
func (s *State) WithdrawYieldRewards(ctx context.Context, caller common.Address) (Receipt, error) {
	return s.call(ctx, caller, OpWithdrawYieldRewards, struct{}{})
}

// =============================================================================

// CreateScholarships funds the course scholarship pool.
func (s *State) CreateScholarships(ctx context.Context, caller common.Address, courseID uint64, amount *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpCreateScholarships, ScholarshipArgs{CourseID: courseID, Amount: amount})
}

// RegisterScholar takes a sponsored seat on the course.
func (s *State) RegisterScholar(ctx context.Context, caller common.Address, courseID uint64) (Receipt, error) {
	return s.call(ctx, caller, OpRegisterScholar, CourseArgs{CourseID: courseID})
}

// PerpetualScholars reclaims matured scholar stakes into the pool.
func (s *State) PerpetualScholars(ctx context.Context, caller common.Address, courseID uint64) (Receipt, error) {
	return s.call(ctx, caller, OpPerpetualScholars, CourseArgs{CourseID: courseID})
}

// WithdrawScholarship returns unallocated pool funds to the caller.
func (s *State) WithdrawScholarship(ctx context.Context, caller common.Address, courseID uint64, amount *uint256.Int) (Receipt, error) {
	return s.call(ctx, caller, OpWithdrawScholarship, ScholarshipArgs{CourseID: courseID, Amount: amount})
}

// =============================================================================

// Harvest adds the keeper's profit to the simulated vault.
func (s *State) Harvest(ctx context.Context, keeper common.Address, profit *uint256.Int) (Receipt, error) {
	return s.call(ctx, keeper, OpHarvest, AmountArgs{Amount: profit})
}

// Mine advances the block height.
func (s *State) Mine(ctx context.Context, blocks uint64) (Receipt, error) {
	return s.call(ctx, common.Address{}, OpMine, MineArgs{Blocks: blocks})
}
