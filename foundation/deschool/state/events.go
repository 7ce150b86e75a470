package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Set of event names emitted by the operations.
const (
	EvCurveInitialised      = "CurveInitialised"
	EvApproval              = "Approval"
	EvTransfer              = "Transfer"
	EvLearnTransfer         = "LearnTransfer"
	EvPermit                = "Permit"
	EvLearnMinted           = "LearnMinted"
	EvLearnBurned           = "LearnBurned"
	EvCourseCreated         = "CourseCreated"
	EvLearnerRegistered     = "LearnerRegistered"
	EvBatchDeposited        = "BatchDeposited"
	EvLearnMintedFromCourse = "LearnMintedFromCourse"
	EvFeeRedeemed           = "FeeRedeemed"
	EvStakeRedeemed         = "StakeRedeemed"
	EvYieldWithdrawn        = "YieldWithdrawn"
	EvScholarshipCreated    = "ScholarshipCreated"
	EvScholarRegistered     = "ScholarRegistered"
	EvScholarshipWithdrawn  = "ScholarshipWithdrawn"
	EvPerpetualScholarships = "PerpetualScholarships"
	EvBlocksMined           = "BlocksMined"
	EvHarvested             = "Harvested"
)

// CurveInitialised is emitted when the curve is seeded.
type CurveInitialised struct {
	Caller common.Address `json:"caller"`
	Seed   *uint256.Int   `json:"seed"`
	Minted *uint256.Int   `json:"minted"`
}

// Approval is emitted when an allowance is set.
type Approval struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Amount  *uint256.Int   `json:"amount"`
}

// Transfer is emitted when reserve tokens or LEARN move between accounts.
type Transfer struct {
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Amount *uint256.Int   `json:"amount"`
}

// Permit is emitted when a signed permit is applied.
type Permit struct {
	Holder  common.Address `json:"holder"`
	Spender common.Address `json:"spender"`
	Nonce   uint64         `json:"nonce"`
	Allowed bool           `json:"allowed"`
}

// LearnMinted is emitted when LEARN is bought from the curve.
type LearnMinted struct {
	Account common.Address `json:"account"`
	Deposit *uint256.Int   `json:"deposit"`
	Minted  *uint256.Int   `json:"minted"`
}

// LearnBurned is emitted when LEARN is sold back to the curve.
type LearnBurned struct {
	Account  common.Address `json:"account"`
	Burned   *uint256.Int   `json:"burned"`
	Released *uint256.Int   `json:"released"`
}

// CourseCreated is emitted when a course is created.
type CourseCreated struct {
	CourseID               uint64         `json:"course_id"`
	Fee                    *uint256.Int   `json:"fee"`
	Checkpoints            uint64         `json:"checkpoints"`
	CheckpointBlockSpacing uint64         `json:"checkpoint_block_spacing"`
	Duration               uint64         `json:"duration"`
	URL                    string         `json:"url"`
	Creator                common.Address `json:"creator"`
}

// LearnerRegistered is emitted when a learner pays into a course.
type LearnerRegistered struct {
	CourseID uint64         `json:"course_id"`
	Learner  common.Address `json:"learner"`
	BatchID  uint64         `json:"batch_id"`
}

// BatchDeposited is emitted when a batch moves into the yield source.
type BatchDeposited struct {
	BatchID          uint64       `json:"batch_id"`
	BatchAmount      *uint256.Int `json:"batch_amount"`
	BatchYieldAmount *uint256.Int `json:"batch_yield_amount"`
}

// LearnMintedFromCourse is emitted when matured principal becomes LEARN.
type LearnMintedFromCourse struct {
	Learner         common.Address `json:"learner"`
	CourseID        uint64         `json:"course_id"`
	LearnMinted     *uint256.Int   `json:"learn_minted"`
	StableConverted *uint256.Int   `json:"stable_converted"`
}

// Redeemed is emitted as FeeRedeemed or StakeRedeemed when matured
// principal is returned.
type Redeemed struct {
	Learner  common.Address `json:"learner"`
	CourseID uint64         `json:"course_id"`
	Amount   *uint256.Int   `json:"amount"`
}

// YieldWithdrawn is emitted when a steward claims yield.
type YieldWithdrawn struct {
	Steward common.Address `json:"steward"`
	Amount  *uint256.Int   `json:"amount"`
}

// ScholarshipCreated is emitted when a course pool is funded.
type ScholarshipCreated struct {
	CourseID            uint64         `json:"course_id"`
	NewScholars         uint64         `json:"new_scholars"`
	ScholarshipTotal    *uint256.Int   `json:"scholarship_total"`
	ScholarshipProvider common.Address `json:"scholarship_provider"`
}

// ScholarRegistered is emitted when a scholar takes a sponsored seat.
type ScholarRegistered struct {
	CourseID uint64         `json:"course_id"`
	Scholar  common.Address `json:"scholar"`
}

// ScholarshipWithdrawn is emitted when a provider takes funds back.
type ScholarshipWithdrawn struct {
	CourseID        uint64       `json:"course_id"`
	AmountWithdrawn *uint256.Int `json:"amount_withdrawn"`
	ScholarsRemoved uint64       `json:"scholars_removed"`
}

// PerpetualScholarships is emitted when matured scholar stakes are reclaimed.
type PerpetualScholarships struct {
	CourseID    uint64 `json:"course_id"`
	NewScholars uint64 `json:"new_scholars"`
}

// BlocksMined is emitted when the block height advances.
type BlocksMined struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// Harvested is emitted when profit is added to the vault.
type Harvested struct {
	Keeper        common.Address `json:"keeper"`
	Profit        *uint256.Int   `json:"profit"`
	PricePerShare *uint256.Int   `json:"price_per_share"`
}
