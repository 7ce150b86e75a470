package public

import (
	"github.com/ardanlabs/deschool/foundation/deschool/course"
	"github.com/ardanlabs/deschool/foundation/deschool/genesis"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type genesisInfo struct {
	Genesis   genesis.Genesis  `json:"genesis"`
	Addresses state.Addresses  `json:"addresses"`
	Domain    signature.Domain `json:"permit_domain"`
	Block     uint64           `json:"block"`
}

type balance struct {
	Address common.Address `json:"address"`
	Name    string         `json:"name"`
	Balance *uint256.Int   `json:"balance"`
}

type balances struct {
	Block    uint64    `json:"block"`
	Balances []balance `json:"balances"`
}

type account struct {
	Address      common.Address `json:"address"`
	Name         string         `json:"name"`
	Nonce        uint64         `json:"nonce"`
	PermitNonce  uint64         `json:"permit_nonce"`
	Reserve      *uint256.Int   `json:"reserve"`
	Learn        *uint256.Int   `json:"learn"`
	SchoolAllow  *uint256.Int   `json:"school_allowance"`
	CurveAllow   *uint256.Int   `json:"curve_allowance"`
	YieldRewards *uint256.Int   `json:"yield_rewards"`
}

type registration struct {
	course.Registration
	LearnerName    string       `json:"learner_name"`
	Checkpoints    uint64       `json:"checkpoints_elapsed"`
	EligibleFunds  *uint256.Int `json:"eligible_funds"`
	FundsRemaining *uint256.Int `json:"funds_remaining"`
}

type nextCourse struct {
	CourseID uint64 `json:"course_id"`
}

type currentBatch struct {
	BatchID uint64       `json:"batch_id"`
	Total   *uint256.Int `json:"total"`
}

type quote struct {
	Amount *uint256.Int `json:"amount"`
	Result *uint256.Int `json:"result"`
}
