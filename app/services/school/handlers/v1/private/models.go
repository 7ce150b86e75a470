package private

import (
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ardanlabs/deschool/foundation/validate"
	"github.com/holiman/uint256"
)

// mineRequest advances the school block height.
type mineRequest struct {
	Blocks uint64 `json:"blocks" validate:"gt=0"`
}

// Validate checks the data in the model is considered clean.
func (m mineRequest) Validate() error {
	return validate.Check(m)
}

// harvestRequest is the profit the node operator moves into the vault.
type harvestRequest struct {
	Profit string `json:"profit" validate:"required,number"`
}

// Validate checks the data in the model is considered clean.
func (h harvestRequest) Validate() error {
	return validate.Check(h)
}

// profit returns the parsed profit amount.
func (h harvestRequest) profit() (*uint256.Int, error) {
	return uint256.FromDecimal(h.Profit)
}

type status struct {
	Block       uint64          `json:"block"`
	Seq         uint64          `json:"seq"`
	Addresses   state.Addresses `json:"addresses"`
	Courses     uint64          `json:"courses"`
	Batch       uint64          `json:"current_batch"`
	Subscribers int             `json:"subscribers"`
}
