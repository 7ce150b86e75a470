// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Token describes the reserve token and its permit domain.
type Token struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Version string `json:"version"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time                       `json:"date"`
	ChainID      uint16                          `json:"chain_id"`      // The chain id represents an unique id for this running instance.
	Deployer     common.Address                  `json:"deployer"`      // Account the component addresses are derived from.
	Registry     common.Address                  `json:"registry"`      // Permission registry, recorded and reported only.
	Token        Token                           `json:"token"`         // Reserve token parameters.
	CurveK       uint64                          `json:"curve_k"`       // Curve constant K.
	InitialRatio uint64                          `json:"initial_ratio"` // LEARN minted per reserve unit at initialisation.
	Balances     map[common.Address]*uint256.Int `json:"balances"`      // Reserve token balances at block 0.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis parameters the engine cannot run without.
func (g Genesis) Validate() error {
	switch {
	case g.ChainID == 0:
		return fmt.Errorf("genesis: chain_id must be greater than 0")
	case g.CurveK == 0:
		return fmt.Errorf("genesis: curve_k must be greater than 0")
	case g.InitialRatio == 0:
		return fmt.Errorf("genesis: initial_ratio must be greater than 0")
	case g.Token.Symbol == "":
		return fmt.Errorf("genesis: token symbol is required")
	}

	for account, amount := range g.Balances {
		if amount == nil {
			return fmt.Errorf("genesis: missing balance for %s", account)
		}
	}

	return nil
}
