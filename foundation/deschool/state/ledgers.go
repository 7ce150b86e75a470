package state

import (
	"fmt"

	"github.com/ardanlabs/deschool/foundation/deschool/batch"
	"github.com/ardanlabs/deschool/foundation/deschool/course"
	"github.com/ardanlabs/deschool/foundation/deschool/curve"
	"github.com/ardanlabs/deschool/foundation/deschool/genesis"
	"github.com/ardanlabs/deschool/foundation/deschool/scholarship"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/token"
	"github.com/ardanlabs/deschool/foundation/deschool/yield"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Addresses are the accounts of the school components. They are derived
// from the genesis deployer the way contract addresses are.
type Addresses struct {
	Deployer common.Address `json:"deployer"`
	Registry common.Address `json:"registry"`
	Token    common.Address `json:"token"`
	Curve    common.Address `json:"curve"`
	School   common.Address `json:"school"`
	Vault    common.Address `json:"vault"`
}

// ledgers is every piece of school state. Operations mutate a clone.
type ledgers struct {
	addrs    Addresses
	tokens   *token.Ledger
	curve    *curve.Curve
	registry *course.Registry
	escrow   *batch.Escrow
	pools    *scholarship.Pools
	source   yield.Source
	block    uint64
	nonces   map[common.Address]uint64
}

func newLedgers(gen genesis.Genesis, src yield.Source) (*ledgers, error) {
	addrs := Addresses{
		Deployer: gen.Deployer,
		Registry: gen.Registry,
		Token:    crypto.CreateAddress(gen.Deployer, 0),
		Curve:    crypto.CreateAddress(gen.Deployer, 1),
		School:   crypto.CreateAddress(gen.Deployer, 2),
		Vault:    crypto.CreateAddress(gen.Deployer, 3),
	}

	switch src {
	case nil:
		src = yield.NewVault(addrs.Vault)
	default:
		addrs.Vault = src.Address()
	}

	domain := signature.Domain{
		Name:              gen.Token.Name,
		Version:           gen.Token.Version,
		ChainID:           uint64(gen.ChainID),
		VerifyingContract: addrs.Token,
	}

	tokens := token.New(domain, gen.Token.Symbol)
	for account, amount := range gen.Balances {
		if err := tokens.Mint(account, amount); err != nil {
			return nil, fmt.Errorf("genesis balance %s: %w", account, err)
		}
	}

	// The school pays the curve when learners mint from a course.
	tokens.Approve(addrs.School, addrs.Curve, token.Max())

	l := ledgers{
		addrs:    addrs,
		tokens:   tokens,
		curve:    curve.New(addrs.Curve, gen.CurveK, gen.InitialRatio),
		registry: course.NewRegistry(),
		escrow:   batch.New(addrs.School),
		pools:    scholarship.New(addrs.School),
		source:   src,
		nonces:   make(map[common.Address]uint64),
	}

	return &l, nil
}

func (l *ledgers) clone() *ledgers {
	cpy := ledgers{
		addrs:    l.addrs,
		tokens:   l.tokens.Clone(),
		curve:    l.curve.Clone(),
		registry: l.registry.Clone(),
		escrow:   l.escrow.Clone(),
		pools:    l.pools.Clone(),
		source:   l.source.Clone(),
		block:    l.block,
		nonces:   make(map[common.Address]uint64, len(l.nonces)),
	}

	for account, nonce := range l.nonces {
		cpy.nonces[account] = nonce
	}

	return &cpy
}
