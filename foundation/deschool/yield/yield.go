// Package yield defines the yield source the escrow deposits batches into
// and provides a simulated vault implementation of it.
package yield

import (
	"context"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/fixed"
	"github.com/ardanlabs/deschool/foundation/deschool/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Source represents the behavior of a share based yield source. The context
// is the one of the operation making the call.
type Source interface {
	Address() common.Address
	Deposit(ctx context.Context, tokens token.Reserve, from common.Address, amount *uint256.Int) (*uint256.Int, error)
	Withdraw(ctx context.Context, tokens token.Reserve, to common.Address, shares *uint256.Int) (*uint256.Int, error)
	BalanceOf(account common.Address) *uint256.Int
	PricePerShare() *uint256.Int
	Clone() Source
}

// Info is a snapshot of the vault.
type Info struct {
	Address       common.Address `json:"address"`
	TotalAssets   *uint256.Int   `json:"total_assets"`
	TotalShares   *uint256.Int   `json:"total_shares"`
	PricePerShare *uint256.Int   `json:"price_per_share"`
}

// =============================================================================

// Vault is a simulated yield vault. Shares are priced at the assets held per
// share and a keeper raises that price by harvesting profit into the vault.
type Vault struct {
	addr        common.Address
	totalAssets *uint256.Int
	totalShares *uint256.Int
	shares      map[common.Address]*uint256.Int
}

// NewVault constructs an empty vault at the address.
func NewVault(addr common.Address) *Vault {
	return &Vault{
		addr:        addr,
		totalAssets: new(uint256.Int),
		totalShares: new(uint256.Int),
		shares:      make(map[common.Address]*uint256.Int),
	}
}

// Address returns the address holding the vault assets.
func (v *Vault) Address() common.Address {
	return v.addr
}

// Clone makes a deep copy of the vault.
func (v *Vault) Clone() Source {
	cpy := Vault{
		addr:        v.addr,
		totalAssets: v.totalAssets.Clone(),
		totalShares: v.totalShares.Clone(),
		shares:      make(map[common.Address]*uint256.Int, len(v.shares)),
	}

	for account, amount := range v.shares {
		cpy.shares[account] = amount.Clone()
	}

	return &cpy
}

// Info returns a snapshot of the vault.
func (v *Vault) Info() Info {
	return Info{
		Address:       v.addr,
		TotalAssets:   v.totalAssets.Clone(),
		TotalShares:   v.totalShares.Clone(),
		PricePerShare: v.PricePerShare(),
	}
}

// BalanceOf returns the shares held by the account.
func (v *Vault) BalanceOf(account common.Address) *uint256.Int {
	if amount, exists := v.shares[account]; exists {
		return amount.Clone()
	}
	return new(uint256.Int)
}

// PricePerShare returns the assets backing one share.
func (v *Vault) PricePerShare() *uint256.Int {
	if v.totalShares.IsZero() {
		return fixed.Unit.Clone()
	}

	pps, err := fixed.Div(v.totalAssets, v.totalShares)
	if err != nil {
		return fixed.Unit.Clone()
	}

	return pps
}

// Deposit moves the amount from the depositor into the vault and mints
// shares at the current price.
func (v *Vault) Deposit(ctx context.Context, tokens token.Reserve, from common.Address, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, fail.New(fail.InvalidInput, "vault: deposit must be greater than 0")
	}

	shares := amount.Clone()
	if !v.totalShares.IsZero() {
		var err error
		shares, err = fixed.MulDiv(amount, v.totalShares, v.totalAssets)
		if err != nil {
			return nil, fail.New(fail.InvalidInput, "vault: "+err.Error())
		}
	}

	if shares.IsZero() {
		return nil, fail.New(fail.InvalidInput, "vault: deposit too small for a share")
	}

	if err := tokens.Transfer(from, v.addr, amount); err != nil {
		return nil, err
	}

	v.totalAssets.Add(v.totalAssets, amount)
	v.totalShares.Add(v.totalShares, shares)
	v.shares[from] = new(uint256.Int).Add(v.BalanceOf(from), shares)

	return shares, nil
}

// Withdraw burns the caller's shares and sends the assets they are worth.
func (v *Vault) Withdraw(ctx context.Context, tokens token.Reserve, to common.Address, shares *uint256.Int) (*uint256.Int, error) {
	held := v.BalanceOf(to)
	if held.Lt(shares) {
		return nil, fail.New(fail.InsufficientFunds, "vault: withdraw exceeds shares")
	}

	if shares.IsZero() {
		return new(uint256.Int), nil
	}

	amount, err := fixed.MulDiv(shares, v.totalAssets, v.totalShares)
	if err != nil {
		return nil, fail.New(fail.InvalidInput, "vault: "+err.Error())
	}

	v.shares[to] = held.Sub(held, shares)
	v.totalShares.Sub(v.totalShares, shares)
	v.totalAssets.Sub(v.totalAssets, amount)

	if err := tokens.Transfer(v.addr, to, amount); err != nil {
		return nil, err
	}

	return amount, nil
}

// Harvest moves profit from the keeper into the vault which raises the price
// of every share.
func (v *Vault) Harvest(tokens token.Reserve, keeper common.Address, profit *uint256.Int) error {
	if profit.IsZero() {
		return fail.New(fail.InvalidInput, "harvest: profit must be greater than 0")
	}

	if v.totalShares.IsZero() {
		return fail.New(fail.InvalidInput, "harvest: vault has no shares")
	}

	if err := tokens.Transfer(keeper, v.addr, profit); err != nil {
		return err
	}

	v.totalAssets.Add(v.totalAssets, profit)

	return nil
}
