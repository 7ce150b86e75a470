// Package curve implements the LEARN bonding curve. LEARN is minted against
// deposits of the reserve token and burned to release it again, priced by
// a logarithmic curve of the reserve:
//
//	minted   = K * ln((R + deposit) / R)
//	burnable = K * ln(R / (R - withdraw))
//	released = R * (1 - e^(-burned / K))
//
// Minting rounds down and burning rounds up, so a mint followed by a burn of
// the same reserve amount can never return more than was put in.
package curve

import (
	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/fixed"
	"github.com/ardanlabs/deschool/foundation/deschool/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// lnSlack covers the error bound of the fixed point logarithm and
// exponential. It is always applied against the caller.
var lnSlack = uint256.NewInt(1_000)

// Info is a snapshot of the curve state.
type Info struct {
	Address      common.Address `json:"address"`
	Reserve      *uint256.Int   `json:"reserve"`
	Supply       *uint256.Int   `json:"supply"`
	K            *uint256.Int   `json:"k"`
	InitialRatio *uint256.Int   `json:"initial_ratio"`
	Initialised  bool           `json:"initialised"`
}

// Curve maintains the reserve and LEARN supply. The reserve held in the
// token ledger for the curve address always equals the tracked reserve.
type Curve struct {
	addr         common.Address
	k            *uint256.Int
	initialRatio *uint256.Int
	reserve      *uint256.Int
	supply       *uint256.Int
	initialised  bool
	entered      bool
	balances     map[common.Address]*uint256.Int
}

// New constructs an uninitialised curve living at the specified address.
func New(addr common.Address, k uint64, initialRatio uint64) *Curve {
	return &Curve{
		addr:         addr,
		k:            uint256.NewInt(k),
		initialRatio: uint256.NewInt(initialRatio),
		reserve:      new(uint256.Int),
		supply:       new(uint256.Int),
		balances:     make(map[common.Address]*uint256.Int),
	}
}

// Clone makes a deep copy of the curve.
func (c *Curve) Clone() *Curve {
	cpy := Curve{
		addr:         c.addr,
		k:            c.k.Clone(),
		initialRatio: c.initialRatio.Clone(),
		reserve:      c.reserve.Clone(),
		supply:       c.supply.Clone(),
		initialised:  c.initialised,
		balances:     make(map[common.Address]*uint256.Int, len(c.balances)),
	}

	for account, amount := range c.balances {
		cpy.balances[account] = amount.Clone()
	}

	return &cpy
}

// Address returns the address holding the curve reserve.
func (c *Curve) Address() common.Address {
	return c.addr
}

// Info returns a snapshot of the curve state.
func (c *Curve) Info() Info {
	return Info{
		Address:      c.addr,
		Reserve:      c.reserve.Clone(),
		Supply:       c.supply.Clone(),
		K:            c.k.Clone(),
		InitialRatio: c.initialRatio.Clone(),
		Initialised:  c.initialised,
	}
}

// Initialised reports if the curve has been seeded.
func (c *Curve) Initialised() bool {
	return c.initialised
}

// BalanceOf returns the LEARN balance of the account.
func (c *Curve) BalanceOf(account common.Address) *uint256.Int {
	if amount, exists := c.balances[account]; exists {
		return amount.Clone()
	}
	return new(uint256.Int)
}

// Transfer moves LEARN between accounts.
func (c *Curve) Transfer(from common.Address, to common.Address, amount *uint256.Int) error {
	balance := c.BalanceOf(from)
	if balance.Lt(amount) {
		return fail.New(fail.InsufficientFunds, "LEARN: transfer amount exceeds balance")
	}

	c.balances[from] = balance.Sub(balance, amount)
	c.balances[to] = new(uint256.Int).Add(c.BalanceOf(to), amount)

	return nil
}

// =============================================================================

// Initialise seeds the curve with the caller's reserve and mints the initial
// supply to the caller. The caller must have approved the curve to pull the
// seed.
func (c *Curve) Initialise(tokens token.Reserve, caller common.Address, seed *uint256.Int) (*uint256.Int, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	if c.initialised {
		return nil, fail.New(fail.Duplicate, "initialised")
	}

	if seed.IsZero() {
		return nil, fail.New(fail.InvalidInput, "initialise: seed must be greater than 0")
	}

	minted, overflow := new(uint256.Int).MulOverflow(seed, c.initialRatio)
	if overflow {
		return nil, fail.New(fail.InvalidInput, "initialise: seed too large")
	}

	if err := tokens.TransferFrom(c.addr, caller, c.addr, seed); err != nil {
		return nil, err
	}

	c.initialised = true
	c.reserve = seed.Clone()
	c.supply = minted.Clone()
	c.balances[caller] = new(uint256.Int).Add(c.BalanceOf(caller), minted)

	return minted, nil
}

// Mintable returns the LEARN minted for depositing the reserve amount.
func (c *Curve) Mintable(deposit *uint256.Int) (*uint256.Int, error) {
	if !c.initialised {
		return nil, fail.New(fail.Uninitialised, "!initialised")
	}

	total, overflow := new(uint256.Int).AddOverflow(c.reserve, deposit)
	if overflow {
		return nil, fail.New(fail.InvalidInput, "mint: deposit too large")
	}

	ratio, err := fixed.Div(total, c.reserve)
	if err != nil {
		return nil, fail.New(fail.InvalidInput, "mint: "+err.Error())
	}

	ln, err := fixed.Ln(ratio)
	if err != nil {
		return nil, fail.New(fail.InvalidInput, "mint: "+err.Error())
	}

	return new(uint256.Int).Mul(c.k, ln), nil
}

// Burnable returns the LEARN that must be burned to release the reserve
// amount. The full reserve can never be withdrawn.
func (c *Curve) Burnable(withdraw *uint256.Int) (*uint256.Int, error) {
	if !c.initialised {
		return nil, fail.New(fail.Uninitialised, "!initialised")
	}

	if !withdraw.Lt(c.reserve) {
		return nil, fail.New(fail.InsufficientFunds, "burn: cannot withdraw the full reserve")
	}

	remaining := new(uint256.Int).Sub(c.reserve, withdraw)

	ratio, err := fixed.DivUp(c.reserve, remaining)
	if err != nil {
		return nil, fail.New(fail.InvalidInput, "burn: "+err.Error())
	}

	ln, err := fixed.Ln(ratio)
	if err != nil {
		return nil, fail.New(fail.InvalidInput, "burn: "+err.Error())
	}

	if !withdraw.IsZero() {
		ln.Add(ln, lnSlack)
	}

	return new(uint256.Int).Mul(c.k, ln), nil
}

// PredictBurn returns the reserve released for burning the LEARN amount.
func (c *Curve) PredictBurn(amount *uint256.Int) (*uint256.Int, error) {
	if !c.initialised {
		return nil, fail.New(fail.Uninitialised, "!initialised")
	}

	// The exponent is burned / K in fixed point; LEARN amounts already carry
	// the fixed point scale.
	x := new(uint256.Int).Div(amount, c.k)
	if x.Gt(lnSlack) {
		x.Sub(x, lnSlack)
	} else {
		x.Clear()
	}

	remain, err := fixed.ExpNegUp(x)
	if err != nil {
		return nil, fail.New(fail.InvalidInput, "burn: "+err.Error())
	}

	if remain.Gt(fixed.Unit) {
		remain = fixed.Unit.Clone()
	}

	share := new(uint256.Int).Sub(fixed.Unit, remain)

	released, err := fixed.Mul(c.reserve, share)
	if err != nil {
		return nil, fail.New(fail.InvalidInput, "burn: "+err.Error())
	}

	// Never release the last wei of reserve.
	if !released.Lt(c.reserve) {
		released.SubUint64(c.reserve, 1)
	}

	return released, nil
}

// =============================================================================

// Mint pulls the deposit from the payer and credits the minted LEARN to the
// beneficiary. The payer must have approved the curve.
func (c *Curve) Mint(tokens token.Reserve, payer common.Address, beneficiary common.Address, deposit *uint256.Int) (*uint256.Int, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	if deposit.IsZero() {
		return nil, fail.New(fail.InvalidInput, "mint: deposit must be greater than 0")
	}

	minted, err := c.Mintable(deposit)
	if err != nil {
		return nil, err
	}

	if err := tokens.TransferFrom(c.addr, payer, c.addr, deposit); err != nil {
		return nil, err
	}

	c.reserve.Add(c.reserve, deposit)
	c.supply.Add(c.supply, minted)
	c.balances[beneficiary] = new(uint256.Int).Add(c.BalanceOf(beneficiary), minted)

	return minted, nil
}

// Burn burns the LEARN required to release the withdraw amount of reserve
// to the holder and returns the LEARN burned.
func (c *Curve) Burn(tokens token.Reserve, holder common.Address, withdraw *uint256.Int) (*uint256.Int, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	if withdraw.IsZero() {
		return nil, fail.New(fail.InvalidInput, "burn: amount must be greater than 0")
	}

	burned, err := c.Burnable(withdraw)
	if err != nil {
		return nil, err
	}

	if err := c.release(tokens, holder, burned, withdraw); err != nil {
		return nil, err
	}

	return burned, nil
}

// BurnTokens burns exactly the LEARN amount and returns the reserve released
// to the holder.
func (c *Curve) BurnTokens(tokens token.Reserve, holder common.Address, amount *uint256.Int) (*uint256.Int, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.leave()

	if amount.IsZero() {
		return nil, fail.New(fail.InvalidInput, "burn: amount must be greater than 0")
	}

	released, err := c.PredictBurn(amount)
	if err != nil {
		return nil, err
	}

	if err := c.release(tokens, holder, amount, released); err != nil {
		return nil, err
	}

	return released, nil
}

// release debits the burned LEARN and updates the reserve before the reserve
// leaves the curve. A failed transfer restores the previous state.
func (c *Curve) release(tokens token.Reserve, holder common.Address, burned *uint256.Int, released *uint256.Int) error {
	balance := c.BalanceOf(holder)
	if balance.Lt(burned) {
		return fail.New(fail.InsufficientFunds, "burn: insufficient LEARN balance")
	}

	prevReserve := c.reserve.Clone()
	prevSupply := c.supply.Clone()

	c.balances[holder] = new(uint256.Int).Sub(balance, burned)
	c.supply.Sub(c.supply, burned)
	c.reserve.Sub(c.reserve, released)

	if err := tokens.Transfer(c.addr, holder, released); err != nil {
		c.balances[holder] = balance
		c.supply = prevSupply
		c.reserve = prevReserve
		return err
	}

	return nil
}

// enter takes the reentrancy guard.
func (c *Curve) enter() error {
	if c.entered {
		return fail.New(fail.Reentrant, "curve: reentrant call")
	}
	c.entered = true
	return nil
}

// leave releases the reentrancy guard.
func (c *Curve) leave() {
	c.entered = false
}
