// Package token maintains the reserve stablecoin ledger: balances,
// allowances and the permit nonces of every account.
package token

import (
	"math/big"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Reserve represents the behavior required by the components that pull and
// push reserve funds.
type Reserve interface {
	BalanceOf(account common.Address) *uint256.Int
	Transfer(from common.Address, to common.Address, amount *uint256.Int) error
	TransferFrom(spender common.Address, from common.Address, to common.Address, amount *uint256.Int) error
}

// Ledger is the reserve token. The zero allowance for an absent entry and a
// maximum allowance that is never decremented follow the usual ERC20 rules.
type Ledger struct {
	domain     signature.Domain
	symbol     string
	supply     *uint256.Int
	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int
	nonces     map[common.Address]uint64
}

// New constructs an empty ledger for the permit domain.
func New(domain signature.Domain, symbol string) *Ledger {
	return &Ledger{
		domain:     domain,
		symbol:     symbol,
		supply:     new(uint256.Int),
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
		nonces:     make(map[common.Address]uint64),
	}
}

// Clone makes a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	cpy := Ledger{
		domain:     l.domain,
		symbol:     l.symbol,
		supply:     l.supply.Clone(),
		balances:   make(map[common.Address]*uint256.Int, len(l.balances)),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int, len(l.allowances)),
		nonces:     make(map[common.Address]uint64, len(l.nonces)),
	}

	for account, amount := range l.balances {
		cpy.balances[account] = amount.Clone()
	}

	for owner, spenders := range l.allowances {
		m := make(map[common.Address]*uint256.Int, len(spenders))
		for spender, amount := range spenders {
			m[spender] = amount.Clone()
		}
		cpy.allowances[owner] = m
	}

	for account, nonce := range l.nonces {
		cpy.nonces[account] = nonce
	}

	return &cpy
}

// Domain returns the permit domain of the ledger.
func (l *Ledger) Domain() signature.Domain {
	return l.domain
}

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string {
	return l.symbol
}

// TotalSupply returns the amount of tokens in existence.
func (l *Ledger) TotalSupply() *uint256.Int {
	return l.supply.Clone()
}

// BalanceOf returns the balance for the account.
func (l *Ledger) BalanceOf(account common.Address) *uint256.Int {
	if amount, exists := l.balances[account]; exists {
		return amount.Clone()
	}
	return new(uint256.Int)
}

// Allowance returns the amount the spender may move for the owner.
func (l *Ledger) Allowance(owner common.Address, spender common.Address) *uint256.Int {
	if amount, exists := l.allowances[owner][spender]; exists {
		return amount.Clone()
	}
	return new(uint256.Int)
}

// Nonce returns the next permit nonce for the account.
func (l *Ledger) Nonce(account common.Address) uint64 {
	return l.nonces[account]
}

// Balances returns a copy of every non zero balance.
func (l *Ledger) Balances() map[common.Address]*uint256.Int {
	cpy := make(map[common.Address]*uint256.Int, len(l.balances))
	for account, amount := range l.balances {
		if !amount.IsZero() {
			cpy[account] = amount.Clone()
		}
	}
	return cpy
}

// Mint creates new tokens for the account. It is used to fund the accounts
// named in the genesis file.
func (l *Ledger) Mint(to common.Address, amount *uint256.Int) error {
	supply, overflow := new(uint256.Int).AddOverflow(l.supply, amount)
	if overflow {
		return fail.New(fail.InvalidInput, "ERC20: mint amount overflows supply")
	}

	l.supply = supply
	l.balances[to] = new(uint256.Int).Add(l.BalanceOf(to), amount)

	return nil
}

// Transfer moves tokens between two accounts.
func (l *Ledger) Transfer(from common.Address, to common.Address, amount *uint256.Int) error {
	balance := l.BalanceOf(from)
	if balance.Lt(amount) {
		return fail.New(fail.InsufficientFunds, "ERC20: transfer amount exceeds balance")
	}

	l.balances[from] = balance.Sub(balance, amount)
	l.balances[to] = new(uint256.Int).Add(l.BalanceOf(to), amount)

	return nil
}

// Approve sets the amount the spender may move for the owner.
func (l *Ledger) Approve(owner common.Address, spender common.Address, amount *uint256.Int) {
	spenders, exists := l.allowances[owner]
	if !exists {
		spenders = make(map[common.Address]*uint256.Int)
		l.allowances[owner] = spenders
	}
	spenders[spender] = amount.Clone()
}

// TransferFrom moves tokens on behalf of the owner, consuming allowance.
func (l *Ledger) TransferFrom(spender common.Address, from common.Address, to common.Address, amount *uint256.Int) error {
	allowance := l.Allowance(from, spender)
	if allowance.Lt(amount) {
		return fail.New(fail.InsufficientFunds, "ERC20: transfer amount exceeds allowance")
	}

	if err := l.Transfer(from, to, amount); err != nil {
		return err
	}

	if !isMax(allowance) {
		l.Approve(from, spender, allowance.Sub(allowance, amount))
	}

	return nil
}

// Permit applies an off chain signed approval. An allowed permit grants the
// spender an unlimited allowance and a disallowed one revokes it. The block
// is compared against the expiry.
func (l *Ledger) Permit(permit signature.Permit, v, r, s *big.Int, block uint64) error {
	if permit.Holder == (common.Address{}) {
		return fail.New(fail.InvalidInput, "permit: invalid holder")
	}

	if permit.Expiry != 0 && block > permit.Expiry {
		return fail.New(fail.Unauthorized, "permit: expired")
	}

	if permit.Nonce != l.nonces[permit.Holder] {
		return fail.New(fail.Unauthorized, "permit: invalid nonce")
	}

	signer, err := signature.PermitSigner(l.domain, permit, v, r, s)
	if err != nil || signer != permit.Holder {
		return fail.New(fail.Unauthorized, "permit: invalid signature")
	}

	l.nonces[permit.Holder]++

	amount := new(uint256.Int)
	if permit.Allowed {
		amount.SetAllOne()
	}
	l.Approve(permit.Holder, permit.Spender, amount)

	return nil
}

// Max returns the unlimited allowance value.
func Max() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

func isMax(amount *uint256.Int) bool {
	return amount.Eq(Max())
}
