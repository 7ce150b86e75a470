package state

import (
	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func (l *ledgers) initialiseCurve(caller common.Address, seed *uint256.Int, r *Receipt) error {
	if seed == nil {
		seed = new(uint256.Int)
	}

	minted, err := l.curve.Initialise(l.tokens, caller, seed)
	if err != nil {
		return err
	}

	r.emit(EvCurveInitialised, CurveInitialised{Caller: caller, Seed: seed.Clone(), Minted: minted})

	return nil
}

func (l *ledgers) approve(caller common.Address, a ApproveArgs, r *Receipt) error {
	if a.Amount == nil {
		return fail.New(fail.InvalidInput, "approve: amount is required")
	}

	if a.Spender == (common.Address{}) {
		return fail.New(fail.InvalidInput, "approve: spender is required")
	}

	l.tokens.Approve(caller, a.Spender, a.Amount)

	r.emit(EvApproval, Approval{Owner: caller, Spender: a.Spender, Amount: a.Amount.Clone()})

	return nil
}

func (l *ledgers) transfer(caller common.Address, a TransferArgs, r *Receipt) error {
	if err := required(OpTransfer, "amount", a.Amount); err != nil {
		return err
	}

	if err := l.tokens.Transfer(caller, a.To, a.Amount); err != nil {
		return err
	}

	r.emit(EvTransfer, Transfer{From: caller, To: a.To, Amount: a.Amount.Clone()})

	return nil
}

func (l *ledgers) transferLearn(caller common.Address, a TransferArgs, r *Receipt) error {
	if err := required(OpTransferLearn, "amount", a.Amount); err != nil {
		return err
	}

	if err := l.curve.Transfer(caller, a.To, a.Amount); err != nil {
		return err
	}

	r.emit(EvLearnTransfer, Transfer{From: caller, To: a.To, Amount: a.Amount.Clone()})

	return nil
}

func (l *ledgers) permit(a PermitArgs, r *Receipt) error {
	v, rs, s, err := signature.ToVRSFromHexSignature(a.Signature)
	if err != nil {
		return fail.New(fail.Unauthorized, "permit: invalid signature")
	}

	p := signature.Permit{
		Holder:  a.Holder,
		Spender: a.Spender,
		Nonce:   a.Nonce,
		Expiry:  a.Expiry,
		Allowed: a.Allowed,
	}

	if err := l.tokens.Permit(p, v, rs, s, l.block); err != nil {
		return err
	}

	r.emit(EvPermit, Permit{Holder: a.Holder, Spender: a.Spender, Nonce: a.Nonce, Allowed: a.Allowed})

	return nil
}

// =============================================================================

func (l *ledgers) mintLearn(caller common.Address, deposit *uint256.Int, r *Receipt) error {
	if err := required(OpMintLearn, "deposit", deposit); err != nil {
		return err
	}

	minted, err := l.curve.Mint(l.tokens, caller, caller, deposit)
	if err != nil {
		return err
	}

	r.emit(EvLearnMinted, LearnMinted{Account: caller, Deposit: deposit.Clone(), Minted: minted})

	return nil
}

func (l *ledgers) burnLearn(caller common.Address, withdraw *uint256.Int, r *Receipt) error {
	if err := required(OpBurnLearn, "withdraw", withdraw); err != nil {
		return err
	}

	burned, err := l.curve.Burn(l.tokens, caller, withdraw)
	if err != nil {
		return err
	}

	r.emit(EvLearnBurned, LearnBurned{Account: caller, Burned: burned, Released: withdraw.Clone()})

	return nil
}

func (l *ledgers) burnLearnTokens(caller common.Address, amount *uint256.Int, r *Receipt) error {
	if err := required(OpBurnLearnTokens, "amount", amount); err != nil {
		return err
	}

	released, err := l.curve.BurnTokens(l.tokens, caller, amount)
	if err != nil {
		return err
	}

	r.emit(EvLearnBurned, LearnBurned{Account: caller, Burned: amount.Clone(), Released: released})

	return nil
}
