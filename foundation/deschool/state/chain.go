package state

import (
	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/yield"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func (l *ledgers) harvest(caller common.Address, profit *uint256.Int, r *Receipt) error {
	if err := required(OpHarvest, "profit", profit); err != nil {
		return err
	}

	v, ok := l.source.(*yield.Vault)
	if !ok {
		return fail.New(fail.Unauthorized, "harvest: yield source does not accept harvests")
	}

	if err := v.Harvest(l.tokens, caller, profit); err != nil {
		return err
	}

	r.emit(EvHarvested, Harvested{Keeper: caller, Profit: profit.Clone(), PricePerShare: v.PricePerShare()})

	return nil
}

func (l *ledgers) mine(blocks uint64, r *Receipt) error {
	if blocks == 0 {
		return fail.New(fail.InvalidInput, "mine: blocks must be greater than 0")
	}

	if l.block+blocks < l.block {
		return fail.New(fail.InvalidInput, "mine: block height overflow")
	}

	from := l.block
	l.block += blocks

	r.emit(EvBlocksMined, BlocksMined{From: from, To: l.block})

	return nil
}
