package yield_test

import (
	"context"
	"testing"

	"github.com/ardanlabs/deschool/foundation/deschool/fixed"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/token"
	"github.com/ardanlabs/deschool/foundation/deschool/yield"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var (
	vaultAddr = common.HexToAddress("0x00000000000000000000000000000000000000fa")
	escrow    = common.HexToAddress("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	keeper    = common.HexToAddress("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
)

func TestVault(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to earn yield on deposited batches.")
	{
		t.Logf("\tTest 0:\tWhen a keeper harvests profit between deposit and withdrawal.")
		{
			tokens := token.New(signature.Domain{Name: "Dai Stablecoin", Version: "1", ChainID: 1}, "DAI")
			tokens.Mint(escrow, fixed.New(100))
			tokens.Mint(keeper, fixed.New(100))

			v := yield.NewVault(vaultAddr)

			if !v.PricePerShare().Eq(fixed.Unit) {
				t.Fatalf("\t%s\tTest 0:\tShould start at a price of one.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould start at a price of one.", success)

			shares, err := v.Deposit(ctx, tokens, escrow, fixed.New(100))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to deposit: %v", failed, err)
			}
			if !shares.Eq(fixed.New(100)) {
				t.Fatalf("\t%s\tTest 0:\tShould mint 100 shares: got %s", failed, shares.Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould mint 100 shares.", success)

			if err := v.Harvest(tokens, keeper, fixed.New(10)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to harvest: %v", failed, err)
			}

			exp := uint256.MustFromDecimal("1100000000000000000")
			if !v.PricePerShare().Eq(exp) {
				t.Fatalf("\t%s\tTest 0:\tShould raise the price to 1.1: got %s", failed, v.PricePerShare().Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould raise the price to 1.1.", success)

			cpy := v.Clone()

			amount, err := v.Withdraw(ctx, tokens, escrow, fixed.New(50))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to withdraw: %v", failed, err)
			}
			if !amount.Eq(fixed.New(55)) {
				t.Fatalf("\t%s\tTest 0:\tShould receive 55 for half the shares: got %s", failed, amount.Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould receive 55 for half the shares.", success)

			if !cpy.BalanceOf(escrow).Eq(fixed.New(100)) {
				t.Fatalf("\t%s\tTest 0:\tShould leave the clone untouched.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the clone untouched.", success)

			if _, err := v.Withdraw(ctx, tokens, escrow, fixed.New(51)); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject withdrawing more shares than held.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject withdrawing more shares than held.", success)
		}
	}
}
