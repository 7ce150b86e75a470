package batch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ardanlabs/deschool/foundation/deschool/batch"
	"github.com/ardanlabs/deschool/foundation/deschool/fail"
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
	escrowAddr = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	vaultAddr  = common.HexToAddress("0x00000000000000000000000000000000000000fa")
	keeper     = common.HexToAddress("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	steward    = common.HexToAddress("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
)

func setup() (*token.Ledger, *batch.Escrow, *yield.Vault) {
	tokens := token.New(signature.Domain{Name: "Dai Stablecoin", Version: "1", ChainID: 1}, "DAI")
	tokens.Mint(escrowAddr, fixed.New(300))
	tokens.Mint(keeper, fixed.New(100))

	return tokens, batch.New(escrowAddr), yield.NewVault(vaultAddr)
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to deposit batches into the yield source.")
	{
		t.Logf("\tTest 0:\tWhen the open batch is empty.")
		{
			tokens, e, v := setup()

			_, err := e.Deposit(ctx, tokens, v, 10)
			if !errors.Is(err, fail.InsufficientFunds) || err.Error() != "batchDeposit: no funds to deposit" {
				t.Fatalf("\t%s\tTest 0:\tShould reject the deposit: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the deposit.", success)

			if e.CurrentID() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the batch open.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the batch open.", success)
		}

		t.Logf("\tTest 1:\tWhen the open batch holds funds.")
		{
			tokens, e, v := setup()

			if id := e.Add(fixed.New(100)); id != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould add to batch 0: got %d", failed, id)
			}
			e.Add(fixed.New(100))

			if !e.CurrentTotal().Eq(fixed.New(200)) {
				t.Fatalf("\t%s\tTest 1:\tShould total 200: got %s", failed, e.CurrentTotal().Dec())
			}
			t.Logf("\t%s\tTest 1:\tShould total the open batch.", success)

			b, err := e.Deposit(ctx, tokens, v, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to deposit: %v", failed, err)
			}

			if !b.Closed || !b.Shares.Eq(fixed.New(200)) || b.DepositedAt != 10 {
				t.Fatalf("\t%s\tTest 1:\tShould close the batch with its shares: %+v", failed, b)
			}
			t.Logf("\t%s\tTest 1:\tShould close the batch with its shares.", success)

			if e.CurrentID() != 1 || !e.CurrentTotal().IsZero() {
				t.Fatalf("\t%s\tTest 1:\tShould open the next batch.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould open the next batch.", success)

			if !tokens.BalanceOf(vaultAddr).Eq(fixed.New(200)) {
				t.Fatalf("\t%s\tTest 1:\tShould move the funds into the vault.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould move the funds into the vault.", success)
		}
	}
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to settle principal from a batch.")
	{
		t.Logf("\tTest 0:\tWhen settling from the open batch.")
		{
			tokens, e, v := setup()
			e.Add(fixed.New(100))

			paid, surplus, err := e.Withdraw(ctx, tokens, v, 0, fixed.New(25))
			if err != nil || !paid.Eq(fixed.New(25)) || !surplus.IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould pay the principal from escrow: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould pay the principal from escrow.", success)

			b, err := e.Deposit(ctx, tokens, v, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to deposit: %v", failed, err)
			}
			if !b.Deposited.Eq(fixed.New(75)) {
				t.Fatalf("\t%s\tTest 0:\tShould only deposit what is still held: got %s", failed, b.Deposited.Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould only deposit what is still held.", success)
		}

		t.Logf("\tTest 1:\tWhen settling from a deposited batch that earned yield.")
		{
			tokens, e, v := setup()
			e.Add(fixed.New(100))

			if _, err := e.Deposit(ctx, tokens, v, 10); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to deposit: %v", failed, err)
			}

			if err := v.Harvest(tokens, keeper, fixed.New(10)); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to harvest: %v", failed, err)
			}

			paid, surplus, err := e.Withdraw(ctx, tokens, v, 0, fixed.New(50))
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to withdraw: %v", failed, err)
			}
			if !paid.Eq(fixed.New(50)) || !surplus.Eq(fixed.New(5)) {
				t.Fatalf("\t%s\tTest 1:\tShould split principal and yield: got %s %s", failed, paid.Dec(), surplus.Dec())
			}
			t.Logf("\t%s\tTest 1:\tShould split principal and yield.", success)

			paid, surplus, err = e.Withdraw(ctx, tokens, v, 0, fixed.New(50))
			if err != nil || !paid.Eq(fixed.New(50)) || !surplus.Eq(fixed.New(5)) {
				t.Fatalf("\t%s\tTest 1:\tShould drain the batch on the last settlement: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould drain the batch on the last settlement.", success)

			if !v.BalanceOf(escrowAddr).IsZero() {
				t.Fatalf("\t%s\tTest 1:\tShould leave no shares behind: got %s", failed, v.BalanceOf(escrowAddr).Dec())
			}
			t.Logf("\t%s\tTest 1:\tShould leave no shares behind.", success)

			if _, _, err := e.Withdraw(ctx, tokens, v, 0, fixed.New(1)); !errors.Is(err, fail.InsufficientFunds) {
				t.Fatalf("\t%s\tTest 1:\tShould reject settling more than deposited: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject settling more than deposited.", success)
		}

		t.Logf("\tTest 2:\tWhen a batch bought its shares above a price of 1.")
		{
			tokens, e, v := setup()

			e.Add(uint256.NewInt(3000))
			if _, err := e.Deposit(ctx, tokens, v, 10); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to deposit batch 0: %v", failed, err)
			}
			if err := v.Harvest(tokens, keeper, uint256.NewInt(1000)); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to harvest: %v", failed, err)
			}

			e.Add(uint256.NewInt(1000))
			b, err := e.Deposit(ctx, tokens, v, 20)
			if err != nil || !b.Shares.Eq(uint256.NewInt(750)) {
				t.Fatalf("\t%s\tTest 2:\tShould buy 750 shares for 1000: %v", failed, err)
			}

			for i := 0; i < 3; i++ {
				paid, surplus, err := e.Withdraw(ctx, tokens, v, 1, uint256.NewInt(250))
				if err != nil || !paid.Eq(uint256.NewInt(250)) || !surplus.IsZero() {
					t.Fatalf("\t%s\tTest 2:\tShould pay the full principal: got %v %v %v", failed, paid, surplus, err)
				}
			}
			t.Logf("\t%s\tTest 2:\tShould pay the full principal on every partial settlement.", success)

			paid, surplus, err := e.Withdraw(ctx, tokens, v, 1, uint256.NewInt(250))
			if err != nil || paid.GtUint64(250) || !surplus.IsZero() {
				t.Fatalf("\t%s\tTest 2:\tShould take no yield from a batch that earned none: got %v %v %v", failed, paid, surplus, err)
			}
			t.Logf("\t%s\tTest 2:\tShould take no yield from a batch that earned none.", success)
		}
	}
}

func TestRewards(t *testing.T) {
	t.Log("Given the need to pay yield rewards to stewards.")
	{
		t.Logf("\tTest 0:\tWhen a steward claims credited rewards.")
		{
			tokens, e, _ := setup()

			if _, err := e.Claim(tokens, steward); err == nil || err.Error() != "withdrawYieldRewards: no rewards" {
				t.Fatalf("\t%s\tTest 0:\tShould reject a claim with no rewards: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a claim with no rewards.", success)

			e.Credit(steward, fixed.New(3))
			e.Credit(steward, fixed.New(2))

			amount, err := e.Claim(tokens, steward)
			if err != nil || !amount.Eq(fixed.New(5)) {
				t.Fatalf("\t%s\tTest 0:\tShould pay the accumulated rewards: %v", failed, err)
			}
			if !tokens.BalanceOf(steward).Eq(fixed.New(5)) || !e.Rewards(steward).IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould zero the rewards after paying.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould pay and zero the accumulated rewards.", success)
		}
	}
}
