package token_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

var (
	holder  = common.HexToAddress("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	spender = common.HexToAddress("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	other   = common.HexToAddress("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")

	domain = signature.Domain{
		Name:              "Dai Stablecoin",
		Version:           "1",
		ChainID:           1,
		VerifyingContract: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
	}
)

func newLedger(t *testing.T) *token.Ledger {
	l := token.New(domain, "DAI")
	if err := l.Mint(holder, uint256.NewInt(1000)); err != nil {
		t.Fatalf("\t%s\tShould be able to mint genesis funds: %v", failed, err)
	}
	return l
}

// =============================================================================

func TestTransfers(t *testing.T) {
	t.Log("Given the need to move reserve tokens between accounts.")
	{
		t.Logf("\tTest 0:\tWhen the holder has enough funds.")
		{
			l := newLedger(t)

			if err := l.Transfer(holder, spender, uint256.NewInt(400)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to transfer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to transfer.", success)

			if l.BalanceOf(holder).Uint64() != 600 || l.BalanceOf(spender).Uint64() != 400 {
				t.Fatalf("\t%s\tTest 0:\tShould have balances 600/400: got %s/%s", failed, l.BalanceOf(holder), l.BalanceOf(spender))
			}
			t.Logf("\t%s\tTest 0:\tShould have balances 600/400.", success)
		}

		t.Logf("\tTest 1:\tWhen the holder does not have enough funds.")
		{
			l := newLedger(t)

			err := l.Transfer(holder, spender, uint256.NewInt(1001))
			if !errors.Is(err, fail.InsufficientFunds) {
				t.Fatalf("\t%s\tTest 1:\tShould get insufficient funds: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get insufficient funds.", success)

			if l.BalanceOf(holder).Uint64() != 1000 {
				t.Fatalf("\t%s\tTest 1:\tShould not change the balance: got %s", failed, l.BalanceOf(holder))
			}
			t.Logf("\t%s\tTest 1:\tShould not change the balance.", success)
		}
	}
}

func TestAllowances(t *testing.T) {
	t.Log("Given the need to move reserve tokens on behalf of an owner.")
	{
		t.Logf("\tTest 0:\tWhen the spender has a limited allowance.")
		{
			l := newLedger(t)
			l.Approve(holder, spender, uint256.NewInt(300))

			if err := l.TransferFrom(spender, holder, other, uint256.NewInt(200)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to transfer within the allowance: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to transfer within the allowance.", success)

			if l.Allowance(holder, spender).Uint64() != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould consume the allowance: got %s", failed, l.Allowance(holder, spender))
			}
			t.Logf("\t%s\tTest 0:\tShould consume the allowance.", success)

			err := l.TransferFrom(spender, holder, other, uint256.NewInt(101))
			if err == nil || err.Error() != "ERC20: transfer amount exceeds allowance" {
				t.Fatalf("\t%s\tTest 0:\tShould reject transfers beyond the allowance: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject transfers beyond the allowance.", success)
		}

		t.Logf("\tTest 1:\tWhen the spender has an unlimited allowance.")
		{
			l := newLedger(t)
			l.Approve(holder, spender, token.Max())

			if err := l.TransferFrom(spender, holder, other, uint256.NewInt(500)); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to transfer: %v", failed, err)
			}

			if !l.Allowance(holder, spender).Eq(token.Max()) {
				t.Fatalf("\t%s\tTest 1:\tShould not decrement an unlimited allowance.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not decrement an unlimited allowance.", success)
		}

		t.Logf("\tTest 2:\tWhen the ledger is cloned.")
		{
			l := newLedger(t)
			cpy := l.Clone()

			if err := cpy.Transfer(holder, spender, uint256.NewInt(1000)); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to transfer on the clone: %v", failed, err)
			}

			if l.BalanceOf(holder).Uint64() != 1000 {
				t.Fatalf("\t%s\tTest 2:\tShould not change the original ledger.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not change the original ledger.", success)
		}
	}
}

func TestPermit(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	t.Log("Given the need to approve a spender with a signed permit.")
	{
		t.Logf("\tTest 0:\tWhen the permit is valid.")
		{
			l := newLedger(t)
			p := signature.Permit{Holder: holder, Spender: spender, Nonce: 0, Expiry: 10, Allowed: true}

			v, r, s, err := signature.SignPermit(domain, p, pk)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the permit: %v", failed, err)
			}

			if err := l.Permit(p, v, r, s, 5); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to apply the permit: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to apply the permit.", success)

			if !l.Allowance(holder, spender).Eq(token.Max()) {
				t.Fatalf("\t%s\tTest 0:\tShould grant an unlimited allowance.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould grant an unlimited allowance.", success)

			if l.Nonce(holder) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould advance the nonce.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould advance the nonce.", success)

			if err := l.Permit(p, v, r, s, 5); err == nil || err.Error() != "permit: invalid nonce" {
				t.Fatalf("\t%s\tTest 0:\tShould reject a replayed permit: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a replayed permit.", success)
		}

		t.Logf("\tTest 1:\tWhen the permit is expired.")
		{
			l := newLedger(t)
			p := signature.Permit{Holder: holder, Spender: spender, Nonce: 0, Expiry: 10, Allowed: true}

			v, r, s, err := signature.SignPermit(domain, p, pk)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to sign the permit: %v", failed, err)
			}

			err = l.Permit(p, v, r, s, 11)
			if !errors.Is(err, fail.Unauthorized) || err.Error() != "permit: expired" {
				t.Fatalf("\t%s\tTest 1:\tShould reject the expired permit: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the expired permit.", success)
		}

		t.Logf("\tTest 2:\tWhen the permit is signed by someone else.")
		{
			l := newLedger(t)
			p := signature.Permit{Holder: other, Spender: spender, Nonce: 0, Allowed: true}

			v, r, s, err := signature.SignPermit(domain, p, pk)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to sign the permit: %v", failed, err)
			}

			if err := l.Permit(p, v, r, s, 0); err == nil || err.Error() != "permit: invalid signature" {
				t.Fatalf("\t%s\tTest 2:\tShould reject the forged permit: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the forged permit.", success)

			if !l.Allowance(other, spender).IsZero() {
				t.Fatalf("\t%s\tTest 2:\tShould not grant an allowance.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not grant an allowance.", success)
		}
	}
}
