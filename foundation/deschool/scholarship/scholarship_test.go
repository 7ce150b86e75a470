package scholarship_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/deschool/foundation/deschool/course"
	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/fixed"
	"github.com/ardanlabs/deschool/foundation/deschool/scholarship"
	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/token"
	"github.com/ardanlabs/deschool/foundation/deschool/vesting"
	"github.com/ethereum/go-ethereum/common"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var (
	poolAddr = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	provider = common.HexToAddress("0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4")
	other    = common.HexToAddress("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
)

func scholar(i int) common.Address {
	return common.BytesToAddress([]byte{0xa0, byte(i)})
}

func setup(t *testing.T) (*token.Ledger, *scholarship.Pools, course.Course) {
	tokens := token.New(signature.Domain{Name: "Dai Stablecoin", Version: "1", ChainID: 1}, "DAI")
	if err := tokens.Mint(provider, fixed.New(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	tokens.Approve(provider, poolAddr, token.Max())

	reg := course.NewRegistry()
	c, err := reg.Create(fixed.New(100), vesting.NewSingleMaturity(100), "", provider, provider, 1)
	if err != nil {
		t.Fatalf("create course: %v", err)
	}

	return tokens, scholarship.New(poolAddr), c
}

func TestFund(t *testing.T) {
	t.Log("Given the need to fund scholarships on a course.")
	{
		t.Logf("\tTest 0:\tWhen a provider funds three stakes.")
		{
			tokens, ps, c := setup(t)

			n, err := ps.Fund(tokens, &c, provider, fixed.New(300))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to fund: %v", failed, err)
			}
			if n != 3 || c.ScholarsAvailable != 3 || !c.ScholarshipTotal.Eq(fixed.New(300)) {
				t.Fatalf("\t%s\tTest 0:\tShould open three slots: got %d %d", failed, n, c.ScholarsAvailable)
			}
			t.Logf("\t%s\tTest 0:\tShould open three slots.", success)

			if !tokens.BalanceOf(poolAddr).Eq(fixed.New(300)) {
				t.Fatalf("\t%s\tTest 0:\tShould hold the funds.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the funds.", success)

			for i := 0; i < 3; i++ {
				stake, err := ps.Allocate(&c, scholar(i))
				if err != nil || !stake.Eq(fixed.New(100)) {
					t.Fatalf("\t%s\tTest 0:\tShould allocate slot %d: %v", failed, i, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould allocate three scholars.", success)

			if _, err := ps.Allocate(&c, scholar(3)); !errors.Is(err, fail.InsufficientFunds) || err.Error() != "registerScholar: no scholarships available for this course" {
				t.Fatalf("\t%s\tTest 0:\tShould reject a fourth scholar: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a fourth scholar.", success)

			ps.Return(&c, scholar(0), fixed.New(100), true, true)
			if c.ScholarsAvailable != 1 || c.ActiveScholars != 2 || c.CompletedScholars != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould reopen the slot of a completed scholar: %+v", failed, c)
			}
			t.Logf("\t%s\tTest 0:\tShould reopen the slot of a completed scholar.", success)
		}

		t.Logf("\tTest 1:\tWhen fundings leave a remainder below the fee.")
		{
			tokens, ps, c := setup(t)

			for i := 0; i < 2; i++ {
				n, err := ps.Fund(tokens, &c, provider, fixed.New(150))
				if err != nil || n != 1 {
					t.Fatalf("\t%s\tTest 1:\tShould open one slot per funding: got %d %v", failed, n, err)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould open one slot per funding.", success)

			if c.ScholarsAvailable != 2 || !c.ScholarshipTotal.Eq(fixed.New(300)) {
				t.Fatalf("\t%s\tTest 1:\tShould not open a slot for the remainders: got %d", failed, c.ScholarsAvailable)
			}
			t.Logf("\t%s\tTest 1:\tShould not open a slot for the remainders.", success)
		}

		t.Logf("\tTest 2:\tWhen a provider funds less than one stake.")
		{
			tokens, ps, c := setup(t)

			_, err := ps.Fund(tokens, &c, provider, fixed.New(99))
			if !errors.Is(err, fail.InvalidInput) {
				t.Fatalf("\t%s\tTest 2:\tShould reject the funding: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the funding.", success)
		}
	}
}

func TestWithdraw(t *testing.T) {
	t.Log("Given the need to withdraw scholarship funds.")
	{
		t.Logf("\tTest 0:\tWhen part of the pool is staked by a scholar.")
		{
			tokens, ps, c := setup(t)

			if _, err := ps.Fund(tokens, &c, provider, fixed.New(300)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to fund: %v", failed, err)
			}
			if _, err := ps.Allocate(&c, scholar(0)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to allocate: %v", failed, err)
			}

			const msg = "withdrawScholarship: can only withdraw up to the amount initally provided for scholarships"

			if _, err := ps.Withdraw(tokens, &c, provider, fixed.New(201)); err == nil || err.Error() != msg {
				t.Fatalf("\t%s\tTest 0:\tShould not withdraw staked funds: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould not withdraw staked funds.", success)

			if _, err := ps.Withdraw(tokens, &c, other, fixed.New(1)); err == nil || err.Error() != msg {
				t.Fatalf("\t%s\tTest 0:\tShould not let another account withdraw: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould not let another account withdraw.", success)

			removed, err := ps.Withdraw(tokens, &c, provider, fixed.New(150))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to withdraw: %v", failed, err)
			}
			if removed != 2 || c.ScholarsAvailable != 0 || !c.ScholarshipTotal.Eq(fixed.New(150)) {
				t.Fatalf("\t%s\tTest 0:\tShould close the unfunded slots: removed %d available %d", failed, removed, c.ScholarsAvailable)
			}
			t.Logf("\t%s\tTest 0:\tShould close the unfunded slots.", success)

			if !tokens.BalanceOf(provider).Eq(fixed.New(850)) {
				t.Fatalf("\t%s\tTest 0:\tShould return the funds: got %s", failed, tokens.BalanceOf(provider).Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould return the funds.", success)

			if got := ps.Pool(c.ID).Contribution(provider); !got.Eq(fixed.New(150)) {
				t.Fatalf("\t%s\tTest 0:\tShould lower the contribution: got %s", failed, got.Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould lower the contribution.", success)
		}
	}
}

func TestProviders(t *testing.T) {
	const msg = "withdrawScholarship: can only withdraw up to the amount initally provided for scholarships"

	t.Log("Given the need to keep each provider's funds apart.")
	{
		t.Logf("\tTest 0:\tWhen two providers fund a stake each and one scholar registers.")
		{
			tokens, ps, c := setup(t)
			if err := tokens.Mint(other, fixed.New(1000)); err != nil {
				t.Fatalf("mint: %v", err)
			}
			tokens.Approve(other, poolAddr, token.Max())

			for _, who := range []common.Address{provider, other} {
				if _, err := ps.Fund(tokens, &c, who, fixed.New(100)); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to fund: %v", failed, err)
				}
			}

			if _, err := ps.Allocate(&c, scholar(0)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to allocate: %v", failed, err)
			}

			pool := ps.Pool(c.ID)
			if !pool.Available(provider).IsZero() || !pool.Available(other).Eq(fixed.New(100)) {
				t.Fatalf("\t%s\tTest 0:\tShould charge the first provider: got %s %s", failed, pool.Available(provider).Dec(), pool.Available(other).Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould charge the first provider.", success)

			if _, err := ps.Withdraw(tokens, &c, provider, fixed.New(100)); err == nil || err.Error() != msg {
				t.Fatalf("\t%s\tTest 0:\tShould not withdraw the stake backing the scholar: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould not withdraw the stake backing the scholar.", success)

			removed, err := ps.Withdraw(tokens, &c, other, fixed.New(100))
			if err != nil || removed != 1 || c.ScholarsAvailable != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould let the second provider withdraw: removed %d %v", failed, removed, err)
			}
			if !tokens.BalanceOf(other).Eq(fixed.New(1000)) {
				t.Fatalf("\t%s\tTest 0:\tShould return the second provider's funds: got %s", failed, tokens.BalanceOf(other).Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould let the second provider withdraw.", success)

			ps.Return(&c, scholar(0), fixed.New(100), true, true)

			if got := ps.Pool(c.ID).Available(provider); !got.Eq(fixed.New(100)) {
				t.Fatalf("\t%s\tTest 0:\tShould credit the returned stake to its provider: got %s", failed, got.Dec())
			}
			if c.ScholarsAvailable != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould reopen the slot: got %d", failed, c.ScholarsAvailable)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the returned stake to its provider.", success)

			if _, err := ps.Withdraw(tokens, &c, provider, fixed.New(100)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould let the first provider withdraw: %v", failed, err)
			}
			if !tokens.BalanceOf(provider).Eq(fixed.New(1000)) || !tokens.BalanceOf(poolAddr).IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould return every fund: got %s", failed, tokens.BalanceOf(provider).Dec())
			}
			t.Logf("\t%s\tTest 0:\tShould let the first provider withdraw once the stake is back.", success)
		}
	}
}
