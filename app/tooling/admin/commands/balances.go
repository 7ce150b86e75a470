// Package commands contains the admin commands run against a replayed
// school journal.
package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ethereum/go-ethereum/common"
)

// Balances prints the reserve and LEARN balance of every account, or only of
// the account named in the arguments.
func Balances(w io.Writer, args []string, st *state.State) error {
	var only common.Address
	if len(args) == 3 {
		if !common.IsHexAddress(args[2]) {
			return fmt.Errorf("invalid address %q", args[2])
		}
		only = common.HexToAddress(args[2])
	}

	fmt.Fprintf(w, "Block: %d  Records: %d\n\n", st.Block(), st.Seq())

	bals := st.TokenBalances()

	addresses := make([]common.Address, 0, len(bals))
	for address := range bals {
		if only != (common.Address{}) && address != only {
			continue
		}
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].Cmp(addresses[j]) < 0 })

	for _, address := range addresses {
		fmt.Fprintf(w, "Account: %s  Reserve: %s  LEARN: %s\n", address.Hex(), bals[address].Dec(), st.LearnBalance(address).Dec())
	}

	return nil
}

// Courses prints every course with its registration count.
func Courses(w io.Writer, args []string, st *state.State) error {
	for _, c := range st.Courses() {
		fmt.Fprintf(w, "Course: %d  Fee: %s  Schedule: %s  Learners: %d  Scholars: %d/%d\n",
			c.ID, c.Fee.Dec(), c.Schedule, len(st.Registrations(c.ID)), c.ActiveScholars, c.ScholarsAvailable)
	}

	return nil
}
