package cmd

import (
	"fmt"

	"github.com/ardanlabs/deschool/foundation/deschool/signature"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/spf13/cobra"
)

var (
	courseID uint64
	expiry   uint64
)

var permitCmd = &cobra.Command{
	Use:   "permit",
	Short: "Sign a permit for the school and register to a course",
	RunE:  permitRun,
}

func init() {
	rootCmd.AddCommand(permitCmd)
	permitCmd.Flags().Uint64VarP(&courseID, "course", "c", 0, "Course to register to.")
	permitCmd.Flags().Uint64VarP(&expiry, "expiry", "e", 0, "Block the permit expires at, 0 never expires.")
}

func permitRun(cmd *cobra.Command, args []string) error {
	pk, err := loadSigner()
	if err != nil {
		return err
	}

	var gen genesisInfo
	if err := getJSON("/v1/genesis/list", &gen); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}

	var act account
	if err := getJSON("/v1/accounts/list/"+pk.address().Hex(), &act); err != nil {
		return fmt.Errorf("account: %w", err)
	}

	permit := signature.Permit{
		Holder:  pk.address(),
		Spender: gen.Addresses.School,
		Nonce:   act.PermitNonce,
		Expiry:  expiry,
		Allowed: true,
	}

	v, r, s, err := signature.SignPermit(gen.Domain, permit, pk.key)
	if err != nil {
		return fmt.Errorf("sign permit: %w", err)
	}

	a := state.PermitAndRegisterArgs{
		CourseID:  courseID,
		Nonce:     permit.Nonce,
		Expiry:    permit.Expiry,
		Signature: signature.PermitSignatureString(v, r, s),
	}

	rcpt, err := submit(pk, state.OpPermitAndRegister, a)
	if err != nil {
		return err
	}

	return printJSON(cmd, rcpt)
}
