package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balances.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	pk, err := loadSigner()
	if err != nil {
		return err
	}

	var act account
	if err := getJSON("/v1/accounts/list/"+pk.address().Hex(), &act); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "For Account:", act.Address.Hex(), act.Name)
	fmt.Fprintln(out, "Reserve:    ", act.Reserve.Dec())
	fmt.Fprintln(out, "LEARN:      ", act.Learn.Dec())
	fmt.Fprintln(out, "Rewards:    ", act.YieldRewards.Dec())
	fmt.Fprintln(out, "Nonce:      ", act.Nonce)

	return nil
}
