package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	op   string
	data string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit an operation",
	Example: `  wallet send -a learner --op approve --data '{"spender":"0x...","amount":"100"}'
  wallet send -a learner --op register --data '{"course_id":0}'`,
	RunE: sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&op, "op", "o", "", "Operation to execute.")
	sendCmd.Flags().StringVarP(&data, "data", "d", "{}", "Operation arguments as JSON.")
}

func sendRun(cmd *cobra.Command, args []string) error {
	if op == "" {
		return errors.New("op is required")
	}

	if !json.Valid([]byte(data)) {
		return fmt.Errorf("data is not valid JSON: %s", data)
	}

	pk, err := loadSigner()
	if err != nil {
		return err
	}

	rcpt, err := submit(pk, op, json.RawMessage(data))
	if err != nil {
		return err
	}

	return printJSON(cmd, rcpt)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
