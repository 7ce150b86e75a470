// This program is the wallet used to sign and submit school transactions.
package main

import "github.com/ardanlabs/deschool/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
