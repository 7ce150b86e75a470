package main

import (
	"fmt"
	"io"

	"github.com/ardanlabs/deschool/app/tooling/admin/commands"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
)

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(w io.Writer, args []string, st *state.State) error {
	switch args[1] {
	case "records":
		if err := commands.Records(w, args, st); err != nil {
			return fmt.Errorf("getting records: %w", err)
		}
	case "bals":
		if err := commands.Balances(w, args, st); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "courses":
		if err := commands.Courses(w, args, st); err != nil {
			return fmt.Errorf("getting courses: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
