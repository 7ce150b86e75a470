package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ardanlabs/deschool/foundation/deschool/state"
)

// Records prints the journal, or only the record with the sequence number
// named in the arguments.
func Records(w io.Writer, args []string, st *state.State) error {
	var only uint64
	if len(args) == 3 {
		seq, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seq %q", args[2])
		}
		only = seq
	}

	records, err := st.Records()
	if err != nil {
		return err
	}

	for _, rec := range records {
		if only != 0 && rec.Seq != only {
			continue
		}
		fmt.Fprintf(w, "Seq: %d  Block: %d  Caller: %s  Nonce: %d  Op: %s  Data: %s\n",
			rec.Seq, rec.Block, rec.Caller.Hex(), rec.Nonce, rec.Op, rec.Data)
	}

	return nil
}
