// This program performs administrative tasks against a school journal.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/deschool/foundation/deschool/genesis"
	"github.com/ardanlabs/deschool/foundation/deschool/state"
	"github.com/ardanlabs/deschool/foundation/deschool/storage/disk"
	"github.com/ardanlabs/deschool/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

const (
	genesisPath = "zdata/genesis.json"
	dbPath      = "zdata/journal.db"
)

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	if len(os.Args) < 2 {
		return errors.New("usage: admin [records|bals|courses] [args]")
	}

	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return err
	}

	strg, err := disk.New(dbPath)
	if err != nil {
		return err
	}

	// Constructing the state replays the journal and rebuilds the ledgers.
	ev := func(v string, args ...any) {
		log.Debugw(fmt.Sprintf(v, args...), "build", build)
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		Storage:   strg,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	return processCommands(os.Stdout, os.Args, st)
}
