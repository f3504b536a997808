package main

import (
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

// setupLog routes debug logging. Without -verbose the log package is
// silenced entirely; results go to stdout via fmt. The timestamp prefix
// is kept only when stderr is not a terminal.
func setupLog(verbose bool) {
	if !verbose {
		log.SetOutput(io.Discard)
		return
	}
	log.SetOutput(os.Stderr)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetFlags(0)
	}
}
