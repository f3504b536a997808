// Package oninterrupt turns SIGINT into the conventional 128+signal exit
// code. Once the mount helper has been spawned there is nothing to cancel
// in-process, so interrupt handling lives here at the process edge;
// import for the side effect.
package oninterrupt

import (
	"os"
	"os/signal"
	"syscall"
)

func init() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		sig := <-c
		if s, ok := sig.(syscall.Signal); ok {
			os.Exit(128 + int(s))
		}
		os.Exit(1)
	}()
}
