package main

import (
	"flag"
	"fmt"
	"os"

	_ "github.com/lpetre/xarfuse/internal/oninterrupt"
)

var verbose = flag.Bool("verbose", false, "display detailed output")

func main() {
	flag.Parse()
	setupLog(*verbose)

	verbs := map[string]func(args []string) error{
		"header": header,
		"mount":  mount,
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "syntax: xarfuse [-verbose] <command> [options]\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "\theader - print the parsed archive header\n")
		fmt.Fprintf(os.Stderr, "\tmount  - mount the archive's squashfs image\n")
		os.Exit(2)
	}
	verb, args := args[0], args[1:]

	if verb == "help" {
		if len(args) != 1 {
			fmt.Fprintf(os.Stderr, "syntax: xarfuse help <command>\n")
			os.Exit(2)
		}
		verb = args[0]
		args = []string{"-help"}
	}
	fn, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintf(os.Stderr, "syntax: xarfuse <command> [options]\n")
		os.Exit(2)
	}
	if err := fn(args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %+v\n", verb, err)
		os.Exit(1)
	}
}
