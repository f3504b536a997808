package main

import (
	"flag"
	"fmt"

	"github.com/lpetre/xarfuse/internal/xar"
	"golang.org/x/xerrors"
)

const headerHelp = `xarfuse header <archive>

Parse the archive's plaintext header and print its fields.

Example:
  % xarfuse header /path/to/file.xar
`

func header(args []string) error {
	fset := flag.NewFlagSet("header", flag.ExitOnError)
	fset.Usage = usage(fset, headerHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		return xerrors.New("syntax: header <archive>")
	}

	hdr, err := xar.ReadHeader(fset.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("offset=%d\n", hdr.Offset)
	fmt.Printf("version=%s\n", hdr.Version)
	fmt.Printf("target=%s\n", hdr.Target)
	fmt.Printf("uuid=%s\n", hdr.UUID)
	if hdr.MountRoot != "" {
		fmt.Printf("mount_root=%s\n", hdr.MountRoot)
	}
	return nil
}
