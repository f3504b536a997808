package main

import (
	"flag"
	"fmt"

	"github.com/lpetre/xarfuse/internal/env"
	cmdmount "github.com/lpetre/xarfuse/internal/mount"
	"github.com/lpetre/xarfuse/internal/xar"
	"golang.org/x/xerrors"
)

const mountHelp = `xarfuse mount [-n] <archive>

Mount the archive's embedded squashfs image at its per-user,
per-namespace mountpoint and print the mountpoint. Mounting is
idempotent: if the image is already mounted there, the existing mount is
reused.

Example:
  % xarfuse mount /path/to/file.xar
  % xarfuse mount -n /path/to/file.xar
`

func mount(args []string) error {
	fset := flag.NewFlagSet("mount", flag.ExitOnError)
	var (
		printOnly = fset.Bool("n", false, "print the mountpoint but don't mount")
	)
	fset.Usage = usage(fset, mountHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		return xerrors.New("syntax: mount [-n] <archive>")
	}
	archive := fset.Arg(0)

	hdr, err := xar.ReadHeader(archive)
	if err != nil {
		return err
	}
	m := &cmdmount.Mounter{
		Archive: archive,
		Image: cmdmount.Image{
			Offset:    hdr.Offset,
			UUID:      hdr.UUID,
			MountRoot: hdr.MountRoot,
		},
		Config: env.MountConfig(),
	}

	if *printOnly {
		mountpoint, err := m.Resolve()
		if err != nil {
			return err
		}
		fmt.Println(mountpoint)
		return nil
	}

	mountpoint, err := m.Mount()
	if err != nil {
		return err
	}
	fmt.Println(mountpoint)
	return nil
}
