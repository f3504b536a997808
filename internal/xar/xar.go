// Package xar reads the plaintext header of a self-executing XAR archive.
//
// An archive starts with a shebang line followed by KEY="value" lines and
// is terminated by a #xar_stop line; the squashfs image follows immediately
// after. The header lines form a TOML document (the # lines are comments).
package xar

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

const stopSentinel = "#xar_stop"

// ErrStopNotFound is returned when the stream ends before a #xar_stop line.
var ErrStopNotFound = xerrors.New("malformed header: no " + stopSentinel + " line")

// Header holds the parsed archive metadata.
type Header struct {
	// Offset is the byte offset at which the embedded squashfs image
	// begins, i.e. the byte immediately following the #xar_stop line.
	Offset uint64

	Version string
	Target  string
	UUID    string

	// MountRoot is empty unless the archive overrides the mount root.
	MountRoot string
}

// ReadHeader parses the header of the archive at path.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	hdr, err := ParseHeader(f)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return hdr, nil
}

// ParseHeader reads lines from r until the #xar_stop sentinel and decodes
// the fields seen up to that point.
func ParseHeader(r io.Reader) (*Header, error) {
	br := bufio.NewReader(r)
	var buf bytes.Buffer
	for {
		line, err := br.ReadString('\n')
		buf.WriteString(line)
		if strings.HasPrefix(line, stopSentinel) {
			break
		}
		if err == io.EOF {
			return nil, ErrStopNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	// The archive builder writes numbers as quoted decimal strings.
	var raw struct {
		Offset    string `toml:"OFFSET"`
		Version   string `toml:"VERSION"`
		Target    string `toml:"XAREXEC_TARGET"`
		UUID      string `toml:"UUID"`
		MountRoot string `toml:"MOUNT_ROOT"`
	}
	if err := toml.Unmarshal(buf.Bytes(), &raw); err != nil {
		return nil, xerrors.Errorf("malformed header: %w", err)
	}
	if raw.Offset == "" || raw.Version == "" || raw.Target == "" || raw.UUID == "" {
		return nil, xerrors.New("malformed header: OFFSET, VERSION, XAREXEC_TARGET and UUID are required")
	}
	offset, err := strconv.ParseUint(raw.Offset, 10, 64)
	if err != nil {
		return nil, xerrors.Errorf("malformed header: OFFSET: %w", err)
	}
	return &Header{
		Offset:    offset,
		Version:   raw.Version,
		Target:    raw.Target,
		UUID:      raw.UUID,
		MountRoot: raw.MountRoot,
	}, nil
}
