package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/calvinalkan/vectorfile/pkg/fs"
)

// InfoCmd returns the info command.
func InfoCmd(a *app) *Command {
	return &Command{
		Usage: "info <file>",
		Short: "Show element count, byte length and content digest",
		Long: `Show the element count, logical byte length and an xxhash64 digest of
the logical bytes. Files with equal digests hold the same records.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if err := needArgs(args, false, "<file>"); err != nil {
				return err
			}

			return a.withHandle(args[0], modeRead, func(h handle) error {
				return printInfo(o, a.fs, h)
			})
		},
	}
}

func printInfo(o *IO, fsys fs.FS, h handle) error {
	sum, err := digest(fsys, h)
	if err != nil {
		return err
	}

	o.Println("path=" + h.Path())
	o.Println("codec=" + h.Codec())
	o.Printf("elements=%d\n", h.Len())
	o.Printf("bytes=%d\n", h.FileLen())
	o.Printf("xxhash64=%016x\n", sum)

	return nil
}

// digest hashes the logical bytes of h. A writable handle is flushed
// first; slack past the logical end is not part of the content.
func digest(fsys fs.FS, h handle) (uint64, error) {
	if h.Writable() {
		if err := h.Flush(); err != nil {
			return 0, err
		}
	}

	f, err := fsys.Open(h.Path())
	if err != nil {
		return 0, fmt.Errorf("digest: %w", err)
	}

	defer func() { _ = f.Close() }()

	d := xxhash.New()

	if _, err := io.Copy(d, io.NewSectionReader(f, 0, h.FileLen())); err != nil {
		return 0, fmt.Errorf("digest %s: %w", h.Path(), err)
	}

	return d.Sum64(), nil
}
