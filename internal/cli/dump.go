package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
)

// DumpCmd returns the dump command.
func DumpCmd(a *app) *Command {
	flags := flag.NewFlagSet("dump", flag.ContinueOnError)
	indexed := flags.BoolP("index", "i", false, "Prefix every line with the element index")

	return &Command{
		Flags: flags,
		Usage: "dump <file> [flags]",
		Short: "Print every element in order",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := needArgs(args, false, "<file>"); err != nil {
				return err
			}

			return a.withHandle(args[0], modeRead, func(h handle) error {
				return writeDump(ctx, o.Out(), h, *indexed)
			})
		},
	}
}

// ExportCmd returns the export command.
func ExportCmd(a *app) *Command {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	indexed := flags.BoolP("index", "i", false, "Prefix every line with the element index")

	return &Command{
		Flags: flags,
		Usage: "export <file> <out> [flags]",
		Short: "Write the dump to a file atomically",
		Long: `Write the output of dump to <out>. The file is replaced atomically, so
readers see either the previous export or the complete new one.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := needArgs(args, false, "<file>", "<out>"); err != nil {
				return err
			}

			var buf bytes.Buffer

			err := a.withHandle(args[0], modeRead, func(h handle) error {
				return writeDump(ctx, &buf, h, *indexed)
			})
			if err != nil {
				return err
			}

			if err := atomic.WriteFile(a.cfg.Resolve(args[1]), &buf); err != nil {
				return fmt.Errorf("export %s: %w", args[1], err)
			}

			o.Printf("exported %s to %s\n", args[0], args[1])

			return nil
		},
	}
}

func writeDump(ctx context.Context, w io.Writer, h handle, indexed bool) error {
	return h.Each(func(index int, text string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		if indexed {
			_, err = fmt.Fprintf(w, "%d\t%s\n", index, text)
		} else {
			_, err = fmt.Fprintln(w, text)
		}

		return err
	})
}
