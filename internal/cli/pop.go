package cli

import (
	"context"
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"
)

// PopCmd returns the pop command.
func PopCmd(a *app) *Command {
	flags := flag.NewFlagSet("pop", flag.ContinueOnError)
	count := flags.IntP("count", "n", 1, "Number of elements to remove")

	return &Command{
		Flags: flags,
		Usage: "pop <file> [flags]",
		Short: "Remove and print the last elements",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if err := needArgs(args, false, "<file>"); err != nil {
				return err
			}

			if *count < 1 {
				return fmt.Errorf("%w: count %d", ErrInvalidLength, *count)
			}

			return a.withHandle(args[0], modeWrite, func(h handle) error {
				n := min(*count, h.Len())
				if n < *count {
					o.Warn("only "+strconv.Itoa(n)+" of "+strconv.Itoa(*count)+" elements popped",
						"the vector is now empty")
				}

				for range n {
					text, err := h.Remove()
					if err != nil {
						return err
					}

					o.Println(text)
				}

				return nil
			})
		},
	}
}

// ResizeCmd returns the resize command.
func ResizeCmd(a *app) *Command {
	return &Command{
		Usage: "resize <file> <bytes>",
		Short: "Grow or shrink to a byte length",
		Long: `Grow with zero values or shrink from the end until the file holds the
largest whole number of records that fits in <bytes>.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if err := needArgs(args, false, "<file>", "<bytes>"); err != nil {
				return err
			}

			length, err := parseLength(args[1])
			if err != nil {
				return err
			}

			return a.withHandle(args[0], modeWrite, func(h handle) error {
				if err := h.Resize(length); err != nil {
					return err
				}

				o.Printf("elements=%d bytes=%d\n", h.Len(), h.FileLen())

				return nil
			})
		},
	}
}
