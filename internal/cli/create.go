package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// CreateCmd returns the create command.
func CreateCmd(a *app) *Command {
	flags := flag.NewFlagSet("create", flag.ContinueOnError)
	flags.Int64P("length", "n", 0, "Fill with zero values up to `bytes`")
	flags.BoolP("force", "f", false, "Truncate an existing file")

	return &Command{
		Flags: flags,
		Usage: "create <file> [flags]",
		Short: "Create a vector file",
		Long: `Create a vector file for the configured codec.

With --length, the file is filled with zero values while another whole
record still fits in the given number of bytes.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execCreate(o, a, flags, args)
		},
	}
}

func execCreate(o *IO, a *app, flags *flag.FlagSet, args []string) error {
	if err := needArgs(args, false, "<file>"); err != nil {
		return err
	}

	length, _ := flags.GetInt64("length")
	force, _ := flags.GetBool("force")

	if length < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	path := a.cfg.Resolve(args[0])

	exists, err := a.fs.Exists(path)
	if err != nil {
		return err
	}

	if exists && !force {
		return fmt.Errorf("%w: %s (use --force to truncate)", ErrFileExists, args[0])
	}

	h, err := openHandle(a.cfg.Codec, path, modeCreate, length, a.options())
	if err != nil {
		return err
	}

	count, size := h.Len(), h.FileLen()

	if err := h.Close(); err != nil {
		return err
	}

	o.Printf("created %s (%s): %d elements, %d bytes\n", args[0], a.cfg.Codec, count, size)

	return nil
}
