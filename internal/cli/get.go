package cli

import (
	"context"
)

// GetCmd returns the get command.
func GetCmd(a *app) *Command {
	return &Command{
		Usage: "get <file> <index>...",
		Short: "Print elements by index",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if err := needArgs(args, true, "<file>", "<index>"); err != nil {
				return err
			}

			indexes := make([]int, 0, len(args)-1)

			for _, arg := range args[1:] {
				index, err := parseIndex(arg)
				if err != nil {
					return err
				}

				indexes = append(indexes, index)
			}

			return a.withHandle(args[0], modeRead, func(h handle) error {
				for _, index := range indexes {
					text, err := h.Show(index)
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

// SetCmd returns the set command.
func SetCmd(a *app) *Command {
	return &Command{
		Usage: "set <file> <index> <value>",
		Short: "Overwrite one element",
		Long: `Overwrite one element. When the new value encodes to a different size,
every later record is shifted when the file is closed.`,
		Exec: func(_ context.Context, _ *IO, args []string) error {
			if err := needArgs(args, false, "<file>", "<index>", "<value>"); err != nil {
				return err
			}

			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}

			return a.withHandle(args[0], modeWrite, func(h handle) error {
				return h.Assign(index, args[2])
			})
		},
	}
}

// PushCmd returns the push command.
func PushCmd(a *app) *Command {
	return &Command{
		Usage: "push <file> <value>...",
		Short: "Append elements",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if err := needArgs(args, true, "<file>", "<value>"); err != nil {
				return err
			}

			return a.withHandle(args[0], modeWrite, func(h handle) error {
				for _, value := range args[1:] {
					if err := h.Append(value); err != nil {
						return err
					}
				}

				o.Printf("%d\n", h.Len())

				return nil
			})
		},
	}
}
