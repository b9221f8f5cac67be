package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// needArgs checks that args holds exactly the named positional arguments,
// or at least that many when variadic is set.
func needArgs(args []string, variadic bool, names ...string) error {
	if len(args) < len(names) {
		missing := names[len(args):]

		return fmt.Errorf("%w: %s", ErrMissingArgs, strings.Join(missing, " "))
	}

	if !variadic && len(args) > len(names) {
		return fmt.Errorf("%w: %s", ErrTooManyArgs, strings.Join(args[len(names):], " "))
	}

	return nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, s)
	}

	return n, nil
}

func parseLength(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}

	return n, nil
}
