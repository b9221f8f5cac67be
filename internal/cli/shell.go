package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vectorfile/pkg/fs"
	"github.com/calvinalkan/vectorfile/pkg/vectorfile/vfprom"
)

// ShellCmd returns the shell command.
func ShellCmd(a *app) *Command {
	flags := flag.NewFlagSet("shell", flag.ContinueOnError)
	create := flags.Bool("create", false, "Create the file when it does not exist")

	return &Command{
		Flags: flags,
		Usage: "shell <file> [flags]",
		Short: "Edit a vector file interactively",
		Long: `Open a vector file read-write and run commands against it.

On a terminal the shell offers line editing, tab completion and history.
Otherwise commands are read line by line from stdin. Type 'help' in the
shell for the command list.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := needArgs(args, false, "<file>"); err != nil {
				return err
			}

			return execShell(ctx, o, a, args[0], *create)
		},
	}
}

func execShell(ctx context.Context, o *IO, a *app, arg string, create bool) error {
	path := a.cfg.Resolve(arg)

	mode := modeWrite

	if create {
		exists, err := a.fs.Exists(path)
		if err != nil {
			return err
		}

		if !exists {
			mode = modeCreate
		}
	}

	reg := prometheus.NewRegistry()

	opts := a.options()
	opts.Metrics = vfprom.New(reg, filepath.Base(path))

	h, err := openHandle(a.cfg.Codec, path, mode, 0, opts)
	if err != nil {
		return err
	}

	r := &repl{
		h:       h,
		o:       o,
		fs:      a.fs,
		reg:     reg,
		logger:  a.logger,
		history: historyFile(a.cfg.History, a.env),
	}

	err = r.run(ctx, a.stdin)

	if r.failures > 0 {
		o.Warn(strconv.Itoa(r.failures)+" shell command(s) failed", "see the errors above")
	}

	return errors.Join(err, h.Close())
}

// historyFile returns the configured history path, or ~/.vecty_history.
func historyFile(configured string, env map[string]string) string {
	if configured != "" {
		return configured
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".vecty_history")
	}

	return ""
}

// repl is the shell command loop.
type repl struct {
	h        handle
	o        *IO
	fs       fs.FS
	reg      *prometheus.Registry
	logger   *slog.Logger
	history  string
	liner    *liner.State
	failures int
}

var shellCommands = []string{
	"get", "set", "push", "pop", "resize", "seek", "flush",
	"len", "info", "stats", "metrics", "dump",
	"help", "exit", "quit", "q",
}

// run reads commands until exit, end of input or ctx is cancelled. Only
// the process's own stdin gets line editing.
func (r *repl) run(ctx context.Context, stdin io.Reader) error {
	if f, ok := stdin.(*os.File); ok && f == os.Stdin {
		return r.interactive(ctx)
	}

	if stdin == nil {
		return nil
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64<<10), 16<<20)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		if r.exec(scanner.Text()) {
			return nil
		}
	}

	return scanner.Err()
}

func (r *repl) interactive(ctx context.Context) error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	r.loadHistory()
	defer r.saveHistory()

	r.o.Printf("vecty - %s (%s, %d elements, %d bytes)\n", r.h.Path(), r.h.Codec(), r.h.Len(), r.h.FileLen())
	r.o.Println("Type 'help' for available commands.")
	r.o.Println()

	for ctx.Err() == nil {
		line, err := r.liner.Prompt("vecty> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				r.o.Println()

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		if strings.TrimSpace(line) != "" {
			r.liner.AppendHistory(line)
		}

		if r.exec(line) {
			return nil
		}
	}

	return nil
}

func (r *repl) loadHistory() {
	data := readHistory(r.fs, r.history)
	if data == nil {
		return
	}

	_, _ = r.liner.ReadHistory(bytes.NewReader(data))
}

// readHistory returns the saved history, or nil when there is none or it
// cannot be read. A missing history is not an error.
func readHistory(fsys fs.FS, path string) []byte {
	if path == "" {
		return nil
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil
	}

	return data
}

// saveHistory replaces the history file atomically so a crash mid-write
// never truncates it.
func (r *repl) saveHistory() {
	if r.history == "" {
		return
	}

	var buf bytes.Buffer

	if _, err := r.liner.WriteHistory(&buf); err != nil {
		r.logger.Warn("history not saved", "path", r.history, "error", err)

		return
	}

	if err := atomic.WriteFile(r.history, &buf); err != nil {
		r.logger.Warn("history not saved", "path", r.history, "error", err)
	}
}

func (r *repl) completer(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range shellCommands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

// exec runs one shell line and reports whether the shell should exit.
// Command errors are printed and counted, never fatal.
func (r *repl) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error

	switch strings.ToLower(cmd) {
	case "exit", "quit", "q":
		return true
	case "help", "?":
		r.printHelp()
	case "get":
		err = r.cmdGet(rest)
	case "set":
		err = r.cmdSet(rest)
	case "push":
		err = r.h.Append(rest)
	case "pop":
		err = r.cmdPop()
	case "resize":
		err = r.cmdResize(rest)
	case "seek":
		err = r.cmdSeek(rest)
	case "flush":
		err = r.h.Flush()
	case "len", "count":
		r.o.Printf("%d\n", r.h.Len())
	case "info":
		err = printInfo(r.o, r.fs, r.h)
	case "stats":
		r.cmdStats()
	case "metrics":
		err = r.cmdMetrics()
	case "dump", "ls":
		err = r.cmdDump(rest)
	default:
		err = fmt.Errorf("%w: %s (type 'help' for commands)", ErrUnknownCommand, cmd)
	}

	if err != nil {
		r.failures++
		r.o.ErrPrintln("error:", err)
	}

	return false
}

func (r *repl) printHelp() {
	r.o.Println("Commands:")
	r.o.Println("  get <index>              Print one element")
	r.o.Println("  set <index> <value>      Overwrite an element (rest of line is the value)")
	r.o.Println("  push <value>             Append an element (rest of line is the value)")
	r.o.Println("  pop                      Remove and print the last element")
	r.o.Println("  resize <bytes>           Grow or shrink to a byte length")
	r.o.Println("  seek <index>             Move the window to start at an element")
	r.o.Println("  flush                    Write the window back to the file")
	r.o.Println("  len                      Print the element count")
	r.o.Println("  info                     Show size and content digest")
	r.o.Println("  stats                    Show window and rewrite counters")
	r.o.Println("  metrics                  Show Prometheus metrics for this session")
	r.o.Println("  dump [limit]             Print elements in order")
	r.o.Println("  help                     Show this help")
	r.o.Println("  exit / quit / q          Exit (the file is flushed and truncated)")
}

func (r *repl) cmdGet(rest string) error {
	index, err := parseIndex(rest)
	if err != nil {
		return err
	}

	text, err := r.h.Show(index)
	if err != nil {
		return err
	}

	r.o.Println(text)

	return nil
}

func (r *repl) cmdSet(rest string) error {
	arg, value, ok := strings.Cut(rest, " ")
	if !ok {
		return fmt.Errorf("%w: set <index> <value>", ErrMissingArgs)
	}

	index, err := parseIndex(arg)
	if err != nil {
		return err
	}

	return r.h.Assign(index, strings.TrimSpace(value))
}

func (r *repl) cmdPop() error {
	text, err := r.h.Remove()
	if err != nil {
		return err
	}

	r.o.Println(text)

	return nil
}

func (r *repl) cmdResize(rest string) error {
	length, err := parseLength(rest)
	if err != nil {
		return err
	}

	if err := r.h.Resize(length); err != nil {
		return err
	}

	r.o.Printf("elements=%d bytes=%d\n", r.h.Len(), r.h.FileLen())

	return nil
}

func (r *repl) cmdSeek(rest string) error {
	index, err := parseIndex(rest)
	if err != nil {
		return err
	}

	return r.h.SeekWindow(index)
}

func (r *repl) cmdStats() {
	s := r.h.Stats()

	r.o.Printf("hits=%d\n", s.Hits)
	r.o.Printf("misses=%d\n", s.Misses)
	r.o.Printf("hit_ratio=%.2f\n", s.HitRatio())
	r.o.Printf("loads=%d\n", s.Loads)
	r.o.Printf("rewrites=%d\n", s.Rewrites)
	r.o.Printf("extensions=%d\n", s.Extensions)
	r.o.Printf("constrictions=%d\n", s.Constrictions)
	r.o.Printf("slack=%d\n", s.Slack)
}

func (r *repl) cmdMetrics() error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	w := r.o.Out()

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return nil
}

var errDumpLimit = errors.New("dump limit reached")

func (r *repl) cmdDump(rest string) error {
	limit := -1

	if rest != "" {
		n, err := parseIndex(rest)
		if err != nil {
			return err
		}

		limit = n
	}

	err := r.h.Each(func(index int, text string) error {
		if index == limit {
			return errDumpLimit
		}

		r.o.Printf("%d\t%s\n", index, text)

		return nil
	})
	if errors.Is(err, errDumpLimit) {
		return nil
	}

	return err
}
