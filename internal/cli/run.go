package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vectorfile/internal/config"
	"github.com/calvinalkan/vectorfile/pkg/fs"
	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. The first signal cancels the context handed to the
// command; long-running commands (shell) stop at the next prompt.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	return RunWithFS(fs.NewReal(), stdin, out, errOut, args, env, sigCh)
}

// RunWithFS is [Run] with every file access (config, vectors, digests,
// history) going through fsys.
func RunWithFS(fsys fs.FS, stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("vecty", flag.ContinueOnError)
	globals.SetOutput(&strings.Builder{})
	globals.SetInterspersed(false)

	var overrides config.Config

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	globals.StringVar(&overrides.Codec, "codec", "", "Element codec: "+strings.Join(Codecs, ", "))
	globals.Int64Var(&overrides.WindowSize, "window", 0, "Window width in `bytes`")
	globals.StringVar(&overrides.Writeback, "writeback", "", "Durability of flush and close: none or sync")
	globals.StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	help := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	if err := globals.Parse(args); err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals, commandList(&app{}))

		return 1
	}

	rest := globals.Args()
	if *help || len(args) == 0 {
		printUsage(out, globals, commandList(&app{}))

		return 0
	}

	if len(rest) == 0 {
		fprintln(errOut, "error:", ErrNoCommand)
		fprintln(errOut)
		printUsage(errOut, globals, commandList(&app{}))

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: *workDir,
		ConfigPath:      *configPath,
		Overrides:       overrides,
		Env:             env,
		FS:              fsys,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	a := &app{
		cfg:    cfg,
		env:    env,
		fs:     fsys,
		stdin:  stdin,
		logger: slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: cfg.Level()})),
	}

	commands := commandList(a)

	var cmd *Command

	for _, c := range commands {
		if c.Name() == rest[0] {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, rest[0]))
		fprintln(errOut)
		printUsage(errOut, globals, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(out, errOut)

	if code := cmd.Run(ctx, o, rest[1:]); code != 0 {
		return code
	}

	return o.Finish()
}

// app carries what every command needs: the resolved config, the
// filesystem, and where logs and input come from.
type app struct {
	cfg    config.Config
	env    map[string]string
	fs     fs.FS
	stdin  io.Reader
	logger *slog.Logger
}

func (a *app) options() vectorfile.Options {
	return vectorfile.Options{
		WindowSize: a.cfg.WindowSize,
		Writeback:  a.cfg.WritebackMode(),
		Logger:     a.logger,
		FS:         a.fs,
	}
}

// open opens a file argument relative to the effective working directory.
func (a *app) open(path string, mode openMode) (handle, error) {
	return openHandle(a.cfg.Codec, a.cfg.Resolve(path), mode, 0, a.options())
}

// withHandle opens path, runs fn and closes the handle. A Close failure
// is reported alongside fn's error.
func (a *app) withHandle(path string, mode openMode, fn func(h handle) error) (err error) {
	h, err := a.open(path, mode)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, h.Close())
	}()

	return fn(h)
}

func commandList(a *app) []*Command {
	return []*Command{
		CreateCmd(a),
		InfoCmd(a),
		GetCmd(a),
		SetCmd(a),
		PushCmd(a),
		PopCmd(a),
		ResizeCmd(a),
		DumpCmd(a),
		ExportCmd(a),
		ShellCmd(a),
		PrintConfigCmd(&a.cfg),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, `vecty - inspect and edit vector files

Usage: vecty [flags] <command> [args]

Global flags:`)

	var buf strings.Builder

	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})

	_, _ = fmt.Fprint(w, buf.String())

	if len(commands) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}
