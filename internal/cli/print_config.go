package cli

import (
	"context"
	"strconv"

	"github.com/calvinalkan/vectorfile/internal/config"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *config.Config) *Command {
	return &Command{
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg *config.Config) error {
	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("codec=" + cfg.Codec)
	io.Println("window_size=" + strconv.FormatInt(cfg.WindowSize, 10))
	io.Println("writeback=" + cfg.Writeback)
	io.Println("log_level=" + cfg.LogLevel)

	if cfg.History != "" {
		io.Println("history=" + cfg.History)
	}

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			io.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}
