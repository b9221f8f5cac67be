// Package config loads the layered JSONC configuration of the vecty CLI.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/vectorfile/pkg/fs"
	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Codec      string `json:"codec"`
	WindowSize int64  `json:"window_size"`
	Writeback  string `json:"writeback"`
	LogLevel   string `json:"log_level"`
	History    string `json:"history,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Codec:      "u8",
		WindowSize: vectorfile.DefaultWindowSize,
		Writeback:  "none",
		LogLevel:   "warn",
	}
}

// FileName is the default project config file name.
const FileName = ".vecty.json"

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/vecty/config.json if set, otherwise ~/.config/vecty/config.json.
// Returns empty string if home directory cannot be determined.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "vecty", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "vecty", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Config            // flag values; zero fields mean no override
	Env             map[string]string // environment variables
	FS              fs.FS             // filesystem config files are read from; nil means fs.NewReal()
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/vecty/config.json or $XDG_CONFIG_HOME/vecty/config.json)
// 3. Project config file at default location (.vecty.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
func Load(input LoadInput) (Config, error) {
	fsys := input.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	globalCfg, globalFile, err := loadGlobal(fsys, input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalFile
	cfg = merge(cfg, globalCfg)

	projectCfg, projectFile, err := loadProject(fsys, workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectFile
	cfg = merge(cfg, projectCfg)

	cfg = merge(cfg, input.Overrides)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if cfg.History != "" && !filepath.IsAbs(cfg.History) {
		cfg.History = filepath.Join(workDir, cfg.History)
	}

	return cfg, nil
}

// Resolve returns path relative to the effective working directory.
func (c Config) Resolve(path string) string {
	if filepath.IsAbs(path) || c.EffectiveCwd == "" {
		return path
	}

	return filepath.Join(c.EffectiveCwd, path)
}

// WritebackMode returns the vectorfile spelling of Writeback.
func (c Config) WritebackMode() vectorfile.WritebackMode {
	if c.Writeback == vectorfile.WritebackSync.String() {
		return vectorfile.WritebackSync
	}

	return vectorfile.WritebackNone
}

// Level returns LogLevel as a slog level. Unknown spellings map to warn;
// Load rejects them before they get here.
func (c Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}

	return level
}

func loadGlobal(fsys fs.FS, env map[string]string) (Config, string, error) {
	path := globalPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadFile(fsys, path, false)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadProject loads the project config file (.vecty.json) or an explicit config file.
func loadProject(fsys fs.FS, workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		path := filepath.Join(workDir, FileName)

		cfg, loaded, err := loadFile(fsys, path, false)
		if err != nil || !loaded {
			return Config{}, "", err
		}

		return cfg, path, nil
	}

	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	exists, err := fsys.Exists(path)
	if err != nil || !exists {
		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	cfg, _, err := loadFile(fsys, path, true)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile loads a config file. If mustExist is false, missing files return
// a zero config and loaded=false.
func loadFile(fsys fs.FS, path string, mustExist bool) (Config, bool, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	// An explicit "codec": "" is an error, not "keep the default".
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["codec"]; exists {
		if str, ok := val.(string); ok && str == "" {
			return Config{}, ErrCodecEmpty
		}
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Codec != "" {
		base.Codec = overlay.Codec
	}

	if overlay.WindowSize != 0 {
		base.WindowSize = overlay.WindowSize
	}

	if overlay.Writeback != "" {
		base.Writeback = overlay.Writeback
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.History != "" {
		base.History = overlay.History
	}

	return base
}

func validate(cfg Config) error {
	if cfg.Codec == "" {
		return ErrCodecEmpty
	}

	if cfg.WindowSize < 0 {
		return fmt.Errorf("%w, got %d", ErrWindowSize, cfg.WindowSize)
	}

	if cfg.Writeback != vectorfile.WritebackNone.String() && cfg.Writeback != vectorfile.WritebackSync.String() {
		return fmt.Errorf("%w, got %q", ErrWriteback, cfg.Writeback)
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("%w, got %q", ErrLogLevel, s)
	}

	return level, nil
}
