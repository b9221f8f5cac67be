package vectorfile

import (
	"fmt"
	"log/slog"

	"github.com/calvinalkan/vectorfile/pkg/fs"
)

// DefaultWindowSize is the window width used when [Options.WindowSize] is zero.
const DefaultWindowSize = 1024

// WritebackMode controls durability guarantees for [Vector.Flush] and [Vector.Close].
type WritebackMode int

const (
	// WritebackNone provides no durability guarantees.
	//
	// Written records are handed to the OS and may be lost on power failure.
	// This is the default and fastest mode.
	WritebackNone WritebackMode = iota

	// WritebackSync fsyncs the file after every Flush and before Close
	// returns.
	WritebackSync
)

// String returns the config spelling of the mode ("none" or "sync").
func (m WritebackMode) String() string {
	switch m {
	case WritebackNone:
		return "none"
	case WritebackSync:
		return "sync"
	default:
		return fmt.Sprintf("WritebackMode(%d)", int(m))
	}
}

// Options configures opening or creating a vector file.
type Options struct {
	// Writable opens the file for reading and writing.
	//
	// Ignored by [Create], which always opens read-write. Without it, every
	// mutating operation returns [ErrWriteAccessDenied].
	Writable bool

	// WindowSize is the width in bytes of the cached window of decoded
	// elements.
	//
	// Affects performance only, never observable behavior. A window always
	// holds at least the element it was positioned at, even when that
	// element is wider than WindowSize. Zero means [DefaultWindowSize].
	WindowSize int64

	// Writeback controls durability guarantees for Flush and Close.
	//
	// Default is [WritebackNone].
	Writeback WritebackMode

	// FS is the filesystem used to open the backing file.
	//
	// Default is [fs.NewReal]. Tests substitute [fs.Chaos].
	FS fs.FS

	// Logger receives debug events (window loads, rewrites) and the errors
	// Close swallows while releasing the file.
	//
	// Default discards everything.
	Logger *slog.Logger

	// Metrics receives access, window load and rewrite events.
	//
	// Default is [NoopMetrics].
	Metrics MetricsCollector
}

func (o Options) withDefaults() (Options, error) {
	if o.WindowSize < 0 {
		return o, fmt.Errorf("window_size must be >= 0, got %d: %w", o.WindowSize, ErrInvalidInput)
	}

	if o.WindowSize == 0 {
		o.WindowSize = DefaultWindowSize
	}

	switch o.Writeback {
	case WritebackNone, WritebackSync:
		// ok
	default:
		return o, fmt.Errorf("unknown writeback mode %d: %w", o.Writeback, ErrInvalidInput)
	}

	if o.FS == nil {
		o.FS = fs.NewReal()
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}

	return o, nil
}
