package fs

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
//
// The zero value disables all fault injection. Partially initialized configs
// only inject faults for the specified rates; unset fields default to 0.0.
//
// Fault injection is enabled by default ([ChaosModeActive]). Use
// [Chaos.SetMode] with [ChaosModeNoOp] to disable injection and pass
// all operations through to the underlying filesystem.
type ChaosConfig struct {
	// ReadFailRate controls how often FS.ReadFile, File.Read and File.ReadAt
	// fail entirely, returning zero bytes and EIO.
	ReadFailRate float64

	// WriteFailRate controls how often File.Write and File.WriteAt fail
	// entirely, writing zero bytes and returning an error (EIO, ENOSPC,
	// EDQUOT, or EROFS).
	WriteFailRate float64

	// PartialWriteRate controls how often File.WriteAt writes only a prefix
	// of the data before failing. Returns n > 0 bytes written along with an
	// errno-style error.
	PartialWriteRate float64

	// TruncateFailRate controls how often File.Truncate fails, returning EIO,
	// ENOSPC, or EROFS. The file size is left unchanged.
	TruncateFailRate float64

	// SyncFailRate controls how often File.Sync (fsync) fails. Returns EIO,
	// ENOSPC, EDQUOT, or EROFS.
	SyncFailRate float64

	// CloseFailRate controls how often File.Close reports an error. The
	// underlying file descriptor is always closed (to avoid leaks) even when
	// an error is returned. Returns EIO.
	CloseFailRate float64

	// OpenFailRate controls how often FS.Open and FS.OpenFile fail to open a
	// file. For read-only opens: EACCES, EIO, EMFILE, ENFILE, ENOTDIR.
	// For write opens: adds ENOSPC, EDQUOT, EROFS.
	OpenFailRate float64

	// StatFailRate controls how often FS.Stat, FS.Exists and File.Stat fail.
	// Returns EACCES or EIO.
	StatFailRate float64
}

// ChaosMode controls how [Chaos] behaves.
type ChaosMode uint8

const (
	// ChaosModeActive enables fault-rate injection.
	// This is the default mode for a new [Chaos].
	ChaosModeActive ChaosMode = iota

	// ChaosModeNoOp passes every operation directly to the underlying FS.
	ChaosModeNoOp
)

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	OpenFails     int64
	ReadFails     int64
	WriteFails    int64
	PartialWrites int64
	TruncateFails int64
	SyncFails     int64
	CloseFails    int64
	StatFails     int64
}

// chaosError marks an error as intentionally injected by [Chaos].
//
// It wraps the underlying error so errors.Is/As continue to work.
type chaosError struct {
	Err error
}

// Error returns a formatted error message.
func (e *chaosError) Error() string {
	return "chaos: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *chaosError) Unwrap() error {
	return e.Err
}

// IsChaosErr reports whether err (or any wrapped error) was injected by [Chaos].
// Returns false if err is nil.
func IsChaosErr(err error) bool {
	var injected *chaosError

	return errors.As(err, &injected)
}

// Chaos wraps an [FS] and injects random failures for testing.
//
// It is a "real filesystem + fault injection" wrapper, not a full filesystem
// simulator. Chaos does not maintain per-path "sticky" fault state; each call
// independently decides whether to inject.
//
// Error model:
//   - Injected errors are [*fs.PathError] values with a real [syscall.Errno]
//     in PathError.Err, so [errors.Is] and helpers like [os.IsPermission]
//     behave like real OS errors.
//   - Injected errors are marked so tests can distinguish injected vs real
//     filesystem errors using [IsChaosErr].
//   - Chaos never injects ENOENT; any os.IsNotExist result originates from
//     the wrapped [FS].
//
// Return-shape constraints:
//   - File.ReadAt injected failures return n==0 with a non-nil error.
//   - File.WriteAt may return n>0 with a non-nil error (partial progress).
//   - File.Close injected failures still close the underlying file to avoid
//     descriptor leaks in tests.
type Chaos struct {
	fs     FS
	rng    *rand.Rand
	config ChaosConfig
	mode   atomic.Uint32

	rngMu sync.Mutex

	openFails     atomic.Int64
	readFails     atomic.Int64
	writeFails    atomic.Int64
	partialWrites atomic.Int64
	truncateFails atomic.Int64
	syncFails     atomic.Int64
	closeFails    atomic.Int64
	statFails     atomic.Int64
}

// NewChaos creates a new [Chaos] filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
// A nil config injects nothing. Panics if underlying is nil.
func NewChaos(underlying FS, seed int64, config *ChaosConfig) *Chaos {
	if underlying == nil {
		panic("underlying fs is nil")
	}

	var cfg ChaosConfig
	if config != nil {
		cfg = *config
	}

	return &Chaos{
		fs:     underlying,
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		config: cfg,
	}
}

// SetMode updates [Chaos] behavior.
//
// SetMode is safe to call concurrently with filesystem operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		OpenFails:     c.openFails.Load(),
		ReadFails:     c.readFails.Load(),
		WriteFails:    c.writeFails.Load(),
		PartialWrites: c.partialWrites.Load(),
		TruncateFails: c.truncateFails.Load(),
		SyncFails:     c.syncFails.Load(),
		CloseFails:    c.closeFails.Load(),
		StatFails:     c.statFails.Load(),
	}
}

// TotalFaults returns the total number of injected faults.
func (c *Chaos) TotalFaults() int64 {
	s := c.Stats()

	return s.OpenFails + s.ReadFails + s.WriteFails + s.PartialWrites +
		s.TruncateFails + s.SyncFails + s.CloseFails + s.StatFails
}

// Open opens a file for reading with fault injection.
func (c *Chaos) Open(path string) (File, error) {
	return c.openWithChaos(path, errnosOpenRead, func() (File, error) {
		return c.fs.Open(path)
	})
}

// OpenFile opens a file with the specified flags and permissions with fault injection.
func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	errnos := errnosOpenRead
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		errnos = errnosOpenWrite
	}

	return c.openWithChaos(path, errnos, func() (File, error) {
		return c.fs.OpenFile(path, flag, perm)
	})
}

// ReadFile reads a file's contents with fault injection.
func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.should(c.config.ReadFailRate) {
		c.readFails.Add(1)

		return nil, pathError("read", path, syscall.EIO)
	}

	return c.fs.ReadFile(path)
}

// Stat returns file info with fault injection.
func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if c.should(c.config.StatFailRate) {
		c.statFails.Add(1)

		return nil, pathError("stat", path, c.pick([]syscall.Errno{syscall.EACCES, syscall.EIO}))
	}

	return c.fs.Stat(path)
}

// Exists checks if a file exists with fault injection.
func (c *Chaos) Exists(path string) (bool, error) {
	if c.should(c.config.StatFailRate) {
		c.statFails.Add(1)

		return false, pathError("stat", path, c.pick([]syscall.Errno{syscall.EACCES, syscall.EIO}))
	}

	return c.fs.Exists(path)
}


var (
	errnosOpenRead  = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.EMFILE, syscall.ENFILE, syscall.ENOTDIR}
	errnosOpenWrite = []syscall.Errno{
		syscall.EACCES, syscall.EIO, syscall.ENOSPC, syscall.EDQUOT,
		syscall.EROFS, syscall.EMFILE, syscall.ENFILE, syscall.ENOTDIR,
	}
	errnosWrite = []syscall.Errno{syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS}
)

func (c *Chaos) openWithChaos(path string, errnos []syscall.Errno, openFn func() (File, error)) (File, error) {
	if c.should(c.config.OpenFailRate) {
		c.openFails.Add(1)

		return nil, pathError("open", path, c.pick(errnos))
	}

	file, err := openFn()
	if err != nil {
		return nil, err
	}

	return &chaosFile{f: file, chaos: c, path: path}, nil
}

// should returns true with the given probability when chaos is injecting.
func (c *Chaos) should(rate float64) bool {
	if ChaosMode(c.mode.Load()) != ChaosModeActive || rate <= 0 {
		return false
	}

	c.rngMu.Lock()
	result := c.rng.Float64()
	c.rngMu.Unlock()

	return result < rate
}

func (c *Chaos) pick(errs []syscall.Errno) syscall.Errno {
	c.rngMu.Lock()
	i := c.rng.IntN(len(errs))
	c.rngMu.Unlock()

	return errs[i]
}

func (c *Chaos) randIntn(n int) int {
	c.rngMu.Lock()
	result := c.rng.IntN(n)
	c.rngMu.Unlock()

	return result
}

// pathError creates an injected [*fs.PathError] with the given operation, path, and errno.
// The error is wrapped in [chaosError] so [IsChaosErr] can identify it, while
// [errors.As] and helpers like [os.IsPermission] still work via unwrapping.
func pathError(op, path string, errno syscall.Errno) error {
	pe := &fs.PathError{Op: op, Path: path, Err: errno}

	return &chaosError{Err: pe}
}

// chaosFile wraps a [File] and injects faults on I/O.
type chaosFile struct {
	f     File
	chaos *Chaos
	path  string
}

// Interface compliance.
var _ File = (*chaosFile)(nil)

func (cf *chaosFile) Read(buf []byte) (int, error) {
	if cf.chaos.should(cf.chaos.config.ReadFailRate) {
		cf.chaos.readFails.Add(1)

		return 0, pathError("read", cf.path, syscall.EIO)
	}

	return cf.f.Read(buf)
}

func (cf *chaosFile) ReadAt(buf []byte, off int64) (int, error) {
	if cf.chaos.should(cf.chaos.config.ReadFailRate) {
		cf.chaos.readFails.Add(1)

		return 0, pathError("read", cf.path, syscall.EIO)
	}

	return cf.f.ReadAt(buf, off)
}

func (cf *chaosFile) Write(data []byte) (int, error) {
	if cf.chaos.should(cf.chaos.config.WriteFailRate) {
		cf.chaos.writeFails.Add(1)

		return 0, pathError("write", cf.path, cf.chaos.pick(errnosWrite))
	}

	return cf.f.Write(data)
}

func (cf *chaosFile) WriteAt(data []byte, off int64) (int, error) {
	if cf.chaos.should(cf.chaos.config.WriteFailRate) {
		cf.chaos.writeFails.Add(1)

		return 0, pathError("write", cf.path, cf.chaos.pick(errnosWrite))
	}

	if cf.chaos.should(cf.chaos.config.PartialWriteRate) && len(data) > 1 {
		cf.chaos.partialWrites.Add(1)
		cutoff := cf.chaos.randIntn(len(data)-1) + 1

		n, err := cf.f.WriteAt(data[:cutoff], off)
		if err != nil {
			return n, err
		}

		return n, pathError("write", cf.path, cf.chaos.pick(errnosWrite))
	}

	return cf.f.WriteAt(data, off)
}

func (cf *chaosFile) Truncate(size int64) error {
	if cf.chaos.should(cf.chaos.config.TruncateFailRate) {
		cf.chaos.truncateFails.Add(1)

		return pathError("truncate", cf.path, cf.chaos.pick([]syscall.Errno{syscall.EIO, syscall.ENOSPC, syscall.EROFS}))
	}

	return cf.f.Truncate(size)
}

func (cf *chaosFile) Sync() error {
	if cf.chaos.should(cf.chaos.config.SyncFailRate) {
		cf.chaos.syncFails.Add(1)

		return pathError("sync", cf.path, cf.chaos.pick(errnosWrite))
	}

	return cf.f.Sync()
}

func (cf *chaosFile) Close() error {
	err := cf.f.Close()
	if err != nil {
		return err
	}

	if cf.chaos.should(cf.chaos.config.CloseFailRate) {
		cf.chaos.closeFails.Add(1)

		return pathError("close", cf.path, syscall.EIO)
	}

	return nil
}

func (cf *chaosFile) Stat() (os.FileInfo, error) {
	if cf.chaos.should(cf.chaos.config.StatFailRate) {
		cf.chaos.statFails.Add(1)

		return nil, pathError("stat", cf.path, syscall.EIO)
	}

	return cf.f.Stat()
}

func (cf *chaosFile) Seek(offset int64, whence int) (int64, error) {
	return cf.f.Seek(offset, whence)
}

func (cf *chaosFile) Fd() uintptr {
	return cf.f.Fd()
}

func (cf *chaosFile) Name() string {
	return cf.f.Name()
}

// Compile-time interface check.
var _ FS = (*Chaos)(nil)
