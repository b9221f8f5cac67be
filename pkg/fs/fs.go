// Package fs provides filesystem abstractions for testing and fault injection.
//
// The main types are:
//   - [FS]: interface for filesystem operations
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using [os] package
//   - [Chaos]: testing implementation that injects random failures
//
// Example usage:
//
//	fsys := fs.NewReal()
//	f, err := fsys.OpenFile("data.vec", os.O_RDWR, 0)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	// Positional I/O never moves the shared file offset:
//	_, err = f.WriteAt(record, 128)
package fs

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// This interface is satisfied by [os.File] and can be used with all
// standard library functions that accept [io.Reader], [io.Writer],
// [io.ReaderAt], [io.WriterAt], [io.Seeker], or [io.Closer].
//
// Positional I/O ([io.ReaderAt], [io.WriterAt]) is the primary access path
// for record storage: it does not depend on or disturb the file offset, so
// independent cursors over the same handle never need to save and restore
// a seek position.
//
// Note: [File] includes [io.Writer] even for read-only handles. Like [os.File],
// implementations should return an error from Write/WriteAt/Truncate when the
// file wasn't opened for writing.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.WriterAt
	io.Seeker

	// Fd returns the file descriptor. See [os.File.Fd].
	// Used for low-level operations like fsync via golang.org/x/sys/unix.
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error

	// Truncate changes the size of the file. See [os.File.Truncate].
	// Growing the file pads it with zero bytes.
	Truncate(size int64) error

	// Name returns the name of the file as presented to Open. See [os.File.Name].
	Name() string
}

// FS defines filesystem operations used by vector files and the vecty CLI.
//
// Implementations in this package include:
//   - [Real]: production use, wraps [os] package
//   - [Chaos]: testing use, injects random failures
//
// All methods mirror their [os] package equivalents but can be intercepted
// for testing with fault injection.
//
// Paths use OS semantics (like the os package and path/filepath), not the slash-separated
// paths used by the standard library io/fs package.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	//
	// Common flags: [os.O_RDONLY], [os.O_RDWR], [os.O_CREATE], [os.O_TRUNC].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// Stat returns file info. See [os.Stat].
	// Returns [os.ErrNotExist] if file doesn't exist.
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
