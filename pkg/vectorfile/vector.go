package vectorfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/calvinalkan/vectorfile/pkg/fs"
)

// Vector is a growable sequence of T persisted in a single file as the
// back-to-back concatenation of the elements' encoded records.
//
// Elements are read through a window: a cached, decoded run of consecutive
// records. Changes made with [Vector.Set] live in the window until it is
// written back by [Vector.Flush], by moving the window, or by
// [Vector.Close].
//
// A Vector is not safe for concurrent use. Use it through the pointer
// returned by [Open] or [Create].
type Vector[T any] struct {
	file     fs.File
	path     string
	codec    Codec[T]
	writable bool
	opts     Options
	log      *slog.Logger
	metrics  MetricsCollector

	win window[T]

	count int   // logical element count
	phys  int64 // physical file length
	slack int64 // bytes at the end of the file that are no longer logical content

	stats  Stats
	closed bool
}

// Open opens an existing vector file and loads the window at element 0.
//
// The file is opened read-write when opts.Writable is set and read-only
// otherwise. Open fails with [ErrOpenFailure] when the file cannot be
// opened, and with [ErrCorrupt] when its contents do not parse as a
// sequence of complete records.
func Open[T any](path string, codec Codec[T], opts Options) (*Vector[T], error) {
	if path == "" {
		return nil, fmt.Errorf("path is required: %w", ErrInvalidInput)
	}

	if codec == nil {
		return nil, fmt.Errorf("codec is required: %w", ErrInvalidInput)
	}

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	flag := os.O_RDONLY
	if opts.Writable {
		flag = os.O_RDWR
	}

	file, err := opts.FS.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, ErrOpenFailure, err)
	}

	v := newVector(file, path, codec, opts, opts.Writable)

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("stat %s: %w: %w", path, ErrOpenFailure, err)
	}

	v.phys = info.Size()

	count, consumed, err := v.countInRange(0, v.phys)
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	if consumed != v.phys {
		_ = file.Close()

		return nil, fmt.Errorf("scan %s: %d trailing bytes do not form a record: %w", path, v.phys-consumed, ErrCorrupt)
	}

	v.count = count

	err = v.load(0, 0)
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	v.log.Debug("vector opened", "path", path, "elems", count, "bytes", v.phys, "writable", v.writable)

	return v, nil
}

// Create creates (or truncates) the file at path and fills it with zero
// values of T for as long as another whole record still fits in length
// bytes. The returned vector is writable regardless of opts.Writable.
//
// Create fails with [ErrInvalidInput] when length is negative, or when
// length is positive and the codec reports a non-positive size for the
// zero value.
func Create[T any](path string, codec Codec[T], length int64, opts Options) (*Vector[T], error) {
	if path == "" {
		return nil, fmt.Errorf("path is required: %w", ErrInvalidInput)
	}

	if codec == nil {
		return nil, fmt.Errorf("codec is required: %w", ErrInvalidInput)
	}

	if length < 0 {
		return nil, fmt.Errorf("length %d: %w", length, ErrInvalidInput)
	}

	opts.Writable = true

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	file, err := opts.FS.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w: %w", path, ErrOpenFailure, err)
	}

	v := newVector(file, path, codec, opts, true)

	err = v.grow(length)
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("fill %s: %w", path, err)
	}

	err = v.load(0, 0)
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	v.log.Debug("vector created", "path", path, "elems", v.count, "bytes", v.phys)

	return v, nil
}

func newVector[T any](file fs.File, path string, codec Codec[T], opts Options, writable bool) *Vector[T] {
	return &Vector[T]{
		file:     file,
		path:     path,
		codec:    codec,
		writable: writable,
		opts:     opts,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		win:      window[T]{width: opts.WindowSize},
	}
}

// Path returns the path the vector was opened with.
func (v *Vector[T]) Path() string { return v.path }

// Writable reports whether the vector accepts mutations.
func (v *Vector[T]) Writable() bool { return v.writable }

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.count }

// FileLen returns the logical file length in bytes: the physical length
// minus the trailing slack left behind by shrinking operations.
func (v *Vector[T]) FileLen() int64 { return v.fileLen() }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return v.count == 0 }

func (v *Vector[T]) fileLen() int64 { return v.phys - v.slack }

// Stats returns a snapshot of the window and rewrite counters.
func (v *Vector[T]) Stats() Stats {
	s := v.stats
	s.Slack = v.slack

	return s
}

// Get returns element index, moving the window there when needed.
//
// For reference types such as slices, the returned value shares memory
// with the window. Modify elements with [Vector.Set].
func (v *Vector[T]) Get(index int) (T, error) {
	var zero T

	err := v.checkIndex(index)
	if err != nil {
		return zero, err
	}

	err = v.position(index)
	if err != nil {
		return zero, err
	}

	return v.win.elems[index-v.win.first], nil
}

// Set replaces element index. The change is held in the window and
// reaches the file when the window is written back.
func (v *Vector[T]) Set(index int, value T) error {
	if v.closed {
		return ErrClosed
	}

	if !v.writable {
		return fmt.Errorf("set %d: %w", index, ErrWriteAccessDenied)
	}

	err := v.checkIndex(index)
	if err != nil {
		return err
	}

	err = v.position(index)
	if err != nil {
		return err
	}

	v.win.elems[index-v.win.first] = value
	v.win.dirty = true

	return nil
}

// PushBack appends value at the logical end, reusing slack before growing
// the physical file. The window picks the element up when it is the tail
// of the vector and the record fits inside it.
func (v *Vector[T]) PushBack(value T) error {
	if v.closed {
		return ErrClosed
	}

	if !v.writable {
		return fmt.Errorf("push: %w", ErrWriteAccessDenied)
	}

	return v.push(value)
}

func (v *Vector[T]) push(value T) error {
	rec, err := v.codec.Append(nil, value)
	if err != nil {
		return fmt.Errorf("encode element %d: %w", v.count, err)
	}

	size := int64(len(rec))
	off := v.fileLen()

	err = v.writeAt(rec, off)
	if err != nil {
		// A partial write may have raised phys; the torn bytes stay slack.
		v.slack = v.phys - off

		return fmt.Errorf("push element %d: %w", v.count, err)
	}

	v.slack = max(0, v.slack-size)

	if v.win.accepts(v.count, off, size) {
		v.win.elems = append(v.win.elems, value)
	}

	v.count++

	return nil
}

// PopBack removes the last element and returns it. The freed bytes become
// slack; the file is only truncated on [Vector.Close].
func (v *Vector[T]) PopBack() (T, error) {
	var zero T

	if v.closed {
		return zero, ErrClosed
	}

	if !v.writable {
		return zero, fmt.Errorf("pop: %w", ErrWriteAccessDenied)
	}

	if v.count == 0 {
		return zero, fmt.Errorf("pop from empty vector: %w", ErrIndexOutOfRange)
	}

	return v.pop(true)
}

// pop removes the last element. The value is only decoded when want is
// set and the element is not in the window.
func (v *Vector[T]) pop(want bool) (T, error) {
	var value T

	last := v.count - 1

	off, err := v.locate(last)
	if err != nil {
		return value, err
	}

	size, err := v.peekAt(off, v.fileLen())
	if err != nil {
		return value, err
	}

	switch {
	case v.win.contains(last):
		value = v.win.elems[len(v.win.elems)-1]

		var zero T

		v.win.elems[len(v.win.elems)-1] = zero
		v.win.elems = v.win.elems[:len(v.win.elems)-1]
	case want:
		value, err = v.decodeAt(off, size)
		if err != nil {
			return value, err
		}
	}

	v.slack += size
	v.count--

	if v.win.first >= v.count {
		// The window emptied or was already past the new end; park it there.
		v.win.elems = v.win.elems[:0]
		v.win.first = v.count
		v.win.start = off
		v.win.dirty = false
	}

	return value, nil
}

// Resize grows or shrinks the vector to the largest element count whose
// records fit in length bytes. Growing appends zero values of T; shrinking
// pops elements from the end. A modified window is written back first.
func (v *Vector[T]) Resize(length int64) error {
	if v.closed {
		return ErrClosed
	}

	if !v.writable {
		return fmt.Errorf("resize: %w", ErrWriteAccessDenied)
	}

	if length < 0 {
		return fmt.Errorf("resize to %d bytes: %w", length, ErrInvalidInput)
	}

	// Sizes are measured on disk, so pending changes must be there first.
	if v.win.dirty {
		err := v.rewrite()
		if err != nil {
			return err
		}
	}

	if length > v.fileLen() {
		return v.grow(length)
	}

	for v.fileLen() > length {
		_, err := v.pop(false)
		if err != nil {
			return fmt.Errorf("resize to %d bytes: %w", length, err)
		}
	}

	return nil
}

// grow appends zero values of T while another whole record still fits in
// length bytes.
func (v *Vector[T]) grow(length int64) error {
	if length <= v.fileLen() {
		return nil
	}

	var zero T

	size, err := v.codec.Size(zero)
	if err != nil {
		return fmt.Errorf("size of zero value: %w", err)
	}

	if size <= 0 {
		return fmt.Errorf("zero value encodes to %d bytes: %w", size, ErrInvalidInput)
	}

	for v.fileLen()+size <= length {
		err := v.push(zero)
		if err != nil {
			return fmt.Errorf("resize to %d bytes: %w", length, err)
		}
	}

	return nil
}

// Flush writes the window back to the file, shifting later records when
// its encoded length changed. With [WritebackSync] the file is synced
// afterwards.
func (v *Vector[T]) Flush() error {
	if v.closed {
		return ErrClosed
	}

	if !v.writable {
		return fmt.Errorf("flush: %w", ErrWriteAccessDenied)
	}

	err := v.rewrite()
	if err != nil {
		return err
	}

	if v.opts.Writeback == WritebackSync {
		err = datasync(v.file)
		if err != nil {
			return fmt.Errorf("sync %s: %w", v.path, err)
		}
	}

	return nil
}

// SeekWindow reloads the window so that it starts at element index,
// writing a dirty window back first.
func (v *Vector[T]) SeekWindow(index int) error {
	err := v.checkIndex(index)
	if err != nil {
		return err
	}

	return v.moveWindow(index)
}

// Close writes the window back, truncates the file to its logical length
// and closes it. A read-only vector is only closed.
//
// Every step runs even when an earlier one failed; failures are logged and
// returned joined. Calling Close again is a no-op.
func (v *Vector[T]) Close() error {
	if v.closed {
		return nil
	}

	v.closed = true

	var errs []error

	if v.writable {
		err := v.rewrite()
		if err != nil {
			v.log.Error("flush on close failed", "path", v.path, "error", err)
			errs = append(errs, fmt.Errorf("flush: %w", err))
		}

		logical := v.fileLen()
		if v.phys != logical {
			err = v.file.Truncate(logical)
			if err != nil {
				v.log.Error("truncate on close failed", "path", v.path, "size", logical, "error", err)
				errs = append(errs, fmt.Errorf("truncate %s to %d: %w", v.path, logical, err))
			} else {
				v.phys, v.slack = logical, 0
			}
		}

		if v.opts.Writeback == WritebackSync {
			err = datasync(v.file)
			if err != nil {
				v.log.Error("sync on close failed", "path", v.path, "error", err)
				errs = append(errs, fmt.Errorf("sync %s: %w", v.path, err))
			}
		}
	}

	err := v.file.Close()
	if err != nil {
		v.log.Error("close failed", "path", v.path, "error", err)
		errs = append(errs, fmt.Errorf("close %s: %w", v.path, err))
	}

	v.win.elems = nil

	return errors.Join(errs...)
}

func (v *Vector[T]) checkIndex(index int) error {
	if v.closed {
		return ErrClosed
	}

	if index < 0 || index >= v.count {
		return fmt.Errorf("index %d with %d elements: %w", index, v.count, ErrIndexOutOfRange)
	}

	return nil
}

// position makes sure element index is in the window.
func (v *Vector[T]) position(index int) error {
	hit := v.win.contains(index)
	v.metrics.RecordAccess(hit)

	if hit {
		v.stats.Hits++

		return nil
	}

	v.stats.Misses++

	return v.moveWindow(index)
}

// moveWindow writes a dirty window back and loads the window at index.
func (v *Vector[T]) moveWindow(index int) error {
	if v.writable && v.win.dirty {
		err := v.rewrite()
		if err != nil {
			return err
		}
	}

	off, err := v.locate(index)
	if err != nil {
		return err
	}

	return v.load(index, off)
}

func (v *Vector[T]) decodeAt(off, size int64) (T, error) {
	var zero T

	buf := make([]byte, size)

	err := v.readAt(buf, off)
	if err != nil {
		return zero, err
	}

	value, err := v.codec.Decode(buf)
	if err != nil {
		return zero, fmt.Errorf("decode record at %d: %w: %w", off, ErrCorrupt, err)
	}

	return value, nil
}
