package vectorfile

import (
	"fmt"
	"io"
)

// Position scanning walks records one at a time using the codec's PeekSize,
// because record sizes are not assumed to be uniform. Every scan is O(n) in
// the number of records it crosses.

// peek returns the size of the record at off as reported by the codec.
func (v *Vector[T]) peek(off int64) (int64, error) {
	size, err := v.codec.PeekSize(v.file, off)
	if err != nil {
		return 0, fmt.Errorf("peek record at %d: %w: %w", off, ErrCorrupt, err)
	}

	if size <= 0 {
		return 0, fmt.Errorf("record at %d reports size %d: %w", off, size, ErrCorrupt)
	}

	return size, nil
}

// peekAt returns the size of the record at off, failing with
// [ErrIndexOutOfRange] when the record would cross end.
func (v *Vector[T]) peekAt(off, end int64) (int64, error) {
	if off >= end {
		return 0, fmt.Errorf("offset %d at or beyond logical end %d: %w", off, end, ErrIndexOutOfRange)
	}

	size, err := v.peek(off)
	if err != nil {
		return 0, err
	}

	if size > end-off {
		return 0, fmt.Errorf("record at %d (%d bytes) crosses logical end %d: %w", off, size, end, ErrIndexOutOfRange)
	}

	return size, nil
}

// locate returns the byte offset of element index.
//
// The scan starts at the window when the window begins at or before index,
// since the window start is a known record boundary; otherwise it starts
// at offset 0.
func (v *Vector[T]) locate(index int) (int64, error) {
	if index < 0 || index > v.count {
		return 0, fmt.Errorf("index %d with %d elements: %w", index, v.count, ErrIndexOutOfRange)
	}

	var (
		off int64
		at  int
	)

	if v.win.first <= index && v.win.start <= v.fileLen() {
		off, at = v.win.start, v.win.first
	}

	end := v.fileLen()
	for at < index {
		size, err := v.peekAt(off, end)
		if err != nil {
			return 0, err
		}

		off += size
		at++
	}

	return off, nil
}

// countInRange counts the records that fit completely inside
// [start, start+width), stopping at the first record that would overflow
// the range or at the logical end. It returns the count and the bytes
// those records occupy.
func (v *Vector[T]) countInRange(start, width int64) (int, int64, error) {
	limit := min(start+width, v.fileLen())

	count := 0
	off := start

	for off < limit {
		size, err := v.peek(off)
		if err != nil {
			return 0, 0, err
		}

		if size > limit-off {
			break
		}

		off += size
		count++
	}

	return count, off - start, nil
}

// span returns the on-disk byte length of n consecutive records starting
// at off.
func (v *Vector[T]) span(off int64, n int) (int64, error) {
	end := v.fileLen()
	pos := off

	for range n {
		size, err := v.peekAt(pos, end)
		if err != nil {
			return 0, err
		}

		pos += size
	}

	return pos - off, nil
}

// readRun reads whole records starting at off until at least atLeast bytes
// were read or end is reached. It returns nil at end.
func (v *Vector[T]) readRun(off, atLeast, end int64) ([]byte, error) {
	var n int64

	for off+n < end && n < atLeast {
		size, err := v.peekAt(off+n, end)
		if err != nil {
			return nil, err
		}

		n += size
	}

	if n == 0 {
		return nil, nil
	}

	buf := make([]byte, n)

	err := v.readAt(buf, off)
	if err != nil {
		return nil, err
	}

	return buf, nil
}

// readAt fills buf from off.
func (v *Vector[T]) readAt(buf []byte, off int64) error {
	if len(buf) == 0 {
		return nil
	}

	n, err := v.file.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}

	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}

	return fmt.Errorf("read %d bytes at %d: %w", len(buf), off, err)
}

// writeAt writes buf at off and tracks the physical file length.
func (v *Vector[T]) writeAt(buf []byte, off int64) error {
	if len(buf) == 0 {
		return nil
	}

	n, err := v.file.WriteAt(buf, off)
	if off+int64(n) > v.phys {
		v.phys = off + int64(n)
	}

	if err != nil {
		return fmt.Errorf("write %d bytes at %d: %w", len(buf), off, err)
	}

	return nil
}
