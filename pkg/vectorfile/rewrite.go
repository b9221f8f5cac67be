package vectorfile

import (
	"fmt"
	"time"
)

// compactRun is the minimum run size copied per step when the file tail
// is compacted after a constricting rewrite.
const compactRun = 64 << 10

// rewrite re-encodes the window and writes it back over the span its
// elements occupy on disk. When the encoded length differs from the old
// span, every record after the window is moved so the file stays a
// gap-free sequence of records.
//
// Encoding happens before any byte is written, so an encode error leaves
// the file untouched.
func (v *Vector[T]) rewrite() error {
	began := time.Now()
	w := &v.win

	oldLen, err := v.span(w.start, len(w.elems))
	if err != nil {
		return fmt.Errorf("measure window at %d: %w", w.start, err)
	}

	buf := make([]byte, 0, oldLen)
	for i, elem := range w.elems {
		buf, err = v.codec.Append(buf, elem)
		if err != nil {
			return fmt.Errorf("encode element %d: %w", w.first+i, err)
		}
	}

	newLen := int64(len(buf))

	var (
		kind  RewriteKind
		shift int64
	)

	switch {
	case newLen == oldLen:
		kind = RewriteInPlace
		err = v.writeAt(buf, w.start)
	case newLen > oldLen:
		kind, shift = RewriteExtend, newLen-oldLen
		err = v.extend(buf, oldLen, shift)
	default:
		kind, shift = RewriteConstrict, oldLen-newLen
		err = v.constrict(buf, oldLen, shift)
	}

	v.metrics.RecordRewrite(kind, shift, time.Since(began), err)

	if err != nil {
		v.log.Error("window rewrite failed",
			"path", v.path, "kind", kind.String(), "offset", w.start, "shift", shift, "error", err)

		return fmt.Errorf("rewrite window at %d (%s): %w", w.start, kind, err)
	}

	v.stats.Rewrites++

	if kind == RewriteExtend {
		v.stats.Extensions++
	} else if kind == RewriteConstrict {
		v.stats.Constrictions++
	}

	w.dirty = false

	v.log.Debug("window rewritten",
		"path", v.path, "kind", kind.String(), "offset", w.start, "elems", len(w.elems), "shift", shift)

	return nil
}

// extend writes buf over a window span of oldLen bytes that grew by shift.
// The records after the span move forward by shift bytes.
//
// Old records are always read before the bytes they occupy are overwritten:
// pending holds the records whose destination starts at writePos, and the
// next run is read before pending is written. Each run is at least shift
// bytes long, so the write of pending never reaches past the data already
// read into next.
func (v *Vector[T]) extend(buf []byte, oldLen, shift int64) error {
	end := v.fileLen()
	start := v.win.start

	readPos := start + oldLen

	pending, err := v.readRun(readPos, shift, end)
	if err != nil {
		return err
	}

	readPos += int64(len(pending))

	err = v.writeAt(buf, start)
	if err != nil {
		return err
	}

	writePos := start + int64(len(buf))

	for len(pending) > 0 {
		next, err := v.readRun(readPos, shift, end)
		if err != nil {
			return err
		}

		readPos += int64(len(next))

		err = v.writeAt(pending, writePos)
		if err != nil {
			return err
		}

		writePos += int64(len(pending))
		pending = next
	}

	v.slack = max(0, v.slack-shift)

	return nil
}

// constrict writes buf over a window span of oldLen bytes that shrank by
// shift. The records after the span move backward by shift bytes and the
// freed tail becomes slack.
func (v *Vector[T]) constrict(buf []byte, oldLen, shift int64) error {
	end := v.fileLen()
	start := v.win.start

	err := v.writeAt(buf, start)
	if err != nil {
		return err
	}

	readPos := start + oldLen
	writePos := start + int64(len(buf))

	for readPos < end {
		run, err := v.readRun(readPos, compactRun, end)
		if err != nil {
			return err
		}

		err = v.writeAt(run, writePos)
		if err != nil {
			return err
		}

		readPos += int64(len(run))
		writePos += int64(len(run))
	}

	v.slack += shift

	return nil
}
