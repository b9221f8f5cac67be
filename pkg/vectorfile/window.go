package vectorfile

import "fmt"

// window caches the decoded elements of one contiguous run of records.
//
// Invariants:
//   - start is a record boundary: the on-disk offset of element first.
//   - Until the next rewrite, the bytes on disk from start still hold the
//     records the elements were loaded from (or appended as), one per
//     element. Set only changes elems and marks the window dirty.
//   - An empty window sits at the logical end: first == Len() and
//     start == FileLen().
type window[T any] struct {
	start int64
	width int64
	first int
	elems []T
	dirty bool
}

// contains reports whether element index is cached.
func (w *window[T]) contains(index int) bool {
	return index >= w.first && index < w.first+len(w.elems)
}

// end returns the index one past the last cached element.
func (w *window[T]) end() int {
	return w.first + len(w.elems)
}

// accepts reports whether a record for element index, written at off with
// the given size, extends the window without a reload.
func (w *window[T]) accepts(index int, off, size int64) bool {
	if index != w.end() {
		return false
	}

	if len(w.elems) == 0 {
		return off == w.start
	}

	return off >= w.start && off+size <= w.start+w.width
}

// load replaces the window with the records starting at element index,
// whose record begins at byte offset start. Records are taken while they
// fit completely inside [start, start+width); the first record is always
// taken so the window holds the element it was positioned at.
func (v *Vector[T]) load(index int, start int64) error {
	end := v.fileLen()
	limit := start + v.win.width

	var sizes []int64

	off := start
	for at := index; at < v.count && off < end; at++ {
		size, err := v.peekAt(off, end)
		if err != nil {
			return err
		}

		if len(sizes) > 0 && off+size > limit {
			break
		}

		sizes = append(sizes, size)
		off += size
	}

	buf := make([]byte, off-start)

	err := v.readAt(buf, start)
	if err != nil {
		return err
	}

	elems := make([]T, 0, len(sizes))

	var pos int64

	for i, size := range sizes {
		elem, err := v.codec.Decode(buf[pos : pos+size])
		if err != nil {
			return fmt.Errorf("decode element %d at %d: %w: %w", index+i, start+pos, ErrCorrupt, err)
		}

		elems = append(elems, elem)
		pos += size
	}

	v.win = window[T]{
		start: start,
		width: v.win.width,
		first: index,
		elems: elems,
	}

	v.stats.Loads++
	v.metrics.RecordWindowLoad(len(elems), off-start)
	v.log.Debug("window loaded",
		"path", v.path, "index", index, "offset", start, "elems", len(elems), "bytes", off-start)

	return nil
}
