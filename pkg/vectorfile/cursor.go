package vectorfile

import (
	"fmt"
	"iter"
)

// Cursor is a forward position in a vector's file, held as a byte offset
// on a record boundary.
//
// Cursors read the file directly and never consult the window, so values
// changed with [Vector.Set] are only visible after the window was written
// back (see [Vector.Flush]). A cursor is invalidated by any operation that
// moves records: a rewrite that changed the window's encoded length,
// PopBack, Resize or Close.
type Cursor[T any] struct {
	v   *Vector[T]
	pos int64
}

// Begin returns a cursor at the first record.
func (v *Vector[T]) Begin() Cursor[T] {
	return Cursor[T]{v: v}
}

// End returns the past-the-end cursor, positioned at [Vector.FileLen].
func (v *Vector[T]) End() Cursor[T] {
	return Cursor[T]{v: v, pos: v.fileLen()}
}

// Pos returns the cursor's byte offset.
func (c Cursor[T]) Pos() int64 { return c.pos }

// Equal reports whether both cursors are at the same byte offset.
func (c Cursor[T]) Equal(other Cursor[T]) bool { return c.pos == other.pos }

// Value decodes the record at the cursor.
func (c Cursor[T]) Value() (T, error) {
	value, _, err := c.read()

	return value, err
}

// Next returns a cursor advanced past the record at c.
func (c Cursor[T]) Next() (Cursor[T], error) {
	if c.v.closed {
		return c, ErrClosed
	}

	size, err := c.v.peekAt(c.pos, c.v.fileLen())
	if err != nil {
		return c, fmt.Errorf("advance cursor at %d: %w", c.pos, err)
	}

	return Cursor[T]{v: c.v, pos: c.pos + size}, nil
}

func (c Cursor[T]) read() (T, int64, error) {
	var zero T

	if c.v.closed {
		return zero, 0, ErrClosed
	}

	size, err := c.v.peekAt(c.pos, c.v.fileLen())
	if err != nil {
		return zero, 0, fmt.Errorf("read cursor at %d: %w", c.pos, err)
	}

	value, err := c.v.decodeAt(c.pos, size)
	if err != nil {
		return zero, 0, err
	}

	return value, size, nil
}

// All returns an iterator over the records from [Vector.Begin] to
// [Vector.End] as they are on disk. Iteration stops after the first error,
// which is yielded with the zero value.
//
// The vector must not be mutated during iteration.
func (v *Vector[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		end := v.fileLen()

		for pos := int64(0); pos < end; {
			value, size, err := Cursor[T]{v: v, pos: pos}.read()
			if err != nil {
				var zero T

				yield(zero, err)

				return
			}

			if !yield(value, nil) {
				return
			}

			pos += size
		}
	}
}
