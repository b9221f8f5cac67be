package vectorfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Codec converts between an in-memory value and its on-disk record.
//
// A vector file is a flat concatenation of records produced by a single
// codec; there is no header or framing outside what the codec writes. The
// engine never looks inside a record, it only asks the codec for sizes.
//
// Size consistency is required for correctness: for every value produced by
// Decode, Size must return exactly the number of bytes PeekSize reports for
// the record it was decoded from. Any drift corrupts the record boundaries
// of everything that follows when a window is written back.
//
// Implementations must be stateless and safe for concurrent use.
type Codec[T any] interface {
	// Append encodes v and appends the record to dst.
	Append(dst []byte, v T) ([]byte, error)

	// Decode decodes a record. src holds exactly the bytes PeekSize reported.
	Decode(src []byte) (T, error)

	// PeekSize reports the byte length of the record starting at off,
	// without decoding it.
	PeekSize(r io.ReaderAt, off int64) (int64, error)

	// Size reports the byte length v would occupy if encoded now.
	Size(v T) (int64, error)
}

// Fixed is the default codec for fixed-layout values: booleans, sized
// integers and floats, arrays of them, and structs made only of such fields.
//
// Each record is the [encoding/binary] representation of the value, so its
// size is constant and PeekSize never touches the file.
type Fixed[T any] struct {
	order binary.ByteOrder
	size  int64
}

// NewFixed returns a little-endian [Fixed] codec for T.
// Panics if T has no fixed binary size (e.g. int, string, slices, pointers).
func NewFixed[T any]() *Fixed[T] {
	return NewFixedOrder[T](binary.LittleEndian)
}

// NewFixedOrder returns a [Fixed] codec for T using the given byte order.
// Panics if T has no fixed binary size or order is nil.
func NewFixedOrder[T any](order binary.ByteOrder) *Fixed[T] {
	if order == nil {
		panic("order is nil")
	}

	var zero T

	size := binary.Size(zero)
	if size <= 0 {
		panic(fmt.Sprintf("vectorfile: type %T has no fixed binary size", zero))
	}

	return &Fixed[T]{order: order, size: int64(size)}
}

// Append implements [Codec].
func (c *Fixed[T]) Append(dst []byte, v T) ([]byte, error) {
	return binary.Append(dst, c.order, v)
}

// Decode implements [Codec].
func (c *Fixed[T]) Decode(src []byte) (T, error) {
	var v T

	if int64(len(src)) != c.size {
		return v, fmt.Errorf("fixed record is %d bytes, want %d", len(src), c.size)
	}

	_, err := binary.Decode(src, c.order, &v)

	return v, err
}

// PeekSize implements [Codec]. It always returns the constant record size.
func (c *Fixed[T]) PeekSize(io.ReaderAt, int64) (int64, error) {
	return c.size, nil
}

// Size implements [Codec]. It always returns the constant record size.
func (c *Fixed[T]) Size(T) (int64, error) {
	return c.size, nil
}

// sliceHeaderSize is the width of the element count that prefixes every
// [Slice] record.
const sliceHeaderSize = 8

// Slice encodes a slice of fixed-layout elements as a little-endian uint64
// element count followed by the elements.
//
// A []int32 with 1, 3 and 5 elements occupies 12, 20 and 28 bytes.
// Empty and nil slices both encode to a bare header and decode to nil.
type Slice[E any] struct {
	elem int64
}

// NewSlice returns a [Slice] codec for elements of type E.
// Panics if E has no fixed binary size.
func NewSlice[E any]() *Slice[E] {
	var zero E

	size := binary.Size(zero)
	if size <= 0 {
		panic(fmt.Sprintf("vectorfile: type %T has no fixed binary size", zero))
	}

	return &Slice[E]{elem: int64(size)}
}

// Append implements [Codec].
func (c *Slice[E]) Append(dst []byte, v []E) ([]byte, error) {
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(v)))
	if len(v) == 0 {
		return dst, nil
	}

	return binary.Append(dst, binary.LittleEndian, v)
}

// Decode implements [Codec].
func (c *Slice[E]) Decode(src []byte) ([]E, error) {
	if len(src) < sliceHeaderSize {
		return nil, fmt.Errorf("slice record is %d bytes, shorter than its header", len(src))
	}

	count := binary.LittleEndian.Uint64(src)

	want, err := c.recordSize(count)
	if err != nil {
		return nil, err
	}

	if int64(len(src)) != want {
		return nil, fmt.Errorf("slice record is %d bytes, header says %d", len(src), want)
	}

	if count == 0 {
		return nil, nil
	}

	out := make([]E, count)

	_, err = binary.Decode(src[sliceHeaderSize:], binary.LittleEndian, out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// PeekSize implements [Codec] by reading the element count at off.
func (c *Slice[E]) PeekSize(r io.ReaderAt, off int64) (int64, error) {
	var hdr [sliceHeaderSize]byte

	n, err := r.ReadAt(hdr[:], off)
	if n < sliceHeaderSize {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return 0, fmt.Errorf("read slice header at %d: %w", off, err)
	}

	return c.recordSize(binary.LittleEndian.Uint64(hdr[:]))
}

// Size implements [Codec].
func (c *Slice[E]) Size(v []E) (int64, error) {
	return c.recordSize(uint64(len(v)))
}

func (c *Slice[E]) recordSize(count uint64) (int64, error) {
	if count > uint64((math.MaxInt64-sliceHeaderSize)/c.elem) {
		return 0, fmt.Errorf("slice element count %d overflows record size", count)
	}

	return sliceHeaderSize + int64(count)*c.elem, nil
}

// Bytes encodes byte strings as a uvarint length followed by the raw bytes.
type Bytes struct{}

// Append implements [Codec].
func (Bytes) Append(dst []byte, v []byte) ([]byte, error) {
	dst = binary.AppendUvarint(dst, uint64(len(v)))

	return append(dst, v...), nil
}

// Decode implements [Codec].
func (Bytes) Decode(src []byte) ([]byte, error) {
	length, n := binary.Uvarint(src)
	if n <= 0 {
		return nil, fmt.Errorf("bad length prefix")
	}

	if uint64(len(src)-n) != length {
		return nil, fmt.Errorf("bytes record is %d bytes, prefix says %d", len(src)-n, length)
	}

	out := make([]byte, length)
	copy(out, src[n:])

	return out, nil
}

// PeekSize implements [Codec] by reading the length prefix at off.
func (Bytes) PeekSize(r io.ReaderAt, off int64) (int64, error) {
	var buf [binary.MaxVarintLen64]byte

	n, err := r.ReadAt(buf[:], off)
	if n == 0 {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return 0, fmt.Errorf("read length prefix at %d: %w", off, err)
	}

	length, k := binary.Uvarint(buf[:n])
	if k <= 0 || length > math.MaxInt64-uint64(k) {
		return 0, fmt.Errorf("bad length prefix at %d", off)
	}

	return int64(k) + int64(length), nil
}

// Size implements [Codec].
func (Bytes) Size(v []byte) (int64, error) {
	return int64(uvarintLen(uint64(len(v))) + len(v)), nil
}

func uvarintLen(x uint64) int {
	n := 1
	for x >= 0x80 {
		x >>= 7
		n++
	}

	return n
}

// Compile-time interface checks.
var (
	_ Codec[uint8]   = (*Fixed[uint8])(nil)
	_ Codec[[]int32] = (*Slice[int32])(nil)
	_ Codec[[]byte]  = Bytes{}
)
