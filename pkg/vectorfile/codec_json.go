package vectorfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	gojson "github.com/goccy/go-json"
)

// jsonHeaderSize is the width of the payload length that prefixes every
// [JSON] record.
const jsonHeaderSize = 4

// JSON encodes arbitrary values as a little-endian uint32 payload length
// followed by the JSON encoding of the value.
//
// Records are variable-size. Size marshals the value, so it costs as much
// as encoding it. Values must round-trip through JSON unchanged (for
// example, use float64 rather than int inside map[string]any payloads).
type JSON[T any] struct{}

// Append implements [Codec].
func (JSON[T]) Append(dst []byte, v T) ([]byte, error) {
	payload, err := gojson.Marshal(v)
	if err != nil {
		return dst, err
	}

	if uint64(len(payload)) > math.MaxUint32 {
		return dst, fmt.Errorf("json payload of %d bytes exceeds uint32 length prefix", len(payload))
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))

	return append(dst, payload...), nil
}

// Decode implements [Codec].
func (JSON[T]) Decode(src []byte) (T, error) {
	var v T

	if len(src) < jsonHeaderSize {
		return v, fmt.Errorf("json record is %d bytes, shorter than its header", len(src))
	}

	length := binary.LittleEndian.Uint32(src)
	if uint64(len(src)-jsonHeaderSize) != uint64(length) {
		return v, fmt.Errorf("json record is %d bytes, header says %d", len(src)-jsonHeaderSize, length)
	}

	err := gojson.Unmarshal(src[jsonHeaderSize:], &v)

	return v, err
}

// PeekSize implements [Codec] by reading the payload length at off.
func (JSON[T]) PeekSize(r io.ReaderAt, off int64) (int64, error) {
	var hdr [jsonHeaderSize]byte

	n, err := r.ReadAt(hdr[:], off)
	if n < jsonHeaderSize {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}

		return 0, fmt.Errorf("read json header at %d: %w", off, err)
	}

	return jsonHeaderSize + int64(binary.LittleEndian.Uint32(hdr[:])), nil
}

// Size implements [Codec].
func (JSON[T]) Size(v T) (int64, error) {
	payload, err := gojson.Marshal(v)
	if err != nil {
		return 0, err
	}

	return jsonHeaderSize + int64(len(payload)), nil
}

var _ Codec[map[string]any] = JSON[map[string]any]{}
