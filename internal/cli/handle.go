package cli

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
)

// Codecs lists the element types the CLI can open files as.
var Codecs = []string{"u8", "i32", "i64", "f64", "bytes", "i32s", "json"}

// handle erases the element type of a [vectorfile.Vector] so commands can
// work on text values regardless of the configured codec.
type handle interface {
	Path() string
	Codec() string
	Writable() bool
	Len() int
	FileLen() int64
	Stats() vectorfile.Stats

	Show(index int) (string, error)
	Assign(index int, text string) error
	Append(text string) error
	Remove() (string, error)
	Resize(length int64) error
	SeekWindow(index int) error
	Flush() error

	// Each visits every element in order through the sequential cursor.
	// A writable handle is flushed first so the cursor sees pending writes.
	Each(fn func(index int, text string) error) error

	Close() error
}

type openMode int

const (
	modeRead openMode = iota
	modeWrite
	modeCreate
)

// openHandle opens path as a vector of the named codec. modeCreate creates
// or truncates path and fills it with zero values up to length bytes.
func openHandle(codec, path string, mode openMode, length int64, opts vectorfile.Options) (handle, error) {
	switch codec {
	case "u8":
		return openTyped(path, codec, vectorfile.NewFixed[uint8](), parseUint[uint8](8), formatUint[uint8], mode, length, opts)
	case "i32":
		return openTyped(path, codec, vectorfile.NewFixed[int32](), parseInt[int32](32), formatInt[int32], mode, length, opts)
	case "i64":
		return openTyped(path, codec, vectorfile.NewFixed[int64](), parseInt[int64](64), formatInt[int64], mode, length, opts)
	case "f64":
		return openTyped(path, codec, vectorfile.NewFixed[float64](), parseFloat, formatFloat, mode, length, opts)
	case "bytes":
		return openTyped(path, codec, vectorfile.Codec[[]byte](vectorfile.Bytes{}), parseBytes, formatBytes, mode, length, opts)
	case "i32s":
		return openTyped(path, codec, vectorfile.NewSlice[int32](), parseInts, formatInts, mode, length, opts)
	case "json":
		return openTyped(path, codec, vectorfile.Codec[any](vectorfile.JSON[any]{}), parseJSON, formatJSON, mode, length, opts)
	default:
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownCodec, codec, strings.Join(Codecs, ", "))
	}
}

type typed[T any] struct {
	vec    *vectorfile.Vector[T]
	codec  string
	parse  func(string) (T, error)
	format func(T) string
}

func openTyped[T any](
	path, name string,
	codec vectorfile.Codec[T],
	parse func(string) (T, error),
	format func(T) string,
	mode openMode,
	length int64,
	opts vectorfile.Options,
) (handle, error) {
	var (
		vec *vectorfile.Vector[T]
		err error
	)

	switch mode {
	case modeCreate:
		vec, err = vectorfile.Create(path, codec, length, opts)
	case modeWrite:
		opts.Writable = true
		vec, err = vectorfile.Open(path, codec, opts)
	default:
		opts.Writable = false
		vec, err = vectorfile.Open(path, codec, opts)
	}

	if err != nil {
		return nil, err
	}

	return &typed[T]{vec: vec, codec: name, parse: parse, format: format}, nil
}

func (h *typed[T]) Path() string { return h.vec.Path() }

func (h *typed[T]) Codec() string { return h.codec }

func (h *typed[T]) Writable() bool { return h.vec.Writable() }

func (h *typed[T]) Len() int { return h.vec.Len() }

func (h *typed[T]) FileLen() int64 { return h.vec.FileLen() }

func (h *typed[T]) Stats() vectorfile.Stats { return h.vec.Stats() }

func (h *typed[T]) Resize(length int64) error { return h.vec.Resize(length) }

func (h *typed[T]) SeekWindow(index int) error { return h.vec.SeekWindow(index) }

func (h *typed[T]) Flush() error { return h.vec.Flush() }

func (h *typed[T]) Close() error { return h.vec.Close() }

func (h *typed[T]) Show(index int) (string, error) {
	value, err := h.vec.Get(index)
	if err != nil {
		return "", err
	}

	return h.format(value), nil
}

func (h *typed[T]) Assign(index int, text string) error {
	value, err := h.parse(text)
	if err != nil {
		return err
	}

	return h.vec.Set(index, value)
}

func (h *typed[T]) Append(text string) error {
	value, err := h.parse(text)
	if err != nil {
		return err
	}

	return h.vec.PushBack(value)
}

func (h *typed[T]) Remove() (string, error) {
	value, err := h.vec.PopBack()
	if err != nil {
		return "", err
	}

	return h.format(value), nil
}

func (h *typed[T]) Each(fn func(index int, text string) error) error {
	if h.vec.Writable() {
		if err := h.vec.Flush(); err != nil {
			return err
		}
	}

	index := 0

	for value, err := range h.vec.All() {
		if err != nil {
			return fmt.Errorf("element %d: %w", index, err)
		}

		if err := fn(index, h.format(value)); err != nil {
			return err
		}

		index++
	}

	return nil
}

func parseUint[T uint8 | uint32 | uint64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		n, err := strconv.ParseUint(strings.TrimSpace(s), 0, bits)
		if err != nil {
			return 0, fmt.Errorf("%w %q: %w", ErrInvalidValue, s, err)
		}

		return T(n), nil
	}
}

func formatUint[T uint8 | uint32 | uint64](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

func parseInt[T int32 | int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, bits)
		if err != nil {
			return 0, fmt.Errorf("%w %q: %w", ErrInvalidValue, s, err)
		}

		return T(n), nil
	}
}

func formatInt[T int32 | int64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidValue, s, err)
	}

	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Byte values are taken literally and printed quoted, so empty and
// whitespace-only records stay visible.
func parseBytes(s string) ([]byte, error) { return []byte(s), nil }

func formatBytes(b []byte) string { return strconv.Quote(string(b)) }

// parseInts reads a comma-separated int32 list. The empty string is the
// empty list.
func parseInts(s string) ([]int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int32{}, nil
	}

	fields := strings.Split(s, ",")
	out := make([]int32, 0, len(fields))

	for _, field := range fields {
		n, err := strconv.ParseInt(strings.TrimSpace(field), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidValue, s, err)
		}

		out = append(out, int32(n))
	}

	return out, nil
}

func formatInts(v []int32) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.FormatInt(int64(n), 10)
	}

	return strings.Join(parts, ",")
}

func parseJSON(s string) (any, error) {
	var v any

	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidValue, s, err)
	}

	return v, nil
}

func formatJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(data)
}
