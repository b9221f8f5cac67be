// Package model provides a deliberately simple, in-memory model of
// vectorfile's publicly observable behavior.
//
// The model keeps elements in a plain slice and has no window. It is the
// oracle the real vector is compared against: whatever the window size,
// the real vector must produce the same values and errors.
//
// FileLen is the sum of the current elements' encoded sizes. The real
// vector only matches it once pending window changes were written back.
package model

import (
	"fmt"

	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
)

// Vector is the model of a [vectorfile.Vector].
type Vector[T any] struct {
	Elems    []T
	Writable bool
	IsClosed bool

	codec vectorfile.Codec[T]
}

// New returns an empty model using codec for size accounting.
func New[T any](codec vectorfile.Codec[T], writable bool) *Vector[T] {
	return &Vector[T]{codec: codec, Writable: writable}
}

// Create mirrors [vectorfile.Create]: zero values are appended while another
// whole record fits in length bytes.
func Create[T any](codec vectorfile.Codec[T], length int64) (*Vector[T], error) {
	if length < 0 {
		return nil, vectorfile.ErrInvalidInput
	}

	m := New(codec, true)

	err := m.grow(length)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Len returns the element count.
func (m *Vector[T]) Len() int { return len(m.Elems) }

// Empty reports whether the model holds no elements.
func (m *Vector[T]) Empty() bool { return len(m.Elems) == 0 }

// FileLen returns the byte length of all elements encoded back to back.
func (m *Vector[T]) FileLen() (int64, error) {
	var total int64

	for i, elem := range m.Elems {
		size, err := m.codec.Size(elem)
		if err != nil {
			return 0, fmt.Errorf("size of element %d: %w", i, err)
		}

		total += size
	}

	return total, nil
}

// Get returns element index.
func (m *Vector[T]) Get(index int) (T, error) {
	var zero T

	if m.IsClosed {
		return zero, vectorfile.ErrClosed
	}

	if index < 0 || index >= len(m.Elems) {
		return zero, vectorfile.ErrIndexOutOfRange
	}

	return m.Elems[index], nil
}

// Set replaces element index.
func (m *Vector[T]) Set(index int, value T) error {
	err := m.checkWrite()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(m.Elems) {
		return vectorfile.ErrIndexOutOfRange
	}

	m.Elems[index] = value

	return nil
}

// PushBack appends value.
func (m *Vector[T]) PushBack(value T) error {
	err := m.checkWrite()
	if err != nil {
		return err
	}

	m.Elems = append(m.Elems, value)

	return nil
}

// PopBack removes and returns the last element.
func (m *Vector[T]) PopBack() (T, error) {
	var zero T

	err := m.checkWrite()
	if err != nil {
		return zero, err
	}

	if len(m.Elems) == 0 {
		return zero, vectorfile.ErrIndexOutOfRange
	}

	last := m.Elems[len(m.Elems)-1]
	m.Elems = m.Elems[:len(m.Elems)-1]

	return last, nil
}

// Resize grows with zero values or pops from the end until FileLen is the
// largest whole-record length not exceeding length.
func (m *Vector[T]) Resize(length int64) error {
	err := m.checkWrite()
	if err != nil {
		return err
	}

	if length < 0 {
		return vectorfile.ErrInvalidInput
	}

	fileLen, err := m.FileLen()
	if err != nil {
		return err
	}

	if length > fileLen {
		return m.grow(length)
	}

	for fileLen > length {
		last := m.Elems[len(m.Elems)-1]

		size, err := m.codec.Size(last)
		if err != nil {
			return err
		}

		m.Elems = m.Elems[:len(m.Elems)-1]
		fileLen -= size
	}

	return nil
}

// Values returns a copy of the elements in order.
func (m *Vector[T]) Values() ([]T, error) {
	if m.IsClosed {
		return nil, vectorfile.ErrClosed
	}

	out := make([]T, len(m.Elems))
	copy(out, m.Elems)

	return out, nil
}

// Close marks the model closed. Closing twice is a no-op.
func (m *Vector[T]) Close() error {
	m.IsClosed = true

	return nil
}

func (m *Vector[T]) checkWrite() error {
	if m.IsClosed {
		return vectorfile.ErrClosed
	}

	if !m.Writable {
		return vectorfile.ErrWriteAccessDenied
	}

	return nil
}

func (m *Vector[T]) grow(length int64) error {
	fileLen, err := m.FileLen()
	if err != nil {
		return err
	}

	if length <= fileLen {
		return nil
	}

	var zero T

	size, err := m.codec.Size(zero)
	if err != nil {
		return err
	}

	if size <= 0 {
		return vectorfile.ErrInvalidInput
	}

	for fileLen+size <= length {
		m.Elems = append(m.Elems, zero)
		fileLen += size
	}

	return nil
}
