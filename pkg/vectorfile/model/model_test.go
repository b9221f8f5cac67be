package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
	"github.com/calvinalkan/vectorfile/pkg/vectorfile/model"
)

func Test_Model_Create_Fills_Zero_Values_When_Length_Allows_Whole_Records(t *testing.T) {
	t.Parallel()

	m, err := model.Create[uint32](vectorfile.NewFixed[uint32](), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len(), "two 4-byte records fit in 10 bytes")

	fileLen, err := m.FileLen()
	require.NoError(t, err)
	assert.Equal(t, int64(8), fileLen)
}

func Test_Model_Create_Returns_Error_When_Length_Negative(t *testing.T) {
	t.Parallel()

	_, err := model.Create[uint32](vectorfile.NewFixed[uint32](), -1)
	require.ErrorIs(t, err, vectorfile.ErrInvalidInput)
}

func Test_Model_Resize_Pops_Until_Length_Fits_When_Shrinking(t *testing.T) {
	t.Parallel()

	m := model.New[[]int32](vectorfile.NewSlice[int32](), true)

	for range 3 {
		require.NoError(t, m.PushBack([]int32{1}))
		require.NoError(t, m.PushBack([]int32{1, 2, 3}))
		require.NoError(t, m.PushBack([]int32{1, 2, 3, 4, 5}))
	}

	fileLen, err := m.FileLen()
	require.NoError(t, err)
	require.Equal(t, int64(180), fileLen)

	require.NoError(t, m.Resize(60))

	got, err := m.Values()
	require.NoError(t, err)

	want := [][]int32{{1}, {1, 2, 3}, {1, 2, 3, 4, 5}}
	assert.Empty(t, cmp.Diff(want, got))
}

func Test_Model_Mutations_Return_ErrWriteAccessDenied_When_ReadOnly(t *testing.T) {
	t.Parallel()

	m := model.New[uint8](vectorfile.NewFixed[uint8](), false)
	m.Elems = []uint8{7}

	require.ErrorIs(t, m.Set(0, 1), vectorfile.ErrWriteAccessDenied)
	require.ErrorIs(t, m.PushBack(1), vectorfile.ErrWriteAccessDenied)
	require.ErrorIs(t, m.Resize(0), vectorfile.ErrWriteAccessDenied)

	_, err := m.PopBack()
	require.ErrorIs(t, err, vectorfile.ErrWriteAccessDenied)

	got, err := m.Get(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), got)
}

func Test_Model_Returns_ErrIndexOutOfRange_When_Empty(t *testing.T) {
	t.Parallel()

	m := model.New[uint8](vectorfile.NewFixed[uint8](), true)

	_, err := m.Get(0)
	require.ErrorIs(t, err, vectorfile.ErrIndexOutOfRange)

	_, err = m.PopBack()
	require.ErrorIs(t, err, vectorfile.ErrIndexOutOfRange)
}

func Test_Model_Returns_ErrClosed_When_Used_After_Close(t *testing.T) {
	t.Parallel()

	m := model.New[uint8](vectorfile.NewFixed[uint8](), true)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "second close is a no-op")

	_, err := m.Get(0)
	require.ErrorIs(t, err, vectorfile.ErrClosed)
	require.ErrorIs(t, m.PushBack(1), vectorfile.ErrClosed)
}
