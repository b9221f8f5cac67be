// Vector behavior: unit tests for the public Vector API
//
// Oracle: hand-computed element values, byte counts and sentinel errors
// Technique: scenario tests against real files in t.TempDir()
//
// Failures here mean: "an operation returned the wrong value, size or error,
// or left the file in the wrong state after Close"

package vectorfile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
)

func Test_Vector_Persists_Set_Values_When_Closed_And_Reopened(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "u8.vec")

	v, err := vectorfile.Create(path, vectorfile.NewFixed[uint8](), 64, vectorfile.Options{WindowSize: 16})
	require.NoError(t, err)

	require.Equal(t, 64, v.Len(), "64 one-byte records fit in 64 bytes")
	require.Equal(t, int64(64), v.FileLen())

	want := make([]byte, 64)
	for i := range 64 {
		want[i] = uint8(i + 100)
		require.NoError(t, v.Set(i, uint8(i+100)))
	}

	require.NoError(t, v.Close())

	assert.Empty(t, cmp.Diff(want, readFile(t, path)), "file bytes after close")

	ro := reopen(t, path, vectorfile.NewFixed[uint8](), vectorfile.Options{WindowSize: 16})
	assert.Empty(t, cmp.Diff(want, getAll(t, ro)), "values after reopen")
}

func Test_Vector_Create_Fills_Whole_Records_When_Length_Not_Multiple_Of_Size(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "u32.vec")

	v, err := vectorfile.Create(path, vectorfile.NewFixed[uint32](), 10, vectorfile.Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, v.Len())
	assert.Equal(t, int64(8), v.FileLen())
	assert.Empty(t, cmp.Diff([]uint32{0, 0}, getAll(t, v)))

	require.NoError(t, v.Close())
	assert.Equal(t, int64(8), fileSize(t, path))
}

func Test_Vector_Create_Returns_ErrInvalidInput_When_Length_Negative(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "neg.vec")

	_, err := vectorfile.Create(path, vectorfile.NewFixed[uint32](), -1, vectorfile.Options{})
	require.ErrorIs(t, err, vectorfile.ErrInvalidInput)
}

func Test_Vector_Resize_Keeps_Whole_Records_When_Shrinking_Mixed_Sizes(t *testing.T) {
	t.Parallel()

	codec := vectorfile.NewSlice[int32]()
	v, path := newVector(t, codec, vectorfile.Options{})

	pushAll(t, v, mixedSlices()...)
	require.Equal(t, int64(180), v.FileLen())

	require.NoError(t, v.Resize(60))

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, int64(60), v.FileLen())
	assert.Equal(t, int64(120), v.Stats().Slack, "popped bytes become slack until Close")

	require.NoError(t, v.Close())
	assert.Equal(t, int64(60), fileSize(t, path), "Close truncates slack")

	ro := reopen(t, path, codec, vectorfile.Options{})
	want := [][]int32{{1}, {1, 2, 3}, {1, 2, 3, 4, 5}}
	assert.Empty(t, cmp.Diff(want, getAll(t, ro)))
}

func Test_Vector_Resize_Drops_Partial_Record_When_Target_Between_Boundaries(t *testing.T) {
	t.Parallel()

	v, _ := newVector(t, vectorfile.NewSlice[int32](), vectorfile.Options{})
	pushAll(t, v, mixedSlices()...)

	// 12+20+28 = 60 fits in 70; adding the next 12-byte record would not.
	require.NoError(t, v.Resize(70))

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, int64(60), v.FileLen())
}

func Test_Vector_Resize_Appends_Zero_Values_When_Growing(t *testing.T) {
	t.Parallel()

	v, _ := newVector(t, vectorfile.NewFixed[uint16](), vectorfile.Options{})
	pushAll(t, v, 7, 8)

	require.NoError(t, v.Resize(9))

	assert.Equal(t, int64(8), v.FileLen())
	assert.Empty(t, cmp.Diff([]uint16{7, 8, 0, 0}, getAll(t, v)))
}

func Test_Vector_Resize_Returns_ErrInvalidInput_When_Length_Negative(t *testing.T) {
	t.Parallel()

	v, _ := newVector(t, vectorfile.NewFixed[uint16](), vectorfile.Options{})

	require.ErrorIs(t, v.Resize(-1), vectorfile.ErrInvalidInput)
}

func Test_Vector_PopBack_Returns_Pending_Value_When_Window_Is_Dirty(t *testing.T) {
	t.Parallel()

	codec := vectorfile.NewFixed[uint32]()
	v, path := newVector(t, codec, vectorfile.Options{})
	pushAll(t, v, 1, 2, 3, 4, 5)

	require.NoError(t, v.Set(4, 99))

	got, err := v.PopBack()
	require.NoError(t, err)
	assert.Equal(t, uint32(99), got)
	assert.Equal(t, 4, v.Len())

	require.NoError(t, v.Close())
	assert.Equal(t, int64(16), fileSize(t, path))

	ro := reopen(t, path, codec, vectorfile.Options{})
	assert.Empty(t, cmp.Diff([]uint32{1, 2, 3, 4}, getAll(t, ro)))
}

func Test_Vector_PopBack_Decodes_From_Disk_When_Element_Outside_Window(t *testing.T) {
	t.Parallel()

	v, _ := newVector(t, vectorfile.NewFixed[uint32](), vectorfile.Options{WindowSize: 8})
	pushAll(t, v, 10, 20, 30, 40, 50)

	_, err := v.Get(0)
	require.NoError(t, err)

	got, err := v.PopBack()
	require.NoError(t, err)
	assert.Equal(t, uint32(50), got)

	got, err = v.PopBack()
	require.NoError(t, err)
	assert.Equal(t, uint32(40), got)

	assert.Empty(t, cmp.Diff([]uint32{10, 20, 30}, getAll(t, v)))
}

func Test_Vector_Get_Returns_Every_Element_When_Window_Narrower_Than_Record(t *testing.T) {
	t.Parallel()

	codec := vectorfile.NewSlice[int32]()
	v, path := newVector(t, codec, vectorfile.Options{WindowSize: 4})
	pushAll(t, v, mixedSlices()...)

	assert.Empty(t, cmp.Diff(mixedSlices(), getAll(t, v)))

	require.NoError(t, v.Set(4, []int32{9, 9, 9, 9, 9, 9, 9}))
	require.NoError(t, v.Close())

	want := mixedSlices()
	want[4] = []int32{9, 9, 9, 9, 9, 9, 9}

	ro := reopen(t, path, codec, vectorfile.Options{WindowSize: 4})
	assert.Empty(t, cmp.Diff(want, getAll(t, ro)))
}

func Test_Vector_Returns_ErrIndexOutOfRange_When_Index_Outside_Bounds(t *testing.T) {
	t.Parallel()

	v, _ := newVector(t, vectorfile.NewFixed[uint32](), vectorfile.Options{})
	pushAll(t, v, 1, 2, 3)

	for _, index := range []int{-1, 3, 100} {
		_, err := v.Get(index)
		require.ErrorIs(t, err, vectorfile.ErrIndexOutOfRange, "Get(%d)", index)

		err = v.Set(index, 0)
		require.ErrorIs(t, err, vectorfile.ErrIndexOutOfRange, "Set(%d)", index)

		err = v.SeekWindow(index)
		require.ErrorIs(t, err, vectorfile.ErrIndexOutOfRange, "SeekWindow(%d)", index)
	}
}

func Test_Vector_Returns_ErrIndexOutOfRange_When_Empty(t *testing.T) {
	t.Parallel()

	v, _ := newVector(t, vectorfile.NewFixed[uint32](), vectorfile.Options{})

	assert.True(t, v.Empty())
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, int64(0), v.FileLen())

	_, err := v.Get(0)
	require.ErrorIs(t, err, vectorfile.ErrIndexOutOfRange)

	_, err = v.PopBack()
	require.ErrorIs(t, err, vectorfile.ErrIndexOutOfRange)

	assert.True(t, v.Begin().Equal(v.End()), "Begin == End on an empty vector")
}

func Test_Vector_Leaves_File_Unchanged_When_Opened_ReadOnly(t *testing.T) {
	t.Parallel()

	codec := vectorfile.NewSlice[int32]()
	v, path := newVector(t, codec, vectorfile.Options{})
	pushAll(t, v, mixedSlices()...)
	require.NoError(t, v.Close())

	before := readFile(t, path)

	ro := reopen(t, path, codec, vectorfile.Options{})
	require.False(t, ro.Writable())

	require.ErrorIs(t, ro.Set(0, []int32{5}), vectorfile.ErrWriteAccessDenied)
	require.ErrorIs(t, ro.Set(1000, []int32{5}), vectorfile.ErrWriteAccessDenied, "checked before bounds")
	require.ErrorIs(t, ro.PushBack([]int32{5}), vectorfile.ErrWriteAccessDenied)
	require.ErrorIs(t, ro.Resize(0), vectorfile.ErrWriteAccessDenied)
	require.ErrorIs(t, ro.Flush(), vectorfile.ErrWriteAccessDenied)

	_, err := ro.PopBack()
	require.ErrorIs(t, err, vectorfile.ErrWriteAccessDenied)

	assert.Empty(t, cmp.Diff(mixedSlices(), getAll(t, ro)), "reads still work")
	require.NoError(t, ro.Close())

	assert.Empty(t, cmp.Diff(before, readFile(t, path)), "file bytes changed")
}

func Test_Vector_Returns_ErrClosed_When_Used_After_Close(t *testing.T) {
	t.Parallel()

	v, _ := newVector(t, vectorfile.NewFixed[uint32](), vectorfile.Options{})
	pushAll(t, v, 1)

	require.NoError(t, v.Close())
	require.NoError(t, v.Close(), "second Close is a no-op")

	_, err := v.Get(0)
	require.ErrorIs(t, err, vectorfile.ErrClosed)
	require.ErrorIs(t, v.Set(0, 1), vectorfile.ErrClosed)
	require.ErrorIs(t, v.PushBack(1), vectorfile.ErrClosed)
	require.ErrorIs(t, v.Flush(), vectorfile.ErrClosed)
	require.ErrorIs(t, v.Resize(0), vectorfile.ErrClosed)

	_, err = v.PopBack()
	require.ErrorIs(t, err, vectorfile.ErrClosed)

	_, err = v.Begin().Value()
	require.ErrorIs(t, err, vectorfile.ErrClosed)
}

func Test_Vector_Open_Returns_ErrOpenFailure_When_File_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.vec")

	_, err := vectorfile.Open(path, vectorfile.NewFixed[uint32](), vectorfile.Options{})
	require.ErrorIs(t, err, vectorfile.ErrOpenFailure)
	require.ErrorIs(t, err, os.ErrNotExist, "OS error is wrapped alongside")
}

func Test_Vector_Open_Returns_ErrCorrupt_When_File_Ends_Inside_Record(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "torn.vec")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4, 5}, 0o644))

	_, err := vectorfile.Open(path, vectorfile.NewFixed[uint32](), vectorfile.Options{})
	require.ErrorIs(t, err, vectorfile.ErrCorrupt)
}

func Test_Vector_Open_Returns_ErrCorrupt_When_Slice_Header_Overruns_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "header.vec")

	// Header claims 4 int32s but only one follows.
	data := []byte{4, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0}
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := vectorfile.Open(path, vectorfile.NewSlice[int32](), vectorfile.Options{})
	require.ErrorIs(t, err, vectorfile.ErrCorrupt)
}

func Test_Vector_Open_Returns_ErrInvalidInput_When_Options_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		path string
		opts vectorfile.Options
	}{
		{name: "EmptyPath", path: "", opts: vectorfile.Options{}},
		{name: "NegativeWindow", path: "x.vec", opts: vectorfile.Options{WindowSize: -1}},
		{name: "UnknownWriteback", path: "x.vec", opts: vectorfile.Options{Writeback: vectorfile.WritebackMode(9)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := tc.path
			if path != "" {
				path = filepath.Join(t.TempDir(), path)
			}

			_, err := vectorfile.Open(path, vectorfile.NewFixed[uint32](), tc.opts)
			require.ErrorIs(t, err, vectorfile.ErrInvalidInput)
		})
	}
}

func Test_Vector_SeekWindow_Serves_Following_Gets_From_Window_When_Positioned(t *testing.T) {
	t.Parallel()

	v, _ := newVector(t, vectorfile.NewFixed[uint32](), vectorfile.Options{WindowSize: 16})

	for i := range 100 {
		require.NoError(t, v.PushBack(uint32(i)))
	}

	require.NoError(t, v.SeekWindow(50))

	before := v.Stats()

	for i := 50; i < 54; i++ {
		got, err := v.Get(i)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), got)
	}

	after := v.Stats()
	assert.Equal(t, before.Hits+4, after.Hits, "four 4-byte elements fit a 16-byte window")
	assert.Equal(t, before.Misses, after.Misses)

	_, err := v.Get(54)
	require.NoError(t, err)
	assert.Equal(t, after.Misses+1, v.Stats().Misses)
}

func Test_Vector_Flush_Succeeds_When_Writeback_Sync(t *testing.T) {
	t.Parallel()

	codec := vectorfile.NewFixed[uint64]()
	v, path := newVector(t, codec, vectorfile.Options{Writeback: vectorfile.WritebackSync})
	pushAll(t, v, 1, 2, 3)

	require.NoError(t, v.Set(1, 20))
	require.NoError(t, v.Flush())
	require.NoError(t, v.Close())

	ro := reopen(t, path, codec, vectorfile.Options{})
	assert.Empty(t, cmp.Diff([]uint64{1, 20, 3}, getAll(t, ro)))
}

func Test_Vector_Metrics_Receive_Accesses_When_Collector_Configured(t *testing.T) {
	t.Parallel()

	metrics := &countingMetrics{}
	v, _ := newVector(t, vectorfile.NewFixed[uint32](), vectorfile.Options{WindowSize: 8, Metrics: metrics})
	pushAll(t, v, 1, 2, 3, 4, 5, 6)

	_ = getAll(t, v)
	require.NoError(t, v.Set(0, 10))
	require.NoError(t, v.Flush())

	stats := v.Stats()
	assert.Equal(t, stats.Hits+stats.Misses, metrics.hits+metrics.misses)
	assert.Equal(t, stats.Hits, metrics.hits)
	assert.Equal(t, stats.Loads, metrics.loads)
	assert.Equal(t, stats.Rewrites, metrics.rewrites)
	assert.Positive(t, stats.HitRatio())
}

type countingMetrics struct {
	hits, misses, loads, rewrites uint64
}

func (m *countingMetrics) RecordAccess(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *countingMetrics) RecordWindowLoad(int, int64) { m.loads++ }

func (m *countingMetrics) RecordRewrite(_ vectorfile.RewriteKind, _ int64, _ time.Duration, err error) {
	if err == nil {
		m.rewrites++
	}
}
