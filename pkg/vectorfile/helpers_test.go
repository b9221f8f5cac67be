package vectorfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vectorfile/pkg/vectorfile"
)

// newVector creates an empty vector in a fresh temp dir.
func newVector[T any](t *testing.T, codec vectorfile.Codec[T], opts vectorfile.Options) (*vectorfile.Vector[T], string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.vec")

	v, err := vectorfile.Create(path, codec, 0, opts)
	require.NoError(t, err, "Create")

	t.Cleanup(func() { _ = v.Close() })

	return v, path
}

// reopen opens path with the given codec and registers Close as cleanup.
func reopen[T any](t *testing.T, path string, codec vectorfile.Codec[T], opts vectorfile.Options) *vectorfile.Vector[T] {
	t.Helper()

	v, err := vectorfile.Open(path, codec, opts)
	require.NoError(t, err, "Open")

	t.Cleanup(func() { _ = v.Close() })

	return v
}

// pushAll appends values and fails the test on the first error.
func pushAll[T any](t *testing.T, v *vectorfile.Vector[T], values ...T) {
	t.Helper()

	for i, value := range values {
		require.NoError(t, v.PushBack(value), "PushBack #%d", i)
	}
}

// getAll reads every element through Get.
func getAll[T any](t *testing.T, v *vectorfile.Vector[T]) []T {
	t.Helper()

	out := make([]T, 0, v.Len())

	for i := range v.Len() {
		value, err := v.Get(i)
		require.NoError(t, err, "Get(%d)", i)

		out = append(out, value)
	}

	return out
}

// collect reads every element through All.
func collect[T any](t *testing.T, v *vectorfile.Vector[T]) []T {
	t.Helper()

	var out []T

	for value, err := range v.All() {
		require.NoError(t, err, "All")

		out = append(out, value)
	}

	return out
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()

	info, err := os.Stat(path)
	require.NoError(t, err)

	return info.Size()
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}

// mixedSlices returns three copies of the 1/3/5 element pattern whose
// Slice[int32] records are 12, 20 and 28 bytes (180 bytes in total).
func mixedSlices() [][]int32 {
	var out [][]int32

	for range 3 {
		out = append(out, []int32{1}, []int32{1, 2, 3}, []int32{1, 2, 3, 4, 5})
	}

	return out
}
