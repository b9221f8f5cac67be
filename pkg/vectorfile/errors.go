package vectorfile

import "errors"

// Sentinel errors returned by vectorfile operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, vectorfile.ErrIndexOutOfRange) {
//	    // index >= Len(), or a scan crossed the logical end
//	}
var (
	// ErrIndexOutOfRange indicates an index or position at or beyond the
	// logical size, or a scan that would cross the logical end before
	// satisfying the request.
	//
	// PopBack on an empty vector also returns this error.
	ErrIndexOutOfRange = errors.New("vectorfile: index out of range")

	// ErrWriteAccessDenied indicates a mutating operation ([Vector.Set],
	// [Vector.PushBack], [Vector.PopBack], [Vector.Resize], [Vector.Flush])
	// on a vector opened without [Options.Writable].
	//
	// The file is left unchanged.
	ErrWriteAccessDenied = errors.New("vectorfile: write access denied")

	// ErrOpenFailure indicates the backing path could not be opened in the
	// requested mode. The underlying OS error is wrapped alongside it.
	ErrOpenFailure = errors.New("vectorfile: open failure")

	// ErrCorrupt indicates the file content does not decode as a sequence of
	// records: the file ends inside a record, the codec reported a
	// non-positive size, or a record failed to decode.
	//
	// Files are a flat concatenation of records with no header, so this is
	// usually caused by opening a file with the wrong codec.
	ErrCorrupt = errors.New("vectorfile: corrupt")

	// ErrClosed indicates the [Vector] has already been closed.
	//
	// This is a programming error.
	ErrClosed = errors.New("vectorfile: closed")

	// ErrInvalidInput indicates invalid arguments were provided.
	//
	// Common causes: empty path, negative window size or length, unknown
	// writeback mode, a codec whose default element encodes to zero bytes.
	//
	// This is a programming error.
	ErrInvalidInput = errors.New("vectorfile: invalid input")
)
