// Package vectorfile provides a persistent, file-backed dynamic array.
//
// A vector file is nothing but the encoded elements written back to back.
// There is no header and no index: the element count is recovered on
// [Open] by walking the records with the codec's PeekSize. Records may
// differ in size, which is what makes variable-length element types such
// as slices or JSON documents possible.
//
// # Basic Usage
//
//	v, err := vectorfile.Create("/tmp/ids.vec", vectorfile.NewFixed[uint64](), 0, vectorfile.Options{})
//	if err != nil {
//	    return err
//	}
//	defer v.Close()
//
//	_ = v.PushBack(42)
//	id, err := v.Get(0)
//	_ = v.Set(0, id+1)
//
//	for id, err := range v.All() {
//	    // ...
//	}
//
// # Window
//
// Random access goes through a window: up to [Options.WindowSize] bytes of
// consecutive records, decoded once and served from memory. Accessing an
// element outside the window writes a modified window back and reloads it
// at that element. The window size changes performance, never results.
//
// # Rewrites
//
// When a written-back window encodes to a different length than before,
// every record behind it is shifted so the file stays contiguous. Growing
// shifts the tail forward; shrinking compacts it and leaves the freed bytes
// at the end of the file as slack. Slack is reused by [Vector.PushBack]
// and truncated away by [Vector.Close].
//
// # Error Handling
//
// [ErrCorrupt] means the file does not parse with the given codec, usually
// because it was written with a different one. [ErrIndexOutOfRange],
// [ErrWriteAccessDenied], [ErrClosed] and [ErrInvalidInput] report misuse.
// An I/O error during a rewrite can leave the file half-shifted; reopen it
// and expect [ErrCorrupt].
package vectorfile
