package vectorfile

import "time"

// RewriteKind classifies a window write-back by how the re-encoded window
// length compares to the span it previously occupied on disk.
type RewriteKind int

const (
	// RewriteInPlace overwrites a span whose length did not change.
	RewriteInPlace RewriteKind = iota

	// RewriteExtend grew the span and shifted the file tail forward.
	RewriteExtend

	// RewriteConstrict shrank the span and compacted the file tail backward.
	RewriteConstrict
)

// String returns "in_place", "extend" or "constrict".
func (k RewriteKind) String() string {
	switch k {
	case RewriteInPlace:
		return "in_place"
	case RewriteExtend:
		return "extend"
	case RewriteConstrict:
		return "constrict"
	default:
		return "unknown"
	}
}

// MetricsCollector receives operational events from a [Vector].
// Implement this interface to integrate with monitoring systems; see the
// vfprom package for a Prometheus implementation.
//
// Calls happen synchronously on the goroutine using the Vector.
type MetricsCollector interface {
	// RecordAccess is called for every indexed Get or Set that passed bounds
	// checks. hit reports whether the current window served it.
	RecordAccess(hit bool)

	// RecordWindowLoad is called after the window was (re)loaded with elems
	// decoded elements spanning bytes bytes.
	RecordWindowLoad(elems int, bytes int64)

	// RecordRewrite is called after each window write-back. shift is the
	// absolute byte delta between the old and new window span.
	RecordRewrite(kind RewriteKind, shift int64, duration time.Duration, err error)
}

// NoopMetrics is a no-op implementation of [MetricsCollector].
type NoopMetrics struct{}

func (NoopMetrics) RecordAccess(bool)                                      {}
func (NoopMetrics) RecordWindowLoad(int, int64)                            {}
func (NoopMetrics) RecordRewrite(RewriteKind, int64, time.Duration, error) {}

// Stats is a snapshot of a vector's window and rewrite counters.
type Stats struct {
	Hits          uint64 // Get/Set served by the window
	Misses        uint64 // Get/Set that moved the window
	Loads         uint64 // window (re)loads, including Open and SeekWindow
	Rewrites      uint64 // window write-backs of any kind
	Extensions    uint64 // write-backs that shifted the tail forward
	Constrictions uint64 // write-backs that compacted the tail
	Slack         int64  // bytes physically present but logically removed
}

// HitRatio returns Hits as a percentage (0-100) of all indexed accesses.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total) * 100.0
}

var _ MetricsCollector = NoopMetrics{}
