// Package plist implements a compact, memory-efficient ordered sequence
// container modelled on a doubly linked list of packed byte-array
// segments: many small elements share one allocation and one small
// per-entry overhead, rather than paying a separate allocation per
// element.
//
// The implementation is split across two packages along its natural
// internal seam:
//
//   - chunk: the packed segment codec, a single contiguous byte buffer
//     holding a sequence of entries with O(1) push at either end and
//     bidirectional traversal.
//   - container: the chunked list, a doubly linked chain of chunk.Segments
//     with fill-factor-driven rebalancing, range deletion, rotation,
//     duplication, and a bidirectional iterator.
//
// This package re-exports the types most callers need so that
// `import "go.nesv.ca/plist"` is enough for everyday use; reach into
// go.nesv.ca/plist/chunk directly only to operate on a single segment in
// isolation.
//
//	l, _ := plist.New()
//	l.PushTail(32, []byte("hello"))
//	it := l.IteratorHead()
//	for it.Next() {
//		e, _ := it.Entry()
//		_ = e
//	}
package plist
