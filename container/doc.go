// Package container implements the chunked list: a doubly linked chain of
// chunk.Segment packed buffers, plus cached totals, fill-factor-driven
// rebalancing (split on full-segment mid-insert, merge across neighbours
// afterwards), range deletion, rotate, duplication, global indexing, and a
// bidirectional Iterator.
//
// A List never touches a Segment's bytes directly; every mutation goes
// through the chunk package's cursor-based operations, then updates the
// chain's cached segment-count and entry-count and, where the fill factor
// is exceeded, rebalances across the affected segment's neighbours.
//
// Example:
//
//	l, _ := container.New()
//	l.PushTail(32, []byte("hello"))
//	it := l.IteratorHead()
//	for it.Next() {
//		e, _ := it.Entry()
//		_ = e
//	}
package container
