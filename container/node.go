package container

import "go.nesv.ca/plist/chunk"

// node is one link in the chain. Exclusively owned by the List it belongs
// to; never shared, never exposed directly to callers (callers only ever
// hold an Anchor naming one).
type node struct {
	seg        *chunk.Segment
	prev, next *node
}

func (n *node) count() int { return n.seg.Len() }

// Anchor names a specific entry: the segment holding it, the entry's byte
// cursor within that segment, and its logical in-segment offset. Obtained
// from List.Index or Iterator.Anchor; opaque to callers.
type Anchor struct {
	node   *node
	cursor int
	offset int
}
