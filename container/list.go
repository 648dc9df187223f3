package container

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"go.nesv.ca/plist/chunk"
	"go.nesv.ca/plist/internal/arena"
	"go.nesv.ca/plist/internal/varint"
)

// ErrAlloc is not returned by List methods: when the list's allocator
// refuses to grow a segment's buffer, the error returned wraps
// chunk.ErrAlloc, so errors.Cause of it is chunk.ErrAlloc. A failed push or
// a failed insert within one segment leaves the list as it was; operations
// that touch several segments (split inserts, merges, DeleteRange, Rotate)
// may have applied part of their work, without dropping existing entries,
// when the error is returned.
var ErrAlloc = errors.New("container: allocation failed")

// Config holds the options a List is built with.
type Config struct {
	allocator arena.Allocator
}

// Option configures a List at construction time.
type Option func(*Config) error

// WithAllocator injects an arena.Allocator, letting callers simulate
// allocation failure for fault-injection tests.
func WithAllocator(a arena.Allocator) Option {
	return func(c *Config) error {
		if a == nil {
			return errors.New("container: nil allocator")
		}
		c.allocator = a
		return nil
	}
}

// List is a doubly linked chain of packed segments plus cached totals: the
// chunked container of the package doc.
type List struct {
	head, tail *node
	segCount   int
	total      int
	alloc      arena.Allocator
	bookmarks  map[string]Anchor
	plainDepth int
}

// New constructs an empty List.
func New(opts ...Option) (*List, error) {
	cfg := Config{allocator: arena.Default}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, errors.Wrap(err, "container: applying option")
		}
	}
	return &List{alloc: cfg.allocator, bookmarks: make(map[string]Anchor)}, nil
}

// Count returns the cached total entry count across all segments.
func (l *List) Count() int { return l.total }

// NodeCount returns the number of segments in the chain.
func (l *List) NodeCount() int { return l.segCount }

func (l *List) newSegment() *chunk.Segment { return chunk.NewWithAllocator(l.alloc) }

func (l *List) attachTail(n *node) {
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.segCount++
}

func (l *List) attachHead(n *node) {
	n.next = l.head
	n.prev = nil
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.segCount++
}

func (l *List) spliceAfter(n, nn *node) {
	nn.prev = n
	nn.next = n.next
	if n.next != nil {
		n.next.prev = nn
	} else {
		l.tail = nn
	}
	n.next = nn
	l.segCount++
}

func (l *List) spliceBefore(n, nn *node) {
	nn.next = n
	nn.prev = n.prev
	if n.prev != nil {
		n.prev.next = nn
	} else {
		l.head = nn
	}
	n.prev = nn
	l.segCount++
}

// detach removes n from the chain. It never frees a non-empty segment; the
// caller is responsible for only calling this once n.count() == 0.
func (l *List) detach(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	l.segCount--
	l.clearBookmarksFor(n)
}

// PushTail appends value to the tail segment if it has room under fill, or
// allocates a new tail segment otherwise.
func (l *List) PushTail(fill int, value []byte) error {
	if l.tail != nil && l.tail.count() < fill {
		if err := l.tail.seg.Push(value, chunk.Tail); err != nil {
			return errors.Wrap(err, "container: push tail")
		}
		l.total++
		return nil
	}
	n := &node{seg: l.newSegment()}
	if err := n.seg.Push(value, chunk.Tail); err != nil {
		return errors.Wrap(err, "container: push tail into new segment")
	}
	l.attachTail(n)
	l.total++
	return nil
}

// PushHead prepends value to the head segment if it has room under fill,
// or allocates a new head segment otherwise.
func (l *List) PushHead(fill int, value []byte) error {
	if l.head != nil && l.head.count() < fill {
		if err := l.head.seg.Push(value, chunk.Head); err != nil {
			return errors.Wrap(err, "container: push head")
		}
		l.total++
		return nil
	}
	n := &node{seg: l.newSegment()}
	if err := n.seg.Push(value, chunk.Head); err != nil {
		return errors.Wrap(err, "container: push head into new segment")
	}
	l.attachHead(n)
	l.total++
	return nil
}

// PopHead removes and returns the first entry. ok is false on an empty
// list; it never indicates allocation failure (shrinking a segment's
// buffer does not need more memory than it already has).
func (l *List) PopHead() (chunk.Entry, bool) {
	if l.head == nil {
		return chunk.Entry{}, false
	}
	n := l.head
	cursor, ok := n.seg.Index(0)
	if !ok {
		return chunk.Entry{}, false
	}
	e, _ := n.seg.Get(cursor)
	if _, _, err := n.seg.Delete(cursor); err != nil {
		return chunk.Entry{}, false
	}
	l.total--
	if n.seg.Empty() {
		l.detach(n)
	}
	return e, true
}

// PopTail removes and returns the last entry.
func (l *List) PopTail() (chunk.Entry, bool) {
	if l.tail == nil {
		return chunk.Entry{}, false
	}
	n := l.tail
	cursor, ok := n.seg.Index(-1)
	if !ok {
		return chunk.Entry{}, false
	}
	e, _ := n.seg.Get(cursor)
	if _, _, err := n.seg.Delete(cursor); err != nil {
		return chunk.Entry{}, false
	}
	l.total--
	if n.seg.Empty() {
		l.detach(n)
	}
	return e, true
}

// locate walks the chain to find the node, byte cursor, and in-segment
// offset of the i-th entry (i >= 0 from head, i < 0 from tail, -1 = last).
func (l *List) locate(i int) (n *node, cursor int, offset int, ok bool) {
	if l.head == nil {
		return nil, 0, 0, false
	}
	if i >= 0 {
		cur := l.head
		remaining := i
		for cur != nil {
			c := cur.count()
			if remaining < c {
				cs, ok := cur.seg.Index(remaining)
				return cur, cs, remaining, ok
			}
			remaining -= c
			cur = cur.next
		}
		return nil, 0, 0, false
	}
	idx := -i - 1
	cur := l.tail
	for cur != nil {
		c := cur.count()
		if idx < c {
			off := c - 1 - idx
			cs, ok := cur.seg.Index(off)
			return cur, cs, off, ok
		}
		idx -= c
		cur = cur.prev
	}
	return nil, 0, 0, false
}

// Index returns the decoded entry and an Anchor naming it at global index
// i (negative counts from the tail, -1 = last). ok is false out of range.
func (l *List) Index(i int) (chunk.Entry, Anchor, bool) {
	n, cursor, offset, ok := l.locate(i)
	if !ok {
		return chunk.Entry{}, Anchor{}, false
	}
	e, _ := n.seg.Get(cursor)
	return e, Anchor{node: n, cursor: cursor, offset: offset}, true
}

// ReplaceAtIndex deletes and re-inserts at global index i, the net effect
// of which is an in-place value replacement. ok is false if i is out of
// range; it never shrinks the chain below an existing segment's minimum,
// since delete and insert happen back to back before any segment-empty
// check would fire.
func (l *List) ReplaceAtIndex(i int, value []byte) (bool, error) {
	n, cursor, _, ok := l.locate(i)
	if !ok {
		return false, nil
	}
	next, has, err := n.seg.Delete(cursor)
	if err != nil {
		return false, errors.Wrap(err, "container: replace delete")
	}
	insertAt := next
	if !has {
		insertAt = n.seg.End()
	}
	if err := n.seg.Insert(insertAt, value); err != nil {
		return false, errors.Wrap(err, "container: replace insert")
	}
	return true, nil
}

// DeleteRange deletes up to count consecutive entries starting at the
// global index start (negative counts from the tail). A negative count
// deletes through the end of the list, as does any count that reaches or
// exceeds the number of entries remaining from start.
func (l *List) DeleteRange(start, count int) error {
	if l.head == nil || count == 0 {
		return nil
	}
	startIdx := start
	if startIdx < 0 {
		startIdx += l.total
		startIdx = varint.AtLeast(startIdx, 0)
	}
	if startIdx >= l.total {
		return nil
	}
	remaining := l.total - startIdx
	if count >= 0 {
		remaining = varint.Clamp(count, 0, remaining)
	}

	n := l.head
	skip := startIdx
	for n != nil && skip >= n.count() {
		skip -= n.count()
		n = n.next
	}
	for n != nil && remaining > 0 {
		c := n.count()
		avail := c - skip
		toDelete := avail
		if toDelete > remaining {
			toDelete = remaining
		}
		next := n.next
		if toDelete == c {
			l.detach(n)
			l.total -= c
		} else {
			if err := n.seg.DeleteRange(skip, toDelete); err != nil {
				return errors.Wrap(err, "container: delete range")
			}
			l.total -= toDelete
		}
		remaining -= toDelete
		skip = 0
		n = next
	}
	return nil
}

// Rotate moves the last entry to the front. A no-op when the list has 0 or
// 1 entries. The last entry's bytes are copied out before the head push,
// since pushing may reallocate a segment buffer and invalidate any cursor
// taken before it.
func (l *List) Rotate(fill int) error {
	if l.total <= 1 {
		return nil
	}
	tailNode := l.tail
	cursor, ok := tailNode.seg.Index(-1)
	if !ok {
		return nil
	}
	e, _ := tailNode.seg.Get(cursor)
	raw := append([]byte(nil), e.Raw()...)

	if err := l.PushHead(fill, raw); err != nil {
		return errors.Wrap(err, "container: rotate push head")
	}

	cursor, ok = tailNode.seg.Index(-1)
	if !ok {
		return nil
	}
	if _, _, err := tailNode.seg.Delete(cursor); err != nil {
		return errors.Wrap(err, "container: rotate delete tail")
	}
	l.total--
	if tailNode.seg.Empty() {
		l.detach(tailNode)
	}
	return nil
}

// Duplicate returns a new List with the same entries in the same order,
// backed by entirely disjoint segment buffers.
func (l *List) Duplicate() *List {
	dup := &List{alloc: l.alloc, bookmarks: make(map[string]Anchor)}
	for n := l.head; n != nil; n = n.next {
		dup.attachTail(&node{seg: chunk.Copy(n.seg)})
	}
	dup.total = l.total
	return dup
}

// Bookmark records a named, persistent reference to the segment behind a.
// If that segment is later emptied and detached, the bookmark is silently
// cleared.
func (l *List) Bookmark(name string, a Anchor) error {
	if a.node == nil {
		return errors.New("container: invalid anchor")
	}
	l.bookmarks[name] = a
	return nil
}

// ClearBookmark removes a named bookmark, if present.
func (l *List) ClearBookmark(name string) { delete(l.bookmarks, name) }

// BookmarkFind returns the anchor last recorded under name.
func (l *List) BookmarkFind(name string) (Anchor, bool) {
	a, ok := l.bookmarks[name]
	return a, ok
}

func (l *List) clearBookmarksFor(n *node) {
	for name, a := range l.bookmarks {
		if a.node == n {
			delete(l.bookmarks, name)
		}
	}
}

// Compress updates the pinned-range ("plain nodes") accounting to depth
// segments at each end of the chain and returns anchors to every segment
// currently outside that pinned range. This module does not implement
// segment compression; the hook exists so a caller can mark segments
// exempt from a future compression pass.
func (l *List) Compress(depth int) []Anchor {
	l.plainDepth = depth
	var outside []Anchor
	i := 0
	for n := l.head; n != nil; n = n.next {
		if i >= depth && l.segCount-i > depth {
			outside = append(outside, Anchor{node: n})
		}
		i++
	}
	return outside
}

// Repr is a human-readable debug dump of segment and entry counts.
func (l *List) Repr() string {
	var b strings.Builder
	fmt.Fprintf(&b, "segments=%d entries=%d\n", l.segCount, l.total)
	i := 0
	for n := l.head; n != nil; n = n.next {
		fmt.Fprintf(&b, "  [%d] count=%d bytes=%d\n", i, n.count(), n.seg.BlobLen())
		i++
	}
	return b.String()
}

func (l *List) String() string { return l.Repr() }
