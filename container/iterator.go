package container

import (
	"github.com/pkg/errors"

	"go.nesv.ca/plist/chunk"
)

// Direction selects which way an Iterator walks the chain.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Iterator is a directional cursor over a List. Next must be called before
// the first Entry/Anchor/DeleteEntry. Inserting into the list while an
// Iterator is live is undefined; the caller must obtain a fresh Iterator
// afterwards. Deleting through DeleteEntry is supported and re-anchors the
// iterator so the next Next call resumes correctly.
type Iterator struct {
	l    *List
	n    *node
	offs int
	dir  Direction
	done bool
}

func (it *Iterator) step() int {
	if it.dir == Forward {
		return 1
	}
	return -1
}

// IteratorHead returns a forward Iterator positioned before the first entry.
func (l *List) IteratorHead() *Iterator {
	if l.head == nil {
		return &Iterator{l: l, dir: Forward, done: true}
	}
	return &Iterator{l: l, n: l.head, offs: -1, dir: Forward}
}

// IteratorTail returns a reverse Iterator positioned after the last entry.
func (l *List) IteratorTail() *Iterator {
	if l.tail == nil {
		return &Iterator{l: l, dir: Backward, done: true}
	}
	return &Iterator{l: l, n: l.tail, offs: l.tail.count(), dir: Backward}
}

// IteratorAt returns an Iterator initialised at global index i (negative
// counts from the tail), walking in dir from there. ok is false out of
// range.
func (l *List) IteratorAt(i int, dir Direction) (*Iterator, bool) {
	n, _, offset, ok := l.locate(i)
	if !ok {
		return nil, false
	}
	it := &Iterator{l: l, n: n, dir: dir}
	if dir == Forward {
		it.offs = offset - 1
	} else {
		it.offs = offset + 1
	}
	return it, true
}

// Next advances the iterator, returning false once the chain is exhausted.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	it.offs += it.step()
	for it.n != nil && (it.offs < 0 || it.offs >= it.n.count()) {
		if it.dir == Forward {
			it.n = it.n.next
			it.offs = 0
		} else {
			it.n = it.n.prev
			if it.n != nil {
				it.offs = it.n.count() - 1
			}
		}
	}
	if it.n == nil {
		it.done = true
		return false
	}
	return true
}

// Entry decodes the entry at the iterator's current position.
func (it *Iterator) Entry() (chunk.Entry, bool) {
	if it.done || it.n == nil {
		return chunk.Entry{}, false
	}
	cursor, ok := it.n.seg.Index(it.offs)
	if !ok {
		return chunk.Entry{}, false
	}
	return it.n.seg.Get(cursor)
}

// Anchor returns an Anchor naming the iterator's current entry, usable
// with InsertBefore/InsertAfter.
func (it *Iterator) Anchor() (Anchor, bool) {
	if it.done || it.n == nil {
		return Anchor{}, false
	}
	cursor, ok := it.n.seg.Index(it.offs)
	if !ok {
		return Anchor{}, false
	}
	return Anchor{node: it.n, cursor: cursor, offset: it.offs}, true
}

// DeleteEntry removes the entry at the iterator's current position and
// re-anchors the iterator: if the delete emptied the segment, the iterator
// moves to the saved next/prev segment; otherwise, on forward iteration the
// current offset now names the successor (the subsequent Next call resumes
// correctly without skipping or revisiting it), and on reverse iteration
// nothing about the position needs to change at all.
func (it *Iterator) DeleteEntry() error {
	if it.done || it.n == nil {
		return nil
	}
	cursor, ok := it.n.seg.Index(it.offs)
	if !ok {
		return nil
	}
	if _, _, err := it.n.seg.Delete(cursor); err != nil {
		return errors.Wrap(err, "container: iterator delete")
	}
	it.l.total--

	if !it.n.seg.Empty() {
		if it.dir == Forward {
			it.offs--
		}
		return nil
	}

	next, prev := it.n.next, it.n.prev
	it.l.detach(it.n)
	if it.dir == Forward {
		it.n = next
		it.offs = -1
	} else {
		it.n = prev
		if it.n != nil {
			it.offs = it.n.count()
		}
	}
	if it.n == nil {
		it.done = true
	}
	return nil
}
