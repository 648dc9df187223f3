package container

import (
	"github.com/pkg/errors"

	"go.nesv.ca/plist/chunk"
	"go.nesv.ca/plist/internal/varint"
)

// InsertBefore splices value in immediately before the entry named by a,
// rebalancing across neighbouring segments under the given fill factor. A
// zero Anchor (as returned when the list is empty) creates the list's
// first segment.
func (l *List) InsertBefore(fill int, a Anchor, value []byte) error {
	return l.insert(fill, a, value, false)
}

// InsertAfter splices value in immediately after the entry named by a.
func (l *List) InsertAfter(fill int, a Anchor, value []byte) error {
	return l.insert(fill, a, value, true)
}

func (l *List) insert(fill int, a Anchor, value []byte, after bool) error {
	if a.node == nil {
		n := &node{seg: l.newSegment()}
		if err := n.seg.Push(value, chunk.Tail); err != nil {
			return errors.Wrap(err, "container: insert into empty list")
		}
		l.attachTail(n)
		l.total++
		return nil
	}

	n := a.node
	cursor := a.cursor

	if n.count() < fill {
		if after {
			nc, ok := n.seg.Next(cursor)
			if !ok {
				if err := n.seg.Push(value, chunk.Tail); err != nil {
					return errors.Wrap(err, "container: insert after at segment tail")
				}
			} else if err := n.seg.Insert(nc, value); err != nil {
				return errors.Wrap(err, "container: insert after")
			}
		} else if err := n.seg.Insert(cursor, value); err != nil {
			return errors.Wrap(err, "container: insert before")
		}
		l.total++
		return nil
	}

	_, hasNext := n.seg.Next(cursor)
	_, hasPrev := n.seg.Prev(cursor)
	atLast := !hasNext
	atFirst := !hasPrev

	if after && atLast && n.next != nil && n.next.count() < fill {
		if err := n.next.seg.Push(value, chunk.Head); err != nil {
			return errors.Wrap(err, "container: insert spill into next segment")
		}
		l.total++
		return nil
	}
	if !after && atFirst && n.prev != nil && n.prev.count() < fill {
		if err := n.prev.seg.Push(value, chunk.Tail); err != nil {
			return errors.Wrap(err, "container: insert spill into prev segment")
		}
		l.total++
		return nil
	}

	if after && atLast {
		nn := &node{seg: l.newSegment()}
		if err := nn.seg.Push(value, chunk.Tail); err != nil {
			return errors.Wrap(err, "container: insert new segment after")
		}
		l.spliceAfter(n, nn)
		l.total++
		return nil
	}
	if !after && atFirst {
		nn := &node{seg: l.newSegment()}
		if err := nn.seg.Push(value, chunk.Tail); err != nil {
			return errors.Wrap(err, "container: insert new segment before")
		}
		l.spliceBefore(n, nn)
		l.total++
		return nil
	}

	return l.splitInsert(fill, n, a.offset, value, after)
}

// splitInsert handles the "anchor in the middle of a full segment" case:
// split n at the insertion point, push value onto the end of the half that
// lands next to the boundary, splice the new segment in, then attempt a
// merge across the neighbours freshly created by the split.
func (l *List) splitInsert(fill int, n *node, offset int, value []byte, after bool) error {
	k := offset
	if after {
		k++
	}
	upper, err := chunk.Split(n.seg, k, true)
	if err != nil {
		return errors.Wrap(err, "container: split for insert")
	}
	nn := &node{seg: upper}
	l.spliceAfter(n, nn)
	if err := n.seg.Push(value, chunk.Tail); err != nil {
		return errors.Wrap(err, "container: push into split lower half")
	}
	l.total++
	return l.mergeAround(n, fill)
}

// mergeAround attempts, in spec order, the four neighbour pairs around a
// segment freshly produced by a split: (prev.prev, prev), (next, next.next),
// (prev, center), (center, next). It stops after the first pair whose
// combined count fits within fill.
func (l *List) mergeAround(center *node, fill int) error {
	type pair struct{ a, b *node }
	var candidates []pair
	if center.prev != nil && center.prev.prev != nil {
		candidates = append(candidates, pair{center.prev.prev, center.prev})
	}
	if center.next != nil && center.next.next != nil {
		candidates = append(candidates, pair{center.next, center.next.next})
	}
	if center.prev != nil {
		candidates = append(candidates, pair{center.prev, center})
	}
	if center.next != nil {
		candidates = append(candidates, pair{center, center.next})
	}

	for _, p := range candidates {
		if !varint.Fits(p.a.count(), p.b.count(), fill) {
			continue
		}
		return l.mergePair(p.a, p.b)
	}
	return nil
}

// mergePair merges the smaller of a/b into the larger, preserving order:
// a always precedes b in the chain.
func (l *List) mergePair(a, b *node) error {
	if a.count() >= b.count() {
		return l.drainInto(a, b, true)
	}
	return l.drainInto(b, a, false)
}

// drainInto empties src into target by repeated pop/push, then detaches
// src. srcAfterTarget indicates src follows target in the chain, so
// entries are popped from src's head and pushed to target's tail to
// preserve global order (the reverse when src precedes target).
func (l *List) drainInto(target, src *node, srcAfterTarget bool) error {
	for src.count() > 0 {
		var idx int
		var where chunk.Where
		if srcAfterTarget {
			idx, where = 0, chunk.Tail
		} else {
			idx, where = -1, chunk.Head
		}
		cursor, ok := src.seg.Index(idx)
		if !ok {
			break
		}
		e, _ := src.seg.Get(cursor)
		raw := append([]byte(nil), e.Raw()...)
		if err := target.seg.Push(raw, where); err != nil {
			return errors.Wrap(err, "container: merge push into target")
		}
		if _, _, err := src.seg.Delete(cursor); err != nil {
			return errors.Wrap(err, "container: merge delete from source")
		}
	}
	l.detach(src)
	return nil
}
