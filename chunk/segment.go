package chunk

import (
	"bytes"

	"github.com/pkg/errors"

	"go.nesv.ca/plist/internal/arena"
)

// ErrAlloc is returned when a Segment's allocator refuses to grow the
// buffer. On ErrAlloc the Segment is left exactly as it was before the call.
var ErrAlloc = errors.New("chunk: allocation failed")

// Where selects which end of a segment Push attaches a new entry to.
type Where int

const (
	Head Where = iota
	Tail
)

// Segment is a packed byte buffer holding a sequence of entries. The zero
// value is not usable; construct one with New.
type Segment struct {
	buf   []byte
	alloc arena.Allocator
}

// New allocates an empty Segment: header plus terminator, no entries.
func New() *Segment {
	return NewWithAllocator(arena.Default)
}

// NewWithAllocator allocates an empty Segment using a caller-supplied
// allocator, letting tests simulate allocation failure on later mutations.
func NewWithAllocator(a arena.Allocator) *Segment {
	buf := make([]byte, headerSize+1)
	buf[headerSize] = terminator
	s := &Segment{buf: buf, alloc: a}
	s.setTotalBytes(uint32(len(buf)))
	s.setTailOffset(headerSize)
	s.setRawCount(0)
	return s
}

func (s *Segment) totalBytes() uint32     { return getU32(s.buf, offTotalBytes) }
func (s *Segment) setTotalBytes(v uint32) { putU32(s.buf, offTotalBytes, v) }
func (s *Segment) tailOffset() uint32     { return getU32(s.buf, offTailOffset) }
func (s *Segment) setTailOffset(v uint32) { putU32(s.buf, offTailOffset, v) }
func (s *Segment) rawCount() uint16       { return getU16(s.buf, offEntryCount) }
func (s *Segment) setRawCount(v uint16)   { putU16(s.buf, offEntryCount, v) }

func (s *Segment) end() int { return len(s.buf) - 1 }

// End returns the append cursor: the terminator's position. Inserting
// before it is equivalent to a tail push.
func (s *Segment) End() int { return s.end() }

// Empty reports whether the segment holds no entries.
func (s *Segment) Empty() bool { return s.buf[headerSize] == terminator }

// Len returns the number of entries, scanning the buffer when the stored
// count has overflowed its 16-bit field.
func (s *Segment) Len() int {
	if c := s.rawCount(); c != countOverflow {
		return int(c)
	}
	n := 0
	cursor := headerSize
	for cursor < s.end() && s.buf[cursor] != terminator {
		n++
		nc, ok := s.Next(cursor)
		if !ok {
			break
		}
		cursor = nc
	}
	return n
}

// BlobLen returns the segment's total size in bytes, header and terminator
// included.
func (s *Segment) BlobLen() int { return int(s.totalBytes()) }

func (s *Segment) incCount() {
	c := s.rawCount()
	switch c {
	case countOverflow:
		return
	case countOverflow - 1:
		s.setRawCount(countOverflow)
	default:
		s.setRawCount(c + 1)
	}
}

func (s *Segment) decCount() {
	c := s.rawCount()
	if c == countOverflow || c == 0 {
		return
	}
	s.setRawCount(c - 1)
}

// recordLenAt returns the full byte length (prev-len field + prefix +
// payload) of the entry record starting at pos.
func (s *Segment) recordLenAt(pos int) int {
	_, pw := readPrevLen(s.buf, pos)
	h := decodeEncoding(s.buf, pos+pw)
	return pw + h.prefixWidth + h.payloadWidth
}

// splice replaces s.buf[at:at+oldLen] with newBytes, reallocating through
// the segment's allocator. On failure the buffer is left untouched.
func (s *Segment) splice(at, oldLen int, newBytes []byte) error {
	delta := len(newBytes) - oldLen
	if delta == 0 {
		copy(s.buf[at:at+oldLen], newBytes)
		return nil
	}
	newLen := len(s.buf) + delta
	var nb []byte
	var ok bool
	if delta > 0 {
		nb, ok = s.alloc.Realloc(s.buf, newLen)
	} else {
		nb, ok = s.alloc.Alloc(newLen)
	}
	if !ok {
		return ErrAlloc
	}
	copy(nb, s.buf[:at])
	copy(nb[at:], newBytes)
	copy(nb[at+len(newBytes):], s.buf[at+oldLen:])
	s.buf = nb
	s.setTotalBytes(uint32(len(s.buf)))
	return nil
}

// shiftTail adjusts the cached tail-offset after a structural change of
// `delta` bytes starting at byte position `at`. inclusive distinguishes
// "a new entry was inserted at at" (the entry that used to start at at, if
// any, including the tail entry, moves) from "the entry that already starts
// at at grew in place" (only entries strictly after at move).
func (s *Segment) shiftTail(at, delta int, inclusive bool) {
	tail := int(s.tailOffset())
	if (inclusive && at <= tail) || (!inclusive && at < tail) {
		s.setTailOffset(uint32(tail + delta))
	}
}

// fixupPrevLen updates the prev-entry-length field of the entry at pos to
// newVal, growing the field's width if required. A field never shrinks back
// once grown (anti-thrash, spec.md 4.1), so this only ever widens 1->5. If
// the width changes, the entry's own record length changes too, so the
// cascade continues into its successor.
func (s *Segment) fixupPrevLen(pos int, newVal uint32) error {
	if pos >= s.end() {
		return nil
	}
	_, curWidth := readPrevLen(s.buf, pos)
	width := curWidth
	if w := prevLenWidth(newVal); w > width {
		width = w
	}
	if width == curWidth {
		writePrevLen(s.buf, pos, newVal, curWidth)
		return nil
	}

	oldTotal := s.recordLenAt(pos)
	field := make([]byte, width)
	writePrevLen(field, 0, newVal, width)
	if err := s.splice(pos, curWidth, field); err != nil {
		return err
	}
	delta := width - curWidth
	s.shiftTail(pos, delta, false)
	newTotal := oldTotal + delta
	return s.fixupPrevLen(pos+newTotal, uint32(newTotal))
}

// insertBefore is the single primitive behind Push and Insert: it splices a
// new entry record in before the entry currently at cursor (or appends, if
// cursor is End()).
func (s *Segment) insertBefore(cursor int, value []byte) error {
	orig := s.buf
	end := s.end()
	isAppend := cursor == end

	var prevRecLen uint32
	switch {
	case cursor == headerSize:
		prevRecLen = 0
	case isAppend:
		prevRecLen = uint32(s.recordLenAt(int(s.tailOffset())))
	default:
		prevRecLen, _ = readPrevLen(s.buf, cursor)
	}

	encPP := encodePrefixAndPayload(value)
	plWidth := prevLenWidth(prevRecLen)
	rec := make([]byte, plWidth+len(encPP))
	writePrevLen(rec, 0, prevRecLen, plWidth)
	copy(rec[plWidth:], encPP)

	oldTail := int(s.tailOffset())
	if err := s.splice(cursor, 0, rec); err != nil {
		return err
	}
	s.incCount()

	switch {
	case isAppend:
		s.setTailOffset(uint32(cursor))
	case cursor <= oldTail:
		s.setTailOffset(uint32(oldTail + len(rec)))
	}

	if !isAppend {
		if err := s.fixupPrevLen(cursor+len(rec), uint32(len(rec))); err != nil {
			s.buf = orig
			return err
		}
	}
	return nil
}

// Push appends (Tail) or prepends (Head) a new entry.
func (s *Segment) Push(value []byte, where Where) error {
	if where == Head {
		return s.insertBefore(headerSize, value)
	}
	return s.insertBefore(s.end(), value)
}

// Insert splices a new entry in before the entry at cursor. Passing End()
// appends.
func (s *Segment) Insert(cursor int, value []byte) error {
	return s.insertBefore(cursor, value)
}

// Delete removes the entry at cursor, fixing up the successor's
// prev-entry-length. It returns the byte position the successor now
// occupies, or ok=false if the deleted entry was the last one.
func (s *Segment) Delete(cursor int) (next int, ok bool, err error) {
	orig := s.buf
	oldEnd := s.end()
	recLen := s.recordLenAt(cursor)
	oldTail := int(s.tailOffset())
	predRecLen, _ := readPrevLen(s.buf, cursor)
	succPos := cursor + recLen
	hasSucc := succPos < oldEnd

	if err := s.splice(cursor, recLen, nil); err != nil {
		return 0, false, err
	}
	s.decCount()

	switch {
	case cursor == oldTail:
		if cursor == headerSize {
			s.setTailOffset(headerSize)
		} else {
			s.setTailOffset(uint32(cursor) - predRecLen)
		}
	case cursor < oldTail:
		s.setTailOffset(uint32(oldTail - recLen))
	}

	if !hasSucc {
		return 0, false, nil
	}
	if err := s.fixupPrevLen(cursor, predRecLen); err != nil {
		s.buf = orig
		return 0, false, err
	}
	return cursor, true, nil
}

// DeleteRange deletes up to count consecutive entries starting at
// startIndex (same indexing rule as Index). count == -1 deletes through the
// end of the segment.
func (s *Segment) DeleteRange(startIndex, count int) error {
	cursor, ok := s.Index(startIndex)
	if !ok {
		return nil
	}
	orig := s.buf
	deleteAll := count < 0
	for i := 0; deleteAll || i < count; i++ {
		next, has, err := s.Delete(cursor)
		if err != nil {
			s.buf = orig
			return err
		}
		if !has {
			break
		}
		cursor = next
	}
	return nil
}

// Index walks from the head (i >= 0) or the tail (i < 0, -1 meaning last)
// to find the cursor of the i-th entry. It reports false if i is out of
// range.
func (s *Segment) Index(i int) (int, bool) {
	if s.Empty() {
		return 0, false
	}
	if i >= 0 {
		cursor := headerSize
		for k := 0; k < i; k++ {
			n, ok := s.Next(cursor)
			if !ok {
				return 0, false
			}
			cursor = n
		}
		return cursor, true
	}
	idx := -i - 1
	cursor := int(s.tailOffset())
	for k := 0; k < idx; k++ {
		p, ok := s.Prev(cursor)
		if !ok {
			return 0, false
		}
		cursor = p
	}
	return cursor, true
}

// Next advances cursor to the following entry, using the current entry's
// encoded record length.
func (s *Segment) Next(cursor int) (int, bool) {
	n := cursor + s.recordLenAt(cursor)
	if n >= s.end() || s.buf[n] == terminator {
		return 0, false
	}
	return n, true
}

// Prev retreats cursor to the preceding entry, using the current entry's
// prev-entry-length field.
func (s *Segment) Prev(cursor int) (int, bool) {
	if cursor <= headerSize {
		return 0, false
	}
	prevLen, _ := readPrevLen(s.buf, cursor)
	return cursor - int(prevLen), true
}

// Get decodes the entry at cursor.
func (s *Segment) Get(cursor int) (Entry, bool) {
	if cursor < headerSize || cursor >= s.end() {
		return Entry{}, false
	}
	_, pw := readPrevLen(s.buf, cursor)
	pos := cursor + pw
	h := decodeEncoding(s.buf, pos)
	payloadStart := pos + h.prefixWidth

	switch h.kind {
	case kindInlineInt:
		return Entry{IsInt: true, Int: h.inlineVal}, true
	case kindInt8:
		return Entry{IsInt: true, Int: getBigEndianSigned(s.buf[payloadStart:payloadStart+1], 1)}, true
	case kindInt16:
		return Entry{IsInt: true, Int: getBigEndianSigned(s.buf[payloadStart:payloadStart+2], 2)}, true
	case kindInt24:
		return Entry{IsInt: true, Int: getBigEndianSigned(s.buf[payloadStart:payloadStart+3], 3)}, true
	case kindInt32:
		return Entry{IsInt: true, Int: getBigEndianSigned(s.buf[payloadStart:payloadStart+4], 4)}, true
	case kindInt64:
		return Entry{IsInt: true, Int: getBigEndianSigned(s.buf[payloadStart:payloadStart+8], 8)}, true
	default:
		b := make([]byte, h.payloadWidth)
		copy(b, s.buf[payloadStart:payloadStart+h.payloadWidth])
		return Entry{Bytes: b}, true
	}
}

// Compare reports whether the entry at cursor equals b: byte-for-byte if
// the entry is a string, numerically (after parsing b as an integer) if the
// entry is an integer.
func (s *Segment) Compare(cursor int, b []byte) bool {
	e, ok := s.Get(cursor)
	if !ok {
		return false
	}
	if e.IsInt {
		n, ok := tryInt(b)
		return ok && n == e.Int
	}
	return bytes.Equal(e.Bytes, b)
}

// Copy returns a deep copy of s with a disjoint backing buffer.
func Copy(s *Segment) *Segment {
	buf := make([]byte, len(s.buf))
	copy(buf, s.buf)
	return &Segment{buf: buf, alloc: s.alloc}
}

// Split removes the entries in [k, Len()) (upper=true) or [0, k) (upper=false)
// from s and returns a new Segment holding exactly those entries in order.
// s is left holding the complementary half.
func Split(s *Segment, k int, upper bool) (*Segment, error) {
	out := New()
	if upper {
		n := s.Len()
		for i := k; i < n; i++ {
			cursor, ok := s.Index(i)
			if !ok {
				break
			}
			e, _ := s.Get(cursor)
			if err := out.Push(e.Raw(), Tail); err != nil {
				return nil, err
			}
		}
		if err := s.DeleteRange(k, -1); err != nil {
			return nil, err
		}
		return out, nil
	}
	for i := 0; i < k; i++ {
		cursor, ok := s.Index(i)
		if !ok {
			break
		}
		e, _ := s.Get(cursor)
		if err := out.Push(e.Raw(), Tail); err != nil {
			return nil, err
		}
	}
	if err := s.DeleteRange(0, k); err != nil {
		return nil, err
	}
	return out, nil
}
