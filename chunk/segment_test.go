package chunk

import (
	"bytes"
	"fmt"
	"testing"

	"go.nesv.ca/plist/internal/arena"
)

func collect(s *Segment) [][]byte {
	var out [][]byte
	if s.Empty() {
		return out
	}
	cursor := headerSize
	for {
		e, ok := s.Get(cursor)
		if !ok {
			break
		}
		out = append(out, e.Raw())
		n, ok := s.Next(cursor)
		if !ok {
			break
		}
		cursor = n
	}
	return out
}

func collectReverse(s *Segment) [][]byte {
	var out [][]byte
	if s.Empty() {
		return out
	}
	cursor := int(s.tailOffset())
	for {
		e, ok := s.Get(cursor)
		if !ok {
			break
		}
		out = append(out, e.Raw())
		p, ok := s.Prev(cursor)
		if !ok {
			break
		}
		cursor = p
	}
	return out
}

func mustEqualSeq(t *testing.T, got [][]byte, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if !bytes.Equal(got[i], []byte(want[i])) {
			t.Fatalf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPushHeadAndTail(t *testing.T) {
	s := New()
	if err := s.Push([]byte("b"), Tail); err != nil {
		t.Fatal(err)
	}
	if err := s.Push([]byte("a"), Head); err != nil {
		t.Fatal(err)
	}
	if err := s.Push([]byte("c"), Tail); err != nil {
		t.Fatal(err)
	}
	mustEqualSeq(t, collect(s), "a", "b", "c")
	mustEqualSeq(t, collectReverse(s), "c", "b", "a")
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	s := New()
	vals := []string{"0", "12", "13", "-1", "127", "-128", "32767", "-32768", "8388607", "2147483647", "9223372036854775807", "01", "+1", " 1", ""}
	for _, v := range vals {
		if err := s.Push([]byte(v), Tail); err != nil {
			t.Fatal(err)
		}
	}
	got := collect(s)
	for i, v := range vals {
		if !bytes.Equal(got[i], []byte(v)) {
			t.Fatalf("entry %d: got %q, want %q", i, got[i], v)
		}
	}
}

func TestDeleteMiddle(t *testing.T) {
	s := New()
	for _, v := range []string{"a", "b", "c", "d"} {
		if err := s.Push([]byte(v), Tail); err != nil {
			t.Fatal(err)
		}
	}
	c1, _ := s.Index(1)
	if _, _, err := s.Delete(c1); err != nil {
		t.Fatal(err)
	}
	mustEqualSeq(t, collect(s), "a", "c", "d")
	mustEqualSeq(t, collectReverse(s), "d", "c", "a")
}

func TestDeleteTail(t *testing.T) {
	s := New()
	for _, v := range []string{"a", "b", "c"} {
		if err := s.Push([]byte(v), Tail); err != nil {
			t.Fatal(err)
		}
	}
	c2, _ := s.Index(-1)
	if _, ok, err := s.Delete(c2); err != nil || ok {
		t.Fatalf("delete tail: ok=%v err=%v", ok, err)
	}
	mustEqualSeq(t, collect(s), "a", "b")
	if _, ok := s.Index(-1); !ok {
		t.Fatal("expected new tail to exist")
	}
}

func TestDeleteToEmpty(t *testing.T) {
	s := New()
	if err := s.Push([]byte("only"), Tail); err != nil {
		t.Fatal(err)
	}
	c0, _ := s.Index(0)
	_, ok, err := s.Delete(c0)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false deleting the last remaining entry")
	}
	if !s.Empty() {
		t.Fatal("expected segment empty")
	}
	if err := s.Push([]byte("fresh"), Tail); err != nil {
		t.Fatal(err)
	}
	mustEqualSeq(t, collect(s), "fresh")
}

func TestDeleteRangeFromNegativeCountRemainder(t *testing.T) {
	s := New()
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		if err := s.Push([]byte(v), Tail); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.DeleteRange(2, -1); err != nil {
		t.Fatal(err)
	}
	mustEqualSeq(t, collect(s), "a", "b")
}

func TestPrevLenCascadeGrows(t *testing.T) {
	s := New()
	if err := s.Push(bytes.Repeat([]byte("x"), 10), Tail); err != nil {
		t.Fatal(err)
	}
	if err := s.Push([]byte("y"), Tail); err != nil {
		t.Fatal(err)
	}
	tailCursor, _ := s.Index(-1)
	if _, w := readPrevLen(s.buf, tailCursor); w != 1 {
		t.Fatalf("expected 1-byte prevlen before growth, got width %d", w)
	}
	c0, _ := s.Index(0)
	if _, _, err := s.Delete(c0); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(bytes.Repeat([]byte("z"), 300), Head); err != nil {
		t.Fatal(err)
	}
	nextCursor, ok := s.Next(headerSize)
	if !ok {
		t.Fatal("expected successor after large head entry")
	}
	if _, w := readPrevLen(s.buf, nextCursor); w != 5 {
		t.Fatalf("expected prevlen field to grow to 5 bytes, got %d", w)
	}
}

func TestPrevLenAntiThrashOnDelete(t *testing.T) {
	s := New()
	if err := s.Push(bytes.Repeat([]byte("x"), 300), Tail); err != nil {
		t.Fatal(err)
	}
	if err := s.Push([]byte("mid"), Tail); err != nil {
		t.Fatal(err)
	}
	if err := s.Push([]byte("last"), Tail); err != nil {
		t.Fatal(err)
	}
	midCursor, _ := s.Index(1)
	if _, w := readPrevLen(s.buf, midCursor); w != 5 {
		t.Fatalf("expected grown prevlen before delete, got %d", w)
	}
	c0, _ := s.Index(0)
	newMidCursor, ok, err := s.Delete(c0)
	if err != nil || !ok {
		t.Fatalf("delete head: ok=%v err=%v", ok, err)
	}
	if _, w := readPrevLen(s.buf, newMidCursor); w != 5 {
		t.Fatalf("expected prevlen field to stay 5 bytes after delete (anti-thrash), got %d", w)
	}
}

func TestSplitUpperAndLower(t *testing.T) {
	s := New()
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		if err := s.Push([]byte(v), Tail); err != nil {
			t.Fatal(err)
		}
	}
	upper, err := Split(s, 3, true)
	if err != nil {
		t.Fatal(err)
	}
	mustEqualSeq(t, collect(s), "a", "b", "c")
	mustEqualSeq(t, collect(upper), "d", "e")

	lower, err := Split(s, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	mustEqualSeq(t, collect(lower), "a", "b")
	mustEqualSeq(t, collect(s), "c")
}

func TestCopyIsDisjoint(t *testing.T) {
	s := New()
	if err := s.Push([]byte("a"), Tail); err != nil {
		t.Fatal(err)
	}
	dup := Copy(s)
	if err := dup.Push([]byte("b"), Tail); err != nil {
		t.Fatal(err)
	}
	mustEqualSeq(t, collect(s), "a")
	mustEqualSeq(t, collect(dup), "a", "b")
}

func TestCompare(t *testing.T) {
	s := New()
	if err := s.Push([]byte("42"), Tail); err != nil {
		t.Fatal(err)
	}
	if err := s.Push([]byte("hello"), Tail); err != nil {
		t.Fatal(err)
	}
	c0, _ := s.Index(0)
	c1, _ := s.Index(1)
	if !s.Compare(c0, []byte("42")) {
		t.Fatal("expected integer entry to compare equal to its canonical bytes")
	}
	if s.Compare(c0, []byte("042")) {
		t.Fatal("non-canonical form must not compare equal")
	}
	if !s.Compare(c1, []byte("hello")) {
		t.Fatal("expected string entry to compare equal")
	}
}

func TestAllocFailureLeavesSegmentUntouched(t *testing.T) {
	s := NewWithAllocator(arena.Failing{Limit: 20})
	before := append([]byte(nil), s.buf...)
	err := s.Push(bytes.Repeat([]byte("x"), 100), Tail)
	if err == nil {
		t.Fatal("expected allocation failure")
	}
	if !bytes.Equal(before, s.buf) {
		t.Fatal("segment buffer was mutated despite allocation failure")
	}
}

func TestLenOverflowFallsBackToScan(t *testing.T) {
	s := New()
	s.setRawCount(countOverflow)
	for i := 0; i < 5; i++ {
		if err := s.Push([]byte(fmt.Sprintf("v%d", i)), Tail); err != nil {
			t.Fatal(err)
		}
		s.setRawCount(countOverflow)
	}
	if n := s.Len(); n != 5 {
		t.Fatalf("Len() with overflow marker = %d, want 5", n)
	}
}
