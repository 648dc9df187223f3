package chunk

import "strconv"

// Entry is a decoded logical element: either a raw byte string or a signed
// 64-bit integer. Exactly one of the two forms is populated, selected by
// IsInt.
type Entry struct {
	Bytes []byte
	Int   int64
	IsInt bool
}

// Raw returns the entry's value in a form suitable for re-encoding: the
// original bytes for a string entry, or the canonical decimal form for an
// integer entry. Pushing Raw() back into a segment reproduces the same
// logical entry, by the same rule tryInt uses to tell them apart.
func (e Entry) Raw() []byte {
	if e.IsInt {
		return []byte(strconv.FormatInt(e.Int, 10))
	}
	return e.Bytes
}

// tryInt reports whether b is the canonical decimal representation of a
// signed 64-bit integer. A value only qualifies as an integer if formatting
// it back to decimal reproduces b exactly byte-for-byte; this rejects
// strings like "01", "+1", " 1", and "" that parse but would not round-trip,
// so they are preserved verbatim as byte strings instead.
func tryInt(b []byte) (int64, bool) {
	if len(b) == 0 || len(b) > 20 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(n, 10) != string(b) {
		return 0, false
	}
	return n, true
}
