// Package chunk implements the packed segment codec: a single contiguous
// byte buffer holding a variable number of heterogeneous entries (byte
// strings or signed 64-bit integers) in a compact, bidirectionally
// traversable encoding.
//
// A Segment looks like:
//
//	+-------------+-------------+-------------+  ...  +------------+
//	| total-bytes | tail-offset | entry-count  | entries...         |0xFF|
//	+-------------+-------------+-------------+  ...  +------------+
//	     4 bytes       4 bytes      2 bytes
//
// Each entry record is a prev-entry-length field (1 or 5 bytes, enabling
// reverse traversal), an encoding+length prefix (1-5 bytes), and a payload.
// See format.go for the exact bit layout.
//
// Segment is the non-trivial part of this module: it exists so that a
// sequence of many small values can be stored with a few bytes of overhead
// each, rather than one Go slice header and one allocation per element. A
// cursor is a byte offset into the Segment's buffer naming an entry's first
// byte; callers outside this package only ever hold cursors, never raw
// offsets into arbitrary structures.
package chunk
