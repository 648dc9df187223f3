package plist

import (
	"go.nesv.ca/plist/chunk"
	"go.nesv.ca/plist/container"
)

// List is the chunked container: a doubly linked chain of packed
// segments. See package container for the full operation set.
type List = container.List

// Entry is a decoded logical element, either a byte string or a signed
// 64-bit integer.
type Entry = chunk.Entry

// Anchor names a specific entry for InsertBefore/InsertAfter.
type Anchor = container.Anchor

// Iterator is a bidirectional cursor over a List.
type Iterator = container.Iterator

// Direction selects which way an Iterator walks.
type Direction = container.Direction

const (
	Forward  = container.Forward
	Backward = container.Backward
)

// Option configures a List at construction time.
type Option = container.Option

// WithAllocator injects a custom arena.Allocator, letting callers simulate
// allocation failure.
var WithAllocator = container.WithAllocator

// New constructs an empty List.
func New(opts ...Option) (*List, error) { return container.New(opts...) }
