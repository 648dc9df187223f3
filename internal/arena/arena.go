// Package arena abstracts the byte-slice allocation used by the chunk and
// container packages, so that a caller can simulate allocation failure the
// way a malloc/realloc-returning-NULL implementation would.
package arena

// Allocator allocates and grows byte slices. Realloc must preserve the first
// min(len(b), n) bytes of b, mirroring realloc(3)'s contract.
type Allocator interface {
	Alloc(n int) ([]byte, bool)
	Realloc(b []byte, n int) ([]byte, bool)
}

// Default never fails; it is what New uses unless an allocator is injected.
var Default Allocator = stdAllocator{}

type stdAllocator struct{}

func (stdAllocator) Alloc(n int) ([]byte, bool) {
	return make([]byte, n), true
}

func (stdAllocator) Realloc(b []byte, n int) ([]byte, bool) {
	nb := make([]byte, n)
	copy(nb, b)
	return nb, true
}

// Failing is an Allocator for tests that exercises the allocation-failure
// path: it refuses any Alloc or Realloc of more than Limit bytes, and
// succeeds for requests of Limit bytes or fewer.
type Failing struct {
	Limit int
}

func (f Failing) Alloc(n int) ([]byte, bool) {
	if n > f.Limit {
		return nil, false
	}
	return make([]byte, n), true
}

func (f Failing) Realloc(b []byte, n int) ([]byte, bool) {
	if n > f.Limit {
		return nil, false
	}
	nb := make([]byte, n)
	copy(nb, b)
	return nb, true
}
