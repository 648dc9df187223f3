package arena

import "testing"

func TestFailingRespectsLimit(t *testing.T) {
	f := Failing{Limit: 16}
	if _, ok := f.Alloc(16); !ok {
		t.Fatal("Alloc(16) should succeed at the limit")
	}
	if _, ok := f.Alloc(17); ok {
		t.Fatal("Alloc(17) should fail over the limit")
	}
}

func TestFailingReallocPreservesPrefix(t *testing.T) {
	f := Failing{Limit: 32}
	b := []byte("hello")
	nb, ok := f.Realloc(b, 10)
	if !ok {
		t.Fatal("Realloc within limit should succeed")
	}
	if string(nb[:5]) != "hello" {
		t.Fatalf("Realloc did not preserve prefix: got %q", nb[:5])
	}
	if _, ok := f.Realloc(b, 64); ok {
		t.Fatal("Realloc over the limit should fail")
	}
}

func TestDefaultNeverFails(t *testing.T) {
	if _, ok := Default.Alloc(1 << 20); !ok {
		t.Fatal("stdAllocator should never refuse an allocation")
	}
}
