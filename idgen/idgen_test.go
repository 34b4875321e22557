package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	if parts := strings.Split(id, "-"); len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
	if id[14] != '7' {
		t.Fatalf("UUIDv7: expected version nibble 7, got %q", id[14])
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv7: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("rep_", UUIDv7())()
	if !strings.HasPrefix(id, "rep_") || len(id) != 40 {
		t.Fatalf("Prefixed: got %q", id)
	}
}

func TestFixed(t *testing.T) {
	gen := Fixed("abc")
	if gen() != "abc" || gen() != "abc" {
		t.Fatal("Fixed: not stable")
	}
}

func TestParse(t *testing.T) {
	id := Prefixed("trc_", UUIDv7())()
	got, err := Parse(strings.ToUpper(id[4:]))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != id[4:] {
		t.Fatalf("Parse: got %q want %q", got, id[4:])
	}
	if got, err := Parse(id); err != nil || got != id {
		t.Fatalf("Parse prefixed: got %q, %v", got, err)
	}
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Fatal("Parse: expected error")
	}
}
