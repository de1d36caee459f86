package vm

import "testing"

func newTestString(chars string) *ObjString {
	return &ObjString{Chars: chars, Hash: hashString(chars)}
}

func TestTableSetGetDelete(t *testing.T) {
	table := NewTable()
	key := newTestString("greeting")

	if _, ok := table.Get(key); ok {
		t.Fatalf("expected miss on empty table")
	}

	if !table.Set(key, NumberValue(42)) {
		t.Fatalf("expected Set on a new key to return true")
	}
	if table.Set(key, NumberValue(43)) {
		t.Fatalf("expected Set on an existing key to return false")
	}

	v, ok := table.Get(key)
	if !ok || v.AsNumber() != 43 {
		t.Fatalf("expected 43, got %v (ok=%v)", v, ok)
	}

	if !table.Delete(key) {
		t.Fatalf("expected Delete to succeed")
	}
	if _, ok := table.Get(key); ok {
		t.Fatalf("expected miss after delete")
	}
	if table.Delete(key) {
		t.Fatalf("expected second Delete to fail")
	}
}

// TestTableAllTombstonesStillGrows guards the supplemented growth rule
// (SPEC_FULL.md §3, grounded on original_source/src/common/hashtable.cc): a
// table whose every slot is a tombstone must still trigger a rehash, which
// also clears the tombstones, rather than looping forever probing a full
// table of dead slots.
func TestTableAllTombstonesStillGrows(t *testing.T) {
	table := NewTable()
	keys := make([]*ObjString, 6)
	for i := range keys {
		keys[i] = newTestString(string(rune('a' + i)))
		table.Set(keys[i], NumberValue(float64(i)))
	}
	for _, k := range keys {
		table.Delete(k)
	}

	if table.Count() != 0 {
		t.Fatalf("expected count 0 after deleting everything, got %d", table.Count())
	}

	newKey := newTestString("fresh")
	table.Set(newKey, NumberValue(99))
	if v, ok := table.Get(newKey); !ok || v.AsNumber() != 99 {
		t.Fatalf("expected the table to remain usable after an all-tombstone state")
	}
}

func TestTableFindString(t *testing.T) {
	table := NewTable()
	key := newTestString("hello")
	table.Set(key, BoolValue(true))

	found := table.FindString("hello", hashString("hello"))
	if found != key {
		t.Fatalf("expected FindString to return the canonical ObjString by identity")
	}
	if table.FindString("nope", hashString("nope")) != nil {
		t.Fatalf("expected miss for an absent string")
	}
}

func TestTableAddAll(t *testing.T) {
	src := NewTable()
	dst := NewTable()
	a, b := newTestString("a"), newTestString("b")
	src.Set(a, NumberValue(1))
	src.Set(b, NumberValue(2))

	dst.AddAll(src)

	if v, ok := dst.Get(a); !ok || v.AsNumber() != 1 {
		t.Fatalf("expected copied key a")
	}
	if v, ok := dst.Get(b); !ok || v.AsNumber() != 2 {
		t.Fatalf("expected copied key b")
	}
}
