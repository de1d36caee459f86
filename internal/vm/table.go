package vm

import "github.com/yscript-lang/yscript/internal/config"

// entry is a single slot in a Table. A nil Key with IsTombstone set marks a
// deleted slot: it counts toward load but not toward Count, and probing
// must continue past it (spec.md §3).
type entry struct {
	Key         *ObjString
	Value       Value
	IsTombstone bool
}

// Table is an open-addressed hash map from interned *ObjString identity to
// Value, with linear probing and tombstones (spec.md §3). Keys are always
// compared by pointer identity: every key present in a Table is guaranteed
// (by the VM's string-interning discipline) to be the single canonical
// ObjString for its contents.
type Table struct {
	entries    []entry
	count      int // live entries only, excludes tombstones
	tombstones int
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Count is the number of live (non-tombstone) entries.
func (t *Table) Count() int { return t.count }

func (t *Table) findSlot(entries []entry, key *ObjString) int {
	capacity := len(entries)
	index := int(key.Hash) % capacity
	var tombstone = -1
	for {
		e := &entries[index]
		if e.Key == nil {
			if !e.IsTombstone {
				if tombstone != -1 {
					return tombstone
				}
				return index
			}
			if tombstone == -1 {
				tombstone = index
			}
		} else if e.Key == key {
			return index
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) grow(capacity int) {
	newEntries := make([]entry, capacity)
	newCount := 0
	for _, e := range t.entries {
		if e.Key == nil {
			continue
		}
		dest := t.findSlot(newEntries, e.Key)
		newEntries[dest].Key = e.Key
		newEntries[dest].Value = e.Value
		newCount++
	}
	t.entries = newEntries
	t.count = newCount
	t.tombstones = 0 // the rehash above never copies tombstones over
}

// Set inserts or overwrites key -> value. Returns true if this created a
// new key (as opposed to overwriting an existing one). Growth is driven by
// count+tombstones against capacity, not count alone, so a table that is
// all tombstones still triggers a rehash that clears them (spec.md §3,
// SPEC_FULL.md §3).
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+t.tombstones+1) > float64(len(t.entries))*config.TableMaxLoad {
		capacity := config.TableMinCapacity
		if len(t.entries) > 0 {
			capacity = len(t.entries) * 2
		}
		t.grow(capacity)
	}

	index := t.findSlot(t.entries, key)
	e := &t.entries[index]
	isNew := e.Key == nil
	if isNew {
		if e.IsTombstone {
			t.tombstones--
		}
		t.count++
	}
	e.Key = key
	e.Value = value
	e.IsTombstone = false
	return isNew
}

// Get looks up key, returning (value, true) if present.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return NilValue(), false
	}
	index := t.findSlot(t.entries, key)
	e := &t.entries[index]
	if e.Key == nil {
		return NilValue(), false
	}
	return e.Value, true
}

// Delete removes key, leaving a tombstone so later probes in the same
// bucket still terminate correctly (spec.md §3).
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	index := t.findSlot(t.entries, key)
	e := &t.entries[index]
	if e.Key == nil {
		return false
	}
	e.Key = nil
	e.Value = NilValue()
	e.IsTombstone = true
	t.count--
	t.tombstones++
	return true
}

// FindString looks up an interned string by its raw content and hash,
// without already holding an *ObjString — the interning table's core
// operation (spec.md §3).
func (t *Table) FindString(chars string, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	capacity := len(t.entries)
	index := int(hash) % capacity
	for {
		e := &t.entries[index]
		if e.Key == nil {
			if !e.IsTombstone {
				return nil
			}
		} else if e.Key.Hash == hash && e.Key.Chars == chars {
			return e.Key
		}
		index = (index + 1) % capacity
	}
}

// Each calls fn for every live entry. Mutating the table from within fn is
// not supported.
func (t *Table) Each(fn func(key *ObjString, value Value)) {
	for _, e := range t.entries {
		if e.Key != nil {
			fn(e.Key, e.Value)
		}
	}
}

// RemoveWhite deletes every entry whose key is not currently marked — used
// by the GC to prune the weak string-interning table after the trace phase
// and before sweep (spec.md §4.6, §9).
func (t *Table) RemoveWhite() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key != nil && !e.Key.Marked {
			e.Key = nil
			e.Value = NilValue()
			e.IsTombstone = true
			t.count--
			t.tombstones++
		}
	}
}

// AddAll copies every entry of src into t — used by OP_INHERIT to bulk-copy
// a superclass's methods into a subclass (spec.md §4.5).
func (t *Table) AddAll(src *Table) {
	src.Each(func(key *ObjString, value Value) {
		t.Set(key, value)
	})
}
