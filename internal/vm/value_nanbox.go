//go:build nanbox

package vm

import (
	"math"
	"reflect"
	"sync"
)

// Value is a 64-bit NaN-boxed encoding (spec.md §3, §9 Open questions):
// every non-number Value is packed inside the payload of a quiet NaN. The
// sign bit marks an object reference; the low tag bits of a quiet-NaN
// payload with the sign bit clear select nil/false/true. Every other bit
// pattern is read back out as the IEEE double it represents, so this
// backend preserves all double bit patterns that are not one of this
// scheme's own quiet-NaN payloads.
type Value uint64

const (
	signBit  uint64 = 1 << 63
	qnan     uint64 = 0x7ffc000000000000
	tagNil   uint64 = 1 // 01
	tagFalse uint64 = 2 // 10
	tagTrue  uint64 = 3 // 11
)

var (
	valNil   = Value(qnan | tagNil)
	valFalse = Value(qnan | tagFalse)
	valTrue  = Value(qnan | tagTrue)
)

// A NaN-boxed Value can only carry a bare address in its payload bits, not
// a full two-word Go interface value, and a uint64 is opaque to Go's own
// collector: nothing about the Value itself keeps the referenced Obj
// reachable. refs is a side table that holds the actual strong (and
// type-preserving) Go reference, keyed by the object's own address, so the
// Obj stays reachable for exactly as long as some Value still names it.
// releaseObjectRef (called from sweep, gc.go) drops the entry once our own
// mark-sweep has determined the object unreachable, so refs doesn't grow
// without bound over a long-lived VM.
var (
	refsMu sync.Mutex
	refs   = map[uintptr]Obj{}
)

func objAddr(o Obj) uintptr { return reflect.ValueOf(o).Pointer() }

func NilValue() Value { return valNil }

func BoolValue(b bool) Value {
	if b {
		return valTrue
	}
	return valFalse
}

func NumberValue(n float64) Value { return Value(math.Float64bits(n)) }

func ObjValue(o Obj) Value {
	addr := objAddr(o)
	refsMu.Lock()
	refs[addr] = o
	refsMu.Unlock()
	return Value(signBit | qnan | uint64(addr))
}

func (v Value) IsNumber() bool { return uint64(v)&qnan != qnan }
func (v Value) IsObject() bool { return uint64(v)&(qnan|signBit) == (qnan | signBit) }
func (v Value) IsNil() bool    { return v == valNil }
func (v Value) IsBool() bool   { return v == valTrue || v == valFalse }

func (v Value) AsNumber() float64 { return math.Float64frombits(uint64(v)) }
func (v Value) AsBool() bool      { return v == valTrue }

func (v Value) AsObject() Obj {
	addr := uintptr(uint64(v) &^ (signBit | qnan))
	refsMu.Lock()
	o := refs[addr]
	refsMu.Unlock()
	return o
}

// releaseObjectRef drops this backend's strong reference to obj once sweep
// has unlinked it from the VM's intrusive object list.
func releaseObjectRef(obj Obj) {
	refsMu.Lock()
	delete(refs, objAddr(obj))
	refsMu.Unlock()
}
