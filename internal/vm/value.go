package vm

// Value is a tagged scalar: nil, bool, IEEE-754 double, or an object
// reference (spec.md §3). Its concrete representation is selected at build
// time: the default build uses a discriminated-record backend
// (value_tagged.go); building with the "nanbox" tag swaps in a 64-bit
// NaN-boxed encoding (value_nanbox.go). Both backends expose exactly the
// predicate/constructor/accessor contract used below, so everything in this
// file (and the rest of the package) is representation-agnostic.

// Equals implements the language's equality rules: numbers by IEEE
// equality (so NaN != NaN, per spec.md §9), objects by identity (which,
// for interned strings, reduces to identity after interning), nil==nil,
// bools by value, and any cross-type comparison is not equal.
func (v Value) Equals(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		return v.AsNumber() == other.AsNumber()
	}
	if v.IsBool() && other.IsBool() {
		return v.AsBool() == other.AsBool()
	}
	if v.IsNil() && other.IsNil() {
		return true
	}
	if v.IsObject() && other.IsObject() {
		return v.AsObject() == other.AsObject()
	}
	return false
}

// IsTruthy implements the language's truthiness rule: false and nil are
// falsey, everything else (including 0 and "") is truthy (spec.md §4.4).
func (v Value) IsTruthy() bool {
	if v.IsNil() {
		return false
	}
	if v.IsBool() {
		return v.AsBool()
	}
	return true
}

// IsObjType reports whether v holds an object of the given concrete type.
func (v Value) IsObjType(t ObjType) bool {
	return v.IsObject() && v.AsObject().objType() == t
}

func (v Value) String() string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		return formatNumber(v.AsNumber())
	case v.IsObject():
		return v.AsObject().String()
	default:
		return "<?>"
	}
}

func formatNumber(n float64) string {
	// %g-style layout as in clox's printf("%g", ...), but with the shortest
	// round-tripping digits; integral doubles print without a trailing ".0".
	return trimFloat(n)
}
