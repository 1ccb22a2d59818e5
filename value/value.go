// Package value implements the interpreter's runtime value model: a
// tagged union of Str/Bool/Int/Float/Dict plus the total (never-failing)
// coercion table between them, and the per-statement scratch arena
// strings are allocated from.
//
// Grounded on spec.md §4.6 and original_source/klippy/chelper/
// gcode_interpreter.h (the GCodeVal tagged union and str/int/bool/float
// cast functions).
package value

import (
	"fmt"
	"strconv"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind tags which field of a Value is live.
type Kind int

const (
	// Unknown is the result of a lookup miss; it coerces like an empty
	// string / zero / false, same as spec.md §4.7 describes.
	Unknown Kind = iota
	Str
	Bool
	Int
	Float
	Dict
)

// DictHandle is the opaque cookie identifying an object in the host's
// environment tree, passed back to Host.Lookup/Host.Serialize unexamined.
type DictHandle any

// Value is the tagged union produced by evaluating an AST node. Only the
// field matching Kind is meaningful.
type Value struct {
	Kind Kind
	Str  string
	Bool bool
	Int  int64
	Flt  float64
	Dict DictHandle
}

func OfStr(s string) Value     { return Value{Kind: Str, Str: s} }
func OfBool(b bool) Value      { return Value{Kind: Bool, Bool: b} }
func OfInt(i int64) Value      { return Value{Kind: Int, Int: i} }
func OfFloat(f float64) Value  { return Value{Kind: Float, Flt: f} }
func OfDict(d DictHandle) Value { return Value{Kind: Dict, Dict: d} }

// Serializer resolves a Dict handle to a display string; it is supplied
// by the host (queue.Host.Serialize), since only the host can read its
// own environment tree. A nil serializer makes every Dict coerce to
// "<obj>", per the Str-coercion table's fallback.
type Serializer func(DictHandle) (string, bool)

// AsStr coerces v to a string. Total: never fails.
func (v Value) AsStr(serialize Serializer) string {
	switch v.Kind {
	case Str:
		return v.Str
	case Bool:
		if v.Bool {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return fmt.Sprintf("%f", v.Flt)
	case Dict:
		if serialize != nil {
			if s, ok := serialize(v.Dict); ok {
				return sanitize(s)
			}
		}
		return "<obj>"
	default: // Unknown
		return ""
	}
}

// AsInt coerces v to int64. Total: parse failures and Dict both yield 0.
func (v Value) AsInt() int64 {
	switch v.Kind {
	case Str:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case Bool:
		if v.Bool {
			return 1
		}
		return 0
	case Int:
		return v.Int
	case Float:
		return saturatingInt64(v.Flt)
	default: // Unknown, Dict
		return 0
	}
}

// AsBool coerces v to bool.
func (v Value) AsBool() bool {
	switch v.Kind {
	case Str:
		return v.Str != ""
	case Bool:
		return v.Bool
	case Int:
		return v.Int != 0
	case Float:
		return v.Flt != 0 && v.Flt == v.Flt // v.Flt == v.Flt is false for NaN
	case Dict:
		return true
	default: // Unknown
		return false
	}
}

// AsFloat coerces v to float64. Total: parse failures and Dict both yield
// 0.0.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case Str:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0
		}
		return f
	case Bool:
		if v.Bool {
			return 1
		}
		return 0
	case Int:
		return float64(v.Int)
	case Float:
		return v.Flt
	default: // Unknown, Dict
		return 0
	}
}

// IsFloat reports whether v is already a Float, used by the interpreter
// to decide int/float promotion for mixed-type arithmetic.
func (v Value) IsFloat() bool { return v.Kind == Float }

func saturatingInt64(f float64) int64 {
	const maxI64 = float64(1<<63 - 1)
	const minI64 = float64(-1 << 63)
	switch {
	case f != f: // NaN
		return 0
	case f >= maxI64:
		return 1<<63 - 1
	case f <= minI64:
		return -1 << 63
	default:
		return int64(f)
	}
}

// sanitize strips characters a host-controlled serialize() implementation
// could use to corrupt the arena's line-oriented output (raw control
// characters, unpaired surrogates) before the string is copied in.
// Dict.serialize is the one value source this package doesn't fully
// control the origin of, so it's the one coercion path worth hardening.
var sanitizer = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.C)),
)

func sanitize(s string) string {
	out, _, err := transform.String(sanitizer, s)
	if err != nil {
		return s
	}
	return out
}
