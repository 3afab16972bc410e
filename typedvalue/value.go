package typedvalue

import (
	"fmt"
	"unicode/utf8"
)

// Value is the tagged union carried as every parameter and every result
// cell. Exactly one field is meaningful, selected by Rep; NULL carries none
// of them, which is what makes it distinct from any type's zero value.
type Value struct {
	Rep     Rep
	Bool    bool
	Int     int64   // Byte/Short/Integer/Long, Date (days), Time (ms), Timestamp (ms)
	Float   float64 // Float/Double
	Dec     Decimal
	Str     string
	Bytes   []byte
	Array   []Value
	ElemRep Rep // meaningful only when Rep == RepArray
}

// Null is the distinct NULL value.
func Null() Value { return Value{Rep: RepNull} }

// IsNull reports whether the value is the NULL representation.
func (v Value) IsNull() bool { return v.Rep == RepNull }

func Bool(b bool) Value    { return Value{Rep: RepBoolean, Bool: b} }
func Byte(i int8) Value    { return Value{Rep: RepByte, Int: int64(i)} }
func Short(i int16) Value  { return Value{Rep: RepShort, Int: int64(i)} }
func Integer(i int32) Value { return Value{Rep: RepInteger, Int: int64(i)} }
func Long(i int64) Value   { return Value{Rep: RepLong, Int: i} }
func Float32(f float32) Value { return Value{Rep: RepFloat, Float: float64(f)} }
func Float64(f float64) Value { return Value{Rep: RepDouble, Float: f} }
func String(s string) Value   { return Value{Rep: RepString, Str: s} }
func Bin(b []byte) Value      { return Value{Rep: RepBytes, Bytes: b} }

// DecimalValue wraps a Decimal as a Value.
func DecimalValue(d Decimal) Value { return Value{Rep: RepDecimal, Dec: d} }

// Date wraps a day count since 1970-01-01.
func Date(days int32) Value { return Value{Rep: RepDate, Int: int64(days)} }

// Time wraps a millisecond-past-midnight offset.
func Time(millis int32) Value { return Value{Rep: RepTime, Int: int64(millis)} }

// Timestamp wraps a millisecond-since-epoch offset.
func Timestamp(millis int64) Value { return Value{Rep: RepTimestamp, Int: millis} }

// Array wraps an ordered sequence of same-declared-type elements (NULL
// elements are representable; nesting is allowed).
func Array(elemRep Rep, elements []Value) Value {
	return Value{Rep: RepArray, ElemRep: elemRep, Array: elements}
}

// AsString renders a byte sequence as its UTF-8-decoded string, satisfying
// the requirement that a binary column be readable either way without
// re-encoding.
func (v Value) AsString() (string, error) {
	switch v.Rep {
	case RepString:
		return v.Str, nil
	case RepBytes:
		if !utf8.Valid(v.Bytes) {
			return "", illegalArgument("byte sequence is not valid UTF-8")
		}
		return string(v.Bytes), nil
	default:
		return "", illegalArgument("cannot render %s as string", v.Rep)
	}
}

// Equal performs a representation-aware comparison used by codec round-trip
// tests: two Values are equal only if their Rep and payload match exactly.
func (v Value) Equal(o Value) bool {
	if v.Rep != o.Rep {
		return false
	}
	switch v.Rep {
	case RepNull:
		return true
	case RepBoolean:
		return v.Bool == o.Bool
	case RepByte, RepShort, RepInteger, RepLong, RepDate, RepTime, RepTimestamp:
		return v.Int == o.Int
	case RepFloat, RepDouble:
		return v.Float == o.Float
	case RepDecimal:
		return v.Dec.Equal(o.Dec)
	case RepString:
		return v.Str == o.Str
	case RepBytes:
		return string(v.Bytes) == string(o.Bytes)
	case RepArray:
		if v.ElemRep != o.ElemRep || len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	if v.IsNull() {
		return "NULL"
	}
	switch v.Rep {
	case RepBoolean:
		return fmt.Sprintf("%v", v.Bool)
	case RepByte, RepShort, RepInteger, RepLong, RepDate, RepTime, RepTimestamp:
		return fmt.Sprintf("%d", v.Int)
	case RepFloat, RepDouble:
		return fmt.Sprintf("%v", v.Float)
	case RepDecimal:
		return v.Dec.String()
	case RepString:
		return v.Str
	case RepBytes:
		return fmt.Sprintf("%x", v.Bytes)
	case RepArray:
		return fmt.Sprintf("%v", v.Array)
	default:
		return "?"
	}
}
