// Package typedvalue implements the tagged-union wire value used throughout
// the remote meta protocol: every parameter and every result column cell is
// carried as a Value with an explicit representation tag, never as a bare
// language-native type, so that NULL and zero and integer widths never get
// confused crossing the wire.
package typedvalue

// Rep is the explicit representation tag carried by every Value. It mirrors
// §3 of the protocol: booleans, the four signed integer widths, the two
// floating point widths, an arbitrary-precision decimal, UTF-8 strings, raw
// byte sequences, the three SQL temporal shapes, arrays, and NULL.
type Rep int

const (
	RepNull Rep = iota
	RepBoolean
	RepByte      // int8
	RepShort     // int16
	RepInteger   // int32
	RepLong      // int64
	RepFloat     // float32
	RepDouble    // float64
	RepDecimal   // unscaled big.Int + scale
	RepString    // UTF-8
	RepBytes     // raw byte sequence
	RepDate      // days since 1970-01-01
	RepTime      // milliseconds past midnight
	RepTimestamp // milliseconds since epoch, UTC
	RepArray     // element Rep + ordered []Value
)

// String returns the wire name used by the textual serializer's
// discriminator field.
func (r Rep) String() string {
	switch r {
	case RepNull:
		return "NULL"
	case RepBoolean:
		return "BOOLEAN"
	case RepByte:
		return "BYTE"
	case RepShort:
		return "SHORT"
	case RepInteger:
		return "INTEGER"
	case RepLong:
		return "LONG"
	case RepFloat:
		return "FLOAT"
	case RepDouble:
		return "DOUBLE"
	case RepDecimal:
		return "BIG_DECIMAL"
	case RepString:
		return "STRING"
	case RepBytes:
		return "BYTE_STRING"
	case RepDate:
		return "DATE"
	case RepTime:
		return "TIME"
	case RepTimestamp:
		return "TIMESTAMP"
	case RepArray:
		return "ARRAY"
	default:
		return "UNRECOGNIZED"
	}
}

// repByName reverses Rep.String, used by the textual decoder.
var repByName = func() map[string]Rep {
	m := make(map[string]Rep, 15)
	for r := RepNull; r <= RepArray; r++ {
		m[r.String()] = r
	}
	return m
}()

// ParseRep looks up a Rep by its wire name. The zero Rep and false are
// returned for unknown names so callers can raise a protocol error instead
// of silently defaulting.
func ParseRep(name string) (Rep, bool) {
	r, ok := repByName[name]
	return r, ok
}
